package table

import "fmt"

// Lengths derives per-entry lengths from consecutive boundary pairs:
// lengths[i] = offsets[i+1] - offsets[i]. It serves lists, maps, and
// string byte lengths alike. An empty or nil offsets slice yields nil.
func Lengths(offsets []int32) []int32 {
	if len(offsets) < 2 {
		return nil
	}
	lengths := make([]int32, len(offsets)-1)
	for i := range lengths {
		lengths[i] = offsets[i+1] - offsets[i]
	}
	return lengths
}

// ValidLengths derives lengths as Lengths does and carries the validity
// mask through: a null entry keeps a placeholder length but is marked
// invalid so aggregations skip it. A nil validity means all entries valid.
func ValidLengths(offsets []int32, validity []bool) ([]int32, []bool) {
	lengths := Lengths(offsets)
	if validity == nil {
		return lengths, nil
	}
	valid := make([]bool, len(lengths))
	copy(valid, validity)
	return lengths, valid
}

// OffsetsFromLengths rebuilds the boundary slice from per-entry lengths.
// The result always starts at zero and has len(lengths)+1 entries.
func OffsetsFromLengths(lengths []int32) []int32 {
	offsets := make([]int32, len(lengths)+1)
	for i, n := range lengths {
		offsets[i+1] = offsets[i] + n
	}
	return offsets
}

// validateOffsets checks the boundary invariants shared by strings, lists,
// and maps: one more boundary than rows, a zero origin, and no decreasing
// step. A null row must occupy zero slots, which non-decreasing boundaries
// plus zero-length runs already permit.
func validateOffsets(kind string, offsets []int32, rows int) error {
	if len(offsets) != rows+1 {
		return fmt.Errorf("table: %s offsets has %d boundaries, want %d", kind, len(offsets), rows+1)
	}
	if rows >= 0 && offsets[0] != 0 {
		return fmt.Errorf("table: %s offsets must start at 0, got %d", kind, offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("table: %s offsets decrease at %d (%d -> %d)", kind, i, offsets[i-1], offsets[i])
		}
	}
	return nil
}
