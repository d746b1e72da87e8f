package table

import "fmt"

func countFalse(validity []bool) int {
	n := 0
	for _, v := range validity {
		if !v {
			n++
		}
	}
	return n
}

func checkValidity(name string, rows int, validity []bool) error {
	if validity != nil && len(validity) != rows {
		return fmt.Errorf("table: column %q validity has %d entries, want %d", name, len(validity), rows)
	}
	return nil
}

// Int32Column holds 32-bit integer values with an optional validity mask.
// A nil validity means every row is valid.
type Int32Column struct {
	name     string
	values   []int32
	validity []bool
}

func NewInt32Column(name string, values []int32, validity []bool) (*Int32Column, error) {
	if err := checkValidity(name, len(values), validity); err != nil {
		return nil, err
	}
	return &Int32Column{name: name, values: values, validity: validity}, nil
}

func (c *Int32Column) Name() string { return c.name }
func (c *Int32Column) Len() int     { return len(c.values) }
func (c *Int32Column) Nulls() int   { return countFalse(c.validity) }

func (c *Int32Column) IsValid(i int) bool {
	return c.validity == nil || c.validity[i]
}

func (c *Int32Column) Value(i int) int32 { return c.values[i] }

// Min returns the smallest valid value. ok is false when no row is valid.
func (c *Int32Column) Min() (int32, bool) {
	var min int32
	ok := false
	for i, v := range c.values {
		if !c.IsValid(i) {
			continue
		}
		if !ok || v < min {
			min = v
			ok = true
		}
	}
	return min, ok
}

// Max returns the largest valid value. ok is false when no row is valid.
func (c *Int32Column) Max() (int32, bool) {
	var max int32
	ok := false
	for i, v := range c.values {
		if !c.IsValid(i) {
			continue
		}
		if !ok || v > max {
			max = v
			ok = true
		}
	}
	return max, ok
}

// Int64Column holds 64-bit integer values with an optional validity mask.
type Int64Column struct {
	name     string
	values   []int64
	validity []bool
}

func NewInt64Column(name string, values []int64, validity []bool) (*Int64Column, error) {
	if err := checkValidity(name, len(values), validity); err != nil {
		return nil, err
	}
	return &Int64Column{name: name, values: values, validity: validity}, nil
}

func (c *Int64Column) Name() string { return c.name }
func (c *Int64Column) Len() int     { return len(c.values) }
func (c *Int64Column) Nulls() int   { return countFalse(c.validity) }

func (c *Int64Column) IsValid(i int) bool {
	return c.validity == nil || c.validity[i]
}

func (c *Int64Column) Value(i int) int64 { return c.values[i] }

// Sum adds all valid values. Null rows contribute nothing; an all-null or
// empty column sums to zero.
func (c *Int64Column) Sum() int64 {
	var sum int64
	for i, v := range c.values {
		if c.IsValid(i) {
			sum += v
		}
	}
	return sum
}

func (c *Int64Column) Min() (int64, bool) {
	var min int64
	ok := false
	for i, v := range c.values {
		if !c.IsValid(i) {
			continue
		}
		if !ok || v < min {
			min = v
			ok = true
		}
	}
	return min, ok
}

func (c *Int64Column) Max() (int64, bool) {
	var max int64
	ok := false
	for i, v := range c.values {
		if !c.IsValid(i) {
			continue
		}
		if !ok || v > max {
			max = v
			ok = true
		}
	}
	return max, ok
}

// Float32Column holds 32-bit float values with an optional validity mask.
type Float32Column struct {
	name     string
	values   []float32
	validity []bool
}

func NewFloat32Column(name string, values []float32, validity []bool) (*Float32Column, error) {
	if err := checkValidity(name, len(values), validity); err != nil {
		return nil, err
	}
	return &Float32Column{name: name, values: values, validity: validity}, nil
}

func (c *Float32Column) Name() string { return c.name }
func (c *Float32Column) Len() int     { return len(c.values) }
func (c *Float32Column) Nulls() int   { return countFalse(c.validity) }

func (c *Float32Column) IsValid(i int) bool {
	return c.validity == nil || c.validity[i]
}

func (c *Float32Column) Value(i int) float32 { return c.values[i] }

func (c *Float32Column) Min() (float32, bool) {
	var min float32
	ok := false
	for i, v := range c.values {
		if !c.IsValid(i) {
			continue
		}
		if !ok || v < min {
			min = v
			ok = true
		}
	}
	return min, ok
}

func (c *Float32Column) Max() (float32, bool) {
	var max float32
	ok := false
	for i, v := range c.values {
		if !c.IsValid(i) {
			continue
		}
		if !ok || v > max {
			max = v
			ok = true
		}
	}
	return max, ok
}

// Float64Column holds 64-bit float values with an optional validity mask.
type Float64Column struct {
	name     string
	values   []float64
	validity []bool
}

func NewFloat64Column(name string, values []float64, validity []bool) (*Float64Column, error) {
	if err := checkValidity(name, len(values), validity); err != nil {
		return nil, err
	}
	return &Float64Column{name: name, values: values, validity: validity}, nil
}

func (c *Float64Column) Name() string { return c.name }
func (c *Float64Column) Len() int     { return len(c.values) }
func (c *Float64Column) Nulls() int   { return countFalse(c.validity) }

func (c *Float64Column) IsValid(i int) bool {
	return c.validity == nil || c.validity[i]
}

func (c *Float64Column) Value(i int) float64 { return c.values[i] }

func (c *Float64Column) Sum() float64 {
	var sum float64
	for i, v := range c.values {
		if c.IsValid(i) {
			sum += v
		}
	}
	return sum
}

func (c *Float64Column) Min() (float64, bool) {
	var min float64
	ok := false
	for i, v := range c.values {
		if !c.IsValid(i) {
			continue
		}
		if !ok || v < min {
			min = v
			ok = true
		}
	}
	return min, ok
}

func (c *Float64Column) Max() (float64, bool) {
	var max float64
	ok := false
	for i, v := range c.values {
		if !c.IsValid(i) {
			continue
		}
		if !ok || v > max {
			max = v
			ok = true
		}
	}
	return max, ok
}

// BoolColumn holds boolean values with an optional validity mask.
type BoolColumn struct {
	name     string
	values   []bool
	validity []bool
}

func NewBoolColumn(name string, values []bool, validity []bool) (*BoolColumn, error) {
	if err := checkValidity(name, len(values), validity); err != nil {
		return nil, err
	}
	return &BoolColumn{name: name, values: values, validity: validity}, nil
}

func (c *BoolColumn) Name() string { return c.name }
func (c *BoolColumn) Len() int     { return len(c.values) }
func (c *BoolColumn) Nulls() int   { return countFalse(c.validity) }

func (c *BoolColumn) IsValid(i int) bool {
	return c.validity == nil || c.validity[i]
}

func (c *BoolColumn) Value(i int) bool { return c.values[i] }

// StringColumn stores string rows as a contiguous byte buffer plus
// boundary offsets, so per-row byte lengths come from boundary pairs.
type StringColumn struct {
	name     string
	offsets  []int32
	data     []byte
	validity []bool
}

func NewStringColumn(name string, offsets []int32, data []byte, validity []bool) (*StringColumn, error) {
	rows := len(offsets) - 1
	if rows < 0 {
		rows = 0
		offsets = []int32{0}
	}
	if err := validateOffsets("string", offsets, rows); err != nil {
		return nil, err
	}
	if err := checkValidity(name, rows, validity); err != nil {
		return nil, err
	}
	if int(offsets[rows]) > len(data) {
		return nil, fmt.Errorf("table: column %q offsets end at %d beyond %d data bytes", name, offsets[rows], len(data))
	}
	return &StringColumn{name: name, offsets: offsets, data: data, validity: validity}, nil
}

// StringColumnFromValues builds a StringColumn from materialized strings.
// A nil validity means every row is valid; null rows should carry empty
// strings.
func StringColumnFromValues(name string, values []string, validity []bool) (*StringColumn, error) {
	offsets := make([]int32, len(values)+1)
	size := 0
	for i, s := range values {
		size += len(s)
		offsets[i+1] = int32(size)
	}
	data := make([]byte, 0, size)
	for _, s := range values {
		data = append(data, s...)
	}
	return NewStringColumn(name, offsets, data, validity)
}

func (c *StringColumn) Name() string { return c.name }
func (c *StringColumn) Len() int     { return len(c.offsets) - 1 }
func (c *StringColumn) Nulls() int   { return countFalse(c.validity) }

func (c *StringColumn) IsValid(i int) bool {
	return c.validity == nil || c.validity[i]
}

func (c *StringColumn) Value(i int) string {
	return string(c.data[c.offsets[i]:c.offsets[i+1]])
}

func (c *StringColumn) Bytes(i int) []byte {
	return c.data[c.offsets[i]:c.offsets[i+1]]
}

// ByteLengths returns per-row byte lengths with the validity mask.
func (c *StringColumn) ByteLengths() ([]int32, []bool) {
	return ValidLengths(c.offsets, c.validity)
}

// ListColumn is a variable-length container column. offsets has rows+1
// boundaries into the element column; a null row spans zero slots.
type ListColumn struct {
	name     string
	offsets  []int32
	validity []bool
	elem     Column
}

func NewListColumn(name string, offsets []int32, validity []bool, elem Column) (*ListColumn, error) {
	rows := len(offsets) - 1
	if rows < 0 {
		rows = 0
		offsets = []int32{0}
	}
	if err := validateOffsets("list", offsets, rows); err != nil {
		return nil, err
	}
	if err := checkValidity(name, rows, validity); err != nil {
		return nil, err
	}
	if elem != nil && elem.Len() != int(offsets[rows]) {
		return nil, fmt.Errorf("table: column %q has %d element slots, offsets end at %d", name, elem.Len(), offsets[rows])
	}
	return &ListColumn{name: name, offsets: offsets, validity: validity, elem: elem}, nil
}

func (c *ListColumn) Name() string { return c.name }
func (c *ListColumn) Len() int     { return len(c.offsets) - 1 }
func (c *ListColumn) Nulls() int   { return countFalse(c.validity) }

func (c *ListColumn) IsValid(i int) bool {
	return c.validity == nil || c.validity[i]
}

func (c *ListColumn) Offsets() []int32 { return c.offsets }
func (c *ListColumn) Elem() Column     { return c.elem }

// Lengths returns per-row cardinalities with the validity mask.
func (c *ListColumn) Lengths() ([]int32, []bool) {
	return ValidLengths(c.offsets, c.validity)
}

// MapColumn is a key-value container column sharing the list layout:
// offsets span the flattened entry columns.
type MapColumn struct {
	name     string
	offsets  []int32
	validity []bool
	keys     Column
	values   Column
}

func NewMapColumn(name string, offsets []int32, validity []bool, keys, values Column) (*MapColumn, error) {
	rows := len(offsets) - 1
	if rows < 0 {
		rows = 0
		offsets = []int32{0}
	}
	if err := validateOffsets("map", offsets, rows); err != nil {
		return nil, err
	}
	if err := checkValidity(name, rows, validity); err != nil {
		return nil, err
	}
	if keys != nil && keys.Len() != int(offsets[rows]) {
		return nil, fmt.Errorf("table: column %q has %d key slots, offsets end at %d", name, keys.Len(), offsets[rows])
	}
	if values != nil && keys != nil && values.Len() != keys.Len() {
		return nil, fmt.Errorf("table: column %q has %d values for %d keys", name, values.Len(), keys.Len())
	}
	return &MapColumn{name: name, offsets: offsets, validity: validity, keys: keys, values: values}, nil
}

func (c *MapColumn) Name() string { return c.name }
func (c *MapColumn) Len() int     { return len(c.offsets) - 1 }
func (c *MapColumn) Nulls() int   { return countFalse(c.validity) }

func (c *MapColumn) IsValid(i int) bool {
	return c.validity == nil || c.validity[i]
}

func (c *MapColumn) Offsets() []int32 { return c.offsets }
func (c *MapColumn) Keys() Column     { return c.keys }
func (c *MapColumn) Values() Column   { return c.values }

// Lengths returns per-row entry counts with the validity mask.
func (c *MapColumn) Lengths() ([]int32, []bool) {
	return ValidLengths(c.offsets, c.validity)
}

// StructColumn groups equal-length child columns under one name.
type StructColumn struct {
	name     string
	length   int
	validity []bool
	fields   []Column
	byName   map[string]int
}

func NewStructColumn(name string, length int, validity []bool, fields ...Column) (*StructColumn, error) {
	if err := checkValidity(name, length, validity); err != nil {
		return nil, err
	}
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Len() != length {
			return nil, fmt.Errorf("table: struct %q field %q has %d rows, want %d", name, f.Name(), f.Len(), length)
		}
		if _, dup := byName[f.Name()]; dup {
			return nil, fmt.Errorf("table: struct %q has duplicate field %q", name, f.Name())
		}
		byName[f.Name()] = i
	}
	return &StructColumn{name: name, length: length, validity: validity, fields: fields, byName: byName}, nil
}

func (c *StructColumn) Name() string { return c.name }
func (c *StructColumn) Len() int     { return c.length }
func (c *StructColumn) Nulls() int   { return countFalse(c.validity) }

func (c *StructColumn) IsValid(i int) bool {
	return c.validity == nil || c.validity[i]
}

// Field returns the child column with the given name.
func (c *StructColumn) Field(name string) (Column, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.fields[i], true
}

// Fields returns all child columns in declaration order.
func (c *StructColumn) Fields() []Column {
	return c.fields
}
