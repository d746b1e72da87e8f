// Package engine implements the two aggregation workloads the benchmark
// measures: flat column sums over monthly trip files, and nested
// container statistics over a places file.
package engine

import (
	"fmt"

	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/table"
)

func columnAs[T table.Column](tbl *table.Table, file, name string) (T, error) {
	var zero T
	col, ok := tbl.Column(name)
	if !ok {
		return zero, errors.New(errors.ErrCategoryRead, errors.CodeColumnNotFound,
			fmt.Sprintf("column %q not found in %s", name, file))
	}
	c, ok := col.(T)
	if !ok {
		return zero, errors.New(errors.ErrCategoryRead, errors.CodeReadFailed,
			fmt.Sprintf("column %q in %s has unexpected type %T", name, file, col))
	}
	return c, nil
}

func fieldAs[T table.Column](st *table.StructColumn, file, name string) (T, error) {
	var zero T
	col, ok := st.Field(name)
	if !ok {
		return zero, errors.New(errors.ErrCategoryRead, errors.CodeColumnNotFound,
			fmt.Sprintf("field %q not found under %q in %s", name, st.Name(), file))
	}
	c, ok := col.(T)
	if !ok {
		return zero, errors.New(errors.ErrCategoryRead, errors.CodeReadFailed,
			fmt.Sprintf("field %s.%s in %s has unexpected type %T", st.Name(), name, file, col))
	}
	return c, nil
}

// sumMax folds container lengths into a total and a maximum, skipping
// null rows entirely rather than counting them as zero.
func sumMax(lengths []int32, valid []bool) (total, max int64) {
	for i, n := range lengths {
		if valid != nil && !valid[i] {
			continue
		}
		total += int64(n)
		if int64(n) > max {
			max = int64(n)
		}
	}
	return total, max
}
