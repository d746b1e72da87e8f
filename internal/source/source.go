// Package source materializes parquet objects into in-memory columnar
// tables.
//
// A Reader reads the projected top-level columns of a parquet file,
// including nested list, map, and struct columns, by decoding each leaf
// column's value stream together with its repetition and definition levels.
// The caller picks the materialization strategy through a ConcurrencyHint:
// leaf columns are decoded one at a time with SingleThreaded, or fanned out
// across workers with a larger hint. Both strategies produce identical
// tables.
package source

import (
	"context"
	"runtime"

	"github.com/iamkarasik/hardwood/internal/table"
)

// Projection is an ordered set of top-level column names to materialize.
// An empty projection selects every top-level column.
type Projection []string

// ConcurrencyHint is the number of workers a reader may use to materialize
// leaf columns. The hint travels with every read; readers never pick a
// strategy on their own.
type ConcurrencyHint int

// SingleThreaded materializes leaf columns one at a time on the calling
// goroutine.
const SingleThreaded ConcurrencyHint = 1

// MaxParallelism returns a hint sized to the number of logical CPUs.
func MaxParallelism() ConcurrencyHint {
	return ConcurrencyHint(runtime.NumCPU())
}

// Workers returns the effective worker count for the hint. Hints below one
// collapse to a single worker.
func (h ConcurrencyHint) Workers() int {
	if h <= 1 {
		return 1
	}
	return int(h)
}

// Reader materializes the projected columns of a named object into a Table.
type Reader interface {
	Read(ctx context.Context, name string, proj Projection, hint ConcurrencyHint) (*table.Table, error)
}
