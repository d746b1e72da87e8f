// Package table provides the in-memory columnar batch produced by a source
// read. Columns carry optional validity masks; variable-length columns
// (strings, lists, maps) store their shape as offset boundaries so that
// per-row lengths derive from consecutive boundary pairs.
package table

import "fmt"

// Column is implemented by every column kind in a table.
type Column interface {
	// Name returns the column name.
	Name() string
	// Len returns the number of rows (or slots, for nested child columns).
	Len() int
	// Nulls returns the number of null entries.
	Nulls() int
}

// Table is an ordered set of equal-length top-level columns.
type Table struct {
	numRows int
	columns []Column
	byName  map[string]int
}

// New creates a table from the given columns. All columns must have the
// same length and distinct names.
func New(columns ...Column) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(columns))}
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("table: column %d is nil", i)
		}
		if i == 0 {
			t.numRows = col.Len()
		} else if col.Len() != t.numRows {
			return nil, fmt.Errorf("table: column %q has %d rows, want %d", col.Name(), col.Len(), t.numRows)
		}
		if _, dup := t.byName[col.Name()]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", col.Name())
		}
		t.byName[col.Name()] = i
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int64 {
	return int64(t.numRows)
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Columns returns all columns in declaration order.
func (t *Table) Columns() []Column {
	return t.columns
}
