package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/table"
)

// ReadRequest records one call into a MemoryReader.
type ReadRequest struct {
	Name       string
	Projection Projection
	Hint       ConcurrencyHint
}

// MemoryReader serves canned tables by name and records every read request.
// It stands in for ParquetReader in tests.
type MemoryReader struct {
	mu       sync.Mutex
	tables   map[string]*table.Table
	failures map[string]error
	requests []ReadRequest
}

// NewMemoryReader creates an empty in-memory reader.
func NewMemoryReader() *MemoryReader {
	return &MemoryReader{
		tables:   make(map[string]*table.Table),
		failures: make(map[string]error),
	}
}

// Add registers a table under the given object name.
func (m *MemoryReader) Add(name string, t *table.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = t
}

// Fail makes reads of the given object name return err.
func (m *MemoryReader) Fail(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[name] = err
}

// Read returns the canned table for name, recording the request.
func (m *MemoryReader) Read(ctx context.Context, name string, proj Projection, hint ConcurrencyHint) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, ReadRequest{Name: name, Projection: append(Projection(nil), proj...), Hint: hint})

	if err, ok := m.failures[name]; ok {
		return nil, err
	}
	t, ok := m.tables[name]
	if !ok {
		return nil, errors.NewReadError(fmt.Sprintf("open %s", name), errors.New(errors.ErrCategoryStorage, errors.CodeObjectNotFound, name))
	}
	return t, nil
}

// Requests returns the recorded read requests in call order.
func (m *MemoryReader) Requests() []ReadRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ReadRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
