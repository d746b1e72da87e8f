package source

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/parquet-go/parquet-go"

	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/storage"
	"github.com/iamkarasik/hardwood/internal/table"
)

// readBatchSize is the number of values decoded per ReadValues call.
const readBatchSize = 1024

// ParquetReader materializes parquet objects held in an object store.
type ParquetReader struct {
	store storage.ObjectStore
}

// NewParquetReader creates a reader over the given object store.
func NewParquetReader(store storage.ObjectStore) *ParquetReader {
	return &ParquetReader{store: store}
}

// Read materializes the projected top-level columns of the named object.
// Leaf columns are decoded sequentially for hint 1 and fanned out across
// hint workers otherwise; the resulting table does not depend on the
// strategy.
func (r *ParquetReader) Read(ctx context.Context, name string, proj Projection, hint ConcurrencyHint) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obj, err := r.store.Open(ctx, name)
	if err != nil {
		return nil, errors.NewReadError(fmt.Sprintf("open %s", name), err)
	}
	defer obj.Close()

	pf, err := parquet.OpenFile(obj, obj.Size())
	if err != nil {
		return nil, errors.NewReadError(fmt.Sprintf("parse %s", name), err)
	}

	plans, err := planProjection(pf.Schema(), name, proj)
	if err != nil {
		return nil, err
	}

	if err := materialize(ctx, pf, plans, hint.Workers()); err != nil {
		if err == context.Canceled || err == context.DeadlineExceeded {
			return nil, err
		}
		return nil, errors.NewReadError(fmt.Sprintf("read %s", name), err)
	}

	rows := pf.NumRows()
	for _, fp := range plans {
		for _, lp := range fp.leaves {
			if lp.rows != rows {
				return nil, errors.NewInternalError(
					fmt.Sprintf("column %s of %s produced %d rows, file has %d", lp.column(), name, lp.rows, rows), nil)
			}
		}
	}

	cols := make([]table.Column, 0, len(plans))
	for _, fp := range plans {
		col, err := fp.assemble(rows)
		if err != nil {
			return nil, errors.NewInternalError(fmt.Sprintf("assemble %s", name), err)
		}
		cols = append(cols, col)
	}
	t, err := table.New(cols...)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("assemble %s", name), err)
	}
	return t, nil
}

// planProjection resolves the projection against the schema and builds a
// walk plan per selected top-level field. An empty projection selects every
// field in schema order.
func planProjection(schema *parquet.Schema, name string, proj Projection) ([]*fieldPlan, error) {
	fields := schema.Fields()
	selected := make([]parquet.Field, 0, len(proj))
	if len(proj) == 0 {
		selected = fields
	} else {
		for _, want := range proj {
			field := childByName(schema, want)
			if field == nil {
				return nil, errors.New(errors.ErrCategoryRead, errors.CodeColumnNotFound,
					fmt.Sprintf("column %q not found in %s", want, name))
			}
			selected = append(selected, field)
		}
	}

	plans := make([]*fieldPlan, 0, len(selected))
	for _, field := range selected {
		fp, err := planField(schema, field)
		if err != nil {
			return nil, errors.NewReadError(fmt.Sprintf("plan %s", name), err)
		}
		plans = append(plans, fp)
	}
	return plans, nil
}

// materialize runs every leaf walk, sequentially or under a buffered-channel
// semaphore of workers. Walks share no mutable state, so the fan-out needs
// no locking beyond the wait group.
func materialize(ctx context.Context, pf *parquet.File, plans []*fieldPlan, workers int) error {
	var leaves []*leafPlan
	for _, fp := range plans {
		leaves = append(leaves, fp.leaves...)
	}

	if workers <= 1 || len(leaves) <= 1 {
		for _, lp := range leaves {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := readLeaf(ctx, pf, lp); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, len(leaves))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, lp := range leaves {
		wg.Add(1)
		go func(idx int, plan *leafPlan) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}

			errs[idx] = readLeaf(ctx, pf, plan)
		}(i, lp)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// readLeaf walks every page of the leaf's column chunks across all row
// groups, feeding values through the level walker.
func readLeaf(ctx context.Context, pf *parquet.File, plan *leafPlan) error {
	w := newLevelWalker(plan)
	buf := make([]parquet.Value, readBatchSize)
	for _, rg := range pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunks := rg.ColumnChunks()
		if plan.columnIndex >= len(chunks) {
			return fmt.Errorf("source: column %s: chunk index %d out of range", plan.column(), plan.columnIndex)
		}
		if err := readChunk(ctx, chunks[plan.columnIndex], w, buf); err != nil {
			return err
		}
	}
	plan.rows = w.rows
	return nil
}

func readChunk(ctx context.Context, chunk parquet.ColumnChunk, w *levelWalker, buf []parquet.Value) error {
	pages := chunk.Pages()
	defer pages.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := pages.ReadPage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		err = feedPage(page, w, buf)
		parquet.Release(page)
		if err != nil {
			return err
		}
	}
}

// feedPage drains one page's value stream into the walker. Values alias
// page memory, so the walker must copy before the page is released.
func feedPage(page parquet.Page, w *levelWalker, buf []parquet.Value) error {
	values := page.Values()
	for {
		n, err := values.ReadValues(buf)
		for i := 0; i < n; i++ {
			if werr := w.feed(buf[i]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}
