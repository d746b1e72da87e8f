// Package bench orchestrates benchmark sessions: it resolves contenders,
// warms up the reader, times aggregation runs, verifies that contenders
// agree on the results, and reduces run durations to summary statistics.
package bench

import (
	"context"

	"github.com/iamkarasik/hardwood/internal/dataset"
	"github.com/iamkarasik/hardwood/internal/engine"
	"github.com/iamkarasik/hardwood/internal/source"
	"github.com/iamkarasik/hardwood/internal/storage"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

// Workload couples a dataset to the aggregation that measures it.
type Workload interface {
	// Describe discovers the dataset on first call and caches it, so
	// missing data surfaces before any timed run.
	Describe(ctx context.Context) (dataset.Dataset, error)

	// Warmup primes lazy initialization over a subset of the input. Its
	// result and timing are discarded.
	Warmup(ctx context.Context, hint source.ConcurrencyHint) error

	// Run aggregates the full dataset once.
	Run(ctx context.Context, hint source.ConcurrencyHint) (aggregate.Aggregate, error)
}

// flatWarmupFiles caps how many files the flat warmup touches.
const flatWarmupFiles = 12

// FlatWorkload sums the projected taxi columns across every monthly file.
type FlatWorkload struct {
	store  storage.ObjectStore
	engine *engine.FlatEngine
	ds     *dataset.Dataset
}

// NewFlatWorkload creates a flat workload over the given store and reader.
func NewFlatWorkload(store storage.ObjectStore, reader source.Reader) *FlatWorkload {
	return &FlatWorkload{store: store, engine: engine.NewFlatEngine(reader)}
}

// Describe implements Workload.
func (w *FlatWorkload) Describe(ctx context.Context) (dataset.Dataset, error) {
	if w.ds == nil {
		ds, err := dataset.DiscoverFlat(ctx, w.store)
		if err != nil {
			return dataset.Dataset{}, err
		}
		w.ds = &ds
	}
	return *w.ds, nil
}

// Warmup implements Workload by aggregating a prefix of the file list.
func (w *FlatWorkload) Warmup(ctx context.Context, hint source.ConcurrencyHint) error {
	ds, err := w.Describe(ctx)
	if err != nil {
		return err
	}
	n := len(ds.Files)
	if n > flatWarmupFiles {
		n = flatWarmupFiles
	}
	_, err = w.engine.Aggregate(ctx, ds.Files[:n], hint)
	return err
}

// Run implements Workload.
func (w *FlatWorkload) Run(ctx context.Context, hint source.ConcurrencyHint) (aggregate.Aggregate, error) {
	ds, err := w.Describe(ctx)
	if err != nil {
		return nil, err
	}
	return w.engine.Aggregate(ctx, ds.Files, hint)
}

// NestedWorkload aggregates the single places file.
type NestedWorkload struct {
	store  storage.ObjectStore
	engine *engine.NestedEngine
	ds     *dataset.Dataset
}

// NewNestedWorkload creates a nested workload over the given store and
// reader.
func NewNestedWorkload(store storage.ObjectStore, reader source.Reader) *NestedWorkload {
	return &NestedWorkload{store: store, engine: engine.NewNestedEngine(reader)}
}

// Describe implements Workload.
func (w *NestedWorkload) Describe(ctx context.Context) (dataset.Dataset, error) {
	if w.ds == nil {
		ds, err := dataset.DiscoverNested(ctx, w.store)
		if err != nil {
			return dataset.Dataset{}, err
		}
		w.ds = &ds
	}
	return *w.ds, nil
}

// Warmup implements Workload. The nested input is one file, so the warmup
// is a full aggregation.
func (w *NestedWorkload) Warmup(ctx context.Context, hint source.ConcurrencyHint) error {
	_, err := w.Run(ctx, hint)
	return err
}

// Run implements Workload.
func (w *NestedWorkload) Run(ctx context.Context, hint source.ConcurrencyHint) (aggregate.Aggregate, error) {
	ds, err := w.Describe(ctx)
	if err != nil {
		return nil, err
	}
	return w.engine.Aggregate(ctx, ds.Files[0], hint)
}
