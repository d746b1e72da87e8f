// Package benchmark provides production-scale benchmarks over real datasets.
// These exercise the same read and aggregate paths the CLI runs, against
// files fetched with "hardwood-bench fetch".
//
// Run with: go test -bench=BenchmarkProd -benchtime=1x -timeout=60m ./test/benchmark/...
// Run specific: go test -bench=BenchmarkProdFlat -benchtime=1x ./test/benchmark/...
package benchmark

import (
	"context"
	"testing"

	"github.com/iamkarasik/hardwood/internal/dataset"
	"github.com/iamkarasik/hardwood/internal/engine"
	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/source"
)

func benchmarkProdFlat(b *testing.B, hint source.ConcurrencyHint) {
	store := realDataStore(b)

	ctx := context.Background()
	ds, err := dataset.DiscoverFlat(ctx, store)
	if err != nil {
		if errors.IsMissingData(err) {
			b.Skipf("flat dataset unavailable: %v", err)
		}
		b.Fatal(err)
	}
	b.Logf("flat dataset: %d files, %.1f MB", len(ds.Files), float64(ds.TotalBytes)/(1024*1024))
	eng := engine.NewFlatEngine(source.NewParquetReader(store))

	b.ResetTimer()
	b.ReportAllocs()

	var totalRows int64
	for i := 0; i < b.N; i++ {
		totals, err := eng.Aggregate(ctx, ds.Files, hint)
		if err != nil {
			b.Fatal(err)
		}
		totalRows += totals.Rows
	}
	b.ReportMetric(float64(totalRows)/b.Elapsed().Seconds(), "rows/sec")
	b.ReportMetric(float64(ds.TotalBytes)*float64(b.N)/(1024*1024)/b.Elapsed().Seconds(), "MB/sec")
}

func BenchmarkProdFlatSingleThreaded(b *testing.B) {
	benchmarkProdFlat(b, source.SingleThreaded)
}

func BenchmarkProdFlatMultiThreaded(b *testing.B) {
	benchmarkProdFlat(b, source.MaxParallelism())
}

func benchmarkProdNested(b *testing.B, hint source.ConcurrencyHint) {
	store := realDataStore(b)

	ctx := context.Background()
	ds, err := dataset.DiscoverNested(ctx, store)
	if err != nil {
		if errors.IsMissingData(err) {
			b.Skipf("nested dataset unavailable: %v", err)
		}
		b.Fatal(err)
	}
	b.Logf("nested dataset: %.1f MB", float64(ds.TotalBytes)/(1024*1024))
	eng := engine.NewNestedEngine(source.NewParquetReader(store))

	b.ResetTimer()
	b.ReportAllocs()

	var totalRows int64
	for i := 0; i < b.N; i++ {
		summary, err := eng.Aggregate(ctx, dataset.PlacesFile, hint)
		if err != nil {
			b.Fatal(err)
		}
		totalRows += summary.Rows
	}
	b.ReportMetric(float64(totalRows)/b.Elapsed().Seconds(), "rows/sec")
	b.ReportMetric(float64(ds.TotalBytes)*float64(b.N)/(1024*1024)/b.Elapsed().Seconds(), "MB/sec")
}

func BenchmarkProdNestedSingleThreaded(b *testing.B) {
	benchmarkProdNested(b, source.SingleThreaded)
}

func BenchmarkProdNestedMultiThreaded(b *testing.B) {
	benchmarkProdNested(b, source.MaxParallelism())
}
