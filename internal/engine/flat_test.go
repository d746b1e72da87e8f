package engine

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/source"
	"github.com/iamkarasik/hardwood/internal/table"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

func mustTripsTable(passengers []int64, valid []bool, distance, fare []float64) *table.Table {
	pc, err := table.NewInt64Column("passenger_count", passengers, valid)
	if err != nil {
		panic(err)
	}
	td, err := table.NewFloat64Column("trip_distance", distance, nil)
	if err != nil {
		panic(err)
	}
	fa, err := table.NewFloat64Column("fare_amount", fare, nil)
	if err != nil {
		panic(err)
	}
	tbl, err := table.New(pc, td, fa)
	if err != nil {
		panic(err)
	}
	return tbl
}

func TestFlatAggregateSumsSkipNulls(t *testing.T) {
	reader := source.NewMemoryReader()
	reader.Add("a.parquet", mustTripsTable(
		[]int64{2, 0, 5}, []bool{true, false, true},
		[]float64{1.5, 2.25, 0.5},
		[]float64{10, 20, 5.25},
	))
	reader.Add("b.parquet", mustTripsTable(
		[]int64{1, 3}, nil,
		[]float64{4.75, 0.25},
		[]float64{7.5, 3},
	))

	eng := NewFlatEngine(reader)
	got, err := eng.Aggregate(context.Background(),
		[]string{"a.parquet", "b.parquet"}, source.SingleThreaded)
	require.NoError(t, err)
	require.Equal(t, aggregate.TripTotals{
		Rows:           5,
		PassengerCount: 11,
		TripDistance:   9.25,
		FareAmount:     45.75,
	}, got)

	reqs := reader.Requests()
	require.Len(t, reqs, 2)
	require.Equal(t, "a.parquet", reqs[0].Name)
	require.Equal(t, "b.parquet", reqs[1].Name)
	require.Equal(t, FlatProjection, reqs[0].Projection)
	require.Equal(t, source.SingleThreaded, reqs[0].Hint)
}

func TestFlatAggregateEmptyFileList(t *testing.T) {
	eng := NewFlatEngine(source.NewMemoryReader())
	got, err := eng.Aggregate(context.Background(), nil, source.SingleThreaded)
	require.NoError(t, err)
	require.Equal(t, aggregate.TripTotals{}, got)
}

func TestFlatAggregateAbortsOnReadFailure(t *testing.T) {
	reader := source.NewMemoryReader()
	reader.Add("a.parquet", mustTripsTable(
		[]int64{1}, nil, []float64{1}, []float64{1},
	))
	reader.Fail("b.parquet", errors.NewReadError("read b.parquet", io.ErrUnexpectedEOF))
	reader.Add("c.parquet", mustTripsTable(
		[]int64{1}, nil, []float64{1}, []float64{1},
	))

	eng := NewFlatEngine(reader)
	_, err := eng.Aggregate(context.Background(),
		[]string{"a.parquet", "b.parquet", "c.parquet"}, source.ConcurrencyHint(4))
	require.Error(t, err)
	require.Equal(t, errors.ErrCategoryRead, errors.GetCategory(err))
	require.Len(t, reader.Requests(), 2, "files after the failure must not be read")
}

func TestFlatAggregateMissingColumn(t *testing.T) {
	pc, err := table.NewInt64Column("passenger_count", []int64{1}, nil)
	require.NoError(t, err)
	td, err := table.NewFloat64Column("trip_distance", []float64{1}, nil)
	require.NoError(t, err)
	tbl, err := table.New(pc, td)
	require.NoError(t, err)

	reader := source.NewMemoryReader()
	reader.Add("a.parquet", tbl)

	eng := NewFlatEngine(reader)
	_, err = eng.Aggregate(context.Background(), []string{"a.parquet"}, source.SingleThreaded)
	require.Error(t, err)
	require.Equal(t, errors.CodeColumnNotFound, errors.GetCode(err))
	require.Contains(t, err.Error(), "fare_amount")
}

func TestFlatAggregateWrongColumnType(t *testing.T) {
	pc, err := table.NewFloat64Column("passenger_count", []float64{1}, nil)
	require.NoError(t, err)
	td, err := table.NewFloat64Column("trip_distance", []float64{1}, nil)
	require.NoError(t, err)
	fa, err := table.NewFloat64Column("fare_amount", []float64{1}, nil)
	require.NoError(t, err)
	tbl, err := table.New(pc, td, fa)
	require.NoError(t, err)

	reader := source.NewMemoryReader()
	reader.Add("a.parquet", tbl)

	eng := NewFlatEngine(reader)
	_, err = eng.Aggregate(context.Background(), []string{"a.parquet"}, source.SingleThreaded)
	require.Error(t, err)
	require.Equal(t, errors.ErrCategoryRead, errors.GetCategory(err))
	require.Contains(t, err.Error(), "passenger_count")
}

// tripsFrom derives one deterministic file's rows from a seed. Floats
// are multiples of 0.25 so sums are exact and grouping cannot perturb
// equality.
func tripsFrom(seed int64) ([]int64, []bool, []float64, []float64) {
	if seed < 0 {
		seed = -seed
	}
	n := int(seed%4) + 1
	passengers := make([]int64, n)
	valid := make([]bool, n)
	distance := make([]float64, n)
	fare := make([]float64, n)
	for i := range passengers {
		s := seed + int64(i)*7919
		passengers[i] = s % 6
		valid[i] = s%5 != 0
		distance[i] = float64(s%400) * 0.25
		fare[i] = float64(s%1600) * 0.25
	}
	return passengers, valid, distance, fare
}

// TestProperty_FlatFoldGrouping checks the fold is independent of how
// consecutive files are grouped: aggregating two halves and merging the
// partials equals aggregating the whole list.
func TestProperty_FlatFoldGrouping(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("aggregate(all) == merge(aggregate(halves))", prop.ForAll(
		func(seeds []int64, split int) bool {
			if len(seeds) == 0 {
				return true
			}
			cut := split % len(seeds)
			if cut < 0 {
				cut = -cut
			}

			reader := source.NewMemoryReader()
			files := make([]string, len(seeds))
			for i, s := range seeds {
				files[i] = fmt.Sprintf("file-%03d.parquet", i)
				reader.Add(files[i], mustTripsTable(tripsFrom(s)))
			}
			eng := NewFlatEngine(reader)

			whole, err := eng.Aggregate(context.Background(), files, source.SingleThreaded)
			if err != nil {
				return false
			}
			left, err := eng.Aggregate(context.Background(), files[:cut], source.SingleThreaded)
			if err != nil {
				return false
			}
			right, err := eng.Aggregate(context.Background(), files[cut:], source.SingleThreaded)
			if err != nil {
				return false
			}
			return left.Merge(right) == whole
		},
		gen.SliceOf(gen.Int64Range(0, 1<<40)),
		gen.IntRange(0, 1<<20),
	))

	properties.TestingRun(t)
}
