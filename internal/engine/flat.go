package engine

import (
	"context"

	"github.com/iamkarasik/hardwood/internal/source"
	"github.com/iamkarasik/hardwood/internal/table"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

// FlatProjection is the column set the flat workload reads.
var FlatProjection = source.Projection{"passenger_count", "trip_distance", "fare_amount"}

// FlatEngine sums the projected trip columns across files.
type FlatEngine struct {
	reader source.Reader
}

// NewFlatEngine creates a flat engine on the given source.
func NewFlatEngine(r source.Reader) *FlatEngine {
	return &FlatEngine{reader: r}
}

// Aggregate reads each file in the given order and folds its sums into
// the running totals. Any read failure aborts the fold.
func (e *FlatEngine) Aggregate(ctx context.Context, files []string, hint source.ConcurrencyHint) (aggregate.TripTotals, error) {
	var totals aggregate.TripTotals
	for _, name := range files {
		part, err := e.aggregateFile(ctx, name, hint)
		if err != nil {
			return aggregate.TripTotals{}, err
		}
		totals = totals.Merge(part)
	}
	return totals, nil
}

func (e *FlatEngine) aggregateFile(ctx context.Context, name string, hint source.ConcurrencyHint) (aggregate.TripTotals, error) {
	tbl, err := e.reader.Read(ctx, name, FlatProjection, hint)
	if err != nil {
		return aggregate.TripTotals{}, err
	}

	passengers, err := columnAs[*table.Int64Column](tbl, name, "passenger_count")
	if err != nil {
		return aggregate.TripTotals{}, err
	}
	distance, err := columnAs[*table.Float64Column](tbl, name, "trip_distance")
	if err != nil {
		return aggregate.TripTotals{}, err
	}
	fare, err := columnAs[*table.Float64Column](tbl, name, "fare_amount")
	if err != nil {
		return aggregate.TripTotals{}, err
	}

	return aggregate.TripTotals{
		Rows:           tbl.NumRows(),
		PassengerCount: passengers.Sum(),
		TripDistance:   distance.Sum(),
		FareAmount:     fare.Sum(),
	}, nil
}
