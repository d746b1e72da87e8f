package engine

import (
	"context"
	"unicode/utf8"

	"github.com/iamkarasik/hardwood/internal/source"
	"github.com/iamkarasik/hardwood/internal/table"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

// NestedProjection is the column set the nested workload reads.
var NestedProjection = source.Projection{
	"version", "confidence", "bbox", "websites", "sources", "addresses", "names",
}

// NestedEngine computes container statistics over a places file.
type NestedEngine struct {
	reader source.Reader
}

// NewNestedEngine creates a nested engine on the given source.
func NewNestedEngine(r source.Reader) *NestedEngine {
	return &NestedEngine{reader: r}
}

// Aggregate reads the places file and reduces every projected column.
// Extrema over all-null columns stay zero. Container cardinalities come
// from offset boundary pairs; null rows are skipped, not counted as
// empty.
func (e *NestedEngine) Aggregate(ctx context.Context, file string, hint source.ConcurrencyHint) (aggregate.PlaceSummary, error) {
	tbl, err := e.reader.Read(ctx, file, NestedProjection, hint)
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}

	sum := aggregate.PlaceSummary{Rows: tbl.NumRows()}

	version, err := columnAs[*table.Int32Column](tbl, file, "version")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	if v, ok := version.Min(); ok {
		sum.MinVersion = v
	}
	if v, ok := version.Max(); ok {
		sum.MaxVersion = v
	}

	confidence, err := columnAs[*table.Float64Column](tbl, file, "confidence")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	if v, ok := confidence.Min(); ok {
		sum.MinConfidence = v
	}
	if v, ok := confidence.Max(); ok {
		sum.MaxConfidence = v
	}

	bbox, err := columnAs[*table.StructColumn](tbl, file, "bbox")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	xmin, err := fieldAs[*table.Float32Column](bbox, file, "xmin")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	if v, ok := xmin.Min(); ok {
		sum.MinBboxXmin = v
	}
	xmax, err := fieldAs[*table.Float32Column](bbox, file, "xmax")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	if v, ok := xmax.Max(); ok {
		sum.MaxBboxXmax = v
	}

	websites, err := columnAs[*table.ListColumn](tbl, file, "websites")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	sum.WebsiteCount, sum.MaxWebsiteCount = sumMax(websites.Lengths())

	sources, err := columnAs[*table.ListColumn](tbl, file, "sources")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	sum.SourceCount, sum.MaxSourceCount = sumMax(sources.Lengths())

	addresses, err := columnAs[*table.ListColumn](tbl, file, "addresses")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	sum.AddressCount, sum.MaxAddressCount = sumMax(addresses.Lengths())

	names, err := columnAs[*table.StructColumn](tbl, file, "names")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	common, err := fieldAs[*table.MapColumn](names, file, "common")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	// A null names struct nulls the map row too, so the map's own
	// validity covers both levels.
	sum.NameEntryCount, sum.MaxNameEntries = sumMax(common.Lengths())

	primary, err := fieldAs[*table.StringColumn](names, file, "primary")
	if err != nil {
		return aggregate.PlaceSummary{}, err
	}
	for i := 0; i < primary.Len(); i++ {
		if !primary.IsValid(i) {
			continue
		}
		if n := int64(utf8.RuneCount(primary.Bytes(i))); n > sum.MaxPrimaryNameLength {
			sum.MaxPrimaryNameLength = n
		}
	}

	return sum, nil
}
