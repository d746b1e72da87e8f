package integration

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamkarasik/hardwood/internal/bench"
	"github.com/iamkarasik/hardwood/internal/dataset"
	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/report"
	"github.com/iamkarasik/hardwood/internal/source"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

func TestNestedSessionEndToEnd(t *testing.T) {
	store := synthStore(t, dataset.SynthConfig{Seed: 11, Months: 1, TripRows: 10, PlaceRows: 800})
	workload := bench.NewNestedWorkload(store, source.NewParquetReader(store))

	runner := bench.NewRunner(workload, bench.Options{Runs: 2})
	session, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, session.Results, 2)

	// Container cardinalities from offset arithmetic must match a naive
	// row-by-row read of the same file.
	counts, err := dataset.NaivePlaceCounts(context.Background(), store, dataset.PlacesFile)
	require.NoError(t, err)
	require.Equal(t, int64(800), counts.Rows)

	for _, result := range session.Results {
		for _, run := range result.Runs {
			got, ok := run.Aggregate.(aggregate.PlaceSummary)
			require.True(t, ok)
			require.Equal(t, counts.Rows, got.Rows)
			require.Equal(t, counts.WebsiteTotal, got.WebsiteCount)
			require.Equal(t, counts.WebsiteMax, got.MaxWebsiteCount)
			require.Equal(t, counts.SourceTotal, got.SourceCount)
			require.Equal(t, counts.SourceMax, got.MaxSourceCount)
			require.Equal(t, counts.AddressTotal, got.AddressCount)
			require.Equal(t, counts.AddressMax, got.MaxAddressCount)
			require.Equal(t, counts.NameEntryTotal, got.NameEntryCount)
			require.Equal(t, counts.NameEntryMax, got.MaxNameEntries)
			require.Equal(t, counts.MaxPrimaryLen, got.MaxPrimaryNameLength)
		}
	}

	verification := bench.Verify(session, bench.DefaultTolerance)
	require.True(t, verification.OK)
	require.NoError(t, verification.Err())

	var buf bytes.Buffer
	require.NoError(t, report.Generate(&buf, session, verification))
	out := buf.String()
	require.Contains(t, out, "HARDWOOD PERFORMANCE RESULTS (NESTED)")
	require.Contains(t, out, "Files processed: 1")
}

func TestNestedMissingPlacesFile(t *testing.T) {
	// Trip files only: the nested workload must still report missing data.
	store := synthStore(t, dataset.SynthConfig{Seed: 2, Months: 1, TripRows: 10, PlaceRows: 1})
	require.NoError(t, store.Delete(context.Background(), dataset.PlacesFile))

	workload := bench.NewNestedWorkload(store, source.NewParquetReader(store))
	runner := bench.NewRunner(workload, bench.Options{})

	session, err := runner.Run(context.Background())
	require.Nil(t, session)
	require.Error(t, err)
	require.True(t, errors.IsMissingData(err))
	require.Contains(t, err.Error(), dataset.PlacesFile)
}
