package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/iamkarasik/hardwood/internal/bench"
	"github.com/iamkarasik/hardwood/internal/contender"
	"github.com/iamkarasik/hardwood/internal/dataset"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func recordedSession(id string, startedAt time.Time, totals aggregate.TripTotals) *bench.Session {
	registered := contender.Registered()
	session := &bench.Session{
		ID:        id,
		StartedAt: startedAt,
		Dataset: dataset.Dataset{
			Kind:       dataset.KindFlat,
			Files:      []string{dataset.TaxiFile(2024, 1), dataset.TaxiFile(2024, 2)},
			TotalBytes: 64 << 20,
		},
	}
	for _, c := range registered {
		result := bench.ContenderResult{Contender: c, Cores: c.Cores()}
		for i := 1; i <= 2; i++ {
			result.Runs = append(result.Runs, bench.Run{
				Index:     i,
				Duration:  time.Duration(100*i) * time.Millisecond,
				Aggregate: totals,
			})
		}
		session.Results = append(session.Results, result)
	}
	return session
}

func TestRecordAndRecent(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	startedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	totals := aggregate.TripTotals{Rows: 1000, PassengerCount: 2500, TripDistance: 310.5, FareAmount: 1287.25}
	session := recordedSession("0d2f9b61-4c7e-4f57-9f1c-52ab5f0a8c11", startedAt, totals)

	require.NoError(t, store.Record(ctx, session))

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	summary := recent[0]
	require.Equal(t, session.ID, summary.ID)
	require.Equal(t, "flat", summary.Kind)
	require.Equal(t, startedAt.Unix(), summary.StartedAt.Unix())
	require.Equal(t, 2, summary.Files)
	require.Equal(t, int64(1000), summary.Rows)
	require.Equal(t, int64(64<<20), summary.Bytes)
	require.Equal(t, runtime.NumCPU(), summary.Cores)
	require.Equal(t, []string{"single_threaded", "multi_threaded"}, summary.Contenders)
}

func TestRecentOrderingAndLimit(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ids := []string{
		"11111111-1111-4111-8111-111111111111",
		"22222222-2222-4222-8222-222222222222",
		"33333333-3333-4333-8333-333333333333",
	}
	for i, id := range ids {
		session := recordedSession(id, base.Add(time.Duration(i)*time.Hour), aggregate.TripTotals{Rows: 1})
		require.NoError(t, store.Record(ctx, session))
	}

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	require.Equal(t, ids[2], recent[0].ID)
	require.Equal(t, ids[1], recent[1].ID)
	require.Equal(t, ids[0], recent[2].ID)

	limited, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, ids[2], limited[0].ID)
	require.Equal(t, ids[1], limited[1].ID)
}

func TestRecentEmpty(t *testing.T) {
	store, _ := openStore(t)

	recent, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, recent)
}

func TestRunsRoundtrip(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	totals := aggregate.TripTotals{Rows: 42, PassengerCount: 99, TripDistance: 12.5, FareAmount: 80.75}
	session := recordedSession("44444444-4444-4444-8444-444444444444", time.Now(), totals)
	require.NoError(t, store.Record(ctx, session))

	records, err := store.Runs(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Ordered by contender key, then run index.
	require.Equal(t, "multi_threaded", records[0].Contender)
	require.Equal(t, 1, records[0].Index)
	require.Equal(t, "multi_threaded", records[1].Contender)
	require.Equal(t, 2, records[1].Index)
	require.Equal(t, "single_threaded", records[2].Contender)
	require.Equal(t, "single_threaded", records[3].Contender)

	require.Equal(t, 100*time.Millisecond, records[0].Duration)
	require.Equal(t, 200*time.Millisecond, records[1].Duration)

	want, err := Fingerprint(totals)
	require.NoError(t, err)
	for _, record := range records {
		require.Equal(t, want, record.Fingerprint)

		var decoded aggregate.TripTotals
		require.NoError(t, json.Unmarshal(record.Aggregate, &decoded))
		require.Equal(t, totals, decoded)
	}
}

func TestRunsUnknownSession(t *testing.T) {
	store, _ := openStore(t)

	records, err := store.Runs(context.Background(), "no-such-session")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestReopenKeepsSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	session := recordedSession("55555555-5555-4555-8555-555555555555", time.Now(), aggregate.TripTotals{Rows: 7})
	require.NoError(t, store.Record(context.Background(), session))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	recent, err := reopened.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, session.ID, recent[0].ID)
}

func TestOpenRefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (99, 0)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "newer than supported")
}

func TestFingerprintMatchesEqualAggregates(t *testing.T) {
	a := aggregate.TripTotals{Rows: 10, PassengerCount: 20, TripDistance: 1.5, FareAmount: 9.25}
	b := aggregate.TripTotals{Rows: 10, PassengerCount: 20, TripDistance: 1.5, FareAmount: 9.25}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)

	require.Equal(t, fa, fb)
	require.Len(t, fa, 32)

	fc, err := Fingerprint(aggregate.TripTotals{Rows: 11, PassengerCount: 20, TripDistance: 1.5, FareAmount: 9.25})
	require.NoError(t, err)
	require.NotEqual(t, fa, fc)
}

func TestProperty_FingerprintStability(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("equal aggregates share a fingerprint", prop.ForAll(
		func(rows, passengers int64, distance, fare float64) bool {
			a := aggregate.TripTotals{Rows: rows, PassengerCount: passengers, TripDistance: distance, FareAmount: fare}
			b := aggregate.TripTotals{Rows: rows, PassengerCount: passengers, TripDistance: distance, FareAmount: fare}
			fa, errA := Fingerprint(a)
			fb, errB := Fingerprint(b)
			return errA == nil && errB == nil && fa == fb && len(fa) == 32
		},
		gen.Int64Range(0, 1<<40),
		gen.Int64Range(0, 1<<40),
		gen.Float64Range(-1e9, 1e9),
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("row count is part of the fingerprint", prop.ForAll(
		func(rows int64) bool {
			a := aggregate.TripTotals{Rows: rows}
			b := aggregate.TripTotals{Rows: rows + 1}
			fa, errA := Fingerprint(a)
			fb, errB := Fingerprint(b)
			return errA == nil && errB == nil && fa != fb
		},
		gen.Int64Range(0, 1<<40),
	))

	properties.TestingRun(t)
}
