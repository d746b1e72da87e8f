package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iamkarasik/hardwood/internal/contender"
	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

// sessionWith builds a session whose i-th contender produced the i-th
// run list.
func sessionWith(runs ...[]aggregate.Aggregate) *Session {
	registered := contender.Registered()
	s := &Session{}
	for i, aggs := range runs {
		result := ContenderResult{Contender: registered[i%len(registered)], Cores: 1}
		for j, agg := range aggs {
			result.Runs = append(result.Runs, Run{Index: j + 1, Duration: time.Millisecond, Aggregate: agg})
		}
		s.Results = append(s.Results, result)
	}
	return s
}

func TestVerifyAgreement(t *testing.T) {
	totals := aggregate.TripTotals{Rows: 100, PassengerCount: 250, TripDistance: 310.5, FareAmount: 1287.25}
	s := sessionWith(
		[]aggregate.Aggregate{totals},
		[]aggregate.Aggregate{totals},
	)

	v := Verify(s, DefaultTolerance)
	require.True(t, v.OK)
	require.False(t, v.Skipped)
	require.NoError(t, v.Err())

	require.Len(t, v.Contenders, 1)
	require.Equal(t, "multi_threaded", v.Contenders[0].Contender.Key)
	require.Len(t, v.Contenders[0].Fields, 4)
	for _, fc := range v.Contenders[0].Fields {
		require.True(t, fc.OK, fc.Name)
	}
}

func TestVerifyIntMismatch(t *testing.T) {
	reference := aggregate.TripTotals{Rows: 100, PassengerCount: 250, TripDistance: 310.5, FareAmount: 1287.25}
	differing := reference
	differing.PassengerCount = 251

	v := Verify(sessionWith(
		[]aggregate.Aggregate{reference},
		[]aggregate.Aggregate{differing},
	), DefaultTolerance)

	require.False(t, v.OK)
	require.False(t, v.Contenders[0].OK)
	for _, fc := range v.Contenders[0].Fields {
		require.Equal(t, fc.Name != "passenger_count", fc.OK, fc.Name)
	}

	err := v.Err()
	require.Error(t, err)
	require.Equal(t, errors.ErrCategoryVerify, errors.GetCategory(err))
	require.Equal(t, errors.CodeResultMismatch, errors.GetCode(err))
	require.Contains(t, err.Error(), "multi_threaded (passenger_count)")
}

func TestVerifyFloatTolerance(t *testing.T) {
	reference := aggregate.TripTotals{Rows: 1, TripDistance: 100, FareAmount: 100}

	// Half the tolerance passes.
	near := reference
	near.TripDistance = 100 * (1 + 5e-7)
	v := Verify(sessionWith(
		[]aggregate.Aggregate{reference},
		[]aggregate.Aggregate{near},
	), DefaultTolerance)
	require.True(t, v.OK)

	// Five times the tolerance fails.
	far := reference
	far.TripDistance = 100 * (1 + 5e-6)
	v = Verify(sessionWith(
		[]aggregate.Aggregate{reference},
		[]aggregate.Aggregate{far},
	), DefaultTolerance)
	require.False(t, v.OK)
	require.Contains(t, v.Err().Error(), "trip_distance")
}

func TestVerifyZeroAgainstZero(t *testing.T) {
	v := Verify(sessionWith(
		[]aggregate.Aggregate{aggregate.TripTotals{}},
		[]aggregate.Aggregate{aggregate.TripTotals{}},
	), DefaultTolerance)
	require.True(t, v.OK)
}

func TestVerifySkippedForSingleContender(t *testing.T) {
	v := Verify(sessionWith(
		[]aggregate.Aggregate{aggregate.TripTotals{Rows: 5}},
	), DefaultTolerance)

	require.True(t, v.Skipped)
	require.True(t, v.OK)
	require.Empty(t, v.Contenders)
	require.NoError(t, v.Err())
}

func TestVerifyComparesFirstRunsOnly(t *testing.T) {
	reference := aggregate.TripTotals{Rows: 100, PassengerCount: 250}
	drifted := aggregate.TripTotals{Rows: 999, PassengerCount: 1}

	v := Verify(sessionWith(
		[]aggregate.Aggregate{reference, drifted},
		[]aggregate.Aggregate{reference, drifted},
	), DefaultTolerance)
	require.True(t, v.OK)
}

func TestVerifyToleranceFallback(t *testing.T) {
	v := Verify(sessionWith([]aggregate.Aggregate{aggregate.TripTotals{}}), 0)
	require.Equal(t, DefaultTolerance, v.Tolerance)
}
