package contender

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/source"
)

func TestRegisteredOrder(t *testing.T) {
	all := Registered()
	require.Len(t, all, 2)

	require.Equal(t, "single_threaded", all[0].Key)
	require.Equal(t, "Go (single-threaded)", all[0].DisplayName)
	require.False(t, all[0].Parallel)

	require.Equal(t, "multi_threaded", all[1].Key)
	require.Equal(t, "Go (multi-threaded)", all[1].DisplayName)
	require.True(t, all[1].Parallel)

	// Registered hands out a copy.
	all[0].Key = "mutated"
	require.Equal(t, "single_threaded", Registered()[0].Key)
}

func TestResolveSelections(t *testing.T) {
	full := Registered()

	tests := []struct {
		name  string
		names []string
		want  []Contender
	}{
		{name: "empty selects all", names: nil, want: full},
		{name: "all keyword", names: []string{"all"}, want: full},
		{name: "all is case-insensitive", names: []string{"All"}, want: full},
		{name: "single name", names: []string{"multi_threaded"}, want: full[1:]},
		{
			name:  "request order with duplicates",
			names: []string{"multi_threaded", "single_threaded", "multi_threaded"},
			want:  []Contender{full[1], full[0], full[1]},
		},
		{
			name:  "all expands in place",
			names: []string{"single_threaded", "all"},
			want:  []Contender{full[0], full[0], full[1]},
		},
		{name: "whitespace trimmed", names: []string{" single_threaded "}, want: full[:1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.names)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolveUnknownName(t *testing.T) {
	_, err := Resolve([]string{"single_threaded", "pyarrow"})
	require.Error(t, err)
	require.True(t, errors.IsConfig(err))
	require.Equal(t, errors.CodeUnknownContender, errors.GetCode(err))
	require.Contains(t, err.Error(),
		`unknown contender "pyarrow" (valid values: single_threaded, multi_threaded, all)`)
}

func TestHintAndCores(t *testing.T) {
	all := Registered()

	require.Equal(t, source.SingleThreaded, all[0].Hint())
	require.Equal(t, 1, all[0].Cores())

	require.Equal(t, source.MaxParallelism(), all[1].Hint())
	require.Equal(t, runtime.NumCPU(), all[1].Cores())
}
