package bench

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iamkarasik/hardwood/internal/contender"
	"github.com/iamkarasik/hardwood/internal/dataset"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

// DefaultRuns is the number of timed runs per contender when Options does
// not say otherwise.
const DefaultRuns = 5

// Options selects the contenders and run count for a session.
type Options struct {
	// Contenders holds requested contender names; empty selects all.
	Contenders []string
	// Runs is the number of timed runs per contender.
	Runs int
}

// Run is one timed aggregation under one contender.
type Run struct {
	// Index is 1-based within the contender's session.
	Index     int
	Duration  time.Duration
	Aggregate aggregate.Aggregate
}

// ContenderResult holds one contender's timed runs.
type ContenderResult struct {
	Contender contender.Contender
	// Cores is the core count per-core throughput is normalized against.
	Cores int
	Runs  []Run
}

// Session is the full record of one benchmark invocation.
type Session struct {
	ID        string
	StartedAt time.Time
	Dataset   dataset.Dataset
	Results   []ContenderResult
}

// Reference returns the session's reference aggregate: the first
// contender's first run.
func (s *Session) Reference() aggregate.Aggregate {
	return s.Results[0].Runs[0].Aggregate
}

// Runner executes a workload under each selected contender.
type Runner struct {
	workload Workload
	opts     Options
}

// NewRunner creates a runner. A non-positive run count falls back to
// DefaultRuns.
func NewRunner(w Workload, opts Options) *Runner {
	if opts.Runs <= 0 {
		opts.Runs = DefaultRuns
	}
	return &Runner{workload: w, opts: opts}
}

// Run executes the session: contender resolution, dataset discovery, one
// discarded warmup with the first contender's hint, then the timed runs,
// strictly sequentially. Any read failure aborts the session; there are no
// retries.
func (r *Runner) Run(ctx context.Context) (*Session, error) {
	selected, err := contender.Resolve(r.opts.Contenders)
	if err != nil {
		return nil, err
	}

	ds, err := r.workload.Describe(ctx)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Dataset:   ds,
	}

	log.Printf("bench: warming up (%s, %d files)", selected[0].Key, len(ds.Files))
	if err := r.workload.Warmup(ctx, selected[0].Hint()); err != nil {
		return nil, err
	}

	for _, c := range selected {
		result := ContenderResult{Contender: c, Cores: c.Cores()}
		for i := 1; i <= r.opts.Runs; i++ {
			start := time.Now()
			agg, err := r.workload.Run(ctx, c.Hint())
			if err != nil {
				return nil, err
			}
			elapsed := time.Since(start)
			log.Printf("bench: %s run %d/%d: %s", c.Key, i, r.opts.Runs, elapsed.Round(time.Millisecond))
			result.Runs = append(result.Runs, Run{Index: i, Duration: elapsed, Aggregate: agg})
		}
		session.Results = append(session.Results, result)
	}

	return session, nil
}
