package bench

import "time"

const bytesPerMB = 1024 * 1024

// Stats summarizes one contender's timed runs.
type Stats struct {
	Mean   time.Duration
	Min    time.Duration
	Max    time.Duration
	Spread time.Duration

	// RowsPerSec and MBPerSec are computed from the mean duration;
	// RowsPerSecPerCore normalizes by the contender's core count.
	RowsPerSec        float64
	RowsPerSecPerCore float64
	MBPerSec          float64
}

// ComputeStats reduces a contender's runs to duration and throughput
// statistics. Rows come from the contender's first-run aggregate, bytes
// from the dataset under measurement.
func ComputeStats(result ContenderResult, totalBytes int64) Stats {
	if len(result.Runs) == 0 {
		return Stats{}
	}

	var total time.Duration
	min, max := result.Runs[0].Duration, result.Runs[0].Duration
	for _, run := range result.Runs {
		total += run.Duration
		if run.Duration < min {
			min = run.Duration
		}
		if run.Duration > max {
			max = run.Duration
		}
	}

	s := Stats{
		Mean:   total / time.Duration(len(result.Runs)),
		Min:    min,
		Max:    max,
		Spread: max - min,
	}

	if secs := s.Mean.Seconds(); secs > 0 {
		rows := result.Runs[0].Aggregate.RowCount()
		s.RowsPerSec = float64(rows) / secs
		cores := result.Cores
		if cores < 1 {
			cores = 1
		}
		s.RowsPerSecPerCore = s.RowsPerSec / float64(cores)
		s.MBPerSec = float64(totalBytes) / bytesPerMB / secs
	}
	return s
}
