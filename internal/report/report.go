// Package report renders a benchmark session as a sectioned console
// report: environment, data, reference aggregates, verification, and
// per-contender performance.
package report

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/iamkarasik/hardwood/internal/bench"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

const bannerWidth = 100

// Generate writes the full report for a completed session.
func Generate(w io.Writer, session *bench.Session, verification bench.Verification) error {
	if session == nil || len(session.Results) == 0 {
		return fmt.Errorf("no results to report")
	}

	banner := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "HARDWOOD PERFORMANCE RESULTS (%s)\n", strings.ToUpper(string(session.Dataset.Kind)))
	fmt.Fprintf(w, "session %s\n", session.ID)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(w, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "  CPU cores:  %d\n", runtime.NumCPU())
	fmt.Fprintln(w)

	reference := session.Reference()
	fmt.Fprintln(w, "Data:")
	if session.Dataset.Source != "" {
		fmt.Fprintf(w, "  Source:          %s\n", session.Dataset.Source)
	}
	fmt.Fprintf(w, "  Files processed: %d\n", len(session.Dataset.Files))
	fmt.Fprintf(w, "  Total rows:      %s\n", formatInt(reference.RowCount()))
	fmt.Fprintf(w, "  Total size:      %s MB\n", formatFloat(float64(session.Dataset.TotalBytes)/(1024*1024), 1))
	fmt.Fprintf(w, "  Runs per contender: %d\n", len(session.Results[0].Runs))
	fmt.Fprintln(w)

	writeAggregates(w, session.Results[0].Contender.DisplayName, reference)
	writeVerification(w, verification)
	writePerformance(w, session)

	fmt.Fprintln(w, banner)
	return nil
}

// writeAggregates labels every field of the reference aggregate.
func writeAggregates(w io.Writer, displayName string, reference aggregate.Aggregate) {
	fields := reference.Fields()
	width := 0
	for _, f := range fields {
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}

	fmt.Fprintf(w, "Aggregates (%s, run 1):\n", displayName)
	for _, f := range fields {
		fmt.Fprintf(w, "  %-*s %s\n", width+1, f.Name+":", fieldValue(f))
	}
	fmt.Fprintln(w)
}

func writeVerification(w io.Writer, v bench.Verification) {
	if v.Skipped {
		fmt.Fprintln(w, "Correctness Verification: skipped (single contender)")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, "Correctness Verification:")
	for _, cv := range v.Contenders {
		fmt.Fprintf(w, "  %s:\n", cv.Contender.DisplayName)
		width := 0
		for _, fc := range cv.Fields {
			if len(fc.Name) > width {
				width = len(fc.Name)
			}
		}
		for _, fc := range cv.Fields {
			if fc.OK {
				fmt.Fprintf(w, "    %-*s ok\n", width+1, fc.Name+":")
				continue
			}
			fmt.Fprintf(w, "    %-*s MISMATCH (reference %s, got %s)\n",
				width+1, fc.Name+":", fieldValue(fc.Reference), fieldValue(fc.Actual))
		}
	}
	if v.OK {
		fmt.Fprintln(w, "  Verdict: all contenders agree")
	} else {
		fmt.Fprintln(w, "  Verdict: RESULTS MISMATCH")
	}
	fmt.Fprintln(w)
}

func writePerformance(w io.Writer, session *bench.Session) {
	fmt.Fprintln(w, "Performance (all runs):")
	for _, result := range session.Results {
		stats := bench.ComputeStats(result, session.Dataset.TotalBytes)
		rows := result.Runs[0].Aggregate.RowCount()

		fmt.Fprintf(w, "  %s (%s):\n", result.Contender.DisplayName, coresLabel(result.Cores))
		for _, run := range result.Runs {
			fmt.Fprintf(w, "    run %d: %8s  %s rows/sec\n",
				run.Index, formatDuration(run.Duration), formatRate(perSecond(rows, run.Duration)))
		}
		fmt.Fprintf(w, "    [AVG]  %8s  %s rows/sec  %s rows/sec/core  %s MB/sec\n",
			formatDuration(stats.Mean), formatRate(stats.RowsPerSec),
			formatRate(stats.RowsPerSecPerCore), formatFloat(stats.MBPerSec, 1))
		fmt.Fprintf(w, "    min: %s, max: %s, spread: %s\n",
			formatDuration(stats.Min), formatDuration(stats.Max), formatDuration(stats.Spread))
		fmt.Fprintln(w)
	}
}

func coresLabel(cores int) string {
	if cores == 1 {
		return "1 core"
	}
	return fmt.Sprintf("%d cores", cores)
}

func perSecond(rows int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(rows) / d.Seconds()
}

func fieldValue(f aggregate.Field) string {
	if f.Kind == aggregate.KindInt {
		return formatInt(f.Int)
	}
	return formatFloat(f.Float, 2)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func formatInt(v int64) string {
	return withCommas(strconv.FormatInt(v, 10))
}

func formatRate(v float64) string {
	return withCommas(strconv.FormatFloat(v, 'f', 0, 64))
}

func formatFloat(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return withCommas(s)
	}
	return withCommas(s[:dot]) + s[dot:]
}

// withCommas groups the digits of an integer string by thousands.
func withCommas(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
