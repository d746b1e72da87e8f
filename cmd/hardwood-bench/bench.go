package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iamkarasik/hardwood/internal/bench"
	"github.com/iamkarasik/hardwood/internal/config"
	"github.com/iamkarasik/hardwood/internal/dataset"
	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/history"
	"github.com/iamkarasik/hardwood/internal/report"
	"github.com/iamkarasik/hardwood/internal/source"
	"github.com/iamkarasik/hardwood/internal/storage"
)

func newFlatCmd(flags *rootFlags) *cobra.Command {
	var (
		contenders []string
		runs       int
	)

	cmd := &cobra.Command{
		Use:   "flat",
		Short: "Benchmark projected sums over the monthly trip files",
		Long: `Scan every monthly yellow-taxi trip file in the data directory and sum
the passenger_count, trip_distance, and fare_amount columns, folding the
per-file sums left to right. Each contender reads the same files; their
totals must agree.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd.Context(), flags, dataset.KindFlat, contenders, runs)
		},
	}
	addBenchFlags(cmd, &contenders, &runs)

	return cmd
}

func newNestedCmd(flags *rootFlags) *cobra.Command {
	var (
		contenders []string
		runs       int
	)

	cmd := &cobra.Command{
		Use:   "nested",
		Short: "Benchmark nested-column aggregation over the places file",
		Long: `Read the Overture Maps places file and aggregate deeply nested columns:
scalar extrema, list and map cardinalities derived from offsets, and the
longest primary name in Unicode code points.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd.Context(), flags, dataset.KindNested, contenders, runs)
		},
	}
	addBenchFlags(cmd, &contenders, &runs)

	return cmd
}

func addBenchFlags(cmd *cobra.Command, contenders *[]string, runs *int) {
	cmd.Flags().StringSliceVarP(contenders, "contenders", "c", nil,
		"Contenders to run: single_threaded, multi_threaded, all")
	cmd.Flags().IntVarP(runs, "runs", "r", 0,
		"Timed runs per contender")
}

// runBench executes one benchmark session end to end: config, store,
// runner, verification, report, and optional history recording.
func runBench(ctx context.Context, flags *rootFlags, kind dataset.Kind, contenders []string, runs int) error {
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}
	if len(contenders) > 0 {
		cfg.Contenders = contenders
	}
	if runs > 0 {
		cfg.Runs = runs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	reader := source.NewParquetReader(store)
	var workload bench.Workload
	switch kind {
	case dataset.KindNested:
		workload = bench.NewNestedWorkload(store, reader)
	default:
		workload = bench.NewFlatWorkload(store, reader)
	}

	log.Printf("bench: %s workload over %s, contenders %s, %d runs",
		kind, describeStore(cfg), strings.Join(cfg.Contenders, ","), cfg.Runs)

	runner := bench.NewRunner(workload, bench.Options{Contenders: cfg.Contenders, Runs: cfg.Runs})
	session, err := runner.Run(ctx)
	if err != nil {
		if errors.IsMissingData(err) {
			fmt.Println(messageOf(err))
			return nil
		}
		return err
	}
	session.Dataset.Source = describeStore(cfg)

	verification := bench.Verify(session, cfg.Verify.Tolerance)
	if err := report.Generate(os.Stdout, session, verification); err != nil {
		return err
	}

	recordHistory(ctx, cfg, session)

	// A verification mismatch fails the command, but only after the full
	// report has been written.
	return verification.Err()
}

// openStore builds the object store the configuration points at.
func openStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.Storage.Type == "s3" {
		return storage.NewS3Store(ctx, cfg.Storage.S3.Bucket, storage.S3Config{
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
		})
	}
	return storage.NewLocalStore(cfg.DataDir)
}

// describeStore names where the data lives, for logs and the report.
func describeStore(cfg *config.Config) string {
	if cfg.Storage.Type == "s3" {
		return "s3://" + cfg.Storage.S3.Bucket
	}
	return cfg.DataDir
}

// recordHistory stores the session if a history database is configured.
// Recording is best effort: a failure is logged, never fatal, because the
// report has already been delivered.
func recordHistory(ctx context.Context, cfg *config.Config, session *bench.Session) {
	if cfg.HistoryPath == "" {
		return
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Printf("history: %v", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, session); err != nil {
		log.Printf("history: %v", err)
		return
	}
	log.Printf("history: recorded session %s in %s", session.ID, cfg.HistoryPath)
}
