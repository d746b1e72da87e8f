// Package main implements the hardwood-bench binary: a benchmark harness
// measuring how fast Parquet files can be read and aggregated under
// different column materialization strategies.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iamkarasik/hardwood/internal/config"
	"github.com/iamkarasik/hardwood/internal/errors"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configFile string
	dataDir    string
	history    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "hardwood-bench",
		Short: "Parquet read and aggregation benchmark harness",
		Long: `Hardwood-bench measures Parquet read and aggregation throughput under
single-threaded and multi-threaded column materialization, over a decade of
NYC taxi trip files (flat workload) and an Overture Maps places extract
(nested workload). Contenders run the same aggregation and their results
are verified against each other field by field.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Path to configuration file (YAML or JSON)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "Directory the benchmark datasets live in")
	pf.StringVar(&flags.history, "history", "", "SQLite database to record sessions in")

	// Flag errors are configuration errors and should exit accordingly.
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewConfigError(errors.CodeInvalidConfig, err.Error())
	})

	root.AddCommand(
		newFlatCmd(flags),
		newNestedCmd(flags),
		newFetchCmd(flags),
		newHistoryCmd(flags),
	)

	return root
}

// resolveConfig loads configuration in precedence order: defaults, then
// config file, then environment, then persistent flags. Per-command flags
// are applied by the command itself.
func resolveConfig(flags *rootFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if flags.configFile != "" {
		cfg, err = config.LoadFromFile(flags.configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if flags.dataDir != "" {
		cfg.DataDir = flags.dataDir
	}
	if flags.history != "" {
		cfg.HistoryPath = flags.history
	}

	return cfg, nil
}

// exitCode maps an error to the process exit code: 2 for configuration
// errors, 1 for everything else. Missing data never reaches here; the
// bench commands report it and return nil.
func exitCode(err error) int {
	if errors.IsConfig(err) {
		return 2
	}
	return 1
}

// messageOf returns the bare message of a structured error, falling back
// to the full error text.
func messageOf(err error) string {
	var be *errors.BenchError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
