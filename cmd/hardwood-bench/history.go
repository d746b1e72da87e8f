package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/history"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently recorded benchmark sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd.Context(), flags, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10,
		"Maximum number of sessions to list")

	return cmd
}

func runHistory(ctx context.Context, flags *rootFlags, limit int) error {
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}
	if cfg.HistoryPath == "" {
		return errors.NewConfigError(errors.CodeInvalidConfig,
			"no history database configured: set --history, history_path, or HARDWOOD_HISTORY_PATH")
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no recorded sessions")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %-6s  %s\n",
			s.StartedAt.Format("2006-01-02 15:04:05"), s.Kind, s.ID)
		fmt.Printf("    %d files, %d rows, %.1f MB, %d cores, contenders: %s\n",
			s.Files, s.Rows, float64(s.Bytes)/(1024*1024), s.Cores,
			strings.Join(s.Contenders, ", "))
	}
	return nil
}
