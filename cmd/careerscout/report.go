package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FranksOps/careerscout/internal/report"
	"github.com/FranksOps/careerscout/internal/storage"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		platform string
		since    time.Duration
		limit    int
		blocked  bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize audited upstream fetches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := openAudit(ctx, opts.cfg.Audit)
			if err != nil {
				return fmt.Errorf("open audit backend: %w", err)
			}
			if backend == nil {
				return errors.New("report needs an audit backend; set audit.backend and audit.dsn")
			}
			defer backend.Close()

			filter := storage.Filter{Platform: platform, Limit: limit}
			if since > 0 {
				t := time.Now().Add(-since)
				filter.Since = &t
			}
			if cmd.Flags().Changed("blocked") {
				filter.DetectedBot = &blocked
			}

			results, err := backend.Query(ctx, filter)
			if err != nil {
				return fmt.Errorf("query audit backend: %w", err)
			}
			return report.Write(cmd.OutOrStdout(), format, report.GenerateSummary(results))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&platform, "platform", "", "only fetches to this platform")
	flags.DurationVar(&since, "since", 0, "only fetches within this window, e.g. 24h")
	flags.IntVar(&limit, "limit", 0, "at most this many of the newest fetches (0 = all)")
	flags.BoolVar(&blocked, "blocked", false, "only fetches that were (or with =false, were not) flagged as bot-blocked")
	flags.StringVar(&format, "format", "text", "output format: text, json or html")
	return cmd
}
