package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FranksOps/careerscout/internal/config"
)

type rootOptions struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	cmd := &cobra.Command{
		Use:           "careerscout",
		Short:         "Aggregate courses and developer profiles from public sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.v, opts.configFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			opts.cfg = cfg
			opts.logger = logger
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default ./careerscout.yaml or $HOME/.careerscout/careerscout.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("fingerprint", "chrome", "TLS fingerprint: chrome, firefox, safari, go or random")
	flags.String("audit-backend", "none", "fetch audit backend: none, sqlite, postgres, json or csv")
	flags.String("audit-dsn", "", "audit backend DSN or file path")

	// Flags override file and environment values only when set.
	for key, name := range map[string]string{
		"log.level":         "log-level",
		"log.format":        "log-format",
		"fetch.fingerprint": "fingerprint",
		"audit.backend":     "audit-backend",
		"audit.dsn":         "audit-dsn",
	} {
		_ = opts.v.BindPFlag(key, flags.Lookup(name))
	}

	cmd.AddCommand(
		newServeCmd(opts),
		newSearchCmd(opts),
		newScrapeCmd(opts),
		newGitHubCmd(opts),
		newLinkedInCmd(opts),
		newReportCmd(opts),
	)
	return cmd
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
