package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/FranksOps/careerscout/internal/profile"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search courses on every configured platform",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.courses.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringSlice("platforms", nil, "platforms to search (default coursera,udemy,youtube)")
	cmd.Flags().Int("limit", 5, "results per platform")
	_ = opts.v.BindPFlag("search.platforms", cmd.Flags().Lookup("platforms"))
	_ = opts.v.BindPFlag("search.per_platform_limit", cmd.Flags().Lookup("limit"))
	return cmd
}

func newScrapeCmd(opts *rootOptions) *cobra.Command {
	var platform string
	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape a single course page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.courses.Scrape(cmd.Context(), platform, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "platform hint: coursera, udemy, youtube or generic (default from the URL host)")
	return cmd
}

func newGitHubCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github <username>",
		Short: "Look up a GitHub profile with repositories and language statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.github.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().String("token", "", "GitHub API token")
	_ = opts.v.BindPFlag("github.token", cmd.Flags().Lookup("token"))
	return cmd
}

func newLinkedInCmd(opts *rootOptions) *cobra.Command {
	var fallback bool
	cmd := &cobra.Command{
		Use:   "linkedin <username>",
		Short: "Look up a public LinkedIn profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.linkedin.Lookup(cmd.Context(), args[0])
			if err != nil {
				if !fallback {
					return err
				}
				opts.logger.Warn("serving fallback data", "endpoint", "linkedin", "input", args[0], "err", err)
				res = profile.FallbackLinkedIn(args[0])
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&fallback, "fallback", true, "print a synthetic profile when the page cannot be read")
	return cmd
}
