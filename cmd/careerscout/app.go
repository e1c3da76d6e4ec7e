package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FranksOps/careerscout/internal/config"
	"github.com/FranksOps/careerscout/internal/course"
	"github.com/FranksOps/careerscout/internal/fingerprint"
	"github.com/FranksOps/careerscout/internal/profile"
	"github.com/FranksOps/careerscout/internal/scraper"
	"github.com/FranksOps/careerscout/internal/storage"
	"github.com/FranksOps/careerscout/internal/storage/csvbackend"
	"github.com/FranksOps/careerscout/internal/storage/jsonbackend"
	"github.com/FranksOps/careerscout/internal/storage/postgres"
	"github.com/FranksOps/careerscout/internal/storage/sqlite"
	"github.com/FranksOps/careerscout/pkg/proxy"
	"github.com/FranksOps/careerscout/pkg/ratelimit"
	"github.com/FranksOps/careerscout/pkg/useragent"
)

// robotsAgent is the product token matched against robots.txt groups.
const robotsAgent = "CareerScout"

// app is the wired set of services shared by every command.
type app struct {
	audit    storage.Backend
	courses  *course.Aggregator
	github   *profile.GitHub
	linkedin *profile.LinkedIn
}

func openAudit(ctx context.Context, cfg config.AuditConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "sqlite":
		return sqlite.New(cfg.DSN)
	case "postgres":
		return postgres.New(ctx, cfg.DSN)
	case "json":
		return jsonbackend.New(cfg.DSN)
	case "csv":
		return csvbackend.New(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	audit, err := openAudit(ctx, cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("open audit backend: %w", err)
	}
	a := &app{audit: audit}

	fp, err := fingerprint.ParseProfile(cfg.Fetch.Fingerprint)
	if err != nil {
		a.Close()
		return nil, err
	}

	var proxies *proxy.Pool
	if len(cfg.Fetch.Proxies) > 0 || cfg.Fetch.ProxyFile != "" {
		proxies = proxy.NewPool(proxy.Config{})
		if err := proxies.Add(cfg.Fetch.Proxies...); err != nil {
			a.Close()
			return nil, fmt.Errorf("fetch.proxies: %w", err)
		}
		if cfg.Fetch.ProxyFile != "" {
			if err := proxies.LoadFile(cfg.Fetch.ProxyFile); err != nil {
				a.Close()
				return nil, fmt.Errorf("fetch.proxy_file: %w", err)
			}
		}
	}

	base := scraper.FetchConfig{
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		ProxyPool:    proxies,
		UAPool:       useragent.NewPool(cfg.Fetch.UserAgents),
		Fingerprint:  fp,
		Limiters:     ratelimit.NewGroup(cfg.Fetch.RPS, cfg.Fetch.Jitter),
		Audit:        audit,
		Logger:       logger,
	}

	searchCfg := base
	searchCfg.Timeout = cfg.Search.Timeout
	searchFetcher, err := scraper.NewFetcher(searchCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	githubCfg := base
	githubCfg.Timeout = cfg.GitHub.Timeout
	githubFetcher, err := scraper.NewFetcher(githubCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var robots *scraper.RobotsTxtAuditor
	if cfg.Fetch.RespectRobots {
		robots = scraper.NewRobotsTxtAuditor(searchFetcher, robotsAgent, logger)
	}

	a.courses = course.NewAggregator(searchFetcher, course.AggregatorConfig{
		Adapters: searchAdapters(cfg.Search),
		Limit:    cfg.Search.PerPlatformLimit,
		Logger:   logger,
		Robots:   robots,
	})
	a.github = profile.NewGitHub(githubFetcher, profile.GitHubConfig{
		BaseURL:             cfg.GitHub.BaseURL,
		Token:               cfg.GitHub.Token,
		LanguageConcurrency: cfg.GitHub.LanguageConcurrency,
		Logger:              logger,
	})
	a.linkedin = profile.NewLinkedIn(searchFetcher, cfg.LinkedIn.BaseURL)
	return a, nil
}

// searchAdapters returns the configured platforms with base URL overrides
// applied.
func searchAdapters(cfg config.SearchConfig) []course.Adapter {
	adapters := course.AdaptersFor(cfg.Platforms)
	for i, ad := range adapters {
		switch ad := ad.(type) {
		case course.CourseraAdapter:
			if cfg.CourseraURL != "" {
				ad.BaseURL = cfg.CourseraURL
			}
			adapters[i] = ad
		case course.UdemyAdapter:
			if cfg.UdemyURL != "" {
				ad.BaseURL = cfg.UdemyURL
			}
			adapters[i] = ad
		case course.YouTubeAdapter:
			if cfg.YouTubeURL != "" {
				ad.BaseURL = cfg.YouTubeURL
			}
			adapters[i] = ad
		}
	}
	return adapters
}

func (a *app) Close() error {
	if a.audit == nil {
		return nil
	}
	err := a.audit.Close()
	a.audit = nil
	if err != nil {
		return fmt.Errorf("close audit backend: %w", err)
	}
	return nil
}
