package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsTxtAuditor answers whether an explicit URL may be scraped, caching
// each host's robots.txt for the auditor's lifetime.
type RobotsTxtAuditor struct {
	fetcher   *Fetcher
	userAgent string
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsTxtAuditor creates an auditor that evaluates rules for userAgent
// ("*" when empty).
func NewRobotsTxtAuditor(fetcher *Fetcher, userAgent string, logger *slog.Logger) *RobotsTxtAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	if userAgent == "" {
		userAgent = "*"
	}
	return &RobotsTxtAuditor{
		fetcher:   fetcher,
		userAgent: userAgent,
		logger:    logger,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Check returns ErrDisallowed when targetURL is excluded. An unreachable or
// unparsable robots.txt allows everything.
func (r *RobotsTxtAuditor) Check(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	data := r.rules(ctx, u.Scheme+"://"+u.Host)
	if data == nil {
		return nil
	}
	if !data.FindGroup(r.userAgent).Test(u.EscapedPath()) {
		return fmt.Errorf("%s: %w", targetURL, ErrDisallowed)
	}
	return nil
}

func (r *RobotsTxtAuditor) rules(ctx context.Context, host string) *robotstxt.RobotsData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.cache[host]; ok {
		return data
	}

	var data *robotstxt.RobotsData
	res := r.fetcher.Fetch(ctx, Request{Platform: "robots", URL: host + "/robots.txt"})
	switch {
	case res.Error != "":
		r.logger.Debug("robots.txt fetch failed, allowing", "host", host, "err", res.Error)
	default:
		// FromStatusAndBytes maps 4xx to allow-all and 5xx to disallow-all.
		parsed, err := robotstxt.FromStatusAndBytes(res.StatusCode, res.Body)
		if err != nil {
			r.logger.Debug("robots.txt unparsable, allowing", "host", host, "err", err)
		} else {
			data = parsed
		}
	}

	r.cache[host] = data
	return data
}
