package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/careerscout/internal/metrics"
	"github.com/FranksOps/careerscout/internal/scraper"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyQuery is returned for a blank search query.
	ErrEmptyQuery = errors.New("query is required")
	// ErrInvalidURL is returned when an explicit scrape target is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("url must be an absolute http(s) URL")
)

// Getter fetches one upstream document. *scraper.Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, r scraper.Request) ([]byte, error)
}

// DefaultAdapters returns the search adapters in merge order.
func DefaultAdapters() []Adapter {
	return []Adapter{CourseraAdapter{}, UdemyAdapter{}, YouTubeAdapter{}}
}

// AdaptersFor returns the default adapters for the named platforms, in the
// order given. Unknown names are skipped.
func AdaptersFor(names []string) []Adapter {
	var out []Adapter
	for _, n := range names {
		for _, a := range DefaultAdapters() {
			if strings.EqualFold(n, a.Platform().Key()) {
				out = append(out, a)
			}
		}
	}
	return out
}

// SearchResult is the merged answer to one query.
type SearchResult struct {
	Courses []Record `json:"courses"`
	// Fallback is set when no platform contributed and Courses is synthetic.
	Fallback bool `json:"fallback"`
}

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	Adapters []Adapter // merge order; nil means DefaultAdapters
	Limit    int       // per platform after de-duplication; zero means MaxPerPlatform
	Logger   *slog.Logger
	Now      func() time.Time
	// Robots, if set, is consulted before an explicit-URL scrape.
	Robots *scraper.RobotsTxtAuditor
}

// Aggregator fans a query out to every adapter concurrently and merges the
// results in adapter order.
type Aggregator struct {
	getter   Getter
	adapters []Adapter
	limit    int
	logger   *slog.Logger
	now      func() time.Time
	robots   *scraper.RobotsTxtAuditor
}

// NewAggregator creates an Aggregator fetching through g.
func NewAggregator(g Getter, cfg AggregatorConfig) *Aggregator {
	if cfg.Adapters == nil {
		cfg.Adapters = DefaultAdapters()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = MaxPerPlatform
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Aggregator{getter: g, adapters: cfg.Adapters, limit: cfg.Limit,
		logger: cfg.Logger, now: cfg.Now, robots: cfg.Robots}
}

// Search queries every platform and waits for all of them. A platform that
// fails or times out contributes nothing. When nothing at all comes back the
// result is Fallback(query).
func (a *Aggregator) Search(ctx context.Context, query string) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, ErrEmptyQuery
	}

	// Each goroutine owns one slot; nothing is shared until the merge.
	perPlatform := make([][]Record, len(a.adapters))
	var g errgroup.Group
	for i, ad := range a.adapters {
		g.Go(func() error {
			perPlatform[i] = a.searchPlatform(ctx, ad, query)
			return nil
		})
	}
	_ = g.Wait()

	courses := merge(perPlatform, a.limit)
	if len(courses) == 0 {
		return SearchResult{Courses: Fallback(query), Fallback: true}, nil
	}
	return SearchResult{Courses: courses}, nil
}

func (a *Aggregator) searchPlatform(ctx context.Context, ad Adapter, query string) []Record {
	p := ad.Platform()
	target := ad.SearchURL(query)
	body, err := a.getter.Get(ctx, scraper.Request{Platform: p.Key(), URL: target, Referer: ad.Referer()})
	if err != nil {
		// The fetcher has already logged the upstream failure.
		return nil
	}
	records := ad.Extract(Page{URL: target, Body: body, Query: query, FetchedAt: a.now()})
	if len(records) == 0 {
		a.logger.Warn("no courses extracted", "platform", p.Key(), "url", target,
			"err", scraper.ErrExtraction)
	}
	metrics.RecordExtracted(p.Key(), len(records))
	return records
}

// Scrape fetches and extracts one explicit course URL. Failures are returned
// as errors; there is no synthetic substitute for a page the caller named.
func (a *Aggregator) Scrape(ctx context.Context, platform, rawURL string) (Record, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Record{}, fmt.Errorf("%q: %w", rawURL, ErrInvalidURL)
	}
	target := u.String()
	p := ParseScrapePlatform(platform, target)

	if a.robots != nil {
		if err := a.robots.Check(ctx, target); err != nil {
			return Record{}, err
		}
	}

	// A course page is normally reached from the site's own listing.
	referer := u.Scheme + "://" + u.Host + "/"
	body, err := a.getter.Get(ctx, scraper.Request{Platform: p.Key(), URL: target, Referer: referer})
	if err != nil {
		return Record{}, fmt.Errorf("scrape %s: %w", target, err)
	}
	rec, err := ExtractDetail(p, Page{URL: target, Body: body, FetchedAt: a.now()})
	if err != nil {
		return Record{}, err
	}
	metrics.RecordExtracted(p.Key(), 1)
	return rec, nil
}

// merge concatenates platform results in order, drops records whose URL was
// already seen and keeps at most limit records per platform.
func merge(perPlatform [][]Record, limit int) []Record {
	seen := make(map[string]struct{})
	var out []Record
	for _, records := range perPlatform {
		kept := 0
		for _, r := range records {
			if kept == limit {
				break
			}
			if r.URL == "" {
				continue
			}
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
			out = append(out, r)
			kept++
		}
	}
	return out
}
