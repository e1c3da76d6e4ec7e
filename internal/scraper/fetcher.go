package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/careerscout/internal/bypass"
	"github.com/FranksOps/careerscout/internal/fingerprint"
	"github.com/FranksOps/careerscout/internal/metrics"
	"github.com/FranksOps/careerscout/internal/storage"
	"github.com/FranksOps/careerscout/pkg/httpclient"
	"github.com/FranksOps/careerscout/pkg/proxy"
	"github.com/FranksOps/careerscout/pkg/ratelimit"
	"github.com/FranksOps/careerscout/pkg/useragent"
	"github.com/google/uuid"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// FetchConfig configures a Fetcher.
type FetchConfig struct {
	// Timeout bounds each request end to end. Zero means 10s.
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	MaxBodyBytes int64
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	// InsecureSkipVerify is only meant for tests against httptest TLS servers.
	InsecureSkipVerify bool
	Limiters           *ratelimit.Group
	// Audit, if set, receives every fetch. Save errors are logged, never returned.
	Audit     storage.Backend
	Detectors []bypass.Detector
	Logger    *slog.Logger
}

// Request is one outbound GET.
type Request struct {
	Platform string
	URL      string
	Referer  string
	// Header overrides the browser defaults, e.g. Accept for JSON APIs.
	Header http.Header
}

// Fetcher performs single GETs against upstream platforms with browser-like
// headers and TLS, a hard timeout, and audit/metrics bookkeeping.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
	logger *slog.Logger
}

// NewFetcher builds a Fetcher. The underlying client is shared across
// requests so connections and cookies are reused.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.Detectors == nil {
		cfg.Detectors = bypass.DefaultDetectors()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// The proxy is chosen per request and carried on the request context.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if u, ok := req.Context().Value(proxyKey).(*url.URL); ok && u != nil {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, fingerprint.Options{
		Proxy:              proxyFunc,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		MaxBodyBytes: cfg.MaxBodyBytes,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &Fetcher{config: cfg, client: client, logger: cfg.Logger}, nil
}

// Timeout returns the per-request bound this fetcher enforces.
func (f *Fetcher) Timeout() time.Duration {
	return f.config.Timeout
}

// Fetch executes the request and captures the outcome. Transport failures are
// reported in FetchResult.Error rather than as an error return, so a result
// is always available for auditing.
func (f *Fetcher) Fetch(ctx context.Context, r Request) *storage.FetchResult {
	start := time.Now()
	result := &storage.FetchResult{
		ID:        uuid.NewString(),
		Platform:  r.Platform,
		URL:       r.URL,
		Method:    http.MethodGet,
		CreatedAt: start.UTC(),
	}
	finish := func(format string, args ...any) *storage.FetchResult {
		if format != "" {
			result.Error = fmt.Sprintf(format, args...)
		}
		result.Duration = time.Since(start)
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	if err := f.config.Limiters.For(r.Platform).Wait(ctx); err != nil {
		return finish("rate limiter: %v", err)
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}
	if activeProxy != nil {
		ctx = context.WithValue(ctx, proxyKey, activeProxy)
	}

	header := useragent.BrowserHeaders(f.config.UAPool.GetSequential(), r.Referer)
	for k, vs := range r.Header {
		header[k] = vs
	}

	resp, err := f.client.Fetch(ctx, r.URL, header)
	if resp == nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
			metrics.ProxyFailures.WithLabelValues(activeProxy.Redacted()).Inc()
		}
		return finish("request failed: %v", err)
	}
	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header
	result.Body = resp.Body
	result.Bytes = int64(len(resp.Body))
	if err != nil {
		return finish("read body: %v", err)
	}

	bypass.Analyze(result, f.config.Detectors)
	return finish("")
}

// Get fetches r and returns the body of a 2xx response that no detector
// flagged. Any other outcome, a sign-in wall served with 200 included, is an
// *UpstreamError. Every call is logged, audited and counted.
func (f *Fetcher) Get(ctx context.Context, r Request) ([]byte, error) {
	res := f.Fetch(ctx, r)
	f.record(ctx, res)

	if res.OK() && !res.DetectedBot {
		f.logger.Debug("upstream fetch", "platform", r.Platform, "url", r.URL,
			"status", res.StatusCode, "bytes", res.Bytes, "duration", res.Duration)
		return res.Body, nil
	}

	uerr := &UpstreamError{
		Platform:     r.Platform,
		URL:          r.URL,
		StatusCode:   res.StatusCode,
		DetectionSrc: res.DetectionSrc,
	}
	if res.Error != "" {
		uerr.Err = errors.New(res.Error)
	}

	attrs := []any{"platform", r.Platform, "url", r.URL, "status", res.StatusCode, "duration", res.Duration}
	if res.DetectedBot {
		attrs = append(attrs, "detection", res.DetectionSrc)
	}
	if res.Error != "" {
		attrs = append(attrs, "err", res.Error)
	}
	f.logger.Warn("upstream fetch failed", attrs...)

	return nil, uerr
}

func (f *Fetcher) record(ctx context.Context, res *storage.FetchResult) {
	metrics.RecordFetch(res)
	if f.config.Audit == nil {
		return
	}
	// The audit write must outlive a request context that timed out.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := f.config.Audit.Save(saveCtx, res); err != nil {
		f.logger.Error("failed to save fetch audit", "url", res.URL, "err", err)
	}
}
