package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// ErrNilContext is returned when Fetch is called without a context.
var ErrNilContext = errors.New("httpclient: nil context")

// Config tunes a Client. Zero values pick the defaults noted per field.
type Config struct {
	Timeout      time.Duration // 30s
	MaxRedirects int           // 10; negative returns the 3xx itself
	MaxBodyBytes int64         // DefaultMaxBody
	UseCookieJar bool
	// Transport is usually a fingerprinted transport from internal/fingerprint.
	Transport http.RoundTripper
}

// Response is an upstream answer with its body already decoded and capped.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs GETs that look like a desktop browser's: it advertises the
// browser's encodings, decodes them itself and never holds more than
// MaxBodyBytes of a page.
type Client struct {
	hc      *http.Client
	maxBody int64
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBody
	}

	hc := &http.Client{Timeout: cfg.Timeout, CheckRedirect: redirectPolicy(cfg.MaxRedirects)}
	if cfg.UseCookieJar {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("httpclient: cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	if cfg.Transport != nil {
		hc.Transport = cfg.Transport
	}

	return &Client{hc: hc, maxBody: cfg.MaxBodyBytes}, nil
}

func redirectPolicy(limit int) func(*http.Request, []*http.Request) error {
	if limit < 0 {
		return func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
	if limit == 0 {
		limit = 10
	}
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= limit {
			return fmt.Errorf("httpclient: stopped after %d redirects", limit)
		}
		return nil
	}
}

// Fetch GETs rawURL with header under ctx, which bounds the call on top of the
// client timeout. A transport failure returns a nil Response. A body that
// cannot be read or decoded returns the Response with status and headers set
// alongside the error, so callers can still record what the upstream sent.
func (c *Client) Fetch(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	if header != nil {
		req.Header = header.Clone()
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", AcceptEncoding)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header}
	out.Body, err = readBody(resp, c.maxBody)
	return out, err
}
