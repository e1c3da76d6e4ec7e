package proxy

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrUnknownProxy is returned when reporting on a proxy the pool does not hold.
var ErrUnknownProxy = errors.New("proxy: not in pool")

type entry struct {
	url           *url.URL
	failures      int
	successes     int
	disabledUntil time.Time
}

// Pool rotates outbound proxies round-robin and benches ones that keep failing.
type Pool struct {
	mu          sync.Mutex
	entries     []*entry
	cursor      int
	maxFailures int
	cooldown    time.Duration
}

// Config defines settings for the Pool.
type Config struct {
	// MaxFailures in a row before a proxy is benched.
	MaxFailures int
	// Cooldown is how long a benched proxy sits out.
	Cooldown time.Duration
}

// NewPool creates an empty pool; zero config values get defaults.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{maxFailures: cfg.MaxFailures, cooldown: cfg.Cooldown}
}

// LoadFile adds one proxy URL per line, skipping blanks and '#' comments.
func (p *Pool) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("proxy: open list: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("proxy: read list: %w", err)
	}
	return p.Add(urls...)
}

// Add parses raw proxy URLs, defaulting to http:// when no scheme is given.
func (p *Pool) Add(rawURLs ...string) error {
	parsed := make([]*entry, 0, len(rawURLs))
	for _, raw := range rawURLs {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("proxy: parse %q: %w", raw, err)
		}
		parsed = append(parsed, &entry{url: u})
	}

	p.mu.Lock()
	p.entries = append(p.entries, parsed...)
	p.mu.Unlock()
	return nil
}

// Len reports how many proxies the pool holds, benched or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Next returns the next proxy that is not benched, or nil if none is usable.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for range p.entries {
		e := p.entries[p.cursor]
		p.cursor = (p.cursor + 1) % len(p.entries)

		if !e.disabledUntil.IsZero() {
			if now.Before(e.disabledUntil) {
				continue
			}
			e.disabledUntil = time.Time{}
			e.failures = 0
		}
		return e.url
	}
	return nil
}

// MarkSuccess credits proxyURL with a completed request.
func (p *Pool) MarkSuccess(proxyURL *url.URL) error {
	return p.update(proxyURL, func(e *entry) {
		e.successes++
		if e.failures > 0 {
			e.failures--
		}
	})
}

// MarkFailure records a failed request and benches the proxy once it reaches
// the configured failure count.
func (p *Pool) MarkFailure(proxyURL *url.URL) error {
	return p.update(proxyURL, func(e *entry) {
		e.failures++
		if e.failures >= p.maxFailures {
			e.disabledUntil = time.Now().Add(p.cooldown)
		}
	})
}

func (p *Pool) update(proxyURL *url.URL, fn func(*entry)) error {
	if proxyURL == nil {
		return ErrUnknownProxy
	}
	target := proxyURL.String()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.url.String() == target {
			fn(e)
			return nil
		}
	}
	return ErrUnknownProxy
}
