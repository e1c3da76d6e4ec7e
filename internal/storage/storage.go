package storage

import (
	"context"
	"time"
)

// FetchResult is the outcome of one outbound request to an upstream platform.
// Headers and Body are only held in memory for extraction; backends persist
// the metadata and the body size.
type FetchResult struct {
	ID           string              `json:"id"`
	Platform     string              `json:"platform"`
	URL          string              `json:"url"`
	Method       string              `json:"method"`
	StatusCode   int                 `json:"status_code"`
	Headers      map[string][]string `json:"-"`
	Body         []byte              `json:"-"`
	Bytes        int64               `json:"bytes"`
	Duration     time.Duration       `json:"duration"`
	DetectedBot  bool                `json:"detected_bot"`
	DetectionSrc string              `json:"detection_src,omitempty"` // e.g. "Cloudflare", "Akamai", "PerimeterX", "DataDome"
	CreatedAt    time.Time           `json:"created_at"`
	Error        string              `json:"error,omitempty"` // non-empty if no HTTP response was received
}

// OK reports whether the fetch produced a 2xx response.
func (r *FetchResult) OK() bool {
	return r.Error == "" && r.StatusCode >= 200 && r.StatusCode < 300
}

// Filter allows querying for specific FetchResults.
type Filter struct {
	Platform    string
	URL         string
	DetectedBot *bool
	Since       *time.Time
	Limit       int
	Offset      int
}

// Match applies the field filters (not Limit/Offset) to a single result.
func (f Filter) Match(r *FetchResult) bool {
	if f.Platform != "" && r.Platform != f.Platform {
		return false
	}
	if f.URL != "" && r.URL != f.URL {
		return false
	}
	if f.DetectedBot != nil && r.DetectedBot != *f.DetectedBot {
		return false
	}
	if f.Since != nil && r.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// Page orders results newest first and applies Offset and Limit. Used by the
// file backends, which cannot push this down to an engine.
func (f Filter) Page(results []*FetchResult) []*FetchResult {
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	if f.Offset > 0 {
		if f.Offset >= len(results) {
			return []*FetchResult{}
		}
		results = results[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(results) {
		results = results[:f.Limit]
	}
	return results
}

// Backend defines the interface for recording and querying upstream fetches.
type Backend interface {
	Save(ctx context.Context, result *FetchResult) error
	Query(ctx context.Context, filter Filter) ([]*FetchResult, error)
	Close() error
}
