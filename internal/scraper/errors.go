package scraper

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUpstreamUnavailable marks a platform that did not answer in time or
	// answered with a non-2xx status.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrExtraction marks a page whose structure did not yield the record the
	// caller asked for.
	ErrExtraction = errors.New("extraction failed")

	// ErrDisallowed marks a URL excluded by the host's robots.txt.
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// UpstreamError describes one failed outbound request.
type UpstreamError struct {
	Platform     string
	URL          string
	StatusCode   int    // 0 when no response arrived
	DetectionSrc string // bot-protection vendor, if one was recognised
	Err          error  // transport error, nil for status failures
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: GET %s: %v", e.Platform, e.URL, e.Err)
	case e.DetectionSrc != "":
		return fmt.Sprintf("%s: GET %s: status %d (blocked by %s)", e.Platform, e.URL, e.StatusCode, e.DetectionSrc)
	default:
		return fmt.Sprintf("%s: GET %s: status %d", e.Platform, e.URL, e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamUnavailable}
	}
	return []error{ErrUpstreamUnavailable, e.Err}
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound
}
