// Package server exposes course search, course scraping and profile lookups
// as JSON over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/FranksOps/careerscout/internal/course"
	"github.com/FranksOps/careerscout/internal/metrics"
	"github.com/FranksOps/careerscout/internal/profile"
)

// Endpoint names used in logs, metrics and policies.
const (
	EndpointSearch   = "courses_search"
	EndpointScrape   = "courses_scrape"
	EndpointGitHub   = "github"
	EndpointLinkedIn = "linkedin"
)

// ErrPresenter marks an unexpected failure (a panic) inside an operation.
var ErrPresenter = errors.New("internal presenter failure")

// CourseService searches and scrapes courses. *course.Aggregator satisfies it.
type CourseService interface {
	Search(ctx context.Context, query string) (course.SearchResult, error)
	Scrape(ctx context.Context, platform, rawURL string) (course.Record, error)
}

// GitHubService looks up GitHub profiles. *profile.GitHub satisfies it.
type GitHubService interface {
	Lookup(ctx context.Context, username string) (profile.GitHubResult, error)
}

// LinkedInService looks up LinkedIn profiles. *profile.LinkedIn satisfies it.
type LinkedInService interface {
	Lookup(ctx context.Context, username string) (profile.LinkedInProfile, error)
}

// Config holds the handler's collaborators.
type Config struct {
	Courses  CourseService
	GitHub   GitHubService
	LinkedIn LinkedInService
	// Policies overrides DefaultPolicies per endpoint.
	Policies map[string]Policy
	Logger   *slog.Logger
}

// Handler serves the JSON API.
type Handler struct {
	courses  CourseService
	github   GitHubService
	linkedin LinkedInService
	policies map[string]Policy
	logger   *slog.Logger
}

// NewHandler creates a Handler from cfg.
func NewHandler(cfg Config) *Handler {
	policies := DefaultPolicies()
	for name, p := range cfg.Policies {
		policies[name] = p
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		courses:  cfg.Courses,
		github:   cfg.GitHub,
		linkedin: cfg.LinkedIn,
		policies: policies,
		logger:   logger,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /courses/search", h.handleSearch)
	mux.HandleFunc("GET /courses/scrape", h.handleScrape)
	mux.HandleFunc("GET /github", h.handleGitHub)
	mux.HandleFunc("GET /linkedin", h.handleLinkedIn)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
}

// Routes returns the full middleware-wrapped API.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h.recoverer(h.logRequests(mux))
}

// New returns an *http.Server serving h on addr.
func New(addr string, h *Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, ok := h.requireParam(w, r, "query")
	if !ok {
		return
	}
	h.serve(w, r, EndpointSearch, query, func(ctx context.Context) (any, error) {
		res, err := h.courses.Search(ctx, query)
		if err == nil && res.Fallback {
			h.logger.Warn("serving fallback data", "endpoint", EndpointSearch, "input", query, "reason", "no platform returned courses")
			metrics.RecordFallback(EndpointSearch)
		}
		return res, err
	})
}

func (h *Handler) handleScrape(w http.ResponseWriter, r *http.Request) {
	target, ok := h.requireParam(w, r, "url")
	if !ok {
		return
	}
	platform := r.URL.Query().Get("platform")
	h.serve(w, r, EndpointScrape, target, func(ctx context.Context) (any, error) {
		return h.courses.Scrape(ctx, platform, target)
	})
}

func (h *Handler) handleGitHub(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireParam(w, r, "username")
	if !ok {
		return
	}
	h.serve(w, r, EndpointGitHub, username, func(ctx context.Context) (any, error) {
		return h.github.Lookup(ctx, username)
	})
}

func (h *Handler) handleLinkedIn(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireParam(w, r, "username")
	if !ok {
		return
	}
	h.serve(w, r, EndpointLinkedIn, username, func(ctx context.Context) (any, error) {
		return h.linkedin.Lookup(ctx, username)
	})
}

// requireParam answers 400 when the named query parameter is blank.
func (h *Handler) requireParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("%s parameter is required", name)})
		return "", false
	}
	return v, true
}

func isBadRequest(err error) bool {
	return errors.Is(err, course.ErrEmptyQuery) || errors.Is(err, course.ErrInvalidURL) ||
		errors.Is(err, profile.ErrEmptyUsername)
}

// serve runs op and applies the endpoint's policy to any failure.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, endpoint, input string, op func(context.Context) (any, error)) {
	res, err := call(r.Context(), op)
	if err == nil {
		h.writeJSON(w, http.StatusOK, res)
		return
	}
	if isBadRequest(err) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	policy := h.policies[endpoint]
	if !policy.Degrades() {
		h.logger.Error("request failed", "endpoint", endpoint, "input", input, "err", err)
		msg := policy.Message
		if msg == "" {
			msg = http.StatusText(http.StatusInternalServerError)
		}
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
		return
	}

	h.logger.Warn("serving fallback data", "endpoint", endpoint, "input", input, "err", err)
	metrics.RecordFallback(endpoint)
	h.writeJSON(w, http.StatusOK, policy.Degrade(input))
}

// call runs op, converting a panic into an error wrapping ErrPresenter.
func call(ctx context.Context, op func(context.Context) (any, error)) (res any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrPresenter, rec)
		}
	}()
	return op(ctx)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "err", err)
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"Internal Server Error"}` + "\n")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
