package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/FranksOps/careerscout/internal/storage"
)

func TestSQLiteBackend(t *testing.T) {
	b, err := New("file:careerscout_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	res := &storage.FetchResult{
		ID:           "fetch-1",
		Platform:     "udemy",
		URL:          "https://www.udemy.com/courses/search/?q=go",
		Method:       "GET",
		StatusCode:   403,
		Bytes:        2048,
		Duration:     120 * time.Millisecond,
		DetectedBot:  true,
		DetectionSrc: "Cloudflare",
		CreatedAt:    now,
	}
	if err := b.Save(ctx, res); err != nil {
		t.Fatalf("Failed to save result: %v", err)
	}

	other := &storage.FetchResult{
		ID:         "fetch-2",
		Platform:   "coursera",
		URL:        "https://www.coursera.org/search?query=go",
		Method:     "GET",
		StatusCode: 0,
		Duration:   10 * time.Second,
		CreatedAt:  now.Add(time.Second),
		Error:      "request failed: context deadline exceeded",
	}
	if err := b.Save(ctx, other); err != nil {
		t.Fatalf("Failed to save result: %v", err)
	}

	results, err := b.Query(ctx, storage.Filter{Platform: "udemy"})
	if err != nil {
		t.Fatalf("Failed to query results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.ID != res.ID || got.URL != res.URL || got.Platform != res.Platform {
		t.Errorf("unexpected identity fields: %+v", got)
	}
	if got.StatusCode != res.StatusCode {
		t.Errorf("Expected StatusCode %d, got %d", res.StatusCode, got.StatusCode)
	}
	if got.Bytes != res.Bytes {
		t.Errorf("Expected Bytes %d, got %d", res.Bytes, got.Bytes)
	}
	if got.Duration.Milliseconds() != res.Duration.Milliseconds() {
		t.Errorf("Expected Duration %v, got %v", res.Duration, got.Duration)
	}
	if !got.DetectedBot || got.DetectionSrc != "Cloudflare" {
		t.Errorf("expected Cloudflare detection, got %v/%s", got.DetectedBot, got.DetectionSrc)
	}
	if got.CreatedAt.Unix() != res.CreatedAt.Unix() {
		t.Errorf("Expected CreatedAt %v, got %v", res.CreatedAt, got.CreatedAt)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query all: %v", err)
	}
	if len(all) != 2 || all[0].ID != "fetch-2" {
		t.Fatalf("expected newest first, got %d results", len(all))
	}
	if all[0].Error == "" {
		t.Errorf("expected error text to round-trip")
	}

	boolFalse := false
	notDetected, err := b.Query(ctx, storage.Filter{DetectedBot: &boolFalse})
	if err != nil {
		t.Fatalf("Failed to query with DetectedBot=false: %v", err)
	}
	if len(notDetected) != 1 || notDetected[0].ID != "fetch-2" {
		t.Fatalf("expected only fetch-2, got %d", len(notDetected))
	}

	paged, err := b.Query(ctx, storage.Filter{Offset: 1})
	if err != nil {
		t.Fatalf("Failed to query with offset: %v", err)
	}
	if len(paged) != 1 || paged[0].ID != "fetch-1" {
		t.Fatalf("expected fetch-1 after offset, got %d", len(paged))
	}
}
