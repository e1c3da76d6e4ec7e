package jsonbackend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/careerscout/internal/storage"
)

func TestJSONBackend(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "fetches.jsonl")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create JSON backend: %v", err)
	}

	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond).UTC()

	fixtures := []*storage.FetchResult{
		{ID: "j1", Platform: "coursera", URL: "https://www.coursera.org/search?query=go", StatusCode: 200, Bytes: 10, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "j2", Platform: "udemy", URL: "https://www.udemy.com/courses/search/?q=go", StatusCode: 403, DetectedBot: true, DetectionSrc: "Cloudflare", CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "j3", Platform: "udemy", URL: "https://www.udemy.com/courses/search/?q=rust", Error: "request failed: timeout", CreatedAt: now},
	}
	for _, r := range fixtures {
		if err := b.Save(ctx, r); err != nil {
			t.Fatalf("Failed to save %s: %v", r.ID, err)
		}
	}

	udemy, err := b.Query(ctx, storage.Filter{Platform: "udemy"})
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(udemy) != 2 || udemy[0].ID != "j3" || udemy[1].ID != "j2" {
		t.Fatalf("expected [j3 j2], got %d results", len(udemy))
	}
	if udemy[1].DetectionSrc != "Cloudflare" {
		t.Errorf("expected Cloudflare detection to round-trip, got %q", udemy[1].DetectionSrc)
	}

	since := now.Add(-90 * time.Minute)
	recent, err := b.Query(ctx, storage.Filter{Since: &since, Limit: 1})
	if err != nil {
		t.Fatalf("Failed to query since: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "j3" {
		t.Fatalf("expected only j3, got %d", len(recent))
	}

	// Saving after a query must still append.
	if err := b.Save(ctx, &storage.FetchResult{ID: "j4", Platform: "youtube", CreatedAt: now}); err != nil {
		t.Fatalf("Failed to save after query: %v", err)
	}
	_ = b.Close()

	reopened, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to reopen: %v", err)
	}
	defer reopened.Close()

	all, err := reopened.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query reopened: %v", err)
	}
	if len(all) != 4 || all[0].ID != "j4" {
		t.Fatalf("expected 4 results with j4 first, got %d", len(all))
	}
}
