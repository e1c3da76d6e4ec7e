package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/FranksOps/careerscout/internal/storage"
	"github.com/google/uuid"
)

func TestPostgresBackend(t *testing.T) {
	// Only run this test if CAREERSCOUT_TEST_PG_DSN is set
	dsn := os.Getenv("CAREERSCOUT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres backend test: CAREERSCOUT_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	b, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create Postgres backend: %v", err)
	}
	defer b.Close()

	// unique platform label isolates this run from earlier rows
	platform := "pgtest-" + uuid.NewString()
	now := time.Now().UTC()

	res := &storage.FetchResult{
		ID:           uuid.NewString(),
		Platform:     platform,
		URL:          "https://www.coursera.org/search?query=go",
		Method:       "GET",
		StatusCode:   403,
		Bytes:        512,
		Duration:     50 * time.Millisecond,
		DetectedBot:  true,
		DetectionSrc: "DataDome",
		CreatedAt:    now,
	}
	if err := b.Save(ctx, res); err != nil {
		t.Fatalf("Failed to save result: %v", err)
	}
	// duplicate IDs are ignored
	if err := b.Save(ctx, res); err != nil {
		t.Fatalf("Failed to save duplicate: %v", err)
	}

	results, err := b.Query(ctx, storage.Filter{Platform: platform})
	if err != nil {
		t.Fatalf("Failed to query results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.ID != res.ID || got.StatusCode != 403 || got.Bytes != 512 {
		t.Errorf("unexpected row: %+v", got)
	}
	if got.DetectionSrc != "DataDome" {
		t.Errorf("Expected DetectionSrc DataDome, got %s", got.DetectionSrc)
	}
	if got.Duration != res.Duration {
		t.Errorf("Expected Duration %v, got %v", res.Duration, got.Duration)
	}
}
