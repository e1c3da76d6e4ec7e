package csvbackend

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/FranksOps/careerscout/internal/storage"
)

var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

var columns = []string{
	"id",
	"platform",
	"url",
	"method",
	"status_code",
	"bytes",
	"duration_ms",
	"detected_bot",
	"detection_src",
	"created_at",
	"error",
}

// New opens (or creates) a CSV audit log at filePath, writing the header row
// when the file is empty.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open audit csv: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat audit csv: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		_ = w.Write(columns)
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}

	return &csvBackend{file: f}, nil
}

func (b *csvBackend) Save(ctx context.Context, result *storage.FetchResult) error {
	record := []string{
		result.ID,
		result.Platform,
		result.URL,
		result.Method,
		strconv.Itoa(result.StatusCode),
		strconv.FormatInt(result.Bytes, 10),
		strconv.FormatInt(result.Duration.Milliseconds(), 10),
		strconv.FormatBool(result.DetectedBot),
		result.DetectionSrc,
		result.CreatedAt.Format(time.RFC3339Nano),
		result.Error,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek audit csv: %w", err)
	}

	w := csv.NewWriter(b.file)
	_ = w.Write(record)
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append fetch %s: %w", result.ID, err)
	}
	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.FetchResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind audit csv: %w", err)
	}
	defer func() {
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []*storage.FetchResult{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var matched []*storage.FetchResult
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(record) != len(columns) {
			continue // malformed row
		}

		res := parseRow(record)
		if filter.Match(res) {
			matched = append(matched, res)
		}
	}

	return filter.Page(matched), nil
}

func parseRow(record []string) *storage.FetchResult {
	statusCode, _ := strconv.Atoi(record[4])
	size, _ := strconv.ParseInt(record[5], 10, 64)
	durationMs, _ := strconv.ParseInt(record[6], 10, 64)
	detectedBot, _ := strconv.ParseBool(record[7])
	createdAt, _ := time.Parse(time.RFC3339Nano, record[9])

	return &storage.FetchResult{
		ID:           record[0],
		Platform:     record[1],
		URL:          record[2],
		Method:       record[3],
		StatusCode:   statusCode,
		Bytes:        size,
		Duration:     time.Duration(durationMs) * time.Millisecond,
		DetectedBot:  detectedBot,
		DetectionSrc: record[8],
		CreatedAt:    createdAt,
		Error:        record[10],
	}
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
