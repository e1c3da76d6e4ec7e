// Package report summarizes recorded upstream fetches.
package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"slices"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/FranksOps/careerscout/internal/storage"
)

// PlatformStats aggregates the fetches made to one platform.
type PlatformStats struct {
	Platform    string        `json:"platform"`
	Requests    int           `json:"requests"`
	Successes   int           `json:"successes"`
	Errors      int           `json:"errors"`
	Detections  int           `json:"detections"`
	Bytes       int64         `json:"bytes"`
	AvgDuration time.Duration `json:"avg_duration"`

	total time.Duration
}

// SuccessRate is the share of 2xx responses, in percent.
func (p PlatformStats) SuccessRate() float64 {
	if p.Requests == 0 {
		return 0
	}
	return float64(p.Successes) * 100 / float64(p.Requests)
}

// Summary contains aggregated metrics about recorded fetches.
type Summary struct {
	TotalRequests   int             `json:"total_requests"`
	TotalErrors     int             `json:"total_errors"`
	TotalDetections int             `json:"total_detections"`
	StatusCodes     map[int]int     `json:"status_codes"`
	DetectionsBySrc map[string]int  `json:"detections_by_src"`
	Platforms       []PlatformStats `json:"platforms"`
	TotalBytes      int64           `json:"total_bytes"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	Duration        time.Duration   `json:"duration"`
}

// GenerateSummary aggregates results. Platforms are ordered by request count,
// then name.
func GenerateSummary(results []*storage.FetchResult) Summary {
	s := Summary{
		StatusCodes:     make(map[int]int),
		DetectionsBySrc: make(map[string]int),
		Platforms:       []PlatformStats{},
	}

	if len(results) == 0 {
		return s
	}

	s.StartTime = results[0].CreatedAt
	s.EndTime = results[0].CreatedAt

	byPlatform := make(map[string]*PlatformStats)
	for _, r := range results {
		ps, ok := byPlatform[r.Platform]
		if !ok {
			ps = &PlatformStats{Platform: r.Platform}
			byPlatform[r.Platform] = ps
		}
		ps.Requests++
		ps.total += r.Duration
		ps.Bytes += r.Bytes

		s.TotalRequests++
		if r.Error != "" {
			s.TotalErrors++
			ps.Errors++
		}
		if r.OK() {
			ps.Successes++
		}
		if r.DetectedBot {
			s.TotalDetections++
			s.DetectionsBySrc[r.DetectionSrc]++
			ps.Detections++
		}
		if r.StatusCode > 0 {
			s.StatusCodes[r.StatusCode]++
		}
		s.TotalBytes += r.Bytes

		if r.CreatedAt.Before(s.StartTime) {
			s.StartTime = r.CreatedAt
		}
		if r.CreatedAt.After(s.EndTime) {
			s.EndTime = r.CreatedAt
		}
	}

	for _, ps := range byPlatform {
		ps.AvgDuration = ps.total / time.Duration(ps.Requests)
		s.Platforms = append(s.Platforms, *ps)
	}
	slices.SortFunc(s.Platforms, func(a, b PlatformStats) int {
		if a.Requests != b.Requests {
			return b.Requests - a.Requests
		}
		if a.Platform < b.Platform {
			return -1
		}
		if a.Platform > b.Platform {
			return 1
		}
		return 0
	})

	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}

var funcs = map[string]any{
	"bytes": func(n int64) string {
		if n < 0 {
			n = 0
		}
		return humanize.Bytes(uint64(n))
	},
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"pct":   func(f float64) string { return humanize.FtoaWithDigits(f, 1) + "%" },
	"round": func(d time.Duration) time.Duration { return d.Round(time.Millisecond) },
}

const textTmpl = `CareerScout Fetch Summary
-------------------------
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Total Fetch:   {{comma .TotalRequests}} requests
Total Bytes:   {{bytes .TotalBytes}}
Total Errors:  {{comma .TotalErrors}}

Platforms:
{{- range .Platforms}}
  {{printf "%-10s" .Platform}} {{comma .Requests}} requests, {{pct .SuccessRate}} ok, {{.Detections}} blocked, {{bytes .Bytes}}, avg {{round .AvgDuration}}
{{- else}}
  None
{{- end}}

Status Codes:
{{- range $code, $count := .StatusCodes}}
  {{$code}}: {{$count}}
{{- else}}
  None
{{- end}}

Detections: {{.TotalDetections}}
{{- range $src, $count := .DetectionsBySrc}}
  {{$src}}: {{$count}}
{{- else}}
  None
{{- end}}
`

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	t, err := template.New("textReport").Funcs(funcs).Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parsing text template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("rendering text report: %w", err)
	}
	return nil
}

const htmlTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>CareerScout Fetch Report</title>
<style>
  body { font: 14px/1.4 system-ui, sans-serif; max-width: 960px; margin: 2em auto; color: #222; }
  header { display: flex; gap: 2em; align-items: baseline; border-bottom: 1px solid #ddd; }
  dl.totals { display: grid; grid-template-columns: repeat(4, 1fr); gap: 1em; }
  dl.totals dd { margin: 0; font-size: 1.6em; font-weight: 600; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 2em; }
  th, td { padding: 4px 8px; border-bottom: 1px solid #eee; text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  .blocked { color: #b00020; }
</style>
</head>
<body>
<header>
  <h1>CareerScout Fetch Report</h1>
  <span>{{.StartTime.Format "2006-01-02 15:04"}} &rarr; {{.EndTime.Format "2006-01-02 15:04"}} ({{.Duration}})</span>
</header>

<dl class="totals">
  <div><dt>Requests</dt><dd>{{comma .TotalRequests}}</dd></div>
  <div><dt>Errors</dt><dd>{{comma .TotalErrors}}</dd></div>
  <div><dt>Blocked</dt><dd{{if gt .TotalDetections 0}} class="blocked"{{end}}>{{.TotalDetections}}</dd></div>
  <div><dt>Transferred</dt><dd>{{bytes .TotalBytes}}</dd></div>
</dl>

<h2>By platform</h2>
<table>
  <thead><tr><th>Platform</th><th>Requests</th><th>Success</th><th>Errors</th><th>Blocked</th><th>Bytes</th><th>Avg latency</th></tr></thead>
  <tbody>
  {{- range .Platforms}}
  <tr><td>{{.Platform}}</td><td>{{comma .Requests}}</td><td>{{pct .SuccessRate}}</td><td>{{.Errors}}</td><td>{{.Detections}}</td><td>{{bytes .Bytes}}</td><td>{{round .AvgDuration}}</td></tr>
  {{- else}}
  <tr><td colspan="7">No fetches recorded</td></tr>
  {{- end}}
  </tbody>
</table>

<h2>Responses</h2>
<table>
  <thead><tr><th>Status</th><th>Count</th></tr></thead>
  <tbody>
  {{- range $code, $count := .StatusCodes}}
  <tr><td>{{$code}}</td><td>{{$count}}</td></tr>
  {{- end}}
  {{- range $src, $count := .DetectionsBySrc}}
  <tr class="blocked"><td>blocked by {{$src}}</td><td>{{$count}}</td></tr>
  {{- end}}
  </tbody>
</table>
</body>
</html>
`

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	t, err := htmltemplate.New("htmlReport").Funcs(funcs).Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parsing html template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}

// Write renders summary in the named format: text, json or html.
func Write(w io.Writer, format string, summary Summary) error {
	switch format {
	case "", "text":
		return WriteText(w, summary)
	case "json":
		return WriteJSON(w, summary)
	case "html":
		return WriteHTML(w, summary)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
