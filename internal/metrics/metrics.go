package metrics

import (
	"net/http"
	"strconv"

	"github.com/FranksOps/careerscout/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerscout_upstream_requests_total",
			Help: "Outbound requests to upstream platforms by outcome",
		},
		[]string{"platform", "status", "detected", "detection_src"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careerscout_upstream_duration_seconds",
			Help:    "Latency of outbound requests to upstream platforms",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"platform"},
	)

	UpstreamBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerscout_upstream_bytes_total",
			Help: "Decoded response bytes received from upstream platforms",
		},
		[]string{"platform"},
	)

	ExtractedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerscout_extracted_records_total",
			Help: "Records produced by extraction adapters",
		},
		[]string{"platform"},
	)

	FallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerscout_fallback_total",
			Help: "Responses served from synthetic fallback data",
		},
		[]string{"endpoint"},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerscout_proxy_failures_total",
			Help: "Outbound requests that failed through a proxy",
		},
		[]string{"proxy_url"},
	)
)

// RecordFetch updates the upstream metrics from one fetch.
func RecordFetch(res *storage.FetchResult) {
	if res == nil {
		return
	}

	status := strconv.Itoa(res.StatusCode)
	if res.Error != "" {
		status = "error"
	}

	UpstreamRequestsTotal.WithLabelValues(res.Platform, status, strconv.FormatBool(res.DetectedBot), res.DetectionSrc).Inc()
	UpstreamDuration.WithLabelValues(res.Platform).Observe(res.Duration.Seconds())
	UpstreamBytesTotal.WithLabelValues(res.Platform).Add(float64(res.Bytes))
}

// RecordExtracted counts records an adapter produced for platform.
func RecordExtracted(platform string, n int) {
	ExtractedRecordsTotal.WithLabelValues(platform).Add(float64(n))
}

// RecordFallback counts a degraded response served by endpoint.
func RecordFallback(endpoint string) {
	FallbackTotal.WithLabelValues(endpoint).Inc()
}

// Handler exposes the default registry for mounting at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
