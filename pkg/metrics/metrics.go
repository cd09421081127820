// Package metrics exposes Prometheus counters for API traffic and
// archive throughput. The listener is opt-in; an empty address keeps
// everything in-process only.
package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitterstats_api_requests_total",
		Help: "Total API requests by endpoint and status code",
	}, []string{"endpoint", "status"})
	PagesFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitterstats_pages_fetched_total",
		Help: "Total result pages fetched by endpoint",
	}, []string{"endpoint"})
	RateLimitSleeps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twitterstats_rate_limit_sleeps_total",
		Help: "Total 429 back-off sleeps",
	})
	RecordsParsed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitterstats_records_parsed_total",
		Help: "Total records flattened by kind",
	}, []string{"kind"})
	RowsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitterstats_rows_written_total",
		Help: "Total CSV rows written by kind",
	}, []string{"kind"})
	ArchiveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "twitterstats_archive_duration_seconds",
		Help:    "Full user archive duration in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
)

func init() {
	prometheus.MustRegister(APIRequests, PagesFetched, RateLimitSleeps, RecordsParsed, RowsWritten, ArchiveDuration)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9102").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("TWITTERSTATS_METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// IncRequest increments the request counter for an endpoint and status.
func IncRequest(endpoint, status string) { APIRequests.WithLabelValues(endpoint, status).Inc() }

// IncPage increments the page counter for an endpoint.
func IncPage(endpoint string) { PagesFetched.WithLabelValues(endpoint).Inc() }

// IncRateLimitSleep counts one 429 back-off.
func IncRateLimitSleep() { RateLimitSleeps.Inc() }

// AddRecords counts flattened records of the given kind.
func AddRecords(kind string, n int) { RecordsParsed.WithLabelValues(kind).Add(float64(n)) }

// AddRows counts written CSV rows of the given kind.
func AddRows(kind string, n int) { RowsWritten.WithLabelValues(kind).Add(float64(n)) }

// ObserveArchiveDuration records one archive run duration.
func ObserveArchiveDuration(start time.Time) {
	ArchiveDuration.Observe(time.Since(start).Seconds())
}
