package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the metrics of a single screening run.
//
// Go runtime and process collectors are not registered: the registry is
// written to a node_exporter textfile, and node_exporter exports its own.
type Registry struct {
	*prometheus.Registry

	tickersTotal     *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	watchlistRows    *prometheus.GaugeVec
	runDuration      prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
	writeFailures    prometheus.Counter
	notifications    *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		tickersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gems_tickers_total",
				Help: "Tickers screened, by result and skip reason",
			},
			[]string{"policy", "result", "reason"},
		),

		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gems_fetch_duration_seconds",
				Help:    "Provider request duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"kind"},
		),

		watchlistRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gems_watchlist_rows",
				Help: "Rows in the last written watchlist",
			},
			[]string{"policy"},
		),

		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gems_run_duration_seconds",
				Help: "Wall time of the last run in seconds",
			},
		),

		lastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gems_last_run_timestamp_seconds",
				Help: "Unix time the last run finished",
			},
		),

		writeFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gems_report_write_failures_total",
				Help: "Report files that could not be written",
			},
		),

		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gems_notifications_total",
				Help: "Watchlist notifications sent, by notifier and status",
			},
			[]string{"notifier", "status"},
		),
	}

	reg.MustRegister(r.tickersTotal)
	reg.MustRegister(r.fetchDuration)
	reg.MustRegister(r.watchlistRows)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.lastRunTimestamp)
	reg.MustRegister(r.writeFailures)
	reg.MustRegister(r.notifications)

	return r
}

// RecordOutcome counts a screened ticker.
func (r *Registry) RecordOutcome(policy string, ok bool, reason string) {
	result := "ok"
	if !ok {
		result = "skipped"
	}
	r.tickersTotal.WithLabelValues(policy, result, reason).Inc()
}

// ObserveFetch records a provider request duration.
func (r *Registry) ObserveFetch(kind string, seconds float64) {
	r.fetchDuration.WithLabelValues(kind).Observe(seconds)
}

// SetWatchlistRows sets the watchlist size.
func (r *Registry) SetWatchlistRows(policy string, rows int) {
	r.watchlistRows.WithLabelValues(policy).Set(float64(rows))
}

// RecordRun records the run duration and completion time.
func (r *Registry) RecordRun(duration time.Duration, finished time.Time) {
	r.runDuration.Set(duration.Seconds())
	r.lastRunTimestamp.Set(float64(finished.Unix()))
}

// RecordWriteFailure counts a report file that failed to write.
func (r *Registry) RecordWriteFailure() {
	r.writeFailures.Inc()
}

// RecordNotification records a notification attempt.
func (r *Registry) RecordNotification(notifier string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	r.notifications.WithLabelValues(notifier, status).Inc()
}

// WriteTextfile writes all metrics in the text exposition format. The
// file is replaced atomically so a collector never reads a partial file.
func (r *Registry) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	return prometheus.WriteToTextfile(path, r.Registry)
}
