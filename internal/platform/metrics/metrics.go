package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for identity sync runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec

	RunsTotal      *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	OutcomesTotal  *prometheus.CounterVec
	ItemErrors     *prometheus.CounterVec
	EmailsSent     *prometheus.CounterVec
	EmailsFailed   *prometheus.CounterVec
	DirectoryPages prometheus.Counter
	LockContention prometheus.Counter
}

// New registers collectors with the default registry. Call it once per process.
func New() *Metrics {
	return &Metrics{
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memberlink_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "memberlink_sync_runs_total",
			Help: "Total number of sync runs by action, dry run flag, and result",
		}, []string{"action", "dry_run", "result"}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memberlink_sync_run_duration_seconds",
			Help:    "Duration of sync runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 15, 20, 25, 30},
		}, []string{"action"}),
		OutcomesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "memberlink_reconcile_outcomes_total",
			Help: "Reconciliation classifications by outcome",
		}, []string{"outcome", "dry_run"}),
		ItemErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "memberlink_sync_item_errors_total",
			Help: "Per-item failures recorded in run reports",
		}, []string{"action"}),
		EmailsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "memberlink_emails_sent_total",
			Help: "Emails accepted by the mail relay",
		}, []string{"kind"}),
		EmailsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "memberlink_emails_failed_total",
			Help: "Emails rejected by the mail relay",
		}, []string{"kind"}),
		DirectoryPages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "memberlink_directory_pages_fetched_total",
			Help: "Directory admin API pages fetched",
		}),
		LockContention: promauto.NewCounter(prometheus.CounterOpts{
			Name: "memberlink_sync_lock_contention_total",
			Help: "Runs rejected because another run held the sync lock",
		}),
	}
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) ObserveRun(action string, dryRun bool, result string, seconds float64) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(action, strconv.FormatBool(dryRun), result).Inc()
	m.RunDuration.WithLabelValues(action).Observe(seconds)
}

func (m *Metrics) IncrementOutcome(outcome string, dryRun bool) {
	if m == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(outcome, strconv.FormatBool(dryRun)).Inc()
}

func (m *Metrics) IncrementItemError(action string) {
	if m == nil {
		return
	}
	m.ItemErrors.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementEmailSent(kind string) {
	if m == nil {
		return
	}
	m.EmailsSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementEmailFailed(kind string) {
	if m == nil {
		return
	}
	m.EmailsFailed.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementDirectoryPages() {
	if m == nil {
		return
	}
	m.DirectoryPages.Inc()
}

func (m *Metrics) IncrementLockContention() {
	if m == nil {
		return
	}
	m.LockContention.Inc()
}
