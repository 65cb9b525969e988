package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ReportsSubmitted prometheus.Counter
	ReportsUpdated   prometheus.Counter
	ReportsVerified  prometheus.Counter
	ExportRows       *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ErrorsCount      *prometheus.CounterVec
}

// New registers the service metrics on reg under namespace.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReportsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "The total number of reports submitted by team leads",
		}),
		ReportsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_updated_total",
			Help:      "The total number of report edits made under an activation",
		}),
		ReportsVerified: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_verified_total",
			Help:      "The total number of report verifications",
		}),
		ExportRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_rows_total",
			Help:      "Rows written to CSV exports",
		}, []string{"kind"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of failed operations",
		}, []string{"operation"}),
	}
}

func (m *Metrics) Submitted() {
	if m != nil {
		m.ReportsSubmitted.Inc()
	}
}

func (m *Metrics) Updated() {
	if m != nil {
		m.ReportsUpdated.Inc()
	}
}

func (m *Metrics) Verified() {
	if m != nil {
		m.ReportsVerified.Inc()
	}
}

func (m *Metrics) Exported(kind string, rows int) {
	if m != nil {
		m.ExportRows.WithLabelValues(kind).Add(float64(rows))
	}
}

func (m *Metrics) Failed(operation string) {
	if m != nil {
		m.ErrorsCount.WithLabelValues(operation).Inc()
	}
}
