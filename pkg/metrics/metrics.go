package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the price engine. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TierSearches *prometheus.CounterVec
	Inspections  *prometheus.CounterVec
	Records      *prometheus.CounterVec
	Failures     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TierSearches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_tier_searches_total",
			Help: "Searches answered, by tier",
		}, []string{"tier"}), // primary, fallback, none
		Inspections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_inspections_total",
			Help: "Page inspections answered, by tier",
		}, []string{"tier"}),
		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_source_records_total",
			Help: "Candidate records produced, by source",
		}, []string{"source"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_source_failures_total",
			Help: "Source failures that were swallowed, by source",
		}, []string{"source"}),
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) TierAnswered(tier string) {
	if m == nil {
		return
	}
	m.TierSearches.WithLabelValues(tier).Inc()
}

func (m *Metrics) Inspected(tier string) {
	if m == nil {
		return
	}
	m.Inspections.WithLabelValues(tier).Inc()
}

func (m *Metrics) SourceRecords(source string, n int) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) SourceFailed(source string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(source).Inc()
}
