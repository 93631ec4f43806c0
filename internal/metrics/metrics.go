// Package metrics provides Prometheus collectors for track resolution and playlist export.
//
// Every engine accepts a *Metrics and treats nil as "not recording", so callers that do not care
// about observability pass nothing.
//
// Usage:
//
//	m := metrics.New()
//	m.RecordResolution("exact")
//	m.ObserveMatchRate(87.5)
//	samples, _ := m.Snapshot()
package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "tunesmith"

// Metrics owns a private registry so tests and parallel engines do not share counters.
type Metrics struct {
	Registry *prometheus.Registry

	// Resolutions counts accepted matches by the search attempt that produced them.
	Resolutions *prometheus.CounterVec
	// Unresolved counts songs that no attempt could match.
	Unresolved prometheus.Counter
	// SearchFailures counts swallowed search errors by attempt.
	SearchFailures *prometheus.CounterVec
	// Exports counts finished exports by outcome (success, low_match_rate, failed).
	Exports *prometheus.CounterVec
	// MatchRate records the match rate percentage of every finished export.
	MatchRate prometheus.Histogram
	// CatalogRetries counts HTTP requests replayed by the catalog client.
	CatalogRetries prometheus.Counter
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Total number of songs resolved to a catalog track",
			},
			[]string{"attempt"},
		),
		Unresolved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unresolved_total",
				Help:      "Total number of songs with no acceptable catalog match",
			},
		),
		SearchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_failures_total",
				Help:      "Total number of catalog searches that returned an error",
			},
			[]string{"attempt"},
		),
		Exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of playlist exports by outcome",
			},
			[]string{"outcome"},
		),
		MatchRate: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_match_rate",
				Help:      "Match rate percentage of finished exports",
				Buckets:   []float64{10, 25, 50, 60, 70, 80, 90, 95, 100},
			},
		),
		CatalogRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_retries_total",
				Help:      "Total number of catalog HTTP requests that were retried",
			},
		),
	}

	m.Registry.MustRegister(m.Resolutions, m.Unresolved, m.SearchFailures, m.Exports, m.MatchRate, m.CatalogRetries)
	return m
}

// RecordResolution counts an accepted match.
func (m *Metrics) RecordResolution(attempt string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(attempt).Inc()
}

// RecordUnresolved counts a song that was skipped.
func (m *Metrics) RecordUnresolved() {
	if m == nil {
		return
	}
	m.Unresolved.Inc()
}

// RecordSearchFailure counts a swallowed search error.
func (m *Metrics) RecordSearchFailure(attempt string) {
	if m == nil {
		return
	}
	m.SearchFailures.WithLabelValues(attempt).Inc()
}

// RecordExport counts a finished export.
func (m *Metrics) RecordExport(outcome string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(outcome).Inc()
}

// ObserveMatchRate records the match rate of a finished export.
func (m *Metrics) ObserveMatchRate(rate float64) {
	if m == nil {
		return
	}
	m.MatchRate.Observe(rate)
}

// RecordRetry counts a replayed catalog request.
func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.CatalogRetries.Inc()
}

// Sample is one flattened metric value. Histograms produce a _count and a _sum sample.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers the registry into samples sorted by name.
func (m *Metrics) Snapshot() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}

	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := labelMap(metric.GetLabel())
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				samples = append(samples, Sample{Name: family.GetName(), Labels: labels, Value: metric.GetCounter().GetValue()})
			case dto.MetricType_GAUGE:
				samples = append(samples, Sample{Name: family.GetName(), Labels: labels, Value: metric.GetGauge().GetValue()})
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				samples = append(samples,
					Sample{Name: family.GetName() + "_count", Labels: labels, Value: float64(h.GetSampleCount())},
					Sample{Name: family.GetName() + "_sum", Labels: labels, Value: h.GetSampleSum()},
				)
			}
		}
	}

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}

func labelMap(pairs []*dto.LabelPair) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	labels := make(map[string]string, len(pairs))
	for _, p := range pairs {
		labels[p.GetName()] = p.GetValue()
	}
	return labels
}
