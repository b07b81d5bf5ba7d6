package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	brokenLinks   prom.Gauge
	orphans       prom.Gauge
	documents     prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docscheck",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual check stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docscheck",
			Name:      "run_duration_seconds",
			Help:      "Total check run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docscheck",
			Name:      "run_outcomes_total",
			Help:      "Check run outcomes by final status",
		}, []string{"outcome"}),
		brokenLinks: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docscheck",
			Name:      "broken_links",
			Help:      "Broken links found by the most recent run",
		}),
		orphans: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docscheck",
			Name:      "orphan_documents",
			Help:      "Orphan documents found by the most recent run",
		}),
		documents: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docscheck",
			Name:      "documents_loaded",
			Help:      "Documents loaded by the most recent run",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.runOutcome, pr.brokenLinks, pr.orphans, pr.documents)
	return pr
}

// Handler returns an HTTP handler exposing the registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetBrokenLinks(n int) {
	if p == nil || p.brokenLinks == nil {
		return
	}
	p.brokenLinks.Set(float64(n))
}

func (p *PrometheusRecorder) SetOrphanDocuments(n int) {
	if p == nil || p.orphans == nil {
		return
	}
	p.orphans.Set(float64(n))
}

func (p *PrometheusRecorder) SetDocumentCount(n int) {
	if p == nil || p.documents == nil {
		return
	}
	p.documents.Set(float64(n))
}
