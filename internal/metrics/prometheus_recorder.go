package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg              *prom.Registry
	buildDuration    prom.Histogram
	buildOutcome     *prom.CounterVec
	coalesced        prom.Counter
	transforms       *prom.CounterVec
	clients          prom.Gauge
	broadcasts       prom.Counter
	deliveryFailures prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "hotbundle",
		Name:      "build_duration_seconds",
		Help:      "Duration of one rebuild generation",
		Buckets:   prom.DefBuckets,
	})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "hotbundle",
		Name:      "build_outcomes_total",
		Help:      "Rebuild generations by final status",
	}, []string{"outcome"})
	pr.coalesced = prom.NewCounter(prom.CounterOpts{
		Namespace: "hotbundle",
		Name:      "watch_events_coalesced_total",
		Help:      "Watch events folded into an already pending follow-up build",
	})
	pr.transforms = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "hotbundle",
		Name:      "module_transforms_total",
		Help:      "Module transforms by result",
	}, []string{"result"})
	pr.clients = prom.NewGauge(prom.GaugeOpts{
		Namespace: "hotbundle",
		Name:      "hmr_clients",
		Help:      "Currently connected hot-update clients",
	})
	pr.broadcasts = prom.NewCounter(prom.CounterOpts{
		Namespace: "hotbundle",
		Name:      "hmr_broadcasts_total",
		Help:      "Update messages broadcast to clients",
	})
	pr.deliveryFailures = prom.NewCounter(prom.CounterOpts{
		Namespace: "hotbundle",
		Name:      "hmr_delivery_failures_total",
		Help:      "Per-connection send failures",
	})
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.coalesced, pr.transforms, pr.clients, pr.broadcasts, pr.deliveryFailures)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCoalescedEvents() { p.coalesced.Inc() }

func (p *PrometheusRecorder) IncTransform(result TransformResult) {
	p.transforms.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetConnectedClients(n int) { p.clients.Set(float64(n)) }
func (p *PrometheusRecorder) IncBroadcast()             { p.broadcasts.Inc() }
func (p *PrometheusRecorder) IncDeliveryFailure()       { p.deliveryFailures.Inc() }

// Handler returns an http.Handler that serves the recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
