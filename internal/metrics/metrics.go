// Package metrics exposes Prometheus metrics for the service.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ozonewatch/woudc-client/internal/woudc"
)

// Provider owns the metric registry and every collector the service records
// into. All collectors live on an explicit registry so tests can build
// isolated providers.
type Provider struct {
	reg *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	pageFetches   *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	pageFeatures  prometheus.Histogram
}

// Init creates a provider with the standard process collectors plus the
// service's own collectors registered.
func Init() *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &Provider{
		reg: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "woudc_http_requests_total",
				Help: "HTTP requests served, by route and status code.",
			},
			[]string{"route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "woudc_http_request_duration_seconds",
				Help:    "HTTP request latency, by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		pageFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "woudc_upstream_page_fetches_total",
				Help: "Upstream page fetches, by dataset and outcome.",
			},
			[]string{"dataset", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "woudc_upstream_fetch_duration_seconds",
				Help:    "Upstream page fetch latency, by dataset.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"dataset"},
		),
		pageFeatures: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "woudc_upstream_page_features",
				Help:    "Features returned per upstream page.",
				Buckets: prometheus.ExponentialBuckets(1, 10, 6),
			},
		),
	}

	reg.MustRegister(p.httpRequests, p.httpDuration, p.pageFetches, p.fetchDuration, p.pageFeatures)

	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

// Register adds extra collectors to the provider's registry.
func (p *Provider) Register(cs ...prometheus.Collector) {
	for _, c := range cs {
		p.reg.MustRegister(c)
	}
}

// Registerer exposes the underlying registry for library integration.
func (p *Provider) Registerer() prometheus.Registerer { return p.reg }

// ObserveHTTP records one served HTTP request.
func (p *Provider) ObserveHTTP(route, code string, duration time.Duration) {
	p.httpRequests.WithLabelValues(route, code).Inc()
	p.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// InstrumentSource wraps a feature source so every upstream fetch is
// recorded against the provider.
func (p *Provider) InstrumentSource(source woudc.FeatureSource) woudc.FeatureSource {
	return &instrumentedSource{source: source, provider: p}
}

type instrumentedSource struct {
	source   woudc.FeatureSource
	provider *Provider
}

func (s *instrumentedSource) FetchPage(ctx context.Context, req woudc.PageRequest) (*woudc.Page, error) {
	start := time.Now()
	page, err := s.source.FetchPage(ctx, req)
	s.observe(req.Dataset, start, page, err)
	return page, err
}

func (s *instrumentedSource) FetchCollection(ctx context.Context, name string) (*woudc.Page, error) {
	start := time.Now()
	page, err := s.source.FetchCollection(ctx, name)
	s.observe(name, start, page, err)
	return page, err
}

func (s *instrumentedSource) observe(dataset string, start time.Time, page *woudc.Page, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.provider.pageFetches.WithLabelValues(dataset, outcome).Inc()
	s.provider.fetchDuration.WithLabelValues(dataset).Observe(time.Since(start).Seconds())
	if page != nil {
		s.provider.pageFeatures.Observe(float64(len(page.Features)))
	}
}
