// Package metrics bundles the Prometheus collectors for position resolution,
// geocoding, click resolution and the HTTP surface.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is nil-safe: every recording method is a no-op on a nil receiver,
// so packages can take an optional *Collector.
type Collector struct {
	gatherer prometheus.Gatherer

	Resolutions      *prometheus.CounterVec
	GeocoderRequests *prometheus.CounterVec
	GeocoderDuration prometheus.Histogram
	Clicks           *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers collectors against reg, defaulting to the global registry.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthmap_position_resolutions_total",
			Help: "Completed position resolutions by source and outcome.",
		}, []string{"source", "outcome"}),
		GeocoderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthmap_geocoder_requests_total",
			Help: "Geocoder lookups by outcome (ok, empty, error, cache_hit).",
		}, []string{"outcome"}),
		GeocoderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "healthmap_geocoder_duration_seconds",
			Help:    "Upstream geocoder latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		Clicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthmap_clicks_total",
			Help: "Resolved map clicks by entity kind and outcome.",
		}, []string{"kind", "outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "healthmap_sessions_active",
			Help: "Interaction sessions currently held in memory.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthmap_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthmap_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"route", "method"}),
	}

	for _, col := range []prometheus.Collector{
		c.Resolutions, c.GeocoderRequests, c.GeocoderDuration, c.Clicks,
		c.ActiveSessions, c.HTTPRequests, c.HTTPDuration,
	} {
		if err := reg.Register(col); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				return nil, fmt.Errorf("metrics already registered on this registerer: %w", err)
			}
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ObserveResolution(source, outcome string) {
	if c == nil {
		return
	}
	c.Resolutions.WithLabelValues(source, outcome).Inc()
}

func (c *Collector) ObserveGeocoder(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.GeocoderRequests.WithLabelValues(outcome).Inc()
	if outcome != "cache_hit" {
		c.GeocoderDuration.Observe(d.Seconds())
	}
}

func (c *Collector) ObserveClick(kind, outcome string) {
	if c == nil {
		return
	}
	c.Clicks.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	if c == nil {
		return
	}
	c.ActiveSessions.Set(float64(n))
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so /territories/{id} stays a single series.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registered collectors for scraping.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
