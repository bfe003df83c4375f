// Package metrics provides Prometheus metrics for image requests.
//
// Metrics implements ogimage.RequestObserver; pass it to ogimage.WithObserver.
package metrics

import (
	"context"
	"strconv"

	ogimage "github.com/chimerakang/ogimage-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for image requests.
type Metrics struct {
	enabled bool

	// Request metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Response metrics
	responsesTotal *prometheus.CounterVec

	// Failure metrics
	timeoutsTotal prometheus.Counter
}

// compile-time check
var _ ogimage.RequestObserver = (*Metrics)(nil)

// New creates and registers metrics with the default Prometheus registry.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	if !enabled {
		return &Metrics{}
	}
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates metrics registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{enabled: true}

	m.requestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "ogimage_requests_total",
		Help: "Total image requests by outcome",
	}, []string{"outcome", "template"})

	m.requestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ogimage_request_duration_seconds",
		Help:    "Image request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	m.responsesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "ogimage_responses_total",
		Help: "Responses received from the image service by status code",
	}, []string{"code"})

	m.timeoutsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "ogimage_timeouts_total",
		Help: "Image requests aborted by the combined deadline",
	})

	return m
}

// ObserveImageRequest records one image request.
func (m *Metrics) ObserveImageRequest(_ context.Context, ev ogimage.RequestEvent) {
	if !m.enabled {
		return
	}
	m.requestsTotal.WithLabelValues(ev.Outcome, ev.Template).Inc()
	m.requestDuration.WithLabelValues(ev.Outcome).Observe(ev.Duration.Seconds())
	if ev.StatusCode > 0 {
		m.responsesTotal.WithLabelValues(strconv.Itoa(ev.StatusCode)).Inc()
	}
	if ev.Outcome == ogimage.OutcomeTimeout {
		m.timeoutsTotal.Inc()
	}
}
