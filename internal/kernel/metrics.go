package kernel

import (
	"errors"
	"fmt"
	"time"

	"ex-cordcache/pkg/cord"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "cordcache"

// busMetrics tracks event flow through the bus. Methods on a nil
// *busMetrics do nothing.
type busMetrics struct {
	published   *prometheus.CounterVec
	handled     *prometheus.CounterVec
	failed      *prometheus.CounterVec
	undelivered *prometheus.CounterVec
	laneWait    *prometheus.HistogramVec
}

// newBusMetrics registers the bus collectors. A second kernel on the same
// registerer shares the first one's collectors.
func newBusMetrics(registerer prometheus.Registerer) (*busMetrics, error) {
	if registerer == nil {
		return nil, nil
	}

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "bus",
			Name:      name,
			Help:      help,
		}, labels)
	}

	var (
		m   busMetrics
		err error
	)
	if m.published, err = register(registerer, counter("events_published_total",
		"Events accepted from drivers, by source and kind", "source", "kind")); err != nil {
		return nil, err
	}
	if m.handled, err = register(registerer, counter("events_handled_total",
		"Events handled by subscribers, by subscription and kind", "subscription", "kind")); err != nil {
		return nil, err
	}
	if m.failed, err = register(registerer, counter("handler_errors_total",
		"Subscriber handler failures, by subscription and kind", "subscription", "kind")); err != nil {
		return nil, err
	}
	if m.undelivered, err = register(registerer, counter("events_undelivered_total",
		"Events a subscription did not receive because it closed or the publisher gave up", "subscription")); err != nil {
		return nil, err
	}
	if m.laneWait, err = register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "bus",
		Name:      "lane_wait_seconds",
		Help:      "Time publishers spent waiting on a full subscriber lane",
		Buckets:   []float64{.001, .01, .1, .5, 1, 5, 30},
	}, []string{"subscription"})); err != nil {
		return nil, err
	}

	return &m, nil
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	var zero C
	return zero, fmt.Errorf("register bus metrics: %w", err)
}

func (m *busMetrics) recordPublished(event *cord.Event) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(event.Source.String(), string(event.Kind)).Inc()
}

func (m *busMetrics) recordHandled(subscription string, kind cord.EventKind, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failed.WithLabelValues(subscription, string(kind)).Inc()
		return
	}
	m.handled.WithLabelValues(subscription, string(kind)).Inc()
}

func (m *busMetrics) recordUndelivered(subscription string) {
	if m == nil {
		return
	}
	m.undelivered.WithLabelValues(subscription).Inc()
}

func (m *busMetrics) observeLaneWait(subscription string, waited time.Duration) {
	if m == nil {
		return
	}
	m.laneWait.WithLabelValues(subscription).Observe(waited.Seconds())
}
