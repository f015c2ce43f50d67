package guildcache

import (
	"errors"
	"fmt"
	"time"

	"ex-cordcache/pkg/cord"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "cordcache"
	metricsSubsystem = "cache"
)

// cacheMetrics counts applied events. A nil *cacheMetrics records nothing.
type cacheMetrics struct {
	applied     *prometheus.CounterVec
	failed      *prometheus.CounterVec
	lastApplied *prometheus.GaugeVec
}

// newCacheMetrics registers the module counters, reusing collectors that
// another guild cache instance already registered on registerer.
func newCacheMetrics(registerer prometheus.Registerer) (*cacheMetrics, error) {
	applied, err := registerCollector(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "events_applied_total",
		Help:      "Events applied to the guild cache, by source and kind",
	}, []string{"source", "kind"}))
	if err != nil {
		return nil, err
	}
	failed, err := registerCollector(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "events_rejected_total",
		Help:      "Events the guild cache refused to apply, by source and kind",
	}, []string{"source", "kind"}))
	if err != nil {
		return nil, err
	}
	lastApplied, err := registerCollector(registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "last_applied_timestamp_seconds",
		Help:      "Unix time of the last applied event, by source",
	}, []string{"source"}))
	if err != nil {
		return nil, err
	}

	return &cacheMetrics{
		applied:     applied,
		failed:      failed,
		lastApplied: lastApplied,
	}, nil
}

func registerCollector[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
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
	return zero, fmt.Errorf("register cache metrics: %w", err)
}

func (m *cacheMetrics) recordApplied(source string, kind cord.EventKind, at time.Time) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(source, string(kind)).Inc()
	m.lastApplied.WithLabelValues(source).Set(float64(at.UnixNano()) / float64(time.Second))
}

func (m *cacheMetrics) recordFailed(source string, kind cord.EventKind) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(source, string(kind)).Inc()
}

// sizeCollector reports table sizes of one cache at scrape time.
type sizeCollector struct {
	desc  *prometheus.Desc
	stats func() cord.CacheStats
}

func newSizeCollector(source string, stats func() cord.CacheStats) *sizeCollector {
	return &sizeCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, metricsSubsystem, "entries"),
			"Entries held by each guild cache table",
			[]string{"table"},
			prometheus.Labels{"source": source},
		),
		stats: stats,
	}
}

// Describe implements prometheus.Collector.
func (c *sizeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *sizeCollector) Collect(ch chan<- prometheus.Metric) {
	for table, count := range c.stats().ByTable() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(count), table)
	}
}
