package kernel

import (
	"context"
	"fmt"

	"ex-cordcache/pkg/cord"
)

// newDriverEventSink creates the sink handed to every driver.
func (k *Kernel) newDriverEventSink() cord.EventSink {
	return &driverSink{
		base:    k.bus,
		metrics: k.metrics,
	}
}

// driverSink publishes driver events onto the bus and counts accepted ones
// per source.
type driverSink struct {
	base    cord.EventSink
	metrics *busMetrics
}

// Publish forwards one driver event.
func (s *driverSink) Publish(ctx context.Context, event *cord.Event) error {
	if event == nil {
		return fmt.Errorf("publish driver event: nil event")
	}
	if s.base == nil {
		return fmt.Errorf("publish driver event %s: nil base sink", event.Kind)
	}

	if err := s.base.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish driver event %s from %s: %w", event.Kind, event.Source, err)
	}
	s.metrics.recordPublished(event)

	return nil
}
