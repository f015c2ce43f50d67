package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ex-cordcache/pkg/cord"
)

// driverConfig contains runtime controls for publish timeout and error reporting.
type driverConfig struct {
	name           string
	publishTimeout time.Duration
	onAsyncError   func(context.Context, error)
	now            func() time.Time
}

// DriverOption mutates Discord driver configuration.
type DriverOption func(*driverConfig)

// WithName configures the driver identity exposed to the kernel.
func WithName(name string) DriverOption {
	return func(cfg *driverConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithPublishTimeout bounds how long one event may wait for the sink. Zero,
// the default, waits as long as the Start context lives. An expired timeout
// loses the event, so Start fails with cord.ErrPublishStalled.
func WithPublishTimeout(timeout time.Duration) DriverOption {
	return func(cfg *driverConfig) {
		if timeout >= 0 {
			cfg.publishTimeout = timeout
		}
	}
}

// WithErrorHandler configures async decode error reporting.
func WithErrorHandler(handler func(context.Context, error)) DriverOption {
	return func(cfg *driverConfig) {
		if handler != nil {
			cfg.onAsyncError = handler
		}
	}
}

// Driver adapts Discord gateway dispatches into cord events.
type Driver struct {
	cfg     driverConfig
	source  DispatchSource
	decoder Decoder
}

// NewDriver creates a Discord driver.
func NewDriver(source DispatchSource, decoder Decoder, options ...DriverOption) (*Driver, error) {
	if source == nil {
		return nil, fmt.Errorf("new discord driver: nil source")
	}
	if decoder == nil {
		return nil, fmt.Errorf("new discord driver: nil decoder")
	}

	cfg := driverConfig{
		name:         DriverType,
		onAsyncError: func(context.Context, error) {},
		now:          time.Now,
	}
	for _, option := range options {
		option(&cfg)
	}

	return &Driver{
		cfg:     cfg,
		source:  source,
		decoder: decoder,
	}, nil
}

// Name returns the stable driver identifier.
func (d *Driver) Name() string {
	return d.cfg.name
}

// Start consumes gateway dispatches and publishes cord events.
func (d *Driver) Start(ctx context.Context, sink cord.EventSink) error {
	if sink == nil {
		return fmt.Errorf("start discord driver: nil sink")
	}

	handler := func(handlerCtx context.Context, dispatch Dispatch) error {
		return d.handleDispatch(handlerCtx, dispatch, sink)
	}

	if err := d.source.Consume(ctx, handler); err != nil {
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return nil
		}

		return fmt.Errorf("start discord driver: consume dispatches: %w", err)
	}

	return nil
}

// handleDispatch decodes one dispatch and publishes it. Decode failures go to
// the async error handler and the dispatch is skipped. A publish failure is
// returned, since the cache would silently miss the event.
func (d *Driver) handleDispatch(ctx context.Context, dispatch Dispatch, sink cord.EventSink) error {
	event, err := d.decodeSafely(ctx, dispatch)
	if err != nil {
		d.cfg.onAsyncError(ctx, err)
		return nil
	}
	if event == nil {
		return nil
	}
	if event.Source.Platform == "" {
		event.Source.Platform = DriverPlatform
	}
	if event.Source.ID == "" {
		event.Source.ID = d.cfg.name
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.cfg.now().UTC()
	}

	if d.cfg.publishTimeout <= 0 {
		if err := sink.Publish(ctx, event); err != nil {
			return fmt.Errorf("handle dispatch %s publish: %w", dispatch.Type, err)
		}
		return nil
	}

	publishCtx, cancel := context.WithTimeout(ctx, d.cfg.publishTimeout)
	defer cancel()
	err = sink.Publish(publishCtx, event)
	switch {
	case err == nil:
		return nil
	case ctx.Err() == nil && errors.Is(publishCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("handle dispatch %s (seq %d) after %s: %w",
			dispatch.Type, dispatch.Sequence, d.cfg.publishTimeout, cord.ErrPublishStalled)
	default:
		return fmt.Errorf("handle dispatch %s publish: %w", dispatch.Type, err)
	}
}

// decodeSafely protects decoder panics at the adapter boundary.
func (d *Driver) decodeSafely(ctx context.Context, dispatch Dispatch) (decoded *cord.Event, err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		err = fmt.Errorf("decode discord dispatch %s panic: %v", dispatch.Type, recovered)
	}()

	decoded, err = d.decoder.Decode(ctx, dispatch)
	if err != nil {
		return nil, fmt.Errorf("decode discord dispatch %s: %w", dispatch.Type, err)
	}

	return decoded, nil
}

// Shutdown releases resources not controlled by Start context.
func (d *Driver) Shutdown(_ context.Context) error {
	return nil
}
