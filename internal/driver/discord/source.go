package discord

import (
	"context"
	"fmt"
)

// DispatchHandler consumes raw gateway dispatches.
type DispatchHandler func(ctx context.Context, dispatch Dispatch) error

// DispatchSource streams gateway dispatches into the adapter.
type DispatchSource interface {
	// Consume runs the dispatch loop until context cancellation or fatal error.
	Consume(ctx context.Context, handler DispatchHandler) error
}

// NoopSource is a passive source useful for bootstrap wiring tests.
type NoopSource struct{}

// Consume blocks until context cancellation.
func (NoopSource) Consume(ctx context.Context, _ DispatchHandler) error {
	<-ctx.Done()

	return nil
}

// ChannelSource reads dispatches from a channel.
type ChannelSource struct {
	// Dispatches is the owned input stream consumed by the source loop.
	Dispatches <-chan Dispatch
}

// Consume forwards channel dispatches until closure or cancellation.
func (s ChannelSource) Consume(ctx context.Context, handler DispatchHandler) error {
	if handler == nil {
		return fmt.Errorf("channel source: nil handler")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case dispatch, ok := <-s.Dispatches:
			if !ok {
				return nil
			}
			if err := handler(ctx, dispatch); err != nil {
				return fmt.Errorf("channel source handle dispatch %s: %w", dispatch.Type, err)
			}
		}
	}
}
