package cord

import "context"

// SubscriptionSpec configures a single subscriber.
//
// The bus keeps one lane per event source for every subscription. A lane
// delivers its source's events one at a time in publish order and never drops
// one: Publish waits until the lane has room, the publisher's context ends or
// the subscription closes.
type SubscriptionSpec struct {
	// Name identifies the subscription in logs and metrics.
	Name string
	// Buffer is the queue depth of each source lane. Zero uses the bus default.
	Buffer int
}

// Subscription controls an active event stream registration.
type Subscription interface {
	// Name returns the subscription identifier.
	Name() string
	// Close stops delivery for this subscription.
	Close(ctx context.Context) error
}

// EventBus is the pub/sub contract used by the kernel.
type EventBus interface {
	EventSink
	// Subscribe registers a handler fed by per-source ordered lanes.
	Subscribe(
		ctx context.Context,
		interest InterestSet,
		spec SubscriptionSpec,
		handler EventHandler,
	) (Subscription, error)
	// Close shuts down the bus and all active subscriptions.
	Close(ctx context.Context) error
}
