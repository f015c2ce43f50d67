package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"ex-cordcache/pkg/cord"
)

// EventBus fans events out to subscriptions.
//
// Every subscription owns one lane per event source. A lane is a bounded
// queue drained by a single goroutine, so one source's events reach the
// handler in publish order while sources do not wait on each other. Publish
// never discards an event: when a lane is full it waits for room, for the
// publisher's context to end or for the subscription to close.
type EventBus struct {
	mu            sync.RWMutex
	nextID        atomic.Int64
	closed        bool
	subscriptions map[int64]*subscription

	laneBuffer   int
	stallWarning time.Duration
	logger       *slog.Logger
	onAsyncError func(context.Context, string, error)
	metrics      *busMetrics
}

// NewEventBus creates a bus whose lanes hold laneBuffer events. A publisher
// that has waited stallWarning for a full lane is logged once per event.
func NewEventBus(
	laneBuffer int,
	stallWarning time.Duration,
	logger *slog.Logger,
	onAsyncError func(context.Context, string, error),
) *EventBus {
	if laneBuffer <= 0 {
		laneBuffer = defaultLaneBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &EventBus{
		subscriptions: make(map[int64]*subscription),
		laneBuffer:    laneBuffer,
		stallWarning:  stallWarning,
		logger:        logger,
		onAsyncError:  onAsyncError,
	}
}

// withMetrics attaches bus metrics. A nil metrics value disables them.
func (b *EventBus) withMetrics(metrics *busMetrics) *EventBus {
	b.metrics = metrics

	return b
}

// Publish hands event to the matching lane of every interested subscription.
// An error means at least one subscription did not receive the event.
func (b *EventBus) Publish(ctx context.Context, event *cord.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	subs, err := b.snapshot()
	if err != nil {
		return fmt.Errorf("publish event %s: %w", event.Kind, err)
	}

	var undelivered []error
	for _, sub := range subs {
		if !sub.interest.Matches(event) {
			continue
		}
		if err := sub.deliver(ctx, event); err != nil {
			b.metrics.recordUndelivered(sub.name)
			undelivered = append(undelivered, err)
		}
	}
	if len(undelivered) > 0 {
		return fmt.Errorf("publish event %s: %w", event.Kind, errors.Join(undelivered...))
	}

	return nil
}

// Subscribe registers handler behind per-source ordered lanes.
func (b *EventBus) Subscribe(
	ctx context.Context,
	interest cord.InterestSet,
	spec cord.SubscriptionSpec,
	handler cord.EventHandler,
) (cord.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", spec.Name, err)
	}
	if handler == nil {
		return nil, fmt.Errorf("subscribe %s: nil handler", spec.Name)
	}
	if spec.Buffer < 0 {
		return nil, fmt.Errorf("subscribe %s: negative buffer: %w", spec.Name, cord.ErrInvalidSubscription)
	}

	id := b.nextID.Add(1)
	if spec.Name == "" {
		spec.Name = fmt.Sprintf("subscription-%d", id)
	}
	if spec.Buffer == 0 {
		spec.Buffer = b.laneBuffer
	}
	sub := newSubscription(id, interest, spec, handler, b)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("subscribe %s: bus closed", spec.Name)
	}
	b.subscriptions[id] = sub

	return sub, nil
}

// Close shuts every subscription down and rejects further use of the bus.
func (b *EventBus) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		subs = append(subs, sub)
	}
	b.subscriptions = make(map[int64]*subscription)
	b.mu.Unlock()

	var closeErr error
	for _, sub := range subs {
		if err := sub.shutdown(ctx); err != nil {
			closeErr = errors.Join(closeErr, err)
		}
	}
	if closeErr != nil {
		return fmt.Errorf("close event bus: %w", closeErr)
	}

	return nil
}

func (b *EventBus) snapshot() ([]*subscription, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("bus closed")
	}
	subs := make([]*subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		subs = append(subs, sub)
	}

	return subs, nil
}

func (b *EventBus) unsubscribe(ctx context.Context, id int64) error {
	b.mu.Lock()
	sub, found := b.subscriptions[id]
	delete(b.subscriptions, id)
	b.mu.Unlock()

	if !found {
		return nil
	}

	return sub.shutdown(ctx)
}

func (b *EventBus) reportAsyncError(ctx context.Context, scope string, err error) {
	if b.onAsyncError != nil {
		b.onAsyncError(ctx, scope, err)
	}
}

// subscription owns the lanes of one subscriber. Lanes are created on the
// first event of each source and live until the subscription shuts down.
type subscription struct {
	id       int64
	name     string
	interest cord.InterestSet
	buffer   int
	handler  cord.EventHandler
	bus      *EventBus

	// ctx is cancelled on shutdown. It releases waiting publishers and
	// stops the lane goroutines.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	lanes  map[cord.EventSource]chan *cord.Event
	active sync.WaitGroup
}

func newSubscription(
	id int64,
	interest cord.InterestSet,
	spec cord.SubscriptionSpec,
	handler cord.EventHandler,
	bus *EventBus,
) *subscription {
	ctx, cancel := context.WithCancel(context.Background())

	return &subscription{
		id:       id,
		name:     spec.Name,
		interest: cloneInterestSet(interest),
		buffer:   spec.Buffer,
		handler:  handler,
		bus:      bus,
		ctx:      ctx,
		cancel:   cancel,
		lanes:    make(map[cord.EventSource]chan *cord.Event),
	}
}

func cloneInterestSet(interest cord.InterestSet) cord.InterestSet {
	cloned := interest
	if len(interest.Kinds) > 0 {
		cloned.Kinds = append([]cord.EventKind(nil), interest.Kinds...)
	}
	if len(interest.Sources) > 0 {
		cloned.Sources = append([]cord.EventSource(nil), interest.Sources...)
	}

	return cloned
}

// Name returns the subscription name.
func (s *subscription) Name() string {
	return s.name
}

// Close removes the subscription from its bus and waits for its lanes.
func (s *subscription) Close(ctx context.Context) error {
	return s.bus.unsubscribe(ctx, s.id)
}

// lane returns the queue for source, starting its drain goroutine on first use.
func (s *subscription) lane(source cord.EventSource) (chan *cord.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("deliver to %s: %w", s.name, cord.ErrSubscriptionClosed)
	}
	queue, exists := s.lanes[source]
	if !exists {
		queue = make(chan *cord.Event, s.buffer)
		s.lanes[source] = queue
		s.active.Add(1)
		go s.drain(source, queue)
	}

	return queue, nil
}

// deliver enqueues event on its source lane, waiting while the lane is full.
func (s *subscription) deliver(ctx context.Context, event *cord.Event) error {
	queue, err := s.lane(event.Source)
	if err != nil {
		return err
	}

	select {
	case queue <- event:
		return s.accepted()
	default:
	}

	waitStart := time.Now()
	defer func() {
		s.bus.metrics.observeLaneWait(s.name, time.Since(waitStart))
	}()

	var stalled <-chan time.Time
	if s.bus.stallWarning > 0 {
		timer := time.NewTimer(s.bus.stallWarning)
		defer timer.Stop()
		stalled = timer.C
	}
	for {
		select {
		case queue <- event:
			return s.accepted()
		case <-stalled:
			stalled = nil
			s.bus.logger.WarnContext(ctx, "publisher waiting on full subscriber lane",
				"subscription", s.name,
				"source", event.Source.String(),
				"kind", event.Kind,
				"waited", s.bus.stallWarning,
			)
		case <-s.ctx.Done():
			return fmt.Errorf("deliver to %s: %w", s.name, cord.ErrSubscriptionClosed)
		case <-ctx.Done():
			return fmt.Errorf("deliver to %s: %w", s.name, ctx.Err())
		}
	}
}

// accepted reports whether an enqueued event will be handled. Lanes stop
// reading once the subscription shuts down, so a late send is undelivered.
func (s *subscription) accepted() error {
	if s.ctx.Err() != nil {
		return fmt.Errorf("deliver to %s: %w", s.name, cord.ErrSubscriptionClosed)
	}

	return nil
}

// drain runs the handler for one source lane until shutdown.
func (s *subscription) drain(source cord.EventSource, queue <-chan *cord.Event) {
	defer s.active.Done()

	scope := "subscription " + s.name + " lane " + source.String()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-queue:
			if s.ctx.Err() != nil {
				return
			}
			err := runSafely(scope, func() error {
				return s.handler(s.ctx, event)
			})
			s.bus.metrics.recordHandled(s.name, event.Kind, err)
			if err != nil {
				s.bus.reportAsyncError(s.ctx, s.name, err)
			}
		}
	}
}

// shutdown stops accepting events, releases waiting publishers and waits for
// lanes to finish their current handler call. Queued events are discarded.
func (s *subscription) shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	finished := make(chan struct{})
	go func() {
		s.active.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown subscription %s: %w", s.name, ctx.Err())
	}
}
