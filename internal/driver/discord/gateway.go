package discord

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/sharding"
)

const defaultCloseTimeout = 5 * time.Second

// GatewayConfig configures the disgo-backed dispatch source.
type GatewayConfig struct {
	// Token is the bot token.
	Token string
	// Intents selects the gateway dispatches the bot receives.
	Intents gateway.Intents
	// ShardIDs restricts this process to a subset of shards. Empty means all.
	ShardIDs []int
	// ShardCount enables the shard manager when greater than zero.
	ShardCount int
	// CloseTimeout bounds gateway shutdown.
	CloseTimeout time.Duration
}

// GatewaySource connects to the Discord gateway with raw events enabled and
// forwards every dispatch in the order the shard delivered it.
type GatewaySource struct {
	cfg     GatewayConfig
	logger  *slog.Logger
	clock   clock.Clock
	onError func(context.Context, error)
}

// GatewayOption mutates gateway source configuration.
type GatewayOption func(*GatewaySource)

// WithGatewayLogger sets the logger handed to disgo and used for source logs.
func WithGatewayLogger(logger *slog.Logger) GatewayOption {
	return func(s *GatewaySource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatewayClock sets the clock used to stamp dispatches.
func WithGatewayClock(c clock.Clock) GatewayOption {
	return func(s *GatewaySource) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithGatewayErrorHandler receives read and handler failures raised inside
// disgo listeners.
func WithGatewayErrorHandler(handler func(context.Context, error)) GatewayOption {
	return func(s *GatewaySource) {
		if handler != nil {
			s.onError = handler
		}
	}
}

// NewGatewaySource creates a gateway source. No connection is made until Consume.
func NewGatewaySource(cfg GatewayConfig, options ...GatewayOption) (*GatewaySource, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("new gateway source: empty token")
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = defaultCloseTimeout
	}

	source := &GatewaySource{
		cfg:     cfg,
		logger:  slog.Default(),
		clock:   clock.New(),
		onError: func(context.Context, error) {},
	}
	for _, option := range options {
		option(source)
	}

	return source, nil
}

// Consume opens the gateway and blocks until ctx is cancelled or handler
// fails. A handler failure means a dispatch never reached the cache, so it is
// returned and the connection is closed rather than skipping the dispatch.
func (s *GatewaySource) Consume(ctx context.Context, handler DispatchHandler) error {
	if handler == nil {
		return fmt.Errorf("consume gateway dispatches: nil handler")
	}

	consumeCtx, fail := context.WithCancelCause(ctx)
	defer fail(nil)

	client, err := disgo.New(s.cfg.Token, s.clientOptions(consumeCtx, fail, handler)...)
	if err != nil {
		return fmt.Errorf("consume gateway dispatches: new client: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), s.cfg.CloseTimeout)
		defer cancel()
		client.Close(closeCtx)
	}()

	if s.sharded() {
		if err := client.OpenShardManager(consumeCtx); err != nil {
			return fmt.Errorf("consume gateway dispatches: open shard manager: %w", err)
		}
	} else if err := client.OpenGateway(consumeCtx); err != nil {
		return fmt.Errorf("consume gateway dispatches: open gateway: %w", err)
	}
	s.logger.InfoContext(ctx, "discord gateway opened",
		"intents", int(s.cfg.Intents),
		"shard_count", s.cfg.ShardCount,
		"shard_ids", s.cfg.ShardIDs,
	)

	<-consumeCtx.Done()
	if ctx.Err() == nil {
		return fmt.Errorf("consume gateway dispatches: %w", context.Cause(consumeCtx))
	}

	return nil
}

func (s *GatewaySource) sharded() bool {
	return s.cfg.ShardCount > 0
}

func (s *GatewaySource) clientOptions(
	ctx context.Context,
	fail context.CancelCauseFunc,
	handler DispatchHandler,
) []bot.ConfigOpt {
	gatewayOptions := []gateway.ConfigOpt{
		gateway.WithIntents(s.cfg.Intents),
		gateway.WithEnableRawEvents(true),
	}

	options := []bot.ConfigOpt{
		bot.WithLogger(s.logger),
		bot.WithEventListenerFunc(func(event *events.Raw) {
			s.deliver(ctx, fail, handler, event.EventType, event.ShardID(), event.SequenceNumber(), event.Payload)
		}),
	}
	if s.sharded() {
		shardOptions := []sharding.ConfigOpt{
			sharding.WithShardCount(s.cfg.ShardCount),
			sharding.WithGatewayConfigOpts(gatewayOptions...),
		}
		if len(s.cfg.ShardIDs) > 0 {
			shardOptions = append(shardOptions, sharding.WithShardIDs(s.cfg.ShardIDs...))
		}
		options = append(options, bot.WithShardManagerConfigOpts(shardOptions...))
	} else {
		options = append(options, bot.WithGatewayConfigOpts(gatewayOptions...))
	}

	return options
}

// deliver passes one raw dispatch to handler. An unreadable payload is
// reported and skipped. A handler failure is reported and stops the source
// through fail; later dispatches are ignored.
func (s *GatewaySource) deliver(
	ctx context.Context,
	fail context.CancelCauseFunc,
	handler DispatchHandler,
	eventType gateway.EventType,
	shardID int,
	sequence int,
	payload io.Reader,
) {
	if ctx.Err() != nil {
		return
	}
	dispatch, err := readDispatch(eventType, shardID, sequence, payload, s.clock.Now().UTC())
	if err != nil {
		s.onError(ctx, err)
		return
	}
	if err := handler(ctx, dispatch); err != nil {
		if ctx.Err() != nil {
			return
		}
		err = fmt.Errorf("handle dispatch %s (shard %d, seq %d): %w", dispatch.Type, shardID, sequence, err)
		s.onError(ctx, err)
		fail(err)
	}
}

// readDispatch drains one raw payload into a Dispatch.
func readDispatch(
	eventType gateway.EventType,
	shardID int,
	sequence int,
	payload io.Reader,
	receivedAt time.Time,
) (Dispatch, error) {
	if payload == nil {
		return Dispatch{}, fmt.Errorf("read dispatch %s: nil payload", eventType)
	}
	data, err := io.ReadAll(payload)
	if err != nil {
		return Dispatch{}, fmt.Errorf("read dispatch %s: %w", eventType, err)
	}

	return Dispatch{
		Type:       eventType,
		ShardID:    shardID,
		Sequence:   sequence,
		ReceivedAt: receivedAt,
		Data:       data,
	}, nil
}
