package discord

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/disgoorg/disgo/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGatewaySourceDefaults(t *testing.T) {
	t.Parallel()

	_, err := NewGatewaySource(GatewayConfig{})
	require.Error(t, err)

	mockClock := clock.NewMock()
	source, err := NewGatewaySource(GatewayConfig{Token: "secret"}, WithGatewayClock(mockClock))
	require.NoError(t, err)
	assert.Equal(t, defaultCloseTimeout, source.cfg.CloseTimeout)
	assert.False(t, source.sharded())
	assert.Same(t, mockClock, source.clock)
}

func TestGatewaySourceClientOptions(t *testing.T) {
	t.Parallel()

	single, err := NewGatewaySource(GatewayConfig{Token: "secret", Intents: DefaultIntents})
	require.NoError(t, err)
	sharded, err := NewGatewaySource(GatewayConfig{Token: "secret", Intents: DefaultIntents, ShardCount: 2, ShardIDs: []int{1}})
	require.NoError(t, err)
	assert.True(t, sharded.sharded())

	handler := func(context.Context, Dispatch) error { return nil }
	fail := func(error) {}
	assert.Len(t, single.clientOptions(context.Background(), fail, handler), 3)
	assert.Len(t, sharded.clientOptions(context.Background(), fail, handler), 3)
}

func TestGatewaySourceConsumeRejectsNilHandler(t *testing.T) {
	t.Parallel()

	source, err := NewGatewaySource(GatewayConfig{Token: "secret"})
	require.NoError(t, err)
	require.Error(t, source.Consume(context.Background(), nil))
}

func TestReadDispatch(t *testing.T) {
	t.Parallel()

	receivedAt := time.Unix(1_700_000_000, 0).UTC()
	dispatch, err := readDispatch(gateway.EventTypeGuildDelete, 1, 9, strings.NewReader(`{"id":"100"}`), receivedAt)
	require.NoError(t, err)
	assert.Equal(t, Dispatch{
		Type:       gateway.EventTypeGuildDelete,
		ShardID:    1,
		Sequence:   9,
		ReceivedAt: receivedAt,
		Data:       []byte(`{"id":"100"}`),
	}, dispatch)

	_, err = readDispatch(gateway.EventTypeGuildDelete, 0, 0, nil, receivedAt)
	require.Error(t, err)

	_, err = readDispatch(gateway.EventTypeGuildDelete, 0, 0, failingReader{}, receivedAt)
	require.Error(t, err)
}

func TestGatewaySourceDeliverStopsOnHandlerFailure(t *testing.T) {
	t.Parallel()

	var reported []error
	mockClock := clock.NewMock()
	source, err := NewGatewaySource(
		GatewayConfig{Token: "secret"},
		WithGatewayClock(mockClock),
		WithGatewayErrorHandler(func(_ context.Context, err error) {
			reported = append(reported, err)
		}),
	)
	require.NoError(t, err)

	ctx, fail := context.WithCancelCause(context.Background())
	defer fail(nil)

	var handled []int
	handler := func(_ context.Context, dispatch Dispatch) error {
		handled = append(handled, dispatch.Sequence)
		if dispatch.Sequence == 2 {
			return errPublishFailed
		}
		return nil
	}

	source.deliver(ctx, fail, handler, gateway.EventTypeGuildCreate, 0, 1, strings.NewReader(`{}`))
	source.deliver(ctx, fail, handler, gateway.EventTypeGuildCreate, 0, 0, failingReader{})
	require.NoError(t, ctx.Err(), "an unreadable payload is skipped")
	require.Len(t, reported, 1)

	source.deliver(ctx, fail, handler, gateway.EventTypeGuildCreate, 0, 2, strings.NewReader(`{}`))
	require.Error(t, ctx.Err())
	assert.ErrorIs(t, context.Cause(ctx), errPublishFailed)
	assert.Contains(t, context.Cause(ctx).Error(), "seq 2")
	require.Len(t, reported, 2)

	source.deliver(ctx, fail, handler, gateway.EventTypeGuildCreate, 0, 3, strings.NewReader(`{}`))
	assert.Equal(t, []int{1, 2}, handled, "dispatches after a failure are not handled")
}

var errPublishFailed = errors.New("publish failed")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}
