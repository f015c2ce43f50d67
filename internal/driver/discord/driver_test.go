package discord

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ex-cordcache/pkg/cord"

	"github.com/disgoorg/disgo/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriverValidatesArguments(t *testing.T) {
	t.Parallel()

	_, err := NewDriver(nil, NewDefaultDecoder())
	require.Error(t, err)
	_, err = NewDriver(NoopSource{}, nil)
	require.Error(t, err)

	driver, err := NewDriver(NoopSource{}, NewDefaultDecoder())
	require.NoError(t, err)
	assert.Equal(t, DriverType, driver.Name())
}

func TestDriverPublishesDecodedDispatches(t *testing.T) {
	t.Parallel()

	dispatches := make(chan Dispatch, 3)
	dispatches <- Dispatch{Type: gateway.EventTypeReady, Data: json.RawMessage(`{}`)}
	dispatches <- Dispatch{
		Type:       gateway.EventTypeGuildRoleCreate,
		ReceivedAt: time.Unix(1_700_000_000, 0),
		Data:       json.RawMessage(`{"guild_id": "100", "role": {"id": "300", "name": "mods"}}`),
	}
	dispatches <- Dispatch{Type: gateway.EventTypeGuildDelete, Data: json.RawMessage(`{"id": "100"}`)}
	close(dispatches)

	driver, err := NewDriver(ChannelSource{Dispatches: dispatches}, NewDefaultDecoder(), WithName("discord-main"))
	require.NoError(t, err)

	sink := &recordingSink{}
	require.NoError(t, driver.Start(context.Background(), sink))

	events := sink.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, cord.EventKindGuildRoleCreate, events[0].Kind)
	assert.Equal(t, cord.EventSource{Platform: cord.PlatformDiscord, ID: "discord-main"}, events[0].Source)
	assert.Equal(t, cord.EventKindGuildDelete, events[1].Kind)
	assert.False(t, events[1].OccurredAt.IsZero())
	for _, event := range events {
		require.NoError(t, event.Validate())
	}
}

func TestDriverReportsDecodeErrorsAndContinues(t *testing.T) {
	t.Parallel()

	dispatches := make(chan Dispatch, 2)
	dispatches <- Dispatch{Type: gateway.EventTypeChannelCreate, Data: json.RawMessage(`{`)}
	dispatches <- Dispatch{Type: gateway.EventTypeChannelCreate, Data: json.RawMessage(`{"id": "200", "type": 0}`)}
	close(dispatches)

	var reported []error
	driver, err := NewDriver(
		ChannelSource{Dispatches: dispatches},
		NewDefaultDecoder(),
		WithErrorHandler(func(_ context.Context, err error) {
			reported = append(reported, err)
		}),
	)
	require.NoError(t, err)

	sink := &recordingSink{}
	require.NoError(t, driver.Start(context.Background(), sink))
	require.Len(t, reported, 1)
	assert.Contains(t, reported[0].Error(), "CHANNEL_CREATE")
	assert.Len(t, sink.snapshot(), 1)
}

func TestDriverRecoversDecoderPanic(t *testing.T) {
	t.Parallel()

	dispatches := make(chan Dispatch, 1)
	dispatches <- Dispatch{Type: gateway.EventTypeGuildCreate}
	close(dispatches)

	var reported error
	driver, err := NewDriver(
		ChannelSource{Dispatches: dispatches},
		panicDecoder{},
		WithErrorHandler(func(_ context.Context, err error) {
			reported = err
		}),
	)
	require.NoError(t, err)
	require.NoError(t, driver.Start(context.Background(), &recordingSink{}))
	require.Error(t, reported)
	assert.True(t, strings.Contains(reported.Error(), "panic"))
}

func TestDriverReturnsPublishError(t *testing.T) {
	t.Parallel()

	dispatches := make(chan Dispatch, 1)
	dispatches <- Dispatch{Type: gateway.EventTypeGuildDelete, Data: json.RawMessage(`{"id": "100"}`)}
	close(dispatches)

	driver, err := NewDriver(ChannelSource{Dispatches: dispatches}, NewDefaultDecoder())
	require.NoError(t, err)

	err = driver.Start(context.Background(), &recordingSink{err: cord.ErrSubscriptionClosed})
	require.Error(t, err)
	assert.ErrorIs(t, err, cord.ErrSubscriptionClosed)
}

func TestDriverPublishTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		options   []DriverOption
		sink      cord.EventSink
		wantErrIs error
	}{
		{
			name: "default waits for a slow sink",
			sink: slowSink{delay: 100 * time.Millisecond},
		},
		{
			name:    "zero timeout waits for a slow sink",
			options: []DriverOption{WithPublishTimeout(0)},
			sink:    slowSink{delay: 100 * time.Millisecond},
		},
		{
			name:      "expired timeout stops the driver",
			options:   []DriverOption{WithPublishTimeout(10 * time.Millisecond)},
			sink:      blockingSink{},
			wantErrIs: cord.ErrPublishStalled,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			dispatches := make(chan Dispatch, 1)
			dispatches <- Dispatch{Type: gateway.EventTypeGuildDelete, Sequence: 7, Data: json.RawMessage(`{"id": "100"}`)}
			close(dispatches)

			driver, err := NewDriver(ChannelSource{Dispatches: dispatches}, NewDefaultDecoder(), testCase.options...)
			require.NoError(t, err)

			err = driver.Start(context.Background(), testCase.sink)
			if testCase.wantErrIs == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, testCase.wantErrIs)
			assert.NotErrorIs(t, err, context.DeadlineExceeded)
			assert.Contains(t, err.Error(), "seq 7")
		})
	}
}

func TestDriverStartRejectsNilSink(t *testing.T) {
	t.Parallel()

	driver, err := NewDriver(NoopSource{}, NewDefaultDecoder())
	require.NoError(t, err)
	require.Error(t, driver.Start(context.Background(), nil))
}

func TestDriverStartReturnsOnCancel(t *testing.T) {
	t.Parallel()

	driver, err := NewDriver(NoopSource{}, NewDefaultDecoder())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, driver.Start(ctx, &recordingSink{}))
	require.NoError(t, driver.Shutdown(context.Background()))
}

type recordingSink struct {
	mu     sync.Mutex
	events []*cord.Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event *cord.Event) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)

	return nil
}

func (s *recordingSink) snapshot() []*cord.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*cord.Event(nil), s.events...)
}

type slowSink struct {
	delay time.Duration
}

func (s slowSink) Publish(ctx context.Context, _ *cord.Event) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type blockingSink struct{}

func (blockingSink) Publish(ctx context.Context, _ *cord.Event) error {
	<-ctx.Done()

	return ctx.Err()
}

type panicDecoder struct{}

func (panicDecoder) Decode(context.Context, Dispatch) (*cord.Event, error) {
	panic(errors.New("boom"))
}
