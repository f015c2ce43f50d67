package cord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValidate(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	source := EventSource{Platform: PlatformDiscord, ID: "main"}

	tests := []struct {
		name    string
		event   *Event
		wantErr bool
	}{
		{
			name:  "valid event",
			event: NewEvent("e1", now, source, GuildDelete{ID: 1}),
		},
		{
			name:    "nil event",
			wantErr: true,
		},
		{
			name:    "missing id",
			event:   NewEvent("", now, source, GuildDelete{ID: 1}),
			wantErr: true,
		},
		{
			name:    "missing occurred at",
			event:   NewEvent("e1", time.Time{}, source, GuildDelete{ID: 1}),
			wantErr: true,
		},
		{
			name:    "missing payload",
			event:   &Event{ID: "e1", Kind: EventKindGuildDelete, OccurredAt: now},
			wantErr: true,
		},
		{
			name:    "kind mismatch",
			event:   &Event{ID: "e1", Kind: EventKindGuildCreate, OccurredAt: now, Payload: GuildDelete{ID: 1}},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := testCase.event.Validate()
			if testCase.wantErr {
				require.ErrorIs(t, err, ErrInvalidEvent)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewEventTakesKindFromPayload(t *testing.T) {
	t.Parallel()

	event := NewEvent("e1", time.Now(), EventSource{Platform: PlatformDiscord, ID: "main"}, MessageDeleteBulk{})
	assert.Equal(t, EventKindMessageDeleteBulk, event.Kind)
	assert.Equal(t, "discord/main", event.Source.String())
}

func TestInterestSetMatches(t *testing.T) {
	t.Parallel()

	main := EventSource{Platform: PlatformDiscord, ID: "main"}
	alt := EventSource{Platform: PlatformDiscord, ID: "alt"}
	event := &Event{Kind: EventKindGuildCreate, Source: main}

	tests := []struct {
		name     string
		interest InterestSet
		want     bool
	}{
		{name: "empty matches everything", interest: InterestSet{}, want: true},
		{name: "kind listed", interest: InterestSet{Kinds: []EventKind{EventKindGuildCreate}}, want: true},
		{name: "kind not listed", interest: InterestSet{Kinds: []EventKind{EventKindGuildDelete}}, want: false},
		{name: "source listed", interest: InterestSet{Sources: []EventSource{main}}, want: true},
		{name: "other source", interest: InterestSet{Sources: []EventSource{alt}}, want: false},
		{name: "platform wildcard", interest: InterestSet{Sources: []EventSource{{Platform: PlatformDiscord}}}, want: true},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, testCase.interest.Matches(event))
		})
	}

	assert.False(t, InterestSet{}.Matches(nil))
}
