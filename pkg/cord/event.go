package cord

import (
	"fmt"
	"time"
)

// EventKind identifies a gateway dispatch kind.
type EventKind string

// Event kinds, one per gateway dispatch consumed by the cache.
const (
	EventKindGuildCreate               EventKind = "guild.create"
	EventKindGuildUpdate               EventKind = "guild.update"
	EventKindGuildDelete               EventKind = "guild.delete"
	EventKindChannelCreate             EventKind = "channel.create"
	EventKindChannelUpdate             EventKind = "channel.update"
	EventKindChannelDelete             EventKind = "channel.delete"
	EventKindThreadCreate              EventKind = "thread.create"
	EventKindThreadUpdate              EventKind = "thread.update"
	EventKindThreadDelete              EventKind = "thread.delete"
	EventKindThreadMemberUpdate        EventKind = "thread_member.update"
	EventKindThreadMembersUpdate       EventKind = "thread_members.update"
	EventKindGuildBanAdd               EventKind = "guild_ban.add"
	EventKindGuildBanRemove            EventKind = "guild_ban.remove"
	EventKindGuildMemberAdd            EventKind = "guild_member.add"
	EventKindGuildMemberRemove         EventKind = "guild_member.remove"
	EventKindGuildMemberUpdate         EventKind = "guild_member.update"
	EventKindGuildMembersChunk         EventKind = "guild_members.chunk"
	EventKindGuildStickersUpdate       EventKind = "guild_stickers.update"
	EventKindGuildEmojisUpdate         EventKind = "guild_emojis.update"
	EventKindGuildRoleCreate           EventKind = "guild_role.create"
	EventKindGuildRoleUpdate           EventKind = "guild_role.update"
	EventKindGuildRoleDelete           EventKind = "guild_role.delete"
	EventKindMessageCreate             EventKind = "message.create"
	EventKindMessageUpdate             EventKind = "message.update"
	EventKindMessageDelete             EventKind = "message.delete"
	EventKindMessageDeleteBulk         EventKind = "message.delete_bulk"
	EventKindPresenceUpdate            EventKind = "presence.update"
	EventKindStageInstanceCreate       EventKind = "stage_instance.create"
	EventKindStageInstanceUpdate       EventKind = "stage_instance.update"
	EventKindStageInstanceDelete       EventKind = "stage_instance.delete"
	EventKindGuildScheduledEventCreate EventKind = "guild_scheduled_event.create"
	EventKindGuildScheduledEventUpdate EventKind = "guild_scheduled_event.update"
	EventKindGuildScheduledEventDelete EventKind = "guild_scheduled_event.delete"
)

// Platform identifies an external chat platform.
type Platform string

const (
	// PlatformDiscord is Discord.
	PlatformDiscord Platform = "discord"
)

// EventSource identifies the driver instance that produced an event.
type EventSource struct {
	// Platform is the upstream platform.
	Platform Platform
	// ID is the configured driver instance name, one per bot account.
	ID string
}

// String renders the source as platform/id.
func (s EventSource) String() string {
	return string(s.Platform) + "/" + s.ID
}

// Event is the envelope that drivers publish and modules consume.
type Event struct {
	// ID is a unique identifier for this event instance.
	ID string
	// Kind names the dispatch kind and must agree with Payload.Kind().
	Kind EventKind
	// OccurredAt is when the driver received the dispatch.
	OccurredAt time.Time
	// Source identifies the producing driver instance.
	Source EventSource
	// ShardID is the gateway shard that delivered the dispatch.
	ShardID int
	// Sequence is the gateway sequence number of the dispatch.
	Sequence int
	// Payload is the typed dispatch body.
	Payload Payload
}

// NewEvent builds an envelope whose Kind is taken from payload.
func NewEvent(id string, occurredAt time.Time, source EventSource, payload Payload) *Event {
	event := &Event{
		ID:         id,
		OccurredAt: occurredAt,
		Source:     source,
		Payload:    payload,
	}
	if payload != nil {
		event.Kind = payload.Kind()
	}

	return event
}

// Validate checks envelope and payload coherence.
func (e *Event) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	if e.Kind == "" {
		return fmt.Errorf("%w: missing kind", ErrInvalidEvent)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing occurred_at", ErrInvalidEvent)
	}
	if e.Payload == nil {
		return fmt.Errorf("%w: %s requires payload", ErrInvalidEvent, e.Kind)
	}
	if payloadKind := e.Payload.Kind(); payloadKind != e.Kind {
		return fmt.Errorf("%w: kind %s carries %s payload", ErrInvalidEvent, e.Kind, payloadKind)
	}

	return nil
}
