package discord

import (
	"context"
	"encoding/json"
	"fmt"

	"ex-cordcache/pkg/cord"

	"github.com/disgoorg/disgo/gateway"
	"github.com/google/uuid"
)

// Decoder converts gateway dispatches into cord events.
type Decoder interface {
	// Decode maps one dispatch into an event. A nil event with a nil error
	// means the dispatch type carries nothing the cache consumes.
	Decode(ctx context.Context, dispatch Dispatch) (*cord.Event, error)
}

type payloadDecoder func(data json.RawMessage) (cord.Payload, error)

// DefaultDecoder decodes the dispatch types the cache consumes.
type DefaultDecoder struct {
	newID    func() string
	payloads map[gateway.EventType]payloadDecoder
}

// DecoderOption mutates default decoder configuration.
type DecoderOption func(*DefaultDecoder)

// WithIDGenerator overrides event id generation.
func WithIDGenerator(newID func() string) DecoderOption {
	return func(d *DefaultDecoder) {
		if newID != nil {
			d.newID = newID
		}
	}
}

// NewDefaultDecoder creates a default decoder.
func NewDefaultDecoder(options ...DecoderOption) DefaultDecoder {
	decoder := DefaultDecoder{
		newID: uuid.NewString,
		payloads: map[gateway.EventType]payloadDecoder{
			gateway.EventTypeGuildCreate:               decodeAs[cord.GuildCreate],
			gateway.EventTypeGuildUpdate:               decodeAs[cord.GuildUpdate],
			gateway.EventTypeGuildDelete:               decodeAs[cord.GuildDelete],
			gateway.EventTypeChannelCreate:             decodeAs[cord.ChannelCreate],
			gateway.EventTypeChannelUpdate:             decodeAs[cord.ChannelUpdate],
			gateway.EventTypeChannelDelete:             decodeAs[cord.ChannelDelete],
			gateway.EventTypeThreadCreate:              decodeAs[cord.ThreadCreate],
			gateway.EventTypeThreadUpdate:              decodeAs[cord.ThreadUpdate],
			gateway.EventTypeThreadDelete:              decodeAs[cord.ThreadDelete],
			gateway.EventTypeThreadMemberUpdate:        decodeAs[cord.ThreadMemberUpdate],
			gateway.EventTypeThreadMembersUpdate:       decodeAs[cord.ThreadMembersUpdate],
			gateway.EventTypeGuildBanAdd:               decodeAs[cord.GuildBanAdd],
			gateway.EventTypeGuildBanRemove:            decodeAs[cord.GuildBanRemove],
			gateway.EventTypeGuildMemberAdd:            decodeAs[cord.GuildMemberAdd],
			gateway.EventTypeGuildMemberRemove:         decodeAs[cord.GuildMemberRemove],
			gateway.EventTypeGuildMemberUpdate:         decodeAs[cord.GuildMemberUpdate],
			gateway.EventTypeGuildMembersChunk:         decodeAs[cord.GuildMembersChunk],
			gateway.EventTypeGuildStickersUpdate:       decodeAs[cord.GuildStickersUpdate],
			gateway.EventTypeGuildEmojisUpdate:         decodeAs[cord.GuildEmojisUpdate],
			gateway.EventTypeGuildRoleCreate:           decodeAs[cord.GuildRoleCreate],
			gateway.EventTypeGuildRoleUpdate:           decodeAs[cord.GuildRoleUpdate],
			gateway.EventTypeGuildRoleDelete:           decodeAs[cord.GuildRoleDelete],
			gateway.EventTypeMessageCreate:             decodeAs[cord.MessageCreate],
			gateway.EventTypeMessageUpdate:             decodeAs[cord.MessageUpdate],
			gateway.EventTypeMessageDelete:             decodeAs[cord.MessageDelete],
			gateway.EventTypeMessageDeleteBulk:         decodeAs[cord.MessageDeleteBulk],
			gateway.EventTypePresenceUpdate:            decodeAs[cord.PresenceUpdate],
			gateway.EventTypeStageInstanceCreate:       decodeAs[cord.StageInstanceCreate],
			gateway.EventTypeStageInstanceUpdate:       decodeAs[cord.StageInstanceUpdate],
			gateway.EventTypeStageInstanceDelete:       decodeAs[cord.StageInstanceDelete],
			gateway.EventTypeGuildScheduledEventCreate: decodeAs[cord.GuildScheduledEventCreate],
			gateway.EventTypeGuildScheduledEventUpdate: decodeAs[cord.GuildScheduledEventUpdate],
			gateway.EventTypeGuildScheduledEventDelete: decodeAs[cord.GuildScheduledEventDelete],
		},
	}
	for _, option := range options {
		option(&decoder)
	}

	return decoder
}

// Supports reports whether dispatchType is decoded into an event.
func (d DefaultDecoder) Supports(dispatchType gateway.EventType) bool {
	_, ok := d.payloads[dispatchType]

	return ok
}

// Decode converts a gateway dispatch into a cord event.
func (d DefaultDecoder) Decode(_ context.Context, dispatch Dispatch) (*cord.Event, error) {
	decode, ok := d.payloads[dispatch.Type]
	if !ok {
		return nil, nil
	}
	if len(dispatch.Data) == 0 {
		return nil, fmt.Errorf("decode dispatch %s: empty data", dispatch.Type)
	}

	payload, err := decode(dispatch.Data)
	if err != nil {
		return nil, fmt.Errorf("decode dispatch %s: %w", dispatch.Type, err)
	}

	event := cord.NewEvent(d.newID(), dispatch.ReceivedAt, cord.EventSource{Platform: DriverPlatform}, payload)
	event.ShardID = dispatch.ShardID
	event.Sequence = dispatch.Sequence

	return event, nil
}

func decodeAs[T cord.Payload](data json.RawMessage) (cord.Payload, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal %T: %w", payload, err)
	}

	return payload, nil
}
