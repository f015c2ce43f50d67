package cord

import "github.com/disgoorg/snowflake/v2"

// Payload is the closed set of typed dispatch bodies. Only types declared in
// this package implement it.
type Payload interface {
	// Kind returns the dispatch kind carried by this payload.
	Kind() EventKind
	payload()
}

// GuildCreate carries a full guild with its embedded collections.
type GuildCreate struct {
	Guild
	Roles           []Role           `json:"roles"`
	Emojis          []Emoji          `json:"emojis"`
	Stickers        []Sticker        `json:"stickers"`
	Channels        []Channel        `json:"channels"`
	Threads         []Channel        `json:"threads"`
	Members         []Member         `json:"members"`
	Presences       []Presence       `json:"presences"`
	StageInstances  []StageInstance  `json:"stage_instances"`
	ScheduledEvents []ScheduledEvent `json:"guild_scheduled_events"`
}

// GuildUpdate carries changed guild settings.
type GuildUpdate struct {
	Guild
}

// GuildDelete reports that the bot left a guild or the guild became unavailable.
type GuildDelete struct {
	ID          snowflake.ID `json:"id"`
	Unavailable bool         `json:"unavailable"`
}

// ChannelCreate carries a new channel.
type ChannelCreate struct {
	Channel
}

// ChannelUpdate carries a changed channel.
type ChannelUpdate struct {
	Channel
}

// ChannelDelete carries a removed channel.
type ChannelDelete struct {
	Channel
}

// ThreadCreate carries a new thread.
type ThreadCreate struct {
	Channel
}

// ThreadUpdate carries a changed thread.
type ThreadUpdate struct {
	Channel
}

// ThreadDelete carries a removed thread.
type ThreadDelete struct {
	Channel
}

// ThreadMemberUpdate carries the current user's thread membership.
type ThreadMemberUpdate struct {
	ThreadMember
}

// ThreadMembersUpdate carries thread membership additions and removals.
type ThreadMembersUpdate struct {
	ID               snowflake.ID   `json:"id"`
	GuildID          snowflake.ID   `json:"guild_id"`
	MemberCount      int            `json:"member_count"`
	AddedMembers     []ThreadMember `json:"added_members"`
	RemovedMemberIDs []snowflake.ID `json:"removed_member_ids"`
}

// GuildBanAdd reports a new ban.
type GuildBanAdd struct {
	GuildID snowflake.ID `json:"guild_id"`
	User    User         `json:"user"`
}

// GuildBanRemove reports a lifted ban.
type GuildBanRemove struct {
	GuildID snowflake.ID `json:"guild_id"`
	User    User         `json:"user"`
}

// GuildMemberAdd reports a user joining a guild.
type GuildMemberAdd struct {
	GuildID snowflake.ID `json:"guild_id"`
	Member
}

// GuildMemberRemove reports a user leaving a guild.
type GuildMemberRemove struct {
	GuildID snowflake.ID `json:"guild_id"`
	User    User         `json:"user"`
}

// GuildMemberUpdate carries a member patch. Fields left nil are unchanged.
type GuildMemberUpdate struct {
	GuildID snowflake.ID `json:"guild_id"`
	Member
}

// GuildMembersChunk answers a request-guild-members call.
type GuildMembersChunk struct {
	GuildID    snowflake.ID   `json:"guild_id"`
	Members    []Member       `json:"members"`
	Presences  []Presence     `json:"presences"`
	ChunkIndex int            `json:"chunk_index"`
	ChunkCount int            `json:"chunk_count"`
	NotFound   []snowflake.ID `json:"not_found"`
}

// GuildStickersUpdate carries the guild's sticker list.
type GuildStickersUpdate struct {
	GuildID  snowflake.ID `json:"guild_id"`
	Stickers []Sticker    `json:"stickers"`
}

// GuildEmojisUpdate carries the guild's emoji list.
type GuildEmojisUpdate struct {
	GuildID snowflake.ID `json:"guild_id"`
	Emojis  []Emoji      `json:"emojis"`
}

// GuildRoleCreate carries a new role.
type GuildRoleCreate struct {
	GuildID snowflake.ID `json:"guild_id"`
	Role    Role         `json:"role"`
}

// GuildRoleUpdate carries a changed role.
type GuildRoleUpdate struct {
	GuildID snowflake.ID `json:"guild_id"`
	Role    Role         `json:"role"`
}

// GuildRoleDelete reports a removed role.
type GuildRoleDelete struct {
	GuildID snowflake.ID `json:"guild_id"`
	RoleID  snowflake.ID `json:"role_id"`
}

// MessageCreate carries a new message.
type MessageCreate struct {
	Message
}

// MessageUpdate carries a message edit.
type MessageUpdate struct {
	PartialMessage
}

// MessageDelete reports a removed message.
type MessageDelete struct {
	ID        snowflake.ID  `json:"id"`
	ChannelID snowflake.ID  `json:"channel_id"`
	GuildID   *snowflake.ID `json:"guild_id"`
}

// MessageDeleteBulk reports several removed messages in one channel.
type MessageDeleteBulk struct {
	IDs       []snowflake.ID `json:"ids"`
	ChannelID snowflake.ID   `json:"channel_id"`
	GuildID   *snowflake.ID  `json:"guild_id"`
}

// PresenceUpdate carries a user's new presence in one guild.
type PresenceUpdate struct {
	Presence
}

// StageInstanceCreate carries a new stage instance.
type StageInstanceCreate struct {
	StageInstance
}

// StageInstanceUpdate carries a changed stage instance.
type StageInstanceUpdate struct {
	StageInstance
}

// StageInstanceDelete carries a removed stage instance.
type StageInstanceDelete struct {
	StageInstance
}

// GuildScheduledEventCreate carries a new scheduled event.
type GuildScheduledEventCreate struct {
	ScheduledEvent
}

// GuildScheduledEventUpdate carries a changed scheduled event.
type GuildScheduledEventUpdate struct {
	ScheduledEvent
}

// GuildScheduledEventDelete carries a removed scheduled event.
type GuildScheduledEventDelete struct {
	ScheduledEvent
}

func (GuildCreate) Kind() EventKind               { return EventKindGuildCreate }
func (GuildUpdate) Kind() EventKind               { return EventKindGuildUpdate }
func (GuildDelete) Kind() EventKind               { return EventKindGuildDelete }
func (ChannelCreate) Kind() EventKind             { return EventKindChannelCreate }
func (ChannelUpdate) Kind() EventKind             { return EventKindChannelUpdate }
func (ChannelDelete) Kind() EventKind             { return EventKindChannelDelete }
func (ThreadCreate) Kind() EventKind              { return EventKindThreadCreate }
func (ThreadUpdate) Kind() EventKind              { return EventKindThreadUpdate }
func (ThreadDelete) Kind() EventKind              { return EventKindThreadDelete }
func (ThreadMemberUpdate) Kind() EventKind        { return EventKindThreadMemberUpdate }
func (ThreadMembersUpdate) Kind() EventKind       { return EventKindThreadMembersUpdate }
func (GuildBanAdd) Kind() EventKind               { return EventKindGuildBanAdd }
func (GuildBanRemove) Kind() EventKind            { return EventKindGuildBanRemove }
func (GuildMemberAdd) Kind() EventKind            { return EventKindGuildMemberAdd }
func (GuildMemberRemove) Kind() EventKind         { return EventKindGuildMemberRemove }
func (GuildMemberUpdate) Kind() EventKind         { return EventKindGuildMemberUpdate }
func (GuildMembersChunk) Kind() EventKind         { return EventKindGuildMembersChunk }
func (GuildStickersUpdate) Kind() EventKind       { return EventKindGuildStickersUpdate }
func (GuildEmojisUpdate) Kind() EventKind         { return EventKindGuildEmojisUpdate }
func (GuildRoleCreate) Kind() EventKind           { return EventKindGuildRoleCreate }
func (GuildRoleUpdate) Kind() EventKind           { return EventKindGuildRoleUpdate }
func (GuildRoleDelete) Kind() EventKind           { return EventKindGuildRoleDelete }
func (MessageCreate) Kind() EventKind             { return EventKindMessageCreate }
func (MessageUpdate) Kind() EventKind             { return EventKindMessageUpdate }
func (MessageDelete) Kind() EventKind             { return EventKindMessageDelete }
func (MessageDeleteBulk) Kind() EventKind         { return EventKindMessageDeleteBulk }
func (PresenceUpdate) Kind() EventKind            { return EventKindPresenceUpdate }
func (StageInstanceCreate) Kind() EventKind       { return EventKindStageInstanceCreate }
func (StageInstanceUpdate) Kind() EventKind       { return EventKindStageInstanceUpdate }
func (StageInstanceDelete) Kind() EventKind       { return EventKindStageInstanceDelete }
func (GuildScheduledEventCreate) Kind() EventKind { return EventKindGuildScheduledEventCreate }
func (GuildScheduledEventUpdate) Kind() EventKind { return EventKindGuildScheduledEventUpdate }
func (GuildScheduledEventDelete) Kind() EventKind { return EventKindGuildScheduledEventDelete }

func (GuildCreate) payload()               {}
func (GuildUpdate) payload()               {}
func (GuildDelete) payload()               {}
func (ChannelCreate) payload()             {}
func (ChannelUpdate) payload()             {}
func (ChannelDelete) payload()             {}
func (ThreadCreate) payload()              {}
func (ThreadUpdate) payload()              {}
func (ThreadDelete) payload()              {}
func (ThreadMemberUpdate) payload()        {}
func (ThreadMembersUpdate) payload()       {}
func (GuildBanAdd) payload()               {}
func (GuildBanRemove) payload()            {}
func (GuildMemberAdd) payload()            {}
func (GuildMemberRemove) payload()         {}
func (GuildMemberUpdate) payload()         {}
func (GuildMembersChunk) payload()         {}
func (GuildStickersUpdate) payload()       {}
func (GuildEmojisUpdate) payload()         {}
func (GuildRoleCreate) payload()           {}
func (GuildRoleUpdate) payload()           {}
func (GuildRoleDelete) payload()           {}
func (MessageCreate) payload()             {}
func (MessageUpdate) payload()             {}
func (MessageDelete) payload()             {}
func (MessageDeleteBulk) payload()         {}
func (PresenceUpdate) payload()            {}
func (StageInstanceCreate) payload()       {}
func (StageInstanceUpdate) payload()       {}
func (StageInstanceDelete) payload()       {}
func (GuildScheduledEventCreate) payload() {}
func (GuildScheduledEventUpdate) payload() {}
func (GuildScheduledEventDelete) payload() {}
