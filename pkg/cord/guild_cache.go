package cord

import "github.com/disgoorg/snowflake/v2"

// CacheStats reports the number of entries held by each cache table.
type CacheStats struct {
	Guilds          int
	Channels        int
	Roles           int
	Users           int
	Members         int
	Presences       int
	ThreadMembers   int
	Bans            int
	Emojis          int
	Stickers        int
	StageInstances  int
	ScheduledEvents int
	Messages        int
}

// ByTable returns the stats keyed by table name.
func (s CacheStats) ByTable() map[string]int {
	return map[string]int{
		"guilds":           s.Guilds,
		"channels":         s.Channels,
		"roles":            s.Roles,
		"users":            s.Users,
		"members":          s.Members,
		"presences":        s.Presences,
		"thread_members":   s.ThreadMembers,
		"bans":             s.Bans,
		"emojis":           s.Emojis,
		"stickers":         s.Stickers,
		"stage_instances":  s.StageInstances,
		"scheduled_events": s.ScheduledEvents,
		"messages":         s.Messages,
	}
}

// Total returns the number of entries across all tables.
func (s CacheStats) Total() int {
	total := 0
	for _, count := range s.ByTable() {
		total += count
	}

	return total
}

// GuildCache is the concurrency-safe read contract of a guild state cache.
//
// Lookups return copies; list methods materialize the current members of one
// membership index in insertion order.
type GuildCache interface {
	// Guild returns one sparse guild.
	Guild(id snowflake.ID) (Guild, bool)
	// Channel returns one channel or thread.
	Channel(id snowflake.ID) (Channel, bool)
	// Role returns one role.
	Role(id snowflake.ID) (Role, bool)
	// User returns one user.
	User(id snowflake.ID) (User, bool)
	// Member returns one guild member.
	Member(guildID, userID snowflake.ID) (SparseMember, bool)
	// Presence returns one member presence.
	Presence(guildID, userID snowflake.ID) (Presence, bool)
	// Emoji returns one custom emoji.
	Emoji(id snowflake.ID) (Emoji, bool)
	// Sticker returns one sticker.
	Sticker(id snowflake.ID) (Sticker, bool)
	// Message returns one cached message.
	Message(id snowflake.ID) (Message, bool)
	// GuildRoles lists the roles of a guild.
	GuildRoles(guildID snowflake.ID) []Role
	// GuildChannels lists the channels and threads of a guild.
	GuildChannels(guildID snowflake.ID) []Channel
	// GuildEmojis lists the custom emojis of a guild.
	GuildEmojis(guildID snowflake.ID) []Emoji
	// GuildMembers lists the cached members of a guild.
	GuildMembers(guildID snowflake.ID) []SparseMember
	// ChannelThreads lists the threads under a parent channel.
	ChannelThreads(channelID snowflake.ID) []Channel
	// ChannelPins lists the cached pinned messages of a channel.
	ChannelPins(channelID snowflake.ID) []Message
	// Stats reports table sizes.
	Stats() CacheStats
}
