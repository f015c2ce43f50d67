package cache

import (
	"ex-cordcache/pkg/cord"

	"github.com/disgoorg/snowflake/v2"
)

// Option configures a Cache.
type Option func(*config)

type config struct {
	messageLimit int
}

// WithMessageLimit bounds the message table to limit entries, evicting the
// least recently used message. Zero or a negative limit keeps every message.
func WithMessageLimit(limit int) Option {
	return func(cfg *config) {
		cfg.messageLimit = limit
	}
}

// Cache is the read model of every guild seen by one bot account.
type Cache struct {
	guilds          *Table[snowflake.ID, cord.Guild]
	channels        *Table[snowflake.ID, cord.Channel]
	roles           *Table[snowflake.ID, cord.Role]
	users           *Table[snowflake.ID, cord.User]
	members         *Table[cord.MemberKey, cord.SparseMember]
	presences       *Table[cord.MemberKey, cord.Presence]
	threadMembers   *Table[cord.ThreadMemberKey, cord.ThreadMember]
	bans            *Table[cord.MemberKey, cord.Ban]
	emojis          *Table[snowflake.ID, cord.Emoji]
	stickers        *Table[snowflake.ID, cord.Sticker]
	stageInstances  *Table[snowflake.ID, cord.StageInstance]
	scheduledEvents *Table[snowflake.ID, cord.ScheduledEvent]
	messages        *Table[snowflake.ID, cord.Message]

	guildChannels        *Index[snowflake.ID, snowflake.ID]
	guildRoles           *Index[snowflake.ID, snowflake.ID]
	guildMembers         *Index[snowflake.ID, snowflake.ID]
	guildPresences       *Index[snowflake.ID, snowflake.ID]
	guildEmojis          *Index[snowflake.ID, snowflake.ID]
	guildStickers        *Index[snowflake.ID, snowflake.ID]
	guildStageInstances  *Index[snowflake.ID, snowflake.ID]
	guildScheduledEvents *Index[snowflake.ID, snowflake.ID]
	guildBans            *Index[snowflake.ID, snowflake.ID]
	channelThreads       *Index[snowflake.ID, snowflake.ID]
	threadMemberIndex    *Index[snowflake.ID, snowflake.ID]
	channelPins          *Index[snowflake.ID, snowflake.ID]
	channelMessages      *Index[snowflake.ID, snowflake.ID]
}

// New creates an empty cache.
func New(options ...Option) *Cache {
	cfg := config{}
	for _, option := range options {
		option(&cfg)
	}

	c := &Cache{
		guilds:          newTable[snowflake.ID](mergeGuild),
		channels:        newTable[snowflake.ID](mergeChannel),
		roles:           newTable[snowflake.ID](mergeRole),
		users:           newTable[snowflake.ID](mergeUser),
		members:         newTable[cord.MemberKey](mergeMember),
		presences:       newTable[cord.MemberKey](mergePresence),
		threadMembers:   newTable[cord.ThreadMemberKey](mergeThreadMember),
		bans:            newTable[cord.MemberKey, cord.Ban](nil),
		emojis:          newTable[snowflake.ID](mergeEmoji),
		stickers:        newTable[snowflake.ID](mergeSticker),
		stageInstances:  newTable[snowflake.ID](mergeStageInstance),
		scheduledEvents: newTable[snowflake.ID](mergeScheduledEvent),
		messages:        newTable[snowflake.ID](mergeMessage),

		guildChannels:        newIndex[snowflake.ID, snowflake.ID](),
		guildRoles:           newIndex[snowflake.ID, snowflake.ID](),
		guildMembers:         newIndex[snowflake.ID, snowflake.ID](),
		guildPresences:       newIndex[snowflake.ID, snowflake.ID](),
		guildEmojis:          newIndex[snowflake.ID, snowflake.ID](),
		guildStickers:        newIndex[snowflake.ID, snowflake.ID](),
		guildStageInstances:  newIndex[snowflake.ID, snowflake.ID](),
		guildScheduledEvents: newIndex[snowflake.ID, snowflake.ID](),
		guildBans:            newIndex[snowflake.ID, snowflake.ID](),
		channelThreads:       newIndex[snowflake.ID, snowflake.ID](),
		threadMemberIndex:    newIndex[snowflake.ID, snowflake.ID](),
		channelPins:          newIndex[snowflake.ID, snowflake.ID](),
		channelMessages:      newIndex[snowflake.ID, snowflake.ID](),
	}
	if cfg.messageLimit > 0 {
		if bounded, err := newLRUStore(cfg.messageLimit, c.onMessageEvicted); err == nil {
			c.messages.store = bounded
		}
	}

	return c
}

// onMessageEvicted keeps the channel indexes free of messages that left the table.
func (c *Cache) onMessageEvicted(id snowflake.ID, message cord.Message) {
	c.channelPins.remove(message.ChannelID, id)
	c.channelMessages.remove(message.ChannelID, id)
}

// Guilds returns the guild table.
func (c *Cache) Guilds() *Table[snowflake.ID, cord.Guild] { return c.guilds }

// Channels returns the channel table, threads included.
func (c *Cache) Channels() *Table[snowflake.ID, cord.Channel] { return c.channels }

// Roles returns the role table.
func (c *Cache) Roles() *Table[snowflake.ID, cord.Role] { return c.roles }

// Users returns the user table.
func (c *Cache) Users() *Table[snowflake.ID, cord.User] { return c.users }

// Members returns the member table.
func (c *Cache) Members() *Table[cord.MemberKey, cord.SparseMember] { return c.members }

// Presences returns the presence table.
func (c *Cache) Presences() *Table[cord.MemberKey, cord.Presence] { return c.presences }

// ThreadMembers returns the thread member table.
func (c *Cache) ThreadMembers() *Table[cord.ThreadMemberKey, cord.ThreadMember] {
	return c.threadMembers
}

// Bans returns the ban table.
func (c *Cache) Bans() *Table[cord.MemberKey, cord.Ban] { return c.bans }

// Emojis returns the emoji table.
func (c *Cache) Emojis() *Table[snowflake.ID, cord.Emoji] { return c.emojis }

// Stickers returns the sticker table.
func (c *Cache) Stickers() *Table[snowflake.ID, cord.Sticker] { return c.stickers }

// StageInstances returns the stage instance table.
func (c *Cache) StageInstances() *Table[snowflake.ID, cord.StageInstance] { return c.stageInstances }

// ScheduledEvents returns the scheduled event table.
func (c *Cache) ScheduledEvents() *Table[snowflake.ID, cord.ScheduledEvent] {
	return c.scheduledEvents
}

// Messages returns the message table.
func (c *Cache) Messages() *Table[snowflake.ID, cord.Message] { return c.messages }

// GuildChannels returns the guild to channel index. Threads are listed too.
func (c *Cache) GuildChannels() *Index[snowflake.ID, snowflake.ID] { return c.guildChannels }

// GuildRoles returns the guild to role index.
func (c *Cache) GuildRoles() *Index[snowflake.ID, snowflake.ID] { return c.guildRoles }

// GuildMembers returns the guild to member user id index.
func (c *Cache) GuildMembers() *Index[snowflake.ID, snowflake.ID] { return c.guildMembers }

// GuildPresences returns the guild to presence user id index.
func (c *Cache) GuildPresences() *Index[snowflake.ID, snowflake.ID] { return c.guildPresences }

// GuildEmojis returns the guild to emoji index.
func (c *Cache) GuildEmojis() *Index[snowflake.ID, snowflake.ID] { return c.guildEmojis }

// GuildStickers returns the guild to sticker index.
func (c *Cache) GuildStickers() *Index[snowflake.ID, snowflake.ID] { return c.guildStickers }

// GuildStageInstances returns the guild to stage instance index.
func (c *Cache) GuildStageInstances() *Index[snowflake.ID, snowflake.ID] {
	return c.guildStageInstances
}

// GuildScheduledEvents returns the guild to scheduled event index.
func (c *Cache) GuildScheduledEvents() *Index[snowflake.ID, snowflake.ID] {
	return c.guildScheduledEvents
}

// GuildBans returns the guild to banned user id index.
func (c *Cache) GuildBans() *Index[snowflake.ID, snowflake.ID] { return c.guildBans }

// ChannelThreads returns the parent channel to thread index.
func (c *Cache) ChannelThreads() *Index[snowflake.ID, snowflake.ID] { return c.channelThreads }

// ThreadMemberIndex returns the thread to member user id index.
func (c *Cache) ThreadMemberIndex() *Index[snowflake.ID, snowflake.ID] { return c.threadMemberIndex }

// ChannelPins returns the channel to pinned message index.
func (c *Cache) ChannelPins() *Index[snowflake.ID, snowflake.ID] { return c.channelPins }

// ChannelMessages returns the channel to message index, pinned or not.
func (c *Cache) ChannelMessages() *Index[snowflake.ID, snowflake.ID] { return c.channelMessages }

// Guild returns one guild.
func (c *Cache) Guild(id snowflake.ID) (cord.Guild, bool) { return c.guilds.Get(id) }

// Channel returns one channel or thread.
func (c *Cache) Channel(id snowflake.ID) (cord.Channel, bool) { return c.channels.Get(id) }

// Role returns one role.
func (c *Cache) Role(id snowflake.ID) (cord.Role, bool) { return c.roles.Get(id) }

// User returns one user.
func (c *Cache) User(id snowflake.ID) (cord.User, bool) { return c.users.Get(id) }

// Member returns the member record of userID in guildID.
func (c *Cache) Member(guildID, userID snowflake.ID) (cord.SparseMember, bool) {
	return c.members.Get(cord.MemberKey{GuildID: guildID, UserID: userID})
}

// Presence returns the presence of userID in guildID.
func (c *Cache) Presence(guildID, userID snowflake.ID) (cord.Presence, bool) {
	return c.presences.Get(cord.MemberKey{GuildID: guildID, UserID: userID})
}

// ThreadMember returns the membership of userID in threadID.
func (c *Cache) ThreadMember(threadID, userID snowflake.ID) (cord.ThreadMember, bool) {
	return c.threadMembers.Get(cord.ThreadMemberKey{ThreadID: threadID, UserID: userID})
}

// Ban returns the ban of userID in guildID.
func (c *Cache) Ban(guildID, userID snowflake.ID) (cord.Ban, bool) {
	return c.bans.Get(cord.MemberKey{GuildID: guildID, UserID: userID})
}

// Emoji returns one custom emoji.
func (c *Cache) Emoji(id snowflake.ID) (cord.Emoji, bool) { return c.emojis.Get(id) }

// Sticker returns one sticker.
func (c *Cache) Sticker(id snowflake.ID) (cord.Sticker, bool) { return c.stickers.Get(id) }

// StageInstance returns one stage instance.
func (c *Cache) StageInstance(id snowflake.ID) (cord.StageInstance, bool) {
	return c.stageInstances.Get(id)
}

// ScheduledEvent returns one scheduled event.
func (c *Cache) ScheduledEvent(id snowflake.ID) (cord.ScheduledEvent, bool) {
	return c.scheduledEvents.Get(id)
}

// Message returns one message.
func (c *Cache) Message(id snowflake.ID) (cord.Message, bool) { return c.messages.Get(id) }

// GuildIDs enumerates every cached guild.
func (c *Cache) GuildIDs() []snowflake.ID { return c.guilds.Keys() }

// UserIDs enumerates every cached user.
func (c *Cache) UserIDs() []snowflake.ID { return c.users.Keys() }

// ResolveChannels iterates the channels and threads of a guild.
func (c *Cache) ResolveChannels(guildID snowflake.ID) *Cursor[snowflake.ID, cord.Channel] {
	return newCursor(c.guildChannels.Children(guildID), c.channels.Get)
}

// ResolveRoles iterates the roles of a guild.
func (c *Cache) ResolveRoles(guildID snowflake.ID) *Cursor[snowflake.ID, cord.Role] {
	return newCursor(c.guildRoles.Children(guildID), c.roles.Get)
}

// ResolveEmojis iterates the custom emojis of a guild.
func (c *Cache) ResolveEmojis(guildID snowflake.ID) *Cursor[snowflake.ID, cord.Emoji] {
	return newCursor(c.guildEmojis.Children(guildID), c.emojis.Get)
}

// ResolveStickers iterates the stickers of a guild.
func (c *Cache) ResolveStickers(guildID snowflake.ID) *Cursor[snowflake.ID, cord.Sticker] {
	return newCursor(c.guildStickers.Children(guildID), c.stickers.Get)
}

// ResolveStageInstances iterates the live stages of a guild.
func (c *Cache) ResolveStageInstances(guildID snowflake.ID) *Cursor[snowflake.ID, cord.StageInstance] {
	return newCursor(c.guildStageInstances.Children(guildID), c.stageInstances.Get)
}

// ResolveScheduledEvents iterates the scheduled events of a guild.
func (c *Cache) ResolveScheduledEvents(guildID snowflake.ID) *Cursor[snowflake.ID, cord.ScheduledEvent] {
	return newCursor(c.guildScheduledEvents.Children(guildID), c.scheduledEvents.Get)
}

// ResolveMembers iterates the members of a guild.
func (c *Cache) ResolveMembers(guildID snowflake.ID) *Cursor[snowflake.ID, cord.SparseMember] {
	return newCursor(c.guildMembers.Children(guildID), func(userID snowflake.ID) (cord.SparseMember, bool) {
		return c.Member(guildID, userID)
	})
}

// ResolveBans iterates the bans of a guild.
func (c *Cache) ResolveBans(guildID snowflake.ID) *Cursor[snowflake.ID, cord.Ban] {
	return newCursor(c.guildBans.Children(guildID), func(userID snowflake.ID) (cord.Ban, bool) {
		return c.Ban(guildID, userID)
	})
}

// ResolveThreads iterates the threads under a parent channel.
func (c *Cache) ResolveThreads(channelID snowflake.ID) *Cursor[snowflake.ID, cord.Channel] {
	return newCursor(c.channelThreads.Children(channelID), c.channels.Get)
}

// ResolveThreadMembers iterates the members of a thread.
func (c *Cache) ResolveThreadMembers(threadID snowflake.ID) *Cursor[snowflake.ID, cord.ThreadMember] {
	return newCursor(c.threadMemberIndex.Children(threadID), func(userID snowflake.ID) (cord.ThreadMember, bool) {
		return c.ThreadMember(threadID, userID)
	})
}

// ResolvePins iterates the cached pinned messages of a channel.
func (c *Cache) ResolvePins(channelID snowflake.ID) *Cursor[snowflake.ID, cord.Message] {
	return newCursor(c.channelPins.Children(channelID), c.messages.Get)
}

// ResolveMessages iterates the cached messages of a channel.
func (c *Cache) ResolveMessages(channelID snowflake.ID) *Cursor[snowflake.ID, cord.Message] {
	return newCursor(c.channelMessages.Children(channelID), c.messages.Get)
}

// Stats returns the size of every table.
func (c *Cache) Stats() cord.CacheStats {
	return cord.CacheStats{
		Guilds:          c.guilds.Len(),
		Channels:        c.channels.Len(),
		Roles:           c.roles.Len(),
		Users:           c.users.Len(),
		Members:         c.members.Len(),
		Presences:       c.presences.Len(),
		ThreadMembers:   c.threadMembers.Len(),
		Bans:            c.bans.Len(),
		Emojis:          c.emojis.Len(),
		Stickers:        c.stickers.Len(),
		StageInstances:  c.stageInstances.Len(),
		ScheduledEvents: c.scheduledEvents.Len(),
		Messages:        c.messages.Len(),
	}
}

// Reset drops every table and index.
func (c *Cache) Reset() {
	c.guilds.clear()
	c.channels.clear()
	c.roles.clear()
	c.users.clear()
	c.members.clear()
	c.presences.clear()
	c.threadMembers.clear()
	c.bans.clear()
	c.emojis.clear()
	c.stickers.clear()
	c.stageInstances.clear()
	c.scheduledEvents.clear()
	c.messages.clear()

	c.guildChannels.clear()
	c.guildRoles.clear()
	c.guildMembers.clear()
	c.guildPresences.clear()
	c.guildEmojis.clear()
	c.guildStickers.clear()
	c.guildStageInstances.clear()
	c.guildScheduledEvents.clear()
	c.guildBans.clear()
	c.channelThreads.clear()
	c.threadMemberIndex.clear()
	c.channelPins.clear()
	c.channelMessages.clear()
}

// DanglingRef is an indexed child id with no table entry.
type DanglingRef struct {
	Index  string
	Parent snowflake.ID
	Child  snowflake.ID
}

// CheckIndexes lists every index entry whose child is missing from its table.
// A consistent cache returns nil.
func (c *Cache) CheckIndexes() []DanglingRef {
	var dangling []DanglingRef
	check := func(name string, index *Index[snowflake.ID, snowflake.ID], exists func(parent, child snowflake.ID) bool) {
		for _, parent := range index.Parents() {
			for _, child := range index.Children(parent) {
				if !exists(parent, child) {
					dangling = append(dangling, DanglingRef{Index: name, Parent: parent, Child: child})
				}
			}
		}
	}
	byID := func(has func(snowflake.ID) bool) func(snowflake.ID, snowflake.ID) bool {
		return func(_, child snowflake.ID) bool { return has(child) }
	}
	byMember := func(table interface{ Has(cord.MemberKey) bool }) func(snowflake.ID, snowflake.ID) bool {
		return func(guildID, userID snowflake.ID) bool {
			return table.Has(cord.MemberKey{GuildID: guildID, UserID: userID})
		}
	}

	check("guild_channels", c.guildChannels, byID(c.channels.Has))
	check("guild_roles", c.guildRoles, byID(c.roles.Has))
	check("guild_members", c.guildMembers, byMember(c.members))
	check("guild_presences", c.guildPresences, byMember(c.presences))
	check("guild_emojis", c.guildEmojis, byID(c.emojis.Has))
	check("guild_stickers", c.guildStickers, byID(c.stickers.Has))
	check("guild_stage_instances", c.guildStageInstances, byID(c.stageInstances.Has))
	check("guild_scheduled_events", c.guildScheduledEvents, byID(c.scheduledEvents.Has))
	check("guild_bans", c.guildBans, byMember(c.bans))
	check("channel_threads", c.channelThreads, byID(c.channels.Has))
	check("thread_members", c.threadMemberIndex, func(threadID, userID snowflake.ID) bool {
		return c.threadMembers.Has(cord.ThreadMemberKey{ThreadID: threadID, UserID: userID})
	})
	check("channel_pins", c.channelPins, byID(c.messages.Has))
	check("channel_messages", c.channelMessages, byID(c.messages.Has))

	return dangling
}
