package cache

import (
	"fmt"

	"ex-cordcache/pkg/cord"

	"github.com/disgoorg/snowflake/v2"
)

// ApplyEvent validates an envelope and applies its payload.
func (c *Cache) ApplyEvent(event *cord.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("apply event: %w", err)
	}

	return c.Apply(event.Payload)
}

// Apply folds one dispatch payload into the cache.
//
// Handlers never fail: missing parents resolve to nothing and patches for
// unknown entities are dropped. The only error is ErrUnsupportedPayload for a
// nil or foreign payload.
func (c *Cache) Apply(payload cord.Payload) error {
	switch p := payload.(type) {
	case cord.GuildCreate:
		c.guildCreate(p)
	case cord.GuildUpdate:
		c.guilds.upsert(p.ID, p.Guild)
	case cord.GuildDelete:
		c.guildDelete(p.ID)
	case cord.ChannelCreate:
		c.channelCreate(p.Channel)
	case cord.ChannelUpdate:
		c.channels.upsert(p.ID, p.Channel)
	case cord.ChannelDelete:
		c.removeChannel(p.ID, p.Channel)
	case cord.ThreadCreate:
		c.threadCreate(p.Channel)
	case cord.ThreadUpdate:
		c.channels.upsert(p.ID, p.Channel)
	case cord.ThreadDelete:
		c.removeChannel(p.ID, p.Channel)
	case cord.ThreadMemberUpdate:
		c.threadMemberUpdate(p.ThreadMember)
	case cord.ThreadMembersUpdate:
		c.threadMembersUpdate(p)
	case cord.GuildBanAdd:
		c.banAdd(p.GuildID, p.User)
	case cord.GuildBanRemove:
		c.banRemove(p.GuildID, p.User)
	case cord.GuildMemberAdd:
		c.memberAdd(p.GuildID, p.Member)
	case cord.GuildMemberRemove:
		c.memberRemove(p.GuildID, p.User.ID)
	case cord.GuildMemberUpdate:
		c.memberUpdate(p.GuildID, p.Member)
	case cord.GuildMembersChunk:
		c.membersChunk(p)
	case cord.GuildStickersUpdate:
		c.stickersUpdate(p.GuildID, p.Stickers)
	case cord.GuildEmojisUpdate:
		c.emojisUpdate(p.GuildID, p.Emojis)
	case cord.GuildRoleCreate:
		c.roleUpsert(p.GuildID, p.Role)
	case cord.GuildRoleUpdate:
		c.roleUpsert(p.GuildID, p.Role)
	case cord.GuildRoleDelete:
		c.roleDelete(p.GuildID, p.RoleID)
	case cord.MessageCreate:
		stored := c.messages.upsert(p.ID, p.Message)
		c.channelMessages.add(stored.ChannelID, stored.ID)
		c.syncPin(stored)
	case cord.MessageUpdate:
		if updated, ok := patch(c.messages, p.ID, p.PartialMessage, patchMessage); ok {
			c.syncPin(updated)
		}
	case cord.MessageDelete:
		c.messageDelete(p.ChannelID, p.ID)
	case cord.MessageDeleteBulk:
		for _, id := range p.IDs {
			c.messageDelete(p.ChannelID, id)
		}
	case cord.PresenceUpdate:
		c.presenceUpdate(p.Presence)
	case cord.StageInstanceCreate:
		c.stageInstanceUpsert(p.StageInstance)
	case cord.StageInstanceUpdate:
		c.stageInstanceUpsert(p.StageInstance)
	case cord.StageInstanceDelete:
		c.stageInstanceDelete(p.StageInstance)
	case cord.GuildScheduledEventCreate:
		c.scheduledEventUpsert(p.ScheduledEvent)
	case cord.GuildScheduledEventUpdate:
		c.scheduledEventUpsert(p.ScheduledEvent)
	case cord.GuildScheduledEventDelete:
		c.scheduledEventDelete(p.ScheduledEvent)
	default:
		return fmt.Errorf("apply %T: %w", payload, cord.ErrUnsupportedPayload)
	}

	return nil
}

func (c *Cache) guildCreate(p cord.GuildCreate) {
	guildID := p.ID
	c.guilds.upsert(guildID, p.Guild)

	for _, member := range p.Members {
		c.memberAdd(guildID, member)
	}
	for _, channel := range p.Channels {
		channel.GuildID = &guildID
		c.channelCreate(channel)
	}
	for _, thread := range p.Threads {
		thread.GuildID = &guildID
		c.threadCreate(thread)
	}
	for _, role := range p.Roles {
		c.roleUpsert(guildID, role)
	}
	for _, presence := range p.Presences {
		c.upsertPresence(guildID, presence)
	}
	for _, stage := range p.StageInstances {
		stage.GuildID = coalesceID(stage.GuildID, guildID)
		c.stageInstanceUpsert(stage)
	}
	for _, event := range p.ScheduledEvents {
		event.GuildID = coalesceID(event.GuildID, guildID)
		c.scheduledEventUpsert(event)
	}
	c.emojisUpdate(guildID, p.Emojis)
	c.stickersUpdate(guildID, p.Stickers)
}

// guildDelete removes the guild and every entity reachable from its indices.
func (c *Cache) guildDelete(guildID snowflake.ID) {
	c.guilds.remove(guildID)

	for _, channelID := range c.guildChannels.drop(guildID) {
		c.removeChannel(channelID, cord.Channel{ID: channelID})
	}
	for _, roleID := range c.guildRoles.drop(guildID) {
		c.roles.remove(roleID)
	}
	for _, userID := range c.guildPresences.drop(guildID) {
		c.presences.remove(cord.MemberKey{GuildID: guildID, UserID: userID})
	}
	memberIDs := c.guildMembers.drop(guildID)
	for _, userID := range memberIDs {
		c.members.remove(cord.MemberKey{GuildID: guildID, UserID: userID})
	}
	for _, userID := range memberIDs {
		c.evictUserIfOrphaned(userID)
	}
	for _, emojiID := range c.guildEmojis.drop(guildID) {
		c.emojis.remove(emojiID)
	}
	for _, stickerID := range c.guildStickers.drop(guildID) {
		c.stickers.remove(stickerID)
	}
	for _, stageID := range c.guildStageInstances.drop(guildID) {
		c.stageInstances.remove(stageID)
	}
	for _, eventID := range c.guildScheduledEvents.drop(guildID) {
		c.scheduledEvents.remove(eventID)
	}
	for _, userID := range c.guildBans.drop(guildID) {
		c.bans.remove(cord.MemberKey{GuildID: guildID, UserID: userID})
	}
}

func (c *Cache) channelCreate(channel cord.Channel) {
	stored := c.channels.upsert(channel.ID, channel)
	if stored.IsPrivate() || stored.GuildID == nil {
		return
	}
	c.guildChannels.add(*stored.GuildID, stored.ID)
}

// threadCreate indexes a thread under its guild and under its parent channel.
func (c *Cache) threadCreate(thread cord.Channel) {
	stored := c.channels.upsert(thread.ID, thread)
	if stored.GuildID != nil {
		c.guildChannels.add(*stored.GuildID, stored.ID)
	}
	if stored.ParentID != nil {
		c.channelThreads.add(*stored.ParentID, stored.ID)
	}
}

// removeChannel deletes a channel or thread along with its threads, cached
// messages and thread members. hint supplies guild and parent ids when the
// channel is not cached.
func (c *Cache) removeChannel(channelID snowflake.ID, hint cord.Channel) {
	stored, _ := c.channels.Get(channelID)
	c.channels.remove(channelID)

	if guildID := coalescePtr(stored.GuildID, hint.GuildID); guildID != nil {
		c.guildChannels.remove(*guildID, channelID)
	}
	if parentID := coalescePtr(stored.ParentID, hint.ParentID); parentID != nil {
		c.channelThreads.remove(*parentID, channelID)
	}
	for _, threadID := range c.channelThreads.drop(channelID) {
		c.removeChannel(threadID, cord.Channel{ID: threadID, GuildID: stored.GuildID})
	}
	c.channelPins.drop(channelID)
	for _, messageID := range c.channelMessages.drop(channelID) {
		c.messages.remove(messageID)
	}
	for _, userID := range c.threadMemberIndex.drop(channelID) {
		c.threadMembers.remove(cord.ThreadMemberKey{ThreadID: channelID, UserID: userID})
	}
}

func (c *Cache) threadMemberUpdate(member cord.ThreadMember) {
	if member.ID == nil || member.UserID == nil {
		return
	}
	c.threadMembers.upsert(cord.ThreadMemberKey{ThreadID: *member.ID, UserID: *member.UserID}, member)
	c.threadMemberIndex.add(*member.ID, *member.UserID)
}

// threadMembersUpdate stores added members as delivered, then drops removed
// ones.
func (c *Cache) threadMembersUpdate(p cord.ThreadMembersUpdate) {
	threadID := p.ID
	for _, member := range p.AddedMembers {
		if member.UserID == nil {
			continue
		}
		member.ID = &threadID
		c.threadMembers.set(cord.ThreadMemberKey{ThreadID: threadID, UserID: *member.UserID}, member)
		c.threadMemberIndex.add(threadID, *member.UserID)
	}
	for _, userID := range p.RemovedMemberIDs {
		c.threadMembers.remove(cord.ThreadMemberKey{ThreadID: threadID, UserID: userID})
		c.threadMemberIndex.remove(threadID, userID)
	}
}

func (c *Cache) banAdd(guildID snowflake.ID, user cord.User) {
	c.users.upsert(user.ID, user)
	c.bans.set(cord.MemberKey{GuildID: guildID, UserID: user.ID}, cord.Ban{GuildID: guildID, UserID: user.ID})
	c.guildBans.add(guildID, user.ID)
}

// banRemove lifts the ban but keeps the user.
func (c *Cache) banRemove(guildID snowflake.ID, user cord.User) {
	c.bans.remove(cord.MemberKey{GuildID: guildID, UserID: user.ID})
	c.guildBans.remove(guildID, user.ID)
	c.users.upsert(user.ID, user)
}

func (c *Cache) memberAdd(guildID snowflake.ID, member cord.Member) {
	sparse, ok := member.ToSparse(guildID)
	if !ok {
		return
	}
	c.members.upsert(sparse.Key(), sparse)
	c.users.upsert(member.User.ID, *member.User)
	c.guildMembers.add(guildID, sparse.UserID)
}

// memberRemove drops the member and its presence. The user goes too once no
// guild lists them as a member.
func (c *Cache) memberRemove(guildID, userID snowflake.ID) {
	key := cord.MemberKey{GuildID: guildID, UserID: userID}
	c.members.remove(key)
	c.presences.remove(key)
	c.guildMembers.remove(guildID, userID)
	c.guildPresences.remove(guildID, userID)
	c.evictUserIfOrphaned(userID)
}

func (c *Cache) evictUserIfOrphaned(userID snowflake.ID) {
	if c.guildMembers.Contains(userID) {
		return
	}
	c.users.remove(userID)
}

func (c *Cache) memberUpdate(guildID snowflake.ID, member cord.Member) {
	if member.User == nil {
		return
	}
	key := cord.MemberKey{GuildID: guildID, UserID: member.User.ID}
	if _, ok := patch(c.members, key, member, patchMember); ok {
		c.users.upsert(member.User.ID, *member.User)
	}
}

func (c *Cache) membersChunk(p cord.GuildMembersChunk) {
	for _, member := range p.Members {
		c.memberAdd(p.GuildID, member)
	}
	for _, presence := range p.Presences {
		c.upsertPresence(p.GuildID, presence)
	}
}

func (c *Cache) upsertPresence(guildID snowflake.ID, presence cord.Presence) {
	presence.GuildID = &guildID
	c.presences.upsert(cord.MemberKey{GuildID: guildID, UserID: presence.User.ID}, presence)
	c.guildPresences.add(guildID, presence.User.ID)
}

// presenceUpdate keeps presences only for cached members.
func (c *Cache) presenceUpdate(presence cord.Presence) {
	if presence.GuildID == nil {
		return
	}
	guildID := *presence.GuildID
	if !c.members.Has(cord.MemberKey{GuildID: guildID, UserID: presence.User.ID}) {
		return
	}
	c.upsertPresence(guildID, presence)
}

// emojisUpdate merges the listed custom emojis into the guild. Unicode emojis
// have no id and are skipped.
func (c *Cache) emojisUpdate(guildID snowflake.ID, emojis []cord.Emoji) {
	for _, emoji := range emojis {
		if emoji.ID == nil {
			continue
		}
		c.emojis.upsert(*emoji.ID, emoji)
		c.guildEmojis.add(guildID, *emoji.ID)
	}
}

func (c *Cache) stickersUpdate(guildID snowflake.ID, stickers []cord.Sticker) {
	for _, sticker := range stickers {
		if sticker.GuildID == nil {
			sticker.GuildID = &guildID
		}
		c.stickers.upsert(sticker.ID, sticker)
		c.guildStickers.add(guildID, sticker.ID)
	}
}

func (c *Cache) roleUpsert(guildID snowflake.ID, role cord.Role) {
	c.roles.upsert(role.ID, role)
	c.guildRoles.add(guildID, role.ID)
}

// roleDelete removes the role and strips it from every member of the guild.
func (c *Cache) roleDelete(guildID, roleID snowflake.ID) {
	c.roles.remove(roleID)
	c.guildRoles.remove(guildID, roleID)

	for _, userID := range c.guildMembers.Children(guildID) {
		key := cord.MemberKey{GuildID: guildID, UserID: userID}
		member, ok := c.members.Get(key)
		if !ok || !member.HasRole(roleID) {
			continue
		}
		member.Roles = withoutRole(member.Roles, roleID)
		c.members.set(key, member)
	}
}

// syncPin makes the channel pins index follow the message's pinned flag.
func (c *Cache) syncPin(message cord.Message) {
	if message.Pinned {
		c.channelPins.add(message.ChannelID, message.ID)
		return
	}
	c.channelPins.remove(message.ChannelID, message.ID)
}

func (c *Cache) messageDelete(channelID, messageID snowflake.ID) {
	c.messages.remove(messageID)
	c.channelPins.remove(channelID, messageID)
	c.channelMessages.remove(channelID, messageID)
}

func (c *Cache) stageInstanceUpsert(stage cord.StageInstance) {
	stored := c.stageInstances.upsert(stage.ID, stage)
	c.guildStageInstances.add(stored.GuildID, stored.ID)
}

func (c *Cache) stageInstanceDelete(stage cord.StageInstance) {
	if stored, ok := c.stageInstances.Get(stage.ID); ok {
		stage.GuildID = coalesceID(stage.GuildID, stored.GuildID)
	}
	c.stageInstances.remove(stage.ID)
	c.guildStageInstances.remove(stage.GuildID, stage.ID)
}

func (c *Cache) scheduledEventUpsert(event cord.ScheduledEvent) {
	stored := c.scheduledEvents.upsert(event.ID, event)
	c.guildScheduledEvents.add(stored.GuildID, stored.ID)
}

func (c *Cache) scheduledEventDelete(event cord.ScheduledEvent) {
	if stored, ok := c.scheduledEvents.Get(event.ID); ok {
		event.GuildID = coalesceID(event.GuildID, stored.GuildID)
	}
	c.scheduledEvents.remove(event.ID)
	c.guildScheduledEvents.remove(event.GuildID, event.ID)
}
