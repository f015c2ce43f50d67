package cache

import (
	"testing"
	"time"

	"ex-cordcache/pkg/cord"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID   snowflake.ID = 100
	otherID   snowflake.ID = 101
	channel1  snowflake.ID = 200
	channel2  snowflake.ID = 201
	threadID  snowflake.ID = 300
	role1     snowflake.ID = 400
	role2     snowflake.ID = 401
	user1     snowflake.ID = 500
	user2     snowflake.ID = 501
	messageID snowflake.ID = 600
)

func ptr[T any](value T) *T {
	return &value
}

func testUser(id snowflake.ID, name string) cord.User {
	return cord.User{ID: id, Username: name}
}

func testMember(id snowflake.ID, roles ...snowflake.ID) cord.Member {
	user := testUser(id, "user")

	return cord.Member{User: &user, Roles: roles, Nick: ptr("nick")}
}

func textChannel(id snowflake.ID, guild *snowflake.ID) cord.Channel {
	return cord.Channel{ID: id, Type: discord.ChannelTypeGuildText, GuildID: guild, Name: ptr("general")}
}

func thread(id, parent snowflake.ID) cord.Channel {
	return cord.Channel{
		ID:       id,
		Type:     discord.ChannelTypeGuildPublicThread,
		GuildID:  ptr(guildID),
		ParentID: ptr(parent),
		Name:     ptr("thread"),
	}
}

func apply(t *testing.T, c *Cache, payloads ...cord.Payload) {
	t.Helper()
	for _, payload := range payloads {
		require.NoError(t, c.Apply(payload))
	}
}

func bootstrap() cord.GuildCreate {
	return cord.GuildCreate{
		Guild:    cord.Guild{ID: guildID, Name: "guild", OwnerID: user1},
		Roles:    []cord.Role{{ID: role1, Name: "one"}, {ID: role2, Name: "two"}},
		Channels: []cord.Channel{textChannel(channel1, nil)},
		Members:  []cord.Member{testMember(user1, role1)},
	}
}

func TestApplyRejectsUnsupportedPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload cord.Payload
	}{
		{name: "nil payload", payload: nil},
		{name: "pointer payload", payload: &cord.GuildUpdate{}},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := New().Apply(testCase.payload)
			require.ErrorIs(t, err, cord.ErrUnsupportedPayload)
		})
	}
}

func TestApplyEventValidatesEnvelope(t *testing.T) {
	t.Parallel()

	c := New()
	source := cord.EventSource{Platform: cord.PlatformDiscord, ID: "main"}

	err := c.ApplyEvent(&cord.Event{ID: "e1", Kind: cord.EventKindGuildUpdate, OccurredAt: time.Now()})
	require.ErrorIs(t, err, cord.ErrInvalidEvent)

	event := cord.NewEvent("e2", time.Now(), source, cord.GuildUpdate{Guild: cord.Guild{ID: guildID, Name: "g"}})
	require.NoError(t, c.ApplyEvent(event))
	assert.True(t, c.Guilds().Has(guildID))
}

func TestGuildUpdateIdempotent(t *testing.T) {
	t.Parallel()

	update := cord.GuildUpdate{Guild: cord.Guild{
		ID:          guildID,
		Name:        "guild",
		Icon:        ptr("icon"),
		Description: ptr("about"),
		OwnerID:     user1,
		Features:    []string{"COMMUNITY"},
		MemberCount: ptr(10),
	}}

	once := New()
	apply(t, once, update)
	twice := New()
	apply(t, twice, update, update)

	want, ok := once.Guild(guildID)
	require.True(t, ok)
	got, ok := twice.Guild(guildID)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestUpsertMergeRetainsUnspecifiedFields(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c,
		cord.GuildUpdate{Guild: cord.Guild{ID: guildID, Name: "guild", Icon: ptr("a"), Description: ptr("b")}},
		cord.GuildUpdate{Guild: cord.Guild{ID: guildID, Description: ptr("c")}},
	)

	guild, ok := c.Guild(guildID)
	require.True(t, ok)
	assert.Equal(t, "guild", guild.Name)
	require.NotNil(t, guild.Icon)
	assert.Equal(t, "a", *guild.Icon)
	require.NotNil(t, guild.Description)
	assert.Equal(t, "c", *guild.Description)
}

func TestMemberUpdateMergesPartial(t *testing.T) {
	t.Parallel()

	c := New()
	member := testMember(user1, role1)
	member.Avatar = ptr("avatar")
	apply(t, c, cord.GuildMemberAdd{GuildID: guildID, Member: member})

	user := testUser(user1, "renamed")
	apply(t, c, cord.GuildMemberUpdate{GuildID: guildID, Member: cord.Member{
		User: &user,
		Nick: ptr("new-nick"),
	}})

	got, ok := c.Member(guildID, user1)
	require.True(t, ok)
	require.NotNil(t, got.Avatar)
	assert.Equal(t, "avatar", *got.Avatar)
	require.NotNil(t, got.Nick)
	assert.Equal(t, "new-nick", *got.Nick)
	assert.True(t, got.HasRole(role1))

	stored, ok := c.User(user1)
	require.True(t, ok)
	assert.Equal(t, "renamed", stored.Username)
}

func TestPartialUpdateOnAbsentEntityIsNoop(t *testing.T) {
	t.Parallel()

	c := New()
	user := testUser(user1, "ghost")
	apply(t, c,
		cord.GuildMemberUpdate{GuildID: guildID, Member: cord.Member{User: &user, Nick: ptr("x")}},
		cord.MessageUpdate{PartialMessage: cord.PartialMessage{ID: messageID, ChannelID: channel1, Content: ptr("edit")}},
	)

	assert.Zero(t, c.Members().Len())
	assert.Zero(t, c.Messages().Len())
	assert.False(t, c.Users().Has(user1), "member update for unknown member must not upsert the user")
}

func TestGuildBootstrap(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c, bootstrap())

	guild, ok := c.Guild(guildID)
	require.True(t, ok)
	assert.Equal(t, "guild", guild.Name)

	assert.True(t, c.Roles().Has(role1))
	assert.True(t, c.Roles().Has(role2))
	assert.Equal(t, []snowflake.ID{role1, role2}, c.GuildRoles().Children(guildID))

	channel, ok := c.Channel(channel1)
	require.True(t, ok)
	require.NotNil(t, channel.GuildID)
	assert.Equal(t, guildID, *channel.GuildID)
	assert.Equal(t, []snowflake.ID{channel1}, c.GuildChannels().Children(guildID))

	member, ok := c.Member(guildID, user1)
	require.True(t, ok)
	assert.Equal(t, user1, member.UserID)
	assert.Equal(t, []snowflake.ID{user1}, c.GuildMembers().Children(guildID))
	assert.True(t, c.Users().Has(user1))

	assert.Empty(t, c.CheckIndexes())
}

func TestGuildCreateIndexesEmbeddedCollections(t *testing.T) {
	t.Parallel()

	c := New()
	create := bootstrap()
	create.Threads = []cord.Channel{thread(threadID, channel1)}
	create.Emojis = []cord.Emoji{{ID: ptr(snowflake.ID(700)), Name: ptr("custom")}, {Name: ptr("unicode")}}
	create.Stickers = []cord.Sticker{{ID: 800, Name: "sticker"}}
	create.Presences = []cord.Presence{{User: cord.PartialUser{ID: user1}, Status: "online"}}
	create.StageInstances = []cord.StageInstance{{ID: 900, ChannelID: channel1, Topic: "talk"}}
	create.ScheduledEvents = []cord.ScheduledEvent{{ID: 901, Name: "meetup"}}
	apply(t, c, create)

	assert.Equal(t, []snowflake.ID{channel1, threadID}, c.GuildChannels().Children(guildID))
	assert.Equal(t, []snowflake.ID{threadID}, c.ChannelThreads().Children(channel1))
	assert.Equal(t, []snowflake.ID{700}, c.GuildEmojis().Children(guildID))
	assert.Equal(t, 1, c.Emojis().Len())
	assert.Equal(t, []snowflake.ID{800}, c.GuildStickers().Children(guildID))

	presence, ok := c.Presence(guildID, user1)
	require.True(t, ok)
	require.NotNil(t, presence.GuildID)
	assert.Equal(t, guildID, *presence.GuildID)

	stage, ok := c.StageInstance(900)
	require.True(t, ok)
	assert.Equal(t, guildID, stage.GuildID)
	assert.Len(t, c.ResolveStageInstances(guildID).Collect(), 1)
	assert.Len(t, c.ResolveScheduledEvents(guildID).Collect(), 1)
	assert.Empty(t, c.CheckIndexes())
}

func TestGuildDeleteCascades(t *testing.T) {
	t.Parallel()

	c := New()
	create := bootstrap()
	create.Threads = []cord.Channel{thread(threadID, channel1)}
	create.Emojis = []cord.Emoji{{ID: ptr(snowflake.ID(700)), Name: ptr("custom")}}
	create.Stickers = []cord.Sticker{{ID: 800, Name: "sticker"}}
	create.Presences = []cord.Presence{{User: cord.PartialUser{ID: user1}, Status: "online"}}
	create.StageInstances = []cord.StageInstance{{ID: 900, ChannelID: channel1}}
	create.ScheduledEvents = []cord.ScheduledEvent{{ID: 901, Name: "meetup"}}
	apply(t, c,
		create,
		cord.GuildBanAdd{GuildID: guildID, User: testUser(user2, "banned")},
		cord.ThreadMembersUpdate{ID: threadID, GuildID: guildID, AddedMembers: []cord.ThreadMember{{UserID: ptr(user1)}}},
		cord.MessageCreate{Message: cord.Message{ID: messageID, ChannelID: channel1, Pinned: true}},
		cord.GuildDelete{ID: guildID},
	)

	assert.False(t, c.Guilds().Has(guildID))
	assert.Empty(t, c.ResolveRoles(guildID).Collect())
	assert.Empty(t, c.ResolveChannels(guildID).Collect())
	assert.Empty(t, c.ResolveEmojis(guildID).Collect())

	for name, index := range map[string]*Index[snowflake.ID, snowflake.ID]{
		"channels":         c.GuildChannels(),
		"roles":            c.GuildRoles(),
		"members":          c.GuildMembers(),
		"emojis":           c.GuildEmojis(),
		"stickers":         c.GuildStickers(),
		"bans":             c.GuildBans(),
		"presences":        c.GuildPresences(),
		"stage instances":  c.GuildStageInstances(),
		"scheduled events": c.GuildScheduledEvents(),
	} {
		assert.False(t, index.HasParent(guildID), "guild still indexed in %s", name)
	}
	assert.False(t, c.ChannelThreads().HasParent(channel1))
	assert.False(t, c.ThreadMemberIndex().HasParent(threadID))
	assert.False(t, c.ChannelPins().HasParent(channel1))
	assert.False(t, c.ChannelMessages().HasParent(channel1))

	stats := c.Stats()
	assert.Zero(t, stats.Guilds)
	assert.Zero(t, stats.Channels)
	assert.Zero(t, stats.Roles)
	assert.Zero(t, stats.Members)
	assert.Zero(t, stats.Presences)
	assert.Zero(t, stats.ThreadMembers)
	assert.Zero(t, stats.Bans)
	assert.Zero(t, stats.Emojis)
	assert.Zero(t, stats.Stickers)
	assert.Zero(t, stats.StageInstances)
	assert.Zero(t, stats.ScheduledEvents)
	assert.Zero(t, stats.Messages)
	assert.False(t, c.Users().Has(user1), "sole-guild member must be evicted")
	assert.True(t, c.Users().Has(user2), "banned user is not a member and stays")
	assert.Empty(t, c.CheckIndexes())
}

func TestChannelMembershipAccumulatesInOrder(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c,
		cord.ChannelCreate{Channel: textChannel(channel1, ptr(guildID))},
		cord.ChannelCreate{Channel: textChannel(channel2, ptr(guildID))},
	)

	channels := c.ResolveChannels(guildID).Collect()
	require.Len(t, channels, 2)
	assert.Equal(t, channel1, channels[0].ID)
	assert.Equal(t, channel2, channels[1].ID)
}

func TestChannelCreateSkipsPrivateChannels(t *testing.T) {
	t.Parallel()

	c := New()
	dm := cord.Channel{ID: channel1, Type: discord.ChannelTypeDM, GuildID: ptr(guildID)}
	apply(t, c, cord.ChannelCreate{Channel: dm})

	assert.True(t, c.Channels().Has(channel1))
	assert.False(t, c.GuildChannels().HasParent(guildID))
}

func TestChannelDeleteRemovesThreadsAndMessages(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c,
		cord.ChannelCreate{Channel: textChannel(channel1, ptr(guildID))},
		cord.ChannelCreate{Channel: textChannel(channel2, ptr(guildID))},
		cord.ThreadCreate{Channel: thread(threadID, channel1)},
		cord.MessageCreate{Message: cord.Message{ID: messageID, ChannelID: channel1, Pinned: true}},
		cord.MessageCreate{Message: cord.Message{ID: messageID + 1, ChannelID: channel1, Content: "unpinned"}},
		cord.MessageCreate{Message: cord.Message{ID: messageID + 2, ChannelID: threadID, Content: "in thread"}},
		cord.MessageCreate{Message: cord.Message{ID: messageID + 3, ChannelID: channel2, Content: "elsewhere"}},
	)
	assert.Len(t, c.ResolveMessages(channel1).Collect(), 2)

	apply(t, c, cord.ChannelDelete{Channel: cord.Channel{ID: channel1, GuildID: ptr(guildID)}})

	assert.False(t, c.Channels().Has(channel1))
	assert.False(t, c.Channels().Has(threadID))
	for _, id := range []snowflake.ID{messageID, messageID + 1, messageID + 2} {
		assert.False(t, c.Messages().Has(id), "message %d of a deleted channel is still cached", id)
	}
	assert.False(t, c.ChannelMessages().HasParent(channel1))
	assert.False(t, c.ChannelMessages().HasParent(threadID))
	assert.Equal(t, []snowflake.ID{channel2}, c.GuildChannels().Children(guildID))
	remaining := c.ResolveMessages(channel2).Collect()
	require.Len(t, remaining, 1)
	assert.Equal(t, "elsewhere", remaining[0].Content)
	assert.Empty(t, c.CheckIndexes())
}

func TestThreadCreateIndexesUnderParent(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c,
		cord.ChannelCreate{Channel: textChannel(channel1, ptr(guildID))},
		cord.ThreadCreate{Channel: thread(threadID, channel1)},
	)

	assert.Equal(t, []snowflake.ID{threadID}, c.ChannelThreads().Children(channel1))
	assert.False(t, c.ChannelThreads().HasParent(threadID))
	assert.Equal(t, []snowflake.ID{channel1, threadID}, c.GuildChannels().Children(guildID))

	apply(t, c, cord.ThreadDelete{Channel: cord.Channel{ID: threadID, ParentID: ptr(channel1), GuildID: ptr(guildID)}})
	assert.False(t, c.ChannelThreads().HasParent(channel1))
	assert.Equal(t, []snowflake.ID{channel1}, c.GuildChannels().Children(guildID))
}

func TestThreadMembersAddThenRemove(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c, cord.ThreadMembersUpdate{
		ID:           threadID,
		GuildID:      guildID,
		AddedMembers: []cord.ThreadMember{{UserID: ptr(user1)}},
	})

	member, ok := c.ThreadMember(threadID, user1)
	require.True(t, ok)
	require.NotNil(t, member.ID)
	assert.Equal(t, threadID, *member.ID)

	apply(t, c, cord.ThreadMembersUpdate{ID: threadID, GuildID: guildID, RemovedMemberIDs: []snowflake.ID{user1}})

	_, ok = c.ThreadMember(threadID, user1)
	assert.False(t, ok)
	assert.Zero(t, c.ThreadMembers().Len())
	assert.False(t, c.ThreadMemberIndex().HasParent(threadID))
}

func TestThreadMemberUpdateRequiresKey(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c,
		cord.ThreadMemberUpdate{ThreadMember: cord.ThreadMember{UserID: ptr(user1)}},
		cord.ThreadMemberUpdate{ThreadMember: cord.ThreadMember{ID: ptr(threadID), UserID: ptr(user2), Flags: 1}},
	)

	assert.Equal(t, 1, c.ThreadMembers().Len())
	assert.Len(t, c.ResolveThreadMembers(threadID).Collect(), 1)
}

func TestBanThenUnban(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c, cord.GuildBanAdd{GuildID: guildID, User: testUser(user2, "u2")})

	ban, ok := c.Ban(guildID, user2)
	require.True(t, ok)
	assert.Equal(t, cord.Ban{GuildID: guildID, UserID: user2}, ban)
	assert.Len(t, c.ResolveBans(guildID).Collect(), 1)

	apply(t, c, cord.GuildBanRemove{GuildID: guildID, User: testUser(user2, "u2")})

	_, ok = c.Ban(guildID, user2)
	assert.False(t, ok)
	assert.True(t, c.Users().Has(user2))
	assert.False(t, c.GuildBans().HasParent(guildID))
}

func TestMemberRemoveEvictsUserOnLastGuild(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c,
		cord.GuildMemberAdd{GuildID: guildID, Member: testMember(user1)},
		cord.GuildMemberAdd{GuildID: otherID, Member: testMember(user1)},
		cord.PresenceUpdate{Presence: cord.Presence{User: cord.PartialUser{ID: user1}, GuildID: ptr(guildID), Status: "idle"}},
		cord.GuildMemberRemove{GuildID: guildID, User: testUser(user1, "user")},
	)

	assert.True(t, c.Users().Has(user1), "user still belongs to another guild")
	_, ok := c.Presence(guildID, user1)
	assert.False(t, ok)

	apply(t, c, cord.GuildMemberRemove{GuildID: otherID, User: testUser(user1, "user")})
	assert.False(t, c.Users().Has(user1))
	assert.Empty(t, c.CheckIndexes())
}

func TestPresenceUpdateRequiresMember(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c,
		cord.PresenceUpdate{Presence: cord.Presence{User: cord.PartialUser{ID: user1}, GuildID: ptr(guildID), Status: "online"}},
		cord.PresenceUpdate{Presence: cord.Presence{User: cord.PartialUser{ID: user1}, Status: "online"}},
	)

	assert.Zero(t, c.Presences().Len())
}

func TestEmojiAndStickerUpdatesUnion(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c,
		cord.GuildEmojisUpdate{GuildID: guildID, Emojis: []cord.Emoji{
			{ID: ptr(snowflake.ID(700)), Name: ptr("a")},
			{Name: ptr("unicode")},
		}},
		cord.GuildEmojisUpdate{GuildID: guildID, Emojis: []cord.Emoji{{ID: ptr(snowflake.ID(701)), Name: ptr("b")}}},
		cord.GuildStickersUpdate{GuildID: guildID, Stickers: []cord.Sticker{{ID: 800, Name: "s"}}},
		cord.GuildStickersUpdate{GuildID: guildID, Stickers: []cord.Sticker{{ID: 801, Name: "t"}, {ID: 800, Name: "s2"}}},
	)

	assert.Equal(t, []snowflake.ID{700, 701}, c.GuildEmojis().Children(guildID))
	assert.Equal(t, []snowflake.ID{800, 801}, c.GuildStickers().Children(guildID))

	sticker, ok := c.Sticker(800)
	require.True(t, ok)
	assert.Equal(t, "s2", sticker.Name)
	require.NotNil(t, sticker.GuildID)
	assert.Equal(t, guildID, *sticker.GuildID)
}

func TestRoleDeleteStripsMembers(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c, bootstrap())
	before, ok := c.Member(guildID, user1)
	require.True(t, ok)

	apply(t, c, cord.GuildRoleDelete{GuildID: guildID, RoleID: role1})

	after, ok := c.Member(guildID, user1)
	require.True(t, ok)
	assert.False(t, after.HasRole(role1))
	assert.True(t, before.HasRole(role1), "earlier member snapshot must not change")
	assert.False(t, c.Roles().Has(role1))
	assert.Equal(t, []snowflake.ID{role2}, c.GuildRoles().Children(guildID))
}

func TestMessagePinsFollowPinnedFlag(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c, cord.MessageCreate{Message: cord.Message{ID: messageID, ChannelID: channel1, Content: "hi"}})
	assert.False(t, c.ChannelPins().HasParent(channel1))

	apply(t, c, cord.MessageUpdate{PartialMessage: cord.PartialMessage{ID: messageID, ChannelID: channel1, Pinned: ptr(true)}})
	pins := c.ResolvePins(channel1).Collect()
	require.Len(t, pins, 1)
	assert.Equal(t, "hi", pins[0].Content)

	apply(t, c, cord.MessageDeleteBulk{IDs: []snowflake.ID{messageID, messageID + 1}, ChannelID: channel1})
	assert.Zero(t, c.Messages().Len())
	assert.False(t, c.ChannelPins().HasParent(channel1))
	assert.False(t, c.ChannelMessages().HasParent(channel1))
}

func TestMessageLimitEvictionDropsPins(t *testing.T) {
	t.Parallel()

	c := New(WithMessageLimit(2))
	apply(t, c,
		cord.MessageCreate{Message: cord.Message{ID: 1, ChannelID: channel1, Pinned: true}},
		cord.MessageCreate{Message: cord.Message{ID: 2, ChannelID: channel1}},
		cord.MessageCreate{Message: cord.Message{ID: 3, ChannelID: channel1}},
	)

	assert.Equal(t, 2, c.Messages().Len())
	assert.False(t, c.Messages().Has(1))
	assert.False(t, c.ChannelPins().HasParent(channel1))
	assert.Equal(t, []snowflake.ID{2, 3}, c.ChannelMessages().Children(channel1))
	assert.Empty(t, c.CheckIndexes())
}

func TestStageAndScheduledEventLifecycle(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c,
		cord.StageInstanceCreate{StageInstance: cord.StageInstance{ID: 900, GuildID: guildID, Topic: "a"}},
		cord.StageInstanceUpdate{StageInstance: cord.StageInstance{ID: 900, GuildID: guildID, Topic: "b"}},
		cord.GuildScheduledEventCreate{ScheduledEvent: cord.ScheduledEvent{ID: 901, GuildID: guildID, Name: "e"}},
	)

	stage, ok := c.StageInstance(900)
	require.True(t, ok)
	assert.Equal(t, "b", stage.Topic)

	apply(t, c,
		cord.StageInstanceDelete{StageInstance: cord.StageInstance{ID: 900}},
		cord.GuildScheduledEventDelete{ScheduledEvent: cord.ScheduledEvent{ID: 901, GuildID: guildID}},
	)
	assert.Zero(t, c.StageInstances().Len())
	assert.Zero(t, c.ScheduledEvents().Len())
	assert.Empty(t, c.CheckIndexes())
}

func TestResolveUnknownParentIsEmpty(t *testing.T) {
	t.Parallel()

	c := New()
	cursor := c.ResolveRoles(guildID)
	assert.Zero(t, cursor.Len())
	assert.False(t, cursor.HasNext())
	_, ok := cursor.Next()
	assert.False(t, ok)
}

func TestMembersChunk(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c, cord.GuildMembersChunk{
		GuildID:   guildID,
		Members:   []cord.Member{testMember(user1), testMember(user2), {Nick: ptr("no user")}},
		Presences: []cord.Presence{{User: cord.PartialUser{ID: user2}, Status: "dnd"}},
	})

	assert.Equal(t, []snowflake.ID{user1, user2}, c.GuildMembers().Children(guildID))
	assert.Len(t, c.ResolveMembers(guildID).Collect(), 2)
	presence, ok := c.Presence(guildID, user2)
	require.True(t, ok)
	assert.Equal(t, "dnd", presence.Status)
}

func TestReset(t *testing.T) {
	t.Parallel()

	c := New()
	apply(t, c, bootstrap())
	require.NotZero(t, c.Stats().Total())

	c.Reset()

	assert.Zero(t, c.Stats().Total())
	assert.Empty(t, c.GuildIDs())
	assert.Empty(t, c.UserIDs())
	assert.False(t, c.GuildRoles().HasParent(guildID))
}
