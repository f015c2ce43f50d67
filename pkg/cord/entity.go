package cord

import (
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// Nullable and optional wire fields are pointers and optional collections are
// slices. A nil value means the payload carried no information for that field.

// MemberKey scopes a per-guild record of one user.
type MemberKey struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// ThreadMemberKey scopes a thread membership record of one user.
type ThreadMemberKey struct {
	ThreadID snowflake.ID
	UserID   snowflake.ID
}

// User is a platform account shared across guilds.
type User struct {
	ID            snowflake.ID `json:"id"`
	Username      string       `json:"username"`
	GlobalName    *string      `json:"global_name"`
	Discriminator string       `json:"discriminator"`
	Avatar        *string      `json:"avatar"`
	Banner        *string      `json:"banner"`
	Bot           bool         `json:"bot"`
	System        bool         `json:"system"`
	PublicFlags   *int         `json:"public_flags"`
}

// Guild is the sparse guild record: emoji, role and sticker collections are
// tracked in their own tables.
type Guild struct {
	ID                       snowflake.ID  `json:"id"`
	Name                     string        `json:"name"`
	Icon                     *string       `json:"icon"`
	Splash                   *string       `json:"splash"`
	Banner                   *string       `json:"banner"`
	Description              *string       `json:"description"`
	OwnerID                  snowflake.ID  `json:"owner_id"`
	AFKChannelID             *snowflake.ID `json:"afk_channel_id"`
	AFKTimeout               int           `json:"afk_timeout"`
	VerificationLevel        int           `json:"verification_level"`
	SystemChannelID          *snowflake.ID `json:"system_channel_id"`
	RulesChannelID           *snowflake.ID `json:"rules_channel_id"`
	Features                 []string      `json:"features"`
	PremiumTier              int           `json:"premium_tier"`
	PremiumSubscriptionCount *int          `json:"premium_subscription_count"`
	PreferredLocale          string        `json:"preferred_locale"`
	NSFWLevel                int           `json:"nsfw_level"`
	MemberCount              *int          `json:"member_count"`
	Large                    *bool         `json:"large"`
	Unavailable              bool          `json:"unavailable"`
	JoinedAt                 *time.Time    `json:"joined_at"`
}

// PermissionOverwrite is one channel permission overwrite.
type PermissionOverwrite struct {
	ID    snowflake.ID `json:"id"`
	Type  int          `json:"type"`
	Allow string       `json:"allow"`
	Deny  string       `json:"deny"`
}

// ThreadMetadata carries thread-only channel state.
type ThreadMetadata struct {
	Archived            bool       `json:"archived"`
	AutoArchiveDuration int        `json:"auto_archive_duration"`
	ArchiveTimestamp    time.Time  `json:"archive_timestamp"`
	Locked              bool       `json:"locked"`
	Invitable           *bool      `json:"invitable"`
	CreateTimestamp     *time.Time `json:"create_timestamp"`
}

// Channel is a guild channel, DM, group DM or thread.
type Channel struct {
	ID                   snowflake.ID          `json:"id"`
	Type                 discord.ChannelType   `json:"type"`
	GuildID              *snowflake.ID         `json:"guild_id"`
	Position             *int                  `json:"position"`
	Name                 *string               `json:"name"`
	Topic                *string               `json:"topic"`
	NSFW                 *bool                 `json:"nsfw"`
	LastMessageID        *snowflake.ID         `json:"last_message_id"`
	ParentID             *snowflake.ID         `json:"parent_id"`
	OwnerID              *snowflake.ID         `json:"owner_id"`
	Bitrate              *int                  `json:"bitrate"`
	UserLimit            *int                  `json:"user_limit"`
	RateLimitPerUser     *int                  `json:"rate_limit_per_user"`
	MemberCount          *int                  `json:"member_count"`
	MessageCount         *int                  `json:"message_count"`
	Flags                *int                  `json:"flags"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites"`
	ThreadMetadata       *ThreadMetadata       `json:"thread_metadata"`
}

// IsPrivate reports whether the channel is a DM or group DM.
func (c Channel) IsPrivate() bool {
	return c.Type == discord.ChannelTypeDM || c.Type == discord.ChannelTypeGroupDM
}

// Role is a guild role.
type Role struct {
	ID           snowflake.ID `json:"id"`
	Name         string       `json:"name"`
	Color        int          `json:"color"`
	Hoist        bool         `json:"hoist"`
	Icon         *string      `json:"icon"`
	UnicodeEmoji *string      `json:"unicode_emoji"`
	Position     int          `json:"position"`
	Permissions  string       `json:"permissions"`
	Managed      bool         `json:"managed"`
	Mentionable  bool         `json:"mentionable"`
	Flags        int          `json:"flags"`
}

// Member is a guild member as delivered by the gateway.
// Every field is optional so the same shape also serves as a member patch.
type Member struct {
	User                       *User          `json:"user"`
	Nick                       *string        `json:"nick"`
	Avatar                     *string        `json:"avatar"`
	Roles                      []snowflake.ID `json:"roles"`
	JoinedAt                   *time.Time     `json:"joined_at"`
	PremiumSince               *time.Time     `json:"premium_since"`
	Deaf                       *bool          `json:"deaf"`
	Mute                       *bool          `json:"mute"`
	Pending                    *bool          `json:"pending"`
	Flags                      *int           `json:"flags"`
	CommunicationDisabledUntil *time.Time     `json:"communication_disabled_until"`
}

// SparseMember is the cached member record. The embedded user is replaced by
// UserID and role ids are held as a set.
type SparseMember struct {
	GuildID                    snowflake.ID
	UserID                     snowflake.ID
	Nick                       *string
	Avatar                     *string
	Roles                      map[snowflake.ID]struct{}
	JoinedAt                   *time.Time
	PremiumSince               *time.Time
	Deaf                       *bool
	Mute                       *bool
	Pending                    *bool
	Flags                      *int
	CommunicationDisabledUntil *time.Time
}

// HasRole reports whether the member holds roleID.
func (m SparseMember) HasRole(roleID snowflake.ID) bool {
	_, ok := m.Roles[roleID]

	return ok
}

// Key returns the member table key.
func (m SparseMember) Key() MemberKey {
	return MemberKey{GuildID: m.GuildID, UserID: m.UserID}
}

// ToSparse strips the user object and converts the role list to a set.
// It returns false when the member carries no user.
func (m Member) ToSparse(guildID snowflake.ID) (SparseMember, bool) {
	if m.User == nil {
		return SparseMember{}, false
	}

	return SparseMember{
		GuildID:                    guildID,
		UserID:                     m.User.ID,
		Nick:                       m.Nick,
		Avatar:                     m.Avatar,
		Roles:                      RoleSet(m.Roles),
		JoinedAt:                   m.JoinedAt,
		PremiumSince:               m.PremiumSince,
		Deaf:                       m.Deaf,
		Mute:                       m.Mute,
		Pending:                    m.Pending,
		Flags:                      m.Flags,
		CommunicationDisabledUntil: m.CommunicationDisabledUntil,
	}, true
}

// RoleSet converts a role id list to a set. A nil list stays nil.
func RoleSet(ids []snowflake.ID) map[snowflake.ID]struct{} {
	if ids == nil {
		return nil
	}
	set := make(map[snowflake.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}

// PartialUser references a user by id with optional profile fields.
type PartialUser struct {
	ID snowflake.ID `json:"id"`
}

// Activity is one presence activity.
type Activity struct {
	Name    string  `json:"name"`
	Type    int     `json:"type"`
	URL     *string `json:"url"`
	State   *string `json:"state"`
	Details *string `json:"details"`
}

// ClientStatus reports per-platform status.
type ClientStatus struct {
	Desktop *string `json:"desktop"`
	Mobile  *string `json:"mobile"`
	Web     *string `json:"web"`
}

// Presence is the status of one user in one guild.
type Presence struct {
	User         PartialUser   `json:"user"`
	GuildID      *snowflake.ID `json:"guild_id"`
	Status       string        `json:"status"`
	Activities   []Activity    `json:"activities"`
	ClientStatus *ClientStatus `json:"client_status"`
}

// ThreadMember is one user's membership of a thread.
type ThreadMember struct {
	ID            *snowflake.ID `json:"id"`
	UserID        *snowflake.ID `json:"user_id"`
	JoinTimestamp time.Time     `json:"join_timestamp"`
	Flags         int           `json:"flags"`
	GuildID       *snowflake.ID `json:"guild_id"`
}

// Ban records that a user is banned from a guild.
type Ban struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// Emoji is a guild emoji. ID is nil for unicode emoji.
type Emoji struct {
	ID            *snowflake.ID  `json:"id"`
	Name          *string        `json:"name"`
	Roles         []snowflake.ID `json:"roles"`
	User          *User          `json:"user"`
	RequireColons *bool          `json:"require_colons"`
	Managed       *bool          `json:"managed"`
	Animated      *bool          `json:"animated"`
	Available     *bool          `json:"available"`
}

// Sticker is a guild or standard sticker.
type Sticker struct {
	ID          snowflake.ID  `json:"id"`
	PackID      *snowflake.ID `json:"pack_id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Tags        string        `json:"tags"`
	Type        int           `json:"type"`
	FormatType  int           `json:"format_type"`
	Available   *bool         `json:"available"`
	GuildID     *snowflake.ID `json:"guild_id"`
	SortValue   *int          `json:"sort_value"`
}

// StageInstance is a live stage.
type StageInstance struct {
	ID                    snowflake.ID  `json:"id"`
	GuildID               snowflake.ID  `json:"guild_id"`
	ChannelID             snowflake.ID  `json:"channel_id"`
	Topic                 string        `json:"topic"`
	PrivacyLevel          int           `json:"privacy_level"`
	GuildScheduledEventID *snowflake.ID `json:"guild_scheduled_event_id"`
}

// ScheduledEvent is a guild scheduled event.
type ScheduledEvent struct {
	ID                 snowflake.ID  `json:"id"`
	GuildID            snowflake.ID  `json:"guild_id"`
	ChannelID          *snowflake.ID `json:"channel_id"`
	CreatorID          *snowflake.ID `json:"creator_id"`
	Name               string        `json:"name"`
	Description        *string       `json:"description"`
	ScheduledStartTime time.Time     `json:"scheduled_start_time"`
	ScheduledEndTime   *time.Time    `json:"scheduled_end_time"`
	PrivacyLevel       int           `json:"privacy_level"`
	Status             int           `json:"status"`
	EntityType         int           `json:"entity_type"`
	EntityID           *snowflake.ID `json:"entity_id"`
	UserCount          *int          `json:"user_count"`
}

// Message is a channel message.
type Message struct {
	ID              snowflake.ID  `json:"id"`
	ChannelID       snowflake.ID  `json:"channel_id"`
	GuildID         *snowflake.ID `json:"guild_id"`
	Author          *User         `json:"author"`
	Content         string        `json:"content"`
	Timestamp       time.Time     `json:"timestamp"`
	EditedTimestamp *time.Time    `json:"edited_timestamp"`
	Pinned          bool          `json:"pinned"`
	Type            int           `json:"type"`
	Flags           *int          `json:"flags"`
}

// PartialMessage is a message edit. Only ids are mandatory.
type PartialMessage struct {
	ID              snowflake.ID  `json:"id"`
	ChannelID       snowflake.ID  `json:"channel_id"`
	GuildID         *snowflake.ID `json:"guild_id"`
	Author          *User         `json:"author"`
	Content         *string       `json:"content"`
	EditedTimestamp *time.Time    `json:"edited_timestamp"`
	Pinned          *bool         `json:"pinned"`
	Flags           *int          `json:"flags"`
}
