package cache

import (
	"maps"

	"ex-cordcache/pkg/cord"

	"github.com/disgoorg/snowflake/v2"
)

// Merge functions start from the incoming value and backfill every field the
// incoming value leaves absent from the cached one. Absent means a nil pointer,
// slice or map, an empty string or a zero id. An explicit null therefore never
// clears a cached field. Numeric and boolean scalars are always taken from the
// incoming value.

func coalescePtr[T any](update, old *T) *T {
	if update == nil {
		return old
	}

	return update
}

func coalesceSlice[T any](update, old []T) []T {
	if update == nil {
		return old
	}

	return update
}

func coalesceString(update, old string) string {
	if update == "" {
		return old
	}

	return update
}

func coalesceID(update, old snowflake.ID) snowflake.ID {
	if update == 0 {
		return old
	}

	return update
}

func mergeGuild(old, update cord.Guild) cord.Guild {
	merged := update
	merged.ID = coalesceID(update.ID, old.ID)
	merged.Name = coalesceString(update.Name, old.Name)
	merged.Icon = coalescePtr(update.Icon, old.Icon)
	merged.Splash = coalescePtr(update.Splash, old.Splash)
	merged.Banner = coalescePtr(update.Banner, old.Banner)
	merged.Description = coalescePtr(update.Description, old.Description)
	merged.OwnerID = coalesceID(update.OwnerID, old.OwnerID)
	merged.AFKChannelID = coalescePtr(update.AFKChannelID, old.AFKChannelID)
	merged.SystemChannelID = coalescePtr(update.SystemChannelID, old.SystemChannelID)
	merged.RulesChannelID = coalescePtr(update.RulesChannelID, old.RulesChannelID)
	merged.Features = coalesceSlice(update.Features, old.Features)
	merged.PremiumSubscriptionCount = coalescePtr(update.PremiumSubscriptionCount, old.PremiumSubscriptionCount)
	merged.PreferredLocale = coalesceString(update.PreferredLocale, old.PreferredLocale)
	merged.MemberCount = coalescePtr(update.MemberCount, old.MemberCount)
	merged.Large = coalescePtr(update.Large, old.Large)
	merged.JoinedAt = coalescePtr(update.JoinedAt, old.JoinedAt)

	return merged
}

func mergeChannel(old, update cord.Channel) cord.Channel {
	merged := update
	merged.ID = coalesceID(update.ID, old.ID)
	merged.GuildID = coalescePtr(update.GuildID, old.GuildID)
	merged.Position = coalescePtr(update.Position, old.Position)
	merged.Name = coalescePtr(update.Name, old.Name)
	merged.Topic = coalescePtr(update.Topic, old.Topic)
	merged.NSFW = coalescePtr(update.NSFW, old.NSFW)
	merged.LastMessageID = coalescePtr(update.LastMessageID, old.LastMessageID)
	merged.ParentID = coalescePtr(update.ParentID, old.ParentID)
	merged.OwnerID = coalescePtr(update.OwnerID, old.OwnerID)
	merged.Bitrate = coalescePtr(update.Bitrate, old.Bitrate)
	merged.UserLimit = coalescePtr(update.UserLimit, old.UserLimit)
	merged.RateLimitPerUser = coalescePtr(update.RateLimitPerUser, old.RateLimitPerUser)
	merged.MemberCount = coalescePtr(update.MemberCount, old.MemberCount)
	merged.MessageCount = coalescePtr(update.MessageCount, old.MessageCount)
	merged.Flags = coalescePtr(update.Flags, old.Flags)
	merged.PermissionOverwrites = coalesceSlice(update.PermissionOverwrites, old.PermissionOverwrites)
	merged.ThreadMetadata = coalescePtr(update.ThreadMetadata, old.ThreadMetadata)

	return merged
}

func mergeRole(old, update cord.Role) cord.Role {
	merged := update
	merged.ID = coalesceID(update.ID, old.ID)
	merged.Name = coalesceString(update.Name, old.Name)
	merged.Icon = coalescePtr(update.Icon, old.Icon)
	merged.UnicodeEmoji = coalescePtr(update.UnicodeEmoji, old.UnicodeEmoji)
	merged.Permissions = coalesceString(update.Permissions, old.Permissions)

	return merged
}

func mergeUser(old, update cord.User) cord.User {
	merged := update
	merged.ID = coalesceID(update.ID, old.ID)
	merged.Username = coalesceString(update.Username, old.Username)
	merged.GlobalName = coalescePtr(update.GlobalName, old.GlobalName)
	merged.Discriminator = coalesceString(update.Discriminator, old.Discriminator)
	merged.Avatar = coalescePtr(update.Avatar, old.Avatar)
	merged.Banner = coalescePtr(update.Banner, old.Banner)
	merged.PublicFlags = coalescePtr(update.PublicFlags, old.PublicFlags)

	return merged
}

// mergeMember never mutates either role set; the result shares whichever set
// it keeps.
func mergeMember(old, update cord.SparseMember) cord.SparseMember {
	merged := update
	merged.GuildID = coalesceID(update.GuildID, old.GuildID)
	merged.UserID = coalesceID(update.UserID, old.UserID)
	merged.Nick = coalescePtr(update.Nick, old.Nick)
	merged.Avatar = coalescePtr(update.Avatar, old.Avatar)
	if update.Roles == nil {
		merged.Roles = old.Roles
	}
	merged.JoinedAt = coalescePtr(update.JoinedAt, old.JoinedAt)
	merged.PremiumSince = coalescePtr(update.PremiumSince, old.PremiumSince)
	merged.Deaf = coalescePtr(update.Deaf, old.Deaf)
	merged.Mute = coalescePtr(update.Mute, old.Mute)
	merged.Pending = coalescePtr(update.Pending, old.Pending)
	merged.Flags = coalescePtr(update.Flags, old.Flags)
	merged.CommunicationDisabledUntil = coalescePtr(update.CommunicationDisabledUntil, old.CommunicationDisabledUntil)

	return merged
}

// patchMember applies a member-update payload. Payloads without a user carry
// no key and leave the member unchanged.
func patchMember(old cord.SparseMember, update cord.Member) cord.SparseMember {
	sparse, ok := update.ToSparse(old.GuildID)
	if !ok {
		return old
	}

	return mergeMember(old, sparse)
}

// withoutRole returns a copy of roles lacking roleID.
func withoutRole(roles map[snowflake.ID]struct{}, roleID snowflake.ID) map[snowflake.ID]struct{} {
	cloned := maps.Clone(roles)
	delete(cloned, roleID)

	return cloned
}

func mergePresence(old, update cord.Presence) cord.Presence {
	merged := update
	merged.User.ID = coalesceID(update.User.ID, old.User.ID)
	merged.GuildID = coalescePtr(update.GuildID, old.GuildID)
	merged.Status = coalesceString(update.Status, old.Status)
	merged.Activities = coalesceSlice(update.Activities, old.Activities)
	merged.ClientStatus = coalescePtr(update.ClientStatus, old.ClientStatus)

	return merged
}

func mergeThreadMember(old, update cord.ThreadMember) cord.ThreadMember {
	merged := update
	merged.ID = coalescePtr(update.ID, old.ID)
	merged.UserID = coalescePtr(update.UserID, old.UserID)
	merged.GuildID = coalescePtr(update.GuildID, old.GuildID)
	if update.JoinTimestamp.IsZero() {
		merged.JoinTimestamp = old.JoinTimestamp
	}

	return merged
}

func mergeEmoji(old, update cord.Emoji) cord.Emoji {
	merged := update
	merged.ID = coalescePtr(update.ID, old.ID)
	merged.Name = coalescePtr(update.Name, old.Name)
	merged.Roles = coalesceSlice(update.Roles, old.Roles)
	merged.User = coalescePtr(update.User, old.User)
	merged.RequireColons = coalescePtr(update.RequireColons, old.RequireColons)
	merged.Managed = coalescePtr(update.Managed, old.Managed)
	merged.Animated = coalescePtr(update.Animated, old.Animated)
	merged.Available = coalescePtr(update.Available, old.Available)

	return merged
}

func mergeSticker(old, update cord.Sticker) cord.Sticker {
	merged := update
	merged.ID = coalesceID(update.ID, old.ID)
	merged.PackID = coalescePtr(update.PackID, old.PackID)
	merged.Name = coalesceString(update.Name, old.Name)
	merged.Description = coalescePtr(update.Description, old.Description)
	merged.Tags = coalesceString(update.Tags, old.Tags)
	merged.Available = coalescePtr(update.Available, old.Available)
	merged.GuildID = coalescePtr(update.GuildID, old.GuildID)
	merged.SortValue = coalescePtr(update.SortValue, old.SortValue)

	return merged
}

func mergeStageInstance(old, update cord.StageInstance) cord.StageInstance {
	merged := update
	merged.ID = coalesceID(update.ID, old.ID)
	merged.GuildID = coalesceID(update.GuildID, old.GuildID)
	merged.ChannelID = coalesceID(update.ChannelID, old.ChannelID)
	merged.Topic = coalesceString(update.Topic, old.Topic)
	merged.GuildScheduledEventID = coalescePtr(update.GuildScheduledEventID, old.GuildScheduledEventID)

	return merged
}

func mergeScheduledEvent(old, update cord.ScheduledEvent) cord.ScheduledEvent {
	merged := update
	merged.ID = coalesceID(update.ID, old.ID)
	merged.GuildID = coalesceID(update.GuildID, old.GuildID)
	merged.ChannelID = coalescePtr(update.ChannelID, old.ChannelID)
	merged.CreatorID = coalescePtr(update.CreatorID, old.CreatorID)
	merged.Name = coalesceString(update.Name, old.Name)
	merged.Description = coalescePtr(update.Description, old.Description)
	if update.ScheduledStartTime.IsZero() {
		merged.ScheduledStartTime = old.ScheduledStartTime
	}
	merged.ScheduledEndTime = coalescePtr(update.ScheduledEndTime, old.ScheduledEndTime)
	merged.EntityID = coalescePtr(update.EntityID, old.EntityID)
	merged.UserCount = coalescePtr(update.UserCount, old.UserCount)

	return merged
}

func mergeMessage(old, update cord.Message) cord.Message {
	merged := update
	merged.ID = coalesceID(update.ID, old.ID)
	merged.ChannelID = coalesceID(update.ChannelID, old.ChannelID)
	merged.GuildID = coalescePtr(update.GuildID, old.GuildID)
	merged.Author = coalescePtr(update.Author, old.Author)
	merged.Content = coalesceString(update.Content, old.Content)
	if update.Timestamp.IsZero() {
		merged.Timestamp = old.Timestamp
	}
	merged.EditedTimestamp = coalescePtr(update.EditedTimestamp, old.EditedTimestamp)
	merged.Flags = coalescePtr(update.Flags, old.Flags)

	return merged
}

// patchMessage applies a message edit.
func patchMessage(old cord.Message, update cord.PartialMessage) cord.Message {
	merged := old
	merged.GuildID = coalescePtr(update.GuildID, old.GuildID)
	merged.Author = coalescePtr(update.Author, old.Author)
	if update.Content != nil {
		merged.Content = *update.Content
	}
	merged.EditedTimestamp = coalescePtr(update.EditedTimestamp, old.EditedTimestamp)
	if update.Pinned != nil {
		merged.Pinned = *update.Pinned
	}
	merged.Flags = coalescePtr(update.Flags, old.Flags)

	return merged
}
