package guildcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ex-cordcache/pkg/cache"
	"ex-cordcache/pkg/cord"

	"github.com/benbjohnson/clock"
	"github.com/disgoorg/snowflake/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

const (
	moduleNamePrefix       = "guild-cache"
	writerSubscriptionName = "guild-cache-writer"
	defaultStatsSchedule   = "@every 5m"
	defaultMessageLimit    = 10000
)

// cachedKinds lists every event kind the cache applies.
var cachedKinds = []cord.EventKind{
	cord.EventKindGuildCreate,
	cord.EventKindGuildUpdate,
	cord.EventKindGuildDelete,
	cord.EventKindChannelCreate,
	cord.EventKindChannelUpdate,
	cord.EventKindChannelDelete,
	cord.EventKindThreadCreate,
	cord.EventKindThreadUpdate,
	cord.EventKindThreadDelete,
	cord.EventKindThreadMemberUpdate,
	cord.EventKindThreadMembersUpdate,
	cord.EventKindGuildBanAdd,
	cord.EventKindGuildBanRemove,
	cord.EventKindGuildMemberAdd,
	cord.EventKindGuildMemberRemove,
	cord.EventKindGuildMemberUpdate,
	cord.EventKindGuildMembersChunk,
	cord.EventKindGuildStickersUpdate,
	cord.EventKindGuildEmojisUpdate,
	cord.EventKindGuildRoleCreate,
	cord.EventKindGuildRoleUpdate,
	cord.EventKindGuildRoleDelete,
	cord.EventKindMessageCreate,
	cord.EventKindMessageUpdate,
	cord.EventKindMessageDelete,
	cord.EventKindMessageDeleteBulk,
	cord.EventKindPresenceUpdate,
	cord.EventKindStageInstanceCreate,
	cord.EventKindStageInstanceUpdate,
	cord.EventKindStageInstanceDelete,
	cord.EventKindGuildScheduledEventCreate,
	cord.EventKindGuildScheduledEventUpdate,
	cord.EventKindGuildScheduledEventDelete,
}

// Option mutates guild cache module configuration.
type Option func(*Module)

// WithLogger injects a logger directly, bypassing service lookup.
func WithLogger(logger *slog.Logger) Option {
	return func(module *Module) {
		if logger != nil {
			module.logger = logger
		}
	}
}

// WithSource binds the module to one driver instance. The module name and
// service key both carry the source id.
func WithSource(sourceID string) Option {
	return func(module *Module) {
		module.sourceID = sourceID
	}
}

// WithMessageLimit bounds the message table.
func WithMessageLimit(limit int) Option {
	return func(module *Module) {
		if limit > 0 {
			module.messageLimit = limit
		}
	}
}

// WithStatsSchedule sets the cron spec of the periodic stats log line.
// An empty spec disables it.
func WithStatsSchedule(spec string) Option {
	return func(module *Module) {
		module.statsSchedule = spec
	}
}

// WithRegisterer enables Prometheus metrics on registerer.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(module *Module) {
		module.registerer = registerer
	}
}

// WithClock overrides the clock used for applied-at timestamps.
func WithClock(c clock.Clock) Option {
	return func(module *Module) {
		if c != nil {
			module.clock = c
		}
	}
}

// Module owns one cache.Cache. Events are applied by a single ordered worker
// under the write lock; queries take the read lock.
type Module struct {
	logger        *slog.Logger
	sourceID      string
	messageLimit  int
	statsSchedule string
	registerer    prometheus.Registerer
	clock         clock.Clock

	metrics   *cacheMetrics
	collector *sizeCollector
	scheduler *cron.Cron

	mu          sync.RWMutex
	cache       *cache.Cache
	applied     uint64
	failed      uint64
	lastApplied time.Time
}

var _ cord.GuildCache = (*Module)(nil)

// New creates a guild cache module.
func New(options ...Option) *Module {
	module := &Module{
		logger:        slog.Default(),
		messageLimit:  defaultMessageLimit,
		statsSchedule: defaultStatsSchedule,
		clock:         clock.New(),
	}
	for _, option := range options {
		option(module)
	}
	module.cache = cache.New(cache.WithMessageLimit(module.messageLimit))

	return module
}

// Name returns the stable module identifier.
func (m *Module) Name() string {
	if m.sourceID == "" {
		return moduleNamePrefix
	}

	return moduleNamePrefix + ":" + m.sourceID
}

// ServiceName returns the registry key this module is exposed under.
func (m *Module) ServiceName() string {
	return cord.GuildCacheServiceName(m.sourceID)
}

// Spec declares the ordered cache writer.
func (m *Module) Spec() cord.ModuleSpec {
	interest := cord.InterestSet{
		Kinds: append([]cord.EventKind(nil), cachedKinds...),
	}
	if m.sourceID != "" {
		interest.Sources = []cord.EventSource{{Platform: cord.PlatformDiscord, ID: m.sourceID}}
	}

	return cord.ModuleSpec{
		Handlers: []cord.ModuleHandler{
			{
				Capability: cord.Capability{
					Name:        writerSubscriptionName,
					Description: "applies gateway dispatches to the local guild state cache in arrival order",
					Interest:    interest,
				},
				Subscription: cord.SubscriptionSpec{Name: writerSubscriptionName},
				Handler:      m.handleEvent,
			},
		},
	}
}

// OnRegister resolves the logger, registers metrics and exposes the cache service.
func (m *Module) OnRegister(_ context.Context, runtime cord.ModuleRuntime) error {
	logger, err := cord.ResolveAs[*slog.Logger](runtime.Services(), cord.ServiceLogger)
	switch {
	case err == nil:
		m.logger = logger
	case errors.Is(err, cord.ErrServiceNotFound):
	default:
		return fmt.Errorf("guild cache resolve logger: %w", err)
	}

	if m.registerer != nil {
		metrics, err := newCacheMetrics(m.registerer)
		if err != nil {
			return fmt.Errorf("guild cache register metrics: %w", err)
		}
		collector := newSizeCollector(m.sourceID, m.Stats)
		if err := m.registerer.Register(collector); err != nil {
			return fmt.Errorf("guild cache register size collector: %w", err)
		}
		m.metrics = metrics
		m.collector = collector
	}

	if err := runtime.Services().Register(m.ServiceName(), m); err != nil {
		m.unregisterCollector()
		return fmt.Errorf("guild cache register service %s: %w", m.ServiceName(), err)
	}

	return nil
}

// OnStart starts the stats reporter.
func (m *Module) OnStart(ctx context.Context) error {
	if m.statsSchedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(m.statsSchedule, func() {
			m.logStats(context.Background())
		}); err != nil {
			return fmt.Errorf("guild cache schedule stats %q: %w", m.statsSchedule, err)
		}
		scheduler.Start()
		m.scheduler = scheduler
	}

	m.logger.InfoContext(ctx,
		"guild cache module started",
		"module", m.Name(),
		"source", m.sourceID,
		"message_limit", m.messageLimit,
		"stats_schedule", m.statsSchedule,
	)

	return nil
}

// OnShutdown stops the stats reporter and releases cached state.
func (m *Module) OnShutdown(ctx context.Context) error {
	if m.scheduler != nil {
		select {
		case <-m.scheduler.Stop().Done():
		case <-ctx.Done():
			return fmt.Errorf("guild cache stop stats scheduler: %w", ctx.Err())
		}
		m.scheduler = nil
	}
	m.unregisterCollector()

	m.mu.Lock()
	stats := m.cache.Stats()
	m.cache.Reset()
	m.mu.Unlock()

	m.logger.InfoContext(ctx,
		"guild cache module shutdown",
		"module", m.Name(),
		"entries", stats.Total(),
	)

	return nil
}

// handleEvent applies one event under the write lock.
func (m *Module) handleEvent(ctx context.Context, event *cord.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("guild cache apply: %w", err)
	}

	now := m.clock.Now()
	m.mu.Lock()
	err := m.cache.ApplyEvent(event)
	if err == nil {
		m.applied++
		m.lastApplied = now
	} else {
		m.failed++
	}
	m.mu.Unlock()

	kind := cord.EventKind("")
	if event != nil {
		kind = event.Kind
	}
	if err != nil {
		m.metrics.recordFailed(m.sourceID, kind)
		return fmt.Errorf("guild cache apply %s: %w", kind, err)
	}
	m.metrics.recordApplied(m.sourceID, kind, now)

	return nil
}

func (m *Module) logStats(ctx context.Context) {
	m.mu.RLock()
	stats := m.cache.Stats()
	applied, failed, lastApplied := m.applied, m.failed, m.lastApplied
	m.mu.RUnlock()

	attrs := []any{
		"module", m.Name(),
		"applied", applied,
		"failed", failed,
		"last_applied", lastApplied,
	}
	for table, count := range stats.ByTable() {
		attrs = append(attrs, table, count)
	}
	m.logger.InfoContext(ctx, "guild cache stats", attrs...)
}

func (m *Module) unregisterCollector() {
	if m.registerer != nil && m.collector != nil {
		m.registerer.Unregister(m.collector)
		m.collector = nil
	}
}

// View runs fn under the read lock with direct access to the cache. Cursors
// obtained inside fn must not be used after it returns.
func (m *Module) View(fn func(c *cache.Cache)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fn(m.cache)
}

// Applied returns the number of applied events and when the last one was applied.
func (m *Module) Applied() (uint64, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.applied, m.lastApplied
}

// Guild returns one sparse guild.
func (m *Module) Guild(id snowflake.ID) (cord.Guild, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Guild(id)
}

// Channel returns one channel or thread.
func (m *Module) Channel(id snowflake.ID) (cord.Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Channel(id)
}

// Role returns one role.
func (m *Module) Role(id snowflake.ID) (cord.Role, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Role(id)
}

// User returns one user.
func (m *Module) User(id snowflake.ID) (cord.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.User(id)
}

// Member returns one guild member with a private copy of its role set.
func (m *Module) Member(guildID, userID snowflake.ID) (cord.SparseMember, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	member, ok := m.cache.Member(guildID, userID)
	if !ok {
		return cord.SparseMember{}, false
	}

	return cloneMember(member), true
}

// Presence returns one member presence.
func (m *Module) Presence(guildID, userID snowflake.ID) (cord.Presence, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Presence(guildID, userID)
}

// Emoji returns one custom emoji.
func (m *Module) Emoji(id snowflake.ID) (cord.Emoji, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Emoji(id)
}

// Sticker returns one sticker.
func (m *Module) Sticker(id snowflake.ID) (cord.Sticker, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Sticker(id)
}

// Message returns one cached message.
func (m *Module) Message(id snowflake.ID) (cord.Message, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Message(id)
}

// GuildRoles lists the roles of a guild.
func (m *Module) GuildRoles(guildID snowflake.ID) []cord.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.ResolveRoles(guildID).Collect()
}

// GuildChannels lists the channels and threads of a guild.
func (m *Module) GuildChannels(guildID snowflake.ID) []cord.Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.ResolveChannels(guildID).Collect()
}

// GuildEmojis lists the custom emojis of a guild.
func (m *Module) GuildEmojis(guildID snowflake.ID) []cord.Emoji {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.ResolveEmojis(guildID).Collect()
}

// GuildMembers lists the cached members of a guild.
func (m *Module) GuildMembers(guildID snowflake.ID) []cord.SparseMember {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.cache.ResolveMembers(guildID).Collect()
	for idx := range members {
		members[idx] = cloneMember(members[idx])
	}

	return members
}

// ChannelThreads lists the threads under a parent channel.
func (m *Module) ChannelThreads(channelID snowflake.ID) []cord.Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.ResolveThreads(channelID).Collect()
}

// ChannelPins lists the cached pinned messages of a channel.
func (m *Module) ChannelPins(channelID snowflake.ID) []cord.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.ResolvePins(channelID).Collect()
}

// Stats reports table sizes.
func (m *Module) Stats() cord.CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Stats()
}

func cloneMember(member cord.SparseMember) cord.SparseMember {
	if member.Roles != nil {
		roles := make(map[snowflake.ID]struct{}, len(member.Roles))
		for id := range member.Roles {
			roles[id] = struct{}{}
		}
		member.Roles = roles
	}

	return member
}
