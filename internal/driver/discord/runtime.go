package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ex-cordcache/pkg/cord"

	"github.com/disgoorg/disgo/gateway"
	"github.com/mitchellh/mapstructure"
)

// DefaultIntents covers every dispatch the cache consumes.
const DefaultIntents = gateway.IntentsNonPrivileged | gateway.IntentGuildMembers | gateway.IntentGuildPresences

type runtimeConfig struct {
	Token          string        `json:"token"`
	Intents        *int          `json:"intents"`
	PublishTimeout time.Duration `json:"publish_timeout"`
	CloseTimeout   time.Duration `json:"close_timeout"`
	ShardIDs       []int         `json:"shard_ids"`
	ShardCount     int           `json:"shard_count"`
}

type parsedRuntimeConfig struct {
	publishTimeout time.Duration
	gateway        GatewayConfig
}

// BuildRuntimeFromConfig builds one discord driver runtime from a config object.
func BuildRuntimeFromConfig(
	name string,
	logger *slog.Logger,
	rawConfig map[string]any,
) (cord.EventSource, cord.Driver, error) {
	cfg, err := parseRuntimeConfig(rawConfig)
	if err != nil {
		return cord.EventSource{}, nil, fmt.Errorf("parse discord runtime config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	driverLogger := logger.With("driver", name)
	reportError := func(ctx context.Context, err error) {
		driverLogger.ErrorContext(ctx, "discord driver async error", "error", err)
	}

	source, err := NewGatewaySource(
		cfg.gateway,
		WithGatewayLogger(driverLogger),
		WithGatewayErrorHandler(reportError),
	)
	if err != nil {
		return cord.EventSource{}, nil, fmt.Errorf("new discord gateway source: %w", err)
	}

	driver, err := NewDriver(
		source,
		NewDefaultDecoder(),
		WithName(name),
		WithPublishTimeout(cfg.publishTimeout),
		WithErrorHandler(reportError),
	)
	if err != nil {
		return cord.EventSource{}, nil, fmt.Errorf("new discord driver: %w", err)
	}

	return cord.EventSource{
		Platform: DriverPlatform,
		ID:       name,
	}, driver, nil
}

func parseRuntimeConfig(raw map[string]any) (parsedRuntimeConfig, error) {
	if raw == nil {
		return parsedRuntimeConfig{}, fmt.Errorf("missing config")
	}

	var parsed runtimeConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &parsed,
		TagName:     "json",
	})
	if err != nil {
		return parsedRuntimeConfig{}, fmt.Errorf("new config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return parsedRuntimeConfig{}, fmt.Errorf("decode: %w", err)
	}

	cfg := parsedRuntimeConfig{
		publishTimeout: parsed.PublishTimeout,
		gateway: GatewayConfig{
			Token:        strings.TrimSpace(parsed.Token),
			Intents:      DefaultIntents,
			ShardIDs:     parsed.ShardIDs,
			ShardCount:   parsed.ShardCount,
			CloseTimeout: parsed.CloseTimeout,
		},
	}
	if cfg.gateway.Token == "" {
		return parsedRuntimeConfig{}, fmt.Errorf("token is required")
	}
	if parsed.Intents != nil {
		if *parsed.Intents <= 0 {
			return parsedRuntimeConfig{}, fmt.Errorf("intents must be > 0")
		}
		cfg.gateway.Intents = gateway.Intents(*parsed.Intents)
	}
	if parsed.PublishTimeout < 0 {
		return parsedRuntimeConfig{}, fmt.Errorf("publish_timeout must be >= 0")
	}
	if parsed.CloseTimeout < 0 {
		return parsedRuntimeConfig{}, fmt.Errorf("close_timeout must be >= 0")
	}
	if parsed.ShardCount < 0 {
		return parsedRuntimeConfig{}, fmt.Errorf("shard_count must be >= 0")
	}
	if len(parsed.ShardIDs) > 0 && parsed.ShardCount == 0 {
		return parsedRuntimeConfig{}, fmt.Errorf("shard_ids requires shard_count")
	}
	for _, shardID := range parsed.ShardIDs {
		if shardID < 0 || shardID >= parsed.ShardCount {
			return parsedRuntimeConfig{}, fmt.Errorf("shard id %d out of range [0, %d)", shardID, parsed.ShardCount)
		}
	}

	return cfg, nil
}
