package discord

import "ex-cordcache/pkg/cord"

const (
	// DriverType is the configured driver type token for the Discord runtime.
	DriverType = "discord"
	// DriverPlatform is the platform produced by the Discord runtime.
	DriverPlatform cord.Platform = cord.PlatformDiscord
)
