// Package guildcache provides the kernel module that keeps a local Discord
// state cache in sync with one driver's gateway events and serves it to other
// modules as a cord.GuildCache service.
package guildcache
