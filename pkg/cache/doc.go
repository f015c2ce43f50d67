// Package cache implements an in-memory read model of guild state fed by
// gateway events.
//
// A Cache owns one Table per entity type and a set of membership indices that
// map a parent id (guild, channel, thread) to the ordered ids of its children.
// Apply dispatches each payload to one handler that mutates tables and indices
// together, so after every call each indexed id has a table entry.
//
// A Cache is not safe for concurrent use. Hosts that deliver events from more
// than one goroutine must serialize Apply and reads behind their own lock.
package cache
