package discord

import (
	"encoding/json"
	"time"

	"github.com/disgoorg/disgo/gateway"
)

// Dispatch is one raw gateway dispatch before decoding.
type Dispatch struct {
	// Type is the gateway dispatch name, for example GUILD_CREATE.
	Type gateway.EventType
	// ShardID is the shard that delivered the dispatch.
	ShardID int
	// Sequence is the gateway sequence number.
	Sequence int
	// ReceivedAt is when the source read the dispatch.
	ReceivedAt time.Time
	// Data is the undecoded "d" field of the dispatch.
	Data json.RawMessage
}
