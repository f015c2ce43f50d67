package cord

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
)

// RPCOpcode identifies the kind of a local RPC frame.
type RPCOpcode uint32

const (
	// RPCOpcodeHandshake opens a session.
	RPCOpcodeHandshake RPCOpcode = iota
	// RPCOpcodeFrame carries a command, response or dispatch.
	RPCOpcodeFrame
	// RPCOpcodeClose terminates the session.
	RPCOpcodeClose
	// RPCOpcodePing requests a pong.
	RPCOpcodePing
	// RPCOpcodePong answers a ping.
	RPCOpcodePong
)

// String returns the opcode name.
func (o RPCOpcode) String() string {
	switch o {
	case RPCOpcodeHandshake:
		return "handshake"
	case RPCOpcodeFrame:
		return "frame"
	case RPCOpcodeClose:
		return "close"
	case RPCOpcodePing:
		return "ping"
	case RPCOpcodePong:
		return "pong"
	default:
		return fmt.Sprintf("opcode(%d)", uint32(o))
	}
}

// RPCFrame is one decoded local RPC message.
//
// Requests carry a client generated Nonce; responses echo it. Frames without a
// pending nonce are event dispatches.
type RPCFrame struct {
	Opcode  RPCOpcode       `json:"-"`
	Nonce   string          `json:"nonce,omitempty"`
	Command string          `json:"cmd,omitempty"`
	Event   string          `json:"evt,omitempty"`
	Args    json.RawMessage `json:"args,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// IsError reports whether the frame is an error response.
func (f RPCFrame) IsError() bool {
	return f.Event == "ERROR"
}

// RPCTransport exchanges frames with the desktop client over a local IPC pipe
// or WebSocket.
type RPCTransport interface {
	// Send writes one frame.
	Send(ctx context.Context, frame RPCFrame) error
	// Receive blocks for the next frame.
	Receive(ctx context.Context) (RPCFrame, error)
	// Close ends the session.
	Close() error
}

const ipcSocketCount = 10

// IPCPathCandidates lists the local IPC endpoints tried in order for goos.
// getenv resolves environment variables.
func IPCPathCandidates(goos string, getenv func(string) string) []string {
	candidates := make([]string, 0, ipcSocketCount)
	if goos == "windows" {
		for index := 0; index < ipcSocketCount; index++ {
			candidates = append(candidates, fmt.Sprintf(`\\?\pipe\discord-ipc-%d`, index))
		}

		return candidates
	}

	base := "/tmp"
	for _, key := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if value := getenv(key); value != "" {
			base = value
			break
		}
	}
	for index := 0; index < ipcSocketCount; index++ {
		candidates = append(candidates, path.Join(base, fmt.Sprintf("discord-ipc-%d", index)))
	}

	return candidates
}
