package lightctl

import (
	"context"
	"log/slog"

	"github.com/beamworks/lightctl/internal/channel"
	"github.com/beamworks/lightctl/internal/config"
	"github.com/beamworks/lightctl/internal/envelope"
)

// Channel is the host-provided bidirectional message transport shared by
// all commands and requests. Implement this to bridge lightctl onto a
// custom primitive, or use NewHostChannel / DialWebSocket.
//
// Custom channels can be injected via WithChannel; tests typically inject
// a fake to assert on emitted wire messages.
type Channel = config.Channel

// Envelope is the {type, id, payload} unit of communication over the
// channel, as yielded by Events().
type Envelope = envelope.Envelope

// PostFunc writes one raw message to the host. It must not block beyond
// enqueuing.
type PostFunc = channel.PostFunc

// HostChannel adapts a callback-style host primitive (e.g. a webview's
// postMessage pair) to the Channel contract. The host's inbound message
// callback is wired to Dispatch.
type HostChannel = channel.Hub

// WebSocketChannel adapts the host's IPC WebSocket endpoint to the
// Channel contract.
type WebSocketChannel = channel.WebSocket

// NewHostChannel creates a channel over a host post primitive.
func NewHostChannel(log *slog.Logger, post PostFunc) *HostChannel {
	return channel.NewHub(log, post)
}

// DialWebSocket connects to the host's IPC endpoint (e.g.
// ws://localhost:8080/ipc) and starts the channel pumps.
func DialWebSocket(ctx context.Context, url string, log *slog.Logger) (*WebSocketChannel, error) {
	return channel.DialWebSocket(ctx, url, log)
}

// ResponseType derives the response type name for a request type, e.g.
// "getConfig" -> "getConfig-response". Hosts reply to a request by echoing
// its "id" field under this derived type.
func ResponseType(typ string) string {
	return envelope.ResponseType(typ)
}
