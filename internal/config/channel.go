// Package config provides configuration types for lightctl.
package config

import "context"

// Channel is the host-provided bidirectional message transport shared by
// all commands and requests. Implement this to bridge lightctl onto a
// webview page-message primitive, a WebSocket, or a fake for testing.
//
// The channel is process-wide state owned by the embedding host; lightctl
// takes an injected instance rather than reaching for a global so tests can
// substitute a fake and count listener registrations.
type Channel interface {
	// Emit writes one raw message to the host channel. It must not block
	// the caller beyond enqueuing. Returns a ChannelUnavailableError when
	// the channel is closed or was never connected.
	Emit(ctx context.Context, raw []byte) error

	// Subscribe registers a listener invoked once per inbound raw message,
	// in the order messages arrive. Every subscriber receives every
	// message (broadcast, not filtered); filtering by type belongs to the
	// protocol layer. The returned function deregisters the listener and
	// is safe to call more than once.
	Subscribe(fn func(raw []byte)) (cancel func())

	// Close releases the channel. Safe to call multiple times. Emit after
	// Close fails with a ChannelUnavailableError.
	Close() error
}
