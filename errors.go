package lightctl

import "github.com/beamworks/lightctl/internal/errors"

// Re-export error types from internal package

// DecodeError indicates an inbound message is not a valid envelope.
// The protocol layer drops such messages silently; this type surfaces only
// through logs and direct codec use.
type DecodeError = errors.DecodeError

// ChannelUnavailableError indicates the host channel is missing or closed.
type ChannelUnavailableError = errors.ChannelUnavailableError

// LightctlError is the base interface for all lightctl errors.
type LightctlError = errors.LightctlError

// Re-export sentinel errors from internal package.
var (
	// ErrClientNotStarted indicates the client has not been started yet.
	ErrClientNotStarted = errors.ErrClientNotStarted

	// ErrClientAlreadyStarted indicates the client is already started.
	ErrClientAlreadyStarted = errors.ErrClientAlreadyStarted

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.ErrClientClosed

	// ErrChannelClosed indicates the channel has been closed.
	ErrChannelClosed = errors.ErrChannelClosed

	// ErrRequestTimeout indicates a request timed out waiting for its response.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrControllerStopped indicates the protocol controller has stopped.
	ErrControllerStopped = errors.ErrControllerStopped
)
