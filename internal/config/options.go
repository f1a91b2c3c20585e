package config

import (
	"log/slog"
	"time"
)

// DefaultRequestTimeout bounds how long a Request waits for its response
// when no explicit timeout is configured.
const DefaultRequestTimeout = 10 * time.Second

// DefaultEventBuffer is the capacity of the host-event channel.
const DefaultEventBuffer = 100

// Options configures the behavior of a lightctl client.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Channel is the host transport the client rides on. Required.
	Channel Channel

	// RequestTimeout bounds how long Request waits for a correlated
	// response. Zero means DefaultRequestTimeout.
	RequestTimeout time.Duration

	// EventBuffer is the capacity of the Events() channel. Zero means
	// DefaultEventBuffer. Events arriving while the buffer is full are
	// dropped with a warning rather than blocking the channel pump.
	EventBuffer int
}

// Timeout returns the effective request timeout.
func (o *Options) Timeout() time.Duration {
	if o.RequestTimeout > 0 {
		return o.RequestTimeout
	}

	return DefaultRequestTimeout
}

// Buffer returns the effective event buffer capacity.
func (o *Options) Buffer() int {
	if o.EventBuffer > 0 {
		return o.EventBuffer
	}

	return DefaultEventBuffer
}
