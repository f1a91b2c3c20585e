package lightctl

import (
	"log/slog"
	"time"

	"github.com/beamworks/lightctl/internal/config"
)

// Option configures a client using the functional options pattern.
type Option func(*clientOptions)

// clientOptions collects configuration applied at Start.
type clientOptions struct {
	cfg      config.Options
	handlers []handlerRegistration
}

type handlerRegistration struct {
	typ     string
	schema  *Schema
	handler RequestHandler
}

// applyOptions applies functional options to a fresh clientOptions.
func applyOptions(opts []Option) *clientOptions {
	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.cfg.Logger = logger
	}
}

// WithChannel injects the host channel the client rides on. Required.
func WithChannel(ch Channel) Option {
	return func(o *clientOptions) {
		o.cfg.Channel = ch
	}
}

// WithRequestTimeout bounds how long Request waits for a correlated
// response before rejecting with ErrRequestTimeout. Defaults to 10s.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.cfg.RequestTimeout = timeout
	}
}

// WithEventBuffer sets the capacity of the Events() channel. Events
// arriving while the buffer is full are dropped rather than blocking
// channel delivery. Defaults to 100.
func WithEventBuffer(size int) Option {
	return func(o *clientOptions) {
		o.cfg.EventBuffer = size
	}
}

// WithHandler registers a handler for requests the host sends to this
// process. Equivalent to calling OnRequest after Start.
func WithHandler(typ string, handler RequestHandler) Option {
	return func(o *clientOptions) {
		o.handlers = append(o.handlers, handlerRegistration{typ: typ, handler: handler})
	}
}

// WithHandlerSchema registers a handler whose request payload must conform
// to the given JSON schema. Non-conforming payloads produce an error
// response without invoking the handler.
func WithHandlerSchema(typ string, schema *Schema, handler RequestHandler) Option {
	return func(o *clientOptions) {
		o.handlers = append(o.handlers, handlerRegistration{typ: typ, schema: schema, handler: handler})
	}
}
