package lightctl

import (
	"context"
	"time"

	"github.com/beamworks/lightctl/internal/protocol"
)

// RequestHandler answers a request envelope the host sends to this
// process. The returned payload is sent back as "<type>-response".
type RequestHandler = protocol.Handler

// Client is the control surface over a host channel: fire-and-forget
// commands, correlated requests, inbound host requests, and host push
// events, all multiplexed on one injected Channel.
//
// Lifecycle: clients are single-use. After Close(), create a new one with
// New().
//
// Example usage:
//
//	client := lightctl.New()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    lightctl.WithChannel(ch),
//	    lightctl.WithLogger(slog.Default()),
//	    lightctl.WithRequestTimeout(2*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.SetMode(ctx, lightctl.ModeAuto); err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg, err := client.GetConfig(ctx)
type Client interface {
	// Start attaches the client to its channel and begins routing
	// inbound envelopes. Must be called before any other method.
	// Returns a ChannelUnavailableError when no channel is configured.
	Start(ctx context.Context, opts ...Option) error

	// Send emits a fire-and-forget command. It returns once the message
	// is enqueued; no acknowledgment is awaited.
	Send(ctx context.Context, typ string, payload map[string]any) error

	// Request sends a command and blocks until the correlated
	// "<typ>-response" envelope arrives, the configured timeout expires
	// (ErrRequestTimeout), or ctx is cancelled. The returned payload is
	// the response envelope with the reserved fields stripped.
	Request(ctx context.Context, typ string, payload map[string]any) (map[string]any, error)

	// OnRequest registers a handler for requests the host sends to this
	// process. One handler per type; registering again overrides.
	OnRequest(typ string, handler RequestHandler) error

	// Events returns the channel carrying host push events. Nil before
	// Start. The channel is never closed; select on Done().
	Events() <-chan *Envelope

	// Done returns a channel closed when protocol handling stops.
	// Nil before Start.
	Done() <-chan struct{}

	// SetColor sets the fixed color, e.g. 0xFF0000.
	SetColor(ctx context.Context, color int) error

	// SetToggleColor sets the secondary color used in toggle mode.
	SetToggleColor(ctx context.Context, color int) error

	// SetToggleSpeed sets the toggle interval.
	SetToggleSpeed(ctx context.Context, speed time.Duration) error

	// SetStrobeSpeed sets the strobe interval.
	SetStrobeSpeed(ctx context.Context, speed time.Duration) error

	// SetMode switches the host's output mode.
	SetMode(ctx context.Context, mode Mode) error

	// GetConfig requests the host's current configuration.
	GetConfig(ctx context.Context) (map[string]any, error)

	// Close stops protocol handling and fails in-flight requests. The
	// injected channel stays open; it belongs to the host. Safe to call
	// multiple times.
	Close() error
}

// New creates a new client.
//
// Call Start with options to attach it to a channel:
//
//	client := lightctl.New()
//	err := client.Start(ctx, lightctl.WithChannel(ch))
func New() Client {
	return newClientImpl()
}
