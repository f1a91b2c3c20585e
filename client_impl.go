package lightctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/beamworks/lightctl/internal/config"
	lighterrors "github.com/beamworks/lightctl/internal/errors"
	"github.com/beamworks/lightctl/internal/protocol"
)

// clientImpl is the concrete Client.
type clientImpl struct {
	mu         sync.Mutex
	started    bool
	closed     bool
	log        *slog.Logger
	options    *clientOptions
	controller *protocol.Controller
}

func newClientImpl() *clientImpl {
	return &clientImpl{}
}

// Start attaches the client to its channel and begins routing envelopes.
func (c *clientImpl) Start(ctx context.Context, opts ...Option) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return lighterrors.ErrClientClosed
	}

	if c.started {
		return lighterrors.ErrClientAlreadyStarted
	}

	options := applyOptions(opts)

	if options.cfg.Channel == nil {
		return &lighterrors.ChannelUnavailableError{Err: errors.New("no channel configured")}
	}

	log := options.cfg.Logger
	if log == nil {
		log = NopLogger()
	}

	controller := protocol.NewController(log, options.cfg.Channel, options.cfg.Buffer())

	for _, reg := range options.handlers {
		handler, err := wrapWithSchema(reg.schema, reg.handler)
		if err != nil {
			return fmt.Errorf("handler %q: %w", reg.typ, err)
		}

		controller.RegisterHandler(reg.typ, handler)
	}

	if err := controller.Start(ctx); err != nil {
		return fmt.Errorf("start controller: %w", err)
	}

	c.log = log
	c.options = options
	c.controller = controller
	c.started = true

	c.log.Debug("Client started")

	return nil
}

// ready returns the controller and effective configuration, or the
// lifecycle error preventing use.
func (c *clientImpl) ready() (*protocol.Controller, *config.Options, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, nil, lighterrors.ErrClientClosed
	}

	if !c.started {
		return nil, nil, lighterrors.ErrClientNotStarted
	}

	return c.controller, &c.options.cfg, nil
}

// Send emits a fire-and-forget command.
func (c *clientImpl) Send(ctx context.Context, typ string, payload map[string]any) error {
	controller, _, err := c.ready()
	if err != nil {
		return err
	}

	return controller.Send(ctx, typ, payload)
}

// Request sends a command and awaits its correlated response.
func (c *clientImpl) Request(ctx context.Context, typ string, payload map[string]any) (map[string]any, error) {
	controller, cfg, err := c.ready()
	if err != nil {
		return nil, err
	}

	return controller.Request(ctx, typ, payload, cfg.Timeout())
}

// OnRequest registers a handler for requests the host sends this way.
func (c *clientImpl) OnRequest(typ string, handler RequestHandler) error {
	controller, _, err := c.ready()
	if err != nil {
		return err
	}

	controller.RegisterHandler(typ, handler)

	return nil
}

// Events returns the host push event channel. Nil before Start.
func (c *clientImpl) Events() <-chan *Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.controller == nil {
		return nil
	}

	return c.controller.Events()
}

// Done returns a channel closed when protocol handling stops. Nil before
// Start.
func (c *clientImpl) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.controller == nil {
		return nil
	}

	return c.controller.Done()
}

// Close stops protocol handling. The injected channel stays with its
// owner. Safe to call multiple times.
func (c *clientImpl) Close() error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()

		return nil
	}

	c.closed = true
	controller := c.controller
	c.mu.Unlock()

	if controller != nil {
		controller.Stop()
	}

	return nil
}
