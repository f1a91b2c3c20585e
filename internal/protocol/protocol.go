package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/beamworks/lightctl/internal/config"
	"github.com/beamworks/lightctl/internal/envelope"
	lighterrors "github.com/beamworks/lightctl/internal/errors"
)

// Controller multiplexes commands, correlated requests, inbound host
// requests, and host push events over a single injected channel.
//
// The Controller must be started with Start() before use. It owns exactly
// one subscription on the channel; per-call state lives in its pending
// registry, so concurrent Request calls never interfere.
type Controller struct {
	log *slog.Logger
	ch  config.Channel

	// Request tracking: by correlation ID, plus FIFO registration order
	// per response type for hosts that do not echo the ID.
	pendingMu sync.Mutex
	pending   map[string]*pendingRequest
	order     map[string][]string

	// Handler registry for requests arriving from the host.
	handlersMu sync.RWMutex
	handlers   map[string]Handler

	// Host push events forwarded to the application.
	events chan *envelope.Envelope

	// Fatal error handling - stores error and broadcasts via done channel.
	errMu    sync.RWMutex
	fatalErr error

	// Lifecycle management.
	unsubscribe   func()
	handlerCancel context.CancelFunc
	closeOnce     sync.Once
	done          chan struct{}
	wg            sync.WaitGroup
}

// NewController creates a protocol controller over the given channel.
//
// The logger receives debug and warn messages during protocol operations.
// eventBuffer sets the capacity of the Events() channel; values <= 0 fall
// back to the configured default.
func NewController(log *slog.Logger, ch config.Channel, eventBuffer int) *Controller {
	if eventBuffer <= 0 {
		eventBuffer = config.DefaultEventBuffer
	}

	return &Controller{
		log:      log.With("component", "protocol"),
		ch:       ch,
		pending:  make(map[string]*pendingRequest, 10),
		order:    make(map[string][]string, 10),
		handlers: make(map[string]Handler, 10),
		events:   make(chan *envelope.Envelope, eventBuffer),
		done:     make(chan struct{}),
	}
}

// closeDone safely closes the done channel exactly once.
func (c *Controller) closeDone() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// SetFatalError stores a fatal error and broadcasts to all waiters by
// closing done. Host glue calls this when the underlying channel dies.
func (c *Controller) SetFatalError(err error) {
	c.errMu.Lock()

	if c.fatalErr == nil {
		c.fatalErr = err
	}

	c.errMu.Unlock()

	c.closeDone()
}

// FatalError returns the fatal error if one occurred.
func (c *Controller) FatalError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.fatalErr
}

// Done returns a channel that is closed when the controller stops.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Start subscribes the controller to the channel and begins routing
// inbound envelopes. Must be called before Send, Request, or any handler
// will work.
func (c *Controller) Start(ctx context.Context) error {
	c.log.Debug("Starting protocol controller")

	handlerCtx, cancel := context.WithCancel(ctx)
	c.handlerCancel = cancel

	c.unsubscribe = c.ch.Subscribe(func(raw []byte) {
		c.handleRaw(handlerCtx, raw)
	})

	c.log.Debug("Protocol controller started")

	return nil
}

// Stop gracefully shuts down the controller.
//
// It deregisters the channel subscription, cancels running handlers, and
// fails any in-flight Request calls with ErrControllerStopped. Safe to
// call multiple times.
func (c *Controller) Stop() {
	c.log.Debug("Stopping protocol controller")

	c.closeDone()

	if c.unsubscribe != nil {
		c.unsubscribe()
	}

	if c.handlerCancel != nil {
		c.handlerCancel()
	}

	c.wg.Wait()
	c.log.Debug("Protocol controller stopped")
}

// Events returns the channel carrying host push events: inbound envelopes
// that are neither responses nor registered-handler requests.
//
// The channel is never closed; select on Done() to detect shutdown.
// Events arriving while the buffer is full are dropped with a warning so
// a slow consumer cannot stall channel delivery.
func (c *Controller) Events() <-chan *envelope.Envelope {
	return c.events
}

// Send emits a fire-and-forget command. It returns once the message is
// enqueued on the channel; no acknowledgment is awaited and no delivery
// failure is surfaced beyond the channel's own availability.
func (c *Controller) Send(ctx context.Context, typ string, payload map[string]any) error {
	raw, err := envelope.Encode(typ, "", payload)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	if err := c.ch.Emit(ctx, raw); err != nil {
		c.log.Warn("Failed to emit command", "type", typ, "error", err)

		return fmt.Errorf("emit command: %w", err)
	}

	c.log.Debug("Command sent", "type", typ)

	return nil
}

// Request sends a command and blocks until the matching response arrives,
// the timeout expires, the caller's context is cancelled, or the
// controller stops. Exactly one of those settles the call, exactly once.
//
// The returned payload is the response envelope with the reserved fields
// stripped.
func (c *Controller) Request(
	ctx context.Context,
	typ string,
	payload map[string]any,
	timeout time.Duration,
) (map[string]any, error) {
	requestID := ulid.Make().String()
	responseType := envelope.ResponseType(typ)

	pending := &pendingRequest{
		id:           requestID,
		responseType: responseType,
		response:     make(chan map[string]any, 1),
	}

	c.pendingMu.Lock()
	c.pending[requestID] = pending
	c.order[responseType] = append(c.order[responseType], requestID)
	c.pendingMu.Unlock()

	raw, err := envelope.Encode(typ, requestID, payload)
	if err != nil {
		c.removePending(requestID)

		return nil, fmt.Errorf("encode request: %w", err)
	}

	if err := c.ch.Emit(ctx, raw); err != nil {
		c.removePending(requestID)
		c.log.Warn("Failed to emit request", "type", typ, "request_id", requestID, "error", err)

		return nil, fmt.Errorf("emit request: %w", err)
	}

	c.log.Debug("Request sent, waiting for response",
		"type", typ, "request_id", requestID, "timeout", timeout)

	select {
	case respPayload := <-pending.response:
		c.log.Debug("Response received", "type", responseType, "request_id", requestID)

		return respPayload, nil

	case <-c.done:
		c.removePending(requestID)

		if err := c.FatalError(); err != nil {
			return nil, fmt.Errorf("channel error: %w", err)
		}

		return nil, lighterrors.ErrControllerStopped

	case <-time.After(timeout):
		c.removePending(requestID)
		c.log.Warn("Request timed out", "type", typ, "request_id", requestID, "timeout", timeout)

		return nil, fmt.Errorf("%w: no %s within %s", lighterrors.ErrRequestTimeout, responseType, timeout)

	case <-ctx.Done():
		c.removePending(requestID)
		c.log.Debug("Request cancelled", "type", typ, "request_id", requestID)

		return nil, ctx.Err()
	}
}

// RegisterHandler registers a handler for requests the host sends to this
// process. One handler per type; registering again overrides the previous
// handler.
func (c *Controller) RegisterHandler(typ string, handler Handler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	c.log.Debug("Registering request handler", "type", typ)
	c.handlers[typ] = handler
}

// PendingCount reports the number of in-flight requests. Tests use this to
// assert registration and cleanup.
func (c *Controller) PendingCount() int {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	return len(c.pending)
}

// removePending deletes a pending request from both indexes. No-op when
// the request has already been claimed.
func (c *Controller) removePending(requestID string) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	c.removePendingLocked(requestID)
}

func (c *Controller) removePendingLocked(requestID string) {
	pending, exists := c.pending[requestID]
	if !exists {
		return
	}

	delete(c.pending, requestID)

	ids := c.order[pending.responseType]
	for i, id := range ids {
		if id == requestID {
			ids = append(ids[:i], ids[i+1:]...)

			break
		}
	}

	if len(ids) == 0 {
		delete(c.order, pending.responseType)
	} else {
		c.order[pending.responseType] = ids
	}
}

// handleRaw is the channel subscription callback: decode, then route.
// Malformed inbound traffic is dropped here and never reaches a caller.
func (c *Controller) handleRaw(ctx context.Context, raw []byte) {
	env, err := envelope.Decode(raw)
	if err != nil {
		c.log.Debug("Dropping malformed inbound message", "error", err)

		return
	}

	if envelope.IsResponseType(env.Type) {
		if c.resolvePending(env) {
			return
		}

		c.log.Warn("Dropping unmatched response", "type", env.Type, "id", env.ID)

		return
	}

	c.handlersMu.RLock()
	handler, exists := c.handlers[env.Type]
	c.handlersMu.RUnlock()

	if exists {
		c.dispatchHandler(ctx, env, handler)

		return
	}

	c.forwardEvent(env)
}

// resolvePending claims the pending request matching a response envelope.
//
// A response echoing a known correlation ID resolves exactly that call; an
// ID-less response resolves the oldest call awaiting this response type; a
// response with an unknown ID is stale and resolves nothing. Claiming
// happens under the lock, so a response is consumed by at most one call.
func (c *Controller) resolvePending(env *envelope.Envelope) bool {
	c.pendingMu.Lock()

	var match *pendingRequest

	if env.ID != "" {
		if p, ok := c.pending[env.ID]; ok && p.responseType == env.Type {
			match = p
		}
	} else if ids := c.order[env.Type]; len(ids) > 0 {
		match = c.pending[ids[0]]
	}

	if match == nil {
		c.pendingMu.Unlock()

		return false
	}

	c.removePendingLocked(match.id)
	c.pendingMu.Unlock()

	// We own the entry now; the channel is buffered so this never blocks.
	match.response <- env.Payload

	return true
}

// dispatchHandler runs a registered handler on its own goroutine and sends
// its result back as "<type>-response", echoing the correlation ID.
func (c *Controller) dispatchHandler(ctx context.Context, env *envelope.Envelope, handler Handler) {
	c.log.Debug("Handling host request", "type", env.Type, "id", env.ID)

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		result, err := handler(ctx, env.Payload)
		if err != nil {
			c.log.Warn("Handler returned error", "type", env.Type, "error", err)
			c.respond(ctx, env, map[string]any{"error": err.Error()})

			return
		}

		c.respond(ctx, env, result)
	}()
}

// respond emits a response envelope for an inbound host request.
func (c *Controller) respond(ctx context.Context, env *envelope.Envelope, payload map[string]any) {
	raw, err := envelope.Encode(envelope.ResponseType(env.Type), env.ID, payload)
	if err != nil {
		c.log.Warn("Failed to encode response", "type", env.Type, "error", err)

		return
	}

	if err := c.ch.Emit(ctx, raw); err != nil {
		if ctx.Err() != nil {
			c.log.Debug("Could not send response during shutdown", "error", err)

			return
		}

		c.log.Warn("Failed to emit response", "type", env.Type, "error", err)
	}
}

// forwardEvent hands a host push event to the application without ever
// blocking channel delivery.
func (c *Controller) forwardEvent(env *envelope.Envelope) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.events <- env:
	default:
		c.log.Warn("Event buffer full, dropping event", "type", env.Type)
	}
}
