package channel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/beamworks/lightctl/internal/config"
	lighterrors "github.com/beamworks/lightctl/internal/errors"
)

// PostFunc writes one raw message to the host. It must not block beyond
// enqueuing; delivery guarantees are the host's.
type PostFunc func(ctx context.Context, raw []byte) error

// Hub adapts a callback-style host primitive (e.g. a webview's postMessage)
// to the Channel contract and fans every inbound message out to all
// subscribers in arrival order.
//
// The embedding host wires its inbound message callback to Dispatch.
type Hub struct {
	log  *slog.Logger
	post PostFunc

	mu     sync.Mutex
	subs   []subscription
	nextID int
	closed bool
}

type subscription struct {
	id int
	fn func(raw []byte)
}

var _ config.Channel = (*Hub)(nil)

// NewHub creates a channel over a host post primitive.
func NewHub(log *slog.Logger, post PostFunc) *Hub {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Hub{
		log:  log.With("component", "channel"),
		post: post,
	}
}

// Emit writes one raw message to the host channel.
func (h *Hub) Emit(ctx context.Context, raw []byte) error {
	h.mu.Lock()
	closed := h.closed
	post := h.post
	h.mu.Unlock()

	if closed {
		return &lighterrors.ChannelUnavailableError{Err: lighterrors.ErrChannelClosed}
	}

	if post == nil {
		return &lighterrors.ChannelUnavailableError{Err: errors.New("no post primitive configured")}
	}

	if err := post(ctx, raw); err != nil {
		return &lighterrors.ChannelUnavailableError{Err: err}
	}

	return nil
}

// Subscribe registers a listener for all inbound messages and returns its
// deregistration handle. The handle is idempotent.
func (h *Hub) Subscribe(fn func(raw []byte)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs = append(h.subs, subscription{id: id, fn: fn})

	var once sync.Once

	return func() {
		once.Do(func() {
			h.unsubscribe(id)
		})
	}
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)

			return
		}
	}
}

// Dispatch delivers one inbound raw message to every subscriber, in
// registration order. The host glue calls this once per inbound message,
// in the order the host delivers them.
func (h *Hub) Dispatch(raw []byte) {
	h.mu.Lock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	closed := h.closed
	h.mu.Unlock()

	if closed {
		h.log.Debug("Dropping inbound message on closed channel")

		return
	}

	for _, s := range subs {
		s.fn(raw)
	}
}

// SubscriberCount reports the number of active subscribers. Tests use this
// to assert listener registration and cleanup.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// Close marks the channel closed. Safe to call multiple times.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	h.subs = nil

	return nil
}
