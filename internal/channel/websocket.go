package channel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/beamworks/lightctl/internal/config"
	lighterrors "github.com/beamworks/lightctl/internal/errors"
)

// sendQueueSize bounds outbound messages buffered while the write pump
// drains to the wire.
const sendQueueSize = 256

// WebSocket adapts the host's IPC WebSocket endpoint to the Channel
// contract. Inbound text frames fan out through an internal Hub; outbound
// messages go through a buffered queue so Emit never blocks on the wire.
type WebSocket struct {
	id   string
	log  *slog.Logger
	conn *websocket.Conn
	hub  *Hub

	sendCh chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	closeOnce sync.Once
}

var _ config.Channel = (*WebSocket)(nil)

// DialWebSocket connects to the host's IPC endpoint (e.g. ws://host/ipc)
// and starts the read/write pumps. The pumps outlive ctx; use Close to
// tear the channel down.
func DialWebSocket(ctx context.Context, url string, log *slog.Logger) (*WebSocket, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	conn, resp, err := websocket.Dial(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		return nil, &lighterrors.ChannelUnavailableError{Err: err}
	}

	pumpCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	group, pumpCtx := errgroup.WithContext(pumpCtx)

	socketID := uuid.New().String()

	w := &WebSocket{
		id:     socketID,
		log:    log.With("component", "channel", "socket_id", socketID),
		conn:   conn,
		hub:    NewHub(log, nil),
		sendCh: make(chan []byte, sendQueueSize),
		ctx:    pumpCtx,
		cancel: cancel,
		group:  group,
	}

	group.Go(w.readPump)
	group.Go(w.writePump)

	w.log.Debug("WebSocket channel connected", "url", url)

	return w, nil
}

// Emit enqueues one raw message for the write pump.
func (w *WebSocket) Emit(ctx context.Context, raw []byte) error {
	select {
	case <-w.ctx.Done():
		return &lighterrors.ChannelUnavailableError{Err: lighterrors.ErrChannelClosed}
	default:
	}

	select {
	case w.sendCh <- raw:
		return nil
	case <-w.ctx.Done():
		return &lighterrors.ChannelUnavailableError{Err: lighterrors.ErrChannelClosed}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ID returns the connection identifier carried in this channel's log lines.
func (w *WebSocket) ID() string {
	return w.id
}

// Subscribe registers a listener for all inbound messages.
func (w *WebSocket) Subscribe(fn func(raw []byte)) func() {
	return w.hub.Subscribe(fn)
}

// SubscriberCount reports the number of active subscribers.
func (w *WebSocket) SubscriberCount() int {
	return w.hub.SubscriberCount()
}

// Close tears down the connection and waits for the pumps to exit.
// Safe to call multiple times.
func (w *WebSocket) Close() error {
	w.closeOnce.Do(func() {
		w.cancel()
		_ = w.conn.Close(websocket.StatusNormalClosure, "")

		if err := w.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Debug("WebSocket pumps exited", "error", err)
		}

		_ = w.hub.Close()
		w.log.Debug("WebSocket channel closed")
	})

	return nil
}

func (w *WebSocket) readPump() error {
	for {
		_, data, err := w.conn.Read(w.ctx)
		if err != nil {
			w.log.Debug("WebSocket read pump stopped", "error", err)

			return err
		}

		w.hub.Dispatch(data)
	}
}

func (w *WebSocket) writePump() error {
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case msg := <-w.sendCh:
			if err := w.conn.Write(w.ctx, websocket.MessageText, msg); err != nil {
				w.log.Debug("WebSocket write pump stopped", "error", err)

				return err
			}
		}
	}
}
