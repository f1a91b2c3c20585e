package channel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	lighterrors "github.com/beamworks/lightctl/internal/errors"
)

// recordingPost collects emitted messages.
type recordingPost struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *recordingPost) post(_ context.Context, raw []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, raw)

	return nil
}

func (p *recordingPost) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.messages)
}

func TestHub_EmitCallsPost(t *testing.T) {
	rec := &recordingPost{}
	hub := NewHub(nil, rec.post)

	require.NoError(t, hub.Emit(context.Background(), []byte(`{"type":"setColor"}`)))
	require.NoError(t, hub.Emit(context.Background(), []byte(`{"type":"setMode"}`)))
	require.Equal(t, 2, rec.count())
}

func TestHub_EmitPostFailure(t *testing.T) {
	hub := NewHub(nil, func(context.Context, []byte) error {
		return errors.New("host gone")
	})

	err := hub.Emit(context.Background(), []byte("x"))
	require.Error(t, err)

	var unavailable *lighterrors.ChannelUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestHub_EmitWithoutPost(t *testing.T) {
	hub := NewHub(nil, nil)

	var unavailable *lighterrors.ChannelUnavailableError
	require.ErrorAs(t, hub.Emit(context.Background(), []byte("x")), &unavailable)
}

func TestHub_BroadcastInOrder(t *testing.T) {
	hub := NewHub(nil, nil)

	var first, second []string

	hub.Subscribe(func(raw []byte) { first = append(first, string(raw)) })
	hub.Subscribe(func(raw []byte) { second = append(second, string(raw)) })

	hub.Dispatch([]byte("one"))
	hub.Dispatch([]byte("two"))
	hub.Dispatch([]byte("three"))

	// All subscribers see all messages, in arrival order.
	require.Equal(t, []string{"one", "two", "three"}, first)
	require.Equal(t, []string{"one", "two", "three"}, second)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub(nil, nil)

	var got []string

	cancel := hub.Subscribe(func(raw []byte) { got = append(got, string(raw)) })
	require.Equal(t, 1, hub.SubscriberCount())

	hub.Dispatch([]byte("before"))
	cancel()
	require.Equal(t, 0, hub.SubscriberCount())

	hub.Dispatch([]byte("after"))
	require.Equal(t, []string{"before"}, got)

	// Idempotent.
	cancel()
	require.Equal(t, 0, hub.SubscriberCount())
}

func TestHub_UnsubscribeDoesNotAffectOthers(t *testing.T) {
	hub := NewHub(nil, nil)

	var kept []string

	cancel := hub.Subscribe(func([]byte) {})
	hub.Subscribe(func(raw []byte) { kept = append(kept, string(raw)) })
	cancel()

	hub.Dispatch([]byte("msg"))
	require.Equal(t, []string{"msg"}, kept)
	require.Equal(t, 1, hub.SubscriberCount())
}

func TestHub_EmitAfterClose(t *testing.T) {
	rec := &recordingPost{}
	hub := NewHub(nil, rec.post)

	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())

	err := hub.Emit(context.Background(), []byte("x"))

	var unavailable *lighterrors.ChannelUnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.ErrorIs(t, err, lighterrors.ErrChannelClosed)
	require.Equal(t, 0, rec.count())
}

func TestHub_DispatchAfterClose(t *testing.T) {
	hub := NewHub(nil, nil)

	delivered := false

	hub.Subscribe(func([]byte) { delivered = true })
	require.NoError(t, hub.Close())

	hub.Dispatch([]byte("late"))
	require.False(t, delivered)
}
