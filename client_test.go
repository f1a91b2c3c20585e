package lightctl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

// fakeChannel implements Channel for testing without a host.
type fakeChannel struct {
	mu       sync.Mutex
	messages [][]byte
	subs     []fakeSub
	nextID   int
}

type fakeSub struct {
	id int
	fn func([]byte)
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{}
}

func (f *fakeChannel) Emit(_ context.Context, raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, raw)

	return nil
}

func (f *fakeChannel) Subscribe(fn func(raw []byte)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.subs = append(f.subs, fakeSub{id: id, fn: fn})

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		for i, s := range f.subs {
			if s.id == id {
				f.subs = append(f.subs[:i], f.subs[i+1:]...)

				return
			}
		}
	}
}

func (f *fakeChannel) Close() error { return nil }

func (f *fakeChannel) deliver(raw []byte) {
	f.mu.Lock()
	subs := make([]fakeSub, len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	for _, s := range subs {
		s.fn(raw)
	}
}

func (f *fakeChannel) wires(t *testing.T) []map[string]any {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]map[string]any, 0, len(f.messages))

	for _, raw := range f.messages {
		var wire map[string]any
		require.NoError(t, json.Unmarshal(raw, &wire))
		result = append(result, wire)
	}

	return result
}

func (f *fakeChannel) waitForMessages(t *testing.T, n int) []map[string]any {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		count := len(f.messages)
		f.mu.Unlock()

		if count >= n {
			return f.wires(t)
		}

		time.Sleep(time.Millisecond)
	}

	t.Fatalf("expected %d wire messages", n)

	return nil
}

func startedClient(t *testing.T, ch Channel, opts ...Option) Client {
	t.Helper()

	client := New()
	t.Cleanup(func() { _ = client.Close() })

	opts = append([]Option{WithChannel(ch)}, opts...)
	require.NoError(t, client.Start(context.Background(), opts...))

	return client
}

func TestNew_Creation(t *testing.T) {
	client := New()
	require.NotNil(t, client)
	require.NoError(t, client.Close())
}

func TestClient_SendNotStarted(t *testing.T) {
	client := New()
	defer client.Close()

	err := client.Send(context.Background(), "setColor", nil)
	require.ErrorIs(t, err, ErrClientNotStarted)

	_, err = client.Request(context.Background(), "getConfig", nil)
	require.ErrorIs(t, err, ErrClientNotStarted)
}

func TestClient_StartWithoutChannel(t *testing.T) {
	client := New()
	defer client.Close()

	err := client.Start(context.Background())
	require.Error(t, err)

	var unavailable *ChannelUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestClient_StartTwice(t *testing.T) {
	ch := newFakeChannel()
	client := startedClient(t, ch)

	err := client.Start(context.Background(), WithChannel(ch))
	require.ErrorIs(t, err, ErrClientAlreadyStarted)
}

func TestClient_UseAfterClose(t *testing.T) {
	ch := newFakeChannel()
	client := startedClient(t, ch)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	require.ErrorIs(t, client.Send(context.Background(), "setColor", nil), ErrClientClosed)
	require.ErrorIs(t, client.Start(context.Background(), WithChannel(ch)), ErrClientClosed)
}

func TestClient_SendAndRequest(t *testing.T) {
	ch := newFakeChannel()
	client := startedClient(t, ch)

	require.NoError(t, client.Send(context.Background(), "setMode", map[string]any{"mode": "auto"}))

	result := make(chan map[string]any, 1)

	go func() {
		payload, err := client.Request(context.Background(), "getConfig", nil)
		require.NoError(t, err)
		result <- payload
	}()

	wires := ch.waitForMessages(t, 2)
	requestID, _ := wires[1]["id"].(string)
	require.NotEmpty(t, requestID)

	ch.deliver([]byte(`{"type":"getConfig-response","id":"` + requestID + `","mode":"auto"}`))

	select {
	case payload := <-result:
		require.Equal(t, "auto", payload["mode"])
	case <-time.After(time.Second):
		t.Fatal("request did not resolve")
	}
}

func TestClient_RequestTimeoutOption(t *testing.T) {
	ch := newFakeChannel()
	client := startedClient(t, ch, WithRequestTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Request(context.Background(), "unknownCmd", nil)

	require.ErrorIs(t, err, ErrRequestTimeout)
	require.Less(t, time.Since(start), time.Second)
}

func TestClient_TypedCommands(t *testing.T) {
	ch := newFakeChannel()
	client := startedClient(t, ch)

	ctx := context.Background()

	require.NoError(t, client.SetColor(ctx, 0xFF0000))
	require.NoError(t, client.SetToggleColor(ctx, 0x0000FF))
	require.NoError(t, client.SetToggleSpeed(ctx, 500*time.Millisecond))
	require.NoError(t, client.SetStrobeSpeed(ctx, 100*time.Millisecond))
	require.NoError(t, client.SetMode(ctx, ModeToggle))

	wires := ch.wires(t)
	require.Len(t, wires, 5)

	require.Equal(t, "setColor", wires[0]["type"])
	require.Equal(t, float64(0xFF0000), wires[0]["color"])

	require.Equal(t, "setToggleColor", wires[1]["type"])
	require.Equal(t, float64(0x0000FF), wires[1]["color"])

	require.Equal(t, "setToggleSpeed", wires[2]["type"])
	require.Equal(t, float64(500), wires[2]["speed"])

	require.Equal(t, "setStrobeSpeed", wires[3]["type"])
	require.Equal(t, float64(100), wires[3]["speed"])

	require.Equal(t, "setMode", wires[4]["type"])
	require.Equal(t, "toggle", wires[4]["mode"])
}

func TestClient_GetConfig(t *testing.T) {
	ch := newFakeChannel()
	client := startedClient(t, ch)

	result := make(chan map[string]any, 1)

	go func() {
		cfg, err := client.GetConfig(context.Background())
		require.NoError(t, err)
		result <- cfg
	}()

	wires := ch.waitForMessages(t, 1)
	require.Equal(t, "getConfig", wires[0]["type"])

	requestID, _ := wires[0]["id"].(string)
	ch.deliver([]byte(`{"type":"getConfig-response","id":"` + requestID + `","fixtures":4}`))

	select {
	case cfg := <-result:
		require.Equal(t, float64(4), cfg["fixtures"])
	case <-time.After(time.Second):
		t.Fatal("GetConfig did not resolve")
	}
}

func TestClient_HandlerOption(t *testing.T) {
	ch := newFakeChannel()

	startedClient(t, ch, WithHandler("getUiState", func(_ context.Context, _ map[string]any) (map[string]any, error) {
		return map[string]any{"page": "main"}, nil
	}))

	ch.deliver([]byte(`{"type":"getUiState","id":"req-1"}`))

	wires := ch.waitForMessages(t, 1)
	require.Equal(t, "getUiState-response", wires[0]["type"])
	require.Equal(t, "req-1", wires[0]["id"])
	require.Equal(t, "main", wires[0]["page"])
}

func TestClient_HandlerSchemaRejectsPayload(t *testing.T) {
	ch := newFakeChannel()

	invoked := false

	startedClient(t, ch, WithHandlerSchema(
		"selectFixture",
		SimpleSchema(map[string]string{"fixture": "int"}),
		func(_ context.Context, payload map[string]any) (map[string]any, error) {
			invoked = true

			return map[string]any{"ok": true}, nil
		},
	))

	// Missing required field: rejected before the handler runs.
	ch.deliver([]byte(`{"type":"selectFixture","id":"req-1"}`))

	wires := ch.waitForMessages(t, 1)
	require.Equal(t, "selectFixture-response", wires[0]["type"])
	require.Contains(t, wires[0], "error")
	require.False(t, invoked)

	// Conforming payload: handled.
	ch.deliver([]byte(`{"type":"selectFixture","id":"req-2","fixture":3}`))

	wires = ch.waitForMessages(t, 2)
	require.Equal(t, "selectFixture-response", wires[1]["type"])
	require.Equal(t, true, wires[1]["ok"])
	require.True(t, invoked)
}

func TestClient_OnRequestAfterStart(t *testing.T) {
	ch := newFakeChannel()
	client := startedClient(t, ch)

	require.NoError(t, client.OnRequest("getUiState", func(context.Context, map[string]any) (map[string]any, error) {
		return map[string]any{"page": "settings"}, nil
	}))

	ch.deliver([]byte(`{"type":"getUiState","id":"req-9"}`))

	wires := ch.waitForMessages(t, 1)
	require.Equal(t, "settings", wires[0]["page"])
}

func TestClient_Events(t *testing.T) {
	ch := newFakeChannel()
	client := startedClient(t, ch)

	ch.deliver([]byte(`{"type":"configUpdated","fixtures":8}`))

	select {
	case env := <-client.Events():
		require.Equal(t, "configUpdated", env.Type)
		require.Equal(t, float64(8), env.Payload["fixtures"])
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}
}

func TestClient_DoneOnClose(t *testing.T) {
	ch := newFakeChannel()
	client := startedClient(t, ch)

	done := client.Done()
	require.NotNil(t, done)

	require.NoError(t, client.Close())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed after Close")
	}
}
