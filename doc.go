// Package lightctl provides a Go SDK for driving an embedded lighting host
// over a single bidirectional message channel.
//
// A UI or control process sends typed commands as flat JSON envelopes
// ({"type": name, ...payload}) and can await a correlated response, no
// matter how much other traffic rides the same channel. Fire-and-forget
// commands use Send, request/response pairs use Request, and host push
// events arrive on Events().
//
// # Basic Usage
//
// Connect over the host's IPC WebSocket:
//
//	ctx := context.Background()
//
//	ch, err := lightctl.DialWebSocket(ctx, "ws://localhost:8080/ipc", slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ch.Close()
//
//	client := lightctl.New()
//	defer client.Close()
//
//	if err := client.Start(ctx,
//	    lightctl.WithChannel(ch),
//	    lightctl.WithLogger(slog.Default()),
//	); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Fire-and-forget command.
//	if err := client.SetColor(ctx, 0xFF0000); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Correlated request.
//	cfg, err := client.GetConfig(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
//
// # Embedding in a webview
//
// Hosts that expose a callback-style page-message primitive instead of a
// socket wire the two directions through a host channel:
//
//	ch := lightctl.NewHostChannel(slog.Default(), func(ctx context.Context, raw []byte) error {
//	    webview.PostMessage(string(raw))
//	    return nil
//	})
//	webview.OnMessage(func(msg string) { ch.Dispatch([]byte(msg)) })
//
// # Correlation
//
// Every Request carries a ULID correlation ID in the envelope's "id"
// field. Hosts that echo the field get exact per-call matching; hosts that
// cannot echo it fall back to first-match-wins on the derived
// "<type>-response" name, in request order. Responses that match no
// in-flight request are dropped.
//
// The channel itself is host-owned: Close() on the client stops protocol
// handling but leaves the injected channel to its owner.
package lightctl
