package protocol

import "context"

// Handler answers a request envelope the host sends to this process.
//
// Handlers are registered per envelope type and run on their own goroutine
// so a slow handler never stalls channel delivery. The returned payload is
// sent back as "<type>-response" echoing the request's correlation ID; a
// returned error is sent as an error-field payload instead.
type Handler func(ctx context.Context, payload map[string]any) (map[string]any, error)

// pendingRequest tracks one in-flight Request call.
//
// Created when Request is invoked, removed the moment a matching response
// is claimed, the timeout fires, the caller's context is cancelled, or the
// controller stops. Each entry is owned solely by the call that created it.
type pendingRequest struct {
	id           string
	responseType string
	response     chan map[string]any
}
