// Package channel implements the host channel adapters.
//
// The adapter wraps whatever bidirectional message primitive the host
// provides and exposes the config.Channel contract: Emit for outbound raw
// messages and broadcast Subscribe for inbound ones. Two flavors exist,
// matching the two ways a lighting host is typically embedded:
//
//   - Hub bridges a callback-style primitive (a webview's page-message
//     pair: a post function out, a dispatch callback in).
//   - WebSocket bridges the host's IPC WebSocket endpoint.
//
// Adapters broadcast every inbound message to every subscriber in arrival
// order; filtering by envelope type is the protocol layer's job.
package channel
