package errors

import (
	"errors"
	"fmt"
)

// LightctlError is the base interface for all lightctl errors.
type LightctlError interface {
	error
	IsLightctlError() bool
}

// Compile-time verification that all error types implement LightctlError.
var (
	_ LightctlError = (*DecodeError)(nil)
	_ LightctlError = (*ChannelUnavailableError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrClientNotStarted indicates the client has not been started yet.
	ErrClientNotStarted = errors.New("client not started")

	// ErrClientAlreadyStarted indicates the client is already started.
	ErrClientAlreadyStarted = errors.New("client already started")

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.New("client closed: clients are single-use, create a new one with New()")

	// ErrChannelClosed indicates the channel has been closed.
	ErrChannelClosed = errors.New("channel closed")

	// ErrRequestTimeout indicates a request timed out waiting for its response.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrControllerStopped indicates the protocol controller has stopped.
	ErrControllerStopped = errors.New("protocol controller stopped")
)

// DecodeError indicates an inbound message is not a valid envelope.
// This error preserves the original raw data that failed to parse.
//
// Decode failures never propagate to application callers: the protocol
// layer drops the message and keeps serving unrelated in-flight requests.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode envelope: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsLightctlError implements LightctlError.
func (e *DecodeError) IsLightctlError() bool { return true }

// ChannelUnavailableError indicates the host channel is missing or closed.
// It is surfaced immediately on Send/Request and never retried by this layer.
type ChannelUnavailableError struct {
	Err error
}

func (e *ChannelUnavailableError) Error() string {
	return fmt.Sprintf("channel unavailable: %v", e.Err)
}

func (e *ChannelUnavailableError) Unwrap() error {
	return e.Err
}

// IsLightctlError implements LightctlError.
func (e *ChannelUnavailableError) IsLightctlError() bool { return true }
