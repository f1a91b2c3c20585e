// Package errors defines the error taxonomy shared across lightctl.
//
// Typed errors carry context (the raw message that failed to decode, the
// underlying channel failure); sentinel errors cover conditions callers
// check with errors.Is. The root package re-exports everything here.
package errors
