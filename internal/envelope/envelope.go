// Package envelope implements the wire codec for channel messages.
//
// One message is one flat JSON object carrying the command or event name
// under the reserved "type" key and, for correlated requests and their
// responses, a correlation ID under the reserved "id" key:
//
//	{"type": "setColor", "color": 16711680}
//	{"type": "getConfig", "id": "01J8..."}
//	{"type": "getConfig-response", "id": "01J8...", "fixtures": [...]}
//
// All remaining keys form the payload. Payload keys are flat; nested
// envelopes are not part of the protocol.
package envelope

import (
	"errors"
	"fmt"
	"maps"

	"github.com/segmentio/encoding/json"

	lighterrors "github.com/beamworks/lightctl/internal/errors"
)

// Reserved payload keys. A payload that supplies its own value for one of
// these is overridden by the protocol layer; this is documented behavior,
// not an error.
const (
	KeyType = "type"
	KeyID   = "id"
)

// responseSuffix is appended to a request type to derive its response type.
const responseSuffix = "-response"

// Envelope is the unit of communication over the channel.
type Envelope struct {
	// Type is the command or event name. Always present and non-empty.
	Type string

	// ID is the correlation ID echoed between a request and its response.
	// Empty for fire-and-forget commands and for hosts that do not echo it.
	ID string

	// Payload holds every remaining top-level key of the wire object.
	// Never nil after a successful Decode.
	Payload map[string]any
}

// ResponseType derives the response type name for a request type.
func ResponseType(typ string) string {
	return typ + responseSuffix
}

// IsResponseType reports whether typ follows the derived response naming
// convention.
func IsResponseType(typ string) bool {
	return len(typ) > len(responseSuffix) && typ[len(typ)-len(responseSuffix):] == responseSuffix
}

// Encode serializes an envelope to its wire representation.
//
// The type (and id, when non-empty) are merged over the payload, so a
// payload-supplied "type" or "id" loses to the envelope's own values.
func Encode(typ, id string, payload map[string]any) ([]byte, error) {
	if typ == "" {
		return nil, errors.New("envelope type must not be empty")
	}

	wire := make(map[string]any, len(payload)+2)
	maps.Copy(wire, payload)
	wire[KeyType] = typ

	if id != "" {
		wire[KeyID] = id
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	return data, nil
}

// Decode parses raw wire text into an envelope.
//
// Returns a *DecodeError when raw is not a JSON object or lacks a non-empty
// string "type". Callers at the protocol boundary drop such messages
// silently; a malformed message must never break unrelated traffic.
func Decode(raw []byte) (*Envelope, error) {
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &lighterrors.DecodeError{Raw: string(raw), Err: err}
	}

	typ, ok := wire[KeyType].(string)
	if !ok || typ == "" {
		return nil, &lighterrors.DecodeError{
			Raw: string(raw),
			Err: errors.New("missing or empty type field"),
		}
	}

	id, _ := wire[KeyID].(string)

	delete(wire, KeyType)
	delete(wire, KeyID)

	return &Envelope{Type: typ, ID: id, Payload: wire}, nil
}
