package lightctl

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema is a JSON Schema object for handler payload validation.
type Schema = jsonschema.Schema

// SimpleSchema creates a Schema from a simple type map.
//
// Input format: {"page": "string", "count": "int"}
// All listed properties are required. This is a convenience for handlers
// that do not need the full jsonschema.Schema API.
func SimpleSchema(props map[string]string) *Schema {
	properties := make(map[string]*jsonschema.Schema, len(props))
	required := make([]string, 0, len(props))

	for name, goType := range props {
		properties[name] = goTypeToJSONSchema(goType)
		required = append(required, name)
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// goTypeToJSONSchema converts a Go type string to a JSON Schema type.
func goTypeToJSONSchema(goType string) *jsonschema.Schema {
	switch goType {
	case "string":
		return &jsonschema.Schema{Type: "string"}
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return &jsonschema.Schema{Type: "integer"}
	case "float32", "float64", "float", "number":
		return &jsonschema.Schema{Type: "number"}
	case "bool", "boolean":
		return &jsonschema.Schema{Type: "boolean"}
	case "any", "object", "map[string]any":
		return &jsonschema.Schema{Type: "object"}
	default:
		if len(goType) > 2 && goType[:2] == "[]" {
			return &jsonschema.Schema{
				Type:  "array",
				Items: goTypeToJSONSchema(goType[2:]),
			}
		}

		// Default to string
		return &jsonschema.Schema{Type: "string"}
	}
}

// wrapWithSchema guards a handler with payload validation. A nil schema
// returns the handler unchanged.
func wrapWithSchema(schema *Schema, handler RequestHandler) (RequestHandler, error) {
	if schema == nil {
		return handler, nil
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}

	return func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		if payload == nil {
			payload = map[string]any{}
		}

		if err := resolved.Validate(payload); err != nil {
			return nil, fmt.Errorf("payload rejected by schema: %w", err)
		}

		return handler(ctx, payload)
	}, nil
}
