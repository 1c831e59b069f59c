package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
)

// TypedHandler receives decoded arguments and returns a JSON-encodable value.
type TypedHandler[A any] func(ctx context.Context, args A) (any, error)

// TypedTool is a Tool whose arguments are described by the struct A.
// Fields without omitempty are required; unknown arguments are rejected.
type TypedTool[A any] struct {
	name        string
	description string
	annotations mcp.ToolAnnotation
	schema      json.RawMessage
	handler     TypedHandler[A]
}

// NewTypedTool builds a TypedTool, reflecting its input schema from A.
func NewTypedTool[A any](name, description string, annotations mcp.ToolAnnotation, handler TypedHandler[A]) *TypedTool[A] {
	return &TypedTool[A]{
		name:        name,
		description: description,
		annotations: annotations,
		schema:      ReflectSchema[A](),
		handler:     handler,
	}
}

func (t *TypedTool[A]) Name() string                    { return t.name }
func (t *TypedTool[A]) Description() string             { return t.description }
func (t *TypedTool[A]) Annotations() mcp.ToolAnnotation { return t.annotations }
func (t *TypedTool[A]) InputSchema() json.RawMessage    { return t.schema }

// Invoke decodes args into A and runs the handler. Decoding and handler
// failures are reported as tool errors so the caller sees the message.
func (t *TypedTool[A]) Invoke(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	var a A
	if len(args) > 0 {
		raw, err := json.Marshal(args)
		if err != nil {
			return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil {
			return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}

	out, err := t.handler(ctx, a)
	if err != nil {
		return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
	}
	return JSONResult(out)
}

// ReflectSchema returns the JSON Schema for the arguments struct A with
// definitions inlined and additional properties disallowed.
func ReflectSchema[A any]() json.RawMessage {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(new(A))
	if s == nil || s.Type != "object" {
		return emptyObjectSchema
	}
	s.Version = ""
	s.ID = ""

	b, err := json.Marshal(s)
	if err != nil {
		return emptyObjectSchema
	}
	return b
}
