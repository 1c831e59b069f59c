// Package tools defines the Tool contract and the registry of tools exposed
// through the MCP endpoint.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool is a named capability that can be listed and invoked through MCP.
// Name must be unique within a Registry.
type Tool interface {
	Name() string
	Description() string
	Annotations() mcp.ToolAnnotation
	// InputSchema returns the JSON Schema of the arguments object.
	InputSchema() json.RawMessage
	Invoke(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error)
}

// emptyObjectSchema is used for tools that take no arguments.
var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// Descriptor builds the protocol-visible definition of t.
func Descriptor(t Tool) mcp.Tool {
	schema := t.InputSchema()
	if len(schema) == 0 {
		schema = emptyObjectSchema
	}
	def := mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema)
	def.Annotations = t.Annotations()
	return def
}

// ReadOnlyAnnotations describes a side-effect-free, repeatable lookup.
func ReadOnlyAnnotations(title string) mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		Title:           title,
		ReadOnlyHint:    mcp.ToBoolPtr(true),
		DestructiveHint: mcp.ToBoolPtr(false),
		IdempotentHint:  mcp.ToBoolPtr(true),
		OpenWorldHint:   mcp.ToBoolPtr(false),
	}
}

// ErrorResult creates an MCP error result.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// TextResult wraps text in a successful result.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

// JSONResult renders v as indented JSON text content.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return TextResult(string(out)), nil
}
