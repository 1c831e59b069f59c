package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/uc-mcp/internal/common"
	"github.com/bobmcallan/uc-mcp/internal/config"
)

// RemoteTool routes an MCP tool call to an upstream REST endpoint described
// by a [[tools.remote]] config entry.
type RemoteTool struct {
	def    config.RemoteToolConfig
	client *RemoteClient
	schema json.RawMessage
}

// NewRemoteTool creates a tool for def backed by client.
func NewRemoteTool(def config.RemoteToolConfig, client *RemoteClient) *RemoteTool {
	return &RemoteTool{
		def:    def,
		client: client,
		schema: remoteSchema(def.Params),
	}
}

// NewRemoteTools builds one RemoteTool per configured entry, sharing a client.
func NewRemoteTools(cfg *config.Config, logger *common.Logger) []Tool {
	if len(cfg.Tools.Remote) == 0 {
		return nil
	}
	client := NewRemoteClient(cfg.Tools.RemoteBaseURL, cfg.RemoteTimeoutDuration(), logger)
	out := make([]Tool, 0, len(cfg.Tools.Remote))
	for _, def := range cfg.Tools.Remote {
		out = append(out, NewRemoteTool(def, client))
	}
	return out
}

func (t *RemoteTool) Name() string                 { return t.def.Name }
func (t *RemoteTool) Description() string          { return t.def.Description }
func (t *RemoteTool) InputSchema() json.RawMessage { return t.schema }

func (t *RemoteTool) Annotations() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		Title:           t.def.Title,
		ReadOnlyHint:    mcp.ToBoolPtr(t.def.ReadOnly),
		DestructiveHint: mcp.ToBoolPtr(t.def.Destructive),
		IdempotentHint:  mcp.ToBoolPtr(t.def.Idempotent),
		OpenWorldHint:   mcp.ToBoolPtr(t.def.OpenWorld),
	}
}

// Invoke resolves path, query and body params and performs the upstream call.
// Upstream failures are returned as tool errors.
func (t *RemoteTool) Invoke(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	path := t.def.Path
	bodyParams := map[string]any{}
	queryParams := url.Values{}

	for _, param := range t.def.Params {
		val, present := args[param.Name]
		if present && val == nil {
			present = false
		}
		switch param.In {
		case "path":
			strVal := ""
			if present {
				strVal = fmt.Sprint(val)
			}
			if strVal == "" {
				if param.Required {
					return ErrorResult(fmt.Sprintf("Error: %s parameter is required", param.Name)), nil
				}
				continue
			}
			path = strings.ReplaceAll(path, "{"+param.Name+"}", url.PathEscape(strVal))
		case "query":
			if !present {
				if param.Required {
					return ErrorResult(fmt.Sprintf("Error: %s parameter is required", param.Name)), nil
				}
				continue
			}
			if strVal := fmt.Sprint(val); strVal != "" {
				queryParams.Set(param.Name, strVal)
			}
		case "body":
			if !present {
				if param.Required {
					return ErrorResult(fmt.Sprintf("Error: %s parameter is required", param.Name)), nil
				}
				continue
			}
			bodyParams[param.Name] = val
		}
	}

	if len(queryParams) > 0 {
		path += "?" + queryParams.Encode()
	}

	var body any
	if len(bodyParams) > 0 {
		body = bodyParams
	}

	respBody, err := t.client.Do(ctx, strings.ToUpper(t.def.Method), path, body)
	if err != nil {
		return ErrorResult(fmt.Sprintf("Error: %v", err)), nil
	}
	return TextResult(string(respBody)), nil
}

// remoteSchema builds the arguments schema from the configured params.
func remoteSchema(params []config.RemoteParamConfig) json.RawMessage {
	properties := make(map[string]any, len(params))
	required := []string{}
	for _, p := range params {
		prop := map[string]any{}
		switch p.Type {
		case "number", "boolean":
			prop["type"] = p.Type
		case "array":
			prop["type"] = "array"
			prop["items"] = map[string]any{"type": "string"}
		default:
			prop["type"] = "string"
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	b, err := json.Marshal(schema)
	if err != nil {
		return emptyObjectSchema
	}
	return b
}
