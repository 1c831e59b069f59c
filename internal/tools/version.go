package tools

import (
	"context"

	"github.com/bobmcallan/uc-mcp/internal/config"
)

// NoArgs is the argument type for tools that take no input.
type NoArgs struct{}

// NewVersionTool returns the get_version tool reporting the gateway build.
func NewVersionTool(serverName string) Tool {
	return NewTypedTool("get_version",
		"Get the MCP server name, version and build. Use this to verify connectivity.",
		ReadOnlyAnnotations("Server version"),
		func(ctx context.Context, _ NoArgs) (any, error) {
			return config.GetVersionInfo(serverName), nil
		},
	)
}
