package config

import (
	"fmt"
	"slices"
	"strings"
)

var allowedRemoteMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// reservedRoutes are served by the host itself. A mount path equal to one of
// them would register a conflicting pattern; "/api" would claim "/api/".
var reservedRoutes = []string{"/health", "/api", "/api/version", "/metrics"}

var allowedParamLocations = map[string]bool{
	"path": true, "query": true, "body": true,
}

// Validate checks mandatory fields and returns a list of human-readable issues.
// An empty slice means the configuration is usable.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if c.MCP.Name == "" {
		issues = append(issues, "mcp.name is required")
	}
	mount := c.MCP.MountPath
	if !strings.HasPrefix(mount, "/") || strings.HasSuffix(mount, "/") {
		issues = append(issues, fmt.Sprintf("mcp.mount_path must start with / and have no trailing slash (got %q)", mount))
	}
	if slices.Contains(reservedRoutes, mount) {
		issues = append(issues, fmt.Sprintf("mcp.mount_path must not shadow %s", mount))
	}
	if c.Catalog.Enabled && c.Catalog.Path == "" {
		issues = append(issues, "catalog.path is required when the catalog is enabled")
	}

	if len(c.Tools.Remote) > 0 && c.Tools.RemoteBaseURL == "" {
		issues = append(issues, "tools.remote_base_url is required when tools.remote entries are defined")
	}
	for i, rt := range c.Tools.Remote {
		issues = append(issues, validateRemoteTool(i, rt)...)
	}

	return issues
}

func validateRemoteTool(i int, rt RemoteToolConfig) []string {
	var issues []string
	label := fmt.Sprintf("tools.remote[%d]", i)
	if rt.Name != "" {
		label = fmt.Sprintf("tools.remote[%d] (%s)", i, rt.Name)
	}

	if rt.Name == "" {
		issues = append(issues, label+": name is required")
	}
	if !allowedRemoteMethods[strings.ToUpper(rt.Method)] {
		issues = append(issues, fmt.Sprintf("%s: unsupported method %q", label, rt.Method))
	}
	if !strings.HasPrefix(rt.Path, "/") || strings.Contains(rt.Path, "..") {
		issues = append(issues, fmt.Sprintf("%s: path %q must start with / and must not contain ..", label, rt.Path))
	}
	for _, p := range rt.Params {
		if p.Name == "" {
			issues = append(issues, label+": parameter with empty name")
			continue
		}
		if !allowedParamLocations[p.In] {
			issues = append(issues, fmt.Sprintf("%s: parameter %q has invalid location %q", label, p.Name, p.In))
		}
		if p.In == "path" && !strings.Contains(rt.Path, "{"+p.Name+"}") {
			issues = append(issues, fmt.Sprintf("%s: path parameter %q not present in path %q", label, p.Name, rt.Path))
		}
	}
	return issues
}
