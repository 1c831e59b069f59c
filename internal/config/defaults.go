package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 5000,
			Host: "localhost",
		},
		MCP: MCPConfig{
			Name:      "mcp-unitycatalog",
			MountPath: "/api/mcp",
		},
		Catalog: CatalogConfig{
			Enabled: true,
			Path:    "./data/catalog.db",
		},
		Tools: ToolsConfig{
			RemoteTimeout: "60s",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}
