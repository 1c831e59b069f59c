package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Auth        AuthConfig    `toml:"auth"`
	MCP         MCPConfig     `toml:"mcp"`
	Catalog     CatalogConfig `toml:"catalog"`
	Tools       ToolsConfig   `toml:"tools"`
	Metrics     MetricsConfig `toml:"metrics"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// AuthConfig contains settings for the MCP endpoint authenticator.
// ExternalAccessToken is normally supplied through EXTERNAL_ACCESS_TOKEN
// rather than written to a config file.
type AuthConfig struct {
	ExternalAccessToken string `toml:"external_access_token"`
}

// MCPConfig contains protocol adapter settings.
type MCPConfig struct {
	Name      string `toml:"name"`
	MountPath string `toml:"mount_path"`
	Stateless bool   `toml:"stateless"`
}

// CatalogConfig contains settings for the SQLite-backed data catalog.
type CatalogConfig struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	SeedFile   string `toml:"seed_file"`
	ToolPrefix string `toml:"tool_prefix"`
}

// ToolsConfig contains HTTP-proxied tool definitions.
type ToolsConfig struct {
	RemoteBaseURL string             `toml:"remote_base_url"`
	RemoteTimeout string             `toml:"remote_timeout"`
	Remote        []RemoteToolConfig `toml:"remote"`
}

// RemoteToolConfig describes one tool served by an upstream REST endpoint.
type RemoteToolConfig struct {
	Name        string              `toml:"name"`
	Title       string              `toml:"title"`
	Description string              `toml:"description"`
	Method      string              `toml:"method"`
	Path        string              `toml:"path"`
	ReadOnly    bool                `toml:"read_only"`
	Destructive bool                `toml:"destructive"`
	Idempotent  bool                `toml:"idempotent"`
	OpenWorld   bool                `toml:"open_world"`
	Params      []RemoteParamConfig `toml:"params"`
}

// RemoteParamConfig describes one parameter of a remote tool.
type RemoteParamConfig struct {
	Name        string `toml:"name"`
	Type        string `toml:"type"` // string, number, boolean, array
	Description string `toml:"description"`
	Required    bool   `toml:"required"`
	In          string `toml:"in"` // path, query, body
}

// MetricsConfig contains prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// IsDevMode reports whether the environment is set to dev.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// RemoteTimeoutDuration parses Tools.RemoteTimeout, falling back to 60s.
func (c *Config) RemoteTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Tools.RemoteTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// DATABRICKS_APP_PORT is honoured first so UCMCP_SERVER_PORT can still win.
func applyEnvOverrides(config *Config) {
	if token, ok := os.LookupEnv("EXTERNAL_ACCESS_TOKEN"); ok {
		config.Auth.ExternalAccessToken = token
	}
	if port := os.Getenv("DATABRICKS_APP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if port := os.Getenv("UCMCP_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("UCMCP_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if env := os.Getenv("UCMCP_ENVIRONMENT"); env != "" {
		config.Environment = env
	}
	if path := os.Getenv("UCMCP_CATALOG_PATH"); path != "" {
		config.Catalog.Path = path
	}
	if seed := os.Getenv("UCMCP_CATALOG_SEED_FILE"); seed != "" {
		config.Catalog.SeedFile = seed
	}
	if baseURL := os.Getenv("UCMCP_TOOLS_REMOTE_BASE_URL"); baseURL != "" {
		config.Tools.RemoteBaseURL = baseURL
	}
	if level := os.Getenv("UCMCP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
