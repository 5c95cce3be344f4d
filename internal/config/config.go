package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store driver names accepted by STORE_DRIVER.
const (
	DriverJSONFile = "jsonfile"
	DriverSQLite   = "sqlite"
)

// Config holds the configuration for the memo backend.
// Environment variables are parsed from the MEMOVAULT_ prefix,
// e.g. MEMOVAULT_STORE_DRIVER, MEMOVAULT_HTTP_PORT.
type Config struct {
	// StoreDriver selects the durable container: jsonfile (default) or sqlite.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"jsonfile"`

	// DataDir is the base directory for derived store paths.
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// MemosFile overrides the JSON container path; derived from DataDir when empty.
	MemosFile string `envconfig:"MEMOS_FILE" default:""`

	// SQLitePath overrides the sqlite database path; derived from DataDir when empty.
	SQLitePath string `envconfig:"SQLITE_PATH" default:""`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"11610"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// MCP server identity and transport tuning
	ServerName      string        `envconfig:"MCP_SERVER_NAME" default:"memovault-mcp-server"`
	ServerVersion   string        `envconfig:"MCP_SERVER_VERSION" default:"0.1.0"`
	MCPHTTPPort     int           `envconfig:"MCP_HTTP_PORT" default:"11611"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// ResolveDefaults validates the store driver and derives file paths that were
// left empty.
func (c *Config) ResolveDefaults() error {
	switch c.StoreDriver {
	case DriverJSONFile, DriverSQLite:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.MemosFile == "" {
		c.MemosFile = filepath.Join(c.DataDir, "memos.json")
	}
	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(c.DataDir, "memos.db")
	}
	return nil
}

// New creates a Config by parsing MEMOVAULT_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MEMOVAULT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetHTTPAddr returns the REST server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// MCPAddr returns the MCP streamable HTTP address.
func (c *Config) MCPAddr() string {
	return fmt.Sprintf(":%d", c.MCPHTTPPort)
}
