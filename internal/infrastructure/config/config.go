package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Workspace WorkspaceConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string `envconfig:"PORT" default:"8000"`
	Host        string `envconfig:"HOST" default:"0.0.0.0"`
	GzipEnabled bool   `envconfig:"GZIP_ENABLED" default:"true"`
	// CORSOrigins lists the browser origins allowed to call the API.
	// "*" allows any origin.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// WorkspaceConfig controls where new workspaces come from and how large
// they may grow.
type WorkspaceConfig struct {
	// Template is a YAML, TOML or JSON project file. Empty uses the
	// built-in sample project.
	Template string `envconfig:"WORKSPACE_TEMPLATE"`
	// ImportDir imports a directory on disk instead of a template file.
	ImportDir       string   `envconfig:"WORKSPACE_IMPORT_DIR"`
	ImportIgnore    []string `envconfig:"WORKSPACE_IMPORT_IGNORE" default:"**/node_modules/**,**/.git/**"`
	MaxSessions     int      `envconfig:"WORKSPACE_MAX_SESSIONS" default:"64"`
	MaxContentBytes int64    `envconfig:"WORKSPACE_MAX_CONTENT_BYTES" default:"1048576"`
	MaxFileBytes    int64    `envconfig:"WORKSPACE_MAX_FILE_BYTES" default:"524288"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// GlobalRequestsPerSecond caps the whole server across clients. Zero
	// disables the global limit; its burst defaults to twice the rate.
	GlobalRequestsPerSecond int `envconfig:"RATE_LIMIT_GLOBAL_RPS" default:"0"`
	GlobalBurst             int `envconfig:"RATE_LIMIT_GLOBAL_BURST" default:"0"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			GzipEnabled: true,
			CORSOrigins: []string{"*"},
		},
		Workspace: WorkspaceConfig{
			ImportIgnore:    []string{"**/node_modules/**", "**/.git/**"},
			MaxSessions:     64,
			MaxContentBytes: 1 << 20,
			MaxFileBytes:    512 << 10,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	w := c.Workspace
	if w.Template != "" && w.ImportDir != "" {
		return fmt.Errorf("invalid config: WORKSPACE_TEMPLATE and WORKSPACE_IMPORT_DIR are mutually exclusive")
	}
	if w.MaxSessions <= 0 {
		return fmt.Errorf("invalid config: WORKSPACE_MAX_SESSIONS must be positive, got %d", w.MaxSessions)
	}
	if w.MaxContentBytes <= 0 {
		return fmt.Errorf("invalid config: WORKSPACE_MAX_CONTENT_BYTES must be positive, got %d", w.MaxContentBytes)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid config: rate limit needs positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	if c.RateLimit.GlobalRequestsPerSecond < 0 || c.RateLimit.GlobalBurst < 0 {
		return fmt.Errorf("invalid config: RATE_LIMIT_GLOBAL_RPS and RATE_LIMIT_GLOBAL_BURST must not be negative")
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid config: CORS_ORIGINS entry %q needs an http or https scheme", origin)
		}
	}
	return nil
}

// GlobalLimit returns the server-wide rate and burst, or ok false when no
// global limit is configured.
func (r RateLimitConfig) GlobalLimit() (rps, burst int, ok bool) {
	if !r.Enabled || r.GlobalRequestsPerSecond <= 0 {
		return 0, 0, false
	}
	burst = r.GlobalBurst
	if burst == 0 {
		burst = 2 * r.GlobalRequestsPerSecond
	}
	return r.GlobalRequestsPerSecond, burst, true
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return strings.TrimSpace(s.Host) + ":" + strings.TrimSpace(s.Port)
}
