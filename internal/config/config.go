// Package config resolves footstats settings. Values come from defaults,
// then an optional TOML file, then environment variables (a .env file in
// the working directory is honoured); command-line flags are applied last
// by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Chat   ChatConfig   `toml:"chat"`
	Server ServerConfig `toml:"server"`
	Debug  bool         `toml:"debug"`
}

// DataConfig locates the dataset and its SQL mirror.
type DataConfig struct {
	Path string `toml:"path"` // CSV file
	DB   string `toml:"db"`   // SQLite path, ":memory:" for none on disk
}

// ChatConfig configures the language-model adapter.
type ChatConfig struct {
	APIKey string  `toml:"api_key"`
	Model  string  `toml:"model"`
	RPS    float64 `toml:"rps"` // API calls per second
}

// ServerConfig configures `footstats serve`.
type ServerConfig struct {
	Host             string          `toml:"host"`
	Port             int             `toml:"port"`
	CORSAllowOrigins []string        `toml:"cors_allow_origins"`
	RateLimit        RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig is a per-client request budget.
type RateLimitConfig struct {
	Enabled       bool `toml:"enabled"`
	Requests      int  `toml:"requests"`
	WindowSeconds int  `toml:"window_seconds"`
}

// Window returns the rate-limit window as a duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path: "database.csv",
			DB:   ":memory:",
		},
		Chat: ChatConfig{
			Model: "claude-haiku-4-5-20251001",
			RPS:   1,
		},
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             8080,
			CORSAllowOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit: RateLimitConfig{
				Enabled:       true,
				Requests:      100,
				WindowSeconds: 60,
			},
		},
	}
}

// DefaultPath returns ~/.footstats/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".footstats", "config.toml"), nil
}

// Load resolves the configuration. A missing file at path is not an error;
// an unreadable or malformed one is.
func Load(path string) (*Config, error) {
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load(".env")
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile overlays the TOML file at path on the defaults.
func LoadFile(path string) (*Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return c, nil
}

// ApplyEnv overrides values with any environment variables that are set.
func (c *Config) ApplyEnv() {
	c.Data.Path = envOr("FOOTSTATS_DATA", c.Data.Path)
	c.Data.DB = envOr("FOOTSTATS_DB", c.Data.DB)

	c.Chat.APIKey = envOr("ANTHROPIC_API_KEY", c.Chat.APIKey)
	c.Chat.Model = envOr("FOOTSTATS_MODEL", c.Chat.Model)
	c.Chat.RPS = envFloat("FOOTSTATS_CHAT_RPS", c.Chat.RPS)

	c.Server.Host = envOr("API_HOST", c.Server.Host)
	c.Server.Port = envInt("API_PORT", c.Server.Port)
	c.Server.CORSAllowOrigins = envList("CORS_ALLOW_ORIGINS", c.Server.CORSAllowOrigins)
	c.Server.RateLimit.Enabled = envBool("RATE_LIMIT_ENABLED", c.Server.RateLimit.Enabled)
	c.Server.RateLimit.Requests = envInt("RATE_LIMIT_REQUESTS", c.Server.RateLimit.Requests)
	c.Server.RateLimit.WindowSeconds = envInt("RATE_LIMIT_WINDOW_SECONDS", c.Server.RateLimit.WindowSeconds)

	c.Debug = envBool("DEBUG", c.Debug)
}

// Save writes the configuration as TOML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data path must be set")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Chat.RPS <= 0 {
		return fmt.Errorf("chat rps must be positive: %g", c.Chat.RPS)
	}
	if rl := c.Server.RateLimit; rl.Enabled {
		if rl.Requests < 1 {
			return fmt.Errorf("rate limit requests must be positive: %d", rl.Requests)
		}
		if rl.WindowSeconds < 1 {
			return fmt.Errorf("rate limit window must be positive: %d", rl.WindowSeconds)
		}
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Server.CORSAllowOrigins = append([]string(nil), c.Server.CORSAllowOrigins...)
	if cp.Chat.APIKey != "" {
		cp.Chat.APIKey = "***"
	}
	return &cp
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
