package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Data.Path != "database.csv" || c.Server.Port != 8080 {
		t.Errorf("unexpected defaults: %+v", c)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[data]
path = "league.csv"

[server]
port = 9000

[server.rate_limit]
requests = 5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Data.Path != "league.csv" {
		t.Errorf("data path: got %q", c.Data.Path)
	}
	if c.Server.Port != 9000 || c.Server.RateLimit.Requests != 5 {
		t.Errorf("server overlay not applied: %+v", c.Server)
	}
	// Keys absent from the file keep their defaults.
	if c.Data.DB != ":memory:" || c.Server.RateLimit.WindowSeconds != 60 {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[data\npath ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[data]\npath = \"file.csv\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOOTSTATS_DATA", "env.csv")
	t.Setenv("API_PORT", "7001")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Data.Path != "env.csv" {
		t.Errorf("data path: got %q, want env.csv", c.Data.Path)
	}
	if c.Server.Port != 7001 {
		t.Errorf("port: got %d, want 7001", c.Server.Port)
	}
	if len(c.Server.CORSAllowOrigins) != 2 || c.Server.CORSAllowOrigins[1] != "https://b.example" {
		t.Errorf("cors origins: got %v", c.Server.CORSAllowOrigins)
	}
	if c.Server.RateLimit.Enabled {
		t.Error("rate limit should be disabled by env")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"no data path", func(c *Config) { c.Data.Path = "" }},
		{"zero rps", func(c *Config) { c.Chat.RPS = 0 }},
		{"zero window", func(c *Config) { c.Server.RateLimit.WindowSeconds = 0 }},
		{"zero requests", func(c *Config) { c.Server.RateLimit.Requests = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	c := DefaultConfig()
	c.Server.RateLimit.Enabled = false
	c.Server.RateLimit.WindowSeconds = 0
	if err := c.Validate(); err != nil {
		t.Errorf("disabled limiter should skip window check: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	c := DefaultConfig()
	c.Chat.Model = "custom-model"
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Chat.Model != "custom-model" {
		t.Errorf("model: got %q", got.Chat.Model)
	}
}

func TestRedacted(t *testing.T) {
	c := DefaultConfig()
	c.Chat.APIKey = "sk-secret"
	r := c.Redacted()
	if r.Chat.APIKey != "***" {
		t.Errorf("key not redacted: %q", r.Chat.APIKey)
	}
	if c.Chat.APIKey != "sk-secret" {
		t.Error("Redacted modified the original")
	}
}
