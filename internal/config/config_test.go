package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Goal != DefaultGoal {
		t.Errorf("goal = %q", cfg.Goal)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != DefaultConfig().Model {
		t.Errorf("model = %q, want default", cfg.Model)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".marginalia.yml")
	data := "model: gpt-4o\nserver:\n  port: 9999\nclient:\n  max_channels: 3\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d", cfg.Server.Port)
	}
	if cfg.Client.MaxChannels != 3 {
		t.Errorf("client.max_channels = %d", cfg.Client.MaxChannels)
	}
	// Untouched keys keep their defaults.
	if cfg.Goal != DefaultGoal {
		t.Errorf("goal = %q, want default", cfg.Goal)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".marginalia.yml")
	if err := os.WriteFile(path, []byte("model: gpt-4o\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MARGINALIA_MODEL", "gpt-4o-mini")
	t.Setenv("MARGINALIA_SERVER_PORT", "8080")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want env override", cfg.Model)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want env override", cfg.Server.Port)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".marginalia.yml")
	cfg := DefaultConfig()
	cfg.Goal = "focus on nautical terms"
	cfg.Chunking.MaxTokens = 512
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Goal != cfg.Goal {
		t.Errorf("goal = %q", loaded.Goal)
	}
	if loaded.Chunking.MaxTokens != 512 {
		t.Errorf("chunking.max_tokens = %d", loaded.Chunking.MaxTokens)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty model", func(c *Config) { c.Model = "" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"bad server url", func(c *Config) { c.Client.ServerURL = "not a url" }},
		{"zero channels", func(c *Config) { c.Client.MaxChannels = 0 }},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"overlap >= chunk size", func(c *Config) { c.Chunking.Overlap = c.Chunking.MaxTokens }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
