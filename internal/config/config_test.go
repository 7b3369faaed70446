package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	content := `
server:
  addr: ":9090"
  base_url: "https://dead.example"

catalog:
  path: "./data/test-shows.json"
  launch_date: "2026-03-01"

relisten:
  api_base_url: "https://relisten.example/api/v2/artists/grateful-dead"
  timeout: 15s

storage:
  db_path: "./data/test.db"
  details_ttl: 12h

telegram:
  bot_token: "test_token"
  chat_id: "12345"
  enabled: true

logging:
  level: "debug"
  format: "text"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Catalog.LaunchDate != "2026-03-01" {
		t.Errorf("Unexpected launch date: %s", cfg.Catalog.LaunchDate)
	}
	if cfg.Relisten.Timeout != 15*time.Second {
		t.Errorf("Unexpected timeout: %v", cfg.Relisten.Timeout)
	}
	if cfg.Storage.DetailsTTL != 12*time.Hour {
		t.Errorf("Unexpected details ttl: %v", cfg.Storage.DetailsTTL)
	}
	if !cfg.Telegram.Enabled || cfg.Telegram.ChatID != "12345" {
		t.Errorf("Unexpected telegram config: %+v", cfg.Telegram)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Catalog.LaunchDate != "2026-02-16" {
		t.Errorf("Expected default launch date, got %s", cfg.Catalog.LaunchDate)
	}
	if cfg.Relisten.Timeout != 0 {
		t.Errorf("Expected no explicit relisten timeout, got %v", cfg.Relisten.Timeout)
	}
	if cfg.Relisten.RequestDelay != 200*time.Millisecond {
		t.Errorf("Expected 200ms request delay, got %v", cfg.Relisten.RequestDelay)
	}
	if cfg.Storage.DetailsTTL != 24*time.Hour {
		t.Errorf("Expected 24h details ttl, got %v", cfg.Storage.DetailsTTL)
	}
	if cfg.Player.EmbedBaseURL != "https://archive.org/embed" {
		t.Errorf("Unexpected embed base: %s", cfg.Player.EmbedBaseURL)
	}
	if cfg.Logging.Format != "auto" {
		t.Errorf("Expected auto log format, got %s", cfg.Logging.Format)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DEAD_REDUX_SERVER_ADDR", ":7070")

	cfg, err := Load(writeConfig(t, "server:\n  addr: \":9090\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Expected env override :7070, got %s", cfg.Server.Addr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			BaseURL:           "https://dead.example",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:       "./data/shows.json",
			LaunchDate: "2026-02-16",
		},
		Relisten: RelistenConfig{
			APIBaseURL:   "https://api.relisten.net/api/v2/artists/grateful-dead",
			RequestDelay: 200 * time.Millisecond,
		},
		Player: PlayerConfig{
			EmbedBaseURL:    "https://archive.org/embed",
			RelistenSiteURL: "https://relisten.net/grateful-dead",
		},
		Storage: StorageConfig{
			DBPath:        "./data/deadredux.db",
			DetailsTTL:    24 * time.Hour,
			PruneInterval: time.Hour,
		},
		Telegram: TelegramConfig{
			MaxRetries:    3,
			CheckInterval: 15 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "/dead" }, true},
		{"bad launch date", func(c *Config) { c.Catalog.LaunchDate = "2026/02/16" }, true},
		{"missing catalog path", func(c *Config) { c.Catalog.Path = "" }, true},
		{"ftp relisten url", func(c *Config) { c.Relisten.APIBaseURL = "ftp://relisten.net" }, true},
		{"negative timeout", func(c *Config) { c.Relisten.Timeout = -time.Second }, true},
		{"short ttl", func(c *Config) { c.Storage.DetailsTTL = 30 * time.Second }, true},
		{"missing db path", func(c *Config) { c.Storage.DBPath = "" }, true},
		{"missing telegram token when enabled", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.ChatID = "1"
		}, true},
		{"missing telegram chat when enabled", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.BotToken = "t"
		}, true},
		{"telegram disabled without token", func(c *Config) { c.Telegram.Enabled = false }, false},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
