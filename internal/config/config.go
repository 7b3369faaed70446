package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rewired-gh/deadredux/internal/daily"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Relisten RelistenConfig `mapstructure:"relisten"`
	Player   PlayerConfig   `mapstructure:"player"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	BaseURL           string        `mapstructure:"base_url"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig holds the show catalog location and archive start
type CatalogConfig struct {
	Path       string `mapstructure:"path"`
	LaunchDate string `mapstructure:"launch_date"`
}

// RelistenConfig holds Relisten API configuration
type RelistenConfig struct {
	APIBaseURL   string        `mapstructure:"api_base_url"`
	Timeout      time.Duration `mapstructure:"timeout"` // 0 keeps the transport default
	UserAgent    string        `mapstructure:"user_agent"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
}

// PlayerConfig holds the external player and show page bases
type PlayerConfig struct {
	EmbedBaseURL    string `mapstructure:"embed_base_url"`
	RelistenSiteURL string `mapstructure:"relisten_site_url"`
}

// StorageConfig holds the details cache configuration
type StorageConfig struct {
	DBPath        string        `mapstructure:"db_path"`
	DetailsTTL    time.Duration `mapstructure:"details_ttl"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// TelegramConfig holds Telegram announcement configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	CheckInterval  time.Duration `mapstructure:"check_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	// DEAD_REDUX_SERVER_ADDR overrides server.addr
	v.SetEnvPrefix("DEAD_REDUX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "https://dead-redux.vercel.app")
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("catalog.path", "./data/shows.json")
	v.SetDefault("catalog.launch_date", daily.DefaultLaunchDate)

	v.SetDefault("relisten.api_base_url", "https://api.relisten.net/api/v2/artists/grateful-dead")
	v.SetDefault("relisten.timeout", "0s")
	v.SetDefault("relisten.user_agent", "dead-redux")
	v.SetDefault("relisten.request_delay", "200ms")

	v.SetDefault("player.embed_base_url", "https://archive.org/embed")
	v.SetDefault("player.relisten_site_url", "https://relisten.net/grateful-dead")

	v.SetDefault("storage.db_path", "./data/deadredux.db")
	v.SetDefault("storage.details_ttl", "24h")
	v.SetDefault("storage.prune_interval", "1h")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")
	v.SetDefault("telegram.check_interval", "15m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "auto")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if err := validateURL(c.Server.BaseURL); err != nil {
		return fmt.Errorf("server.base_url %w", err)
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("server.read_header_timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if !daily.IsValidDate(c.Catalog.LaunchDate) {
		return fmt.Errorf("catalog.launch_date must be a YYYY-MM-DD calendar date")
	}

	if err := validateURL(c.Relisten.APIBaseURL); err != nil {
		return fmt.Errorf("relisten.api_base_url %w", err)
	}
	if c.Relisten.Timeout < 0 {
		return fmt.Errorf("relisten.timeout must not be negative")
	}
	if c.Relisten.RequestDelay < 0 {
		return fmt.Errorf("relisten.request_delay must not be negative")
	}

	if err := validateURL(c.Player.EmbedBaseURL); err != nil {
		return fmt.Errorf("player.embed_base_url %w", err)
	}
	if err := validateURL(c.Player.RelistenSiteURL); err != nil {
		return fmt.Errorf("player.relisten_site_url %w", err)
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.DetailsTTL < 1*time.Minute {
		return fmt.Errorf("storage.details_ttl must be at least 1 minute")
	}
	if c.Storage.PruneInterval < 1*time.Minute {
		return fmt.Errorf("storage.prune_interval must be at least 1 minute")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.CheckInterval < 1*time.Minute {
			return fmt.Errorf("telegram.check_interval must be at least 1 minute")
		}
	}
	if c.Telegram.MaxRetries < 0 {
		return fmt.Errorf("telegram.max_retries must not be negative")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"auto": true, "json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: auto, json, text")
	}

	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("must be an absolute http(s) URL")
	}
	return nil
}
