package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service settings, populated from an optional config file
// and VARTA_* environment variables.
type Config struct {
	Channel ChannelConfig `mapstructure:"channel"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// ChannelConfig describes the channel source carrying alert payloads.
type ChannelConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	Topic        string   `mapstructure:"topic"`
	CatchupLimit int      `mapstructure:"catchupLimit"`
}

// AlertsConfig describes the polled per-region status endpoint.
type AlertsConfig struct {
	URL              string        `mapstructure:"url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	PollInterval     time.Duration `mapstructure:"pollInterval"`
	RateLimitBackoff time.Duration `mapstructure:"rateLimitBackoff"`
}

// ServerConfig holds the operator HTTP API settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// StorageConfig points at the durable files. All three live under DataDir.
type StorageConfig struct {
	DataDir string `mapstructure:"dataDir"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CursorPath returns the path of the persisted cursor file.
func (s StorageConfig) CursorPath() string { return filepath.Join(s.DataDir, "cursor.json") }

// HistoryPath returns the path of the durable history file.
func (s StorageConfig) HistoryPath() string { return filepath.Join(s.DataDir, "history.json") }

// SettingsPath returns the path of the user settings file.
func (s StorageConfig) SettingsPath() string { return filepath.Join(s.DataDir, "settings.json") }

// Load reads configuration from the given file (optional) and the
// environment, applying defaults where unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("channel.brokers", []string{"localhost:9092"})
	v.SetDefault("channel.topic", "varta-alerts")
	v.SetDefault("channel.catchupLimit", 20)
	v.SetDefault("alerts.url", "https://ubilling.net.ua/aerialalerts/")
	v.SetDefault("alerts.timeout", "10s")
	v.SetDefault("alerts.pollInterval", "15s")
	v.SetDefault("alerts.rateLimitBackoff", "60s")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("storage.dataDir", "data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvPrefix("VARTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Channel.Brokers) == 0 {
		return errors.New("channel.brokers is required")
	}
	if c.Channel.Topic == "" {
		return errors.New("channel.topic is required")
	}
	if c.Channel.CatchupLimit <= 0 {
		return errors.New("channel.catchupLimit must be positive")
	}
	if c.Alerts.URL == "" {
		return errors.New("alerts.url is required")
	}
	if c.Alerts.PollInterval <= 0 {
		return errors.New("alerts.pollInterval must be positive")
	}
	if c.Alerts.RateLimitBackoff <= 0 {
		return errors.New("alerts.rateLimitBackoff must be positive")
	}
	if c.Storage.DataDir == "" {
		return errors.New("storage.dataDir is required")
	}
	return nil
}
