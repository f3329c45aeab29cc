package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Timer         TimerConfig         `toml:"timer"`
	Notifications NotificationsConfig `toml:"notifications"`
	Review        ReviewConfig        `toml:"review"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds storage settings
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// TimerConfig holds focus-timer durations
type TimerConfig struct {
	WorkMinutes  int  `toml:"work_minutes"`
	BreakMinutes int  `toml:"break_minutes"`
	Sound        bool `toml:"sound"`
}

// WorkDuration returns the work session length
func (t TimerConfig) WorkDuration() time.Duration {
	return time.Duration(t.WorkMinutes) * time.Minute
}

// BreakDuration returns the break session length
func (t TimerConfig) BreakDuration() time.Duration {
	return time.Duration(t.BreakMinutes) * time.Minute
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	Desktop      bool   `toml:"desktop"`
	SlackWebhook string `toml:"slack_webhook"`
}

// ReviewConfig holds the daily-review digest schedule
type ReviewConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(home, ".taskflow", "taskflow.db"),
		},
		Timer: TimerConfig{
			WorkMinutes:  25,
			BreakMinutes: 5,
			Sound:        true,
		},
		Notifications: NotificationsConfig{
			Desktop: true,
		},
		Review: ReviewConfig{
			Enabled: true,
			Cron:    "0 21 * * *",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults.
// Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.applyEnv()

	return cfg, nil
}

// applyEnv overrides file values with TASKFLOW_* environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("TASKFLOW_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("TASKFLOW_DB"); v != "" {
		c.Database.Path = ExpandPath(v)
	}
	if v := os.Getenv("TASKFLOW_SLACK_WEBHOOK"); v != "" {
		c.Notifications.SlackWebhook = v
	}
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taskflow", "config.toml")
}
