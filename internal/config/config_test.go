package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Timer.WorkMinutes != 25 || cfg.Timer.BreakMinutes != 5 {
		t.Errorf("timer defaults = %d/%d, want 25/5", cfg.Timer.WorkMinutes, cfg.Timer.BreakMinutes)
	}
	if cfg.Timer.WorkDuration() != 25*time.Minute {
		t.Errorf("WorkDuration = %v", cfg.Timer.WorkDuration())
	}
	if cfg.Server.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr = %s", cfg.Server.Addr())
	}
	if cfg.Review.Cron != "0 21 * * *" {
		t.Errorf("review cron = %s", cfg.Review.Cron)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9999

[timer]
work_minutes = 50
break_minutes = 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Timer.WorkMinutes != 50 {
		t.Errorf("WorkMinutes = %d, want 50", cfg.Timer.WorkMinutes)
	}
	// Untouched sections keep defaults
	if cfg.Database.Path == "" {
		t.Error("database path should default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKFLOW_PORT", "7001")
	t.Setenv("TASKFLOW_SLACK_WEBHOOK", "https://hooks.slack.invalid/x")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Port = %d, want env override 7001", cfg.Server.Port)
	}
	if cfg.Notifications.SlackWebhook == "" {
		t.Error("slack webhook env override not applied")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	if got := ExpandPath("~/data/db"); got != filepath.Join(home, "data/db") {
		t.Errorf("ExpandPath = %s", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %s", got)
	}
}
