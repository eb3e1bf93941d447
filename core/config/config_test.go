package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "123:abc"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
	if cfg.HTTP.Port != DefaultHTTPPort {
		t.Fatalf("port = %d, want %d", cfg.HTTP.Port, DefaultHTTPPort)
	}
}

func TestNormalizeValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "missing token", cfg: Config{}},
		{name: "webhook without url", cfg: Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}},
		{name: "unknown run mode", cfg: Config{Telegram: TelegramConfig{Token: "t", RunMode: "push"}}},
		{name: "negative poll timeout", cfg: Config{Telegram: TelegramConfig{Token: "t", LongPollTimeoutSeconds: -1}}},
		{name: "port out of range", cfg: Config{Telegram: TelegramConfig{Token: "t"}, HTTP: HTTPConfig{Port: 70000}}},
		{name: "bad exclusion", cfg: Config{Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"inline"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			if err := Normalize(&cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "t", RunMode: " Polling "},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Media ", ""}},
	}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateMedia {
		t.Fatalf("exclusion = %q", cfg.RateLimit.ExcludeUpdates[0])
	}
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "telegram:\n  token: from-file\n  run_mode: webhook\nwebhook:\n  url: https://bot.example.com/\nhttp:\n  port: 8080\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	var cfg Config
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("port = %d, want 8080 from file", cfg.HTTP.Port)
	}
	if got := cfg.Webhook.PublicURL(cfg.Telegram.Token); got != "https://bot.example.com/webhook/from-env" {
		t.Fatalf("public url = %q", got)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-only")
	t.Setenv("PORT", "9090")

	var cfg Config
	if err := Load("", &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "env-only" || cfg.HTTP.Port != 9090 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got := cfg.HTTP.ListenAddr(); got != ":9090" {
		t.Fatalf("listen addr = %q", got)
	}
}
