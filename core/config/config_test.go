package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc", AdminID: 42, RunMode: "webhook"},
		Webhook:  WebhookConfig{URL: "https://bot.example.com"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Webhook.Path != "/webhook" {
		t.Fatalf("webhook path = %q, expected /webhook", cfg.Webhook.Path)
	}
	if cfg.Webhook.Listen != "0.0.0.0" || cfg.Webhook.Port != 8080 {
		t.Fatalf("listen defaults not applied: %s:%d", cfg.Webhook.Listen, cfg.Webhook.Port)
	}
	if cfg.Sheets.Worksheet != "Sheet1" {
		t.Fatalf("worksheet default not applied: %q", cfg.Sheets.Worksheet)
	}
}

func TestNormalizePathSlash(t *testing.T) {
	cfg := validConfig()
	cfg.Webhook.Path = "tg/updates"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Webhook.Path != "/tg/updates" {
		t.Fatalf("path = %q, expected leading slash", cfg.Webhook.Path)
	}
}

func TestNormalizeRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "token is required"},
		{"missing admin", func(c *Config) { c.Telegram.AdminID = 0 }, "admin_id is required"},
		{"missing webhook url", func(c *Config) { c.Webhook.URL = "" }, "webhook.url is required"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }, "invalid telegram.run_mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Normalize(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, expected to contain %q", err, tt.want)
			}
		})
	}
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, expected %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}
