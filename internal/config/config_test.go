// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "groundlink.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lc := cfg.LinkConfig()
	if lc.StartDelimiter != groundlink.DefaultStartDelimiter || lc.StopDelimiter != groundlink.DefaultStopDelimiter {
		t.Errorf("delimiters = %#x/%#x", lc.StartDelimiter, lc.StopDelimiter)
	}
	if cfg.Serial.Baud != 115200 {
		t.Errorf("baud = %d", cfg.Serial.Baud)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[link]
start_delimiter = 123
stop_delimiter = 125
timezone = "Asia/Jerusalem"

[tcp]
addr = "127.0.0.1:4000"

[database]
dsn = "postgres://ground@localhost/telemetry?sslmode=disable"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lc := cfg.LinkConfig()
	if lc.StartDelimiter != '{' || lc.StopDelimiter != '}' {
		t.Errorf("delimiters = %q/%q", lc.StartDelimiter, lc.StopDelimiter)
	}
	if lc.Location.String() != "Asia/Jerusalem" {
		t.Errorf("location = %s", lc.Location)
	}
	if lc.InboundQueueSize != groundlink.DefaultQueueSize {
		t.Errorf("unset keys should keep defaults, queue = %d", lc.InboundQueueSize)
	}
	if cfg.TCP.Addr != "127.0.0.1:4000" || !strings.HasPrefix(cfg.Database.DSN, "postgres://") {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"same delimiters", func(c *Config) { c.Link.StopDelimiter = c.Link.StartDelimiter }},
		{"delimiter out of range", func(c *Config) { c.Link.StartDelimiter = 300 }},
		{"negative queue", func(c *Config) { c.Link.InboundQueueSize = -1 }},
		{"bad timezone", func(c *Config) { c.Link.Timezone = "Mars/Olympus" }},
		{"zero baud", func(c *Config) { c.Serial.Baud = 0 }},
		{"http websocket", func(c *Config) { c.WebSocket.URL = "http://example.com/ws" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "[link\nstart_delimiter = ")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
