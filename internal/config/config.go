// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the groundlink TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

// Config is the full groundlink configuration
type Config struct {
	Link      LinkConfig      `toml:"link"`
	Serial    SerialConfig    `toml:"serial"`
	WebSocket WebSocketConfig `toml:"websocket"`
	TCP       TCPConfig       `toml:"tcp"`
	Database  DatabaseConfig  `toml:"database"`
	Archive   ArchiveConfig   `toml:"archive"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// LinkConfig holds framing and queueing settings
type LinkConfig struct {
	StartDelimiter    int    `toml:"start_delimiter"`
	StopDelimiter     int    `toml:"stop_delimiter"`
	MaxFrameSize      int    `toml:"max_frame_size"`
	InboundQueueSize  int    `toml:"inbound_queue_size"`
	OutboundQueueSize int    `toml:"outbound_queue_size"`
	Timezone          string `toml:"timezone"`
}

type SerialConfig struct {
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
}

type WebSocketConfig struct {
	URL         string `toml:"url"`
	Username    string `toml:"username"`
	NoSSLVerify bool   `toml:"no_ssl_verify"`
}

type TCPConfig struct {
	Addr string `toml:"addr"`
}

type DatabaseConfig struct {
	DSN string `toml:"dsn"`
}

type ArchiveConfig struct {
	Path string `toml:"path"`
}

type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Link: LinkConfig{
			StartDelimiter:    int(groundlink.DefaultStartDelimiter),
			StopDelimiter:     int(groundlink.DefaultStopDelimiter),
			MaxFrameSize:      groundlink.DefaultMaxFrameSize,
			InboundQueueSize:  groundlink.DefaultQueueSize,
			OutboundQueueSize: groundlink.DefaultQueueSize,
			Timezone:          "UTC",
		},
		Serial: SerialConfig{Baud: 115200},
	}
}

// Load reads path over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and connection settings
func (c Config) Validate() error {
	if !isByte(c.Link.StartDelimiter) || !isByte(c.Link.StopDelimiter) {
		return errors.New("link delimiters must be in 0..255")
	}
	if c.Link.StartDelimiter == c.Link.StopDelimiter {
		return errors.New("link start and stop delimiters must differ")
	}
	if c.Link.InboundQueueSize < 0 || c.Link.OutboundQueueSize < 0 {
		return errors.New("link queue sizes must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial baud %d must be positive", c.Serial.Baud)
	}
	if u := strings.TrimSpace(c.WebSocket.URL); u != "" {
		parsed, err := url.Parse(u)
		if err != nil {
			return fmt.Errorf("websocket url: %w", err)
		}
		if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
			return fmt.Errorf("websocket url must use ws:// or wss://, got %q", parsed.Scheme)
		}
	}
	return nil
}

// Location resolves the configured timestamp timezone
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Link.Timezone)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("link timezone %q: %w", tz, err)
	}
	return loc, nil
}

// LinkConfig builds the library link configuration. Validate must have
// succeeded first.
func (c Config) LinkConfig() groundlink.Config {
	lc := groundlink.DefaultConfig()
	lc.StartDelimiter = byte(c.Link.StartDelimiter)
	lc.StopDelimiter = byte(c.Link.StopDelimiter)
	lc.MaxFrameSize = c.Link.MaxFrameSize
	lc.InboundQueueSize = c.Link.InboundQueueSize
	lc.OutboundQueueSize = c.Link.OutboundQueueSize
	if loc, err := c.Location(); err == nil {
		lc.Location = loc
	}
	return lc
}

func isByte(v int) bool {
	return v >= 0 && v <= 0xFF
}
