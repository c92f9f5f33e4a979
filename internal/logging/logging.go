// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "GROUNDLINK_LOG_LEVEL"
	EnvLogNoColor = "GROUNDLINK_LOG_NOCOLOR"
	EnvLogJSON    = "GROUNDLINK_LOG_JSON"
)

// Options controls logger construction
type Options struct {
	Level   zerolog.Level
	NoColor bool
	JSON    bool
	Out     io.Writer
}

// DefaultOptions returns console logging at info level on stderr
func DefaultOptions() Options {
	return Options{Level: zerolog.InfoLevel, Out: os.Stderr}
}

// ApplyEnv overrides opts from GROUNDLINK_LOG_* variables. Unparseable
// values are ignored.
func ApplyEnv(opts *Options, getenv func(string) string) {
	if lvl, ok := ParseLevel(getenv(EnvLogLevel)); ok {
		opts.Level = lvl
	}
	if v, ok := parseBool(getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
	if v, ok := parseBool(getenv(EnvLogJSON)); ok {
		opts.JSON = v
	}
}

// New builds a logger from opts
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		}
	}
	return zerolog.New(out).Level(opts.Level).With().Timestamp().Str("app", "groundlink").Logger()
}

// Init builds a logger from opts plus the environment and installs it as
// the global logger.
func Init(opts Options) zerolog.Logger {
	ApplyEnv(&opts, os.Getenv)
	logger := New(opts)
	log.Logger = logger
	return logger
}

// ParseLevel accepts zerolog level names plus a few aliases
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
