// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/negevsat/groundlink/internal/config"
	"github.com/negevsat/groundlink/internal/logging"
	"github.com/negevsat/groundlink/pkg/groundlink"
)

var (
	configPath string
	logLevel   string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// TCP connection flags
	tcpAddr string

	// Resolved in PersistentPreRunE
	cfg    config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "groundlink",
	Short: "Ground station telemetry link",
	Long: `Groundlink - ingest satellite telemetry and dispatch commands over a
delimiter-framed link.

Inbound frames carry XML documents (Static, Temperature and Energy packets)
which are decoded into records and stored. Outbound commands are framed with
the same delimiters and written to the link.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  TCP:       --tcp host:port

Settings may also come from a TOML file given with --config. Flags override
the file.

For WebSocket authentication, the password is read from the GROUNDLINK_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// TCP connection flags
	rootCmd.PersistentFlags().StringVar(&tcpAddr, "tcp", "", "TCP address of a simulator (host:port)")
}

// loadSettings reads the config file and applies explicitly set flags on top
func loadSettings(cmd *cobra.Command, _ []string) error {
	opts := logging.DefaultOptions()
	if lvl, ok := logging.ParseLevel(logLevel); ok {
		opts.Level = lvl
	}
	logger = logging.Init(opts)

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		loaded.Serial.Port = portName
	}
	if flags.Changed("baud") {
		loaded.Serial.Baud = baudRate
	}
	if flags.Changed("url") {
		loaded.WebSocket.URL = wsURL
	}
	if flags.Changed("username") {
		loaded.WebSocket.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		loaded.WebSocket.NoSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("tcp") {
		loaded.TCP.Addr = tcpAddr
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	cfg = loaded
	return nil
}

// linkConfig returns the library link configuration with the command logger
func linkConfig() groundlink.Config {
	lc := cfg.LinkConfig()
	lc.Logger = logger
	return lc
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
