// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

var sendTimeout time.Duration

var sendCmd = &cobra.Command{
	Use:   "send [command...]",
	Short: "Frame and transmit commands",
	Long: `Frame each command with the link delimiters and write it to the connection.

Commands are taken from the arguments, or one per line from stdin when no
arguments are given. Command content is opaque and sent as-is.`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 10*time.Second, "Time allowed for all commands to be written")
}

func runSend(cmd *cobra.Command, args []string) error {
	commands := args
	if len(commands) == 0 {
		var err error
		commands, err = readCommandLines(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}
	if len(commands) == 0 {
		return fmt.Errorf("no commands to send")
	}

	ctx, stop := signalContext()
	defer stop()

	conn, connInfo, err := OpenConnection(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Info().Str("connection", connInfo).Int("commands", len(commands)).Msg("sending commands")

	stats := groundlink.NewStatistics()
	sent, err := sendCommands(ctx, conn, commands, stats)
	if err != nil {
		return err
	}
	snap := stats.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "sent %d of %d commands (%d write errors)\n", snap.CommandsSent, sent, snap.WriteErrors)
	if snap.WriteErrors > 0 {
		return fmt.Errorf("%d commands failed", snap.WriteErrors)
	}
	return nil
}

// sendCommands queues commands on a writer over sink and waits until each
// one has been attempted
func sendCommands(ctx context.Context, sink io.Writer, commands []string, stats *groundlink.Statistics) (int, error) {
	lc := linkConfig()
	q := groundlink.NewQueue[groundlink.OutboundCommand](lc.OutboundQueueSize)
	w := groundlink.NewWriter(sink, q, groundlink.WriterConfig{
		StartDelimiter: lc.StartDelimiter,
		StopDelimiter:  lc.StopDelimiter,
		Logger:         lc.Logger,
		Observer:       stats,
	})

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for _, c := range commands {
		if err := w.Send(ctx, groundlink.OutboundCommand(c)); err != nil {
			return 0, fmt.Errorf("queue command: %w", err)
		}
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		snap := stats.Snapshot()
		if int(snap.CommandsSent+snap.WriteErrors) >= len(commands) {
			cancel()
			<-done
			return len(commands), nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return 0, fmt.Errorf("timed out after %s with %d of %d commands written", sendTimeout, snap.CommandsSent, len(commands))
		}
	}
}

func readCommandLines(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return out, nil
}
