// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

var rawLogFrames bool

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display frames and decoded records in human-readable format",
	Long: `Continuously frame, decode and display telemetry as it arrives.

Each decoded record is printed instead of being stored. With --frames the raw
payload of every frame is printed before it is decoded.

Supports serial, WebSocket and TCP connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogFrames, "frames", false, "Print raw frame payloads")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	conn, connInfo, err := OpenConnection(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Groundlink - Raw Log\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Press Ctrl+C to exit\n\n")

	lc := linkConfig()
	printer := groundlink.RecordFunc(func(_ context.Context, rec groundlink.Record) error {
		fmt.Fprint(out, groundlink.FormatRecord(rec))
		return nil
	})
	parser := groundlink.NewParser(nil, printer, groundlink.ParserConfig{
		Codec:  groundlink.NewTimestampCodec(lc.Location),
		Logger: lc.Logger,
	})
	framer := groundlink.NewFramer(lc.StartDelimiter, lc.StopDelimiter, lc.MaxFrameSize)

	buf := make([]byte, 512)
	for {
		n, err := conn.Read(buf)
		for _, msg := range framer.Write(buf[:n]) {
			if rawLogFrames {
				fmt.Fprint(out, groundlink.FormatFrame(time.Now(), msg))
			}
			if outcome := parser.Process(ctx, msg); outcome.Kind == groundlink.OutcomeSkip {
				fmt.Fprintf(out, "(echo skipped)\n")
			}
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) {
				logger.Info().Msg("connection closed")
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}
	}
}
