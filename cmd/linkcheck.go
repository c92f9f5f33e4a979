// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

var linkTestTimeout int

var linkTestCmd = &cobra.Command{
	Use:   "link_test",
	Short: "Test connection by waiting for a valid telemetry record",
	Long: `Wait for one decodable telemetry record on the connection until timeout.

Line noise, echoes and invalid documents are ignored; the command succeeds on
the first Static, Temperature or Energy record.

Exit codes:
  0 - Record received before timeout
  1 - Timeout reached without receiving a valid record
  2 - Connection error`,
	RunE: runLinkTest,
}

func init() {
	rootCmd.AddCommand(linkTestCmd)
	linkTestCmd.Flags().IntVar(&linkTestTimeout, "timeout", 10, "Timeout in seconds to wait for a record")
}

func runLinkTest(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	conn, connInfo, err := OpenConnection(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Groundlink - Link Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", linkTestTimeout)
	fmt.Printf("Waiting for a valid telemetry record...\n\n")

	recChan := make(chan groundlink.Record, 1)
	gw := groundlink.RecordFunc(func(_ context.Context, rec groundlink.Record) error {
		select {
		case recChan <- rec:
		default:
		}
		return nil
	})

	stats := groundlink.NewStatistics()
	lc := linkConfig()
	lc.Observer = stats
	link := groundlink.NewLink(lc, gw, conn)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(linkTestTimeout)*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() { errChan <- link.Run(ctx, conn) }()

	select {
	case rec := <-recChan:
		cancel()
		<-errChan
		fmt.Printf("SUCCESS: Received valid record\n")
		fmt.Printf("  Type: %s\n", rec.PacketType())
		fmt.Printf("  %s\n", groundlink.SummarizeRecord(rec))
		fmt.Printf("  Link: %s\n", stats)
		os.Exit(0)

	case err := <-errChan:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid record received within %d seconds (%s)\n", linkTestTimeout, stats)
		os.Exit(1)
	}

	return nil
}
