// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/negevsat/groundlink/internal/archive"
	"github.com/negevsat/groundlink/internal/store"
	"github.com/negevsat/groundlink/pkg/groundlink"
)

var replayToDB bool

var replayCmd = &cobra.Command{
	Use:   "replay <archive>",
	Short: "Print or re-insert records from a CBOR archive",
	Long: `Read a record archive written by 'ingest --archive' and print every record.

With --to-db the records are inserted into the configured database instead,
in archive order.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayToDB, "to-db", false, "Insert records into [database] dsn")
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	ctx, stop := signalContext()
	defer stop()

	out := cmd.OutOrStdout()
	var gw groundlink.Gateway = groundlink.RecordFunc(func(_ context.Context, rec groundlink.Record) error {
		_, err := fmt.Fprint(out, groundlink.FormatRecord(rec))
		return err
	})
	if replayToDB {
		if cfg.Database.DSN == "" {
			return errors.New("--to-db needs [database] dsn in the config file")
		}
		st, err := store.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer st.Close()
		gw = st
	}

	n, err := replayArchive(ctx, f, gw)
	logger.Info().Int("records", n).Msg("replay finished")
	return err
}

// replayArchive forwards every archived record to gw in order
func replayArchive(ctx context.Context, r io.Reader, gw groundlink.Gateway) (int, error) {
	ar := archive.NewReader(r)
	n := 0
	for ctx.Err() == nil {
		rec, err := ar.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := groundlink.Forward(ctx, gw, rec); err != nil {
			return n, fmt.Errorf("record %d: %w", n+1, err)
		}
		n++
	}
	return n, ctx.Err()
}
