// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/negevsat/groundlink/internal/archive"
	"github.com/negevsat/groundlink/internal/metrics"
	"github.com/negevsat/groundlink/internal/store"
	"github.com/negevsat/groundlink/pkg/groundlink"
)

var (
	ingestDSN           string
	ingestArchive       string
	ingestMetricsAddr   string
	ingestStatsInterval int
	ingestMigrate       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the headless telemetry pipeline",
	Long: `Read telemetry from the connection and persist every decoded record.

Records go to PostgreSQL (--dsn or [database] dsn) and/or a CBOR archive file
(--archive or [archive] path). With neither, records are only logged.
Prometheus metrics are served on --metrics-addr when set.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestDSN, "dsn", "", "PostgreSQL connection string")
	ingestCmd.Flags().StringVar(&ingestArchive, "archive", "", "CBOR archive file to append records to")
	ingestCmd.Flags().StringVar(&ingestMetricsAddr, "metrics-addr", "", "Address for the /metrics endpoint (e.g. :9102)")
	ingestCmd.Flags().IntVar(&ingestStatsInterval, "stats-interval", 60, "Statistics log interval (seconds, 0 disables)")
	ingestCmd.Flags().BoolVar(&ingestMigrate, "migrate", false, "Create database tables before ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("dsn") {
		cfg.Database.DSN = ingestDSN
	}
	if cmd.Flags().Changed("archive") {
		cfg.Archive.Path = ingestArchive
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr = ingestMetricsAddr
	}

	ctx, stop := signalContext()
	defer stop()

	gateways, closeAll, err := openGateways(ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	conn, connInfo, err := OpenConnection(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info().Str("connection", connInfo).Int("gateways", len(gateways)).Msg("ingest started")

	stats := groundlink.NewStatistics()
	prom := metrics.NewObserver()
	lc := linkConfig()
	lc.Observer = groundlink.MultiObserver{stats, prom}
	link := groundlink.NewLink(lc, gateways, conn)
	prom.WatchQueues(link)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return link.Run(gctx, conn)
	})
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			logger.Info().Str("addr", cfg.Metrics.Addr).Msg("serving metrics")
			if err := prom.Serve(gctx, cfg.Metrics.Addr); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	if ingestStatsInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(time.Duration(ingestStatsInterval) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					stats.CalculateRates()
					snap := stats.Snapshot()
					logger.Info().
						Uint64("frames", snap.Frames).
						Uint64("records", snap.Records()).
						Uint64("errors", snap.Errors()).
						Float64("frame_rate", snap.FrameRate).
						Msg("link statistics")
				}
			}
		})
	}

	err = g.Wait()
	logger.Info().Str("stats", stats.String()).Msg("ingest stopped")
	return err
}

// openGateways builds the configured persistence targets
func openGateways(ctx context.Context) (groundlink.MultiGateway, func(), error) {
	var gateways groundlink.MultiGateway
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Database.DSN != "" {
		st, err := store.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, st.Close)
		if ingestMigrate {
			if err := st.Migrate(ctx); err != nil {
				closeAll()
				return nil, func() {}, err
			}
		}
		gateways = append(gateways, st)
	}

	if cfg.Archive.Path != "" {
		aw, err := archive.Create(cfg.Archive.Path)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, aw.Close)
		gateways = append(gateways, aw)
	}

	if len(gateways) == 0 {
		logger.Warn().Msg("no database or archive configured, records are only logged")
		gateways = append(gateways, groundlink.RecordFunc(func(context.Context, groundlink.Record) error {
			return nil
		}))
	}
	return gateways, closeAll, nil
}
