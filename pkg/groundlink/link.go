// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config holds link framing, queueing and decoding settings
type Config struct {
	StartDelimiter    byte
	StopDelimiter     byte
	MaxFrameSize      int
	InboundQueueSize  int
	OutboundQueueSize int
	Location          *time.Location
	Logger            zerolog.Logger
	Observer          Observer
}

// DefaultConfig returns the default link configuration
func DefaultConfig() Config {
	return Config{
		StartDelimiter:    DefaultStartDelimiter,
		StopDelimiter:     DefaultStopDelimiter,
		MaxFrameSize:      DefaultMaxFrameSize,
		InboundQueueSize:  DefaultQueueSize,
		OutboundQueueSize: DefaultQueueSize,
		Location:          time.UTC,
		Logger:            zerolog.Nop(),
	}
}

// Link owns both queues and both workers of one ground station connection.
// It is constructed once and shared by the inbound and outbound paths.
type Link struct {
	Inbound  *Queue[RawMessage]
	Outbound *Queue[OutboundCommand]
	Framer   *Framer
	Parser   *Parser
	Writer   *Writer

	log zerolog.Logger
}

// NewLink wires a framer, parser and writer around two fresh queues.
// Decoded records go to gw; outbound frames are written to sink.
func NewLink(cfg Config, gw Gateway, sink io.Writer) *Link {
	obs := cfg.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	inbound := NewQueue[RawMessage](cfg.InboundQueueSize)
	outbound := NewQueue[OutboundCommand](cfg.OutboundQueueSize)

	framer := NewFramer(cfg.StartDelimiter, cfg.StopDelimiter, cfg.MaxFrameSize)
	framer.SetObserver(obs)

	return &Link{
		Inbound:  inbound,
		Outbound: outbound,
		Framer:   framer,
		Parser: NewParser(inbound, gw, ParserConfig{
			Codec:    NewTimestampCodec(cfg.Location),
			Logger:   cfg.Logger.With().Str("worker", "parser").Logger(),
			Observer: obs,
		}),
		Writer: NewWriter(sink, outbound, WriterConfig{
			StartDelimiter: cfg.StartDelimiter,
			StopDelimiter:  cfg.StopDelimiter,
			Logger:         cfg.Logger.With().Str("worker", "writer").Logger(),
			Observer:       obs,
		}),
		log: cfg.Logger,
	}
}

// Send queues an outbound command
func (l *Link) Send(ctx context.Context, cmd OutboundCommand) error {
	return l.Writer.Send(ctx, cmd)
}

// Run pumps r through the framer and runs the parser and writer until ctx ends
// or the stream fails. The end of the stream (io.EOF) stops only the pump; the
// workers keep running until ctx ends. If r is an io.Closer it is closed when
// the link stops so a blocked read returns.
func (l *Link) Run(ctx context.Context, r io.Reader) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := l.Framer.Pump(gctx, r, l.Inbound)
		if err == nil {
			l.log.Info().Msg("inbound stream ended")
		}
		return ignoreStopped(err)
	})
	g.Go(func() error {
		return l.Parser.Run(gctx)
	})
	g.Go(func() error {
		return l.Writer.Run(gctx)
	})
	if c, ok := r.(io.Closer); ok {
		g.Go(func() error {
			<-gctx.Done()
			c.Close()
			return nil
		})
	}

	return ignoreStopped(g.Wait())
}

func ignoreStopped(err error) error {
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return err
}
