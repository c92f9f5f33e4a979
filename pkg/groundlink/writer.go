// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Frame wraps payload in the start and stop delimiters
func Frame(start, stop byte, payload []byte) []byte {
	out := make([]byte, 0, len(payload)+2)
	out = append(out, start)
	out = append(out, payload...)
	out = append(out, stop)
	return out
}

// WriterConfig configures a Writer
type WriterConfig struct {
	StartDelimiter byte
	StopDelimiter  byte
	Logger         zerolog.Logger
	Observer       Observer
}

// Writer drains the outbound queue onto the transport sink
type Writer struct {
	sink  io.Writer
	queue *Queue[OutboundCommand]
	start byte
	stop  byte
	log   zerolog.Logger
	obs   Observer
}

// NewWriter creates a command writer draining q into sink
func NewWriter(sink io.Writer, q *Queue[OutboundCommand], cfg WriterConfig) *Writer {
	obs := cfg.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	return &Writer{
		sink:  sink,
		queue: q,
		start: cfg.StartDelimiter,
		stop:  cfg.StopDelimiter,
		log:   cfg.Logger,
		obs:   obs,
	}
}

// SetLogger replaces the writer logger. It must not be called while Run is active.
func (w *Writer) SetLogger(l zerolog.Logger) {
	w.log = l
}

// Send queues cmd for transmission, blocking while the queue is full
func (w *Writer) Send(ctx context.Context, cmd OutboundCommand) error {
	return w.queue.Put(ctx, cmd)
}

// Run transmits queued commands until ctx ends. A failed write is logged and
// the loop moves on to the next command; nothing is retried.
func (w *Writer) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		cmd, err := w.queue.Take(ctx)
		if err != nil {
			if errors.Is(err, ErrStopped) {
				break
			}
			return err
		}
		if err := w.Transmit(cmd); err != nil {
			w.obs.CommandFailed()
			w.log.Error().Err(err).Int("bytes", len(cmd)).Msg("command write failed")
			continue
		}
		w.obs.CommandSent()
		w.log.Debug().Int("bytes", len(cmd)).Msg("command sent")
	}
	w.log.Debug().Msg("writer stopped")
	return nil
}

// Transmit frames cmd and writes it to the sink in a single Write call
func (w *Writer) Transmit(cmd OutboundCommand) error {
	frame := Frame(w.start, w.stop, cmd)
	n, err := w.sink.Write(frame)
	if err == nil && n < len(frame) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportWrite, err)
	}
	return nil
}
