// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package metrics exports link counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

const namespace = "groundlink"

// Observer is a groundlink.Observer backed by Prometheus collectors
// registered on a private registry.
type Observer struct {
	registry *prometheus.Registry

	frames    prometheus.Counter
	dropped   prometheus.Counter
	decodeErr prometheus.Counter
	invalid   prometheus.Counter
	echoes    prometheus.Counter
	records   *prometheus.CounterVec
	gatewayEr *prometheus.CounterVec
	sent      prometheus.Counter
	writeErr  prometheus.Counter
}

var _ groundlink.Observer = (*Observer)(nil)

func NewObserver() *Observer {
	counter := func(subsystem, name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	o := &Observer{
		registry:  prometheus.NewRegistry(),
		frames:    counter("framer", "frames_total", "Frames extracted from the inbound stream."),
		dropped:   counter("framer", "dropped_frames_total", "Partial or oversize frames discarded."),
		decodeErr: counter("parser", "decode_errors_total", "Payloads that were not well-formed documents."),
		invalid:   counter("parser", "invalid_messages_total", "Documents with a missing container or unknown type."),
		echoes:    counter("parser", "echo_skipped_total", "Upstream echo documents skipped."),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "records_total",
			Help:      "Records forwarded to the persistence gateway.",
		}, []string{"type"}),
		gatewayEr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "errors_total",
			Help:      "Records the persistence gateway rejected.",
		}, []string{"type"}),
		sent:     counter("writer", "commands_total", "Commands written to the transport."),
		writeErr: counter("writer", "write_errors_total", "Commands whose transport write failed."),
	}

	o.registry.MustRegister(
		o.frames, o.dropped, o.decodeErr, o.invalid, o.echoes,
		o.records, o.gatewayEr, o.sent, o.writeErr,
	)
	return o
}

// Registry exposes the private registry for tests and extra collectors
func (o *Observer) Registry() *prometheus.Registry { return o.registry }

// WatchQueues registers gauges reporting the current queue depths of link
func (o *Observer) WatchQueues(link *groundlink.Link) {
	o.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inbound_queue_length",
			Help:      "Raw messages waiting for the parser.",
		}, func() float64 { return float64(link.Inbound.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbound_queue_length",
			Help:      "Commands waiting for the writer.",
		}, func() float64 { return float64(link.Outbound.Len()) }),
	)
}

func (o *Observer) FrameReceived()  { o.frames.Inc() }
func (o *Observer) FrameDropped()   { o.dropped.Inc() }
func (o *Observer) DecodeFailed()   { o.decodeErr.Inc() }
func (o *Observer) InvalidMessage() { o.invalid.Inc() }
func (o *Observer) EchoSkipped()    { o.echoes.Inc() }
func (o *Observer) CommandSent()    { o.sent.Inc() }
func (o *Observer) CommandFailed()  { o.writeErr.Inc() }

func (o *Observer) RecordForwarded(t groundlink.PacketType) {
	o.records.WithLabelValues(t.String()).Inc()
}

func (o *Observer) GatewayFailed(t groundlink.PacketType) {
	o.gatewayEr.WithLabelValues(t.String()).Inc()
}

// Handler serves the registry in the Prometheus text format
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx ends
func (o *Observer) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", o.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
