// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// ============================================================
// Test Helpers
// ============================================================

// recordingGateway keeps every forwarded record in arrival order
type recordingGateway struct {
	mu      sync.Mutex
	records []Record
	fail    map[PacketType]error
	notify  chan struct{}
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{fail: map[PacketType]error{}, notify: make(chan struct{}, 1024)}
}

func (g *recordingGateway) add(rec Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail[rec.PacketType()]; err != nil {
		return err
	}
	g.records = append(g.records, rec)
	select {
	case g.notify <- struct{}{}:
	default:
	}
	return nil
}

func (g *recordingGateway) InsertStaticStatus(_ context.Context, rec StaticStatusRecord) error {
	return g.add(rec)
}

func (g *recordingGateway) InsertTemperatureSample(_ context.Context, rec TemperatureSampleRecord) error {
	return g.add(rec)
}

func (g *recordingGateway) InsertEnergySample(_ context.Context, rec EnergySampleRecord) error {
	return g.add(rec)
}

func (g *recordingGateway) Records() []Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Record, len(g.records))
	copy(out, g.records)
	return out
}

// waitFor blocks until the gateway holds n records or the timeout passes
func (g *recordingGateway) waitFor(t *testing.T, n int) []Record {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if recs := g.Records(); len(recs) >= n {
			return recs
		}
		select {
		case <-g.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d records, have %d", n, len(g.Records()))
		}
	}
}

// newTestParser returns a parser whose logs land in the returned buffer
func newTestParser(gw Gateway, level zerolog.Level) (*Parser, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(level)
	p := NewParser(NewQueue[RawMessage](16), gw, ParserConfig{
		Codec:  NewTimestampCodec(time.UTC),
		Logger: logger,
	})
	return p, &buf
}

func countLevel(buf *bytes.Buffer, level string) int {
	return strings.Count(buf.String(), `"level":"`+level+`"`)
}

func utc(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}
