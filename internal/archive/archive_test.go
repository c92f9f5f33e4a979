// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

func TestWriterReader_PreservesRecordsInOrder(t *testing.T) {
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	payloadTS := ts.Add(-time.Minute)
	records := []groundlink.Record{
		groundlink.StaticStatusRecord{
			SatelliteState: groundlink.StateSafeMode,
			Payload:        groundlink.ModuleStatus{Status: groundlink.StatusStandby, Timestamp: &payloadTS},
			SBand:          groundlink.ModuleStatus{Status: groundlink.StatusOn},
		},
		groundlink.TemperatureSampleRecord{Sensor1: 21.5, Sensor3: -4.25, Timestamp: ts},
		groundlink.EnergySampleRecord{
			Battery2:  groundlink.BatteryReading{Voltage: 3.7, Current: 0.25},
			Timestamp: ts.Add(time.Second),
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	ctx := context.Background()
	for _, rec := range records {
		if err := groundlink.Forward(ctx, w, rec); err != nil {
			t.Fatalf("Forward(%T): %v", rec, err)
		}
	}

	r := NewReader(&buf)
	for i, want := range records {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		assertSameRecord(t, i, got, want)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after last record, got %v", err)
	}
}

func assertSameRecord(t *testing.T, i int, got, want groundlink.Record) {
	t.Helper()
	switch w := want.(type) {
	case groundlink.StaticStatusRecord:
		g, ok := got.(groundlink.StaticStatusRecord)
		if !ok {
			t.Fatalf("record %d = %T, want static", i, got)
		}
		if g.SatelliteState != w.SatelliteState {
			t.Errorf("record %d state = %v, want %v", i, g.SatelliteState, w.SatelliteState)
		}
		for _, m := range groundlink.Modules() {
			gm, wm := g.Module(m), w.Module(m)
			if gm.Status != wm.Status {
				t.Errorf("record %d %s status = %v, want %v", i, m, gm.Status, wm.Status)
			}
			if (gm.Timestamp == nil) != (wm.Timestamp == nil) {
				t.Errorf("record %d %s timestamp presence differs", i, m)
			} else if gm.Timestamp != nil && !gm.Timestamp.Equal(*wm.Timestamp) {
				t.Errorf("record %d %s timestamp = %v, want %v", i, m, gm.Timestamp, wm.Timestamp)
			}
		}
	case groundlink.TemperatureSampleRecord:
		g, ok := got.(groundlink.TemperatureSampleRecord)
		if !ok || !g.Timestamp.Equal(w.Timestamp) || g.Sensor1 != w.Sensor1 || g.Sensor2 != w.Sensor2 || g.Sensor3 != w.Sensor3 {
			t.Errorf("record %d = %+v, want %+v", i, got, want)
		}
	case groundlink.EnergySampleRecord:
		g, ok := got.(groundlink.EnergySampleRecord)
		if !ok || !g.Timestamp.Equal(w.Timestamp) || g.Battery1 != w.Battery1 || g.Battery2 != w.Battery2 || g.Battery3 != w.Battery3 {
			t.Errorf("record %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestReader_RejectsUnknownType(t *testing.T) {
	data, err := cbor.Marshal(entry{Type: 42, Payload: cbor.RawMessage{0xa0}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := NewReader(bytes.NewReader(data)).Next(); err == nil {
		t.Fatal("expected error for unknown record type")
	}
}

func TestReader_TruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.InsertTemperatureSample(context.Background(), groundlink.TemperatureSampleRecord{Sensor1: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-2]
	_, err := NewReader(bytes.NewReader(truncated)).Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestCreate_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.cbor")
	for i := 0; i < 2; i++ {
		w, err := Create(path)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		rec := groundlink.TemperatureSampleRecord{Sensor1: float64(i), Timestamp: time.Unix(int64(i), 0).UTC()}
		if err := w.InsertTemperatureSample(context.Background(), rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	r := NewReader(f)
	for i := 0; i < 2; i++ {
		rec, err := r.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if rec.(groundlink.TemperatureSampleRecord).Sensor1 != float64(i) {
			t.Errorf("record %d = %+v", i, rec)
		}
	}
}
