// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package archive stores decoded records as a sequence of CBOR entries.
//
// Each entry is a two element array [record_type, payload] where payload is
// an integer-keyed map. Timestamps are stored as Unix seconds in UTC.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

type entry struct {
	_       struct{} `cbor:",toarray"`
	Type    uint8
	Payload cbor.RawMessage
}

type moduleEntry struct {
	Status uint8  `cbor:"1,keyasint"`
	Time   *int64 `cbor:"2,keyasint,omitempty"`
}

type staticEntry struct {
	State   uint8         `cbor:"1,keyasint"`
	Modules []moduleEntry `cbor:"2,keyasint"`
}

type temperatureEntry struct {
	Time    int64      `cbor:"1,keyasint"`
	Sensors [3]float64 `cbor:"2,keyasint"`
}

type energyEntry struct {
	Time     int64      `cbor:"1,keyasint"`
	Voltages [3]float64 `cbor:"2,keyasint"`
	Currents [3]float64 `cbor:"3,keyasint"`
}

// Writer appends records to a CBOR stream. It implements groundlink.Gateway
// and is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	enc *cbor.Encoder
	c   io.Closer
}

var _ groundlink.Gateway = (*Writer)(nil)

// NewWriter writes entries to w
func NewWriter(w io.Writer) *Writer {
	aw := &Writer{enc: cbor.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		aw.c = c
	}
	return aw
}

// Create opens path for appending, creating it if needed
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return NewWriter(f), nil
}

func (w *Writer) Close() error {
	if w.c == nil {
		return nil
	}
	return w.c.Close()
}

func (w *Writer) InsertStaticStatus(_ context.Context, rec groundlink.StaticStatusRecord) error {
	e := staticEntry{State: uint8(rec.SatelliteState)}
	for _, m := range groundlink.Modules() {
		ms := rec.Module(m)
		me := moduleEntry{Status: uint8(ms.Status)}
		if ms.Timestamp != nil {
			sec := ms.Timestamp.Unix()
			me.Time = &sec
		}
		e.Modules = append(e.Modules, me)
	}
	return w.write(groundlink.PacketStatic, e)
}

func (w *Writer) InsertTemperatureSample(_ context.Context, rec groundlink.TemperatureSampleRecord) error {
	return w.write(groundlink.PacketTemperature, temperatureEntry{
		Time:    rec.Timestamp.Unix(),
		Sensors: [3]float64{rec.Sensor1, rec.Sensor2, rec.Sensor3},
	})
}

func (w *Writer) InsertEnergySample(_ context.Context, rec groundlink.EnergySampleRecord) error {
	return w.write(groundlink.PacketEnergy, energyEntry{
		Time:     rec.Timestamp.Unix(),
		Voltages: [3]float64{rec.Battery1.Voltage, rec.Battery2.Voltage, rec.Battery3.Voltage},
		Currents: [3]float64{rec.Battery1.Current, rec.Battery2.Current, rec.Battery3.Current},
	})
}

func (w *Writer) write(t groundlink.PacketType, payload any) error {
	data, err := cbor.Marshal(payload)
	if err != nil {
		return fmt.Errorf("archive: encode %s: %w", t, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(entry{Type: uint8(t), Payload: data}); err != nil {
		return fmt.Errorf("archive: write %s: %w", t, err)
	}
	return nil
}

// Reader decodes records written by Writer
type Reader struct {
	dec *cbor.Decoder
}

func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream
func (r *Reader) Next() (groundlink.Record, error) {
	var e entry
	if err := r.dec.Decode(&e); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("archive: decode entry: %w", err)
	}

	switch groundlink.PacketType(e.Type) {
	case groundlink.PacketStatic:
		var se staticEntry
		if err := cbor.Unmarshal(e.Payload, &se); err != nil {
			return nil, fmt.Errorf("archive: decode static: %w", err)
		}
		return se.record()

	case groundlink.PacketTemperature:
		var te temperatureEntry
		if err := cbor.Unmarshal(e.Payload, &te); err != nil {
			return nil, fmt.Errorf("archive: decode temperature: %w", err)
		}
		return groundlink.TemperatureSampleRecord{
			Sensor1:   te.Sensors[0],
			Sensor2:   te.Sensors[1],
			Sensor3:   te.Sensors[2],
			Timestamp: fromUnix(te.Time),
		}, nil

	case groundlink.PacketEnergy:
		var ee energyEntry
		if err := cbor.Unmarshal(e.Payload, &ee); err != nil {
			return nil, fmt.Errorf("archive: decode energy: %w", err)
		}
		rec := groundlink.EnergySampleRecord{Timestamp: fromUnix(ee.Time)}
		for i, b := range []*groundlink.BatteryReading{&rec.Battery1, &rec.Battery2, &rec.Battery3} {
			b.Voltage = ee.Voltages[i]
			b.Current = ee.Currents[i]
		}
		return rec, nil

	default:
		return nil, fmt.Errorf("archive: unknown record type %d", e.Type)
	}
}

func (se staticEntry) record() (groundlink.Record, error) {
	modules := groundlink.Modules()
	if len(se.Modules) != len(modules) {
		return nil, fmt.Errorf("archive: static entry has %d modules, want %d", len(se.Modules), len(modules))
	}
	rec := groundlink.StaticStatusRecord{SatelliteState: groundlink.SatelliteState(se.State)}
	for i, m := range modules {
		ms := groundlink.ModuleStatus{Status: groundlink.Status(se.Modules[i].Status)}
		if se.Modules[i].Time != nil {
			t := fromUnix(*se.Modules[i].Time)
			ms.Timestamp = &t
		}
		rec.SetModule(m, ms)
	}
	return rec, nil
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
