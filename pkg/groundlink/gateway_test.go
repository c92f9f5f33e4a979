// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"context"
	"errors"
	"testing"
)

func TestForward_RoutesByType(t *testing.T) {
	var got []PacketType
	gw := RecordFunc(func(_ context.Context, rec Record) error {
		got = append(got, rec.PacketType())
		return nil
	})
	ctx := context.Background()
	for _, rec := range []Record{EnergySampleRecord{}, StaticStatusRecord{}, TemperatureSampleRecord{}} {
		if err := Forward(ctx, gw, rec); err != nil {
			t.Fatalf("Forward(%T): %v", rec, err)
		}
	}
	want := []PacketType{PacketEnergy, PacketStatic, PacketTemperature}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMultiGateway_AttemptsAll(t *testing.T) {
	first := newRecordingGateway()
	first.fail[PacketStatic] = errors.New("db down")
	second := newRecordingGateway()

	err := MultiGateway{first, second}.InsertStaticStatus(context.Background(), StaticStatusRecord{})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(second.Records()) != 1 {
		t.Error("second gateway should still receive the record")
	}
	if err := (MultiGateway{first, second}).InsertEnergySample(context.Background(), EnergySampleRecord{}); err != nil {
		t.Errorf("energy insert: %v", err)
	}
	if len(first.Records()) != 1 || len(second.Records()) != 2 {
		t.Errorf("records first=%d second=%d", len(first.Records()), len(second.Records()))
	}
}
