// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"context"
	"errors"
	"fmt"
)

// Gateway receives decoded records. Each call is treated as one durable write.
type Gateway interface {
	InsertStaticStatus(ctx context.Context, rec StaticStatusRecord) error
	InsertTemperatureSample(ctx context.Context, rec TemperatureSampleRecord) error
	InsertEnergySample(ctx context.Context, rec EnergySampleRecord) error
}

// Forward hands rec to the matching gateway method
func Forward(ctx context.Context, gw Gateway, rec Record) error {
	switch r := rec.(type) {
	case StaticStatusRecord:
		return gw.InsertStaticStatus(ctx, r)
	case TemperatureSampleRecord:
		return gw.InsertTemperatureSample(ctx, r)
	case EnergySampleRecord:
		return gw.InsertEnergySample(ctx, r)
	default:
		return fmt.Errorf("groundlink: unsupported record %T", rec)
	}
}

// MultiGateway forwards every record to each gateway in order.
// All gateways are attempted; their errors are joined.
type MultiGateway []Gateway

func (m MultiGateway) each(fn func(Gateway) error) error {
	var errs []error
	for _, gw := range m {
		if err := fn(gw); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiGateway) InsertStaticStatus(ctx context.Context, rec StaticStatusRecord) error {
	return m.each(func(gw Gateway) error { return gw.InsertStaticStatus(ctx, rec) })
}

func (m MultiGateway) InsertTemperatureSample(ctx context.Context, rec TemperatureSampleRecord) error {
	return m.each(func(gw Gateway) error { return gw.InsertTemperatureSample(ctx, rec) })
}

func (m MultiGateway) InsertEnergySample(ctx context.Context, rec EnergySampleRecord) error {
	return m.each(func(gw Gateway) error { return gw.InsertEnergySample(ctx, rec) })
}

// RecordFunc adapts a function to the Gateway interface
type RecordFunc func(ctx context.Context, rec Record) error

func (f RecordFunc) InsertStaticStatus(ctx context.Context, rec StaticStatusRecord) error {
	return f(ctx, rec)
}

func (f RecordFunc) InsertTemperatureSample(ctx context.Context, rec TemperatureSampleRecord) error {
	return f(ctx, rec)
}

func (f RecordFunc) InsertEnergySample(ctx context.Context, rec EnergySampleRecord) error {
	return f(ctx, rec)
}
