// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"fmt"
	"sync"
	"time"
)

// Counters is a point-in-time copy of link statistics
type Counters struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	Frames         uint64
	DroppedFrames  uint64
	DecodeErrors   uint64
	InvalidPackets uint64
	EchoPackets    uint64
	StaticRecords  uint64
	TempRecords    uint64
	EnergyRecords  uint64
	GatewayErrors  uint64
	CommandsSent   uint64
	WriteErrors    uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// Records returns the total number of forwarded records
func (c Counters) Records() uint64 {
	return c.StaticRecords + c.TempRecords + c.EnergyRecords
}

// Errors returns the total number of inbound and outbound errors
func (c Counters) Errors() uint64 {
	return c.DroppedFrames + c.DecodeErrors + c.InvalidPackets + c.GatewayErrors + c.WriteErrors
}

// String returns a one-line summary
func (c Counters) String() string {
	return fmt.Sprintf("frames=%d records=%d (static=%d temp=%d energy=%d) dropped=%d decode=%d invalid=%d echo=%d gateway=%d sent=%d write_err=%d",
		c.Frames, c.Records(), c.StaticRecords, c.TempRecords, c.EnergyRecords,
		c.DroppedFrames, c.DecodeErrors, c.InvalidPackets, c.EchoPackets,
		c.GatewayErrors, c.CommandsSent, c.WriteErrors)
}

// Statistics tracks link counters and rates. It implements Observer.
type Statistics struct {
	mu sync.Mutex
	c  Counters
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{c: Counters{StartTime: now, LastUpdateTime: now}}
}

func (s *Statistics) bump(field func(*Counters) *uint64) {
	s.mu.Lock()
	*field(&s.c)++
	s.c.LastUpdateTime = time.Now()
	s.mu.Unlock()
}

func (s *Statistics) FrameReceived() { s.bump(func(c *Counters) *uint64 { return &c.Frames }) }
func (s *Statistics) FrameDropped()  { s.bump(func(c *Counters) *uint64 { return &c.DroppedFrames }) }
func (s *Statistics) DecodeFailed()  { s.bump(func(c *Counters) *uint64 { return &c.DecodeErrors }) }
func (s *Statistics) EchoSkipped()   { s.bump(func(c *Counters) *uint64 { return &c.EchoPackets }) }
func (s *Statistics) CommandSent()   { s.bump(func(c *Counters) *uint64 { return &c.CommandsSent }) }
func (s *Statistics) CommandFailed() { s.bump(func(c *Counters) *uint64 { return &c.WriteErrors }) }

func (s *Statistics) InvalidMessage() {
	s.bump(func(c *Counters) *uint64 { return &c.InvalidPackets })
}

func (s *Statistics) GatewayFailed(PacketType) {
	s.bump(func(c *Counters) *uint64 { return &c.GatewayErrors })
}

func (s *Statistics) RecordForwarded(t PacketType) {
	switch t {
	case PacketStatic:
		s.bump(func(c *Counters) *uint64 { return &c.StaticRecords })
	case PacketTemperature:
		s.bump(func(c *Counters) *uint64 { return &c.TempRecords })
	case PacketEnergy:
		s.bump(func(c *Counters) *uint64 { return &c.EnergyRecords })
	}
}

// CalculateRates updates frame and error rates
func (s *Statistics) CalculateRates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.c.StartTime).Seconds()
	if elapsed > 0 {
		s.c.FrameRate = float64(s.c.Frames) / elapsed
		s.c.ErrorRate = float64(s.c.Errors()) / elapsed
	}
}

// Snapshot returns a copy of the current counters
func (s *Statistics) Snapshot() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c
}

// Reset clears all statistics
func (s *Statistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.c = Counters{StartTime: now, LastUpdateTime: now}
}

// String returns a one-line summary
func (s *Statistics) String() string {
	return s.Snapshot().String()
}

var _ Observer = (*Statistics)(nil)
