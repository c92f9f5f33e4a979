// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

// Observer is notified of link events. Implementations must be safe for
// concurrent use; the parser and writer call them from different goroutines.
type Observer interface {
	FrameReceived()
	FrameDropped()
	DecodeFailed()
	InvalidMessage()
	EchoSkipped()
	RecordForwarded(t PacketType)
	GatewayFailed(t PacketType)
	CommandSent()
	CommandFailed()
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) FrameReceived()             {}
func (NopObserver) FrameDropped()              {}
func (NopObserver) DecodeFailed()              {}
func (NopObserver) InvalidMessage()            {}
func (NopObserver) EchoSkipped()               {}
func (NopObserver) RecordForwarded(PacketType) {}
func (NopObserver) GatewayFailed(PacketType)   {}
func (NopObserver) CommandSent()               {}
func (NopObserver) CommandFailed()             {}

// MultiObserver fans each event out to every observer
type MultiObserver []Observer

func (m MultiObserver) FrameReceived() {
	for _, o := range m {
		o.FrameReceived()
	}
}

func (m MultiObserver) FrameDropped() {
	for _, o := range m {
		o.FrameDropped()
	}
}

func (m MultiObserver) DecodeFailed() {
	for _, o := range m {
		o.DecodeFailed()
	}
}

func (m MultiObserver) InvalidMessage() {
	for _, o := range m {
		o.InvalidMessage()
	}
}

func (m MultiObserver) EchoSkipped() {
	for _, o := range m {
		o.EchoSkipped()
	}
}

func (m MultiObserver) RecordForwarded(t PacketType) {
	for _, o := range m {
		o.RecordForwarded(t)
	}
}

func (m MultiObserver) GatewayFailed(t PacketType) {
	for _, o := range m {
		o.GatewayFailed(t)
	}
}

func (m MultiObserver) CommandSent() {
	for _, o := range m {
		o.CommandSent()
	}
}

func (m MultiObserver) CommandFailed() {
	for _, o := range m {
		o.CommandFailed()
	}
}
