// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package groundlink implements the telemetry ingestion and command dispatch
// path of the ground station link.
//
// Inbound bytes are cut into frames by a Framer, handed through a Queue to a
// single Parser worker, decoded into typed telemetry records and forwarded to
// a Gateway. Outbound commands travel the mirror path through a second Queue
// and a Writer that frames them onto the transport.
package groundlink

// Default framing bytes (ASCII STX / ETX)
const (
	DefaultStartDelimiter = 0x02
	DefaultStopDelimiter  = 0x03
)

// Queue and frame limits
const (
	DefaultQueueSize    = 256
	DefaultMaxFrameSize = 64 * 1024
)

// Document containers
const (
	tagDownPacket = "downstreamPacket"
	tagUpPacket   = "upstreamPacket"
	tagType       = "type"
)

// Static packet tags
const (
	tagState  = "state"
	tagModule = "module"
	tagInfo   = "info"
	attrName  = "name"
	attrState = "status"
	attrTime  = "time"
)

// Sample packet tags
const (
	tagTempSample   = "TemperatureSample"
	tagEnergySample = "EnergySample"
	attrTemp        = "temp"
	attrVoltage     = "voltage"
	attrCurrent     = "current"
)

// Wire status strings
const (
	wireStatusOn             = "ON"
	wireStatusMalfunction    = "MALFUNCTION"
	wireStatusStandby        = "STANDBY"
	wireStatusNonOperational = "NON_OPERATIONAL"
)

// Wire satellite state strings
const (
	wireStateOperational = "OPERATIONAL_STATE"
	wireStateSafe        = "SAFE_STATE"
	wireStateInit        = "INIT_STATE"
)

// Wire module names
const (
	wireModuleTemperature    = "Temperature"
	wireModuleEnergy         = "Energy"
	wireModulePayload        = "Payload"
	wireModuleSBand          = "Sband"
	wireModuleSolarPanels    = "SolarPanels"
	wireModuleThermalControl = "ThermalControl"
)

var temperatureSensorTags = [3]string{"Sensor1", "Sensor2", "Sensor3"}

var energyBatteryTags = [3]string{"Battery1", "Battery2", "Battery3"}
