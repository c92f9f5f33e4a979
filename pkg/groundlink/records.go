// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import "time"

// RawMessage is the payload captured between one start and one stop delimiter
type RawMessage []byte

// OutboundCommand is an opaque command payload queued for transmission
type OutboundCommand []byte

// PacketType identifies the declared type of a downstream packet
type PacketType int

const (
	PacketUnknown PacketType = iota
	PacketStatic
	PacketTemperature
	PacketEnergy
)

var packetTypeWire = map[string]PacketType{
	"Static":      PacketStatic,
	"Temperature": PacketTemperature,
	"Energy":      PacketEnergy,
}

// ParsePacketType maps a wire type string to a PacketType
func ParsePacketType(s string) (PacketType, bool) {
	t, ok := packetTypeWire[s]
	return t, ok
}

func (t PacketType) String() string {
	switch t {
	case PacketStatic:
		return "Static"
	case PacketTemperature:
		return "Temperature"
	case PacketEnergy:
		return "Energy"
	default:
		return "Unknown"
	}
}

// Status is the reported status of a satellite module
type Status int

const (
	StatusUnknown Status = iota
	StatusOn
	StatusMalfunction
	StatusStandby
	StatusNonOperational
)

var statusWire = map[string]Status{
	wireStatusOn:             StatusOn,
	wireStatusMalfunction:    StatusMalfunction,
	wireStatusStandby:        StatusStandby,
	wireStatusNonOperational: StatusNonOperational,
}

var statusNames = [...]string{
	StatusUnknown:        "UNKNOWN",
	StatusOn:             "ON",
	StatusMalfunction:    "MALFUNCTION",
	StatusStandby:        "STANDBY",
	StatusNonOperational: "NON_OPERATIONAL",
}

// ParseStatus maps a wire status string; unrecognised strings are StatusUnknown
func ParseStatus(s string) Status {
	return statusWire[s]
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return statusNames[StatusUnknown]
	}
	return statusNames[s]
}

// SatelliteState is the overall satellite mode
type SatelliteState int

const (
	StateUnknown SatelliteState = iota
	StateOperational
	StateSafeMode
)

// INIT_STATE is reported as operational.
var satelliteStateWire = map[string]SatelliteState{
	wireStateOperational: StateOperational,
	wireStateSafe:        StateSafeMode,
	wireStateInit:        StateOperational,
}

// ParseSatelliteState maps a wire state string; unrecognised strings are StateUnknown
func ParseSatelliteState(s string) SatelliteState {
	return satelliteStateWire[s]
}

func (s SatelliteState) String() string {
	switch s {
	case StateOperational:
		return "OPERATIONAL"
	case StateSafeMode:
		return "SAFE_MODE"
	default:
		return "UNKNOWN"
	}
}

// ModuleStatus is one module's status and the time it was reported.
// Timestamp is nil when the module was not mentioned.
type ModuleStatus struct {
	Status    Status
	Timestamp *time.Time
}

// Module identifies one of the six monitored satellite subsystems
type Module int

const (
	ModuleTemperature Module = iota
	ModuleEnergy
	ModulePayload
	ModuleSBand
	ModuleSolarPanels
	ModuleThermalControl
	moduleCount
)

var moduleWire = map[string]Module{
	wireModuleTemperature:    ModuleTemperature,
	wireModuleEnergy:         ModuleEnergy,
	wireModulePayload:        ModulePayload,
	wireModuleSBand:          ModuleSBand,
	wireModuleSolarPanels:    ModuleSolarPanels,
	wireModuleThermalControl: ModuleThermalControl,
}

var moduleNames = [moduleCount]string{
	ModuleTemperature:    "Temperature",
	ModuleEnergy:         "Energy",
	ModulePayload:        "Payload",
	ModuleSBand:          "SBand",
	ModuleSolarPanels:    "SolarPanels",
	ModuleThermalControl: "ThermalControl",
}

// Modules lists every module in reporting order
func Modules() []Module {
	out := make([]Module, moduleCount)
	for i := range out {
		out[i] = Module(i)
	}
	return out
}

func (m Module) String() string {
	if m < 0 || m >= moduleCount {
		return "Unknown"
	}
	return moduleNames[m]
}

// Record is a decoded telemetry record
type Record interface {
	PacketType() PacketType
}

// StaticStatusRecord is the decoded form of a Static packet
type StaticStatusRecord struct {
	SatelliteState SatelliteState
	Temperature    ModuleStatus
	Energy         ModuleStatus
	Payload        ModuleStatus
	SBand          ModuleStatus
	SolarPanels    ModuleStatus
	ThermalControl ModuleStatus
}

func (StaticStatusRecord) PacketType() PacketType { return PacketStatic }

// Module returns the status of m
func (r *StaticStatusRecord) Module(m Module) ModuleStatus {
	if p := r.slot(m); p != nil {
		return *p
	}
	return ModuleStatus{}
}

// SetModule replaces the status of m
func (r *StaticStatusRecord) SetModule(m Module, ms ModuleStatus) {
	if p := r.slot(m); p != nil {
		*p = ms
	}
}

func (r *StaticStatusRecord) slot(m Module) *ModuleStatus {
	switch m {
	case ModuleTemperature:
		return &r.Temperature
	case ModuleEnergy:
		return &r.Energy
	case ModulePayload:
		return &r.Payload
	case ModuleSBand:
		return &r.SBand
	case ModuleSolarPanels:
		return &r.SolarPanels
	case ModuleThermalControl:
		return &r.ThermalControl
	}
	return nil
}

// TemperatureSampleRecord is one TemperatureSample of a Temperature packet
type TemperatureSampleRecord struct {
	Sensor1   float64
	Sensor2   float64
	Sensor3   float64
	Timestamp time.Time
}

func (TemperatureSampleRecord) PacketType() PacketType { return PacketTemperature }

// BatteryReading is one battery's voltage and current
type BatteryReading struct {
	Voltage float64
	Current float64
}

// EnergySampleRecord is one EnergySample of an Energy packet
type EnergySampleRecord struct {
	Battery1  BatteryReading
	Battery2  BatteryReading
	Battery3  BatteryReading
	Timestamp time.Time
}

func (EnergySampleRecord) PacketType() PacketType { return PacketEnergy }
