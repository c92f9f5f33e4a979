// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"fmt"
	"strings"
	"time"
)

const displayTimeLayout = "2006-01-02 15:04:05"

// FormatRecord formats a decoded record into a human-readable block
func FormatRecord(rec Record) string {
	var b strings.Builder
	switch r := rec.(type) {
	case StaticStatusRecord:
		fmt.Fprintf(&b, "STATIC satellite=%s\n", r.SatelliteState)
		for _, m := range Modules() {
			ms := r.Module(m)
			fmt.Fprintf(&b, "  %-15s %-16s %s\n", m.String()+":", ms.Status, formatOptionalTime(ms.Timestamp))
		}

	case TemperatureSampleRecord:
		fmt.Fprintf(&b, "TEMPERATURE at %s\n", r.Timestamp.Format(displayTimeLayout))
		fmt.Fprintf(&b, "  Sensor1: %.2f°C\n", r.Sensor1)
		fmt.Fprintf(&b, "  Sensor2: %.2f°C\n", r.Sensor2)
		fmt.Fprintf(&b, "  Sensor3: %.2f°C\n", r.Sensor3)

	case EnergySampleRecord:
		fmt.Fprintf(&b, "ENERGY at %s\n", r.Timestamp.Format(displayTimeLayout))
		for i, batt := range []BatteryReading{r.Battery1, r.Battery2, r.Battery3} {
			fmt.Fprintf(&b, "  Battery%d: %.3fV %.3fA\n", i+1, batt.Voltage, batt.Current)
		}

	default:
		fmt.Fprintf(&b, "UNKNOWN record %T\n", rec)
	}
	return b.String()
}

// SummarizeRecord formats a decoded record on a single line
func SummarizeRecord(rec Record) string {
	switch r := rec.(type) {
	case StaticStatusRecord:
		parts := make([]string, 0, moduleCount)
		for _, m := range Modules() {
			parts = append(parts, fmt.Sprintf("%s=%s", m, r.Module(m).Status))
		}
		return fmt.Sprintf("static update: state=%s %s", r.SatelliteState, strings.Join(parts, " "))

	case TemperatureSampleRecord:
		return fmt.Sprintf("temperature sample: time=%s sensor1=%gC sensor2=%gC sensor3=%gC",
			r.Timestamp.Format(displayTimeLayout), r.Sensor1, r.Sensor2, r.Sensor3)

	case EnergySampleRecord:
		return fmt.Sprintf("energy sample: time=%s battery1=%gV/%gA battery2=%gV/%gA battery3=%gV/%gA",
			r.Timestamp.Format(displayTimeLayout),
			r.Battery1.Voltage, r.Battery1.Current,
			r.Battery2.Voltage, r.Battery2.Current,
			r.Battery3.Voltage, r.Battery3.Current)

	default:
		return fmt.Sprintf("unknown record %T", rec)
	}
}

// FormatFrame formats a raw frame as a timestamped header plus payload text.
// Non-printable bytes are shown as hex escapes.
func FormatFrame(at time.Time, msg RawMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] FRAME len=%d\n  ", at.Format("15:04:05.000"), len(msg))
	for _, c := range string(msg) {
		switch {
		case c == '\n':
			b.WriteString("\n  ")
		case c == '\r' || c == '\t':
			b.WriteByte(' ')
		case c < 0x20 || c == 0x7F || c == 0xFFFD:
			fmt.Fprintf(&b, "\\x%02X", c)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteString("\n")
	return b.String()
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(displayTimeLayout)
}
