// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// decodeTemperature emits one record per TemperatureSample, in document order
func (p *Parser) decodeTemperature(packet *etree.Element) []TemperatureSampleRecord {
	var out []TemperatureSampleRecord
	for _, sample := range packet.ChildElements() {
		if sample.Tag != tagTempSample {
			continue
		}
		rec := TemperatureSampleRecord{
			Timestamp: p.codec.DecodeOrEpoch(sample.SelectAttrValue(attrTime, ""), p.log),
		}
		for _, sensor := range sample.ChildElements() {
			switch sensor.Tag {
			case temperatureSensorTags[0]:
				rec.Sensor1 = p.readFloat(sensor, attrTemp)
			case temperatureSensorTags[1]:
				rec.Sensor2 = p.readFloat(sensor, attrTemp)
			case temperatureSensorTags[2]:
				rec.Sensor3 = p.readFloat(sensor, attrTemp)
			}
		}
		out = append(out, rec)
	}
	return out
}

// decodeEnergy emits one record per EnergySample, in document order
func (p *Parser) decodeEnergy(packet *etree.Element) []EnergySampleRecord {
	var out []EnergySampleRecord
	for _, sample := range packet.ChildElements() {
		if sample.Tag != tagEnergySample {
			continue
		}
		rec := EnergySampleRecord{
			Timestamp: p.codec.DecodeOrEpoch(sample.SelectAttrValue(attrTime, ""), p.log),
		}
		for _, batt := range sample.ChildElements() {
			var slot *BatteryReading
			switch batt.Tag {
			case energyBatteryTags[0]:
				slot = &rec.Battery1
			case energyBatteryTags[1]:
				slot = &rec.Battery2
			case energyBatteryTags[2]:
				slot = &rec.Battery3
			default:
				continue
			}
			slot.Voltage = p.readFloat(batt, attrVoltage)
			slot.Current = p.readFloat(batt, attrCurrent)
		}
		out = append(out, rec)
	}
	return out
}

// readFloat reads a numeric attribute. Missing or malformed values read 0.
func (p *Parser) readFloat(el *etree.Element, attr string) float64 {
	a := el.SelectAttr(attr)
	if a == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
	if err != nil {
		p.log.Warn().Err(err).Str("element", el.Tag).Str("attr", attr).Msg("malformed reading, using 0")
		return 0
	}
	return v
}
