// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"strings"
	"time"

	"github.com/beevik/etree"
)

// decodeStatic walks the packet's immediate children and builds a single
// status record. Modules never mentioned stay UNKNOWN with no timestamp.
func (p *Parser) decodeStatic(packet *etree.Element) StaticStatusRecord {
	var rec StaticStatusRecord

	for _, child := range packet.ChildElements() {
		switch {
		case child.Tag == tagState:
			rec.SatelliteState = ParseSatelliteState(strings.TrimSpace(child.Text()))

		case strings.EqualFold(child.Tag, tagModule):
			p.decodeModule(child, &rec)
		}
	}
	return rec
}

func (p *Parser) decodeModule(module *etree.Element, rec *StaticStatusRecord) {
	rawTime := module.SelectAttrValue(attrTime, "")
	var ts *time.Time

	for _, info := range module.ChildElements() {
		if !strings.EqualFold(info.Tag, tagInfo) {
			continue
		}
		m, ok := moduleWire[strings.TrimSpace(info.SelectAttrValue(attrName, ""))]
		if !ok {
			continue
		}
		if ts == nil {
			t := p.codec.DecodeOrEpoch(strings.TrimSpace(rawTime), p.log)
			ts = &t
		}
		slot := rec.slot(m)
		slot.Status = ParseStatus(strings.TrimSpace(info.SelectAttrValue(attrState, "")))
		stamp := *ts
		slot.Timestamp = &stamp
	}
}
