// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
)

// OutcomeKind classifies the result of dispatching one document
type OutcomeKind int

const (
	// OutcomeOK means the document decoded into zero or more records.
	OutcomeOK OutcomeKind = iota
	// OutcomeSkip means the document is a simulator echo and is ignored silently.
	OutcomeSkip
	// OutcomeInvalid means the container or type is missing or unknown.
	OutcomeInvalid
	// OutcomeMalformed means the payload is not a well-formed document.
	OutcomeMalformed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeSkip:
		return "skip"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of Dispatch
type Outcome struct {
	Kind    OutcomeKind
	Type    PacketType
	Records []Record
	Reason  error
}

// ParserConfig configures a Parser
type ParserConfig struct {
	Codec    TimestampCodec
	Logger   zerolog.Logger
	Observer Observer
}

// Parser is the single consumer of the inbound queue. It decodes each raw
// message and forwards the resulting records to the gateway in arrival order.
type Parser struct {
	queue   *Queue[RawMessage]
	gateway Gateway
	codec   TimestampCodec
	log     zerolog.Logger
	obs     Observer
}

// NewParser creates a parser draining q into gw
func NewParser(q *Queue[RawMessage], gw Gateway, cfg ParserConfig) *Parser {
	obs := cfg.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	return &Parser{
		queue:   q,
		gateway: gw,
		codec:   cfg.Codec,
		log:     cfg.Logger,
		obs:     obs,
	}
}

// SetLogger replaces the parser logger. It must not be called while Run is active.
func (p *Parser) SetLogger(l zerolog.Logger) {
	p.log = l
}

// Run takes and processes messages until ctx ends. Per-message failures are
// logged and never stop the loop. Run returns nil when stopped.
func (p *Parser) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		msg, err := p.queue.Take(ctx)
		if err != nil {
			if errors.Is(err, ErrStopped) {
				break
			}
			return err
		}
		p.Process(ctx, msg)
	}
	p.log.Debug().Msg("parser stopped")
	return nil
}

// Process runs one DECODE and DISPATCH cycle for msg and forwards any records
func (p *Parser) Process(ctx context.Context, msg RawMessage) Outcome {
	p.log.Debug().Int("bytes", len(msg)).Msg("message accepted by parser")

	doc, err := ParseDocument(msg)
	if err != nil {
		p.obs.DecodeFailed()
		p.log.Error().Err(err).Msg("message decode failed")
		return Outcome{Kind: OutcomeMalformed, Reason: err}
	}

	out := p.Dispatch(doc)
	switch out.Kind {
	case OutcomeSkip:
		p.obs.EchoSkipped()
	case OutcomeInvalid:
		p.obs.InvalidMessage()
		p.log.Error().Err(out.Reason).Str("document", string(msg)).Msg("there was an error parsing the message")
	case OutcomeOK:
		for _, rec := range out.Records {
			p.forward(ctx, rec)
		}
	}
	return out
}

func (p *Parser) forward(ctx context.Context, rec Record) {
	p.log.Info().Str("type", rec.PacketType().String()).Msg("inserting " + SummarizeRecord(rec))

	if err := Forward(ctx, p.gateway, rec); err != nil {
		p.obs.GatewayFailed(rec.PacketType())
		p.log.Error().Err(err).Str("type", rec.PacketType().String()).Msg("gateway insert failed")
		return
	}
	p.obs.RecordForwarded(rec.PacketType())
}

// ParseDocument parses a raw message payload into a document tree
func ParseDocument(msg RawMessage) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrDecode)
	}
	return doc, nil
}

// Dispatch routes doc by its container and declared type and decodes it.
// It only reads the document; forwarding is left to the caller.
func (p *Parser) Dispatch(doc *etree.Document) Outcome {
	root := doc.Root()
	if root == nil {
		return Outcome{Kind: OutcomeInvalid, Reason: fmt.Errorf("%w: no %s element", ErrInvalidMessage, tagDownPacket)}
	}

	// An uplink echo anywhere in the document is dropped quietly.
	if doc.FindElement("//"+tagUpPacket) != nil {
		return Outcome{Kind: OutcomeSkip, Reason: fmt.Errorf("%w: %s echo", ErrInvalidMessage, tagUpPacket)}
	}
	if n := len(doc.ChildElements()); n != 1 {
		return Outcome{Kind: OutcomeInvalid, Reason: fmt.Errorf("%w: %d top-level elements, want one %s", ErrInvalidMessage, n, tagDownPacket)}
	}
	if root.Tag != tagDownPacket {
		return Outcome{Kind: OutcomeInvalid, Reason: fmt.Errorf("%w: no %s element (root is <%s>)", ErrInvalidMessage, tagDownPacket, root.Tag)}
	}

	typeEl := doc.FindElement("//" + tagType)
	if typeEl == nil {
		return Outcome{Kind: OutcomeInvalid, Reason: fmt.Errorf("%w: no type element", ErrInvalidMessage)}
	}
	raw := strings.TrimSpace(typeEl.Text())
	pt, ok := ParsePacketType(raw)
	if !ok {
		return Outcome{Kind: OutcomeInvalid, Reason: fmt.Errorf("%w: wrong packet type %q", ErrInvalidMessage, raw)}
	}

	out := Outcome{Kind: OutcomeOK, Type: pt}
	switch pt {
	case PacketStatic:
		rec := p.decodeStatic(root)
		out.Records = []Record{rec}
	case PacketTemperature:
		for _, rec := range p.decodeTemperature(root) {
			out.Records = append(out.Records, rec)
		}
	case PacketEnergy:
		for _, rec := range p.decodeEnergy(root) {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}
