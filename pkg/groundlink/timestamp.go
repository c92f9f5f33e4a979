// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// TimestampLayout is the RTEMS wire layout yyyyMMddHHmmss.
const TimestampLayout = "20060102150405"

// TimestampLength is the fixed length of an RTEMS timestamp.
const TimestampLength = len(TimestampLayout)

// Epoch is substituted for timestamps that fail to decode.
var Epoch = time.Unix(0, 0).UTC()

// TimestampCodec converts between RTEMS timestamps and time.Time.
// The wire carries no zone, so the codec interprets it in Location.
type TimestampCodec struct {
	Location *time.Location
}

// NewTimestampCodec creates a codec for the given location (UTC when nil)
func NewTimestampCodec(loc *time.Location) TimestampCodec {
	if loc == nil {
		loc = time.UTC
	}
	return TimestampCodec{Location: loc}
}

func (c TimestampCodec) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Decode parses a 14 digit RTEMS timestamp.
func (c TimestampCodec) Decode(s string) (time.Time, error) {
	if len(s) != TimestampLength {
		return time.Time{}, fmt.Errorf("%w: %q has length %d, want %d", ErrTimestamp, s, len(s), TimestampLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, fmt.Errorf("%w: %q has non-digit at offset %d", ErrTimestamp, s, i)
		}
	}
	t, err := time.ParseInLocation(TimestampLayout, s, c.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTimestamp, err)
	}
	// Wall times skipped by a DST transition are normalized by the time
	// package; reject them so decoding stays the inverse of Encode.
	if t.Format(TimestampLayout) != s {
		return time.Time{}, fmt.Errorf("%w: %q does not exist in %s", ErrTimestamp, s, c.location())
	}
	return t, nil
}

// Encode formats t as an RTEMS timestamp in the codec's location.
func (c TimestampCodec) Encode(t time.Time) string {
	return t.In(c.location()).Format(TimestampLayout)
}

// DecodeOrEpoch decodes s, logging and substituting Epoch on failure.
func (c TimestampCodec) DecodeOrEpoch(s string, logger zerolog.Logger) time.Time {
	t, err := c.Decode(s)
	if err != nil {
		logger.Warn().Err(err).Str("timestamp", s).Msg("timestamp parse failed, using epoch")
		return Epoch
	}
	return t
}
