// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"context"
	"errors"
	"io"
)

// Framer states
const (
	framerIdle = iota
	framerBuffering
)

// Framer cuts a byte stream into RawMessages bracketed by a start and a stop
// delimiter. It is not safe for concurrent use.
type Framer struct {
	start   byte
	stop    byte
	maxSize int

	state   int
	buffer  []byte
	dropped uint64
	obs     Observer
}

// NewFramer creates a framer for the given delimiters.
// maxSize <= 0 disables the frame size limit.
func NewFramer(start, stop byte, maxSize int) *Framer {
	return &Framer{
		start:   start,
		stop:    stop,
		maxSize: maxSize,
		state:   framerIdle,
		buffer:  make([]byte, 0, 512),
		obs:     NopObserver{},
	}
}

// SetObserver registers o for frame received and dropped events
func (f *Framer) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	f.obs = o
}

// Reset discards any partial frame and returns to idle
func (f *Framer) Reset() {
	f.state = framerIdle
	f.buffer = f.buffer[:0]
}

// Buffering reports whether a start delimiter has been seen without its stop
func (f *Framer) Buffering() bool {
	return f.state == framerBuffering
}

// Dropped returns the number of frames discarded so far
func (f *Framer) Dropped() uint64 {
	return f.dropped
}

// Feed processes a single byte. It returns a completed message and true when
// b closes a frame.
func (f *Framer) Feed(b byte) (RawMessage, bool) {
	switch {
	case b == f.start:
		// a second start restarts the frame
		if f.state == framerBuffering && len(f.buffer) > 0 {
			f.drop()
		}
		f.buffer = f.buffer[:0]
		f.state = framerBuffering
		return nil, false

	case b == f.stop:
		if f.state != framerBuffering {
			return nil, false
		}
		msg := make(RawMessage, len(f.buffer))
		copy(msg, f.buffer)
		f.Reset()
		f.obs.FrameReceived()
		return msg, true
	}

	if f.state == framerIdle {
		return nil, false
	}

	if f.maxSize > 0 && len(f.buffer) >= f.maxSize {
		f.drop()
		f.Reset()
		return nil, false
	}
	f.buffer = append(f.buffer, b)
	return nil, false
}

// Write feeds p through the framer and returns every message it completes
func (f *Framer) Write(p []byte) []RawMessage {
	var out []RawMessage
	for _, b := range p {
		if msg, ok := f.Feed(b); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *Framer) drop() {
	f.dropped++
	f.obs.FrameDropped()
}

// Pump reads r until it fails or ctx ends and puts every completed frame on q.
// Put blocks while q is full. A partial frame left when the stream ends is
// discarded. Pump returns nil on io.EOF.
func (f *Framer) Pump(ctx context.Context, r io.Reader, q *Queue[RawMessage]) error {
	f.Reset()
	defer func() {
		if f.Buffering() {
			f.drop()
		}
		f.Reset()
	}()

	buf := make([]byte, 512)
	for {
		if ctx.Err() != nil {
			return ErrStopped
		}

		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			msg, ok := f.Feed(buf[i])
			if !ok {
				continue
			}
			if perr := q.Put(ctx, msg); perr != nil {
				return perr
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ErrStopped
			}
			return err
		}
	}
}
