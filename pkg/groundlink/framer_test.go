// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

const (
	testStart = '{'
	testStop  = '}'
)

func TestFramer_SingleFrame(t *testing.T) {
	f := NewFramer(testStart, testStop, 0)
	got := f.Write([]byte("{hello}"))
	if len(got) != 1 || string(got[0]) != "hello" {
		t.Fatalf("Write = %q, want [hello]", got)
	}
	if f.Buffering() {
		t.Error("framer should be idle after a stop delimiter")
	}
}

func TestFramer_Cases(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		dropped uint64
	}{
		{"idle bytes discarded", "noise{a}more noise", []string{"a"}, 0},
		{"two frames", "{a}{b}", []string{"a", "b"}, 0},
		{"empty frame", "{}", []string{""}, 0},
		{"stop while idle ignored", "}}{a}", []string{"a"}, 0},
		{"start restarts frame", "{abc{def}", []string{"def"}, 1},
		{"double start without data", "{{x}", []string{"x"}, 0},
		{"unterminated", "{abc", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFramer(testStart, testStop, 0)
			got := f.Write([]byte(tt.input))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d frames %q, want %q", len(got), got, tt.want)
			}
			for i := range tt.want {
				if string(got[i]) != tt.want[i] {
					t.Errorf("frame %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
			if f.Dropped() != tt.dropped {
				t.Errorf("Dropped = %d, want %d", f.Dropped(), tt.dropped)
			}
		})
	}
}

func TestFramer_SplitAcrossWrites(t *testing.T) {
	f := NewFramer(testStart, testStop, 0)
	if got := f.Write([]byte("{par")); len(got) != 0 {
		t.Fatalf("unexpected frame %q", got)
	}
	got := f.Write([]byte("tial}"))
	if len(got) != 1 || string(got[0]) != "partial" {
		t.Fatalf("Write = %q, want [partial]", got)
	}
}

func TestFramer_MessageIsACopy(t *testing.T) {
	f := NewFramer(testStart, testStop, 0)
	first := f.Write([]byte("{one}"))[0]
	f.Write([]byte("{two}"))
	if string(first) != "one" {
		t.Errorf("earlier message changed to %q", first)
	}
}

func TestFramer_MaxFrameSize(t *testing.T) {
	stats := NewStatistics()
	f := NewFramer(testStart, testStop, 4)
	f.SetObserver(stats)

	got := f.Write([]byte("{12345}{1234}"))
	if len(got) != 1 || string(got[0]) != "1234" {
		t.Fatalf("Write = %q, want [1234]", got)
	}
	snap := stats.Snapshot()
	if snap.DroppedFrames != 1 {
		t.Errorf("DroppedFrames = %d, want 1", snap.DroppedFrames)
	}
	if snap.Frames != 1 {
		t.Errorf("Frames = %d, want 1", snap.Frames)
	}
}

func TestFramer_PumpQueuesFramesAndDiscardsPartial(t *testing.T) {
	f := NewFramer(testStart, testStop, 0)
	q := NewQueue[RawMessage](8)

	err := f.Pump(context.Background(), strings.NewReader("x{a}{b}{unterminated"), q)
	if err != nil {
		t.Fatalf("Pump error: %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("queue holds %d frames, want 2", q.Len())
	}
	for _, want := range []string{"a", "b"} {
		msg, err := q.Take(context.Background())
		if err != nil || string(msg) != want {
			t.Errorf("Take = %q, %v; want %q", msg, err, want)
		}
	}
	if f.Buffering() {
		t.Error("partial frame must not survive the end of the stream")
	}
	if f.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", f.Dropped())
	}
}

func TestFramer_PumpStartsIdle(t *testing.T) {
	f := NewFramer(testStart, testStop, 0)
	q := NewQueue[RawMessage](8)
	f.Write([]byte("{left over"))

	if err := f.Pump(context.Background(), strings.NewReader("tail}"), q); err != nil {
		t.Fatalf("Pump error: %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("bytes from a previous stream produced a frame")
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestFramer_PumpReturnsReadError(t *testing.T) {
	boom := errors.New("line noise")
	f := NewFramer(testStart, testStop, 0)
	err := f.Pump(context.Background(), failingReader{boom}, NewQueue[RawMessage](1))
	if !errors.Is(err, boom) {
		t.Errorf("Pump error = %v, want %v", err, boom)
	}
}

func TestFramer_PumpBlocksWhenQueueFull(t *testing.T) {
	f := NewFramer(testStart, testStop, 0)
	q := NewQueue[RawMessage](1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- f.Pump(ctx, bytes.NewReader([]byte("{a}{b}")), q)
	}()

	select {
	case err := <-done:
		t.Fatalf("Pump returned early with %v while queue was full", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, ErrStopped) {
			t.Errorf("Pump error = %v, want ErrStopped", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Pump did not stop after cancel")
	}
	if q.Len() != 1 {
		t.Errorf("queue holds %d frames, want 1", q.Len())
	}
}

var _ io.Reader = failingReader{}
