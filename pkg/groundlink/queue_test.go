// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFOOrder(t *testing.T) {
	q := NewQueue[int](8)
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		if err := q.Put(ctx, i); err != nil {
			t.Fatalf("Put(%d) error: %v", i, err)
		}
	}
	for i := 0; i < 8; i++ {
		v, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("Take error: %v", err)
		}
		if v != i {
			t.Fatalf("Take = %d, want %d", v, i)
		}
	}
}

func TestQueue_DefaultCapacity(t *testing.T) {
	q := NewQueue[int](0)
	if q.Cap() != DefaultQueueSize {
		t.Errorf("Cap = %d, want %d", q.Cap(), DefaultQueueSize)
	}
}

func TestQueue_TryPutFull(t *testing.T) {
	q := NewQueue[string](1)
	if !q.TryPut("a") {
		t.Fatal("TryPut on empty queue should succeed")
	}
	if q.TryPut("b") {
		t.Fatal("TryPut on full queue should fail")
	}
}

func TestQueue_TakeWaitsForPut(t *testing.T) {
	q := NewQueue[int](1)
	got := make(chan int, 1)
	go func() {
		v, err := q.Take(context.Background())
		if err == nil {
			got <- v
		}
	}()

	select {
	case v := <-got:
		t.Fatalf("Take returned %d from an empty queue", v)
	case <-time.After(20 * time.Millisecond):
	}

	q.Put(context.Background(), 42)
	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("Take = %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Take did not wake after Put")
	}
}

func TestQueue_StopUnblocksTakeOnly(t *testing.T) {
	q := NewQueue[int](4)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Take(ctx)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrStopped) {
			t.Fatalf("Take error = %v, want ErrStopped", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancel did not unblock Take")
	}

	// Items put after the stop are still delivered to the next consumer
	q.Put(context.Background(), 1)
	q.Put(context.Background(), 2)
	for _, want := range []int{1, 2} {
		v, err := q.Take(context.Background())
		if err != nil || v != want {
			t.Errorf("Take = %d, %v; want %d", v, err, want)
		}
	}
}

func TestQueue_StoppedTakeKeepsQueuedItems(t *testing.T) {
	q := NewQueue[int](4)
	q.Put(context.Background(), 7)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.Take(ctx); !errors.Is(err, ErrStopped) {
		t.Fatalf("Take on stopped context = %v, want ErrStopped", err)
	}
	if q.Len() != 1 {
		t.Fatalf("stopped Take consumed an item, Len = %d", q.Len())
	}
}

func TestQueue_MultiProducerPreservesPerProducerOrder(t *testing.T) {
	const producers, perProducer = 4, 200
	q := NewQueue[[2]int](16)
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Put(ctx, [2]int{p, i})
			}
		}(p)
	}

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for n := 0; n < producers*perProducer; n++ {
		v, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("Take error: %v", err)
		}
		if v[1] != last[v[0]]+1 {
			t.Fatalf("producer %d: got item %d after %d", v[0], v[1], last[v[0]])
		}
		last[v[0]] = v[1]
	}
	wg.Wait()
}
