// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import "context"

// Queue is a bounded FIFO hand-off between producers and a single consumer.
// Items are taken in the order they were put.
type Queue[T any] struct {
	items chan T
}

// NewQueue creates a queue holding up to capacity items (DefaultQueueSize when <= 0)
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &Queue[T]{items: make(chan T, capacity)}
}

// Put appends v, blocking while the queue is full.
// It returns ErrStopped if ctx ends before v is accepted.
func (q *Queue[T]) Put(ctx context.Context, v T) error {
	select {
	case q.items <- v:
		return nil
	default:
	}
	select {
	case q.items <- v:
		return nil
	case <-ctx.Done():
		return ErrStopped
	}
}

// TryPut appends v without blocking and reports whether it was accepted
func (q *Queue[T]) TryPut(v T) bool {
	select {
	case q.items <- v:
		return true
	default:
		return false
	}
}

// Take removes the oldest item, waiting indefinitely while the queue is empty.
// When ctx ends only the waiting call returns, with ErrStopped; queued items
// are left in place for the next Take.
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	if ctx.Err() != nil {
		var zero T
		return zero, ErrStopped
	}
	select {
	case v := <-q.items:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ErrStopped
	}
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Cap returns the queue capacity
func (q *Queue[T]) Cap() int {
	return cap(q.items)
}
