// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package groundlink

import "errors"

var (
	// ErrStopped is returned by blocking queue calls when their context ends.
	ErrStopped = errors.New("groundlink: stopped")

	// ErrDecode marks a payload that is not a well-formed document.
	ErrDecode = errors.New("groundlink: document decode failed")

	// ErrInvalidMessage marks a document without a packet container or a known type.
	ErrInvalidMessage = errors.New("groundlink: invalid message")

	// ErrTimestamp marks a malformed RTEMS timestamp.
	ErrTimestamp = errors.New("groundlink: malformed timestamp")

	// ErrTransportWrite marks an outbound frame the sink failed to accept.
	ErrTransportWrite = errors.New("groundlink: transport write failed")
)
