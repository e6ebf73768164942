// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"errors"
	"fmt"
	"image"
)

// ErrNotConfigured is returned by pixel writes issued before Configure.
var ErrNotConfigured = errors.New("st7735: Configure must be called before writing pixels")

// HardwareTimeoutError is returned by New when the panel did not complete its
// reset and initialization sequence within the allowed attempts.
type HardwareTimeoutError struct {
	Attempts int
	Err      error
}

func (e *HardwareTimeoutError) Error() string {
	return fmt.Sprintf("st7735: panel initialization failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *HardwareTimeoutError) Unwrap() error {
	return e.Err
}

// RegionOutOfBoundsError is returned when a region does not fit the panel
// once transformed to physical coordinates. No bytes were sent.
type RegionOutOfBoundsError struct {
	// Rect is the requested region, in logical coordinates.
	Rect image.Rectangle
	// Panel is Rect transformed to physical coordinates, gap excluded.
	Panel image.Rectangle
	// Size is the physical panel size.
	Size image.Point
}

func (e *RegionOutOfBoundsError) Error() string {
	return fmt.Sprintf("st7735: region %v maps to %v, outside of the %dx%d panel", e.Rect, e.Panel, e.Size.X, e.Size.Y)
}

// ShapeMismatchError is returned when the number of pixels does not match the
// region area.
type ShapeMismatchError struct {
	Rect image.Rectangle
	Want int
	Got  int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("st7735: region %v needs %d pixels, got %d", e.Rect, e.Want, e.Got)
}

// TransportError wraps a failure reported by the SPI connection or one of the
// control pins. The transfer may have been partially sent.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("st7735: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
