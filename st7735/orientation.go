// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"fmt"
	"image"
)

// Orientation maps the logical drawing space onto the panel.
//
// The mapping is applied in a fixed order: axes are swapped first, then
// mirrored using the physical extent of the mirrored axis, then the gap
// offsets are added. Changing the order changes the visible result.
type Orientation struct {
	SwapXY  bool
	MirrorX bool
	MirrorY bool
	// OffsetX and OffsetY are the gap between the panel glass and the
	// controller memory, in physical pixels.
	OffsetX int
	OffsetY int
	// Inverted enables the controller color inversion.
	Inverted bool
}

func (o Orientation) String() string {
	return fmt.Sprintf("Orientation{swap:%t mirror:(%t,%t) offset:(%d,%d) inverted:%t}", o.SwapXY, o.MirrorX, o.MirrorY, o.OffsetX, o.OffsetY, o.Inverted)
}

// Bounds returns the logical drawing area for a panel of the given physical
// size.
func (o Orientation) Bounds(size image.Point) image.Rectangle {
	if o.SwapXY {
		return image.Rect(0, 0, size.Y, size.X)
	}
	return image.Rect(0, 0, size.X, size.Y)
}

// Transform maps a logical point to the controller memory address of the
// corresponding pixel, gap included.
func (o Orientation) Transform(p image.Point, size image.Point) image.Point {
	return o.toPanel(p, size).Add(o.offset())
}

func (o Orientation) offset() image.Point {
	return image.Pt(o.OffsetX, o.OffsetY)
}

// toPanel maps a logical point to physical panel coordinates, without the
// gap.
func (o Orientation) toPanel(p image.Point, size image.Point) image.Point {
	x, y := p.X, p.Y
	if o.SwapXY {
		x, y = y, x
	}
	if o.MirrorX {
		x = size.X - 1 - x
	}
	if o.MirrorY {
		y = size.Y - 1 - y
	}
	return image.Pt(x, y)
}

// fromPanel is the inverse of toPanel.
func (o Orientation) fromPanel(p image.Point, size image.Point) image.Point {
	x, y := p.X, p.Y
	if o.MirrorX {
		x = size.X - 1 - x
	}
	if o.MirrorY {
		y = size.Y - 1 - y
	}
	if o.SwapXY {
		x, y = y, x
	}
	return image.Pt(x, y)
}

// panelRect maps a non-empty logical rectangle to physical coordinates,
// without the gap. ok is false when the result does not fit the panel.
func (o Orientation) panelRect(r image.Rectangle, size image.Point) (image.Rectangle, bool) {
	a := o.toPanel(r.Min, size)
	b := o.toPanel(r.Max.Sub(image.Pt(1, 1)), size)
	if a.X > b.X {
		a.X, b.X = b.X, a.X
	}
	if a.Y > b.Y {
		a.Y, b.Y = b.Y, a.Y
	}
	p := image.Rectangle{Min: a, Max: b.Add(image.Pt(1, 1))}
	return p, p.In(image.Rectangle{Max: size})
}

func (o Orientation) validate(size image.Point) error {
	if o.OffsetX < 0 || o.OffsetY < 0 {
		return fmt.Errorf("st7735: negative gap offset (%d,%d)", o.OffsetX, o.OffsetY)
	}
	if size.X+o.OffsetX > 0xFFFF || size.Y+o.OffsetY > 0xFFFF {
		return fmt.Errorf("st7735: gap offset (%d,%d) overflows the address space", o.OffsetX, o.OffsetY)
	}
	return nil
}
