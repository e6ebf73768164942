// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package font5x7

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Face exposes a Table as a font.Face so it can be used with font.Drawer on
// any draw.Image.
//
// The baseline is the bottom edge of the 7 pixel cell. Unmapped runes
// produce an empty glyph with the usual advance, like the Skip policy.
type Face struct {
	// Table defaults to Default.
	Table *Table
}

// NewFace returns a Face for t.
func NewFace(t *Table) *Face {
	return &Face{Table: t}
}

func (f *Face) table() *Table {
	if f.Table == nil {
		return Default
	}
	return f.Table
}

// Close implements font.Face.
func (f *Face) Close() error {
	return nil
}

// Glyph implements font.Face.
func (f *Face) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	x, y := dot.X.Round(), dot.Y.Round()
	g, ok := f.table().Lookup(r)
	if !ok {
		return image.Rectangle{}, image.NewAlpha(image.Rectangle{}), image.Point{}, fixed.I(Pitch), true
	}
	mask := image.NewAlpha(image.Rect(0, 0, Width, Height))
	for col := 0; col < Width; col++ {
		for row := 0; row < Height; row++ {
			if g.Lit(col, row) {
				mask.Pix[mask.PixOffset(col, row)] = 0xFF
			}
		}
	}
	dr := image.Rect(x, y-Height, x+Width, y)
	return dr, mask, image.Point{}, fixed.I(Pitch), true
}

// GlyphBounds implements font.Face.
func (f *Face) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	if _, ok := f.table().Lookup(r); !ok {
		return fixed.Rectangle26_6{}, fixed.I(Pitch), true
	}
	b := fixed.Rectangle26_6{
		Min: fixed.P(0, -Height),
		Max: fixed.P(Width, 0),
	}
	return b, fixed.I(Pitch), true
}

// GlyphAdvance implements font.Face.
func (f *Face) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	return fixed.I(Pitch), true
}

// Kern implements font.Face. The font is monospaced.
func (f *Face) Kern(r0, r1 rune) fixed.Int26_6 {
	return 0
}

// Metrics implements font.Face.
func (f *Face) Metrics() font.Metrics {
	return font.Metrics{
		Height:  fixed.I(Height + 1),
		Ascent:  fixed.I(Height),
		Descent: fixed.I(1),
	}
}

var _ font.Face = &Face{}
