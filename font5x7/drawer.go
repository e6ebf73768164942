// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package font5x7

import (
	"fmt"
	"image"
	"image/draw"
	"unicode/utf8"

	"github.com/GermanBionicSystems/desksatellite/rgb565"
)

// Writer is the pixel sink used by Drawer. *st7735.Dev implements it.
type Writer interface {
	// WriteRegion writes r.Dx()*r.Dy() pixels in row-major order.
	WriteRegion(r image.Rectangle, pix []rgb565.Color) error
}

// MissingPolicy selects what happens to runes absent from the table.
type MissingPolicy int

// Possible policies. In every case the cursor advances by Pitch.
const (
	// Skip draws nothing.
	Skip MissingPolicy = iota
	// Fail stops and returns a *MissingGlyphError.
	Fail
	// Box draws a hollow rectangle placeholder.
	Box
)

func (m MissingPolicy) String() string {
	switch m {
	case Skip:
		return "skip"
	case Fail:
		return "fail"
	case Box:
		return "box"
	default:
		return fmt.Sprintf("MissingPolicy(%d)", int(m))
	}
}

// ParseMissingPolicy returns the policy named s.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	for _, m := range []MissingPolicy{Skip, Fail, Box} {
		if m.String() == s {
			return m, nil
		}
	}
	return Skip, fmt.Errorf("font5x7: unknown missing glyph policy %q", s)
}

// MissingGlyphError is returned with the Fail policy.
type MissingGlyphError struct {
	Rune rune
	// Index is the byte offset of Rune in the string.
	Index int
}

func (e *MissingGlyphError) Error() string {
	return fmt.Sprintf("font5x7: no glyph for %q at offset %d", e.Rune, e.Index)
}

// Drawer draws strings at a fixed pitch, without kerning or wrapping.
type Drawer struct {
	Dst Writer
	// Table defaults to Default.
	Table *Table
	// Dot is the top left corner of the next glyph. It is advanced by Pitch
	// for every rune.
	Dot   image.Point
	Color rgb565.Color
	// Missing selects how unmapped runes are handled.
	Missing MissingPolicy
	// Coalesce sends one region per horizontal run of lit pixels instead of
	// one region per pixel. The result is identical, with fewer transfers.
	Coalesce bool
}

// DrawString draws s at Dot and returns the number of glyphs found in the
// table and drawn.
func (d *Drawer) DrawString(s string) (int, error) {
	t := d.Table
	if t == nil {
		t = Default
	}
	drawn := 0
	for i, r := range s {
		g, ok := t.Lookup(r)
		if !ok {
			switch d.Missing {
			case Fail:
				return drawn, &MissingGlyphError{Rune: r, Index: i}
			case Box:
				if err := d.drawGlyph(placeholder); err != nil {
					return drawn, err
				}
			}
			d.Dot.X += Pitch
			continue
		}
		if err := d.drawGlyph(g); err != nil {
			return drawn, err
		}
		drawn++
		d.Dot.X += Pitch
	}
	return drawn, nil
}

func (d *Drawer) drawGlyph(g Glyph) error {
	if d.Coalesce {
		return d.drawRuns(g)
	}
	pix := []rgb565.Color{d.Color}
	for col := 0; col < Width; col++ {
		for row := 0; row < Height; row++ {
			if !g.Lit(col, row) {
				continue
			}
			p := d.Dot.Add(image.Pt(col, row))
			if err := d.Dst.WriteRegion(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}, pix); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawRuns sends each contiguous run of lit pixels of a row as one region.
func (d *Drawer) drawRuns(g Glyph) error {
	var pix [Width]rgb565.Color
	for i := range pix {
		pix[i] = d.Color
	}
	for row := 0; row < Height; row++ {
		for col := 0; col < Width; {
			if !g.Lit(col, row) {
				col++
				continue
			}
			start := col
			for col < Width && g.Lit(col, row) {
				col++
			}
			r := image.Rect(start, row, col, row+1).Add(d.Dot)
			if err := d.Dst.WriteRegion(r, pix[:col-start]); err != nil {
				return err
			}
		}
	}
	return nil
}

// DrawString draws s at (x, y) with the Default table, skipping unmapped
// runes.
func DrawString(w Writer, x, y int, s string, c rgb565.Color) (int, error) {
	d := Drawer{Dst: w, Dot: image.Pt(x, y), Color: c}
	return d.DrawString(s)
}

// Advance returns the horizontal distance covered by s.
func Advance(s string) int {
	return Pitch * utf8.RuneCountInString(s)
}

// ImageWriter adapts a draw.Image into a Writer.
type ImageWriter struct {
	draw.Image
}

// WriteRegion implements Writer.
func (w ImageWriter) WriteRegion(r image.Rectangle, pix []rgb565.Color) error {
	if len(pix) != r.Dx()*r.Dy() {
		return fmt.Errorf("font5x7: region %v needs %d pixels, got %d", r, r.Dx()*r.Dy(), len(pix))
	}
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			w.Set(x, y, pix[i])
			i++
		}
	}
	return nil
}
