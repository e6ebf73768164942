// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package font5x7

import (
	"sort"
)

// Glyph geometry, in pixels.
const (
	Width  = 5
	Height = 7
	// Pitch is the fixed horizontal advance: one glyph plus one blank column.
	Pitch = Width + 1
)

// Glyph is a 5x7 bitmap, one byte per column from left to right. Bit 0 is
// the top row, bit 7 is unused.
type Glyph [Width]byte

// Lit reports whether the pixel at (col, row) is set.
func (g Glyph) Lit(col, row int) bool {
	return g[col]>>uint(row)&1 != 0
}

// Count returns the number of lit pixels.
func (g Glyph) Count() int {
	n := 0
	for col := 0; col < Width; col++ {
		for row := 0; row < Height; row++ {
			if g.Lit(col, row) {
				n++
			}
		}
	}
	return n
}

// Table maps runes to glyphs. It is immutable once created.
type Table struct {
	glyphs map[rune]Glyph
}

// NewTable returns a Table holding a copy of m.
func NewTable(m map[rune]Glyph) *Table {
	t := &Table{glyphs: make(map[rune]Glyph, len(m))}
	for r, g := range m {
		t.glyphs[r] = g
	}
	return t
}

// Lookup returns the glyph for r. Only exact matches are returned.
func (t *Table) Lookup(r rune) (Glyph, bool) {
	g, ok := t.glyphs[r]
	return g, ok
}

// Len returns the number of mapped runes.
func (t *Table) Len() int {
	return len(t.glyphs)
}

// Runes returns the mapped runes in ascending order.
func (t *Table) Runes() []rune {
	out := make([]rune, 0, len(t.glyphs))
	for r := range t.glyphs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// placeholder is drawn for unmapped runes with the Box policy.
var placeholder = Glyph{0x7F, 0x41, 0x41, 0x41, 0x7F}

// Default is a small table covering upper case letters, digits and a few
// punctuation marks. Lower case letters are not mapped.
var Default = NewTable(map[rune]Glyph{
	' ': {0x00, 0x00, 0x00, 0x00, 0x00},
	'!': {0x00, 0x00, 0x5F, 0x00, 0x00},
	',': {0x00, 0x50, 0x30, 0x00, 0x00},
	'-': {0x08, 0x08, 0x08, 0x08, 0x08},
	'.': {0x00, 0x60, 0x60, 0x00, 0x00},
	':': {0x00, 0x36, 0x36, 0x00, 0x00},
	'0': {0x3E, 0x51, 0x49, 0x45, 0x3E},
	'1': {0x00, 0x42, 0x7F, 0x40, 0x00},
	'2': {0x42, 0x61, 0x51, 0x49, 0x46},
	'3': {0x21, 0x41, 0x45, 0x4B, 0x31},
	'4': {0x18, 0x14, 0x12, 0x7F, 0x10},
	'5': {0x27, 0x45, 0x45, 0x45, 0x39},
	'6': {0x3C, 0x4A, 0x49, 0x49, 0x30},
	'7': {0x01, 0x71, 0x09, 0x05, 0x03},
	'8': {0x36, 0x49, 0x49, 0x49, 0x36},
	'9': {0x06, 0x49, 0x49, 0x29, 0x1E},
	'A': {0x7E, 0x11, 0x11, 0x11, 0x7E},
	'B': {0x7F, 0x49, 0x49, 0x49, 0x36},
	'C': {0x3E, 0x41, 0x41, 0x41, 0x22},
	'D': {0x7F, 0x41, 0x41, 0x22, 0x1C},
	'E': {0x7F, 0x49, 0x49, 0x49, 0x41},
	'F': {0x7F, 0x09, 0x09, 0x09, 0x01},
	'G': {0x3E, 0x41, 0x49, 0x49, 0x7A},
	'H': {0x7F, 0x08, 0x08, 0x08, 0x7F},
	'I': {0x00, 0x41, 0x7F, 0x41, 0x00},
	'J': {0x20, 0x40, 0x41, 0x3F, 0x01},
	'K': {0x7F, 0x08, 0x14, 0x22, 0x41},
	'L': {0x7F, 0x40, 0x40, 0x40, 0x40},
	'M': {0x7F, 0x02, 0x0C, 0x02, 0x7F},
	'N': {0x7F, 0x04, 0x08, 0x10, 0x7F},
	'O': {0x3E, 0x41, 0x41, 0x41, 0x3E},
	'P': {0x7F, 0x09, 0x09, 0x09, 0x06},
	'Q': {0x3E, 0x41, 0x51, 0x21, 0x5E},
	'R': {0x7F, 0x09, 0x19, 0x29, 0x46},
	'S': {0x46, 0x49, 0x49, 0x49, 0x31},
	'T': {0x01, 0x01, 0x7F, 0x01, 0x01},
	'U': {0x3F, 0x40, 0x40, 0x40, 0x3F},
	'V': {0x1F, 0x20, 0x40, 0x20, 0x1F},
	'W': {0x3F, 0x40, 0x38, 0x40, 0x3F},
	'X': {0x63, 0x14, 0x08, 0x14, 0x63},
	'Y': {0x07, 0x08, 0x70, 0x08, 0x07},
	'Z': {0x61, 0x51, 0x49, 0x45, 0x43},
})
