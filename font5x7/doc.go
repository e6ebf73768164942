// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package font5x7 renders text with a fixed 5x7 pixel glyph table.
//
// Glyphs are stored column-major, one byte per column with bit 0 at the top,
// the layout used by most small LCD and OLED driver fonts. Each glyph is
// followed by one blank column so the pitch is 6 pixels. There is no
// kerning, wrapping or clipping: the destination decides what is out of
// bounds.
package font5x7
