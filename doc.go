// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package desksatellite drives small ST7735 SPI color panels and renders
// fixed 5x7 text on them.
//
// The driver lives in st7735, the glyph table and text renderer in font5x7,
// the pixel format in rgb565 and an SPI level emulator of the controller in
// panelsim. cmd/desksatellite is the bring-up and restart loop.
package desksatellite
