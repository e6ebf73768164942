// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7735 controls a small RGB565 TFT panel driven by a Sitronix
// ST7735 (ST7735R, ST7735S) controller over 4-wire SPI.
//
// New resets the panel and runs the initialization sequence. Configure then
// sets the Orientation, which maps the logical drawing space onto the panel
// memory: axes are swapped, then mirrored, then shifted by the gap between
// the glass and the controller memory. Rotation is done on the host, pixels
// are reordered before being streamed, so the controller memory access order
// only needs to match the board wiring.
//
// Every pixel write sets an addressing window and streams big endian 16 bits
// pixels into it. There is no frame buffer on the host.
//
// # Datasheets
//
// https://www.displayfuture.com/Display/datasheet/controller/ST7735.pdf
//
// https://cdn-shop.adafruit.com/datasheets/ST7735R_V0.2.pdf
package st7735
