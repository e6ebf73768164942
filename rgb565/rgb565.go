// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb565 implements a 16 bits per pixel color format, as used by the
// ST7735 family of TFT controllers.
//
// Colors are kept in host order. Conversion to the big-endian wire format
// happens in the device driver.
package rgb565

import (
	"image"
	"image/color"
)

// Color is a packed 5-6-5 RGB color: red in bits 15-11, green in bits 10-5,
// blue in bits 4-0.
type Color uint16

// Common colors.
const (
	Black Color = 0x0000
	White Color = 0xFFFF
	Red   Color = 0xF800
	Green Color = 0x07E0
	Blue  Color = 0x001F
)

// New packs 8 bits per channel values into a Color. The low bits are
// truncated.
func New(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// Components returns the 8 bits per channel values, with the low bits
// replicated from the high bits so White maps to 0xFF.
func (c Color) Components() (r, g, b uint8) {
	r5 := uint8(c >> 11)
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.Components()
	r = uint32(r8)
	r |= r << 8
	g = uint32(g8)
	g |= g << 8
	b = uint32(b8)
	b |= b << 8
	return r, g, b, 0xFFFF
}

func convert(c color.Color) color.Color {
	return Convert(c)
}

// Convert returns the nearest Color for c.
func Convert(c color.Color) Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return New(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts colors to Color.
var Model = color.ModelFunc(convert)

// Image is an in-memory image of Color values.
type Image struct {
	// Pix holds the pixels in row-major order. The pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)].
	Pix    []Color
	Stride int
	Rect   image.Rectangle
}

// NewImage returns a new Image with the given bounds, filled with Black.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{Pix: make([]Color, w*h), Stride: w, Rect: r}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.RGB565At(x, y)
}

// RGB565At returns the Color at (x, y). Out of bounds reads return Black.
func (i *Image) RGB565At(x, y int) Color {
	if !(image.Point{x, y}.In(i.Rect)) {
		return Black
	}
	return i.Pix[i.PixOffset(x, y)]
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetRGB565(x, y, Convert(c))
}

// SetRGB565 sets the pixel at (x, y). Out of bounds writes are ignored.
func (i *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	i.Pix[i.PixOffset(x, y)] = c
}

// PixOffset returns the index of the pixel at (x, y) in Pix.
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x - i.Rect.Min.X)
}

// Fill sets every pixel to c.
func (i *Image) Fill(c Color) {
	for j := range i.Pix {
		i.Pix[j] = c
	}
}

// Region returns a copy of the pixels in r, in row-major order. r is clipped
// to the image bounds.
func (i *Image) Region(r image.Rectangle) []Color {
	r = r.Intersect(i.Rect)
	out := make([]Color, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := i.PixOffset(r.Min.X, y)
		out = append(out, i.Pix[off:off+r.Dx()]...)
	}
	return out
}

var _ color.Color = Color(0)
var _ image.Image = &Image{}
