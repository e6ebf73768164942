// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"image"
	"io"

	"github.com/fogleman/gg"
)

// snapshot draws img scaled up by scale, each pixel as a solid square.
func snapshot(img image.Image, scale int) *gg.Context {
	if scale < 1 {
		scale = 1
	}
	b := img.Bounds()
	dc := gg.NewContext(b.Dx()*scale, b.Dy()*scale)
	s := float64(scale)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dc.SetColor(img.At(x, y))
			dc.DrawRectangle(float64(x-b.Min.X)*s, float64(y-b.Min.Y)*s, s, s)
			dc.Fill()
		}
	}
	return dc
}

// SavePNG writes img to path as a PNG file, scaled up by scale.
func SavePNG(path string, img image.Image, scale int) error {
	return snapshot(img, scale).SavePNG(path)
}

// EncodePNG writes img to w as a PNG stream, scaled up by scale.
func EncodePNG(w io.Writer, img image.Image, scale int) error {
	return snapshot(img, scale).EncodePNG(w)
}
