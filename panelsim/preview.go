// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/draw"
)

// PreviewOpts represents the options available for a Preview.
type PreviewOpts struct {
	// Columns is the maximum terminal width used. Wider images are scaled
	// down. 0 means no scaling.
	Columns int
	Palette *ansi256.Palette

	_ struct{}
}

// Preview renders images to a terminal using ANSI color codes, one character
// cell per pixel.
type Preview struct {
	w       io.Writer
	columns int
	palette ansi256.Palette

	buf bytes.Buffer
}

// NewPreview returns a Preview that writes to stdout.
func NewPreview(opts *PreviewOpts) *Preview {
	return NewPreviewTo(colorable.NewColorableStdout(), opts)
}

// NewPreviewTo returns a Preview that writes to w.
func NewPreviewTo(w io.Writer, opts *PreviewOpts) *Preview {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Preview{w: w, columns: opts.Columns, palette: *p}
}

func (p *Preview) String() string {
	return "Preview"
}

// Render writes img to the terminal.
func (p *Preview) Render(img image.Image) error {
	b := img.Bounds()
	if p.columns > 0 && b.Dx() > p.columns {
		dst := image.NewNRGBA(image.Rect(0, 0, p.columns, b.Dy()*p.columns/b.Dx()))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
		b = dst.Bounds()
	}
	// This code is designed to minimize the amount of memory allocated per call.
	p.buf.Reset()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		_, _ = p.buf.WriteString("\033[0m")
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			_, _ = io.WriteString(&p.buf, p.palette.Block(c))
		}
		_, _ = p.buf.WriteString("\033[0m\n")
	}
	_, err := p.buf.WriteTo(p.w)
	return err
}
