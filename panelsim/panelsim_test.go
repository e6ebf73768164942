// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/GermanBionicSystems/desksatellite/rgb565"
)

func cmd(t *testing.T, p *Panel, op byte, data ...byte) {
	t.Helper()
	if err := p.DC.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := p.Tx([]byte{op}, nil); err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		return
	}
	if err := p.DC.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := p.Tx(data, nil); err != nil {
		t.Fatal(err)
	}
}

func TestConnect(t *testing.T) {
	p := New(nil)
	if _, err := p.Connect(physic.MegaHertz, spi.Mode0, 8); err != nil {
		t.Errorf("Connect() failed: %v", err)
	}
	if _, err := p.Connect(physic.MegaHertz, spi.Mode0, 9); err == nil {
		t.Error("Connect(9 bits) succeeded")
	}
	if diff := cmp.Diff(p.String(), "panelsim(162x132)"); diff != "" {
		t.Errorf("String() difference (-got +want):\n%s", diff)
	}
}

func TestDecode(t *testing.T) {
	p := New(&Opts{Width: 8, Height: 4})
	cmd(t, p, SWRESET)
	cmd(t, p, SLPOUT)
	cmd(t, p, COLMOD, 0x05)
	cmd(t, p, MADCTL, 0x60)
	cmd(t, p, INVON)
	cmd(t, p, CASET, 0x00, 0x02, 0x00, 0x03)
	cmd(t, p, RASET, 0x00, 0x01, 0x00, 0x02)
	// Split in odd sized chunks to exercise the carry.
	cmd(t, p, RAMWR, 0xF8, 0x00, 0x07)
	if err := p.Tx([]byte{0xE0, 0x00, 0x1F, 0xFF}, nil); err != nil {
		t.Fatal(err)
	}
	if err := p.Tx([]byte{0xFF}, nil); err != nil {
		t.Fatal(err)
	}
	cmd(t, p, DISPON)

	want := map[image.Point]rgb565.Color{
		{2, 1}: rgb565.Red,
		{3, 1}: rgb565.Green,
		{2, 2}: rgb565.Blue,
		{3, 2}: rgb565.White,
	}
	if diff := cmp.Diff(p.Painted(rgb565.Black), want); diff != "" {
		t.Errorf("Painted() difference (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(p.Window(), image.Rect(2, 1, 4, 3)); diff != "" {
		t.Errorf("Window() difference (-got +want):\n%s", diff)
	}
	if !p.Awake() || !p.On() || !p.Inverted() {
		t.Errorf("state awake=%t on=%t inverted=%t", p.Awake(), p.On(), p.Inverted())
	}
	if p.MemoryAccess() != 0x60 || p.PixelFormat() != 0x05 {
		t.Errorf("MADCTL=%#x COLMOD=%#x", p.MemoryAccess(), p.PixelFormat())
	}
	wantCmds := []Command{
		{Op: SWRESET},
		{Op: SLPOUT},
		{Op: COLMOD, Params: []byte{0x05}, Len: 1},
		{Op: MADCTL, Params: []byte{0x60}, Len: 1},
		{Op: INVON},
		{Op: CASET, Params: []byte{0x00, 0x02, 0x00, 0x03}, Len: 4},
		{Op: RASET, Params: []byte{0x00, 0x01, 0x00, 0x02}, Len: 4},
		{Op: RAMWR, Len: 8},
		{Op: DISPON},
	}
	if diff := cmp.Diff(p.Commands(), wantCmds, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Commands() difference (-got +want):\n%s", diff)
	}
	if p.Count(RAMWR) != 1 {
		t.Errorf("Count(RAMWR) = %d", p.Count(RAMWR))
	}

	visible := p.Visible(image.Pt(2, 1), image.Pt(2, 2))
	if diff := cmp.Diff(visible.Pix, []rgb565.Color{rgb565.Red, rgb565.Green, rgb565.Blue, rgb565.White}); diff != "" {
		t.Errorf("Visible() difference (-got +want):\n%s", diff)
	}
}

func TestWindowWraps(t *testing.T) {
	p := New(&Opts{Width: 4, Height: 4})
	cmd(t, p, CASET, 0, 0, 0, 0)
	cmd(t, p, RASET, 0, 0, 0, 1)
	cmd(t, p, RAMWR, 0xF8, 0x00, 0x00, 0x1F, 0x07, 0xE0)
	if got := p.At(0, 0); got != rgb565.Green {
		t.Errorf("At(0, 0) = %#04x, want wrapped green", got)
	}
	if got := p.At(0, 1); got != rgb565.Blue {
		t.Errorf("At(0, 1) = %#04x", got)
	}
}

func TestReadID(t *testing.T) {
	p := New(nil)
	cmd(t, p, RDDID)
	if err := p.DC.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	id := make([]byte, 3)
	if err := p.Tx(nil, id); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(id, []byte{0x7C, 0x89, 0xF0}); diff != "" {
		t.Errorf("RDDID difference (-got +want):\n%s", diff)
	}
	cmd(t, p, SLPOUT)
	if err := p.Tx(nil, id); err == nil {
		t.Error("read after SLPOUT succeeded")
	}
}

func TestFail(t *testing.T) {
	errBus := errors.New("bus error")
	p := New(&Opts{Fail: func(n int) error {
		if n == 2 {
			return errBus
		}
		return nil
	}})
	if err := p.Tx([]byte{SLPOUT}, nil); err != nil {
		t.Fatal(err)
	}
	if err := p.Tx([]byte{DISPON}, nil); !errors.Is(err, errBus) {
		t.Errorf("Tx() = %v, want %v", err, errBus)
	}
	if diff := cmp.Diff(p.Ops(), []byte{SLPOUT}); diff != "" {
		t.Errorf("Ops() difference (-got +want):\n%s", diff)
	}
	if p.Transactions() != 2 {
		t.Errorf("Transactions() = %d", p.Transactions())
	}
	p.ClearLog()
	if len(p.Ops()) != 0 || p.Transactions() != 0 {
		t.Error("ClearLog() did not clear")
	}
}

func TestPreview(t *testing.T) {
	img := rgb565.NewImage(image.Rect(0, 0, 4, 2))
	img.Fill(rgb565.Red)
	var buf bytes.Buffer
	if err := NewPreviewTo(&buf, &PreviewOpts{}).Render(img); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%q", len(lines), buf.String())
	}

	buf.Reset()
	wide := rgb565.NewImage(image.Rect(0, 0, 40, 20))
	if err := NewPreviewTo(&buf, &PreviewOpts{Columns: 10}).Render(wide); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 5 {
		t.Errorf("scaled preview has %d lines, want 5", n)
	}
}

func TestEncodePNG(t *testing.T) {
	img := rgb565.NewImage(image.Rect(0, 0, 3, 2))
	img.SetRGB565(1, 1, rgb565.White)
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img, 4); err != nil {
		t.Fatal(err)
	}
	out, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(out.Bounds(), image.Rect(0, 0, 12, 8)); diff != "" {
		t.Errorf("Bounds() difference (-got +want):\n%s", diff)
	}
	if got := rgb565.Convert(out.At(6, 6)); got != rgb565.White {
		t.Errorf("At(6, 6) = %#04x, want white", got)
	}
	if got := rgb565.Convert(out.At(1, 1)); got != rgb565.Black {
		t.Errorf("At(1, 1) = %#04x, want black", got)
	}
}
