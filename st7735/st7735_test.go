// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/GermanBionicSystems/desksatellite/panelsim"
	"github.com/GermanBionicSystems/desksatellite/rgb565"
)

var miniGap = Orientation{MirrorY: true, OffsetX: 1, OffsetY: 26}

func newSim(t *testing.T, simOpts *panelsim.Opts, opts Opts) (*Dev, *panelsim.Panel) {
	t.Helper()
	p := panelsim.New(simOpts)
	d, err := New(p, &Pins{DC: p.DC, Reset: p.Reset, Backlight: p.Backlight}, &opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return d, p
}

func TestNew(t *testing.T) {
	d, p := newSim(t, nil, Mini160x80)

	if diff := cmp.Diff(d.String(), "st7735.Dev{panelsim(162x132), DC(25), 160x80}"); diff != "" {
		t.Errorf("String() difference (-got +want):\n%s", diff)
	}
	ops := p.Ops()
	if len(ops) < 2 || ops[0] != panelsim.SWRESET || ops[1] != panelsim.SLPOUT {
		t.Errorf("Ops() = % x, want SWRESET, SLPOUT first", ops)
	}
	if !p.Awake() || p.On() {
		t.Errorf("awake=%t on=%t, want awake and blanked", p.Awake(), p.On())
	}
	if p.PixelFormat() != colMod16 {
		t.Errorf("COLMOD = %#x", p.PixelFormat())
	}
	if p.Reset.Read() != gpio.High {
		t.Error("reset line left asserted")
	}
	if diff := cmp.Diff(d.Size(), image.Pt(160, 80)); diff != "" {
		t.Errorf("Size() difference (-got +want):\n%s", diff)
	}
}

func TestNewInvalid(t *testing.T) {
	p := panelsim.New(nil)
	for _, tc := range []struct {
		name string
		pins *Pins
		opts Opts
	}{
		{"no pins", nil, Mini160x80},
		{"no dc", &Pins{}, Mini160x80},
		{"invalid dc", &Pins{DC: gpio.INVALID}, Mini160x80},
		{"no size", &Pins{DC: p.DC}, Opts{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(p, tc.pins, &tc.opts); err == nil {
				t.Error("New() succeeded")
			}
		})
	}
	if n := p.Transactions(); n != 0 {
		t.Errorf("%d transactions sent", n)
	}
}

func TestNewRetry(t *testing.T) {
	errBus := errors.New("bus error")
	_, p := newSim(t, &panelsim.Opts{Fail: func(n int) error {
		if n == 3 {
			return errBus
		}
		return nil
	}}, Mini160x80)

	if got := p.Count(panelsim.SWRESET); got != 2 {
		t.Errorf("SWRESET sent %d times, want 2", got)
	}
}

func TestNewTimeout(t *testing.T) {
	errBus := errors.New("bus error")
	p := panelsim.New(&panelsim.Opts{Fail: func(n int) error { return errBus }})
	opts := Mini160x80
	opts.InitAttempts = 4

	_, err := New(p, &Pins{DC: p.DC}, &opts)

	var hwErr *HardwareTimeoutError
	if !errors.As(err, &hwErr) {
		t.Fatalf("New() = %v, want HardwareTimeoutError", err)
	}
	if hwErr.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", hwErr.Attempts)
	}
	if !errors.Is(err, errBus) {
		t.Errorf("New() = %v, want wrapped %v", err, errBus)
	}
}

func TestNewVerifyID(t *testing.T) {
	opts := Mini160x80
	opts.VerifyID = true
	newSim(t, nil, opts)

	p := panelsim.New(&panelsim.Opts{ID: [3]byte{0xFF, 0xFF, 0xFF}})
	_, err := New(p, &Pins{DC: p.DC}, &opts)
	var hwErr *HardwareTimeoutError
	if !errors.As(err, &hwErr) {
		t.Fatalf("New() = %v, want HardwareTimeoutError", err)
	}
	if got := p.Count(panelsim.RDDID); got != 3 {
		t.Errorf("RDDID sent %d times, want 3", got)
	}
}

func TestWriteRegionNotConfigured(t *testing.T) {
	d, p := newSim(t, nil, Mini160x80)
	p.ClearLog()

	err := d.WriteRegion(image.Rect(0, 0, 1, 1), []rgb565.Color{rgb565.Red})

	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("WriteRegion() = %v, want %v", err, ErrNotConfigured)
	}
	if n := p.Transactions(); n != 0 {
		t.Errorf("%d transactions sent", n)
	}
}

func TestWriteRegionShapeMismatch(t *testing.T) {
	d, p := newSim(t, nil, Mini160x80)
	if err := d.Configure(miniGap); err != nil {
		t.Fatal(err)
	}
	p.ClearLog()

	for _, n := range []int{0, 5, 7} {
		err := d.WriteRegion(image.Rect(0, 0, 3, 2), make([]rgb565.Color, n))
		var shapeErr *ShapeMismatchError
		if !errors.As(err, &shapeErr) {
			t.Errorf("WriteRegion(%d pixels) = %v, want ShapeMismatchError", n, err)
			continue
		}
		if shapeErr.Want != 6 || shapeErr.Got != n {
			t.Errorf("ShapeMismatchError = %+v", shapeErr)
		}
	}
	if n := p.Transactions(); n != 0 {
		t.Errorf("%d transactions sent", n)
	}
}

func TestWriteRegionOutOfBounds(t *testing.T) {
	d, p := newSim(t, nil, Mini160x80)
	if err := d.Configure(miniGap); err != nil {
		t.Fatal(err)
	}
	p.ClearLog()

	for _, r := range []image.Rectangle{
		image.Rect(159, 79, 161, 80),
		image.Rect(0, 79, 1, 81),
		image.Rect(-1, 0, 0, 1),
		{Min: image.Pt(3, 3), Max: image.Pt(2, 4)},
	} {
		n := r.Dx() * r.Dy()
		if n < 0 {
			n = 0
		}
		err := d.WriteRegion(r, make([]rgb565.Color, n))
		var oobErr *RegionOutOfBoundsError
		if !errors.As(err, &oobErr) {
			t.Errorf("WriteRegion(%v) = %v, want RegionOutOfBoundsError", r, err)
		}
	}
	if n := p.Transactions(); n != 0 {
		t.Errorf("%d transactions sent", n)
	}
}

func TestWriteRegionEmpty(t *testing.T) {
	d, p := newSim(t, nil, Mini160x80)
	if err := d.Configure(miniGap); err != nil {
		t.Fatal(err)
	}
	p.ClearLog()

	if err := d.WriteRegion(image.Rect(4, 4, 4, 9), nil); err != nil {
		t.Errorf("WriteRegion(empty) = %v", err)
	}
	if n := p.Transactions(); n != 0 {
		t.Errorf("%d transactions sent", n)
	}
}

func TestWriteRegionOrientation(t *testing.T) {
	for _, o := range allOrientations(image.Pt(1, 26)) {
		t.Run(o.String(), func(t *testing.T) {
			d, p := newSim(t, nil, Mini160x80)
			if err := d.Configure(o); err != nil {
				t.Fatal(err)
			}
			r := image.Rect(2, 3, 5, 5)
			pix := make([]rgb565.Color, r.Dx()*r.Dy())
			want := map[image.Point]rgb565.Color{}
			i := 0
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					pix[i] = rgb565.Color(0x100 + i)
					want[o.Transform(image.Pt(x, y), d.Size())] = pix[i]
					i++
				}
			}

			if err := d.WriteRegion(r, pix); err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(p.Painted(rgb565.Black), want); diff != "" {
				t.Errorf("frame difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestConfigureIdempotent(t *testing.T) {
	o := Orientation{SwapXY: true, MirrorX: true, OffsetX: 1, OffsetY: 26}
	d, p := newSim(t, nil, Mini160x80)

	draw := func() map[image.Point]rgb565.Color {
		if err := d.Configure(o); err != nil {
			t.Fatal(err)
		}
		if err := d.Clear(rgb565.Black); err != nil {
			t.Fatal(err)
		}
		if err := d.Fill(image.Rect(0, 0, 4, 2), rgb565.Green); err != nil {
			t.Fatal(err)
		}
		for _, c := range corners(d.Bounds()) {
			if err := d.WriteRegion(image.Rectangle{Min: c, Max: c.Add(image.Pt(1, 1))}, []rgb565.Color{rgb565.Red}); err != nil {
				t.Fatal(err)
			}
		}
		return p.Painted(rgb565.Black)
	}

	first := draw()
	// A different orientation in between must not leave anything behind.
	if err := d.Configure(Orientation{MirrorX: true, MirrorY: true}); err != nil {
		t.Fatal(err)
	}
	second := draw()

	if diff := cmp.Diff(second, first); diff != "" {
		t.Errorf("second Configure() difference (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(d.Orientation(), o); diff != "" {
		t.Errorf("Orientation() difference (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(d.Bounds(), image.Rect(0, 0, 80, 160)); diff != "" {
		t.Errorf("Bounds() difference (-got +want):\n%s", diff)
	}
}

func TestConfigureInverted(t *testing.T) {
	d, p := newSim(t, nil, Mini160x80)
	o := miniGap
	o.Inverted = true
	if err := d.Configure(o); err != nil {
		t.Fatal(err)
	}
	if !p.Inverted() {
		t.Error("inversion not enabled")
	}
	if p.MemoryAccess() != 0x68 {
		t.Errorf("MADCTL = %#x", p.MemoryAccess())
	}
	if diff := cmp.Diff(p.Window(), image.Rect(1, 26, 161, 106)); diff != "" {
		t.Errorf("Window() difference (-got +want):\n%s", diff)
	}
	if err := d.Configure(Orientation{OffsetX: -2}); err == nil {
		t.Error("Configure(negative gap) succeeded")
	}
}

func TestDisplayEnable(t *testing.T) {
	d, p := newSim(t, nil, Mini160x80)
	if err := d.Configure(miniGap); err != nil {
		t.Fatal(err)
	}
	window := p.Window()

	if err := d.DisplayEnable(true); err != nil {
		t.Fatal(err)
	}
	if !p.On() || p.Backlight.Read() != gpio.High || !d.Enabled() {
		t.Errorf("on=%t backlight=%s enabled=%t", p.On(), p.Backlight.Read(), d.Enabled())
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if p.On() || p.Backlight.Read() != gpio.Low || d.Enabled() {
		t.Errorf("on=%t backlight=%s enabled=%t", p.On(), p.Backlight.Read(), d.Enabled())
	}
	if diff := cmp.Diff(p.Window(), window); diff != "" {
		t.Errorf("Window() difference (-got +want):\n%s", diff)
	}
}

func TestTransportError(t *testing.T) {
	errBus := errors.New("bus error")
	failing := false
	p := panelsim.New(&panelsim.Opts{Fail: func(n int) error {
		if failing {
			return errBus
		}
		return nil
	}})
	d, err := New(p, &Pins{DC: p.DC}, &Mini160x80)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Configure(miniGap); err != nil {
		t.Fatal(err)
	}
	failing = true

	err = d.WriteRegion(image.Rect(0, 0, 1, 1), []rgb565.Color{rgb565.Red})
	var tErr *TransportError
	if !errors.As(err, &tErr) || !errors.Is(err, errBus) {
		t.Errorf("WriteRegion() = %v, want TransportError wrapping %v", err, errBus)
	}
	if err := d.Configure(miniGap); !errors.As(err, &tErr) {
		t.Errorf("Configure() = %v, want TransportError", err)
	}
	failing = false
	if err := d.WriteRegion(image.Rect(0, 0, 1, 1), []rgb565.Color{rgb565.Red}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("WriteRegion() after failed Configure() = %v, want %v", err, ErrNotConfigured)
	}
}

func TestDraw(t *testing.T) {
	d, p := newSim(t, nil, Mini160x80)
	o := Orientation{SwapXY: true, OffsetX: 1, OffsetY: 26}
	if err := d.Configure(o); err != nil {
		t.Fatal(err)
	}

	src := rgb565.NewImage(image.Rect(0, 0, 4, 4))
	src.SetRGB565(1, 1, rgb565.Blue)
	src.SetRGB565(3, 3, rgb565.White)
	// Partially off the logical bounds (80x160): only the first column fits.
	if err := d.Draw(image.Rect(79, 0, 83, 4), src, image.Pt(0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := d.Draw(image.Rect(10, 10, 13, 13), src, image.Pt(1, 1)); err != nil {
		t.Fatal(err)
	}
	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.Pix[0] = 0xFF
	if err := d.Draw(image.Rect(20, 20, 21, 21), gray, image.Point{}); err != nil {
		t.Fatal(err)
	}

	want := map[image.Point]rgb565.Color{
		o.Transform(image.Pt(10, 10), d.Size()): rgb565.Blue,
		o.Transform(image.Pt(12, 12), d.Size()): rgb565.White,
		o.Transform(image.Pt(20, 20), d.Size()): rgb565.White,
	}
	if diff := cmp.Diff(p.Painted(rgb565.Black), want); diff != "" {
		t.Errorf("frame difference (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(d.ColorModel().Convert(rgb565.Red), rgb565.Red); diff != "" {
		t.Errorf("ColorModel() difference (-got +want):\n%s", diff)
	}
}

func TestWriteRegionWire(t *testing.T) {
	record := &spitest.Record{}
	dc := &gpiotest.Pin{N: "DC"}
	d, err := New(record, &Pins{DC: dc}, &Green128x128)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Configure(Orientation{OffsetX: 2, OffsetY: 3}); err != nil {
		t.Fatal(err)
	}
	record.Ops = nil

	if err := d.WriteRegion(image.Rect(0, 0, 2, 1), []rgb565.Color{0xF800, 0x1234}); err != nil {
		t.Fatal(err)
	}

	want := []conntest.IO{
		{W: []byte{caSet}},
		{W: []byte{0x00, 0x02, 0x00, 0x03}},
		{W: []byte{raSet}},
		{W: []byte{0x00, 0x03, 0x00, 0x03}},
		{W: []byte{ramWr}},
		// Big endian on the wire.
		{W: []byte{0xF8, 0x00, 0x12, 0x34}},
	}
	if diff := cmp.Diff(record.Ops, want); diff != "" {
		t.Errorf("Ops difference (-got +want):\n%s", diff)
	}
	if dc.Read() != gpio.High {
		t.Error("DC must be left high after pixel data")
	}
}
