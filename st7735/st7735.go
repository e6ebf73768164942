// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/GermanBionicSystems/desksatellite/rgb565"
)

// Opts defines the panel variant. All fields but Width and Height have usable
// zero values.
type Opts struct {
	// Width and Height are the physical panel size in pixels.
	Width  int
	Height int
	// Clock is the SPI clock. Defaults to 15MHz.
	Clock physic.Frequency
	// MemoryAccess is the MADCTL value matching how the glass is wired to the
	// controller memory on this board. Logical rotation and mirroring are
	// handled by Orientation, not here.
	MemoryAccess byte
	// BGR is set for panels with blue and red subpixels swapped.
	BGR bool
	// ResetHold is how long the reset line is held low. Defaults to 10ms.
	ResetHold time.Duration
	// ResetSettle is the wait after reset is released. Defaults to 120ms.
	ResetSettle time.Duration
	// InitAttempts is the number of reset and initialization attempts before
	// giving up. Defaults to 3.
	InitAttempts int
	// InitRetryDelay is the pause between two attempts.
	InitRetryDelay time.Duration
	// VerifyID reads the display ID after initialization and treats an
	// all-zero or all-one answer as a missing panel. It requires MISO to be
	// wired.
	VerifyID bool
}

// Mini160x80 is the 0.96" 160x80 IPS module, used in landscape. It needs a
// gap of (1, 26) and color inversion.
var Mini160x80 = Opts{
	Width:        160,
	Height:       80,
	MemoryAccess: 0x60,
	BGR:          true,
}

// Green128x160 is the 1.8" 128x160 "green tab" module.
var Green128x160 = Opts{
	Width:        128,
	Height:       160,
	MemoryAccess: 0xC0,
}

// Green128x128 is the 1.44" 128x128 "green tab" module.
var Green128x128 = Opts{
	Width:        128,
	Height:       128,
	MemoryAccess: 0xC0,
}

// Pins are the control lines of the panel. DC is mandatory, the others are
// optional.
type Pins struct {
	// DC selects between command (Low) and data (High).
	DC gpio.PinOut
	// Reset is active low.
	Reset gpio.PinOut
	// Backlight is active high.
	Backlight gpio.PinOut
	// CS is only needed when the SPI port does not drive chip select itself.
	CS gpio.PinOut
}

// Dev is an open handle to an ST7735 controlled panel.
//
// All methods are safe for concurrent use. Each pixel write holds the handle
// from the addressing window setup to the end of the pixel stream.
type Dev struct {
	c     conn.Conn
	dc    gpio.PinOut
	rst   gpio.PinOut
	bl    gpio.PinOut
	cs    gpio.PinOut
	opts  Opts
	size  image.Point
	maxTx int

	mu         sync.Mutex
	orient     Orientation
	configured bool
	enabled    bool
}

// New connects to the panel, resets it and runs the initialization sequence.
//
// The display is left blanked. Call Configure, then DisplayEnable(true).
func New(p spi.Port, pins *Pins, opts *Opts) (*Dev, error) {
	if pins == nil || pins.DC == nil {
		return nil, errors.New("st7735: a DC pin is required, 3-wire mode is not supported")
	}
	if pins.DC == gpio.INVALID {
		return nil, errors.New("st7735: do not use gpio.INVALID for DC")
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.Width > 0xFFFF || opts.Height > 0xFFFF {
		return nil, fmt.Errorf("st7735: invalid panel size %dx%d", opts.Width, opts.Height)
	}
	o := *opts
	if o.Clock == 0 {
		o.Clock = 15 * physic.MegaHertz
	}
	if o.ResetHold == 0 {
		o.ResetHold = 10 * time.Millisecond
	}
	if o.ResetSettle == 0 {
		o.ResetSettle = 120 * time.Millisecond
	}
	if o.InitAttempts <= 0 {
		o.InitAttempts = 3
	}

	c, err := p.Connect(o.Clock, spi.Mode0, 8)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	d := &Dev{
		c:     c,
		dc:    pins.DC,
		rst:   pins.Reset,
		bl:    pins.Backlight,
		cs:    pins.CS,
		opts:  o,
		size:  image.Pt(o.Width, o.Height),
		maxTx: 4096,
	}
	if l, ok := c.(conn.Limits); ok {
		if n := l.MaxTxSize(); n > 0 {
			d.maxTx = n
		}
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("st7735.Dev{%s, %s, %dx%d}", d.c, d.dc, d.size.X, d.size.Y)
}

// Size returns the physical panel size.
func (d *Dev) Size() image.Point {
	return d.size
}

// Orientation returns the orientation set by the last Configure call.
func (d *Dev) Orientation() Orientation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.orient
}

// Configure sets the logical to physical mapping and the color inversion.
//
// It must be called once before any pixel write. Calling it again replaces
// the previous orientation entirely.
func (d *Dev) Configure(o Orientation) error {
	if err := o.validate(d.size); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	eh := errorHandler{d: d}
	configureDisplay(&eh, &d.opts, o)
	if eh.err != nil {
		d.configured = false
		return &TransportError{Op: "configure", Err: eh.err}
	}
	d.orient = o
	d.configured = true
	return nil
}

// DisplayEnable turns the panel output and the backlight on or off. Memory
// content and the addressing window are kept.
func (d *Dev) DisplayEnable(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	eh := errorHandler{d: d}
	enableDisplay(&eh, on)
	if eh.err == nil && d.bl != nil {
		eh.err = d.bl.Out(gpio.Level(on))
	}
	if eh.err != nil {
		return &TransportError{Op: "display enable", Err: eh.err}
	}
	d.enabled = on
	return nil
}

// Enabled reports whether the output is currently enabled.
func (d *Dev) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// WriteRegion writes pixels to a rectangle in logical coordinates.
//
// pix is in row-major order and must hold exactly r.Dx()*r.Dy() colors. The
// region is validated before anything is sent.
func (d *Dev) WriteRegion(r image.Rectangle, pix []rgb565.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRegion(r, pix)
}

// Fill paints a rectangle in logical coordinates with a single color.
func (d *Dev) Fill(r image.Rectangle, c rgb565.Color) error {
	pix := make([]rgb565.Color, max(r.Dx()*r.Dy(), 0))
	for i := range pix {
		pix[i] = c
	}
	return d.WriteRegion(r, pix)
}

// Clear paints the whole panel with c.
func (d *Dev) Clear(c rgb565.Color) error {
	return d.Fill(d.Bounds(), c)
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds implements display.Drawer. It is the logical drawing area, which
// depends on the orientation.
func (d *Dev) Bounds() image.Rectangle {
	return d.Orientation().Bounds(d.size)
}

// Draw implements display.Drawer.
//
// It draws synchronously, once this function returns, the panel memory is
// updated.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	clipped := r.Intersect(d.Bounds())
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(r.Min))
	r = clipped
	var pix []rgb565.Color
	if img, ok := src.(*rgb565.Image); ok && r.Sub(r.Min).Add(sp).In(img.Rect) {
		// Same pixel format, no conversion.
		pix = img.Region(r.Sub(r.Min).Add(sp))
	} else {
		pix = make([]rgb565.Color, 0, r.Dx()*r.Dy())
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				pix = append(pix, rgb565.Convert(src.At(sp.X+x, sp.Y+y)))
			}
		}
	}
	return d.WriteRegion(r, pix)
}

// Halt implements conn.Resource. It blanks the panel and turns the backlight
// off.
func (d *Dev) Halt() error {
	return d.DisplayEnable(false)
}

func (d *Dev) writeRegion(r image.Rectangle, pix []rgb565.Color) error {
	if !d.configured {
		return ErrNotConfigured
	}
	if r.Min.X > r.Max.X || r.Min.Y > r.Max.Y {
		return &RegionOutOfBoundsError{Rect: r, Size: d.size}
	}
	n := r.Dx() * r.Dy()
	if len(pix) != n {
		return &ShapeMismatchError{Rect: r, Want: n, Got: len(pix)}
	}
	if n == 0 {
		return nil
	}
	area, ok := d.orient.panelRect(r, d.size)
	if !ok {
		return &RegionOutOfBoundsError{Rect: r, Panel: area, Size: d.size}
	}

	eh := errorHandler{d: d}
	writePixels(&eh, area.Add(d.orient.offset()), d.encode(r, area, pix))
	if eh.err != nil {
		return &TransportError{Op: "write region", Err: eh.err}
	}
	return nil
}

// encode reorders pix from logical row-major order to the order the
// controller fills area, and converts each pixel to big endian.
func (d *Dev) encode(r, area image.Rectangle, pix []rgb565.Color) []byte {
	buf := make([]byte, 2*len(pix))
	i := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			p := d.orient.fromPanel(image.Pt(x, y), d.size)
			c := pix[(p.Y-r.Min.Y)*r.Dx()+p.X-r.Min.X]
			binary.BigEndian.PutUint16(buf[i:], uint16(c))
			i += 2
		}
	}
	return buf
}

// init resets the panel and runs the initialization sequence, retrying the
// whole sequence on failure.
func (d *Dev) init() error {
	attempts := 0
	op := func() error {
		attempts++
		eh := errorHandler{d: d}
		d.reset(&eh)
		runSequence(&eh, initSequence)
		if eh.err != nil {
			return eh.err
		}
		if d.opts.VerifyID {
			id := readID(&eh)
			if eh.err != nil {
				return eh.err
			}
			if id == [3]byte{} || id == [3]byte{0xFF, 0xFF, 0xFF} {
				return fmt.Errorf("st7735: no answer to display ID read (% x)", id[:])
			}
		}
		return nil
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(d.opts.InitRetryDelay), uint64(d.opts.InitAttempts-1))
	if err := backoff.Retry(op, b); err != nil {
		return &HardwareTimeoutError{Attempts: attempts, Err: err}
	}
	return nil
}

// reset pulses the reset line, when there is one.
func (d *Dev) reset(eh *errorHandler) {
	if d.rst == nil {
		return
	}
	eh.rstOut(gpio.High)
	eh.rstOut(gpio.Low)
	sleep(d.opts.ResetHold)
	eh.rstOut(gpio.High)
	sleep(d.opts.ResetSettle)
}

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}
