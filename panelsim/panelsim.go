// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package panelsim emulates an ST7735 panel at the SPI level.
//
// Panel implements spi.Port and spi.Conn. It watches its DC pin to split the
// byte stream into commands and parameters, keeps the addressing window and
// decodes RAMWR pixel data into a frame buffer the size of the controller
// memory. It permits testing drivers and rendering code without hardware.
package panelsim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/GermanBionicSystems/desksatellite/rgb565"
)

// Commands understood by the emulator.
const (
	SWRESET byte = 0x01
	RDDID   byte = 0x04
	SLPOUT  byte = 0x11
	INVOFF  byte = 0x20
	INVON   byte = 0x21
	DISPOFF byte = 0x28
	DISPON  byte = 0x29
	CASET   byte = 0x2A
	RASET   byte = 0x2B
	RAMWR   byte = 0x2C
	MADCTL  byte = 0x36
	COLMOD  byte = 0x3A
)

// Opts configures the emulated controller.
type Opts struct {
	// Width and Height are the controller memory size. Defaults to 162x132,
	// enough for a 160x80 panel with its gap.
	Width  int
	Height int
	// ID is returned by RDDID. Defaults to the ST7735S identification.
	ID [3]byte
	// Fail, if set, is called before every transaction with its 1-based
	// sequence number. A non-nil error is returned by Tx and nothing is
	// decoded.
	Fail func(n int) error
}

// Command is one decoded command and its parameters. RAMWR parameters are
// not kept, only counted.
type Command struct {
	Op     byte
	Params []byte
	Len    int
}

// Panel is an emulated ST7735.
type Panel struct {
	DC        *gpiotest.Pin
	Reset     *gpiotest.Pin
	Backlight *gpiotest.Pin

	opts Opts

	mu       sync.Mutex
	mem      *rgb565.Image
	log      []Command
	tx       int
	cmd      byte
	params   []byte
	window   image.Rectangle
	cursor   image.Point
	carry    []byte
	madctl   byte
	colmod   byte
	awake    bool
	on       bool
	inverted bool
}

// New returns an emulated panel with its memory cleared to black.
func New(opts *Opts) *Panel {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Width == 0 {
		o.Width = 162
	}
	if o.Height == 0 {
		o.Height = 132
	}
	if o.ID == [3]byte{} {
		o.ID = [3]byte{0x7C, 0x89, 0xF0}
	}
	return &Panel{
		DC:        &gpiotest.Pin{N: "DC", Num: 25},
		Reset:     &gpiotest.Pin{N: "RST", Num: 27},
		Backlight: &gpiotest.Pin{N: "BL", Num: 18},
		opts:      o,
		mem:       rgb565.NewImage(image.Rect(0, 0, o.Width, o.Height)),
		window:    image.Rect(0, 0, o.Width, o.Height),
	}
}

func (p *Panel) String() string {
	return fmt.Sprintf("panelsim(%dx%d)", p.opts.Width, p.opts.Height)
}

// Connect implements spi.Port.
func (p *Panel) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, fmt.Errorf("panelsim: unsupported %d bits words", bits)
	}
	if mode != spi.Mode0 && mode != spi.Mode3 {
		return nil, fmt.Errorf("panelsim: unsupported mode %s", mode)
	}
	return p, nil
}

// LimitSpeed implements spi.Port.
func (p *Panel) LimitSpeed(f physic.Frequency) error {
	return nil
}

// Close implements spi.PortCloser.
func (p *Panel) Close() error {
	return nil
}

// Duplex implements conn.Conn.
func (p *Panel) Duplex() conn.Duplex {
	return conn.Half
}

// TxPackets implements spi.Conn.
func (p *Panel) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := p.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

// Tx implements conn.Conn.
func (p *Panel) Tx(w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tx++
	if p.opts.Fail != nil {
		if err := p.opts.Fail(p.tx); err != nil {
			return err
		}
	}
	if len(r) != 0 {
		if len(w) != 0 {
			return errors.New("panelsim: full duplex transfers are not supported")
		}
		return p.read(r)
	}
	if p.DC.Read() == gpio.Low {
		for _, b := range w {
			p.command(b)
		}
		return nil
	}
	p.data(w)
	return nil
}

func (p *Panel) read(r []byte) error {
	if p.cmd != RDDID {
		return fmt.Errorf("panelsim: read after command %#02x is not supported", p.cmd)
	}
	copy(r, p.opts.ID[:])
	return nil
}

func (p *Panel) command(op byte) {
	p.cmd = op
	p.params = p.params[:0]
	p.carry = p.carry[:0]
	p.log = append(p.log, Command{Op: op})
	switch op {
	case SWRESET:
		p.awake = false
		p.on = false
		p.inverted = false
		p.madctl = 0
		p.colmod = 0x06
		p.window = p.mem.Rect
	case SLPOUT:
		p.awake = true
	case DISPON:
		p.on = true
	case DISPOFF:
		p.on = false
	case INVON:
		p.inverted = true
	case INVOFF:
		p.inverted = false
	case RAMWR:
		p.cursor = p.window.Min
	}
}

func (p *Panel) data(w []byte) {
	if len(p.log) == 0 {
		return
	}
	last := &p.log[len(p.log)-1]
	last.Len += len(w)
	if p.cmd == RAMWR {
		p.pixels(w)
		return
	}
	last.Params = append(last.Params, w...)
	p.params = append(p.params, w...)
	switch p.cmd {
	case CASET:
		if len(p.params) >= 4 {
			p.window.Min.X = int(binary.BigEndian.Uint16(p.params[0:]))
			p.window.Max.X = int(binary.BigEndian.Uint16(p.params[2:])) + 1
		}
	case RASET:
		if len(p.params) >= 4 {
			p.window.Min.Y = int(binary.BigEndian.Uint16(p.params[0:]))
			p.window.Max.Y = int(binary.BigEndian.Uint16(p.params[2:])) + 1
		}
	case MADCTL:
		p.madctl = p.params[0]
	case COLMOD:
		p.colmod = p.params[0]
	}
}

// pixels decodes big endian RGB565 pixels, filling the window row by row and
// wrapping to its origin, like the controller does.
func (p *Panel) pixels(w []byte) {
	if len(p.carry) != 0 {
		w = append(p.carry, w...)
		p.carry = nil
	}
	for ; len(w) >= 2; w = w[2:] {
		p.mem.SetRGB565(p.cursor.X, p.cursor.Y, rgb565.Color(binary.BigEndian.Uint16(w)))
		p.cursor.X++
		if p.cursor.X >= p.window.Max.X {
			p.cursor.X = p.window.Min.X
			p.cursor.Y++
			if p.cursor.Y >= p.window.Max.Y {
				p.cursor.Y = p.window.Min.Y
			}
		}
	}
	if len(w) != 0 {
		p.carry = append(p.carry[:0], w...)
	}
}

// Commands returns the commands received so far.
func (p *Panel) Commands() []Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Command, len(p.log))
	copy(out, p.log)
	return out
}

// Ops returns the opcodes received so far.
func (p *Panel) Ops() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, 0, len(p.log))
	for _, c := range p.log {
		out = append(out, c.Op)
	}
	return out
}

// Count returns how many times op was received.
func (p *Panel) Count(op byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.log {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Transactions returns the number of Tx calls, including failed ones.
func (p *Panel) Transactions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tx
}

// ClearLog forgets the received commands. The panel state is kept.
func (p *Panel) ClearLog() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = nil
	p.tx = 0
}

// Frame returns a copy of the controller memory.
func (p *Panel) Frame() *rgb565.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := rgb565.NewImage(p.mem.Rect)
	copy(img.Pix, p.mem.Pix)
	return img
}

// Visible returns a copy of the memory area shown by a panel of the given
// size mounted at gap.
func (p *Panel) Visible(gap, size image.Point) *rgb565.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := image.Rectangle{Min: gap, Max: gap.Add(size)}
	img := rgb565.NewImage(image.Rectangle{Max: size})
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGB565(x-gap.X, y-gap.Y, p.mem.RGB565At(x, y))
		}
	}
	return img
}

// At returns the pixel at (x, y) in controller memory.
func (p *Panel) At(x, y int) rgb565.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mem.RGB565At(x, y)
}

// Painted returns every memory pixel that differs from bg.
func (p *Panel) Painted(bg rgb565.Color) map[image.Point]rgb565.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := map[image.Point]rgb565.Color{}
	b := p.mem.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := p.mem.RGB565At(x, y); c != bg {
				out[image.Pt(x, y)] = c
			}
		}
	}
	return out
}

// Window returns the current addressing window, end exclusive.
func (p *Panel) Window() image.Rectangle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window
}

// MemoryAccess returns the last MADCTL value.
func (p *Panel) MemoryAccess() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.madctl
}

// PixelFormat returns the last COLMOD value.
func (p *Panel) PixelFormat() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.colmod
}

// Awake reports whether SLPOUT was received since the last SWRESET.
func (p *Panel) Awake() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.awake
}

// On reports whether the output is enabled.
func (p *Panel) On() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Inverted reports whether color inversion is enabled.
func (p *Panel) Inverted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inverted
}

var _ spi.PortCloser = &Panel{}
var _ spi.Conn = &Panel{}
