// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"encoding/binary"
	"image"
	"time"
)

// Commands
const (
	swReset   byte = 0x01
	rdDID     byte = 0x04
	slpOut    byte = 0x11
	norOn     byte = 0x13
	invOff    byte = 0x20
	invOn     byte = 0x21
	dispOff   byte = 0x28
	dispOn    byte = 0x29
	caSet     byte = 0x2A
	raSet     byte = 0x2B
	ramWr     byte = 0x2C
	madCtl    byte = 0x36
	colMod    byte = 0x3A
	frmCtr1   byte = 0xB1
	frmCtr2   byte = 0xB2
	frmCtr3   byte = 0xB3
	invCtr    byte = 0xB4
	pwCtr1    byte = 0xC0
	pwCtr2    byte = 0xC1
	pwCtr3    byte = 0xC2
	pwCtr4    byte = 0xC3
	pwCtr5    byte = 0xC4
	vmCtr1    byte = 0xC5
	gmCtrP1   byte = 0xE0
	gmCtrN1   byte = 0xE1
	madctlBGR byte = 0x08
	colMod16  byte = 0x05
)

// sleep is replaced in tests.
var sleep = time.Sleep

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	readData([]byte)
}

type step struct {
	cmd   byte
	data  []byte
	delay time.Duration
}

// initSequence brings the controller out of reset into 16 bits per pixel
// normal mode. The display stays blanked until dispOn.
var initSequence = []step{
	{cmd: swReset, delay: 150 * time.Millisecond},
	{cmd: slpOut, delay: 500 * time.Millisecond},
	// Frame rate = fosc/(1x2+40) * (LINE+2C+2D), for normal, idle and partial
	// modes.
	{cmd: frmCtr1, data: []byte{0x01, 0x2C, 0x2D}},
	{cmd: frmCtr2, data: []byte{0x01, 0x2C, 0x2D}},
	{cmd: frmCtr3, data: []byte{0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D}},
	// No inversion.
	{cmd: invCtr, data: []byte{0x07}},
	// -4.6V, AUTO mode.
	{cmd: pwCtr1, data: []byte{0xA2, 0x02, 0x84}},
	{cmd: pwCtr2, data: []byte{0xC5}},
	{cmd: pwCtr3, data: []byte{0x0A, 0x00}},
	{cmd: pwCtr4, data: []byte{0x8A, 0x2A}},
	{cmd: pwCtr5, data: []byte{0x8A, 0xEE}},
	{cmd: vmCtr1, data: []byte{0x0E}},
	{cmd: colMod, data: []byte{colMod16}},
	{cmd: gmCtrP1, data: []byte{
		0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D,
		0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10,
	}},
	{cmd: gmCtrN1, data: []byte{
		0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D,
		0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10,
	}},
	{cmd: norOn, delay: 10 * time.Millisecond},
}

func runSequence(ctrl controller, steps []step) {
	for _, s := range steps {
		ctrl.sendCommand(s.cmd)
		if len(s.data) != 0 {
			ctrl.sendData(s.data)
		}
		if s.delay != 0 {
			sleep(s.delay)
		}
	}
}

// readID reads the 3 bytes display identification.
func readID(ctrl controller) [3]byte {
	var id [3]byte
	ctrl.sendCommand(rdDID)
	ctrl.readData(id[:])
	return id
}

// configureDisplay sets the memory access order, the color inversion and an
// addressing window covering the whole panel.
func configureDisplay(ctrl controller, opts *Opts, o Orientation) {
	madctl := opts.MemoryAccess
	if opts.BGR {
		madctl |= madctlBGR
	}
	ctrl.sendCommand(madCtl)
	ctrl.sendData([]byte{madctl})

	if o.Inverted {
		ctrl.sendCommand(invOn)
	} else {
		ctrl.sendCommand(invOff)
	}

	setWindow(ctrl, image.Rect(0, 0, opts.Width, opts.Height).Add(o.offset()))
}

// setWindow configures the addressing window in controller memory
// coordinates. The end addresses are inclusive on the wire.
func setWindow(ctrl controller, area image.Rectangle) {
	var buf [4]byte

	binary.BigEndian.PutUint16(buf[0:], uint16(area.Min.X))
	binary.BigEndian.PutUint16(buf[2:], uint16(area.Max.X-1))
	ctrl.sendCommand(caSet)
	ctrl.sendData(buf[:])

	binary.BigEndian.PutUint16(buf[0:], uint16(area.Min.Y))
	binary.BigEndian.PutUint16(buf[2:], uint16(area.Max.Y-1))
	ctrl.sendCommand(raSet)
	ctrl.sendData(buf[:])
}

// writePixels sets the addressing window and streams pixel data into it.
func writePixels(ctrl controller, area image.Rectangle, data []byte) {
	setWindow(ctrl, area)
	ctrl.sendCommand(ramWr)
	ctrl.sendData(data)
}

func enableDisplay(ctrl controller, on bool) {
	if on {
		ctrl.sendCommand(dispOn)
	} else {
		ctrl.sendCommand(dispOff)
	}
}
