// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// desksatellite brings up an ST7735 panel, draws a message, counts down and
// restarts from a cold reset, forever.
//
// Use --driver=sim to run against the simulated panel, previewed in the
// terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/desksatellite/panelsim"
	"github.com/GermanBionicSystems/desksatellite/st7735"
)

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	zerolog.TimeFieldFormat = time.RFC3339
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// target is where the sequencer sends the panel traffic.
type target struct {
	port  spi.Port
	pins  st7735.Pins
	sim   *panelsim.Panel
	close func() error
}

func openSPI(c *Config) (*target, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	p, err := spireg.Open(c.SPI.Port)
	if err != nil {
		return nil, err
	}
	t := &target{port: p, close: p.Close}
	for _, pin := range []struct {
		name string
		dst  *gpio.PinOut
	}{
		{c.Pins.DC, &t.pins.DC},
		{c.Pins.Reset, &t.pins.Reset},
		{c.Pins.Backlight, &t.pins.Backlight},
		{c.Pins.CS, &t.pins.CS},
	} {
		if pin.name == "" {
			continue
		}
		gp := gpioreg.ByName(pin.name)
		if gp == nil {
			p.Close()
			return nil, fmt.Errorf("no GPIO pin named %q", pin.name)
		}
		*pin.dst = gp
	}
	return t, nil
}

// openSim returns an emulated controller large enough for opts.
func openSim(opts *st7735.Opts) *target {
	so := &panelsim.Opts{Width: 162, Height: 132}
	if opts.Height > opts.Width {
		so.Width, so.Height = 132, 162
	}
	p := panelsim.New(so)
	return &target{
		port:  p,
		pins:  st7735.Pins{DC: p.DC, Reset: p.Reset, Backlight: p.Backlight},
		sim:   p,
		close: p.Close,
	}
}

func newSequencer(c *Config, t *target, log zerolog.Logger) (*sequencer, error) {
	opts, err := c.opts()
	if err != nil {
		return nil, err
	}
	st, err := c.style()
	if err != nil {
		return nil, err
	}
	s := &sequencer{
		open: func() (panel, error) {
			d, err := st7735.New(t.port, &t.pins, &opts)
			if err != nil {
				return nil, err
			}
			log.Debug().Str("dev", d.String()).Msg("initialized")
			return d, nil
		},
		orient:    c.Orientation.orientation(),
		text:      c.Text.Message,
		dot:       st.dot,
		fg:        st.fg,
		bg:        st.bg,
		missing:   st.missing,
		coalesce:  c.Text.Coalesce,
		countdown: c.Countdown,
		interval:  c.Interval,
		log:       log,
	}
	if t.sim != nil {
		s.drawn = simOutput(c, t.sim, image.Pt(opts.Width, opts.Height), log)
	}
	return s, nil
}

// simOutput returns a hook that shows what the simulated glass displays.
func simOutput(c *Config, p *panelsim.Panel, size image.Point, log zerolog.Logger) func() {
	gap := image.Pt(c.Orientation.OffsetX, c.Orientation.OffsetY)
	var pv *panelsim.Preview
	if c.Preview.Terminal {
		pv = panelsim.NewPreview(&panelsim.PreviewOpts{Columns: c.Preview.Columns})
	}
	return func() {
		img := p.Visible(gap, size)
		if pv != nil {
			if err := pv.Render(img); err != nil {
				log.Warn().Err(err).Msg("preview failed")
			}
		}
		if c.Preview.Snapshot != "" {
			if err := panelsim.SavePNG(c.Preview.Snapshot, img, c.Preview.Scale); err != nil {
				log.Warn().Err(err).Str("path", c.Preview.Snapshot).Msg("snapshot failed")
			} else {
				log.Debug().Str("path", c.Preview.Snapshot).Msg("snapshot written")
			}
		}
	}
}

func mainImpl() error {
	c, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	log, err := newLogger(os.Stderr, c.LogLevel)
	if err != nil {
		return err
	}
	log = log.With().Str("model", c.Panel.Model).Str("driver", c.Driver).Logger()

	var t *target
	if c.Driver == "sim" {
		opts, _ := c.opts()
		t = openSim(&opts)
	} else if t, err = openSPI(c); err != nil {
		return err
	}
	defer t.close()

	s, err := newSequencer(c, t, log)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.run(ctx, c.Once)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "desksatellite: %s.\n", err)
		os.Exit(1)
	}
}
