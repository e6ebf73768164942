// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/GermanBionicSystems/desksatellite/font5x7"
	"github.com/GermanBionicSystems/desksatellite/rgb565"
	"github.com/GermanBionicSystems/desksatellite/st7735"
)

// panel is the part of *st7735.Dev the sequencer drives.
type panel interface {
	font5x7.Writer
	Configure(o st7735.Orientation) error
	DisplayEnable(on bool) error
	Clear(c rgb565.Color) error
	Halt() error
}

// sequencer brings the panel up, draws the message, counts down and starts
// over from a cold reset.
type sequencer struct {
	// open resets and initializes a fresh panel handle.
	open   func() (panel, error)
	orient st7735.Orientation

	text     string
	dot      image.Point
	fg, bg   rgb565.Color
	missing  font5x7.MissingPolicy
	coalesce bool

	countdown int
	interval  time.Duration

	log zerolog.Logger
	// after defaults to time.After.
	after func(time.Duration) <-chan time.Time
	// drawn is called once the message is on the panel.
	drawn func()
}

// run loops over cycles until ctx is canceled. With once, it returns after
// the first cycle, successful or not.
func (s *sequencer) run(ctx context.Context, once bool) error {
	for n := 1; ; n++ {
		s.log.Debug().Int("cycle", n).Msg("bring-up")
		err := s.cycle(ctx)
		if ctx.Err() != nil {
			s.log.Info().Msg("stopped")
			return nil
		}
		if once {
			return err
		}
		if err != nil {
			s.log.Error().Err(err).Int("cycle", n).Msg("cycle failed, restarting from reset")
			if !s.wait(ctx) {
				s.log.Info().Msg("stopped")
				return nil
			}
		}
	}
}

// cycle runs one full bring-up, draw and countdown. The panel is halted on
// the way out, including on cancellation.
func (s *sequencer) cycle(ctx context.Context) error {
	p, err := s.open()
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Halt(); err != nil {
			s.log.Warn().Err(err).Msg("halt failed")
		}
	}()
	if err := p.Configure(s.orient); err != nil {
		return err
	}
	if err := p.DisplayEnable(true); err != nil {
		return err
	}
	if err := p.Clear(s.bg); err != nil {
		return err
	}
	d := font5x7.Drawer{
		Dst:      p,
		Dot:      s.dot,
		Color:    s.fg,
		Missing:  s.missing,
		Coalesce: s.coalesce,
	}
	n, err := d.DrawString(s.text)
	if err != nil {
		return err
	}
	s.log.Info().Str("text", s.text).Int("glyphs", n).Int("cursor", d.Dot.X).Msg("Hello world!")
	if s.drawn != nil {
		s.drawn()
	}

	for i := s.countdown; i >= 0; i-- {
		s.log.Info().Msgf("Restarting in %d seconds...", i)
		if !s.wait(ctx) {
			return ctx.Err()
		}
	}
	s.log.Info().Msg("Restarting now.")
	return nil
}

// wait sleeps for one interval. It returns false if ctx was canceled first.
func (s *sequencer) wait(ctx context.Context) bool {
	after := s.after
	if after == nil {
		after = time.After
	}
	select {
	case <-ctx.Done():
		return false
	case <-after(s.interval):
		return true
	}
}
