// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/desksatellite/font5x7"
	"github.com/GermanBionicSystems/desksatellite/rgb565"
	"github.com/GermanBionicSystems/desksatellite/st7735"
)

// Config is the YAML configuration file. Flags override it.
type Config struct {
	// Driver is "spi" for real hardware or "sim" for the simulated panel.
	Driver      string            `yaml:"driver"`
	SPI         SPIConfig         `yaml:"spi"`
	Pins        PinsConfig        `yaml:"pins"`
	Panel       PanelConfig       `yaml:"panel"`
	Orientation OrientationConfig `yaml:"orientation"`
	Text        TextConfig        `yaml:"text"`
	Preview     PreviewConfig     `yaml:"preview"`

	Countdown int           `yaml:"countdown"`
	Interval  time.Duration `yaml:"interval"`
	Once      bool          `yaml:"once"`
	LogLevel  string        `yaml:"log_level"`
}

type SPIConfig struct {
	// Port is the spireg name, empty for the first port.
	Port    string `yaml:"port"`
	SpeedHz int64  `yaml:"speed_hz"`
}

// PinsConfig holds gpioreg names. Reset, Backlight and CS are optional.
type PinsConfig struct {
	DC        string `yaml:"dc"`
	Reset     string `yaml:"reset"`
	Backlight string `yaml:"backlight"`
	CS        string `yaml:"cs"`
}

type PanelConfig struct {
	// Model is one of the keys of models.
	Model        string `yaml:"model"`
	VerifyID     bool   `yaml:"verify_id"`
	InitAttempts int    `yaml:"init_attempts"`
}

type OrientationConfig struct {
	SwapXY   bool `yaml:"swap_xy"`
	MirrorX  bool `yaml:"mirror_x"`
	MirrorY  bool `yaml:"mirror_y"`
	OffsetX  int  `yaml:"offset_x"`
	OffsetY  int  `yaml:"offset_y"`
	Inverted bool `yaml:"inverted"`
}

type TextConfig struct {
	Message string `yaml:"message"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	// Color and Background are "#RRGGBB" or a raw 5-6-5 value like "0xF800".
	Color      string `yaml:"color"`
	Background string `yaml:"background"`
	// Missing is skip, fail or box.
	Missing  string `yaml:"missing"`
	Coalesce bool   `yaml:"coalesce"`
}

// PreviewConfig only applies to the simulated panel.
type PreviewConfig struct {
	Terminal bool   `yaml:"terminal"`
	Columns  int    `yaml:"columns"`
	Snapshot string `yaml:"snapshot"`
	Scale    int    `yaml:"scale"`
}

var models = map[string]st7735.Opts{
	"mini160x80":   st7735.Mini160x80,
	"green128x160": st7735.Green128x160,
	"green128x128": st7735.Green128x128,
}

// defaultConfig matches the 0.96" 160x80 IPS module wired to a Raspberry Pi.
func defaultConfig() Config {
	return Config{
		Driver: "spi",
		Pins:   PinsConfig{DC: "GPIO25", Reset: "GPIO27", Backlight: "GPIO18"},
		Panel:  PanelConfig{Model: "mini160x80"},
		Orientation: OrientationConfig{
			MirrorY:  true,
			OffsetX:  1,
			OffsetY:  26,
			Inverted: true,
		},
		Text: TextConfig{
			Message:    "Hello, World!",
			Color:      "0xF800",
			Background: "0x0000",
			Missing:    "skip",
		},
		Preview:   PreviewConfig{Terminal: true, Columns: 80, Scale: 4},
		Countdown: 10,
		Interval:  time.Second,
		LogLevel:  "info",
	}
}

// flagSet binds every flag to a field of c, using the current values as
// defaults.
func flagSet(c *Config, path *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("desksatellite", pflag.ContinueOnError)
	fs.StringVarP(path, "config", "c", *path, "YAML configuration file")
	fs.StringVar(&c.Driver, "driver", c.Driver, "spi or sim")
	fs.StringVar(&c.SPI.Port, "spi", c.SPI.Port, "SPI port to use")
	fs.Int64Var(&c.SPI.SpeedHz, "hz", c.SPI.SpeedHz, "SPI clock in Hz, 0 for the panel default")
	fs.StringVar(&c.Pins.DC, "dc", c.Pins.DC, "data/command GPIO pin")
	fs.StringVar(&c.Pins.Reset, "reset", c.Pins.Reset, "reset GPIO pin")
	fs.StringVar(&c.Pins.Backlight, "backlight", c.Pins.Backlight, "backlight GPIO pin")
	fs.StringVar(&c.Pins.CS, "cs", c.Pins.CS, "chip select GPIO pin, when not driven by the SPI port")
	fs.StringVar(&c.Panel.Model, "model", c.Panel.Model, "panel model: "+strings.Join(modelNames(), ", "))
	fs.BoolVar(&c.Panel.VerifyID, "verify-id", c.Panel.VerifyID, "read the display ID after initialization")
	fs.IntVar(&c.Panel.InitAttempts, "init-attempts", c.Panel.InitAttempts, "reset and init attempts, 0 for the default")
	fs.BoolVar(&c.Orientation.SwapXY, "swap-xy", c.Orientation.SwapXY, "swap logical axes")
	fs.BoolVar(&c.Orientation.MirrorX, "mirror-x", c.Orientation.MirrorX, "mirror the physical X axis")
	fs.BoolVar(&c.Orientation.MirrorY, "mirror-y", c.Orientation.MirrorY, "mirror the physical Y axis")
	fs.IntVar(&c.Orientation.OffsetX, "offset-x", c.Orientation.OffsetX, "column of the glass in controller memory")
	fs.IntVar(&c.Orientation.OffsetY, "offset-y", c.Orientation.OffsetY, "row of the glass in controller memory")
	fs.BoolVar(&c.Orientation.Inverted, "inverted", c.Orientation.Inverted, "invert colors")
	fs.StringVar(&c.Text.Message, "text", c.Text.Message, "message to draw")
	fs.IntVar(&c.Text.X, "x", c.Text.X, "text left edge")
	fs.IntVar(&c.Text.Y, "y", c.Text.Y, "text top edge")
	fs.StringVar(&c.Text.Color, "color", c.Text.Color, "text color")
	fs.StringVar(&c.Text.Background, "background", c.Text.Background, "clear color")
	fs.StringVar(&c.Text.Missing, "missing", c.Text.Missing, "unmapped characters: skip, fail or box")
	fs.BoolVar(&c.Text.Coalesce, "coalesce", c.Text.Coalesce, "send glyph rows as runs instead of single pixels")
	fs.BoolVar(&c.Preview.Terminal, "preview", c.Preview.Terminal, "print the simulated panel to the terminal")
	fs.IntVar(&c.Preview.Columns, "preview-columns", c.Preview.Columns, "terminal preview width")
	fs.StringVar(&c.Preview.Snapshot, "snapshot", c.Preview.Snapshot, "write the simulated panel to this PNG file")
	fs.IntVar(&c.Preview.Scale, "scale", c.Preview.Scale, "PNG snapshot scale")
	fs.IntVar(&c.Countdown, "countdown", c.Countdown, "countdown before restarting")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "countdown step")
	fs.BoolVar(&c.Once, "once", c.Once, "run a single cycle")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "trace, debug, info, warn or error")
	return fs
}

// loadConfig returns the defaults, overridden by the YAML file named by
// --config, overridden by the other flags.
func loadConfig(args []string, stderr io.Writer) (*Config, error) {
	path := ""
	c := defaultConfig()
	fs := flagSet(&c, &path)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if path != "" {
		c = defaultConfig()
		if err := readConfig(path, &c); err != nil {
			return nil, err
		}
		// Parse again so flags win over the file.
		fs = flagSet(&c, &path)
		fs.SetOutput(stderr)
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func readConfig(path string, c *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Driver != "spi" && c.Driver != "sim" {
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if _, err := c.opts(); err != nil {
		return err
	}
	if _, err := c.style(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Countdown < 0 {
		return fmt.Errorf("negative countdown %d", c.Countdown)
	}
	if c.Interval < 0 {
		return fmt.Errorf("negative interval %s", c.Interval)
	}
	if c.Driver == "spi" && c.Pins.DC == "" {
		return errors.New("a DC pin is required")
	}
	return nil
}

// opts returns the driver options for the configured model.
func (c *Config) opts() (st7735.Opts, error) {
	o, ok := models[strings.ToLower(c.Panel.Model)]
	if !ok {
		return st7735.Opts{}, fmt.Errorf("unknown panel model %q, use one of %s", c.Panel.Model, strings.Join(modelNames(), ", "))
	}
	if c.SPI.SpeedHz != 0 {
		o.Clock = physic.Frequency(c.SPI.SpeedHz) * physic.Hertz
	}
	o.VerifyID = c.Panel.VerifyID
	if c.Panel.InitAttempts != 0 {
		o.InitAttempts = c.Panel.InitAttempts
	}
	return o, nil
}

func (c *OrientationConfig) orientation() st7735.Orientation {
	return st7735.Orientation{
		SwapXY:   c.SwapXY,
		MirrorX:  c.MirrorX,
		MirrorY:  c.MirrorY,
		OffsetX:  c.OffsetX,
		OffsetY:  c.OffsetY,
		Inverted: c.Inverted,
	}
}

type style struct {
	dot     image.Point
	fg, bg  rgb565.Color
	missing font5x7.MissingPolicy
}

func (c *Config) style() (style, error) {
	var s style
	var err error
	s.dot = image.Pt(c.Text.X, c.Text.Y)
	if s.fg, err = parseColor(c.Text.Color); err != nil {
		return s, err
	}
	if s.bg, err = parseColor(c.Text.Background); err != nil {
		return s, err
	}
	s.missing, err = font5x7.ParseMissingPolicy(c.Text.Missing)
	return s, err
}

// parseColor accepts "#RRGGBB" or a 16 bit 5-6-5 value in any base
// strconv understands.
func parseColor(s string) (rgb565.Color, error) {
	if strings.HasPrefix(s, "#") {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil || len(s) != 7 {
			return 0, fmt.Errorf("invalid color %q", s)
		}
		return rgb565.New(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return rgb565.Color(v), nil
}

func modelNames() []string {
	return []string{"mini160x80", "green128x160", "green128x128"}
}
