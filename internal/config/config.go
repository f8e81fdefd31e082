// Package config loads the engine settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/icco/hathor/internal/control"
	"github.com/icco/hathor/internal/panel"
	"github.com/icco/hathor/internal/params"
	"github.com/icco/hathor/internal/voice"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the top-level configuration document.
type Config struct {
	SampleRate      int           `yaml:"sample_rate"`
	BlockSize       int           `yaml:"block_size"`
	Voices          int           `yaml:"voices"`
	SustainLevel    float64       `yaml:"sustain_level"`
	ControlInterval time.Duration `yaml:"control_interval"`
	ControlBlocks   int           `yaml:"control_blocks"`
	QueueSize       int           `yaml:"queue_size"`
	CutoffCurve     params.Curve  `yaml:"cutoff_curve"`
	MIDI            MIDI          `yaml:"midi"`
	Panel           Panel         `yaml:"panel"`
}

// MIDI selects the input port and maps controllers onto knobs.
type MIDI struct {
	// Port is a name prefix of an existing input port. Empty opens a virtual
	// port named VirtualName.
	Port        string           `yaml:"port"`
	VirtualName string           `yaml:"virtual_name"`
	CC          map[uint8]string `yaml:"cc"`
}

// Panel holds the initial front-panel positions.
type Panel struct {
	Knobs  map[string]float64 `yaml:"knobs"`
	Filter bool               `yaml:"filter"`
	LFO    bool               `yaml:"lfo"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		SampleRate:      48000,
		BlockSize:       4,
		Voices:          6,
		SustainLevel:    voice.DefaultSustainLevel,
		ControlInterval: time.Millisecond,
		ControlBlocks:   12,
		QueueSize:       64,
		CutoffCurve:     params.Linear,
		MIDI: MIDI{
			VirtualName: "Hathor",
			CC: map[uint8]string{
				7:  "master",
				70: "shape",
				94: "detune",
				74: "cutoff",
				71: "resonance",
				76: "lfo-rate",
				77: "lfo-depth",
				73: "attack",
				72: "decay-release",
				91: "reverb",
				92: "chorus-rate",
				93: "chorus-depth",
			},
		},
		Panel: Panel{
			Knobs: map[string]float64{
				"master":        0.7,
				"cutoff":        0.6,
				"resonance":     0.2,
				"lfo-rate":      0.05,
				"lfo-depth":     0.3,
				"attack":        0.01,
				"decay-release": 0.3,
				"reverb":        0.25,
				"chorus-rate":   0.1,
				"chorus-depth":  0.3,
			},
			Filter: true,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("%w: sample_rate %d out of range", ErrInvalid, c.SampleRate)
	case c.BlockSize < 1:
		return fmt.Errorf("%w: block_size must be positive", ErrInvalid)
	case c.Voices < 1:
		return fmt.Errorf("%w: voices must be positive", ErrInvalid)
	case c.SustainLevel < 0 || c.SustainLevel > 1:
		return fmt.Errorf("%w: sustain_level %g outside [0,1]", ErrInvalid, c.SustainLevel)
	case c.ControlInterval <= 0:
		return fmt.Errorf("%w: control_interval must be positive", ErrInvalid)
	case c.ControlBlocks < 1:
		return fmt.Errorf("%w: control_blocks must be positive", ErrInvalid)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalid)
	}

	for cc, name := range c.MIDI.CC {
		if cc > 127 {
			return fmt.Errorf("%w: controller %d out of range", ErrInvalid, cc)
		}
		if ch, ok := control.ChannelByName(name); !ok || !ch.IsKnob() {
			return fmt.Errorf("%w: controller %d maps to unknown knob %q", ErrInvalid, cc, name)
		}
	}
	for name, pos := range c.Panel.Knobs {
		if ch, ok := control.ChannelByName(name); !ok || !ch.IsKnob() {
			return fmt.Errorf("%w: unknown knob %q", ErrInvalid, name)
		}
		if pos < 0 || pos > 1 {
			return fmt.Errorf("%w: knob %s position %g outside [0,1]", ErrInvalid, name, pos)
		}
	}
	return nil
}

// Controllers resolves the CC map into panel channels. Call after Validate.
func (c Config) Controllers() map[uint8]control.Channel {
	out := make(map[uint8]control.Channel, len(c.MIDI.CC))
	for cc, name := range c.MIDI.CC {
		if ch, ok := control.ChannelByName(name); ok {
			out[cc] = ch
		}
	}
	return out
}

// Preset moves p to the configured initial positions.
func (c Config) Preset(p *panel.Panel) {
	for name, pos := range c.Panel.Knobs {
		if ch, ok := control.ChannelByName(name); ok {
			p.SetKnob(ch, pos)
		}
	}
	p.SetSwitch(control.FilterSwitch, c.Panel.Filter)
	p.SetSwitch(control.LFOSwitch, c.Panel.LFO)
}
