// SPDX-License-Identifier: EPL-2.0

package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/errs"
	"github.com/ik5/audmix/spatial"
)

//go:embed default.yml
var defaultYAML []byte

// Config is the file form of the mixer settings.
type Config struct {
	MasterVolume float64 `yaml:"master_volume"`
	// SampleRate is the rate assets are resampled to; 0 keeps file rates.
	SampleRate int `yaml:"sample_rate"`
	// Assets is the directory the asset cache reads from.
	Assets string `yaml:"assets"`

	// Presets override named automation presets, e.g. automationNatural
	// or trackSwapCross. Unset fields keep their default.
	Presets map[string]Preset `yaml:"presets,omitempty"`

	Spatializer Spatializer `yaml:"spatializer"`
}

// Adjustment overrides part of an automation.Adjustment.
type Adjustment struct {
	Ramp     *Ramp    `yaml:"ramp,omitempty"`
	Delay    *float64 `yaml:"delay,omitempty"`
	Duration *float64 `yaml:"duration,omitempty"`
}

func (a *Adjustment) apply(dst *automation.Adjustment) {
	if a == nil {
		return
	}
	if a.Ramp != nil {
		dst.Ramp = a.Ramp.Ramp
	}
	if a.Delay != nil {
		dst.Delay = *a.Delay
	}
	if a.Duration != nil {
		dst.Duration = *a.Duration
	}
}

// Preset is a parameter preset (inline fields) or a swap preset (old and
// new).
type Preset struct {
	Adjustment `yaml:",inline"`

	Old *Adjustment `yaml:"old,omitempty"`
	New *Adjustment `yaml:"new,omitempty"`
}

// Spatializer mirrors spatial.Config.
type Spatializer struct {
	DistanceModel      string     `yaml:"distance_model"`
	RefDistance        float64    `yaml:"ref_distance"`
	MaxDistance        float64    `yaml:"max_distance"`
	RolloffFactor      float64    `yaml:"rolloff_factor"`
	InterpolateDelay   float64    `yaml:"interpolate_delay"`
	InterpolateTime    float64    `yaml:"interpolate_time"`
	InterpolationRamp  string     `yaml:"interpolation_ramp"`
	CrossoverFrequency float64    `yaml:"crossover_frequency"`
	Listener           [3]float64 `yaml:"listener,flow"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	if err := decode(defaultYAML, &c); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return c
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "config.Load",
			"path":     path,
			"error":    err.Error(),
		}).Error("Invalid configuration")
		return Config{}, err
	}
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := decode(data, &c); err != nil {
		if errors.Is(err, errs.ErrConfiguration) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("%w: %w", errs.ErrConfiguration, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func decode(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.MasterVolume < 0 {
		return fmt.Errorf("%w: negative master_volume %v", errs.ErrConfiguration, c.MasterVolume)
	}
	if c.SampleRate < 0 {
		return fmt.Errorf("%w: negative sample_rate %d", errs.ErrConfiguration, c.SampleRate)
	}
	if _, err := c.AutomationPresets(); err != nil {
		return err
	}
	if _, err := c.SpatialConfig(); err != nil {
		return err
	}
	return nil
}

// AutomationPresets returns the default presets with the overrides
// applied.
func (c Config) AutomationPresets() (automation.Presets, error) {
	p := automation.DefaultPresets()
	for name, preset := range c.Presets {
		if adj, ok := p.Adjustment(name); ok {
			preset.Adjustment.apply(&adj)
			if err := adj.Ramp.Validate(); err != nil {
				return p, fmt.Errorf("preset %q: %w", name, err)
			}
			p.SetAdjustment(name, adj)
			continue
		}

		swap, ok := automation.ParseSwapPreset(name)
		if !ok {
			return p, fmt.Errorf("%q: %w", name, ErrUnknownPreset)
		}
		pair := p.Swap(swap)
		preset.Old.apply(&pair.Old)
		preset.New.apply(&pair.New)
		for _, a := range []automation.Adjustment{pair.Old, pair.New} {
			if err := a.Ramp.Validate(); err != nil {
				return p, fmt.Errorf("preset %q: %w", name, err)
			}
		}
		p.SetSwap(swap, pair)
	}
	return p, nil
}

// SpatialConfig converts and validates the spatializer section.
func (c Config) SpatialConfig() (spatial.Config, error) {
	s := c.Spatializer
	model, ok := spatial.ParseDistanceModel(s.DistanceModel)
	if !ok {
		return spatial.Config{}, fmt.Errorf("%w: unknown distance_model %q", errs.ErrConfiguration, s.DistanceModel)
	}
	ramp, ok := automation.ParseShape(s.InterpolationRamp)
	if !ok {
		return spatial.Config{}, fmt.Errorf("interpolation_ramp %q: %w", s.InterpolationRamp, ErrUnknownRamp)
	}

	cfg := spatial.Config{
		DistanceModel:      model,
		RefDistance:        s.RefDistance,
		MaxDistance:        s.MaxDistance,
		RolloffFactor:      s.RolloffFactor,
		InterpolateDelay:   s.InterpolateDelay,
		InterpolateTime:    s.InterpolateTime,
		InterpolationRamp:  ramp,
		CrossoverFrequency: s.CrossoverFrequency,
		Listener:           spatial.Vector{X: s.Listener[0], Y: s.Listener[1], Z: s.Listener[2]},
	}
	if err := cfg.Validate(); err != nil {
		return spatial.Config{}, err
	}
	return cfg, nil
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
