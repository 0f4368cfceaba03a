// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"fmt"
	"math"
	"strings"

	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/errs"
)

// Epsilon is the smallest accepted reference and maximum distance.
const Epsilon = 1e-4

// DistanceModel selects the rolloff formula.
type DistanceModel string

const (
	Linear      DistanceModel = "linear"
	Inverse     DistanceModel = "inverse"
	Exponential DistanceModel = "exponential"
)

// ParseDistanceModel matches model names case-insensitively.
func ParseDistanceModel(name string) (DistanceModel, bool) {
	m := DistanceModel(strings.ToLower(strings.TrimSpace(name)))
	switch m {
	case Linear, Inverse, Exponential:
		return m, true
	}
	return m, false
}

// Vector is a point or direction in listener space.
type Vector struct {
	X, Y, Z float64
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Config tunes a Spatializer. Times are in seconds.
type Config struct {
	DistanceModel DistanceModel
	RefDistance   float64
	MaxDistance   float64
	RolloffFactor float64

	// InterpolateDelay+InterpolateTime is the minimum interval between two
	// panner swaps; each swap crossfades over InterpolateTime.
	InterpolateDelay  float64
	InterpolateTime   float64
	InterpolationRamp automation.Shape

	// CrossoverFrequency is the cutoff, in Hz, of the non-directional low
	// path.
	CrossoverFrequency float64

	Listener Vector
}

// DefaultConfig returns Web Audio's distance defaults with a short
// equal-power interpolation.
func DefaultConfig() Config {
	return Config{
		DistanceModel:      Inverse,
		RefDistance:        1,
		MaxDistance:        10000,
		RolloffFactor:      1,
		InterpolateDelay:   0.05,
		InterpolateTime:    0.05,
		InterpolationRamp:  automation.EqualPower,
		CrossoverFrequency: 250,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.RefDistance < Epsilon:
		return fmt.Errorf("%w: refDistance %v below %v", errs.ErrConfiguration, c.RefDistance, Epsilon)
	case c.MaxDistance < Epsilon:
		return fmt.Errorf("%w: maxDistance %v below %v", errs.ErrConfiguration, c.MaxDistance, Epsilon)
	case c.MaxDistance < c.RefDistance:
		return fmt.Errorf("%w: maxDistance %v below refDistance %v", errs.ErrConfiguration, c.MaxDistance, c.RefDistance)
	case c.RolloffFactor < 0:
		return fmt.Errorf("%w: negative rolloffFactor %v", errs.ErrConfiguration, c.RolloffFactor)
	case c.InterpolateDelay < 0 || c.InterpolateTime < 0:
		return fmt.Errorf("%w: negative interpolation time", errs.ErrConfiguration)
	case c.CrossoverFrequency <= 0:
		return fmt.Errorf("%w: crossoverFrequency %v", errs.ErrConfiguration, c.CrossoverFrequency)
	}
	if _, ok := ParseDistanceModel(string(c.DistanceModel)); !ok {
		return fmt.Errorf("%w: unknown distance model %q", errs.ErrConfiguration, c.DistanceModel)
	}
	return nil
}

// DistanceGain is the attenuation at distance d. It is exactly 0 beyond
// MaxDistance.
func (c Config) DistanceGain(d float64) float64 {
	if d > c.MaxDistance {
		return 0
	}
	ref, rolloff := c.RefDistance, c.RolloffFactor
	clamped := max(d, ref)

	switch DistanceModel(strings.ToLower(string(c.DistanceModel))) {
	case Linear:
		span := c.MaxDistance - ref
		if span <= 0 {
			return 1
		}
		return max(0, 1-min(rolloff, 1)*(clamped-ref)/span)
	case Exponential:
		return math.Pow(clamped/ref, -rolloff)
	default:
		return ref / (ref + rolloff*(clamped-ref))
	}
}

// LowMix is the share of the signal taken by the low-passed path at
// distance d, from 0 at RefDistance to 1 at MaxDistance.
func (c Config) LowMix(d float64) float64 {
	span := c.MaxDistance - c.RefDistance
	if span <= 0 {
		return 0
	}
	return max(0, min(1, (d-c.RefDistance)/span))
}
