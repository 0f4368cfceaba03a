// SPDX-License-Identifier: EPL-2.0

package automation

import (
	"fmt"
	"strings"

	"github.com/ik5/audmix/errs"
)

// Shape is a named curve family for moving a parameter between values.
type Shape int

const (
	Linear Shape = iota
	Exponential
	Natural
	// EqualPower is the outgoing half of an equal-power crossfade.
	EqualPower
	// EqualPowerIn is the incoming half, complementary to EqualPower.
	EqualPowerIn

	// UnknownShape marks a shape name that could not be parsed. Scheduling
	// it degrades to an instantaneous set.
	UnknownShape Shape = -1
)

var shapeNames = map[Shape]string{
	Linear:       "linear",
	Exponential:  "exponential",
	Natural:      "natural",
	EqualPower:   "equalPower",
	EqualPowerIn: "equalPowerIn",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape resolves a shape name case-insensitively, accepting both
// "equalPower" and "equal_power" spellings.
func ParseShape(name string) (Shape, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "")
	for s, n := range shapeNames {
		if strings.ToLower(n) == key {
			return s, true
		}
	}
	return UnknownShape, false
}

// Ramp is either a Shape or an explicit curve. Curve values run from 0
// (initial value) to 1 (target); values outside [0,1] overshoot.
type Ramp struct {
	Shape Shape
	Curve []float64
}

// ShapeRamp returns a ramp following s.
func ShapeRamp(s Shape) Ramp {
	return Ramp{Shape: s}
}

// Curve returns an explicit ramp. The values are copied.
func Curve(values ...float64) Ramp {
	return Ramp{Curve: append([]float64{}, values...)}
}

// IsCurve reports whether the ramp is an explicit curve.
func (r Ramp) IsCurve() bool { return r.Curve != nil }

// Validate rejects explicit curves without points.
func (r Ramp) Validate() error {
	if r.IsCurve() && len(r.Curve) == 0 {
		return fmt.Errorf("%w: %w", ErrEmptyCurve, errs.ErrConfiguration)
	}
	return nil
}

func (r Ramp) String() string {
	if r.IsCurve() {
		return fmt.Sprintf("curve%v", r.Curve)
	}
	return r.Shape.String()
}

func (r Ramp) clone() Ramp {
	if r.Curve != nil {
		r.Curve = append([]float64{}, r.Curve...)
	}
	return r
}
