// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/errs"
)

// Ramp is an automation.Ramp written either as a shape name or as a list
// of curve values:
//
//	ramp: natural
//	ramp: [0, 0.8, 1]
type Ramp struct {
	automation.Ramp
}

func (r *Ramp) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		shape, ok := automation.ParseShape(value.Value)
		if !ok {
			return fmt.Errorf("line %d: %q: %w", value.Line, value.Value, ErrUnknownRamp)
		}
		r.Ramp = automation.ShapeRamp(shape)
		return nil
	case yaml.SequenceNode:
		var values []float64
		if err := value.Decode(&values); err != nil {
			return fmt.Errorf("line %d: ramp curve: %w", value.Line, err)
		}
		r.Ramp = automation.Curve(values...)
		return nil
	}
	return fmt.Errorf("line %d: ramp must be a name or a list: %w", value.Line, errs.ErrConfiguration)
}

func (r Ramp) MarshalYAML() (any, error) {
	if r.IsCurve() {
		return r.Curve, nil
	}
	return r.Shape.String(), nil
}
