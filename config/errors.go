// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"

	"github.com/ik5/audmix/errs"
)

var (
	// ErrUnknownPreset is returned for preset names that match neither a
	// parameter preset nor a swap preset.
	ErrUnknownPreset = fmt.Errorf("unknown preset: %w", errs.ErrConfiguration)

	// ErrUnknownRamp is returned for ramp names that are not a shape.
	ErrUnknownRamp = fmt.Errorf("unknown ramp: %w", errs.ErrConfiguration)
)
