// SPDX-License-Identifier: EPL-2.0

package automation

import "errors"

var (
	// ErrEmptyCurve is returned for an explicit ramp curve with no points.
	ErrEmptyCurve = errors.New("explicit ramp curve has no points")

	// ErrNilParam is returned when scheduling onto a nil parameter.
	ErrNilParam = errors.New("nil parameter")
)
