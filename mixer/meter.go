// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Level is the composite output level over the analyser window.
type Level struct {
	Peak float64
	RMS  float64
}

// Meter measures the master output.
func (m *Mixer) Meter() (Level, error) {
	if m.closed {
		return Level{}, ErrClosed
	}
	m.analyser.FloatTimeDomainData(m.window)

	power := vek32.Mean(vek32.Mul_Into(m.tmp, m.window, m.window))
	vek32.Abs_Inplace(m.window)
	return Level{
		Peak: float64(vek32.Max(m.window)),
		RMS:  math.Sqrt(float64(power)),
	}, nil
}
