// SPDX-License-Identifier: EPL-2.0

package automation

import "math"

const (
	// PollRate is the sampling rate, in Hz, of generated value curves.
	PollRate = 60

	// minCurvePoints is 10 Hz worth of points over one second.
	minCurvePoints = 10
)

// CurvePoints returns how many points a generated curve spanning duration
// seconds uses.
func CurvePoints(duration float64) int {
	n := int(math.Ceil(duration*PollRate)) + 1
	return max(n, minCurvePoints)
}

// EqualPowerCurve is the outgoing fade, 1-cos(xπ/2), sampled at n points
// over x in [0,1]. Applied as progress from 1 to 0 it yields cos(xπ/2).
func EqualPowerCurve(n int) []float64 {
	return sampleCurve(n, func(x float64) float64 {
		return 1 - math.Cos(x*math.Pi/2)
	})
}

// EqualPowerInCurve is the incoming fade, sin(xπ/2), sampled at n points.
func EqualPowerInCurve(n int) []float64 {
	return sampleCurve(n, func(x float64) float64 {
		return math.Sin(x * math.Pi / 2)
	})
}

func sampleCurve(n int, f func(float64) float64) []float64 {
	n = max(n, 2)
	out := make([]float64, n)
	for i := range out {
		out[i] = f(float64(i) / float64(n-1))
	}
	return out
}

// NaturalSettled is the value a natural ramp from start to target holds
// after three time constants.
func NaturalSettled(start, target float64) float64 {
	return start + (target-start)*(1-math.Exp(-3))
}
