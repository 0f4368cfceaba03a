// SPDX-License-Identifier: EPL-2.0

// Package utils holds small sample-level helpers shared by the audio and
// export code.
package utils

// CubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at
// fraction x of the way from y1 to y2.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}
