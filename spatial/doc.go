// SPDX-License-Identifier: EPL-2.0

// Package spatial places a signal in 3D space with double-buffered panners.
//
// Changing the parameters of a panner that is playing can click. A
// Spatializer therefore keeps two panners in a two-slot array. While its
// output is connected, updates are collected as a pending target; an
// interpolation copies the target onto the idle slot, makes it active and
// crossfades the slot gains. At most one interpolation runs per
// InterpolateDelay+InterpolateTime window; updates arriving inside the
// window coalesce and are applied by a single retry at its end. Teardown of
// the idle slot is skipped when a newer interpolation has run since.
//
// Distance attenuation uses the linear, inverse or exponential rolloff
// models and is exactly zero beyond MaxDistance. The attenuated signal is
// split between the directional path and a low-passed, non-directional
// path, moving towards the low path with distance.
package spatial
