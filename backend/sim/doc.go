// SPDX-License-Identifier: EPL-2.0

// Package sim is an in-process signal-processing backend with a virtual
// clock.
//
// It evaluates what the mixing engine depends on rather than rendering a
// stream: parameter timelines follow Web Audio automation rules and can be
// read at any instant with Param.ValueAt, and Context.Frame pulls a single
// frame through buffer sources, gains, stereo panners, splitters, mergers
// and analysers. 3D panners and biquad filters record their settings and
// pass audio through.
//
// Time only moves on Advance:
//
//	ctx := sim.New(48000)
//	ctx.AfterFunc(0.5, func() { fmt.Println(ctx.CurrentTime()) })
//	ctx.Advance(1) // prints 0.5
package sim
