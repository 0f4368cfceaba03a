// SPDX-License-Identifier: EPL-2.0

// Package backend declares the signal-processing primitives the mixing
// engine drives: gain stages, buffer sources, stereo and 3D panners, biquad
// filters, channel splitters and mergers, and analysers.
//
// The engine never processes samples itself. It schedules parameter
// automation and rewires nodes on the audio clock exposed by Context, so
// any backend honouring these contracts can be substituted. Package sim
// provides a deterministic implementation with a manually advanced clock.
//
// Connections name their target explicitly:
//
//	backend.Connect(src, backend.ToNode(gain))
//	backend.Connect(lfo, backend.ToParam(gain.Gain()))
package backend
