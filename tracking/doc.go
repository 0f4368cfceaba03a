// SPDX-License-Identifier: EPL-2.0

// Package tracking wraps a backend buffer source so its play-head can be
// read back on backends that cannot report one.
//
// Loading a buffer of C channels and L frames produces an augmented buffer
// of C+1 channels whose last channel holds i - floor(L/2) at frame i. That
// channel is split off to an analyser; the original channels go on to a
// stereo panner and an output gain stage. Reading the latest analyser
// sample and adding floor(L/2) back gives the frame being played.
//
//	src := tracking.New(ctx)
//	_ = src.Load(buf)
//	_ = src.Connect(backend.ToNode(ctx.Destination()))
//	_ = src.Start(0, 0, 0)
//	pos, _ := src.Position() // seconds, or -1 when not playing
//
// Position is -1 whenever the source is not audibly playing, which is
// tracked explicitly; a source playing silence still reports its frame.
package tracking
