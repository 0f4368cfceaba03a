// SPDX-License-Identifier: EPL-2.0

// Package audmix is a track-based audio mixer built on an abstract
// Web-Audio-like processing graph.
//
// Named tracks play one source at a time and replace it with tuned
// crossfades; groups nest tracks and multiply their volumes; spatializers
// move a source in 3D space without zipper noise. Every parameter change
// goes through one automation engine that turns a target value and an
// adjustment (ramp shape, delay, duration) into scheduled automation.
//
// # Packages
//
//   - backend: the graph interfaces (nodes, params, timers); backend/sim is
//     a deterministic implementation driven by a manual clock
//   - automation: ramp shapes, presets and the Schedule engine
//   - tracking: a buffer source that can report its playback position
//   - track: tracks, groups and the swap state machine
//   - spatial: the double-buffered 3D spatializer
//   - cache: asynchronous asset loading through audio.Registry
//   - config: YAML settings
//   - mixer: the session entry point tying these together
//
// # Quick Start
//
//	ctx := sim.New(48000)
//	m, _ := mixer.New(ctx)
//	music, _ := m.AddTrack("music")
//
//	src, _ := m.NewSource()
//	_ = src.LoadPath(context.Background(), "theme.ogg")
//	_ = music.Swap(src, track.SwapOptions{Preset: automation.SwapCross})
//
//	ctx.Advance(1) // the crossfade is done
//
// # Inspecting Presets
//
// SwapEnvelope records the gain curves of a swap, which is handy when
// tuning presets:
//
//	env, _ := audmix.SwapEnvelope(presets.Swap(automation.SwapInOut), 1000)
//	wav.WriteWAV16(file, 1000, 2, env.Interleaved())
//
// # Formats
//
// Assets decode through formats.NewRegistry: WAV (go-audio/wav), MP3
// (go-mp3), Ogg Vorbis (oggvorbis) and AIFF (go-audio/aiff).
package audmix
