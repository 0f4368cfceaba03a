// SPDX-License-Identifier: EPL-2.0

// Package mixer is the entry point of audmix: a session-wide set of named
// tracks and groups ending in a master gain.
//
//	m, err := mixer.New(ctx, mixer.WithConfig(cfg))
//	music, _ := m.AddTrack("music")
//	src, _ := m.NewSource()
//	_ = src.LoadPath(context.Background(), "theme.ogg")
//	_ = music.Swap(src, track.SwapOptions{Preset: automation.SwapCross})
//
// Names are unique across tracks and groups.
package mixer
