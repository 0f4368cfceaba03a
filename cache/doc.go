// SPDX-License-Identifier: EPL-2.0

// Package cache loads audio assets from an fs.FS into decoded buffers.
//
// Files are decoded by extension through an audio.Registry, optionally
// down-mixed to mono and resampled to the session rate. Loads run in the
// background; concurrent requests for one path share a single load:
//
//	c := cache.New(os.DirFS("assets"), cache.WithSampleRate(48000))
//	p := c.LoadAudio(ctx, "music/theme.ogg")
//	buf, err := p.Wait(ctx)
//
// Buffers stay cached until UnloadAudio.
package cache
