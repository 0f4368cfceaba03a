// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams through
// github.com/jfreymuth/oggvorbis. The decoder already produces float32
// samples, so reads go straight into the caller's buffer.
package vorbis
