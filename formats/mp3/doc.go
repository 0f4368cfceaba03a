// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III streams through
// github.com/hajimehoshi/go-mp3. Output is always stereo, at the stream's
// own sample rate; the asset cache resamples it to the session rate.
package mp3
