// SPDX-License-Identifier: EPL-2.0

// Package audio holds decoded audio and the stream processors used while
// loading assets.
//
// # Buffers
//
// A Buffer is planar float32 audio at a sample rate, one slice per
// channel. It is what sources play and what the asset cache stores:
//
//	buf := audio.NewBuffer(2, 48000, 48000) // one second of stereo silence
//	fmt.Println(buf.Duration())             // 1
//
// # Streams
//
// Decoders produce a Source, a stream of interleaved samples in [-1, 1].
// Streams chain:
//
//	src, _ := registry.ForPath("theme.ogg")
//	stream, _ := src.Decode(file)
//	mono := audio.NewMonoMixer(stream)
//	resampled := audio.NewResampler(mono, 48000)
//	buf, _ := audio.ReadBuffer(resampled)
//
// The Resampler interpolates with Catmull-Rom splines and low-passes the
// input when downsampling. The MonoMixer averages every frame.
//
// # Registry
//
// A Registry maps format keys to decoders. Keys are case-insensitive and
// may be given as file extensions, so ForPath("a.WAV") finds "wav".
package audio
