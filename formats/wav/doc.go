// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes WAV files.
//
// Decoding goes through github.com/go-audio/wav, which walks the RIFF
// chunk list, so files carrying LIST or fact chunks decode as well as the
// canonical 44-byte layout. Integer PCM at 8, 16, 24 and 32 bits is
// accepted and normalised to float32 in [-1, 1]:
//
//	src, err := wav.Decoder{}.Decode(file)
//
// WriteWAV16 writes interleaved 16-bit PCM; the envelope tool uses it to
// export gain automation as a control signal:
//
//	err := wav.WriteWAV16(out, 48000, 2, samples)
package wav
