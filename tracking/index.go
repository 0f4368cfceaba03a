// SPDX-License-Identifier: EPL-2.0

package tracking

import (
	"github.com/viterin/vek/vek32"

	"github.com/ik5/audmix/audio"
)

// Augment returns a copy of buf with one extra channel holding the sample
// index centred on the middle of the buffer: i - floor(L/2) at frame i.
// Centring keeps the integers exact in float32 for twice as many frames.
func Augment(buf *audio.Buffer) *audio.Buffer {
	length := buf.Length()
	out := &audio.Buffer{
		SampleRate: buf.SampleRate,
		Data:       make([][]float32, buf.NumberOfChannels()+1),
	}
	for c := range buf.NumberOfChannels() {
		out.Data[c] = append([]float32(nil), buf.Data[c]...)
	}

	half := float32(length / 2)
	index := []float32{}
	if length > 0 {
		index = vek32.Range(-half, float32(length)-half)
	}
	out.Data[len(out.Data)-1] = index
	return out
}

// HalfLength is the centring offset of an augmented buffer.
func HalfLength(augmented *audio.Buffer) int {
	return augmented.Length() / 2
}
