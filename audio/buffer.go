// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Buffer is a fully decoded clip held in memory, one slice per channel.
// All channels have the same length.
type Buffer struct {
	SampleRate float64
	Data       [][]float32
}

// NewBuffer allocates a silent buffer.
func NewBuffer(channels, length int, sampleRate float64) *Buffer {
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, length)
	}
	return &Buffer{SampleRate: sampleRate, Data: data}
}

// NumberOfChannels returns the channel count.
func (b *Buffer) NumberOfChannels() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Length returns the length in frames.
func (b *Buffer) Length() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Length()) / b.SampleRate
}

// Channel returns the samples of channel c. The slice is shared, not copied.
func (b *Buffer) Channel(c int) []float32 {
	return b.Data[c]
}

// Frame copies frame i into dst (growing it when needed) and returns it.
// Out-of-range frames read as silence.
func (b *Buffer) Frame(i int, dst []float32) []float32 {
	n := b.NumberOfChannels()
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	inRange := i >= 0 && i < b.Length()
	for c := range n {
		if inRange {
			dst[c] = b.Data[c][i]
		} else {
			dst[c] = 0
		}
	}
	return dst
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	out := &Buffer{SampleRate: b.SampleRate, Data: make([][]float32, len(b.Data))}
	for c, ch := range b.Data {
		out.Data[c] = append([]float32(nil), ch...)
	}
	return out
}

// Source exposes the buffer as an interleaved stream, e.g. to feed a Resampler.
func (b *Buffer) Source() Source {
	return &bufferReader{buf: b}
}

type bufferReader struct {
	buf *Buffer
	pos int
}

func (r *bufferReader) SampleRate() int { return int(r.buf.SampleRate) }
func (r *bufferReader) Channels() int   { return r.buf.NumberOfChannels() }
func (r *bufferReader) BufSize() int    { return 4096 }
func (r *bufferReader) Close() error    { return nil }

func (r *bufferReader) ReadSamples(dst []float32) (int, error) {
	channels := r.buf.NumberOfChannels()
	if channels == 0 || r.pos >= r.buf.Length() {
		return 0, io.EOF
	}
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := min(len(dst)/channels, r.buf.Length()-r.pos)
	for f := range frames {
		for c := range channels {
			dst[f*channels+c] = r.buf.Data[c][r.pos+f]
		}
	}
	r.pos += frames

	if r.pos >= r.buf.Length() {
		return frames * channels, io.EOF
	}
	return frames * channels, nil
}

// ReadBuffer drains src into a Buffer and closes it.
func ReadBuffer(src Source) (*Buffer, error) {
	defer src.Close()

	channels := src.Channels()
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrChannelMismatch, channels)
	}
	if src.SampleRate() <= 0 {
		return nil, ErrInvalidSampleRate
	}

	chunk := src.BufSize()
	if chunk < channels {
		chunk = 4096
	}
	chunk -= chunk % channels
	tmp := make([]float32, chunk)

	out := &Buffer{SampleRate: float64(src.SampleRate()), Data: make([][]float32, channels)}
	for {
		n, err := src.ReadSamples(tmp)
		frames := n / channels
		for f := range frames {
			for c := range channels {
				out.Data[c] = append(out.Data[c], tmp[f*channels+c])
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}

	for c := range out.Data {
		if out.Data[c] == nil {
			out.Data[c] = []float32{}
		}
	}
	return out, nil
}
