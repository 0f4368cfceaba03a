// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer PCM decoders (wav, aiff) to audio.Source.
package pcm

import (
	"io"

	goaudio "github.com/go-audio/audio"
)

// Reader is the part of the go-audio wav and aiff decoders we rely on.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source converts integer PCM from a Reader into float32 samples in [-1, 1].
type Source struct {
	dec        Reader
	sampleRate int
	channels   int
	offset     int     // added before scaling; -128 for unsigned 8-bit data
	scale      float32 // 1 / full scale
	intBuf     *goaudio.IntBuffer
}

// NewSource wraps dec. unsigned8 marks 8-bit data stored as 0..255 (WAV).
func NewSource(dec Reader, bitDepth int, unsigned8 bool) *Source {
	format := dec.Format()
	s := &Source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		scale:      1 / FullScale(bitDepth),
	}
	if bitDepth == 8 && unsigned8 {
		s.offset = -128
	}
	return s
}

// FullScale returns the magnitude of the most negative sample at bitDepth.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Close() error    { return nil }

func (s *Source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v+s.offset) * s.scale
	}

	// go-audio signals the end of data with a short read and no error
	if n < len(dst) && err == nil {
		return n, io.EOF
	}
	return n, err
}
