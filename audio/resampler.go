// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audmix/utils"
)

// Resampler converts a stream to another sample rate with Catmull-Rom
// interpolation over a four-frame window. Channel count is preserved.
// A one-pole low-pass runs on the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  float64
	step     float64 // source frames consumed per output frame
	channels int

	// window[1] and window[2] bracket the output position
	window [4][]float32
	filled [4]bool

	frac float64

	srcBuf []float32
	eof    bool

	lowpass     bool
	alpha       float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     float64(dstRate),
		step:        step,
		channels:    channels,
		srcBuf:      make([]float32, max(channels, 1)),
		lowpass:     step > 1.0,
		alpha:       0.5,
		filterState: make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (r *Resampler) filter(frame []float32) {
	if !r.lowpass {
		return
	}
	for c := range r.channels {
		frame[c] = r.alpha*frame[c] + (1-r.alpha)*r.filterState[c]
		r.filterState[c] = frame[c]
	}
}

// prime fills the whole window before the first output frame.
func (r *Resampler) prime() error {
	for i := range 4 {
		n, err := r.src.ReadSamples(r.srcBuf[:r.channels])
		if n > 0 {
			copy(r.window[i], r.srcBuf[:n])
			r.filled[i] = true
			if i == 0 && r.lowpass {
				copy(r.filterState, r.srcBuf[:n])
			}
		}

		if err == io.EOF {
			r.eof = true
			if i == 0 && n == 0 {
				return io.EOF
			}
			last := i
			if n == 0 {
				last = i - 1
			}
			for j := last + 1; j < 4; j++ {
				copy(r.window[j], r.window[last])
				r.filled[j] = true
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	return nil
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	if r.eof {
		return io.EOF
	}

	copy(r.window[0], r.window[1])
	copy(r.window[1], r.window[2])
	copy(r.window[2], r.window[3])
	r.filled[0], r.filled[1], r.filled[2] = r.filled[1], r.filled[2], r.filled[3]

	n, err := r.src.ReadSamples(r.srcBuf[:r.channels])
	r.filled[3] = n > 0
	if n > 0 {
		copy(r.window[3], r.srcBuf[:n])
		r.filter(r.window[3])
	}

	if err == io.EOF {
		r.eof = true
		if !r.filled[3] {
			return io.EOF
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples produces interleaved output at the target rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels == 0 || len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.filled[1] {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	want := len(dst) / r.channels

	for written < want {
		for r.frac >= 1.0 {
			r.frac -= 1.0
			if err := r.advance(); err != nil {
				if err == io.EOF {
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		if !r.filled[1] || !r.filled[2] {
			return written * r.channels, io.EOF
		}

		x := float32(r.frac)
		for c := range r.channels {
			y0 := r.window[1][c]
			if r.filled[0] {
				y0 = r.window[0][c]
			}
			y3 := r.window[2][c]
			if r.filled[3] {
				y3 = r.window[3][c]
			}
			dst[written*r.channels+c] = utils.CubicInterpolate(y0, r.window[1][c], r.window[2][c], y3, x)
		}

		written++
		r.frac += r.step
	}

	return written * r.channels, nil
}

// Resample returns b converted to rate. A buffer already at rate is returned as is.
func Resample(b *Buffer, rate int) (*Buffer, error) {
	if rate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if int(b.SampleRate) == rate || b.Length() == 0 {
		return b, nil
	}
	return ReadBuffer(NewResampler(b.Source(), rate))
}
