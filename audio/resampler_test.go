// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
	"testing"

	"github.com/ik5/audmix/internal/audiotest"
)

func drain(t *testing.T, src Source, chunk int) []float32 {
	t.Helper()

	buf := make([]float32, chunk)
	var out []float32
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(44100, 2, 1000), 8000)

	if r.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", r.SampleRate())
	}
	if r.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", r.Channels())
	}
}

func TestResampler_Rates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		from, to  int
		frames    int
		want      int
		tolerance int
	}{
		{"same rate", 8000, 8000, 800, 800, 4},
		{"downsample", 44100, 8000, 44100, 8000, 100},
		{"upsample", 8000, 44100, 8000, 44100, 500},
		{"session rate", 22050, 48000, 22050, 48000, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tt.from, 1, tt.frames, 440)
			got := drain(t, NewResampler(src, tt.to), 1024)

			if len(got) < tt.want-tt.tolerance || len(got) > tt.want+tt.tolerance {
				t.Errorf("resampled %d samples, want ≈%d (±%d)", len(got), tt.want, tt.tolerance)
			}
			for i, s := range got {
				if s < -1.5 || s > 1.5 {
					t.Fatalf("got[%d] = %v, outside [-1.5, 1.5]", i, s)
				}
			}
		})
	}
}

func TestResampler_ConstantPreserved(t *testing.T) {
	t.Parallel()

	got := drain(t, NewResampler(audiotest.NewConstantSource(8000, 2, 400, 0.5), 16000), 256)
	if len(got) == 0 {
		t.Fatal("no samples produced")
	}
	for i, s := range got {
		if math.Abs(float64(s-0.5)) > 0.01 {
			t.Fatalf("got[%d] = %v, want ≈0.5", i, s)
		}
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 2, 100), 8000)
	if _, err := r.ReadSamples(make([]float32, 3)); err != ErrInvalidDstSize {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_VeryShortSource(t *testing.T) {
	t.Parallel()

	got := drain(t, NewResampler(audiotest.NewConstantSource(8000, 1, 2, 0.25), 8000), 16)
	if len(got) == 0 {
		t.Fatal("expected at least one sample from a two-frame source")
	}
}

func TestResample_Buffer(t *testing.T) {
	t.Parallel()

	b := NewBuffer(2, 1000, 8000)
	for i := range 1000 {
		b.Data[0][i] = 0.25
		b.Data[1][i] = -0.25
	}

	out, err := Resample(b, 16000)
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}
	if out.SampleRate != 16000 {
		t.Errorf("SampleRate = %v, want 16000", out.SampleRate)
	}
	if out.NumberOfChannels() != 2 {
		t.Errorf("NumberOfChannels() = %d, want 2", out.NumberOfChannels())
	}
	if d := out.Length() - 2000; d < -10 || d > 10 {
		t.Errorf("Length() = %d, want ≈2000", out.Length())
	}
	if math.Abs(float64(out.Data[1][500]+0.25)) > 0.01 {
		t.Errorf("right channel = %v, want ≈-0.25", out.Data[1][500])
	}

	same, err := Resample(b, 8000)
	if err != nil || same != b {
		t.Errorf("Resample() at same rate should return the input, got %p err %v", same, err)
	}

	if _, err := Resample(b, 0); err != ErrInvalidSampleRate {
		t.Errorf("Resample(0) error = %v, want ErrInvalidSampleRate", err)
	}
}

func BenchmarkResampler_Downsample(b *testing.B) {
	buf := make([]float32, 4096)
	for b.Loop() {
		r := NewResampler(audiotest.NewSineSource(48000, 2, 48000, 440), 44100)
		for {
			if _, err := r.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
