// SPDX-License-Identifier: EPL-2.0

package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamTimeline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		schedule func(p *Param)
		at       float64
		want     float64
	}{
		{
			name:     "initial",
			schedule: func(*Param) {},
			at:       3,
			want:     1,
		},
		{
			name:     "set before",
			schedule: func(p *Param) { p.SetValueAtTime(0.25, 1) },
			at:       0.5,
			want:     1,
		},
		{
			name:     "set after",
			schedule: func(p *Param) { p.SetValueAtTime(0.25, 1) },
			at:       1,
			want:     0.25,
		},
		{
			name: "linear midpoint",
			schedule: func(p *Param) {
				p.SetValueAtTime(0, 1)
				p.LinearRampToValueAtTime(1, 2)
			},
			at:   1.5,
			want: 0.5,
		},
		{
			name: "linear end holds",
			schedule: func(p *Param) {
				p.SetValueAtTime(0, 1)
				p.LinearRampToValueAtTime(1, 2)
			},
			at:   5,
			want: 1,
		},
		{
			name: "exponential midpoint",
			schedule: func(p *Param) {
				p.SetValueAtTime(0.01, 0)
				p.ExponentialRampToValueAtTime(1, 1)
			},
			at:   0.5,
			want: 0.1,
		},
		{
			name: "exponential to zero holds",
			schedule: func(p *Param) {
				p.SetValueAtTime(0.5, 0)
				p.ExponentialRampToValueAtTime(0, 1)
			},
			at:   0.99,
			want: 0.5,
		},
		{
			name: "exponential to zero jumps at end",
			schedule: func(p *Param) {
				p.SetValueAtTime(0.5, 0)
				p.ExponentialRampToValueAtTime(0, 1)
			},
			at:   1,
			want: 0,
		},
		{
			name:     "set target",
			schedule: func(p *Param) { p.SetTargetAtTime(0, 0, 0.5) },
			at:       0.5,
			want:     math.Exp(-1),
		},
		{
			name: "curve interpolates",
			schedule: func(p *Param) {
				p.SetValueCurveAtTime([]float32{0, 1, 0}, 0, 2)
			},
			at:   0.5,
			want: 0.5,
		},
		{
			name: "curve holds last",
			schedule: func(p *Param) {
				p.SetValueCurveAtTime([]float32{0, 0.25}, 0, 1)
			},
			at:   4,
			want: 0.25,
		},
		{
			name: "ramp after curve starts at curve end",
			schedule: func(p *Param) {
				p.SetValueCurveAtTime([]float32{0, 1}, 0, 1)
				p.LinearRampToValueAtTime(0, 3)
			},
			at:   2,
			want: 0.5,
		},
		{
			name:     "ramp with no prior event starts at schedule time",
			schedule: func(p *Param) { p.LinearRampToValueAtTime(0, 2) },
			at:       1,
			want:     0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newParam(New(48000), 1)
			tt.schedule(p)
			assert.InDelta(t, tt.want, p.ValueAt(tt.at), 1e-6)
		})
	}
}

func TestParamValueFollowsClock(t *testing.T) {
	t.Parallel()

	c := New(48000)
	p := newParam(c, 0)
	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(1, 1)

	c.Advance(0.25)
	assert.InDelta(t, 0.25, p.Value(), 1e-9)
}

func TestCancelScheduledValues(t *testing.T) {
	t.Parallel()

	p := newParam(New(48000), 1)
	p.SetValueAtTime(0.5, 1)
	p.SetValueAtTime(0.2, 2)
	p.CancelScheduledValues(2)

	assert.Len(t, p.Events(), 1)
	assert.InDelta(t, 0.5, p.ValueAt(3), 1e-9)
}

func TestCancelAndHoldShortensRamp(t *testing.T) {
	t.Parallel()

	p := newParam(New(48000), 0)
	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(1, 2)
	p.SetValueAtTime(0.1, 3)

	p.CancelAndHoldAtTime(1)

	assert.InDelta(t, 0.25, p.ValueAt(0.5), 1e-9, "ramp shape preserved before hold")
	assert.InDelta(t, 0.5, p.ValueAt(1), 1e-9)
	assert.InDelta(t, 0.5, p.ValueAt(10), 1e-9)
	for _, e := range p.Events() {
		assert.LessOrEqual(t, e.Time, 1.0)
	}
}

func TestCancelAndHoldStopsTarget(t *testing.T) {
	t.Parallel()

	p := newParam(New(48000), 1)
	p.SetTargetAtTime(0, 0, 1)
	p.CancelAndHoldAtTime(1)

	held := math.Exp(-1)
	assert.InDelta(t, held, p.ValueAt(1), 1e-9)
	assert.InDelta(t, held, p.ValueAt(5), 1e-9)
	assert.Greater(t, p.ValueAt(0.5), held)
}

func TestCancelAndHoldTruncatesCurve(t *testing.T) {
	t.Parallel()

	p := newParam(New(48000), 0)
	p.SetValueCurveAtTime([]float32{0, 1}, 0, 2)
	p.CancelAndHoldAtTime(1)

	assert.InDelta(t, 0.5, p.ValueAt(1.5), 1e-6)
	assert.InDelta(t, 0.25, p.ValueAt(0.5), 1e-6)
}

func TestShortCurveIgnored(t *testing.T) {
	t.Parallel()

	p := newParam(New(48000), 0.3)
	p.SetValueCurveAtTime([]float32{1}, 0, 1)
	assert.Empty(t, p.Events())
}

func TestEventKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "linear", LinearRamp.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}
