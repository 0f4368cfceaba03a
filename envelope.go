// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"
	"math"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/backend/sim"
	"github.com/ik5/audmix/track"
	"github.com/ik5/audmix/tracking"
	"github.com/ik5/audmix/utils"
)

// Envelope holds the gains a swap applies to the outgoing and incoming
// source, sampled at Rate from the start of the swap to its end.
type Envelope struct {
	Rate float64
	Old  []float32
	New  []float32
}

// Duration is the length of the swap in seconds.
func (e Envelope) Duration() float64 {
	if len(e.Old) == 0 {
		return 0
	}
	return float64(len(e.Old)-1) / e.Rate
}

// Interleaved returns the two envelopes as one stereo stream of 16-bit
// samples, old on the left.
func (e Envelope) Interleaved() []int16 {
	frames := make([]float32, 0, 2*len(e.Old))
	for i := range e.Old {
		frames = append(frames, e.Old[i], e.New[i])
	}
	return utils.Float32sToInt16(nil, frames)
}

type gainTimeline interface {
	ValueAt(t float64) float64
}

// SwapEnvelope runs pair on a simulated session at rate and records the
// resulting gain curves.
//
// This creates the whole processing chain:
//  1. A track playing a constant source at full volume
//  2. A second constant source swapped in with pair
//  3. The automation timeline of both source gains, read at every sample
func SwapEnvelope(pair automation.SwapPair, rate float64) (Envelope, error) {
	if rate <= 0 {
		return Envelope{}, audio.ErrInvalidSampleRate
	}
	if err := pair.Validate(); err != nil {
		return Envelope{}, err
	}

	end := pair.End()
	frames := int(math.Ceil(end*rate-1e-9)) + 1

	ctx := sim.New(rate)
	tr := track.New(ctx, "envelope")
	defer tr.Destroy()

	constant := audio.NewBuffer(1, frames+1, rate)
	for i := range constant.Data[0] {
		constant.Data[0][i] = 1
	}
	sources := [2]*tracking.Source{tracking.New(ctx), tracking.New(ctx)}
	for _, s := range sources {
		if err := s.Load(constant); err != nil {
			return Envelope{}, fmt.Errorf("load envelope source: %w", err)
		}
	}

	// The outgoing source starts already faded in.
	if err := tr.Swap(sources[0], track.SwapOptions{Pair: &automation.SwapPair{}}); err != nil {
		return Envelope{}, err
	}
	ctx.Advance(0)
	start := ctx.CurrentTime()
	if err := tr.Swap(sources[1], track.SwapOptions{Pair: &pair}); err != nil {
		return Envelope{}, err
	}

	oldGain, ok1 := sources[0].Gain().(gainTimeline)
	newGain, ok2 := sources[1].Gain().(gainTimeline)
	if !ok1 || !ok2 {
		return Envelope{}, ErrNoTimeline
	}

	env := Envelope{Rate: rate, Old: make([]float32, frames), New: make([]float32, frames)}
	for i := range frames {
		t := start + float64(i)/rate
		env.Old[i] = float32(oldGain.ValueAt(t))
		env.New[i] = float32(newGain.ValueAt(t))
	}
	return env, nil
}
