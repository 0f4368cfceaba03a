// SPDX-License-Identifier: EPL-2.0

package sim

import (
	"math"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend"
)

// frameEpsilon keeps frame indices stable against float drift.
const frameEpsilon = 1e-6

// BufferSource plays an audio.Buffer. It can be started once.
type BufferSource struct {
	*Node
	buffer    *audio.Buffer
	rate      *Param
	loop      bool
	loopStart float64
	loopEnd   float64
	onEnded   func()

	started  bool
	ended    bool
	startAt  float64
	offset   float64
	endAt    float64
	playRate float64
	endTimer backend.Timer
}

func (c *Context) NewBufferSource() backend.BufferSourceNode {
	s := &BufferSource{rate: newParam(c, 1), endAt: math.Inf(1)}
	s.Node = c.newNode("buffersource", 0, 1, func(p *pass, _ [][]float32) [][]float32 {
		return [][]float32{s.frame(p.t)}
	})
	return s
}

func (s *BufferSource) SetBuffer(b *audio.Buffer)     { s.buffer = b }
func (s *BufferSource) Buffer() *audio.Buffer         { return s.buffer }
func (s *BufferSource) PlaybackRate() backend.Param   { return s.rate }
func (s *BufferSource) SetOnEnded(f func())           { s.onEnded = f }
func (s *BufferSource) Loop() (bool, float64, float64) { return s.loop, s.loopStart, s.loopEnd }

func (s *BufferSource) SetLoop(loop bool, start, end float64) {
	s.loop, s.loopStart, s.loopEnd = loop, start, end
}

// Started reports whether Start succeeded.
func (s *BufferSource) Started() bool { return s.started }

// Ended reports whether the ended callback has fired.
func (s *BufferSource) Ended() bool { return s.ended }

// StartTime is the clock time playback began or will begin.
func (s *BufferSource) StartTime() float64 { return s.startAt }

// PlayingAt reports whether the source emits buffer content at t.
func (s *BufferSource) PlayingAt(t float64) bool {
	return s.started && t+timeEpsilon >= s.startAt && t < s.endAt-timeEpsilon
}

func (s *BufferSource) Start(when, offset, duration float64) error {
	if s.started {
		return backend.ErrSourceStarted
	}
	now := s.ctx.now
	s.started = true
	s.startAt = max(when, now)
	s.offset = max(offset, 0)
	s.playRate = s.rate.Value()
	if s.playRate <= 0 {
		s.playRate = 1
	}

	switch {
	case s.loop && duration > 0:
		s.endAt = s.startAt + duration
	case s.loop:
		s.endAt = math.Inf(1)
	default:
		play := s.buffer.Duration() - s.offset
		if duration > 0 && duration < play {
			play = duration
		}
		s.endAt = s.startAt + max(play, 0)/s.playRate
	}
	s.scheduleEnd()
	return nil
}

func (s *BufferSource) Stop(when float64) error {
	if !s.started {
		return backend.ErrSourceNotStarted
	}
	if s.ended {
		return nil
	}
	when = max(when, s.ctx.now)
	if when < s.endAt {
		s.endAt = when
		s.scheduleEnd()
	}
	return nil
}

func (s *BufferSource) scheduleEnd() {
	if s.endTimer != nil {
		s.endTimer.Stop()
		s.endTimer = nil
	}
	if math.IsInf(s.endAt, 1) {
		return
	}
	s.endTimer = s.ctx.AfterFunc(s.endAt-s.ctx.now, s.finish)
}

func (s *BufferSource) finish() {
	if s.ended {
		return
	}
	s.ended = true
	s.endTimer = nil
	if s.onEnded != nil {
		s.onEnded()
	}
}

func (s *BufferSource) frame(t float64) []float32 {
	channels := max(s.buffer.NumberOfChannels(), 1)
	if s.buffer == nil || !s.PlayingAt(t) {
		return make([]float32, channels)
	}

	pos := s.offset + (t-s.startAt)*s.playRate
	if s.loop {
		dur := s.buffer.Duration()
		start, end := s.loopStart, s.loopEnd
		if end <= 0 || end > dur {
			end = dur
		}
		if end <= start {
			start, end = 0, dur
		}
		if pos >= end && end > start {
			pos = start + math.Mod(pos-start, end-start)
		}
	}
	idx := int(math.Floor(pos*s.buffer.SampleRate + frameEpsilon))
	return s.buffer.Frame(idx, nil)
}
