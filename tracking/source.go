// SPDX-License-Identifier: EPL-2.0

package tracking

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/backend"
)

// analyserWindow is the smallest window backends commonly accept.
const analyserWindow = 32

// Source plays a buffer and reports its play-head. Every loaded buffer is
// augmented with an index channel that is routed to an analyser; reading
// the analyser recovers the sample being played.
//
// Backend buffer sources are single use, so each restart allocates a new
// one sharing only the augmented buffer. Loop points, playback rate and
// callbacks set directly on the backend source are not carried over.
type Source struct {
	ctx     backend.Context
	opts    options
	window  []float32
	onEnded func()

	original   *audio.Buffer
	buffer     *audio.Buffer
	halfLength int
	channels   int
	wired      int

	source   backend.BufferSourceNode
	splitter backend.Node
	merger   backend.Node
	analyser backend.AnalyserNode
	panner   backend.StereoPannerNode
	gain     backend.GainNode

	started   bool
	playing   bool
	startAt   float64
	retired   map[backend.BufferSourceNode]backend.Timer
	destroyed bool
}

// New creates an empty Source. Its output gain stage is not connected.
func New(ctx backend.Context, opts ...Option) *Source {
	o := options{volume: 1, presets: automation.DefaultPresets()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Source{
		ctx:      ctx,
		opts:     o,
		window:   make([]float32, analyserWindow),
		wired:    -1,
		analyser: ctx.NewAnalyser(),
		panner:   ctx.NewStereoPanner(),
		gain:     ctx.NewGain(),
		retired:  make(map[backend.BufferSourceNode]backend.Timer),
	}
	s.analyser.SetWindowSize(analyserWindow)
	s.gain.Gain().SetValueAtTime(o.volume, ctx.CurrentTime())
	s.panner.ConnectToNode(s.gain, 0, 0)
	s.source = s.newBackendSource()
	return s
}

func (s *Source) newBackendSource() backend.BufferSourceNode {
	src := s.ctx.NewBufferSource()
	src.SetOnEnded(func() { s.handleEnded(src) })
	return src
}

func (s *Source) handleEnded(src backend.BufferSourceNode) {
	if s.destroyed || src != s.source {
		return
	}
	s.playing = false
	logrus.WithFields(logrus.Fields{
		"function": "Source.handleEnded",
		"time":     s.ctx.CurrentTime(),
	}).Debug("Source ended")
	if s.onEnded != nil {
		s.onEnded()
	}
}

// Load replaces the buffer. The previous backend source is released when
// it has already been started.
func (s *Source) Load(buf *audio.Buffer) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if buf == nil {
		return ErrNoBuffer
	}

	s.original = buf
	s.buffer = Augment(buf)
	s.halfLength = HalfLength(s.buffer)
	s.channels = buf.NumberOfChannels()

	if s.started {
		old := s.source
		s.source = s.newBackendSource()
		s.retire(old, s.ctx.CurrentTime())
		s.started = false
		s.playing = false
	}
	s.source.SetBuffer(s.buffer)
	s.computeConnections()

	logrus.WithFields(logrus.Fields{
		"function":    "Source.Load",
		"channels":    s.channels,
		"length":      buf.Length(),
		"half_length": s.halfLength,
	}).Debug("Buffer loaded")
	return nil
}

// LoadPath loads a buffer through the asset cache, waiting for an
// asynchronous load when the path is not cached yet. Callers that must not
// block start the load with the cache (cache.LoadAudio), wait on its Done
// channel elsewhere and then call TryLoadPath.
func (s *Source) LoadPath(ctx context.Context, path string) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if s.opts.cache == nil {
		return ErrNoCache
	}

	buf := s.opts.cache.GetAudio(path)
	if buf == nil {
		var err error
		buf, err = s.opts.cache.Fetch(ctx, path)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Source.LoadPath",
				"path":     path,
				"error":    err.Error(),
			}).Error("Failed to fetch audio")
			return fmt.Errorf("load %q: %w", path, err)
		}
	}
	if buf == nil {
		return fmt.Errorf("load %q: %w", path, ErrNotFound)
	}
	return s.Load(buf)
}

// TryLoadPath loads path when the asset cache already holds it and reports
// whether it did. It never waits on a load in flight.
func (s *Source) TryLoadPath(path string) (bool, error) {
	if s.destroyed {
		return false, ErrDestroyed
	}
	if s.opts.cache == nil {
		return false, ErrNoCache
	}
	buf := s.opts.cache.GetAudio(path)
	if buf == nil {
		logrus.WithFields(logrus.Fields{
			"function": "Source.TryLoadPath",
			"path":     path,
		}).Debug("Audio not cached yet")
		return false, nil
	}
	return true, s.Load(buf)
}

// computeConnections wires the current backend source into the graph,
// rebuilding the splitter and merger when the channel count changed.
func (s *Source) computeConnections() {
	s.source.Disconnect()

	if s.wired != s.channels {
		if s.splitter != nil {
			s.splitter.Disconnect()
			s.splitter = nil
		}
		if s.merger != nil {
			s.merger.Disconnect()
			s.merger = nil
		}
		s.wired = s.channels

		if s.channels > 0 {
			s.splitter = s.ctx.NewChannelSplitter(s.channels + 1)
			s.splitter.ConnectToNode(s.analyser, s.channels, 0)

			if s.channels == 1 {
				s.splitter.ConnectToNode(s.panner, 0, 0)
			} else {
				s.merger = s.ctx.NewChannelMerger(s.channels)
				for c := range s.channels {
					s.splitter.ConnectToNode(s.merger, c, c)
				}
				s.merger.ConnectToNode(s.panner, 0, 0)
			}
		}
	}

	if s.splitter != nil {
		s.source.ConnectToNode(s.splitter, 0, 0)
	}
}

// Start plays the buffer at when (0 or past times mean now), from offset
// seconds, for duration seconds (0 plays to the end).
func (s *Source) Start(when, offset, duration float64) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if s.buffer == nil {
		return ErrNoBuffer
	}

	now := s.ctx.CurrentTime()
	when = max(when, now)

	if s.started {
		old := s.source
		s.source = s.newBackendSource()
		s.source.SetBuffer(s.buffer)
		s.computeConnections()
		s.retire(old, when)
	}

	if err := s.source.Start(when, offset, duration); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Source.Start",
			"error":    err.Error(),
		}).Error("Backend source refused to start")
		return fmt.Errorf("start: %w", err)
	}
	s.started = true
	s.playing = true
	s.startAt = when

	logrus.WithFields(logrus.Fields{
		"function": "Source.Start",
		"when":     when,
		"offset":   offset,
		"duration": duration,
	}).Debug("Source started")
	return nil
}

// retire stops old at when and releases it once that time has passed.
func (s *Source) retire(old backend.BufferSourceNode, when float64) {
	if err := old.Stop(when); err != nil {
		// never started: nothing is playing
		when = s.ctx.CurrentTime()
	}
	s.retired[old] = s.ctx.AfterFunc(when-s.ctx.CurrentTime(), func() {
		delete(s.retired, old)
		release(old)
	})
}

func release(src backend.BufferSourceNode) {
	src.SetOnEnded(nil)
	src.Disconnect()
	src.SetBuffer(nil)
}

// Stop ends playback at when (0 or past times mean now). Stopping a
// Source that never started does nothing.
func (s *Source) Stop(when float64) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if !s.started {
		return nil
	}
	when = max(when, s.ctx.CurrentTime())
	if err := s.source.Stop(when); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// IsPlaying reports whether the buffer is audible now: started, past its
// start time and not yet stopped or ended.
func (s *Source) IsPlaying() bool {
	return !s.destroyed && s.playing && s.ctx.CurrentTime() >= s.startAt
}

// PositionSample returns the frame being played, or -1 when not playing.
func (s *Source) PositionSample() (int, error) {
	if s.destroyed {
		return -1, ErrDestroyed
	}
	if s.buffer == nil || !s.IsPlaying() {
		return -1, nil
	}
	s.analyser.FloatTimeDomainData(s.window)
	index := s.window[len(s.window)-1]
	return int(math.Round(float64(index))) + s.halfLength, nil
}

// Position is PositionSample in seconds, or -1 when not playing.
func (s *Source) Position() (float64, error) {
	sample, err := s.PositionSample()
	if err != nil || sample < 0 {
		return -1, err
	}
	return float64(sample) / s.buffer.SampleRate, nil
}

// Clone returns an independent Source with its own graph and its own
// augmented copy of the loaded buffer.
func (s *Source) Clone() (*Source, error) {
	if s.destroyed {
		return nil, ErrDestroyed
	}
	opts := s.opts
	opts.volume = s.gain.Gain().Value()
	c := New(s.ctx, func(o *options) { *o = opts })
	c.panner.Pan().SetValueAtTime(s.panner.Pan().Value(), s.ctx.CurrentTime())
	c.onEnded = s.onEnded
	if s.original != nil {
		if err := c.Load(s.original.Clone()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SetVolume moves the output gain to v, by default with the
// automationNatural preset.
func (s *Source) SetVolume(v float64, opts ...automation.Option) (automation.Outcome, error) {
	if s.destroyed {
		return automation.Outcome{}, ErrDestroyed
	}
	adj := automation.Resolve(s.opts.presets.AutomationNatural, opts...)
	return automation.Schedule(s.ctx, s.gain.Gain(), v, adj, false)
}

// SetPan moves the stereo position to v in [-1, 1].
func (s *Source) SetPan(v float64, opts ...automation.Option) (automation.Outcome, error) {
	if s.destroyed {
		return automation.Outcome{}, ErrDestroyed
	}
	v = max(-1, min(1, v))
	adj := automation.Resolve(s.opts.presets.AutomationNatural, opts...)
	return automation.Schedule(s.ctx, s.panner.Pan(), v, adj, false)
}

// Gain is the output gain parameter, nil once destroyed.
func (s *Source) Gain() backend.Param {
	if s.destroyed {
		return nil
	}
	return s.gain.Gain()
}

// Output is the node downstream stages connect from.
func (s *Source) Output() backend.Node {
	if s.destroyed {
		return nil
	}
	return s.gain
}

// Node is the backend source currently in use. It changes on every
// restart.
func (s *Source) Node() backend.BufferSourceNode {
	if s.destroyed {
		return nil
	}
	return s.source
}

// Buffer is the augmented buffer, nil when nothing is loaded.
func (s *Source) Buffer() *audio.Buffer { return s.buffer }

// Connect routes the output gain stage to dst.
func (s *Source) Connect(dst backend.Destination) error {
	if s.destroyed {
		return ErrDestroyed
	}
	return backend.Connect(s.gain, dst)
}

// Disconnect detaches the output gain stage from everything.
func (s *Source) Disconnect() error {
	if s.destroyed {
		return ErrDestroyed
	}
	s.gain.Disconnect()
	return nil
}

// OnEnded registers f to run whenever playback ends or is stopped. It
// survives restarts.
func (s *Source) OnEnded(f func()) error {
	if s.destroyed {
		return ErrDestroyed
	}
	s.onEnded = f
	return nil
}

// Destroyed reports whether Destroy was called.
func (s *Source) Destroyed() bool { return s.destroyed }

// Destroy releases every backend node. It is safe to call more than once.
func (s *Source) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	if s.started {
		_ = s.source.Stop(s.ctx.CurrentTime())
	}
	release(s.source)
	for old, tm := range s.retired {
		tm.Stop()
		release(old)
	}
	clear(s.retired)

	for _, n := range []backend.Node{s.splitter, s.merger, s.analyser, s.panner, s.gain} {
		if n != nil {
			n.Disconnect()
		}
	}

	s.original, s.buffer = nil, nil
	s.splitter, s.merger = nil, nil
	s.onEnded = nil
	s.playing = false

	logrus.WithFields(logrus.Fields{
		"function": "Source.Destroy",
	}).Debug("Source destroyed")
}
