// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/backend"
)

// PannerParams is the full state applied to a backend panner.
type PannerParams struct {
	Position    Vector
	Orientation Vector
	Cone        backend.Cone
}

// DefaultPannerParams faces +X with an omnidirectional cone.
func DefaultPannerParams() PannerParams {
	return PannerParams{
		Orientation: Vector{X: 1},
		Cone:        backend.Cone{InnerAngle: 360, OuterAngle: 360},
	}
}

// Spatializer positions a signal in 3D without discontinuities. It keeps
// two backend panners; while its output is connected, every change is
// written to the idle panner, which is then crossfaded in.
//
//	input ─┬─ panner[0] ─ slot[0] ─┬─ directional ─┬─ output
//	       ├─ panner[1] ─ slot[1] ─┘               │
//	       └─ lowpass ─ low ───────────────────────┘
type Spatializer struct {
	ctx backend.Context
	cfg Config

	input       backend.GainNode
	output      backend.GainNode
	panners     [2]backend.PannerNode
	slots       [2]backend.GainNode
	active      int
	directional backend.GainNode
	lowpass     backend.BiquadFilterNode
	low         backend.GainNode

	current PannerParams
	pending *PannerParams

	connected  bool
	lastSwap   float64
	retry      backend.Timer
	generation uint64

	fadeOut []float64
	fadeIn  []float64

	destroyed bool
}

// New builds a Spatializer. Invalid configurations fail immediately.
func New(ctx backend.Context, cfg Config) (*Spatializer, error) {
	if err := cfg.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "spatial.New",
			"error":    err.Error(),
		}).Error("Invalid spatializer configuration")
		return nil, err
	}

	s := &Spatializer{
		ctx:         ctx,
		cfg:         cfg,
		input:       ctx.NewGain(),
		output:      ctx.NewGain(),
		panners:     [2]backend.PannerNode{ctx.NewPanner(), ctx.NewPanner()},
		slots:       [2]backend.GainNode{ctx.NewGain(), ctx.NewGain()},
		directional: ctx.NewGain(),
		lowpass:     ctx.NewBiquadFilter(),
		low:         ctx.NewGain(),
		current:     DefaultPannerParams(),
		lastSwap:    math.Inf(-1),
	}

	if cfg.InterpolationRamp == automation.EqualPower {
		n := automation.CurvePoints(cfg.InterpolateTime)
		s.fadeOut = automation.EqualPowerCurve(n)
		s.fadeIn = automation.EqualPowerInCurve(n)
	}

	now := ctx.CurrentTime()
	s.slots[0].Gain().SetValueAtTime(1, now)
	s.slots[1].Gain().SetValueAtTime(0, now)
	s.lowpass.SetType(backend.LowPass)
	s.lowpass.Frequency().SetValueAtTime(cfg.CrossoverFrequency, now)

	s.input.ConnectToNode(s.panners[0], 0, 0)
	s.panners[0].ConnectToNode(s.slots[0], 0, 0)
	s.slots[0].ConnectToNode(s.directional, 0, 0)
	s.slots[1].ConnectToNode(s.directional, 0, 0)
	s.directional.ConnectToNode(s.output, 0, 0)
	s.input.ConnectToNode(s.lowpass, 0, 0)
	s.lowpass.ConnectToNode(s.low, 0, 0)
	s.low.ConnectToNode(s.output, 0, 0)

	s.applyParams(s.panners[0], s.current)
	s.applyDistance(0)
	return s, nil
}

// Config returns the configuration in use.
func (s *Spatializer) Config() Config { return s.cfg }

// Current is the state of the active panner.
func (s *Spatializer) Current() PannerParams { return s.current }

// Pending returns the target waiting for the next interpolation.
func (s *Spatializer) Pending() (PannerParams, bool) {
	if s.pending == nil {
		return PannerParams{}, false
	}
	return *s.pending, true
}

// Active is the index of the panner slot carrying the signal.
func (s *Spatializer) Active() int { return s.active }

// Panner returns the backend panner in slot i.
func (s *Spatializer) Panner(i int) backend.PannerNode { return s.panners[i] }

// SlotGain returns the gain stage paired with panner slot i.
func (s *Spatializer) SlotGain(i int) backend.GainNode { return s.slots[i] }

// Input is the node sources connect to.
func (s *Spatializer) Input() backend.Node { return s.input }

// Output is the node connected to the destination.
func (s *Spatializer) Output() backend.Node { return s.output }

// Connected reports whether the output is routed somewhere.
func (s *Spatializer) Connected() bool { return s.connected }

// UpdatePosition moves the source.
func (s *Spatializer) UpdatePosition(p Vector) error {
	return s.update(func(pp *PannerParams) { pp.Position = p })
}

// UpdateOrientation turns the source.
func (s *Spatializer) UpdateOrientation(o Vector) error {
	return s.update(func(pp *PannerParams) { pp.Orientation = o })
}

// UpdateBoth moves and turns the source in one interpolation.
func (s *Spatializer) UpdateBoth(p, o Vector) error {
	return s.update(func(pp *PannerParams) {
		pp.Position = p
		pp.Orientation = o
	})
}

// UpdateCone sets the directivity cone.
func (s *Spatializer) UpdateCone(c backend.Cone) error {
	return s.update(func(pp *PannerParams) { pp.Cone = c })
}

// SetListener moves the listener. Panner positions are relative to it.
func (s *Spatializer) SetListener(v Vector) error {
	if s.destroyed {
		return ErrDestroyed
	}
	s.cfg.Listener = v
	return s.update(func(*PannerParams) {})
}

func (s *Spatializer) update(change func(*PannerParams)) error {
	if s.destroyed {
		return ErrDestroyed
	}

	if !s.connected {
		change(&s.current)
		s.applyParams(s.panners[s.active], s.current)
		s.applyDistance(0)
		return nil
	}

	if s.pending == nil {
		target := s.current
		s.pending = &target
	}
	change(s.pending)
	s.scheduleInterpolation()
	return nil
}

// scheduleInterpolation swaps panners now when the last swap is older than
// InterpolateDelay+InterpolateTime, otherwise arms a single retry at the
// end of that window. Targets arriving meanwhile coalesce into pending.
func (s *Spatializer) scheduleInterpolation() {
	now := s.ctx.CurrentTime()
	window := s.cfg.InterpolateDelay + s.cfg.InterpolateTime

	if now-s.lastSwap >= window-1e-9 {
		s.interpolate()
		return
	}
	if s.retry != nil {
		return
	}

	wait := s.lastSwap + window - now
	logrus.WithFields(logrus.Fields{
		"function": "Spatializer.scheduleInterpolation",
		"wait":     wait,
	}).Debug("Interpolation in flight, retrying later")

	s.retry = s.ctx.AfterFunc(wait, func() {
		s.retry = nil
		if !s.destroyed && s.connected && s.pending != nil {
			s.interpolate()
		}
	})
}

func (s *Spatializer) interpolate() {
	if s.pending == nil {
		return
	}
	target := *s.pending
	s.pending = nil

	now := s.ctx.CurrentTime()
	s.lastSwap = now
	s.generation++
	gen := s.generation

	idle, next := s.active, 1-s.active
	s.applyParams(s.panners[next], target)
	s.input.ConnectToNode(s.panners[next], 0, 0)
	s.panners[next].ConnectToNode(s.slots[next], 0, 0)
	s.active = next
	s.current = target

	fadeIn := s.slots[next].Gain()
	fadeIn.CancelScheduledValues(now)
	fadeIn.SetValueAtTime(0, now)

	outRamp, inRamp := automation.ShapeRamp(s.cfg.InterpolationRamp), automation.ShapeRamp(s.cfg.InterpolationRamp)
	if s.fadeOut != nil {
		outRamp, inRamp = automation.Curve(s.fadeOut...), automation.Curve(s.fadeIn...)
	}
	dur := s.cfg.InterpolateTime
	s.schedule(s.slots[idle].Gain(), 0, automation.Adjustment{Ramp: outRamp, Duration: dur})
	s.schedule(fadeIn, 1, automation.Adjustment{Ramp: inRamp, Duration: dur})
	s.applyDistance(dur)

	logrus.WithFields(logrus.Fields{
		"function":   "Spatializer.interpolate",
		"active":     next,
		"generation": gen,
		"position":   target.Position,
	}).Debug("Panner slots swapped")

	s.ctx.AfterFunc(dur, func() {
		if s.destroyed || s.generation != gen {
			return
		}
		s.input.DisconnectNode(s.panners[idle])
		s.panners[idle].Disconnect()
	})
}

func (s *Spatializer) schedule(p backend.Param, target float64, adj automation.Adjustment) {
	if _, err := automation.Schedule(s.ctx, p, target, adj, true); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Spatializer.schedule",
			"error":    err.Error(),
		}).Warn("Gain automation failed")
	}
}

func (s *Spatializer) applyParams(p backend.PannerNode, pp PannerParams) {
	now := s.ctx.CurrentTime()
	rel := pp.Position.Sub(s.cfg.Listener)
	set := func(param backend.Param, v float64) {
		param.CancelScheduledValues(now)
		param.SetValueAtTime(v, now)
	}
	set(p.PositionX(), rel.X)
	set(p.PositionY(), rel.Y)
	set(p.PositionZ(), rel.Z)
	set(p.OrientationX(), pp.Orientation.X)
	set(p.OrientationY(), pp.Orientation.Y)
	set(p.OrientationZ(), pp.Orientation.Z)
	p.SetCone(pp.Cone)
}

// Distance is the listener-relative distance of the current position.
func (s *Spatializer) Distance() float64 {
	return s.current.Position.Sub(s.cfg.Listener).Length()
}

// applyDistance moves the directional and low path gains to the
// attenuation of the current position, split by LowMix on an equal-power
// law.
func (s *Spatializer) applyDistance(duration float64) {
	d := s.Distance()
	gain := s.cfg.DistanceGain(d)
	mix := s.cfg.LowMix(d)

	adj := automation.Adjustment{Ramp: automation.ShapeRamp(automation.Linear), Duration: duration}
	s.schedule(s.directional.Gain(), gain*math.Cos(mix*math.Pi/2), adj)
	s.schedule(s.low.Gain(), gain*math.Sin(mix*math.Pi/2), adj)
}

// PathGains returns the gain parameters of the directional and low paths.
func (s *Spatializer) PathGains() (directional, low backend.Param) {
	return s.directional.Gain(), s.low.Gain()
}

// ConnectSource feeds node into the spatializer.
func (s *Spatializer) ConnectSource(node backend.Node) error {
	if s.destroyed {
		return ErrDestroyed
	}
	node.ConnectToNode(s.input, 0, 0)
	return nil
}

// DisconnectSource stops feeding node into the spatializer.
func (s *Spatializer) DisconnectSource(node backend.Node) error {
	if s.destroyed {
		return ErrDestroyed
	}
	node.DisconnectNode(s.input)
	return nil
}

// Connect routes the output to dst and enables interpolated updates.
func (s *Spatializer) Connect(dst backend.Destination) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if err := backend.Connect(s.output, dst); err != nil {
		return err
	}
	s.connected = true
	return nil
}

// Disconnect detaches the output. A pending target is applied directly.
func (s *Spatializer) Disconnect() error {
	if s.destroyed {
		return ErrDestroyed
	}
	s.output.Disconnect()
	s.connected = false
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	if s.pending != nil {
		s.current = *s.pending
		s.pending = nil
		s.applyParams(s.panners[s.active], s.current)
		s.applyDistance(0)
	}
	return nil
}

// Destroy releases every backend node. It is safe to call more than once.
func (s *Spatializer) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.generation++
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	s.pending = nil

	nodes := []backend.Node{s.input, s.directional, s.lowpass, s.low, s.output}
	for i := range s.panners {
		nodes = append(nodes, s.panners[i], s.slots[i])
	}
	for _, n := range nodes {
		n.Disconnect()
	}
}
