// SPDX-License-Identifier: EPL-2.0

package sim

import (
	"math"
	"sort"

	"github.com/ik5/audmix/backend"
)

// EventKind identifies an automation event on a Param timeline.
type EventKind int

const (
	SetValue EventKind = iota
	LinearRamp
	ExponentialRamp
	SetTarget
	ValueCurve
)

func (k EventKind) String() string {
	switch k {
	case SetValue:
		return "set"
	case LinearRamp:
		return "linear"
	case ExponentialRamp:
		return "exponential"
	case SetTarget:
		return "target"
	case ValueCurve:
		return "curve"
	default:
		return "unknown"
	}
}

// Event is a snapshot of one scheduled automation event.
type Event struct {
	Kind         EventKind
	Time         float64
	Value        float64
	TimeConstant float64
	Curve        []float32
	Duration     float64

	// from is the clock time the event was scheduled at; a ramp with no
	// preceding event starts there.
	from float64
}

// Param is an automatable value with Web Audio timeline semantics.
type Param struct {
	ctx     *Context
	initial float64
	events  []Event
	ins     []edge
}

var _ backend.Param = (*Param)(nil)

func newParam(ctx *Context, initial float64) *Param {
	return &Param{ctx: ctx, initial: initial}
}

// Value is the automation value at the current clock time.
func (p *Param) Value() float64 { return p.ValueAt(p.ctx.now) }

// Events returns a copy of the scheduled timeline.
func (p *Param) Events() []Event {
	return append([]Event(nil), p.events...)
}

// ValueAt evaluates the automation timeline at t. Signals connected to the
// parameter are not included.
func (p *Param) ValueAt(t float64) float64 {
	startT, startV := math.Inf(-1), p.initial
	var tail *Event // set-target or curve governing after startT

	for i := range p.events {
		e := &p.events[i]
		switch e.Kind {
		case LinearRamp, ExponentialRamp:
			t0, v0 := rampStart(tail, startT, startV, e.from)
			if t < e.Time {
				if t < t0 {
					return tailValue(tail, startT, startV, t)
				}
				return rampValue(e.Kind, t0, v0, e.Time, e.Value, t)
			}
			startT, startV, tail = e.Time, e.Value, nil
		default:
			if t < e.Time {
				return tailValue(tail, startT, startV, t)
			}
			switch e.Kind {
			case SetValue:
				startT, startV, tail = e.Time, e.Value, nil
			case SetTarget:
				startV = tailValue(tail, startT, startV, e.Time)
				startT, tail = e.Time, e
			case ValueCurve:
				startT, startV, tail = e.Time, float64(e.Curve[0]), e
			}
		}
	}
	return tailValue(tail, startT, startV, t)
}

// rampStart is where a ramp following the given state begins. A ramp after
// a set-target starts from the set-target's own time and starting value.
func rampStart(tail *Event, startT, startV, from float64) (float64, float64) {
	if tail != nil && tail.Kind == ValueCurve {
		return tail.Time + tail.Duration, float64(tail.Curve[len(tail.Curve)-1])
	}
	if math.IsInf(startT, -1) {
		return from, startV
	}
	return startT, startV
}

func tailValue(tail *Event, startT, startV, t float64) float64 {
	if tail == nil {
		return startV
	}
	switch tail.Kind {
	case SetTarget:
		if tail.TimeConstant <= 0 {
			return tail.Value
		}
		return tail.Value + (startV-tail.Value)*math.Exp(-(t-startT)/tail.TimeConstant)
	case ValueCurve:
		return curveValue(tail.Curve, tail.Time, tail.Duration, t)
	}
	return startV
}

func rampValue(kind EventKind, t0, v0, t1, v1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	x := (t - t0) / (t1 - t0)
	if kind == ExponentialRamp {
		if v0 == 0 || v1 == 0 || (v0 < 0) != (v1 < 0) {
			// undefined across zero: hold, then jump at the end time
			return v0
		}
		return v0 * math.Pow(v1/v0, x)
	}
	return v0 + (v1-v0)*x
}

func curveValue(curve []float32, start, duration, t float64) float64 {
	last := len(curve) - 1
	if duration <= 0 || t >= start+duration || last == 0 {
		return float64(curve[last])
	}
	pos := (t - start) / duration * float64(last)
	k := int(math.Floor(pos))
	if k >= last {
		return float64(curve[last])
	}
	frac := pos - float64(k)
	return float64(curve[k]) + (float64(curve[k+1])-float64(curve[k]))*frac
}

func (p *Param) insert(e Event) {
	e.from = p.ctx.now
	i := sort.Search(len(p.events), func(i int) bool {
		return p.events[i].Time > e.Time
	})
	p.events = append(p.events, Event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) SetValueAtTime(value, t float64) {
	p.insert(Event{Kind: SetValue, Time: t, Value: value})
}

func (p *Param) LinearRampToValueAtTime(value, t float64) {
	p.insert(Event{Kind: LinearRamp, Time: t, Value: value})
}

func (p *Param) ExponentialRampToValueAtTime(value, t float64) {
	p.insert(Event{Kind: ExponentialRamp, Time: t, Value: value})
}

func (p *Param) SetTargetAtTime(target, t, timeConstant float64) {
	p.insert(Event{Kind: SetTarget, Time: t, Value: target, TimeConstant: timeConstant})
}

// SetValueCurveAtTime copies curve. Curves shorter than two points are
// ignored, as in Web Audio.
func (p *Param) SetValueCurveAtTime(curve []float32, t, duration float64) {
	if len(curve) < 2 {
		return
	}
	p.insert(Event{
		Kind:     ValueCurve,
		Time:     t,
		Curve:    append([]float32(nil), curve...),
		Duration: duration,
	})
}

// CancelScheduledValues drops every event at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	keep := p.events[:0]
	for _, e := range p.events {
		if e.Time < t {
			keep = append(keep, e)
		}
	}
	p.events = keep
}

// CancelAndHoldAtTime drops events after t and holds the value the timeline
// had at t. A ramp in progress at t is shortened to end there.
func (p *Param) CancelAndHoldAtTime(t float64) {
	v := p.ValueAt(t)

	var cut *Event
	keep := make([]Event, 0, len(p.events))
	for i := range p.events {
		if p.events[i].Time <= t {
			keep = append(keep, p.events[i])
			continue
		}
		if cut == nil {
			cut = &p.events[i]
		}
	}

	if cut != nil && (cut.Kind == LinearRamp || cut.Kind == ExponentialRamp) {
		held := Event{Kind: cut.Kind, Time: t, Value: v, from: cut.from}
		p.events = append(keep, held)
		return
	}
	p.events = keep
	p.insert(Event{Kind: SetValue, Time: t, Value: v})
}

// computed adds the signals connected to the parameter at the pass time.
func (p *Param) computed(ps *pass) float64 {
	v := p.ValueAt(ps.t)
	for _, e := range p.ins {
		outs := ps.outputs(e.src)
		if e.output < len(outs) {
			v += float64(downmix(outs[e.output]))
		}
	}
	return v
}
