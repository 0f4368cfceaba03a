// SPDX-License-Identifier: EPL-2.0

package track

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/backend"
)

// Member is a Track or a Group, as held by a parent Group.
type Member interface {
	Name() string
	Volume() float64
	EffectiveVolume() float64
	Output() backend.Node
	Parent() *Group
	Destroy()

	setParent(g *Group)
}

type queuedSwap struct {
	src  Source
	opts SwapOptions
}

// Track is a named channel with a gain stage and at most one current
// source. Sources are replaced with Swap, which crossfades according to a
// preset. Swaps requested while one is in progress are queued and run in
// order.
type Track struct {
	ctx     backend.Context
	name    string
	presets automation.Presets
	gain    backend.GainNode
	parent  *Group

	current    Source
	state      State
	generation uint64
	queue      []queuedSwap
	done       backend.Timer
	fading     map[Source]backend.Timer

	destroyed bool
}

var _ Member = (*Track)(nil)

// New creates a Track whose output is not connected.
func New(ctx backend.Context, name string, opts ...Option) *Track {
	o := options{presets: automation.DefaultPresets(), volume: 1}
	for _, opt := range opts {
		opt(&o)
	}
	t := &Track{
		ctx:     ctx,
		name:    name,
		presets: o.presets,
		gain:    ctx.NewGain(),
		fading:  make(map[Source]backend.Timer),
	}
	t.gain.Gain().SetValueAtTime(o.volume, ctx.CurrentTime())
	return t
}

func (t *Track) Name() string { return t.name }

// State reports whether a swap is running.
func (t *Track) State() State { return t.state }

// Pending is the number of queued swaps.
func (t *Track) Pending() int { return len(t.queue) }

// Source is the current source, nil when silent.
func (t *Track) Source() Source { return t.current }

// Parent is the enclosing group, nil at top level.
func (t *Track) Parent() *Group { return t.parent }

// Output is the gain stage sources feed into.
func (t *Track) Output() backend.Node { return t.gain }

// Input is where sources connect; it is the gain stage itself.
func (t *Track) Input() backend.Destination { return backend.ToNode(t.gain) }

// Gain is the track gain parameter.
func (t *Track) Gain() backend.Param { return t.gain.Gain() }

// Volume is the track gain now.
func (t *Track) Volume() float64 { return t.gain.Gain().Value() }

// EffectiveVolume multiplies the gains of the track and all its parents.
func (t *Track) EffectiveVolume() float64 {
	v := t.Volume()
	if t.parent != nil {
		v *= t.parent.EffectiveVolume()
	}
	return v
}

// SetVolume moves the track gain to v, by default with automationNatural.
func (t *Track) SetVolume(v float64, opts ...automation.Option) (automation.Outcome, error) {
	if t.destroyed {
		return automation.Outcome{}, ErrDestroyed
	}
	adj := automation.Resolve(t.presets.AutomationNatural, opts...)
	return automation.Schedule(t.ctx, t.gain.Gain(), v, adj, false)
}

// Connect routes the track output to dst.
func (t *Track) Connect(dst backend.Destination) error {
	if t.destroyed {
		return ErrDestroyed
	}
	return backend.Connect(t.gain, dst)
}

// Disconnect detaches the track output.
func (t *Track) Disconnect() error {
	if t.destroyed {
		return ErrDestroyed
	}
	t.gain.Disconnect()
	return nil
}

func (t *Track) setParent(g *Group) {
	if t.parent != nil {
		t.gain.DisconnectNode(t.parent.gain)
	}
	t.parent = g
	if g != nil {
		t.gain.ConnectToNode(g.gain, 0, 0)
	}
}

// Swap replaces the current source with src (nil fades to silence).
// While a swap is running the request is queued. A pair with a malformed
// ramp is rejected before either source is touched.
func (t *Track) Swap(src Source, opts SwapOptions) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if err := t.resolve(opts).Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Track.Swap",
			"track":    t.name,
			"error":    err.Error(),
		}).Error("Invalid swap adjustments")
		return err
	}
	if t.state == SwapInProgress {
		t.queue = append(t.queue, queuedSwap{src: src, opts: opts})
		logrus.WithFields(logrus.Fields{
			"function": "Track.Swap",
			"track":    t.name,
			"queued":   len(t.queue),
		}).Debug("Swap in progress, queued")
		return nil
	}
	return t.run(src, opts)
}

func (t *Track) resolve(opts SwapOptions) automation.SwapPair {
	pair := t.presets.Swap(opts.Preset)
	if opts.Pair != nil {
		pair = *opts.Pair
	}
	if opts.Duration > 0 {
		pair = pair.Scaled(opts.Duration)
	}
	return pair
}

func (t *Track) run(src Source, opts SwapOptions) error {
	if src != nil && src == t.current {
		return ErrSameSource
	}

	pair := t.resolve(opts)
	if err := pair.Validate(); err != nil {
		return err
	}
	now := t.ctx.CurrentTime()
	old := t.current

	if src != nil {
		if err := t.startIncoming(src, pair.New, now, opts.Offset); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Track.run",
				"track":    t.name,
				"error":    err.Error(),
			}).Error("Failed to start incoming source")
			return err
		}
	}

	if old != nil {
		t.fadeOut(old, pair.Old, now)
	}

	t.current = src
	t.state = SwapInProgress
	t.generation++
	gen := t.generation

	logrus.WithFields(logrus.Fields{
		"function": "Track.run",
		"track":    t.name,
		"preset":   opts.Preset.String(),
		"end":      pair.End(),
	}).Debug("Swap started")

	t.done = t.ctx.AfterFunc(pair.End(), func() { t.finish(gen) })
	return nil
}

func (t *Track) startIncoming(src Source, adj automation.Adjustment, now, offset float64) error {
	if timer, ok := t.fading[src]; ok {
		// swapped back in before its detachment
		timer.Stop()
		delete(t.fading, src)
	}
	if err := src.Connect(t.Input()); err != nil {
		return fmt.Errorf("connect incoming source: %w", err)
	}

	g := src.Gain()
	g.CancelScheduledValues(now)
	g.SetValueAtTime(0, now)

	if err := src.Start(now+adj.Delay, offset, 0); err != nil {
		_ = src.Disconnect()
		return fmt.Errorf("start incoming source: %w", err)
	}
	if _, err := automation.Schedule(t.ctx, g, 1, adj, false); err != nil {
		return fmt.Errorf("fade in: %w", err)
	}
	return nil
}

// fadeOut automates old to silence, stops it at the end of adj and
// detaches it then unless it has become current again.
func (t *Track) fadeOut(old Source, adj automation.Adjustment, now float64) {
	if _, err := automation.Schedule(t.ctx, old.Gain(), 0, adj, false); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Track.fadeOut",
			"track":    t.name,
			"error":    err.Error(),
		}).Warn("Fade out failed, stopping at the scheduled time")
	}

	end := now + adj.End()
	if err := old.Stop(end); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Track.fadeOut",
			"track":    t.name,
			"error":    err.Error(),
		}).Warn("Failed to stop outgoing source")
	}

	t.fading[old] = t.ctx.AfterFunc(adj.End(), func() {
		delete(t.fading, old)
		if t.current == old {
			return
		}
		_ = old.Disconnect()
	})
}

func (t *Track) finish(gen uint64) {
	if t.destroyed || gen != t.generation {
		return
	}
	t.state = Idle
	t.done = nil

	logrus.WithFields(logrus.Fields{
		"function": "Track.finish",
		"track":    t.name,
		"queued":   len(t.queue),
	}).Debug("Swap finished")

	for len(t.queue) > 0 {
		next := t.queue[0]
		t.queue = t.queue[1:]
		err := t.run(next.src, next.opts)
		if err == nil {
			return
		}
		logrus.WithFields(logrus.Fields{
			"function": "Track.finish",
			"track":    t.name,
			"error":    err.Error(),
		}).Warn("Queued swap dropped")
	}
}

// Stop fades the current source out with the stopImmediate preset and
// detaches it. Queued swaps are discarded.
func (t *Track) Stop(opts ...automation.Option) error {
	if t.destroyed {
		return ErrDestroyed
	}
	t.queue = nil
	if t.current == nil {
		return nil
	}
	adj := automation.Resolve(t.presets.StopImmediate, opts...)
	old := t.current
	t.current = nil
	t.fadeOut(old, adj, t.ctx.CurrentTime())
	return nil
}

// Destroy stops and detaches every source and disconnects the track. It
// is safe to call more than once.
func (t *Track) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.generation++
	t.queue = nil
	if t.done != nil {
		t.done.Stop()
		t.done = nil
	}

	now := t.ctx.CurrentTime()
	for src, timer := range t.fading {
		timer.Stop()
		_ = src.Disconnect()
	}
	clear(t.fading)
	if t.current != nil {
		_ = t.current.Stop(now)
		_ = t.current.Disconnect()
		t.current = nil
	}

	if t.parent != nil {
		t.parent.forget(t.gain)
	}
	t.gain.Disconnect()
	t.state = Idle
}

// Destroyed reports whether Destroy was called.
func (t *Track) Destroyed() bool { return t.destroyed }
