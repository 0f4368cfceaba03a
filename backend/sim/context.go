// SPDX-License-Identifier: EPL-2.0

package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/backend"
)

// DefaultSampleRate is used when New is given a non-positive rate.
const DefaultSampleRate = 48000

// timeEpsilon absorbs float drift when comparing clock instants.
const timeEpsilon = 1e-9

// Context is a virtual audio session. Its clock only moves when Advance or
// AdvanceTo is called; due timers run in (time, scheduling order) order and
// observe the clock at their due time.
type Context struct {
	rate   float64
	now    float64
	seq    uint64
	timers timerQueue
	dest   *Node
}

var _ backend.Context = (*Context)(nil)

// New creates a session at the given sample rate with the clock at zero.
func New(sampleRate float64) *Context {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	c := &Context{rate: sampleRate}
	c.dest = c.newNode("destination", 1, 1, passThrough)
	return c
}

func (c *Context) CurrentTime() float64 { return c.now }
func (c *Context) SampleRate() float64  { return c.rate }
func (c *Context) Destination() backend.Node {
	return c.dest
}

// Advance moves the clock forward by d seconds, running due timers.
func (c *Context) Advance(d float64) {
	if d < 0 {
		d = 0
	}
	c.AdvanceTo(c.now + d)
}

// AdvanceTo moves the clock to t, running every timer due at or before t.
// Timers scheduled by a running callback are honoured in the same call.
func (c *Context) AdvanceTo(t float64) {
	for len(c.timers) > 0 && c.timers[0].at <= t+timeEpsilon {
		tm := heap.Pop(&c.timers).(*timer)
		if tm.at > c.now {
			c.now = tm.at
		}
		tm.f()
	}
	if t > c.now {
		c.now = t
	}
}

// PendingTimers returns the number of scheduled callbacks not yet run.
func (c *Context) PendingTimers() int { return len(c.timers) }

func (c *Context) AfterFunc(delay float64, f func()) backend.Timer {
	if delay < 0 {
		delay = 0
	}
	c.seq++
	tm := &timer{ctx: c, at: c.now + delay, seq: c.seq, f: f}
	heap.Push(&c.timers, tm)
	return tm
}

// Frame evaluates output of n at time t, one value per channel. It returns
// nil for nodes that do not belong to this session.
func (c *Context) Frame(n backend.Node, output int, t float64) []float32 {
	b := c.own(n, "Context.Frame")
	if b == nil {
		return nil
	}
	p := newPass(t)
	outs := p.outputs(b)
	if output < 0 || output >= len(outs) {
		return nil
	}
	return append([]float32(nil), outs[output]...)
}

// SampleTime returns the clock instant of sample index i.
func (c *Context) SampleTime(i int) float64 {
	return float64(i) / c.rate
}

// own returns the session node behind n, warning about foreign nodes.
func (c *Context) own(n backend.Node, function string) *Node {
	sn, ok := n.(interface{ base() *Node })
	if !ok || sn.base().ctx != c {
		logrus.WithFields(logrus.Fields{
			"function": function,
		}).Warn("Node does not belong to this session, ignoring")
		return nil
	}
	return sn.base()
}

type timer struct {
	ctx   *Context
	at    float64
	seq   uint64
	f     func()
	index int
}

func (t *timer) Stop() bool {
	if t.index < 0 {
		return false
	}
	heap.Remove(&t.ctx.timers, t.index)
	return true
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	tm := x.(*timer)
	tm.index = len(*q)
	*q = append(*q, tm)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	tm := old[n-1]
	old[n-1] = nil
	tm.index = -1
	*q = old[:n-1]
	return tm
}
