// SPDX-License-Identifier: EPL-2.0

package sim

import (
	"math"

	"github.com/ik5/audmix/backend"
)

// Gain scales its input by the gain parameter.
type Gain struct {
	*Node
	gain *Param
}

func (c *Context) NewGain() backend.GainNode {
	g := &Gain{gain: newParam(c, 1)}
	g.Node = c.newNode("gain", 1, 1, func(p *pass, in [][]float32) [][]float32 {
		k := float32(g.gain.computed(p))
		out := make([]float32, len(in[0]))
		for i, v := range in[0] {
			out[i] = v * k
		}
		return [][]float32{out}
	})
	return g
}

func (g *Gain) Gain() backend.Param { return g.gain }

// StereoPanner applies the equal-power stereo panning law.
type StereoPanner struct {
	*Node
	pan *Param
}

func (c *Context) NewStereoPanner() backend.StereoPannerNode {
	s := &StereoPanner{pan: newParam(c, 0)}
	s.Node = c.newNode("stereopanner", 1, 1, func(p *pass, in [][]float32) [][]float32 {
		return [][]float32{panFrame(in[0], s.pan.computed(p))}
	})
	return s
}

func (s *StereoPanner) Pan() backend.Param { return s.pan }

func panFrame(in []float32, pan float64) []float32 {
	pan = max(-1, min(1, pan))
	switch len(in) {
	case 0:
		return []float32{0, 0}
	case 1:
		x := (pan + 1) / 2
		return []float32{
			in[0] * float32(math.Cos(x*math.Pi/2)),
			in[0] * float32(math.Sin(x*math.Pi/2)),
		}
	}
	l, r := in[0], in[1]
	if pan <= 0 {
		x := pan + 1
		return []float32{
			l + r*float32(math.Cos(x*math.Pi/2)),
			r * float32(math.Sin(x*math.Pi/2)),
		}
	}
	return []float32{
		l * float32(math.Cos(pan*math.Pi/2)),
		r + l*float32(math.Sin(pan*math.Pi/2)),
	}
}

// Panner holds 3D position, orientation and cone settings. It passes audio
// through unchanged.
type Panner struct {
	*Node
	px, py, pz *Param
	ox, oy, oz *Param
	cone       backend.Cone
}

func (c *Context) NewPanner() backend.PannerNode {
	return &Panner{
		Node: c.newNode("panner", 1, 1, passThrough),
		px:   newParam(c, 0),
		py:   newParam(c, 0),
		pz:   newParam(c, 0),
		ox:   newParam(c, 1),
		oy:   newParam(c, 0),
		oz:   newParam(c, 0),
		cone: backend.Cone{InnerAngle: 360, OuterAngle: 360, OuterGain: 0},
	}
}

func (n *Panner) PositionX() backend.Param    { return n.px }
func (n *Panner) PositionY() backend.Param    { return n.py }
func (n *Panner) PositionZ() backend.Param    { return n.pz }
func (n *Panner) OrientationX() backend.Param { return n.ox }
func (n *Panner) OrientationY() backend.Param { return n.oy }
func (n *Panner) OrientationZ() backend.Param { return n.oz }
func (n *Panner) SetCone(c backend.Cone)      { n.cone = c }
func (n *Panner) Cone() backend.Cone          { return n.cone }

// BiquadFilter records its settings and passes audio through unchanged.
type BiquadFilter struct {
	*Node
	typ       backend.FilterType
	frequency *Param
	q         *Param
}

func (c *Context) NewBiquadFilter() backend.BiquadFilterNode {
	return &BiquadFilter{
		Node:      c.newNode("biquad", 1, 1, passThrough),
		typ:       backend.LowPass,
		frequency: newParam(c, 350),
		q:         newParam(c, 1),
	}
}

func (f *BiquadFilter) SetType(t backend.FilterType) { f.typ = t }
func (f *BiquadFilter) Type() backend.FilterType     { return f.typ }
func (f *BiquadFilter) Frequency() backend.Param     { return f.frequency }
func (f *BiquadFilter) Q() backend.Param             { return f.q }

// NewChannelSplitter routes channel i of its input to output i.
func (c *Context) NewChannelSplitter(outputs int) backend.Node {
	outputs = max(outputs, 1)
	return c.newNode("splitter", 1, outputs, func(_ *pass, in [][]float32) [][]float32 {
		out := make([][]float32, outputs)
		for i := range out {
			if i < len(in[0]) {
				out[i] = []float32{in[0][i]}
			} else {
				out[i] = []float32{0}
			}
		}
		return out
	})
}

// NewChannelMerger down-mixes input i to mono and places it on channel i.
func (c *Context) NewChannelMerger(inputs int) backend.Node {
	inputs = max(inputs, 1)
	return c.newNode("merger", inputs, 1, func(_ *pass, in [][]float32) [][]float32 {
		out := make([]float32, inputs)
		for i := range out {
			out[i] = downmix(in[i])
		}
		return [][]float32{out}
	})
}

// DefaultWindowSize is the analyser window of a new Analyser.
const DefaultWindowSize = 2048

// Analyser passes audio through and exposes recent input samples.
type Analyser struct {
	*Node
	window int
}

func (c *Context) NewAnalyser() backend.AnalyserNode {
	return &Analyser{
		Node:   c.newNode("analyser", 1, 1, passThrough),
		window: DefaultWindowSize,
	}
}

func (a *Analyser) SetWindowSize(n int) {
	if n > 0 {
		a.window = n
	}
}

func (a *Analyser) WindowSize() int { return a.window }

// FloatTimeDomainData fills dst with down-mixed input samples; the last
// element is the sample at the current clock time.
func (a *Analyser) FloatTimeDomainData(dst []float32) {
	c := a.ctx
	last := len(dst) - 1
	for k := range dst {
		t := c.now - float64(last-k)/c.rate
		if t < -timeEpsilon {
			dst[k] = 0
			continue
		}
		dst[k] = downmix(newPass(t).mix(a.ins[0]))
	}
}
