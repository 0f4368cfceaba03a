// SPDX-License-Identifier: EPL-2.0

package sim

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/backend"
)

type processFunc func(p *pass, in [][]float32) [][]float32

// Node is a vertex of the session graph. Splitters, mergers and the session
// destination are plain Nodes; the other kinds embed one.
type Node struct {
	ctx     *Context
	kind    string
	ins     [][]edge
	outputs int
	links   []link
	process processFunc
}

var _ backend.Node = (*Node)(nil)

// edge is an incoming connection.
type edge struct {
	src    *Node
	output int
}

// link is an outgoing connection to either a node input or a param.
type link struct {
	node   *Node
	param  *Param
	output int
	input  int
}

func (c *Context) newNode(kind string, inputs, outputs int, process processFunc) *Node {
	return &Node{
		ctx:     c,
		kind:    kind,
		ins:     make([][]edge, inputs),
		outputs: outputs,
		process: process,
	}
}

func (n *Node) base() *Node { return n }

// Kind names the node type, e.g. "gain" or "splitter".
func (n *Node) Kind() string { return n.kind }

func (n *Node) NumberOfInputs() int  { return len(n.ins) }
func (n *Node) NumberOfOutputs() int { return n.outputs }

// Connected reports whether the node has any outgoing connection.
func (n *Node) Connected() bool { return len(n.links) > 0 }

// ConnectedTo reports whether any output of n feeds dst.
func (n *Node) ConnectedTo(dst backend.Node) bool {
	sn, ok := dst.(interface{ base() *Node })
	if !ok {
		return false
	}
	d := sn.base()
	return slices.ContainsFunc(n.links, func(l link) bool { return l.node == d })
}

// ConnectedToParam reports whether any output of n feeds dst.
func (n *Node) ConnectedToParam(dst backend.Param) bool {
	return slices.ContainsFunc(n.links, func(l link) bool { return l.param == dst })
}

// Inputs returns the number of connections feeding input i.
func (n *Node) Inputs(i int) int {
	if i < 0 || i >= len(n.ins) {
		return 0
	}
	return len(n.ins[i])
}

func (n *Node) ConnectToNode(dst backend.Node, output, input int) {
	d := n.ctx.own(dst, "Node.ConnectToNode")
	if d == nil {
		return
	}
	if output < 0 || output >= n.outputs || input < 0 || input >= len(d.ins) {
		logrus.WithFields(logrus.Fields{
			"function": "Node.ConnectToNode",
			"src":      n.kind,
			"dst":      d.kind,
			"output":   output,
			"input":    input,
		}).Warn("Connection index out of range, ignoring")
		return
	}
	for _, l := range n.links {
		if l.node == d && l.output == output && l.input == input {
			return
		}
	}
	n.links = append(n.links, link{node: d, output: output, input: input})
	d.ins[input] = append(d.ins[input], edge{src: n, output: output})
}

func (n *Node) ConnectToParam(dst backend.Param, output int) {
	p, ok := dst.(*Param)
	if !ok || p.ctx != n.ctx {
		logrus.WithFields(logrus.Fields{
			"function": "Node.ConnectToParam",
			"src":      n.kind,
		}).Warn("Param does not belong to this session, ignoring")
		return
	}
	if output < 0 || output >= n.outputs {
		return
	}
	n.links = append(n.links, link{param: p, output: output})
	p.ins = append(p.ins, edge{src: n, output: output})
}

func (n *Node) Disconnect() {
	for _, l := range n.links {
		n.unlink(l)
	}
	n.links = nil
}

func (n *Node) DisconnectNode(dst backend.Node) {
	sn, ok := dst.(interface{ base() *Node })
	if !ok {
		return
	}
	d := sn.base()
	n.links = slices.DeleteFunc(n.links, func(l link) bool {
		if l.node != d {
			return false
		}
		n.unlink(l)
		return true
	})
}

func (n *Node) unlink(l link) {
	drop := func(e edge) bool { return e.src == n && e.output == l.output }
	if l.node != nil {
		l.node.ins[l.input] = slices.DeleteFunc(l.node.ins[l.input], drop)
	}
	if l.param != nil {
		l.param.ins = slices.DeleteFunc(l.param.ins, drop)
	}
}

// pass evaluates the graph at a single instant.
type pass struct {
	t      float64
	memo   map[*Node][][]float32
	active map[*Node]bool
}

func newPass(t float64) *pass {
	return &pass{
		t:      t,
		memo:   make(map[*Node][][]float32),
		active: make(map[*Node]bool),
	}
}

func (p *pass) outputs(n *Node) [][]float32 {
	if out, ok := p.memo[n]; ok {
		return out
	}
	if p.active[n] {
		// feedback loop: the node reads silence from itself
		return nil
	}
	p.active[n] = true
	in := make([][]float32, len(n.ins))
	for i := range n.ins {
		in[i] = p.mix(n.ins[i])
	}
	out := n.process(p, in)
	delete(p.active, n)
	p.memo[n] = out
	return out
}

func (p *pass) mix(edges []edge) []float32 {
	var acc []float32
	for _, e := range edges {
		outs := p.outputs(e.src)
		if e.output < len(outs) {
			acc = mixInto(acc, outs[e.output])
		}
	}
	return acc
}

// mixInto adds ch to acc. Mono signals spread over every channel of the
// other; otherwise channels add pairwise and missing ones read as silence.
func mixInto(acc, ch []float32) []float32 {
	if len(ch) == 0 {
		return acc
	}
	if acc == nil {
		return append([]float32(nil), ch...)
	}
	switch {
	case len(ch) == 1 && len(acc) > 1:
		for i := range acc {
			acc[i] += ch[0]
		}
		return acc
	case len(acc) == 1 && len(ch) > 1:
		mono := acc[0]
		acc = make([]float32, len(ch))
		for i := range acc {
			acc[i] = mono
		}
	case len(ch) > len(acc):
		acc = append(acc, make([]float32, len(ch)-len(acc))...)
	}
	for i, v := range ch {
		acc[i] += v
	}
	return acc
}

func downmix(ch []float32) float32 {
	if len(ch) == 0 {
		return 0
	}
	var sum float32
	for _, v := range ch {
		sum += v
	}
	return sum / float32(len(ch))
}

func passThrough(_ *pass, in [][]float32) [][]float32 {
	return [][]float32{in[0]}
}
