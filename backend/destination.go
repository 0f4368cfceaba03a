// SPDX-License-Identifier: EPL-2.0

package backend

import "github.com/sirupsen/logrus"

// Destination is the target of a connection: either a node input or a
// parameter. Build one with ToNode or ToParam.
type Destination struct {
	node  Node
	input int
	param Param
}

// ToNode targets input 0 of n.
func ToNode(n Node) Destination {
	return Destination{node: n}
}

// ToNodeInput targets a specific input of n.
func ToNodeInput(n Node, input int) Destination {
	return Destination{node: n, input: input}
}

// ToParam targets p; the source signal is added to its automation.
func ToParam(p Param) Destination {
	return Destination{param: p}
}

// Node returns the destination node, or nil for a parameter destination.
func (d Destination) Node() Node { return d.node }

// Param returns the destination parameter, or nil for a node destination.
func (d Destination) Param() Param { return d.param }

// IsZero reports whether the destination targets nothing.
func (d Destination) IsZero() bool { return d.node == nil && d.param == nil }

// Connect wires output 0 of src to dst.
func Connect(src Node, dst Destination) error {
	switch {
	case dst.node != nil:
		src.ConnectToNode(dst.node, 0, dst.input)
	case dst.param != nil:
		src.ConnectToParam(dst.param, 0)
	default:
		logrus.WithFields(logrus.Fields{
			"function": "backend.Connect",
		}).Warn("Connection requested to an empty destination")
		return ErrNoDestination
	}
	return nil
}

// Disconnect removes the connections from src to dst. Parameter
// destinations are dropped with every other outgoing connection of src.
func Disconnect(src Node, dst Destination) {
	switch {
	case dst.node != nil:
		src.DisconnectNode(dst.node)
	case dst.param != nil:
		src.Disconnect()
	}
}
