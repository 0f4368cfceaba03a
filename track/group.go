// SPDX-License-Identifier: EPL-2.0

package track

import (
	"slices"

	"github.com/ik5/audmix/backend"
)

// Group is a Track whose gain stage also mixes a set of child tracks and
// groups. Child volumes multiply with the group's.
type Group struct {
	*Track
	children []Member
}

var _ Member = (*Group)(nil)

// NewGroup creates an empty Group whose output is not connected.
func NewGroup(ctx backend.Context, name string, opts ...Option) *Group {
	return &Group{Track: New(ctx, name, opts...)}
}

// Add routes m into the group.
func (g *Group) Add(m Member) error {
	if g.destroyed {
		return ErrDestroyed
	}
	if m.Parent() != nil {
		return ErrHasParent
	}
	m.setParent(g)
	g.children = append(g.children, m)
	return nil
}

// Remove detaches m from the group without destroying it.
func (g *Group) Remove(m Member) bool {
	if !g.forget(m.Output()) {
		return false
	}
	m.setParent(nil)
	return true
}

// Children returns the direct members in insertion order.
func (g *Group) Children() []Member {
	return slices.Clone(g.children)
}

func (g *Group) forget(out backend.Node) bool {
	n := len(g.children)
	g.children = slices.DeleteFunc(g.children, func(m Member) bool {
		return m.Output() == out
	})
	return len(g.children) != n
}

// Destroy destroys the group and all its members.
func (g *Group) Destroy() {
	if g.destroyed {
		return
	}
	for _, m := range slices.Clone(g.children) {
		m.Destroy()
	}
	g.children = nil
	g.Track.Destroy()
}
