// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"os"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/cache"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/errs"
	"github.com/ik5/audmix/spatial"
	"github.com/ik5/audmix/track"
	"github.com/ik5/audmix/tracking"
)

// MeterWindow is the number of samples Meter looks at.
const MeterWindow = 1024

// Mixer owns the named tracks and groups of a session and the master gain
// they all end in.
type Mixer struct {
	ctx     backend.Context
	presets automation.Presets
	spatial spatial.Config
	cache   *cache.Cache

	master   backend.GainNode
	analyser backend.AnalyserNode
	sink     backend.Destination

	members map[string]track.Member
	order   []string

	window, tmp []float32
	closed      bool
}

// New builds a Mixer on ctx. A nil ctx yields ErrBackendUnavailable.
func New(ctx backend.Context, opts ...Option) (*Mixer, error) {
	if ctx == nil {
		logrus.WithFields(logrus.Fields{
			"function": "mixer.New",
		}).Error("No backend context")
		return nil, errs.ErrBackendUnavailable
	}

	o := options{cfg: config.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	presets, err := o.cfg.AutomationPresets()
	if err != nil {
		return nil, err
	}
	if o.presets != nil {
		presets = *o.presets
	}
	sc, err := o.cfg.SpatialConfig()
	if err != nil {
		return nil, err
	}

	c := o.cache
	if c == nil {
		rate := o.cfg.SampleRate
		if rate == 0 {
			rate = int(ctx.SampleRate())
		}
		c = cache.New(os.DirFS(o.cfg.Assets), cache.WithSampleRate(rate))
	}

	m := &Mixer{
		ctx:      ctx,
		presets:  presets,
		spatial:  sc,
		cache:    c,
		master:   ctx.NewGain(),
		analyser: ctx.NewAnalyser(),
		members:  make(map[string]track.Member),
		window:   make([]float32, MeterWindow),
		tmp:      make([]float32, MeterWindow),
	}
	m.analyser.SetWindowSize(MeterWindow)
	m.master.Gain().SetValueAtTime(o.cfg.MasterVolume, ctx.CurrentTime())
	m.master.ConnectToNode(ctx.Destination(), 0, 0)
	m.master.ConnectToNode(m.analyser, 0, 0)

	logrus.WithFields(logrus.Fields{
		"function":      "mixer.New",
		"sample_rate":   ctx.SampleRate(),
		"master_volume": o.cfg.MasterVolume,
		"assets":        o.cfg.Assets,
	}).Debug("Mixer created")
	return m, nil
}

// Context is the backend session.
func (m *Mixer) Context() backend.Context { return m.ctx }

// Presets are the automation presets given to new tracks and sources.
func (m *Mixer) Presets() automation.Presets { return m.presets }

// Cache is the asset cache used by NewSource.
func (m *Mixer) Cache() *cache.Cache { return m.cache }

// Output is the master gain stage.
func (m *Mixer) Output() backend.Node { return m.master }

func (m *Mixer) resolveMember(name string, opts []MemberOption) (memberOptions, *track.Group, error) {
	o := memberOptions{volume: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if m.closed {
		return o, nil, ErrClosed
	}
	if _, ok := m.members[name]; ok {
		logrus.WithFields(logrus.Fields{
			"function": "Mixer.add",
			"name":     name,
		}).Error("Name already in use")
		return o, nil, &errs.DuplicateNameError{Name: name}
	}
	if o.group == "" {
		return o, nil, nil
	}
	g, ok := m.Group(o.group)
	if !ok {
		return o, nil, fmt.Errorf("group %q: %w", o.group, ErrNotFound)
	}
	return o, g, nil
}

func (m *Mixer) attach(name string, member track.Member, parent *track.Group, connect func(backend.Destination) error) error {
	if parent != nil {
		if err := parent.Add(member); err != nil {
			return err
		}
	} else if err := connect(backend.ToNode(m.master)); err != nil {
		return err
	}
	m.members[name] = member
	m.order = append(m.order, name)
	return nil
}

// AddTrack creates a named track routed to the master, or to a group with
// InGroup.
func (m *Mixer) AddTrack(name string, opts ...MemberOption) (*track.Track, error) {
	o, parent, err := m.resolveMember(name, opts)
	if err != nil {
		return nil, err
	}
	t := track.New(m.ctx, name, track.WithPresets(m.presets), track.WithVolume(o.volume))
	if err := m.attach(name, t, parent, t.Connect); err != nil {
		t.Destroy()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Mixer.AddTrack",
		"name":     name,
		"group":    o.group,
	}).Debug("Track added")
	return t, nil
}

// AddGroup creates a named group routed to the master, or nested in
// another group with InGroup.
func (m *Mixer) AddGroup(name string, opts ...MemberOption) (*track.Group, error) {
	o, parent, err := m.resolveMember(name, opts)
	if err != nil {
		return nil, err
	}
	g := track.NewGroup(m.ctx, name, track.WithPresets(m.presets), track.WithVolume(o.volume))
	if err := m.attach(name, g, parent, g.Connect); err != nil {
		g.Destroy()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Mixer.AddGroup",
		"name":     name,
		"group":    o.group,
	}).Debug("Group added")
	return g, nil
}

// Track looks a track up by name.
func (m *Mixer) Track(name string) (*track.Track, bool) {
	t, ok := m.members[name].(*track.Track)
	return t, ok
}

// Group looks a group up by name.
func (m *Mixer) Group(name string) (*track.Group, bool) {
	g, ok := m.members[name].(*track.Group)
	return g, ok
}

// Names lists tracks and groups in creation order.
func (m *Mixer) Names() []string {
	return slices.Clone(m.order)
}

// Remove destroys a track or group. Removing a group removes its members.
func (m *Mixer) Remove(name string) error {
	if m.closed {
		return ErrClosed
	}
	member, ok := m.members[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	m.forget(member)
	member.Destroy()
	return nil
}

func (m *Mixer) forget(member track.Member) {
	if g, ok := member.(*track.Group); ok {
		for _, child := range g.Children() {
			m.forget(child)
		}
	}
	delete(m.members, member.Name())
	m.order = slices.DeleteFunc(m.order, func(n string) bool { return n == member.Name() })
}

// SetVolume moves the master gain, by default with automationNatural.
func (m *Mixer) SetVolume(v float64, opts ...automation.Option) (automation.Outcome, error) {
	if m.closed {
		return automation.Outcome{}, ErrClosed
	}
	adj := automation.Resolve(m.presets.AutomationNatural, opts...)
	return automation.Schedule(m.ctx, m.master.Gain(), v, adj, false)
}

// Volume is the master gain now.
func (m *Mixer) Volume() float64 { return m.master.Gain().Value() }

// NewSource creates a tracking source bound to the mixer cache and
// presets. opts are applied after those.
func (m *Mixer) NewSource(opts ...tracking.Option) (*tracking.Source, error) {
	if m.closed {
		return nil, ErrClosed
	}
	base := []tracking.Option{tracking.WithCache(m.cache), tracking.WithPresets(m.presets)}
	return tracking.New(m.ctx, append(base, opts...)...), nil
}

// SpatialConfig is the configured spatializer default.
func (m *Mixer) SpatialConfig() spatial.Config { return m.spatial }

// NewSpatializer creates a spatializer; with no argument it uses
// SpatialConfig.
func (m *Mixer) NewSpatializer(cfg ...spatial.Config) (*spatial.Spatializer, error) {
	if m.closed {
		return nil, ErrClosed
	}
	c := m.spatial
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return spatial.New(m.ctx, c)
}

// ConnectSink feeds the composite output to dst as well as to the
// destination, replacing any previous sink.
func (m *Mixer) ConnectSink(dst backend.Destination) error {
	if m.closed {
		return ErrClosed
	}
	m.disconnectSink()
	if err := backend.Connect(m.master, dst); err != nil {
		return err
	}
	m.sink = dst
	return nil
}

// DisconnectSink removes the sink set by ConnectSink.
func (m *Mixer) DisconnectSink() error {
	if m.closed {
		return ErrClosed
	}
	m.disconnectSink()
	return nil
}

func (m *Mixer) disconnectSink() {
	if m.sink.IsZero() {
		return
	}
	backend.Disconnect(m.master, m.sink)
	if m.sink.Param() != nil {
		// param sinks drop every connection of the master
		m.master.ConnectToNode(m.ctx.Destination(), 0, 0)
		m.master.ConnectToNode(m.analyser, 0, 0)
	}
	m.sink = backend.Destination{}
}

// Close destroys every track and group and silences the master. It is
// safe to call more than once.
func (m *Mixer) Close() {
	if m.closed {
		return
	}
	for _, name := range slices.Clone(m.order) {
		if member, ok := m.members[name]; ok && member.Parent() == nil {
			member.Destroy()
		}
	}
	clear(m.members)
	m.order = nil
	m.master.Disconnect()
	m.sink = backend.Destination{}
	m.closed = true

	logrus.WithFields(logrus.Fields{
		"function": "Mixer.Close",
	}).Debug("Mixer closed")
}

// Closed reports whether Close was called.
func (m *Mixer) Closed() bool { return m.closed }
