// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/backend/sim"
	"github.com/ik5/audmix/errs"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxDistance = 100
	cfg.InterpolateDelay = 0.1
	cfg.InterpolateTime = 0.5
	return cfg
}

func newConnected(t *testing.T, cfg Config) (*sim.Context, *Spatializer) {
	t.Helper()
	ctx := sim.New(1000)
	s, err := New(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, s.Connect(backend.ToNode(ctx.Destination())))
	return ctx, s
}

func connected(n backend.Node) bool {
	return n.(interface{ Connected() bool }).Connected()
}

func TestNewRejectsBadDistances(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxDistance = 0
	s, err := New(sim.New(1000), cfg)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	cfg = DefaultConfig()
	cfg.RefDistance = 1e-9
	_, err = New(sim.New(1000), cfg)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestDisconnectedUpdatesApplyDirectly(t *testing.T) {
	t.Parallel()

	ctx := sim.New(1000)
	s, err := New(ctx, testConfig())
	require.NoError(t, err)

	require.NoError(t, s.UpdatePosition(Vector{X: 3}))
	assert.Equal(t, 0, s.Active())
	assert.Equal(t, 3.0, s.Panner(0).PositionX().Value())
	_, pending := s.Pending()
	assert.False(t, pending)
	assert.Zero(t, ctx.PendingTimers())

	dir, low := s.PathGains()
	assert.InDelta(t, 1.0/3, dir.Value(), 1e-3)
	assert.InDelta(t, 0, low.Value(), 2e-2)

	cone := backend.Cone{InnerAngle: 60, OuterAngle: 120, OuterGain: 0.2}
	require.NoError(t, s.UpdateCone(cone))
	assert.Equal(t, cone, s.Panner(0).Cone())

	require.NoError(t, s.UpdateBoth(Vector{Y: 1}, Vector{Z: -1}))
	assert.Equal(t, 1.0, s.Panner(0).PositionY().Value())
	assert.Equal(t, -1.0, s.Panner(0).OrientationZ().Value())
	assert.Equal(t, cone, s.Current().Cone)
}

func TestListenerRelativePosition(t *testing.T) {
	t.Parallel()

	ctx := sim.New(1000)
	s, err := New(ctx, testConfig())
	require.NoError(t, err)

	require.NoError(t, s.UpdatePosition(Vector{X: 5}))
	require.NoError(t, s.SetListener(Vector{X: 1}))
	assert.Equal(t, 4.0, s.Panner(0).PositionX().Value())
	assert.InDelta(t, 4, s.Distance(), 1e-12)
}

func TestBeyondMaxDistanceIsSilent(t *testing.T) {
	t.Parallel()

	ctx := sim.New(1000)
	s, err := New(ctx, testConfig())
	require.NoError(t, err)
	require.NoError(t, s.UpdatePosition(Vector{Z: 150}))

	dir, low := s.PathGains()
	assert.Zero(t, dir.Value())
	assert.Zero(t, low.Value())
}

func TestConnectedUpdateInterpolates(t *testing.T) {
	t.Parallel()

	ctx, s := newConnected(t, testConfig())

	require.NoError(t, s.UpdatePosition(Vector{X: 2}))
	assert.Equal(t, 1, s.Active())
	assert.Equal(t, 2.0, s.Panner(1).PositionX().Value())
	assert.Equal(t, 0.0, s.Panner(0).PositionX().Value(), "old panner untouched")
	assert.True(t, connected(s.Panner(1)))

	out := s.SlotGain(0).Gain().(*sim.Param)
	in := s.SlotGain(1).Gain().(*sim.Param)
	for i := 0; i <= 50; i++ {
		at := float64(i) * 0.01
		o, n := out.ValueAt(at), in.ValueAt(at)
		assert.InDelta(t, 1, o*o+n*n, 2e-3, "t=%v", at)
	}
	assert.InDelta(t, 0, out.ValueAt(0.5), 1e-6)
	assert.InDelta(t, 1, in.ValueAt(0.5), 1e-6)

	dir, _ := s.PathGains()
	assert.InDelta(t, 0.5, dir.(*sim.Param).ValueAt(0.5), 1e-3)

	ctx.Advance(0.5)
	assert.False(t, connected(s.Panner(0)), "idle panner detached after the fade")
	assert.False(t, s.Input().(*sim.Gain).ConnectedTo(s.Panner(0)))
	assert.True(t, connected(s.Panner(1)))
}

func TestUpdatesCoalesceIntoOneRetry(t *testing.T) {
	t.Parallel()

	ctx, s := newConnected(t, testConfig())
	require.NoError(t, s.UpdatePosition(Vector{X: 2}))
	ctx.Advance(0.2)

	before := ctx.PendingTimers()
	require.NoError(t, s.UpdatePosition(Vector{X: 3}))
	assert.Equal(t, before+1, ctx.PendingTimers(), "one retry armed")
	assert.Equal(t, 1, s.Active(), "no swap inside the window")

	ctx.Advance(0.1)
	require.NoError(t, s.UpdateOrientation(Vector{Y: 1}))
	require.NoError(t, s.UpdateCone(backend.Cone{InnerAngle: 90, OuterAngle: 180}))
	assert.Equal(t, before+1, ctx.PendingTimers(), "still one retry")

	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, Vector{X: 3}, pending.Position)
	assert.Equal(t, Vector{Y: 1}, pending.Orientation)

	ctx.Advance(0.29)
	assert.Equal(t, 1, s.Active())

	ctx.Advance(0.02)
	assert.Equal(t, 0, s.Active())
	_, ok = s.Pending()
	assert.False(t, ok)
	assert.Equal(t, 3.0, s.Panner(0).PositionX().Value())
	assert.Equal(t, 1.0, s.Panner(0).OrientationY().Value())
	assert.Equal(t, 90.0, s.Panner(0).Cone().InnerAngle)
	assert.Equal(t, Vector{X: 3}, s.Current().Position)
}

func TestStaleTeardownSkipped(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.InterpolateDelay = 0
	ctx, s := newConnected(t, cfg)

	s.pending = &PannerParams{Position: Vector{X: 1}}
	s.interpolate()
	s.pending = &PannerParams{Position: Vector{X: 2}}
	s.interpolate()
	require.Equal(t, 0, s.Active(), "slot 0 reactivated")

	ctx.Advance(1)
	assert.True(t, connected(s.Panner(0)), "superseded teardown did not fire")
	assert.False(t, connected(s.Panner(1)))
}

func TestLinearInterpolationRamp(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.InterpolationRamp = automation.Linear
	_, s := newConnected(t, cfg)
	assert.Nil(t, s.fadeOut)

	require.NoError(t, s.UpdatePosition(Vector{X: 1}))
	out := s.SlotGain(0).Gain().(*sim.Param)
	in := s.SlotGain(1).Gain().(*sim.Param)
	assert.InDelta(t, 0.5, out.ValueAt(0.25), 1e-9)
	assert.InDelta(t, 0.5, in.ValueAt(0.25), 1e-9)
}

func TestDisconnectAppliesPending(t *testing.T) {
	t.Parallel()

	ctx, s := newConnected(t, testConfig())
	require.NoError(t, s.UpdatePosition(Vector{X: 2}))
	ctx.Advance(0.1)
	require.NoError(t, s.UpdatePosition(Vector{X: 7}))

	require.NoError(t, s.Disconnect())
	assert.False(t, s.Connected())
	_, ok := s.Pending()
	assert.False(t, ok)
	assert.Equal(t, 7.0, s.Panner(s.Active()).PositionX().Value())

	active := s.Active()
	ctx.Advance(2)
	assert.Equal(t, active, s.Active(), "retry cancelled")
}

func TestSignalPath(t *testing.T) {
	t.Parallel()

	ctx := sim.New(1000)
	s, err := New(ctx, testConfig())
	require.NoError(t, err)

	buf := audio.NewBuffer(1, 1000, 1000)
	for i := range buf.Data[0] {
		buf.Data[0][i] = 0.5
	}
	src := ctx.NewBufferSource()
	src.SetBuffer(buf)
	require.NoError(t, src.Start(0, 0, 0))
	require.NoError(t, s.ConnectSource(src))

	assert.InDeltaSlice(t, []float32{0.5}, ctx.Frame(s.Output(), 0, 0.1), 1e-6)

	require.NoError(t, s.DisconnectSource(src))
	assert.Empty(t, ctx.Frame(s.Output(), 0, 0.1))
}

func TestSpatializerDestroy(t *testing.T) {
	t.Parallel()

	ctx, s := newConnected(t, testConfig())
	require.NoError(t, s.UpdatePosition(Vector{X: 2}))
	ctx.Advance(0.1)
	require.NoError(t, s.UpdatePosition(Vector{X: 3}))

	s.Destroy()
	s.Destroy()

	assert.False(t, connected(s.Output()))
	assert.False(t, connected(s.Panner(1)))

	src := ctx.NewGain()
	for name, err := range map[string]error{
		"UpdatePosition":    s.UpdatePosition(Vector{}),
		"UpdateOrientation": s.UpdateOrientation(Vector{}),
		"UpdateBoth":        s.UpdateBoth(Vector{}, Vector{}),
		"UpdateCone":        s.UpdateCone(backend.Cone{}),
		"SetListener":       s.SetListener(Vector{}),
		"ConnectSource":     s.ConnectSource(src),
		"DisconnectSource":  s.DisconnectSource(src),
		"Connect":           s.Connect(backend.ToNode(ctx.Destination())),
		"Disconnect":        s.Disconnect(),
	} {
		assert.ErrorIs(t, err, ErrDestroyed, name)
		assert.ErrorIs(t, err, errs.ErrInvalidState, name)
	}

	assert.NotPanics(t, func() { ctx.Advance(2) })
}
