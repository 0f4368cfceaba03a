// SPDX-License-Identifier: EPL-2.0

package tracking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/backend/sim"
	"github.com/ik5/audmix/errs"
)

const rate = 1000

func testBuffer(channels, length int) *audio.Buffer {
	b := audio.NewBuffer(channels, length, rate)
	for c := range channels {
		for i := range length {
			b.Data[c][i] = float32(c+1) / 10
		}
	}
	return b
}

func newLoaded(t *testing.T, channels, length int) (*sim.Context, *Source) {
	t.Helper()
	ctx := sim.New(rate)
	s := New(ctx)
	require.NoError(t, s.Load(testBuffer(channels, length)))
	return ctx, s
}

func TestPositionBeforeStart(t *testing.T) {
	t.Parallel()

	ctx := sim.New(rate)
	s := New(ctx)

	pos, err := s.Position()
	require.NoError(t, err)
	assert.Equal(t, -1.0, pos, "no buffer")

	require.NoError(t, s.Load(testBuffer(1, 500)))
	sample, err := s.PositionSample()
	require.NoError(t, err)
	assert.Equal(t, -1, sample, "never started")

	require.NoError(t, s.Start(0.2, 0, 0))
	ctx.Advance(0.1)
	sample, err = s.PositionSample()
	require.NoError(t, err)
	assert.Equal(t, -1, sample, "start time not reached")
	assert.False(t, s.IsPlaying())
}

func TestPositionIncreasesWhilePlaying(t *testing.T) {
	t.Parallel()

	for _, channels := range []int{1, 2, 5} {
		ctx, s := newLoaded(t, channels, 1001)
		require.NoError(t, s.Start(0, 0, 0))

		prev := -1.0
		for range 9 {
			ctx.Advance(0.1)
			pos, err := s.Position()
			require.NoError(t, err)
			assert.Greater(t, pos, prev, "channels %d", channels)
			assert.InDelta(t, ctx.CurrentTime(), pos, 1.0/rate, "channels %d", channels)
			prev = pos
		}

		ctx.Advance(0.2)
		pos, err := s.Position()
		require.NoError(t, err)
		assert.Equal(t, -1.0, pos, "ended")
		assert.False(t, s.IsPlaying())
	}
}

func TestPositionWithOffset(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 2, 1000)
	require.NoError(t, s.Start(0, 0.5, 0))
	ctx.Advance(0.1)

	sample, err := s.PositionSample()
	require.NoError(t, err)
	assert.Equal(t, 600, sample)
}

func TestPositionWrapsOnLoop(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 1, 100)
	s.Node().SetLoop(true, 0, 0)
	require.NoError(t, s.Start(0, 0, 0))

	ctx.Advance(0.0505)
	first, err := s.PositionSample()
	require.NoError(t, err)
	ctx.Advance(0.07)
	wrapped, err := s.PositionSample()
	require.NoError(t, err)

	assert.Equal(t, 50, first)
	assert.Equal(t, 20, wrapped)
}

func TestStopEndsPlayback(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 1, 1000)
	ended := 0
	require.NoError(t, s.OnEnded(func() { ended++ }))
	require.NoError(t, s.Start(0, 0, 0))
	require.NoError(t, s.Stop(0.3))

	ctx.Advance(0.2)
	assert.True(t, s.IsPlaying())
	ctx.Advance(0.2)
	assert.False(t, s.IsPlaying())
	assert.Equal(t, 1, ended)

	pos, err := s.Position()
	require.NoError(t, err)
	assert.Equal(t, -1.0, pos)
}

func TestStopBeforeStart(t *testing.T) {
	t.Parallel()

	_, s := newLoaded(t, 1, 10)
	assert.NoError(t, s.Stop(0))
}

func TestRestartAllocatesFreshSource(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 2, 1000)
	content := s.Buffer().Clone()

	require.NoError(t, s.Start(0, 0, 0))
	first := s.Node()
	first.SetLoop(true, 0, 0)
	ctx.Advance(0.1)

	require.NoError(t, s.Start(0.2, 0, 0))
	second := s.Node()
	require.NotSame(t, first, second)
	assert.Same(t, s.Buffer(), second.Buffer(), "only the buffer is shared")
	assert.Equal(t, content, second.Buffer(), "buffer content preserved")

	loop, _, _ := second.(*sim.BufferSource).Loop()
	assert.False(t, loop, "loop is not copied")

	old := first.(*sim.BufferSource)
	assert.True(t, old.Connected(), "old source plays until the new start")
	assert.False(t, s.IsPlaying(), "restart scheduled in the future")

	ctx.Advance(0.1)
	assert.False(t, old.Connected())
	assert.Nil(t, old.Buffer())

	ctx.Advance(0.05)
	sample, err := s.PositionSample()
	require.NoError(t, err)
	assert.Equal(t, 50, sample)
}

func TestOnEndedSurvivesRestart(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 1, 100)
	ended := 0
	require.NoError(t, s.OnEnded(func() { ended++ }))

	require.NoError(t, s.Start(0, 0, 0))
	ctx.Advance(0.05)
	require.NoError(t, s.Start(0, 0, 0))
	ctx.Advance(0.2)

	assert.Equal(t, 1, ended, "the replaced source does not report")
	assert.False(t, s.IsPlaying())
}

func TestLoadRebuildsGraph(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 1, 100)
	assert.Nil(t, s.merger, "mono goes straight to the panner")
	require.NotNil(t, s.splitter)
	assert.Equal(t, 2, s.splitter.NumberOfOutputs())

	require.NoError(t, s.Start(0, 0, 0))
	oldSplitter := s.splitter

	require.NoError(t, s.Load(testBuffer(3, 100)))
	assert.NotSame(t, oldSplitter, s.splitter)
	require.NotNil(t, s.merger)
	assert.Equal(t, 3, s.merger.NumberOfInputs())
	assert.Equal(t, 4, s.splitter.NumberOfOutputs())
	assert.False(t, s.IsPlaying(), "loading replaces the started source")

	splitter := s.splitter
	require.NoError(t, s.Load(testBuffer(3, 50)))
	assert.Same(t, splitter, s.splitter, "same channel count keeps the graph")

	require.NoError(t, s.Start(0, 0, 0))
	frame := ctx.Frame(s.Output(), 0, ctx.CurrentTime())
	require.Len(t, frame, 2)
	assert.NotZero(t, frame[0])
}

func TestStereoKeepsChannels(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 2, 1000)
	require.NotNil(t, s.merger, "stereo goes through a merger")
	assert.Equal(t, 2, s.merger.NumberOfInputs())

	require.NoError(t, s.Start(0, 0, 0))
	frame := ctx.Frame(s.Output(), 0, 0.1)
	require.Len(t, frame, 2)
	assert.InDelta(t, 0.1, frame[0], 1e-6)
	assert.InDelta(t, 0.2, frame[1], 1e-6, "index channel stays out of the mix")
}

func TestLoadEmptyChannels(t *testing.T) {
	t.Parallel()

	ctx := sim.New(rate)
	s := New(ctx)
	require.NoError(t, s.Load(&audio.Buffer{SampleRate: rate}))
	assert.Nil(t, s.splitter)
	assert.False(t, s.Node().(*sim.BufferSource).Connected())
	assert.ErrorIs(t, s.Load(nil), ErrNoBuffer)
}

func TestStartWithoutBuffer(t *testing.T) {
	t.Parallel()

	s := New(sim.New(rate))
	assert.ErrorIs(t, s.Start(0, 0, 0), ErrNoBuffer)
}

func TestOutputSignal(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 1, 1000)
	require.NoError(t, s.Connect(backend.ToNode(ctx.Destination())))
	require.NoError(t, s.Start(0, 0, 0))

	frame := ctx.Frame(ctx.Destination(), 0, 0.1)
	require.Len(t, frame, 2)
	assert.InDelta(t, 0.1*0.7071, frame[0], 1e-3, "centre pan")
	assert.InDelta(t, frame[0], frame[1], 1e-6)

	require.NoError(t, s.Disconnect())
	assert.Empty(t, ctx.Frame(ctx.Destination(), 0, 0.1))
}

func TestVolumeAndPan(t *testing.T) {
	t.Parallel()

	ctx := sim.New(rate)
	s := New(ctx, WithVolume(0.5))
	assert.InDelta(t, 0.5, s.Gain().Value(), 1e-12)

	out, err := s.SetVolume(1, automation.WithShape(automation.Linear), automation.WithDuration(1))
	require.NoError(t, err)
	assert.Equal(t, automation.WarnNone, out.Warning)
	ctx.Advance(0.5)
	assert.InDelta(t, 0.75, s.Gain().Value(), 1e-9)

	_, err = s.SetPan(-3, automation.WithDuration(0))
	require.NoError(t, err)
	assert.InDelta(t, -1, s.panner.Pan().Value(), 1e-12)
}

func TestClone(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 2, 100)
	_, err := s.SetVolume(0.3, automation.WithDuration(0))
	require.NoError(t, err)

	c, err := s.Clone()
	require.NoError(t, err)
	assert.NotSame(t, s.gain, c.gain)
	assert.NotSame(t, s.Buffer(), c.Buffer())
	assert.Equal(t, s.Buffer(), c.Buffer())
	assert.InDelta(t, 0.3, c.Gain().Value(), 1e-12)

	require.NoError(t, c.Start(0, 0, 0))
	ctx.Advance(0.01)
	assert.True(t, c.IsPlaying())
	assert.False(t, s.IsPlaying())

	s.Destroy()
	assert.True(t, c.IsPlaying(), "clone shares no nodes")
}

type fakeCache struct {
	cached  map[string]*audio.Buffer
	fetched int
	err     error
}

func (f *fakeCache) GetAudio(path string) *audio.Buffer { return f.cached[path] }

func (f *fakeCache) Fetch(context.Context, string) (*audio.Buffer, error) {
	f.fetched++
	if f.err != nil {
		return nil, f.err
	}
	return testBuffer(1, 10), nil
}

func TestLoadPath(t *testing.T) {
	t.Parallel()

	ctx := sim.New(rate)
	assert.ErrorIs(t, New(ctx).LoadPath(context.Background(), "a.wav"), ErrNoCache)

	fc := &fakeCache{cached: map[string]*audio.Buffer{"hit.wav": testBuffer(2, 20)}}
	s := New(ctx, WithCache(fc))

	require.NoError(t, s.LoadPath(context.Background(), "hit.wav"))
	assert.Equal(t, 3, s.Buffer().NumberOfChannels())
	assert.Zero(t, fc.fetched)

	require.NoError(t, s.LoadPath(context.Background(), "miss.wav"))
	assert.Equal(t, 2, s.Buffer().NumberOfChannels())
	assert.Equal(t, 1, fc.fetched)

	fc.err = errors.New("decode failed")
	err := s.LoadPath(context.Background(), "bad.wav")
	assert.ErrorContains(t, err, "decode failed")
}

func TestTryLoadPath(t *testing.T) {
	t.Parallel()

	ctx := sim.New(rate)
	_, err := New(ctx).TryLoadPath("a.wav")
	assert.ErrorIs(t, err, ErrNoCache)

	fc := &fakeCache{cached: map[string]*audio.Buffer{"hit.wav": testBuffer(2, 20)}}
	s := New(ctx, WithCache(fc))

	ok, err := s.TryLoadPath("miss.wav")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, s.Buffer())
	assert.Zero(t, fc.fetched, "never waits on the cache")

	ok, err = s.TryLoadPath("hit.wav")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, s.Buffer().NumberOfChannels())
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	ctx, s := newLoaded(t, 2, 1000)
	require.NoError(t, s.Start(0, 0, 0))
	node := s.Node().(*sim.BufferSource)
	require.NoError(t, s.Start(0.5, 0, 0))
	retired := node
	pending := ctx.PendingTimers()

	s.Destroy()
	s.Destroy()

	assert.True(t, s.Destroyed())
	assert.False(t, retired.Connected())
	assert.Less(t, ctx.PendingTimers(), pending, "teardown timers cancelled")
	assert.False(t, s.IsPlaying())

	calls := map[string]error{
		"Load":       s.Load(testBuffer(1, 10)),
		"Start":      s.Start(0, 0, 0),
		"Stop":       s.Stop(0),
		"LoadPath":   s.LoadPath(context.Background(), "x"),
		"Connect":    s.Connect(backend.ToNode(ctx.Destination())),
		"Disconnect": s.Disconnect(),
		"OnEnded":    s.OnEnded(nil),
	}
	_, calls["Position"] = s.Position()
	_, calls["PositionSample"] = s.PositionSample()
	_, calls["Clone"] = s.Clone()
	_, calls["SetVolume"] = s.SetVolume(1)
	_, calls["SetPan"] = s.SetPan(0)

	for name, err := range calls {
		assert.ErrorIs(t, err, ErrDestroyed, name)
		assert.ErrorIs(t, err, errs.ErrInvalidState, name)
	}
	assert.Nil(t, s.Gain())
	assert.Nil(t, s.Output())
	assert.Nil(t, s.Node())

	ctx.Advance(5)
}
