// SPDX-License-Identifier: EPL-2.0

package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	c := New(0)
	assert.Equal(t, float64(DefaultSampleRate), c.SampleRate())
	assert.Zero(t, c.CurrentTime())
	require.NotNil(t, c.Destination())
	assert.Equal(t, 1, c.Destination().NumberOfInputs())
}

func TestAdvanceRunsTimersInOrder(t *testing.T) {
	t.Parallel()

	c := New(48000)
	var order []string
	var seenAt []float64

	record := func(name string) func() {
		return func() {
			order = append(order, name)
			seenAt = append(seenAt, c.CurrentTime())
		}
	}
	c.AfterFunc(0.3, record("c"))
	c.AfterFunc(0.1, record("a"))
	c.AfterFunc(0.1, record("b"))
	c.AfterFunc(2, record("late"))

	c.Advance(1)

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.InDeltaSlice(t, []float64{0.1, 0.1, 0.3}, seenAt, 1e-12)
	assert.InDelta(t, 1.0, c.CurrentTime(), 1e-12)
	assert.Equal(t, 1, c.PendingTimers())
}

func TestTimerScheduledFromCallback(t *testing.T) {
	t.Parallel()

	c := New(48000)
	fired := 0.0
	c.AfterFunc(0.2, func() {
		c.AfterFunc(0.2, func() { fired = c.CurrentTime() })
	})

	c.Advance(0.5)
	assert.InDelta(t, 0.4, fired, 1e-12)
}

func TestTimerStop(t *testing.T) {
	t.Parallel()

	c := New(48000)
	ran := false
	tm := c.AfterFunc(0.1, func() { ran = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	c.Advance(1)
	assert.False(t, ran)

	tm = c.AfterFunc(0.1, func() {})
	c.Advance(1)
	assert.False(t, tm.Stop(), "stop after firing")
}

func TestAdvanceNegative(t *testing.T) {
	t.Parallel()

	c := New(48000)
	c.Advance(1)
	c.Advance(-5)
	assert.InDelta(t, 1.0, c.CurrentTime(), 1e-12)
}
