package table

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTimerExpires(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	timer := NewActionTimer(clock)

	var fired atomic.Uint64
	gen := timer.Start("a", 10*time.Second, func(g uint64) { fired.Store(g) })
	id, ok := timer.Active()
	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, 10*time.Second, timer.Remaining())

	clock.Advance(4 * time.Second).MustWait(testCtx(t))
	assert.Equal(t, 6*time.Second, timer.Remaining())
	assert.Zero(t, fired.Load())

	clock.Advance(6 * time.Second).MustWait(testCtx(t))
	assert.Equal(t, gen, fired.Load())
	assert.True(t, timer.Expired(gen))
	assert.False(t, timer.Expired(gen), "a generation expires once")

	_, ok = timer.Active()
	assert.False(t, ok)
	assert.Zero(t, timer.Remaining())
}

func TestActionTimerStartSupersedes(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	timer := NewActionTimer(clock)

	var calls atomic.Int32
	first := timer.Start("a", 10*time.Second, func(uint64) { calls.Add(1) })
	second := timer.Start("b", 10*time.Second, func(uint64) { calls.Add(1) })

	assert.NotEqual(t, first, second)
	assert.False(t, timer.Current(first))
	assert.True(t, timer.Current(second))
	assert.False(t, timer.Expired(first), "stale generation is ignored")

	d, w := clock.AdvanceNext()
	w.MustWait(testCtx(t))
	assert.Equal(t, 10*time.Second, d)
	assert.Equal(t, int32(1), calls.Load(), "only the latest timer fires")
}

func TestActionTimerCancel(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	timer := NewActionTimer(clock)

	var calls atomic.Int32
	gen := timer.Start("a", time.Second, func(uint64) { calls.Add(1) })
	timer.Cancel()

	assert.False(t, timer.Current(gen))
	_, ok := timer.Active()
	assert.False(t, ok)

	clock.Advance(2 * time.Second).MustWait(testCtx(t))
	assert.Zero(t, calls.Load())
}
