package table

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// ActionTimer is the single turn timer of a table. Starting it replaces any
// running timer, and every start or cancel bumps a generation counter so a
// callback that was already in flight can tell it is stale.
type ActionTimer struct {
	clock quartz.Clock

	mu       sync.Mutex
	timer    *quartz.Timer
	gen      uint64
	playerID string
	deadline time.Time
}

// NewActionTimer creates a stopped timer on clock.
func NewActionTimer(clock quartz.Clock) *ActionTimer {
	return &ActionTimer{clock: clock}
}

// Start arms the timer for playerID. onExpire runs on its own goroutine with
// the generation it was started with.
func (t *ActionTimer) Start(playerID string, d time.Duration, onExpire func(gen uint64)) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	t.playerID = playerID
	t.deadline = t.clock.Now().Add(d)
	t.timer = t.clock.AfterFunc(d, func() {
		onExpire(gen)
	}, "action", playerID)
	return gen
}

// Cancel stops the timer. A callback already running sees a stale
// generation.
func (t *ActionTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.gen++
}

func (t *ActionTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.playerID = ""
	t.deadline = time.Time{}
}

// Current reports whether gen is the running timer.
func (t *ActionTimer) Current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil && gen == t.gen
}

// Expired marks gen as fired. It returns false when gen was superseded.
func (t *ActionTimer) Expired(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil || gen != t.gen {
		return false
	}
	t.timer = nil
	t.playerID = ""
	t.deadline = time.Time{}
	return true
}

// Active reports whether the timer is running and for whom.
func (t *ActionTimer) Active() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playerID, t.timer != nil
}

// Remaining returns the time left before expiry, zero when stopped.
func (t *ActionTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		return 0
	}
	return max(t.deadline.Sub(t.clock.Now()), 0)
}
