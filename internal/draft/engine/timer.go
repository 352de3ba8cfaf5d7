package engine

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// tickInterval is how often the countdown reports remaining time.
const tickInterval = time.Second

// turnTimer is a single countdown bound to one (pickIndex, epoch). The
// epoch increments every time the room replaces its timer, so a tick or
// expiry from a superseded timer can never act on the wrong turn.
//
// The timer never restarts itself; a new turn always gets a fresh timer at
// full duration, and pause/resume carry the frozen remaining value through
// the room.
type turnTimer struct {
	clock     clockwork.Clock
	pickIndex int
	epoch     uint64
	remaining time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newTurnTimer(clock clockwork.Clock, pickIndex int, epoch uint64, remaining time.Duration) *turnTimer {
	return &turnTimer{
		clock:     clock,
		pickIndex: pickIndex,
		epoch:     epoch,
		remaining: remaining,
		stopCh:    make(chan struct{}),
	}
}

// run counts down, invoking tick every interval and expire exactly once at
// zero, then returns. Both callbacks only enqueue messages on the room
// inbox; all decisions stay with the room goroutine.
func (t *turnTimer) run(tick func(pickIndex int, epoch uint64, remaining time.Duration), expire func(pickIndex int, epoch uint64)) {
	ticker := t.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	remaining := t.remaining
	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.Chan():
			remaining -= tickInterval
			if remaining <= 0 {
				expire(t.pickIndex, t.epoch)
				return
			}
			tick(t.pickIndex, t.epoch, remaining)
		}
	}
}

// stop cancels the countdown. Safe to call more than once and after expiry.
func (t *turnTimer) stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}
