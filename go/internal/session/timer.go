package session

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// The session carries at most one outstanding deadline. Starting a timer
// replaces any existing one; expiry is delivered as a command on the same
// queue as client actions, so it applies with the same one-mutation-at-a-time
// guarantee. A generation counter guards the race where a timer fires just as
// an action cancels it: the queued expiry finds a newer generation and is
// rejected.

// startTimer must be called from inside the command loop.
func (c *Controller) startTimer(d time.Duration, expire func() Outcome) {
	c.cancelTimer()

	c.timerGen++
	gen := c.timerGen
	timer := c.clock.NewTimer(d)
	cancel := make(chan struct{})
	c.timer = timer
	c.timerCancel = cancel

	end := c.clock.Now().Add(d)
	c.st.timerEnd = &end

	go func() {
		select {
		case <-timer.Chan():
			c.enqueue(func() Outcome {
				if gen != c.timerGen {
					return rejected(ReasonTimerSuperseded)
				}
				c.timer = nil
				c.timerCancel = nil
				c.st.timerEnd = nil
				return expire()
			})
		case <-cancel:
		}
	}()

	log.Debug().
		Time("deadline", end).
		Dur("duration", d).
		Msg("scheduled one-shot session timer")
}

// cancelTimer is idempotent; cancelling with no timer outstanding is a no-op.
// Must be called from inside the command loop.
func (c *Controller) cancelTimer() {
	if c.timer != nil {
		stopAndDrainTimer(c.timer)
		close(c.timerCancel)
		c.timer = nil
		c.timerCancel = nil
		log.Debug().Msg("cancelled session timer")
	}
	c.timerGen++
	c.st.timerEnd = nil
}

// stopAndDrainTimer safely stops a timer and drains its channel to prevent
// goroutine leaks, per the time.Timer.Stop() documentation.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
