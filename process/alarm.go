package process

import (
	"sync/atomic"
	"time"
)

// expiryPollInterval bounds each wait of the I/O loop while a deadline is
// pending, so expiry is noticed within this delay.
const expiryPollInterval = 500 * time.Millisecond

// alarm is a one-shot wall-clock timer owned by a single call. Its callback
// does nothing but set the expiry flag; the I/O loop polls the flag.
type alarm struct {
	timer   *time.Timer
	expired atomic.Bool
}

// armAlarm schedules expiry after d. A non-positive d returns an alarm that
// never fires.
func armAlarm(d time.Duration) *alarm {
	a := &alarm{}
	if d > 0 {
		a.timer = time.AfterFunc(d, func() { a.expired.Store(true) })
	}
	return a
}

func (a *alarm) armed() bool {
	return a.timer != nil
}

func (a *alarm) fired() bool {
	return a.expired.Load()
}

// disarm stops the timer and clears the flag. Safe to call more than once.
func (a *alarm) disarm() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.expired.Store(false)
}
