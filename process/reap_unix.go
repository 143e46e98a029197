//go:build unix

package process

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kbukum/execkit/logger"
)

// child is a launched process that has not necessarily been reaped yet.
type child struct {
	pid    int
	reaped bool
	term   Termination
}

// reap collects the child's status exactly once; later calls return the
// first result. With kill, the whole process group is sent SIGKILL first so
// that descendants holding the pipes open go away too.
func (c *child) reap(kill bool, log *logger.Logger) Termination {
	if c.reaped {
		return c.term
	}
	c.reaped = true

	if kill {
		if err := unix.Kill(-c.pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
			log.Warn("failed to kill process group", logger.Fields(logger.FieldPID, c.pid, logger.FieldError, err.Error()))
		}
	}

	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(c.pid, &ws, 0, nil)
		if err == nil {
			break
		}
		if errors.Is(err, unix.EINTR) {
			continue
		}
		// ECHILD: someone else already collected it, typically a SIGCHLD
		// handler installed with SA_NOCLDWAIT. The status is lost.
		log.Debug("child status unavailable", logger.Fields(logger.FieldPID, c.pid, logger.FieldError, err.Error()))
		c.term = Termination{Kind: KindUnknown}
		return c.term
	}

	c.term = decodeWaitStatus(ws)
	return c.term
}

// firstAwaitDelay is the first pause between non-blocking status checks in
// await; it doubles up to expiryPollInterval.
const firstAwaitDelay = time.Millisecond

// await waits for a child whose pipes have all closed while still honoring
// the alarm and ctx. It returns loopDone once the child has been reaped, or
// loopTimedOut / loopCanceled with the child left running for reap to kill.
func (c *child) await(ctx context.Context, al *alarm, log *logger.Logger) loopResult {
	if c.reaped {
		return loopDone
	}

	delay := firstAwaitDelay
	timer := time.NewTimer(delay)
	defer timer.Stop()

	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(c.pid, &ws, unix.WNOHANG, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			log.Debug("child status unavailable", logger.Fields(logger.FieldPID, c.pid, logger.FieldError, err.Error()))
			c.reaped, c.term = true, Termination{Kind: KindUnknown}
			return loopDone
		case wpid == c.pid:
			c.reaped, c.term = true, decodeWaitStatus(ws)
			return loopDone
		}

		if al.fired() {
			return loopTimedOut
		}
		if ctx.Err() != nil {
			return loopCanceled
		}

		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		delay = min(delay*2, expiryPollInterval)
		timer.Reset(delay)
	}
}

func decodeWaitStatus(ws unix.WaitStatus) Termination {
	switch {
	case ws.Exited():
		return Termination{Kind: KindExited, Code: ws.ExitStatus()}
	case ws.Signaled():
		return Termination{Kind: KindSignaled, Signal: ws.Signal()}
	default:
		return Termination{Kind: KindUnknown}
	}
}
