package process

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	goerrors "github.com/kbukum/execkit/errors"
)

// ErrNotFound is returned by LookPath when no executable matches.
var ErrNotFound = errors.New("executable not found")

// Error is returned for failed executions. It embeds the coded AppError and
// carries the status and whatever output was captured before the failure.
type Error struct {
	*goerrors.AppError
	// Status is the exit code or signal number, as in Result.Status.
	Status int
	// Signal is set for SIGNALED and TIMEOUT errors.
	Signal syscall.Signal
	// PID is the child's process id, zero if no child was created.
	PID int
	// Stdout and Stderr hold the output captured so far.
	Stdout string
	Stderr string
}

// Unwrap exposes the AppError so errors.As reaches it.
func (e *Error) Unwrap() error { return e.AppError }

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func newError(app *goerrors.AppError, res *Result) *Error {
	e := &Error{AppError: app}
	if res != nil {
		e.Status = res.Status
		e.Signal = res.Termination.Signal
		e.PID = res.PID
		e.Stdout = res.Stdout
		e.Stderr = res.Stderr
		if res.PID != 0 {
			app.WithDetail("pid", res.PID)
		}
		app.WithDetail("status", res.Status)
	}
	return e
}

func notFoundError(program string, cause error, res *Result) *Error {
	return newError(goerrors.NotFound(program).WithCause(cause), res)
}

func launchError(program string, cause error, res *Result) *Error {
	return newError(goerrors.LaunchFailed(program, cause), res)
}

func nonZeroExitError(res *Result) *Error {
	return newError(goerrors.Newf(goerrors.ErrCodeNonZeroExit,
		"child process returned non-zero exit status (%d)", res.Status), res)
}

func signalError(res *Result) *Error {
	return newError(goerrors.Newf(goerrors.ErrCodeSignaled,
		"child process was terminated by signal (%d)", res.Status), res)
}

func timeoutError(program string, timeout time.Duration, res *Result) *Error {
	app := goerrors.Timeout(program)
	app.Message = fmt.Sprintf("command timed out after %s", timeout)
	return newError(app.WithDetail("timeout", timeout.String()), res)
}

func canceledError(cause error, res *Result) *Error {
	return newError(goerrors.New(goerrors.ErrCodeCanceled, "command canceled").WithCause(cause), res)
}
