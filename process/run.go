package process

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/execkit/logger"
	"github.com/kbukum/execkit/validation"
)

// Run executes cmd and blocks until the child has terminated and been
// reaped, the timeout has expired, or ctx is done.
//
// A result is returned whenever a child was created or the program was not
// found, including alongside most errors. A timeout or cancellation is
// always an error; a non-zero exit, a signal or an unresolved program is an
// error only when the matching Options flag is set. Every error produced
// after validation is an *Error.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := validation.Validate(cmd); err != nil {
		return nil, err
	}
	if err := validateEnv(cmd.Env); err != nil {
		return nil, err
	}

	executionID := uuid.NewString()
	ctx = logger.ContextWithExecutionID(ctx, executionID)
	log := logger.Get("process").WithContext(ctx)

	ctx, inst := startInstrumentation(ctx, cmd.Binary, executionID, log)
	res, err := execute(ctx, &cmd, inst, log)
	elapsed := inst.finish(ctx, res, err)

	if res != nil {
		res.ExecutionID = executionID
		res.Duration = elapsed
	}
	if err != nil {
		log.Debug("command failed", logger.Fields(
			logger.FieldProgram, cmd.Binary,
			logger.FieldError, err.Error(),
			logger.FieldDuration, elapsed.Milliseconds(),
		))
	}
	return res, err
}

// conclude assembles the caller-visible result for a child that ran and
// applies the failure options.
func conclude(cmd *Command, term Termination, pid int, stdout, stderr string, log *logger.Logger) (*Result, error) {
	res := newResult(term, pid, stdout, stderr)
	opts := cmd.Options

	switch term.Kind {
	case KindExited:
		log.Debug("child exited", logger.Fields(logger.FieldPID, pid, logger.FieldStatus, term.Code))
		if term.Code != 0 && opts.FailOnNonzeroExit {
			return res, nonZeroExitError(res)
		}
	case KindSignaled:
		log.Debug("child was terminated by a signal", logger.Fields(logger.FieldPID, pid, logger.FieldSignal, int(term.Signal)))
		if opts.FailOnSignal {
			return res, signalError(res)
		}
	}
	return res, nil
}
