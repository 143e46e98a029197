//go:build unix

package process

import (
	"context"
	"syscall"

	goerrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/logger"
)

func execute(ctx context.Context, cmd *Command, inst *instrumentation, log *logger.Logger) (*Result, error) {
	opts := cmd.Options
	log.Debug("executing command", logger.Fields(
		logger.FieldProgram, cmd.Binary,
		logger.FieldArgs, cmd.Args,
		logger.FieldTimeout, cmd.Timeout.String(),
	))

	path, err := LookPath(cmd.Binary, cmd.SearchPath)
	if err != nil {
		log.Debug("command not found on the PATH", logger.Fields(logger.FieldProgram, cmd.Binary))
		res := newResult(Termination{Kind: KindNotFound, Code: StatusNotFound}, 0, "", "")
		if opts.FailOnNonzeroExit {
			return res, notFoundError(cmd.Binary, err, res)
		}
		return res, nil
	}

	env := buildEnv(cmd.Env, opts.MergeEnvironment)
	hasInput := cmd.Input != nil

	pipes, err := newPipeSet(opts.stderrMode(), hasInput)
	if err != nil {
		log.Error("failed to set up child pipes", logger.ErrorFields("pipe", err))
		return nil, newError(goerrors.Wrap(err), nil)
	}
	defer pipes.close()

	pid, err := launch(path, cmd.argv(), env, cmd.Dir, pipes.childFiles())
	if err != nil {
		log.Error("failed to launch child", logger.Fields(logger.FieldProgram, path, logger.FieldError, err.Error()))
		res := newResult(Termination{Kind: KindLaunchFailed, Code: StatusLaunchFailed}, 0, "", "")
		return res, launchError(cmd.Binary, err, res)
	}
	inst.launched(pid)
	pipes.closeChildEnds(hasInput)

	c := &child{pid: pid}
	defer c.reap(true, log)

	al := armAlarm(cmd.Timeout)
	defer al.disarm()

	stdout := newStream("stdout", pipes.stdoutRead, cmd.OnStdout)
	streams := []*stream{stdout}
	var stderr *stream
	if pipes.stderrRead != nil {
		stderr = newStream("stderr", pipes.stderrRead, cmd.OnStderr)
		streams = append(streams, stderr)
	}
	var in *inputPipe
	if hasInput {
		in = &inputPipe{fd: pipes.stdinWrite, data: cmd.Input}
	}

	outcome, loopErr := multiplex(ctx, streams, in, al, log)
	pipes.stdinWrite.close()
	pipes.closeReadEnds()
	if loopErr == nil && outcome == loopDone && (al.armed() || ctx.Done() != nil) {
		// A child can close its pipes and keep running; the deadline still
		// covers it.
		outcome = c.await(ctx, al, log)
	}
	term := c.reap(loopErr != nil || outcome != loopDone, log)

	trim := opts.TrimOutput
	stdoutText, stderrText := stdout.text(trim), ""
	if stderr != nil {
		stderrText = stderr.text(trim)
	}

	switch {
	case loopErr != nil:
		res := newResult(term, pid, stdoutText, stderrText)
		return res, newError(goerrors.Wrap(loopErr), res)

	case outcome == loopTimedOut:
		sig := term.Signal
		if term.Kind != KindSignaled {
			sig = syscall.SIGKILL
		}
		log.Debug("command timed out", logger.Fields(logger.FieldPID, pid, logger.FieldTimeout, cmd.Timeout.String()))
		res := newResult(Termination{Kind: KindTimedOut, Signal: sig}, pid, stdoutText, stderrText)
		return res, timeoutError(cmd.Binary, cmd.Timeout, res)

	case outcome == loopCanceled:
		res := newResult(term, pid, stdoutText, stderrText)
		return res, canceledError(context.Cause(ctx), res)

	case outcome == loopStopped:
		// The kill was requested by the caller's callback, so the failure
		// options do not apply to it.
		log.Debug("reading stopped by callback", logger.Fields(logger.FieldPID, pid))
		return newResult(term, pid, stdoutText, stderrText), nil
	}

	return conclude(cmd, term, pid, stdoutText, stderrText, log)
}
