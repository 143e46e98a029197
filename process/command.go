package process

import (
	"time"
)

// ChunkFunc receives each chunk read from a child stream, in the order the
// child produced it. The slice is only valid for the duration of the call.
// Returning false stops reading all streams immediately.
type ChunkFunc func(chunk []byte) bool

// Options are the behavior flags of a single execution.
type Options struct {
	// MergeEnvironment starts the child's environment from the current one.
	MergeEnvironment bool `yaml:"merge_environment" mapstructure:"merge_environment"`
	// RedirectStderrToStdout sends the child's stderr into the stdout pipe.
	RedirectStderrToStdout bool `yaml:"redirect_stderr_to_stdout" mapstructure:"redirect_stderr_to_stdout"`
	// RedirectStderrToNull discards the child's stderr.
	// Ignored when RedirectStderrToStdout is set.
	RedirectStderrToNull bool `yaml:"redirect_stderr_to_null" mapstructure:"redirect_stderr_to_null"`
	// TrimOutput strips leading and trailing whitespace from captured output.
	TrimOutput bool `yaml:"trim_output" mapstructure:"trim_output"`
	// FailOnNonzeroExit returns an error for a non-zero exit or an unresolved program.
	FailOnNonzeroExit bool `yaml:"fail_on_nonzero_exit" mapstructure:"fail_on_nonzero_exit"`
	// FailOnSignal returns an error when the child is terminated by a signal.
	FailOnSignal bool `yaml:"fail_on_signal" mapstructure:"fail_on_signal"`
}

// merge returns the union of both flag sets.
func (o Options) merge(other Options) Options {
	return Options{
		MergeEnvironment:       o.MergeEnvironment || other.MergeEnvironment,
		RedirectStderrToStdout: o.RedirectStderrToStdout || other.RedirectStderrToStdout,
		RedirectStderrToNull:   o.RedirectStderrToNull || other.RedirectStderrToNull,
		TrimOutput:             o.TrimOutput || other.TrimOutput,
		FailOnNonzeroExit:      o.FailOnNonzeroExit || other.FailOnNonzeroExit,
		FailOnSignal:           o.FailOnSignal || other.FailOnSignal,
	}
}

type stderrMode int

const (
	stderrPipe stderrMode = iota
	stderrToStdout
	stderrToNull
)

func (o Options) stderrMode() stderrMode {
	switch {
	case o.RedirectStderrToStdout:
		return stderrToStdout
	case o.RedirectStderrToNull:
		return stderrToNull
	default:
		return stderrPipe
	}
}

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via SearchPath or PATH).
	Binary string `validate:"required"`
	// Args are the command-line arguments, not including the program name.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is the child's environment on top of the merged one, if any.
	// LC_ALL and LANG default to C unless set here.
	Env map[string]string
	// Input is written to the child's stdin. A nil Input closes stdin right
	// after launch so the child sees end-of-file immediately.
	Input []byte
	// Options are the behavior flags.
	Options Options
	// Timeout bounds the wall-clock run time. Zero means no timeout.
	Timeout time.Duration `validate:"gte=0"`
	// SearchPath lists directories to resolve Binary in. Nil means $PATH.
	SearchPath []string
	// OnStdout and OnStderr receive output chunks as they arrive.
	OnStdout ChunkFunc
	OnStderr ChunkFunc
}

// argv returns the program name followed by the arguments.
func (c *Command) argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Binary)
	return append(argv, c.Args...)
}
