package process

import (
	"fmt"
	"syscall"
	"time"
)

// Kind is the variant of a Termination.
type Kind int

const (
	// KindUnknown means the status could not be collected.
	KindUnknown Kind = iota
	// KindExited means the child exited normally with Code.
	KindExited
	// KindSignaled means the child was terminated by Signal.
	KindSignaled
	// KindTimedOut means the timeout expired and the process group was killed.
	KindTimedOut
	// KindLaunchFailed means the child could not be created or its image replaced.
	KindLaunchFailed
	// KindNotFound means the program could not be resolved.
	KindNotFound
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindExited:       "exited",
	KindSignaled:     "signaled",
	KindTimedOut:     "timed_out",
	KindLaunchFailed: "launch_failed",
	KindNotFound:     "not_found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Termination describes how a child ended. Exactly one of Code (KindExited,
// KindNotFound) or Signal (KindSignaled, KindTimedOut) is meaningful.
type Termination struct {
	Kind   Kind           `json:"kind" yaml:"kind"`
	Code   int            `json:"code,omitempty" yaml:"code,omitempty"`
	Signal syscall.Signal `json:"signal,omitempty" yaml:"signal,omitempty"`
}

// Status returns the exit code, or the signal number for signaled and timed
// out children, narrowed to the 0-255 range used for exit statuses.
func (t Termination) Status() int {
	switch t.Kind {
	case KindSignaled, KindTimedOut:
		return int(uint8(t.Signal))
	default:
		return int(uint8(t.Code))
	}
}

// Status codes synthesized when no child ran.
const (
	StatusNotFound     = 127
	StatusLaunchFailed = 126
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Success is true only for a clean zero exit.
	Success bool `json:"success" yaml:"success"`
	// Stdout is the captured standard output.
	Stdout string `json:"stdout" yaml:"stdout"`
	// Stderr is the captured standard error.
	Stderr string `json:"stderr" yaml:"stderr"`
	// Status is the exit code or signal number, see Termination.Status.
	Status int `json:"status" yaml:"status"`
	// Termination is the decoded outcome.
	Termination Termination `json:"termination" yaml:"termination"`
	// PID is the child's process id, zero if no child was created.
	PID int `json:"pid,omitempty" yaml:"pid,omitempty"`
	// ExecutionID correlates log lines and spans of this call.
	ExecutionID string `json:"execution_id" yaml:"execution_id"`
	// Duration is how long the call took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

func newResult(term Termination, pid int, stdout, stderr string) *Result {
	return &Result{
		Success:     term.Kind == KindExited && term.Code == 0,
		Stdout:      stdout,
		Stderr:      stderr,
		Status:      term.Status(),
		Termination: term,
		PID:         pid,
	}
}
