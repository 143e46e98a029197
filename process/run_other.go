//go:build !unix

package process

import (
	"context"

	goerrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/logger"
)

// LookPath is only implemented on unix systems.
func LookPath(string, []string) (string, error) {
	return "", ErrNotFound
}

func execute(_ context.Context, cmd *Command, _ *instrumentation, _ *logger.Logger) (*Result, error) {
	return nil, newError(goerrors.New(goerrors.ErrCodeLaunchFailed,
		"child processes are only supported on unix systems").WithDetail("program", cmd.Binary), nil)
}
