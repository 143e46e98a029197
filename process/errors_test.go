package process

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	goerrors "github.com/kbukum/execkit/errors"
)

func TestError_Chain(t *testing.T) {
	res := newResult(Termination{Kind: KindExited, Code: 3}, 42, "out", "err")
	err := fmt.Errorf("running: %w", nonZeroExitError(res))

	pe, ok := AsError(err)
	if !ok {
		t.Fatal("expected *Error in the chain")
	}
	if pe.Status != 3 || pe.PID != 42 || pe.Stdout != "out" || pe.Stderr != "err" {
		t.Fatalf("unexpected error payload %+v", pe)
	}

	appErr, ok := goerrors.AsAppError(err)
	if !ok || appErr.Code != goerrors.ErrCodeNonZeroExit {
		t.Fatalf("expected the AppError to be reachable, got %v", appErr)
	}
	if appErr.Details["pid"] != 42 || appErr.Details["status"] != 3 {
		t.Fatalf("expected pid and status details, got %v", appErr.Details)
	}
}

func TestError_Constructors(t *testing.T) {
	res := newResult(Termination{Kind: KindSignaled, Signal: syscall.SIGKILL}, 7, "", "")
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		code goerrors.ErrorCode
	}{
		{"not found", notFoundError("x", ErrNotFound, nil), goerrors.ErrCodeNotFound},
		{"launch", launchError("x", cause, nil), goerrors.ErrCodeLaunchFailed},
		{"signal", signalError(res), goerrors.ErrCodeSignaled},
		{"timeout", timeoutError("x", time.Second, res), goerrors.ErrCodeTimeout},
		{"canceled", canceledError(cause, res), goerrors.ErrCodeCanceled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, tc.err.Code)
			}
		})
	}

	if sig := signalError(res); sig.Signal != syscall.SIGKILL || sig.Status != 9 {
		t.Errorf("expected signal payload, got %v / %d", sig.Signal, sig.Status)
	}
	if !errors.Is(launchError("x", cause, nil), cause) {
		t.Error("expected the launch cause in the chain")
	}
	if msg := timeoutError("x", 2*time.Second, res).Error(); msg != "TIMEOUT: command timed out after 2s" {
		t.Errorf("unexpected message %q", msg)
	}
}
