package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Execution setup and launch errors
const (
	// ErrCodeSetupFailed indicates a pipe, descriptor or timer could not be allocated.
	ErrCodeSetupFailed ErrorCode = "SETUP_FAILED"
	// ErrCodeLaunchFailed indicates the child could not be created or its image replaced.
	ErrCodeLaunchFailed ErrorCode = "LAUNCH_FAILED"
	// ErrCodeNotFound indicates the executable could not be resolved.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Execution runtime errors
const (
	// ErrCodeIOFailed indicates an unrecoverable read or write on a child pipe.
	ErrCodeIOFailed ErrorCode = "IO_FAILED"
	// ErrCodeTimeout indicates the child exceeded its time budget and was killed.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeCanceled indicates the caller's context was canceled and the child was killed.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Termination errors, only raised when the caller asks for them
const (
	// ErrCodeNonZeroExit indicates the child exited cleanly with a non-zero status.
	ErrCodeNonZeroExit ErrorCode = "NONZERO_EXIT"
	// ErrCodeSignaled indicates the child was terminated by a signal.
	ErrCodeSignaled ErrorCode = "SIGNALED"
)

// Validation and internal errors
const (
	// ErrCodeInvalidInput indicates the request is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeSetupFailed: true,
	ErrCodeTimeout:     true,
	ErrCodeIOFailed:    true,
}

// IsRetryableCode returns true if running the same command again may succeed.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
