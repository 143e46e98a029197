// Package errors provides the structured error type shared by execkit
// packages. Every failure carries a machine-readable ErrorCode, a message,
// optional details and the underlying cause, so callers can branch on the
// code with errors.As instead of matching strings.
package errors
