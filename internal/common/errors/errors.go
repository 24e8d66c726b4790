// Package errors provides standardized error handling for card submission.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Outcome failures: the program ran as intended and the card was not added.
	ErrCodeConnectionUnavailable ErrorCode = "CONNECTION_UNAVAILABLE"
	ErrCodeRemoteOperationFailed ErrorCode = "REMOTE_OPERATION_FAILED"

	// Boundary failures: input, response or environment could not be used.
	ErrCodeMalformedInput    ErrorCode = "MALFORMED_INPUT"
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeMissingArguments  ErrorCode = "MISSING_ARGUMENTS"
	ErrCodeTransportFailed   ErrorCode = "TRANSPORT_FAILED"
	ErrCodeConfigInvalid     ErrorCode = "CONFIG_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConnectionUnavailableError reports that the remote endpoint could not be reached.
func NewConnectionUnavailableError(action string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConnectionUnavailable,
		Message:   "Remote endpoint unreachable",
		Details:   fmt.Sprintf("action: %s, error: %s", action, errorText(err)),
		Retryable: true,
		Metadata:  map[string]interface{}{"action": action},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewRemoteOperationFailedError reports a reachable endpoint answering with a null result.
func NewRemoteOperationFailedError(action, remoteError string) *StandardError {
	details := fmt.Sprintf("action: %s", action)
	if remoteError != "" {
		details = fmt.Sprintf("action: %s, remote error: %s", action, remoteError)
	}
	return &StandardError{
		Code:      ErrCodeRemoteOperationFailed,
		Message:   "Remote operation returned no result",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"action": action},
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedInputError creates a non-retryable error for unusable caller input.
func NewMalformedInputError(details string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedInput,
		Message:   "Malformed fields argument",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewMalformedResponseError creates a non-retryable error for an undecodable response body.
func NewMalformedResponseError(action, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedResponse,
		Message:   "Malformed response from remote endpoint",
		Details:   fmt.Sprintf("action: %s, %s", action, details),
		Retryable: false,
		Metadata:  map[string]interface{}{"action": action},
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingArgumentsError creates an error for an incomplete command line.
func NewMissingArgumentsError(got, want int) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingArguments,
		Message:   "Missing positional arguments",
		Details:   fmt.Sprintf("expected %d, got %d", want, got),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportFailedError wraps transport errors that are not connection failures.
func NewTransportFailedError(action string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailed,
		Message:   "Request to remote endpoint failed",
		Details:   fmt.Sprintf("action: %s, error: %s", action, errorText(err)),
		Retryable: false,
		Metadata:  map[string]interface{}{"action": action},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewConfigInvalidError wraps a configuration loading or validation failure.
func NewConfigInvalidError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   errorText(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// ==========================
// 3. Exit Code Mapping
// ==========================

const (
	ExitSuccess  = 0
	ExitFailure  = 1
	ExitAbnormal = 2
)

// ExitCodeMapping maps error codes to process exit codes. Codes missing from
// the map terminate abnormally.
var ExitCodeMapping = map[ErrorCode]int{
	ErrCodeConnectionUnavailable: ExitFailure,
	ErrCodeRemoteOperationFailed: ExitFailure,
	ErrCodeMalformedInput:        ExitAbnormal,
	ErrCodeMalformedResponse:     ExitAbnormal,
	ErrCodeMissingArguments:      ExitAbnormal,
	ErrCodeTransportFailed:       ExitAbnormal,
	ErrCodeConfigInvalid:         ExitAbnormal,
}

// ExitCode returns the process exit code for err; nil means success.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if code, ok := ExitCodeMapping[CodeOf(err)]; ok {
		return code
	}
	return ExitAbnormal
}

// ==========================
// 4. Utility Functions
// ==========================

// As extracts a StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := As(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsAbnormal reports whether the code is a boundary failure rather than a card outcome.
func IsAbnormal(code ErrorCode) bool {
	exit, ok := ExitCodeMapping[code]
	return !ok || exit == ExitAbnormal
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CONNECTION") || strings.HasPrefix(codeStr, "TRANSPORT"):
		return "TRANSPORT"
	case strings.HasPrefix(codeStr, "REMOTE") || strings.Contains(codeStr, "RESPONSE"):
		return "REMOTE"
	case strings.Contains(codeStr, "INPUT") || strings.Contains(codeStr, "ARGUMENTS"):
		return "INPUT"
	case strings.HasPrefix(codeStr, "CONFIG"):
		return "CONFIG"
	default:
		return "INTERNAL"
	}
}

func errorText(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
