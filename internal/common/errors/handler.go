package errors

import (
	"time"
)

// ErrorHandler turns the final error of a run into an exit code, logging it on the way.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err, logs it and returns the exit code for the process.
// Card outcomes (unreachable endpoint, null result) are logged at info so the
// default log level keeps the normal failure path silent.
func (h *ErrorHandler) Handle(err error) int {
	if err == nil {
		return ExitSuccess
	}

	stdErr := h.normalizeError(err)
	h.logError(stdErr)
	return ExitCode(stdErr)
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func (h *ErrorHandler) logError(stdErr *StandardError) {
	if h.logger == nil {
		return
	}

	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"exitCode":      ExitCode(stdErr),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if IsAbnormal(stdErr.Code) {
		h.logger.Error("Card submission aborted", fields)
		return
	}
	h.logger.Info("Card not added", fields)
}
