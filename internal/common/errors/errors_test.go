package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos  []string
	errors []string
	fields []map[string]interface{}
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.infos = append(l.infos, msg)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.errors = append(l.errors, msg)
	l.fields = append(l.fields, fields)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil is success", err: nil, want: ExitSuccess},
		{name: "connection unavailable", err: NewConnectionUnavailableError("changeDeck", io.EOF), want: ExitFailure},
		{name: "remote operation failed", err: NewRemoteOperationFailedError("addNote", "model was not found"), want: ExitFailure},
		{name: "malformed input", err: NewMalformedInputError("bad json", nil), want: ExitAbnormal},
		{name: "malformed response", err: NewMalformedResponseError("addNote", "not json"), want: ExitAbnormal},
		{name: "missing arguments", err: NewMissingArgumentsError(1, 3), want: ExitAbnormal},
		{name: "transport failed", err: NewTransportFailedError("addNote", io.ErrClosedPipe), want: ExitAbnormal},
		{name: "config invalid", err: NewConfigInvalidError(fmt.Errorf("bad url")), want: ExitAbnormal},
		{name: "foreign error", err: fmt.Errorf("boom"), want: ExitAbnormal},
		{name: "wrapped outcome", err: fmt.Errorf("submit: %w", NewRemoteOperationFailedError("addNote", "")), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	err := NewTransportFailedError("changeDeck", io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "TRANSPORT_FAILED")
	assert.Contains(t, err.Error(), "changeDeck")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeMalformedInput, CodeOf(NewMalformedInputError("x", nil)))
	assert.Equal(t, ErrCodeInternal, CodeOf(fmt.Errorf("plain")))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "TRANSPORT", GetErrorCategory(ErrCodeConnectionUnavailable))
	assert.Equal(t, "TRANSPORT", GetErrorCategory(ErrCodeTransportFailed))
	assert.Equal(t, "REMOTE", GetErrorCategory(ErrCodeRemoteOperationFailed))
	assert.Equal(t, "REMOTE", GetErrorCategory(ErrCodeMalformedResponse))
	assert.Equal(t, "INPUT", GetErrorCategory(ErrCodeMalformedInput))
	assert.Equal(t, "INPUT", GetErrorCategory(ErrCodeMissingArguments))
	assert.Equal(t, "CONFIG", GetErrorCategory(ErrCodeConfigInvalid))
	assert.Equal(t, "INTERNAL", GetErrorCategory(ErrCodeInternal))
}

func TestErrorHandler_Handle(t *testing.T) {
	t.Run("outcome failures log at info", func(t *testing.T) {
		log := &recordingLogger{}
		h := NewErrorHandler(log)

		code := h.Handle(NewConnectionUnavailableError("changeDeck", io.EOF))

		assert.Equal(t, ExitFailure, code)
		require.Len(t, log.infos, 1)
		assert.Empty(t, log.errors)
		assert.Equal(t, "changeDeck", log.fields[0]["action"])
	})

	t.Run("boundary failures log at error", func(t *testing.T) {
		log := &recordingLogger{}
		h := NewErrorHandler(log)

		code := h.Handle(NewMalformedInputError("unexpected end of JSON input", nil))

		assert.Equal(t, ExitAbnormal, code)
		require.Len(t, log.errors, 1)
		assert.Equal(t, "MALFORMED_INPUT", log.fields[0]["errorCode"])
	})

	t.Run("foreign errors are normalized", func(t *testing.T) {
		log := &recordingLogger{}
		h := NewErrorHandler(log)

		code := h.Handle(fmt.Errorf("unexpected"))

		assert.Equal(t, ExitAbnormal, code)
		assert.Equal(t, "INTERNAL_ERROR", log.fields[0]["errorCode"])
	})

	t.Run("nil error", func(t *testing.T) {
		h := NewErrorHandler(nil)
		assert.Equal(t, ExitSuccess, h.Handle(nil))
	})
}
