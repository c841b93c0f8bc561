package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		message string
	}{
		{
			name:    "InvalidInput",
			code:    InvalidInput,
			message: "bad bounds",
		},
		{
			name:    "UnknownParameterShape",
			code:    UnknownParameterShape,
			message: "unrecognized parameter shape",
		},
		{
			name:    "StorageFailed",
			code:    StorageFailed,
			message: "snapshot write failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)
			assert.Equal(t, tt.message, err.Error())

			var customErr *Error
			assert.True(t, stderrors.As(err, &customErr))
			assert.Equal(t, tt.code, customErr.Code())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("wraps and unwraps", func(t *testing.T) {
		original := stderrors.New("disk full")
		err := Wrap(original, StorageFailed, "snapshot write failed")

		assert.Equal(t, "snapshot write failed: disk full", err.Error())
		assert.Equal(t, original, stderrors.Unwrap(err))
	})

	t.Run("nil passthrough", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, StorageFailed, "ignored"))
	})
}

func TestWithFields(t *testing.T) {
	t.Run("adds fields to structured error", func(t *testing.T) {
		err := WithFields(
			New(UnknownParameterShape, "unrecognized parameter shape"),
			Fields{"handle": "layers"},
		)

		var customErr *Error
		assert.True(t, stderrors.As(err, &customErr))
		assert.Equal(t, "layers", customErr.Fields()["handle"])
		assert.Contains(t, err.Error(), "handle=layers")
	})

	t.Run("merges without mutating the original", func(t *testing.T) {
		base := WithFields(New(EvaluationFailed, "fitness failed"), Fields{"generation": 3})
		merged := WithFields(base, Fields{"candidate": "c-42"})

		var baseErr, mergedErr *Error
		assert.True(t, stderrors.As(base, &baseErr))
		assert.True(t, stderrors.As(merged, &mergedErr))
		assert.NotContains(t, baseErr.Fields(), "candidate")
		assert.Equal(t, "c-42", mergedErr.Fields()["candidate"])
		assert.Equal(t, 3, mergedErr.Fields()["generation"])
	})

	t.Run("wraps a plain error", func(t *testing.T) {
		err := WithFields(stderrors.New("boom"), Fields{"run": "r1"})

		var customErr *Error
		assert.True(t, stderrors.As(err, &customErr))
		assert.Equal(t, Unknown, customErr.Code())
	})

	t.Run("nil passthrough", func(t *testing.T) {
		assert.Nil(t, WithFields(nil, Fields{"ignored": true}))
	})
}

func TestIs(t *testing.T) {
	err := WithFields(New(ValidationFailed, "config rejected"), Fields{"field": "learning_factor"})

	assert.True(t, stderrors.Is(err, New(ValidationFailed, "anything")))
	assert.False(t, stderrors.Is(err, New(InvalidInput, "anything")))
	assert.False(t, stderrors.Is(err, stderrors.New("config rejected")))
}
