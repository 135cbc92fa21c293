package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "app not found",
			wantStr: "[NOT_FOUND] app not found",
		},
		{
			name:    "duplicate_key_error",
			code:    errors.ErrDuplicateKey,
			message: "duplicate keys in apps.toml",
			wantStr: "[DUPLICATE_KEY] duplicate keys in apps.toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrUnknownSource, "unknown source %q", "apt")
	assert.Equal(t, `unknown source "apt"`, err.Message)
	assert.Equal(t, errors.ErrUnknownSource, err.Code)
}

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrFileWrite, "ignored"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrFileWrite, "ignored %d", 1))
	})

	t.Run("wraps and unwraps", func(t *testing.T) {
		base := fmt.Errorf("disk full")
		err := errors.Wrapf(base, errors.ErrFileWrite, "cannot write %s", "apps.toml")

		assert.Equal(t, "[FILE_WRITE] cannot write apps.toml: disk full", err.Error())
		assert.Same(t, base, stderrors.Unwrap(err))
		assert.True(t, stderrors.Is(err, base))
	})
}

func TestIsComparesCodes(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.New(errors.ErrCommandFailed, "brew exploded"))

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrCommandFailed, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrParse, "")))
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	assert.False(t, errors.IsErrorCode(fmt.Errorf("plain"), errors.ErrCommandFailed))
}

func TestGetErrorCodeAndDetails(t *testing.T) {
	err := errors.New(errors.ErrMissingExecutable, "mas not found").
		WithDetail("executable", "mas").
		WithDetails(map[string]interface{}{"source": "mas"})

	assert.Equal(t, errors.ErrMissingExecutable, errors.GetErrorCode(err))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(fmt.Errorf("plain")))

	details := errors.GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "mas", details["executable"])
	assert.Equal(t, "mas", details["source"])
	assert.Nil(t, errors.GetErrorDetails(fmt.Errorf("plain")))
}

func TestWithDetailInitializesMap(t *testing.T) {
	err := &errors.AppError{Code: errors.ErrInternal, Message: "boom"}
	err.WithDetail("k", 1)
	assert.Equal(t, 1, err.Details["k"])
}

func TestUserMessage(t *testing.T) {
	inner := errors.New(errors.ErrCommandFailed, "brew install --cask foo failed")
	outer := errors.Wrap(inner, errors.ErrInternal, "installing foo")

	assert.Equal(t, "installing foo: brew install --cask foo failed", errors.UserMessage(outer))
	assert.Equal(t, "plain", errors.UserMessage(fmt.Errorf("plain")))
}
