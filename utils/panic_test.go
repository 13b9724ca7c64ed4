package utils //nolint:revive // utils is an appropriate package name for utility functions

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warpline/timebox/errors"
)

func TestGetPanicRecoveryError(t *testing.T) {
	t.Parallel()

	t.Run("nil panic value yields nil", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, GetPanicRecoveryError(nil, nil))
	})

	t.Run("wraps error panic values", func(t *testing.T) {
		t.Parallel()

		original := stderrors.New("original") //nolint:err113

		err := GetPanicRecoveryError(original, nil)
		require.Error(t, err)
		require.ErrorIs(t, err, errors.ErrPanicRecovery)
		require.ErrorIs(t, err, original)
	})

	t.Run("formats non-error panic values", func(t *testing.T) {
		t.Parallel()

		err := GetPanicRecoveryError("something broke", nil)
		require.Error(t, err)
		require.ErrorIs(t, err, errors.ErrPanicRecovery)
		assert.Contains(t, err.Error(), "something broke")
	})

	t.Run("appends the stack trace when provided", func(t *testing.T) {
		t.Parallel()

		stack := []byte("goroutine 7 [running]:\nmain.main()")

		err := GetPanicRecoveryError("kaput", stack)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stack trace:")
		assert.Contains(t, err.Error(), "goroutine 7")
	})

	t.Run("handles arbitrary panic values", func(t *testing.T) {
		t.Parallel()

		err := GetPanicRecoveryError(42, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "42")
	})
}
