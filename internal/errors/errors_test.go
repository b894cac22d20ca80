package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/learnflow/internal/errors"
)

func TestAppError_WrapsUnderlying(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.NewInternalError(cause)

	assert.Equal(t, 500, err.Status)
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "disk full")
}

func TestAs_FindsAppErrorInChain(t *testing.T) {
	wrapped := fmt.Errorf("complete session: %w", errors.NewNotFoundError("session", "s1"))

	appErr, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
	assert.Equal(t, 404, appErr.Status)

	_, ok = errors.As(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestIsContractViolation(t *testing.T) {
	assert.True(t, errors.IsContractViolation(errors.NewContractError(stderrors.New("unknown card type"))))
	assert.False(t, errors.IsContractViolation(errors.NewBadRequestError("bad")))
	assert.False(t, errors.IsContractViolation(nil))
}
