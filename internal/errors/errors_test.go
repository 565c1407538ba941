package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapKeepsCode(t *testing.T) {
	cause := fmt.Errorf("seat %d", 2)
	err := ErrIllegalClaim.Wrap(cause)

	assert.Equal(t, CodeIllegalClaim, GetCode(err))
	assert.Equal(t, "不能吃碰杠这张牌", GetMessage(err))
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrIllegalClaim))
	assert.False(t, Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), "seat 2")
}

func TestAppError_ErrorsIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("discard: %w", ErrInvalidTransition.Withf("phase %s", "draw"))

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.False(t, errors.Is(err, ErrNotAWinningHand))
}

func TestGetCode_PlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, CodeServerError, GetCode(err))
	assert.Equal(t, "服务器内部错误", GetMessage(err))
}
