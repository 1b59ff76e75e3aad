package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading quiz: %w", NotFound("quiz not found"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, "quiz not found", Message(err))
}

func TestKindOfForeignError(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal server error", Message(err))
	assert.False(t, Is(nil, KindInternal))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("bad base64")
	err := Wrap(KindTokenInvalid, "Token is not Valid or Expired", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Token is not Valid or Expired: bad base64", err.Error())
}
