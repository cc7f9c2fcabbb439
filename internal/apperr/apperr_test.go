package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsExistingClassification(t *testing.T) {
	inner := New(KindAuth, "session expired")
	wrapped := Wrap(KindRead, "loading schedules", fmt.Errorf("ctx: %w", inner))

	assert.Equal(t, KindAuth, KindOf(wrapped))
	assert.Equal(t, "session expired", Message(wrapped))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(KindWrite, "saving", nil))
}

func TestKindOfUnclassified(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "boom", Message(err))
	assert.False(t, Is(err, KindRead))
}

func TestIs(t *testing.T) {
	err := Wrap(KindWrite, "could not save entry", errors.New("disk full"))

	assert.True(t, Is(err, KindWrite))
	assert.False(t, Is(err, KindRead))
	assert.Equal(t, "could not save entry", Message(err))
	assert.Contains(t, err.Error(), "disk full")
}
