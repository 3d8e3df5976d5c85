package binvec

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpError(t *testing.T) {
	err := newError("search", KindInvalidArgument, "negative count %d", -1)

	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
	assert.Equal(t, "search: invalid argument: negative count -1", err.Error())

	var oe *OpError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &oe))
	assert.Equal(t, "search", oe.Op)
}

func TestWrapBackend(t *testing.T) {
	assert.NoError(t, wrapBackend("add", nil))

	cause := fmt.Errorf("flat: id 3: %w", ErrNotFound)
	err := wrapBackend("reconstruct", cause)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Equal(t, "reconstruct: not found: backend: flat: id 3: not found", err.Error())

	opaque := wrapBackend("add", errors.New("disk full"))
	assert.Equal(t, KindUnknown, KindOf(opaque))
	assert.Equal(t, "add: failed: backend: disk full", opaque.Error())

	// Already classified errors pass through.
	inner := newError("add", KindNotTrained, "")
	assert.Same(t, inner, wrapBackend("add", inner))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindNotSupported, KindOf(ErrNotSupported))
	assert.Equal(t, KindIncompatibleMerge, KindOf(fmt.Errorf("x: %w", ErrIncompatibleMerge)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
	assert.Equal(t, "NotImplemented", KindNotImplemented.String())
	assert.Equal(t, "Unknown(42)", ErrorKind(42).String())
}
