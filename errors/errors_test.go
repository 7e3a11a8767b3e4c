package errors_test

import (
	"errors"
	"testing"

	cerrors "github.com/dargueta/retrocompressor/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodecErrorWithMessage(t *testing.T) {
	err := cerrors.NewWithMessage(cerrors.BadHeader, "bad signature")
	assert.Equal(t, "bad header: bad signature", err.Error())
	assert.ErrorIs(t, err, cerrors.ErrBadHeader)
}

func TestCodecErrorWrap(t *testing.T) {
	originalErr := errors.New("short read")
	wrapped := cerrors.NewFromError(cerrors.Io, originalErr)

	assert.Equal(t, "i/o failure: short read", wrapped.Error())
	assert.ErrorIs(t, wrapped, originalErr)
	assert.ErrorIs(t, wrapped, cerrors.ErrIo)
}

func TestCodecErrorIsDoesNotMatchDifferentKind(t *testing.T) {
	err := cerrors.New(cerrors.InvalidCode)
	assert.False(t, errors.Is(err, cerrors.ErrBadHeader))
}

func TestStrKindUnknown(t *testing.T) {
	assert.Contains(t, cerrors.StrKind(cerrors.Kind(999)), "not recognized")
}
