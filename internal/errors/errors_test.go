package errors

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Formatting(t *testing.T) {
	err := NewSpecError(CodeEmptyKeySet, "no valid keys")
	assert.Equal(t, "[SPEC:EMPTY_KEY_SET] no valid keys", err.Error())

	wrapped := Wrap(ErrCategoryIO, CodeWriteFailed, "writing output", io.ErrShortWrite)
	assert.Contains(t, wrapped.Error(), "short write")
}

func TestError_UnwrapChain(t *testing.T) {
	wrapped := NewIOError(CodeOpenFailed, "opening file", io.EOF)
	assert.True(t, stderrors.Is(wrapped, io.EOF))
	assert.Equal(t, ErrCategoryIO, GetCategory(wrapped))
	assert.Equal(t, CodeOpenFailed, GetCode(wrapped))
}

func TestError_IsMatchesCategoryAndCode(t *testing.T) {
	err := NewSpecError(CodeDeletesExceedKeys, "too many deletes")
	assert.True(t, stderrors.Is(err, New(ErrCategorySpec, CodeDeletesExceedKeys, "")))
	assert.False(t, stderrors.Is(err, New(ErrCategorySpec, CodeEmptyKeySet, "")))
}

func TestError_AtGroup(t *testing.T) {
	err := NewSpecError(CodeDeletesExceedKeys, "too many deletes").AtGroup(2, 5)
	assert.Contains(t, err.Error(), "section 2, group 5")
	assert.Equal(t, 2, err.Details["section"])
	assert.Equal(t, 5, err.Details["group"])
	assert.Equal(t, CodeDeletesExceedKeys, err.Code)
}

func TestGetHelpers_NonLoadgenError(t *testing.T) {
	err := stderrors.New("plain")
	assert.Equal(t, ErrorCategory(""), GetCategory(err))
	assert.Equal(t, "", GetCode(err))
	assert.False(t, IsSpecError(err))
}
