package core

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(io.EOF))
	err := Error(EUNSUPPORTED, "format %d", 2)
	assert.Equal(t, EUNSUPPORTED, Code(err))
	assert.Equal(t, "format 2", UserMessage(err))
	assert.Equal(t, "[126] unsupported", err.Error())
}

func TestWrapError(t *testing.T) {
	err := WrapError(io.ErrUnexpectedEOF, EINVALID, "table %s", "GSUB")
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, EINVALID, Code(err))
	assert.Equal(t, "table GSUB", UserMessage(err))
	//
	wrapped := WrapError(err, Code(err), "lookup 0: %s", UserMessage(err))
	assert.Equal(t, EINVALID, Code(wrapped))
	assert.Equal(t, "lookup 0: table GSUB", UserMessage(wrapped))
	//
	assert.Equal(t, "not found", UserMessage(ErrorWithCode(nil, EMISSING)))
	assert.Equal(t, "internal error", UserMessage(io.EOF))
	assert.Equal(t, "", UserMessage(nil))
}
