package ot

import (
	"errors"
	"fmt"

	"github.com/npillmayer/otcodec/core"
)

// Sentinel errors for decoding. Errors returned from decoding functions will
// match one of them with errors.Is.
var (
	ErrMalformed   = errors.New("malformed OpenType table")
	ErrUnsupported = errors.New("unsupported OpenType table format")
)

// ErrOffsetOverflow is returned by Serialize if a table does not fit into
// the range of a 16-bit offset.
var ErrOffsetOverflow = errors.New("offset overflow: linked table out of reach of 16-bit offset")

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

// FormatError is the error type for tables which cannot be interpreted.
// Format holds the format number read from the table, if the error is
// about format selection.
//
// FormatError implements core.AppError, with error code core.EINVALID for
// malformed tables and core.EUNSUPPORTED for unsupported ones.
type FormatError struct {
	Table       string // OpenType name of the table
	Format      uint16 // format tag as read from the binary data
	Unsupported bool   // format is legal, but not supported
	Reason      string // optional details
}

// Malformed creates an error for a table containing malformed data.
func Malformed(table string, format uint16, reason string) *FormatError {
	return &FormatError{Table: table, Format: format, Reason: reason}
}

// Unsupported creates an error for a table in a legal, but unsupported format.
func Unsupported(table string, format uint16) *FormatError {
	return &FormatError{Table: table, Format: format, Unsupported: true}
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("[%d] %s", e.ErrorCode(), e.UserMessage())
}

// ErrorCode returns one of core.EINVALID or core.EUNSUPPORTED.
func (e *FormatError) ErrorCode() int {
	if e.Unsupported {
		return core.EUNSUPPORTED
	}
	return core.EINVALID
}

// UserMessage returns a description of the problem.
func (e *FormatError) UserMessage() string {
	if e.Unsupported {
		return fmt.Sprintf("OpenType font format: %s format %d not supported", e.Table, e.Format)
	}
	if e.Reason != "" {
		return fmt.Sprintf("OpenType font format: %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("OpenType font format: bad %s format %d", e.Table, e.Format)
}

// Is lets FormatError match ErrMalformed or ErrUnsupported.
func (e *FormatError) Is(target error) bool {
	switch target {
	case ErrUnsupported:
		return e.Unsupported
	case ErrMalformed:
		return !e.Unsupported
	}
	return false
}

var _ core.AppError = &FormatError{}

// Truncated reports bounds errors, which occur when reading beyond the end of
// data, as malformed-table errors for the given table. Other errors are
// returned unchanged.
func Truncated(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errBufferBounds) {
		return Malformed(table, 0, "unexpected end of data")
	}
	return err
}
