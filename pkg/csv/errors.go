// Package csv provides error types and recovery modes for CSV reading.
package csv

import (
	"errors"
	"fmt"

	"github.com/shapestone/shape-csvreader/internal/buffer"
	"github.com/shapestone/shape-csvreader/internal/header"
	"github.com/shapestone/shape-csvreader/internal/tokenizer"
)

// BadLineMode specifies how the reader handles malformed CSV records.
type BadLineMode int

const (
	// BadLineModeError returns an error on malformed records (default).
	BadLineModeError BadLineMode = iota
	// BadLineModeWarn logs a warning, skips the line and continues reading.
	BadLineModeWarn
	// BadLineModeSkip silently skips malformed lines.
	BadLineModeSkip
)

// String returns the string representation of BadLineMode.
func (m BadLineMode) String() string {
	switch m {
	case BadLineModeError:
		return "error"
	case BadLineModeWarn:
		return "warn"
	case BadLineModeSkip:
		return "skip"
	default:
		return fmt.Sprintf("BadLineMode(%d)", m)
	}
}

// BadLineHandler is a callback function invoked when a malformed record is
// skipped. Return true to continue reading, false to stop with the error.
type BadLineHandler func(err *ParseError) bool

// WarningHandler is a callback function for logging warnings.
type WarningHandler func(line int, message string)

// ParseError reports malformed input with its position. It matches
// ErrMalformed under errors.Is and unwraps to the specific cause.
type ParseError = tokenizer.ParseError

// Position is a line, column and character offset in the input.
type Position = tokenizer.Position

// DuplicateHeaderError reports two columns resolving to the same header name.
// It matches ErrDuplicateHeader under errors.Is.
type DuplicateHeaderError = header.DuplicateHeaderError

// Malformed input.
var (
	// ErrMalformed matches every *ParseError.
	ErrMalformed = tokenizer.ErrMalformed

	// ErrUnterminatedQuote indicates the input ended inside a quoted field.
	ErrUnterminatedQuote = tokenizer.ErrUnterminatedQuote

	// ErrBareQuote indicates a closing quote followed by something other
	// than a delimiter, a line break or white space.
	ErrBareQuote = tokenizer.ErrBareQuote

	// ErrQuotedFieldTooLong indicates a quoted field exceeded
	// MaxQuotedFieldLength.
	ErrQuotedFieldTooLong = tokenizer.ErrQuotedFieldTooLong

	// ErrMultilineQuoted indicates a line break in a quoted field while
	// SupportsMultiline is off.
	ErrMultilineQuoted = tokenizer.ErrMultilineQuoted

	// ErrTooManyFields indicates a record with more fields than FieldCount.
	ErrTooManyFields = tokenizer.ErrTooManyFields

	// ErrBufferLimit indicates the buffer could not grow for a field.
	ErrBufferLimit = buffer.ErrLimit
)

// Headers.
var (
	// ErrDuplicateHeader matches every *DuplicateHeaderError.
	ErrDuplicateHeader = header.ErrDuplicateHeader

	// ErrNoHeaders indicates access by name on a reader without headers.
	ErrNoHeaders = errors.New("csv: reader has no headers")

	// ErrEmptyHeaderName indicates an empty name passed to a name lookup.
	ErrEmptyHeaderName = errors.New("csv: empty header name")

	// ErrHeaderNotFound indicates a header name that does not exist.
	ErrHeaderNotFound = errors.New("csv: header not found")
)

// Preconditions.
var (
	ErrNilSource           = errors.New("csv: nil source")
	ErrInvalidBufferSize   = errors.New("csv: buffer size must be positive")
	ErrFieldIndex          = errors.New("csv: field index out of range")
	ErrNoCurrentRecord     = errors.New("csv: no current record")
	ErrNilDestination      = errors.New("csv: nil destination")
	ErrDestinationIndex    = errors.New("csv: destination index out of range")
	ErrDestinationTooSmall = errors.New("csv: destination too small")
	ErrClosed              = errors.New("csv: reader is closed")
	ErrCannotMoveBackward  = errors.New("csv: cannot move backward on a forward-only reader")
)

// ErrMissingField matches every *MissingFieldError.
var ErrMissingField = errors.New("csv: missing field")

// MissingFieldError reports access to a field the current record does not
// have while MissingFieldAction is RaiseError.
type MissingFieldError struct {
	Record int64
	Field  int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("csv: record %d has no field %d", e.Record, e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
