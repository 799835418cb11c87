package tokenizer

import (
	"errors"
	"fmt"
)

// ErrMalformed is matched by every *ParseError through errors.Is.
var ErrMalformed = errors.New("malformed CSV")

// Specific causes carried by ParseError.Err.
var (
	ErrUnterminatedQuote  = errors.New("quoted field is not terminated")
	ErrBareQuote          = errors.New("unexpected character after closing quote")
	ErrQuotedFieldTooLong = errors.New("quoted field exceeds maximum length")
	ErrMultilineQuoted    = errors.New("line break in quoted field while multiline is disabled")
	ErrTooManyFields      = errors.New("record has more fields than the header")
)

// Position locates a point of the input. Line and Column are 1-based,
// Offset counts runes from the start of the input.
type Position struct {
	Line   int
	Column int
	Offset int64
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// ParseError describes malformed input.
type ParseError struct {
	// Record is the zero-based index the record would have had, or -1 when
	// unknown (for example while reading the header).
	Record int64
	// StartLine is the line where the record began.
	StartLine int
	// Line and Column locate the failure.
	Line   int
	Column int
	// Offset of the failure in runes.
	Offset int64
	// Err is the specific cause, one of the Err* values of this package.
	Err error
}

func (e *ParseError) Error() string {
	if e.StartLine == e.Line {
		return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error on line %d (started line %d), column %d: %v",
		e.Line, e.StartLine, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformed.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}
