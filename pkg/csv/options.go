// Package csv provides configurable options for CSV reading.
package csv

import (
	"fmt"
	"unicode/utf8"

	"github.com/shapestone/shape-csvreader/internal/buffer"
	"github.com/shapestone/shape-csvreader/internal/header"
	"github.com/shapestone/shape-csvreader/internal/tokenizer"
)

// Trimming selects which fields have leading and trailing white space removed.
type Trimming = tokenizer.Trimming

const (
	// TrimNone keeps every field as read.
	TrimNone = tokenizer.TrimNone
	// TrimQuotedOnly trims the content of quoted fields.
	TrimQuotedOnly = tokenizer.TrimQuotedOnly
	// TrimUnquotedOnly trims unquoted fields (default).
	TrimUnquotedOnly = tokenizer.TrimUnquotedOnly
	// TrimAll trims every field.
	TrimAll = tokenizer.TrimAll
)

// MissingFieldAction specifies what field access returns for a column the
// current record does not have.
type MissingFieldAction int

const (
	// RaiseError returns a *MissingFieldError (default).
	RaiseError MissingFieldAction = iota
	// ReplaceByEmpty returns an empty string.
	ReplaceByEmpty
	// ReplaceByNull returns an empty string and marks the field as null.
	ReplaceByNull
)

// String returns the string representation of MissingFieldAction.
func (a MissingFieldAction) String() string {
	switch a {
	case RaiseError:
		return "error"
	case ReplaceByEmpty:
		return "empty"
	case ReplaceByNull:
		return "null"
	default:
		return fmt.Sprintf("MissingFieldAction(%d)", a)
	}
}

// DuplicateHeaderResolver is called when a header name repeats the name of an
// earlier column. It returns the name to use for column index instead.
type DuplicateHeaderResolver = header.Resolver

// Options configures a Reader.
type Options struct {
	// HasHeaders makes the first record the header row.
	// Default: false
	HasHeaders bool

	// Delimiter separates fields. It must not be 0, '\n' or the quote.
	// Default: ','
	Delimiter rune

	// Quote starts and ends quoted fields. 0 disables quoting.
	// Default: '"'
	Quote rune

	// Escape escapes the quote inside quoted fields. When it equals Quote a
	// doubled quote stands for one quote, otherwise Escape makes the next
	// character literal. 0 disables escaping.
	// Default: '"'
	Escape rune

	// Comment, if not 0, marks lines to ignore when it is the first
	// character of a record.
	// Default: '#'
	Comment rune

	// Trimming selects the fields whose surrounding white space is removed.
	// Default: TrimUnquotedOnly
	Trimming Trimming

	// BufferSize is the initial buffer capacity in characters.
	// Default: 4096
	BufferSize int

	// MaxQuotedFieldLength bounds quoted fields, in characters. 0 means no
	// bound. Exceeding it is a parse error.
	// Default: 0
	MaxQuotedFieldLength int

	// SkipEmptyLines skips lines that hold nothing but a line terminator.
	// Default: true
	SkipEmptyLines bool

	// SupportsMultiline allows line breaks inside quoted fields.
	// Default: true
	SupportsMultiline bool

	// MissingFieldAction specifies field access past the end of a short
	// record.
	// Default: RaiseError
	MissingFieldAction MissingFieldAction

	// DefaultHeaderName prefixes the generated name of blank or absent
	// headers; the column index is appended.
	// Default: "Column"
	DefaultHeaderName string

	// LeaveOpen keeps the source open on Close.
	// Default: false
	LeaveOpen bool

	// DuplicateHeader, if set, renames a header that repeats an earlier one.
	DuplicateHeader DuplicateHeaderResolver

	// OnBadLine specifies how to handle malformed records.
	// Default: BadLineModeError
	OnBadLine BadLineMode

	// BadLineCallback is invoked for each malformed record when OnBadLine is
	// not BadLineModeError. Returning false stops reading with the error.
	BadLineCallback BadLineHandler

	// WarningCallback receives a message for each record skipped in
	// BadLineModeWarn.
	WarningCallback WarningHandler
}

// DefaultOptions returns the default reader configuration.
func DefaultOptions() Options {
	return Options{
		Delimiter:         ',',
		Quote:             '"',
		Escape:            '"',
		Comment:           '#',
		Trimming:          TrimUnquotedOnly,
		BufferSize:        buffer.DefaultSize,
		SkipEmptyLines:    true,
		SupportsMultiline: true,
		DefaultHeaderName: "Column",
	}
}

func validRune(r rune) bool {
	return utf8.ValidRune(r) && r != utf8.RuneError
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.BufferSize <= 0 {
		return ErrInvalidBufferSize
	}
	if o.Delimiter == 0 || o.Delimiter == '\n' || !validRune(o.Delimiter) {
		return &OptionsError{Field: "Delimiter", Message: "invalid delimiter"}
	}
	if o.Quote != 0 && (o.Quote == '\r' || o.Quote == '\n' || !validRune(o.Quote)) {
		return &OptionsError{Field: "Quote", Message: "invalid quote character"}
	}
	if o.Quote != 0 && o.Quote == o.Delimiter {
		return &OptionsError{Field: "Quote", Message: "quote character same as delimiter"}
	}
	if o.Escape != 0 && !validRune(o.Escape) {
		return &OptionsError{Field: "Escape", Message: "invalid escape character"}
	}
	if o.Comment != 0 && !validRune(o.Comment) {
		return &OptionsError{Field: "Comment", Message: "invalid comment character"}
	}
	if o.Comment != 0 && o.Comment == o.Delimiter {
		return &OptionsError{Field: "Comment", Message: "comment character same as delimiter"}
	}
	if o.Trimming < TrimNone || o.Trimming > TrimAll {
		return &OptionsError{Field: "Trimming", Message: fmt.Sprintf("unknown value %d", int(o.Trimming))}
	}
	if o.MaxQuotedFieldLength < 0 {
		return &OptionsError{Field: "MaxQuotedFieldLength", Message: "must not be negative"}
	}
	if o.MissingFieldAction < RaiseError || o.MissingFieldAction > ReplaceByNull {
		return &OptionsError{Field: "MissingFieldAction", Message: o.MissingFieldAction.String()}
	}
	if o.OnBadLine < BadLineModeError || o.OnBadLine > BadLineModeSkip {
		return &OptionsError{Field: "OnBadLine", Message: o.OnBadLine.String()}
	}
	return nil
}

func (o Options) tokenizer() tokenizer.Options {
	return tokenizer.Options{
		Delimiter:            o.Delimiter,
		Quote:                o.Quote,
		Escape:               o.Escape,
		Comment:              o.Comment,
		Trimming:             o.Trimming,
		BufferSize:           o.BufferSize,
		MaxQuotedFieldLength: o.MaxQuotedFieldLength,
		SkipEmptyLines:       o.SkipEmptyLines,
		Multiline:            o.SupportsMultiline,
	}
}

// OptionsError represents an invalid option configuration.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "csv: invalid " + e.Field + ": " + e.Message
}
