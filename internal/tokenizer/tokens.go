// Package tokenizer implements the field-by-field state machine that turns a
// rune buffer into records.
package tokenizer

// Trimming selects which field values have surrounding whitespace removed.
// The two flags combine; TrimAll is TrimQuotedOnly|TrimUnquotedOnly.
type Trimming int

const (
	TrimNone         Trimming = 0
	TrimQuotedOnly   Trimming = 1
	TrimUnquotedOnly Trimming = 2
	TrimAll          Trimming = TrimQuotedOnly | TrimUnquotedOnly
)

// String returns the option name.
func (t Trimming) String() string {
	switch t {
	case TrimNone:
		return "none"
	case TrimQuotedOnly:
		return "quoted"
	case TrimUnquotedOnly:
		return "unquoted"
	case TrimAll:
		return "all"
	}
	return "Trimming(?)"
}

// fieldEnd tells the record loop what terminated a field.
type fieldEnd int

const (
	// endDelimiter: another field follows on the same record.
	endDelimiter fieldEnd = iota
	// endRecord: a line terminator was consumed.
	endRecord
	// endInput: the source is exhausted.
	endInput
)
