package tokenizer

import (
	"io"
	"strings"
	"unicode"

	"github.com/shapestone/shape-csvreader/internal/buffer"
)

// Options configures the tokenizer. A zero Quote, Escape or Comment disables
// the corresponding rule.
type Options struct {
	Delimiter rune
	Quote     rune
	Escape    rune
	Comment   rune
	Trimming  Trimming

	// BufferSize is the initial buffer capacity in runes.
	BufferSize int
	// MaxQuotedFieldLength bounds the content of a quoted field, 0 means
	// unbounded.
	MaxQuotedFieldLength int

	SkipEmptyLines bool
	Multiline      bool
}

// DefaultOptions returns the comma-separated dialect with double quotes.
func DefaultOptions() Options {
	return Options{
		Delimiter:      ',',
		Quote:          '"',
		Escape:         '"',
		Comment:        '#',
		Trimming:       TrimUnquotedOnly,
		BufferSize:     buffer.DefaultSize,
		SkipEmptyLines: true,
		Multiline:      true,
	}
}

// Tokenizer reads records one at a time from a rune source. It is not safe for
// concurrent use.
type Tokenizer struct {
	buf  *buffer.Buffer
	opts Options

	line   int
	col    int
	offset int64
	lastCR bool

	start Position
	index int64 // index of the next record
	err   error // sticky until Recover
}

// New returns a tokenizer reading from src.
func New(src buffer.Source, opts Options) *Tokenizer {
	return &Tokenizer{
		buf:  buffer.New(src, opts.BufferSize),
		opts: opts,
		line: 1,
		col:  1,
	}
}

// SetMultiline enables or disables line breaks inside quoted fields.
func (t *Tokenizer) SetMultiline(v bool) { t.opts.Multiline = v }

// SetSkipEmptyLines enables or disables skipping of bare line terminators.
func (t *Tokenizer) SetSkipEmptyLines(v bool) { t.opts.SkipEmptyLines = v }

// SetMaxQuotedFieldLength changes the quoted field bound for the following
// fields.
func (t *Tokenizer) SetMaxQuotedFieldLength(n int) { t.opts.MaxQuotedFieldLength = n }

// SetIndex sets the index reported in errors for the next record.
func (t *Tokenizer) SetIndex(i int64) { t.index = i }

// OnGrow installs a hook called whenever the buffer grows.
func (t *Tokenizer) OnGrow(fn func(oldCap, newCap int)) { t.buf.OnGrow = fn }

// Start returns the position where the last record began.
func (t *Tokenizer) Start() Position { return t.start }

// Position returns the position of the read cursor.
func (t *Tokenizer) Position() Position {
	return Position{Line: t.line, Column: t.col, Offset: t.offset}
}

// Release drops the buffer.
func (t *Tokenizer) Release() { t.buf.Release() }

// Next appends the fields of the next record to dst and returns the extended
// slice. It returns io.EOF once the source is exhausted. A *ParseError leaves
// the tokenizer failed until Recover is called.
func (t *Tokenizer) Next(dst []string) ([]string, error) {
	if t.err != nil {
		return dst, t.err
	}
	if err := t.skipIgnored(); err != nil {
		return dst, err
	}
	t.start = t.Position()
	n := len(dst)
	for {
		f, end, err := t.field()
		if err != nil {
			t.buf.Discard()
			t.err = err
			return dst[:n], err
		}
		dst = append(dst, f)
		if end != endDelimiter {
			t.index++
			return dst, nil
		}
	}
}

// Recover clears a parse failure and skips the rest of the physical line it
// happened on, so that Next resumes at the following line. It does nothing if
// the tokenizer has not failed or failed on a source error.
func (t *Tokenizer) Recover() {
	if _, ok := t.err.(*ParseError); !ok {
		return
	}
	t.err = nil
	t.buf.Discard()
	if err := t.skipLine(); err != nil {
		t.err = err
	}
}

// skipIgnored consumes comment lines and, when enabled, bare line
// terminators in front of the next record. It returns io.EOF when nothing
// but ignored lines remain.
func (t *Tokenizer) skipIgnored() error {
	for {
		r, ok, err := t.peek()
		if err != nil {
			return err
		}
		if !ok {
			return io.EOF
		}
		switch {
		case t.opts.Comment != 0 && r == t.opts.Comment:
			if err := t.skipLine(); err != nil {
				return err
			}
		case t.opts.SkipEmptyLines && t.isNewline(r):
			if err := t.newline(r); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (t *Tokenizer) field() (string, fieldEnd, error) {
	if t.opts.Trimming&TrimUnquotedOnly != 0 {
		for {
			r, ok, err := t.peek()
			if err != nil {
				return "", endInput, err
			}
			if !ok || !t.isSpace(r) {
				break
			}
			t.skip(r)
		}
	}
	r, ok, err := t.peek()
	if err != nil {
		return "", endInput, err
	}
	if !ok {
		return "", endInput, nil
	}
	if t.opts.Quote != 0 && r == t.opts.Quote {
		return t.quoted()
	}
	return t.unquoted()
}

func (t *Tokenizer) unquoted() (string, fieldEnd, error) {
	t.buf.Begin(0)
	end := endInput
	for {
		r, ok, err := t.peek()
		if err != nil {
			return "", endInput, err
		}
		if !ok {
			break
		}
		if r == t.opts.Delimiter {
			t.skip(r)
			end = endDelimiter
			break
		}
		if t.isNewline(r) {
			if err := t.newline(r); err != nil {
				return "", endInput, err
			}
			end = endRecord
			break
		}
		t.keep(r)
	}
	s := t.buf.Field()
	if t.opts.Trimming&TrimUnquotedOnly != 0 {
		s = strings.TrimRightFunc(s, t.isSpace)
	}
	return s, end, nil
}

func (t *Tokenizer) quoted() (string, fieldEnd, error) {
	quote, esc := t.opts.Quote, t.opts.Escape
	maxLen := t.opts.MaxQuotedFieldLength

	t.skip(quote)
	limit := 0
	if maxLen > 0 {
		limit = maxLen + 2
	}
	t.buf.Begin(limit)
	for {
		ok, err := t.buf.Ensure(1)
		if err != nil {
			return "", endInput, t.bufErr(err)
		}
		if !ok {
			return "", endInput, t.fail(ErrUnterminatedQuote)
		}
		r := t.buf.Peek(0)
		switch {
		case esc != 0 && esc != quote && r == esc:
			ok, err := t.buf.Ensure(2)
			if err != nil {
				return "", endInput, t.bufErr(err)
			}
			if !ok {
				return "", endInput, t.fail(ErrUnterminatedQuote)
			}
			t.skip(r)
			t.keep(t.buf.Peek(0))
		case r == quote:
			if esc == quote {
				ok, err := t.buf.Ensure(2)
				if err != nil {
					return "", endInput, t.bufErr(err)
				}
				if ok && t.buf.Peek(1) == quote {
					t.skip(r)
					t.keep(quote)
					break
				}
			}
			t.skip(r)
			s := t.buf.Field()
			if t.opts.Trimming&TrimQuotedOnly != 0 {
				s = strings.TrimFunc(s, t.isSpace)
			}
			end, err := t.afterQuote()
			return s, end, err
		case t.isNewline(r) && !t.opts.Multiline:
			return "", endInput, t.fail(ErrMultilineQuoted)
		default:
			t.keep(r)
		}
		if maxLen > 0 && t.buf.FieldLen() > maxLen {
			return "", endInput, t.fail(ErrQuotedFieldTooLong)
		}
	}
}

// afterQuote consumes whitespace following a closing quote and the separator
// that must come next.
func (t *Tokenizer) afterQuote() (fieldEnd, error) {
	for {
		r, ok, err := t.peek()
		if err != nil {
			return endInput, err
		}
		if !ok {
			return endInput, nil
		}
		switch {
		case r == t.opts.Delimiter:
			t.skip(r)
			return endDelimiter, nil
		case t.isNewline(r):
			if err := t.newline(r); err != nil {
				return endInput, err
			}
			return endRecord, nil
		case t.isSpace(r):
			t.skip(r)
		default:
			return endInput, t.fail(ErrBareQuote)
		}
	}
}

// skipLine consumes runes up to and including the next line terminator.
func (t *Tokenizer) skipLine() error {
	for {
		r, ok, err := t.peek()
		if err != nil || !ok {
			return err
		}
		if t.isNewline(r) {
			return t.newline(r)
		}
		t.skip(r)
	}
}

// newline consumes the terminator r, folding \r\n into one.
func (t *Tokenizer) newline(r rune) error {
	t.skip(r)
	if r != '\r' {
		return nil
	}
	next, ok, err := t.peek()
	if err != nil {
		return err
	}
	if ok && next == '\n' {
		t.skip(next)
	}
	return nil
}

func (t *Tokenizer) peek() (rune, bool, error) {
	ok, err := t.buf.Ensure(1)
	if err != nil {
		return 0, false, t.bufErr(err)
	}
	if !ok {
		return 0, false, nil
	}
	return t.buf.Peek(0), true, nil
}

func (t *Tokenizer) skip(r rune) {
	t.buf.Advance(1)
	t.track(r)
}

func (t *Tokenizer) keep(r rune) {
	t.buf.Keep()
	t.track(r)
}

func (t *Tokenizer) track(r rune) {
	t.offset++
	switch {
	case r == '\n' && t.lastCR:
		t.lastCR = false
	case r == '\n' || (r == '\r' && r != t.opts.Delimiter):
		t.line++
		t.col = 1
		t.lastCR = r == '\r'
	default:
		t.col++
		t.lastCR = false
	}
}

func (t *Tokenizer) isNewline(r rune) bool {
	return (r == '\r' || r == '\n') && r != t.opts.Delimiter
}

func (t *Tokenizer) isSpace(r rune) bool {
	if r == t.opts.Delimiter {
		return false
	}
	return r == ' ' || r == '\t' || (r > 0xff && unicode.IsSpace(r))
}

func (t *Tokenizer) bufErr(err error) error {
	if err == buffer.ErrLimit {
		return t.fail(ErrQuotedFieldTooLong)
	}
	return err
}

func (t *Tokenizer) fail(cause error) error {
	pos := t.Position()
	return &ParseError{
		Record:    t.index,
		StartLine: t.start.Line,
		Line:      pos.Line,
		Column:    pos.Column,
		Offset:    pos.Offset,
		Err:       cause,
	}
}
