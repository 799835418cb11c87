package csv

import (
	"errors"
	"fmt"
	"io"

	"github.com/jrivets/log4g"
	perrors "github.com/pkg/errors"
	"golang.org/x/text/encoding"

	"github.com/shapestone/shape-csvreader/internal/header"
	"github.com/shapestone/shape-csvreader/internal/source"
	"github.com/shapestone/shape-csvreader/internal/tokenizer"
)

// parsed is one record as it left the tokenizer. Its fields are never shared
// with the buffer or with another record.
type parsed struct {
	index  int64
	fields []string
	pos    Position
}

// engine holds the state shared by Reader and CachedReader: the tokenizer,
// the column model and the current record. Field access is implemented here
// once for both.
type engine struct {
	opts   Options
	src    io.Reader
	tok    *tokenizer.Tokenizer
	logger log4g.Logger

	table      *header.Table // nil when HasHeaders is false
	headers    []string      // resolved header names, empty without headers
	names      []string      // column names, generated without headers
	fieldCount int
	overrides  map[int]string

	started bool
	pending *parsed // first data record, read by begin
	next    int64   // index of the next record pulled from the tokenizer
	eof     bool
	err     error // sticky parse, header or source error
	closed  bool

	cur      *parsed
	curIndex int64
}

func newEngine(src io.Reader, opts Options, decode bool, enc encoding.Encoding) (*engine, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	in := src
	if decode {
		in = source.Decode(src, enc)
	}
	e := &engine{
		opts:      opts,
		src:       src,
		tok:       tokenizer.New(source.FromReader(in, opts.BufferSize), opts.tokenizer()),
		logger:    newLogger(),
		overrides: make(map[int]string),
		curIndex:  -1,
	}
	e.tok.OnGrow(func(oldCap, newCap int) {
		e.logger.Debug("Buffer grown from ", oldCap, " to ", newCap, " characters")
	})
	return e, nil
}

// begin reads the first record on first use, so that setters called after
// construction still apply to it. Its error is sticky.
func (e *engine) begin() error {
	if e.closed {
		return ErrClosed
	}
	if !e.started {
		e.started = true
		if err := e.start(); err != nil && e.err == nil {
			e.err = err
		}
	}
	return e.err
}

// start reads the first record. It becomes the header row or is kept as the
// first data record; either way it fixes the field count. Without headers a
// malformed first record leaves the field count at zero and its error is
// returned by the first read.
func (e *engine) start() error {
	if e.opts.HasHeaders {
		e.next = -1
	}
	first, err := e.pull(-1)
	if err != nil && err != io.EOF && e.opts.HasHeaders {
		return err
	}

	var raw []string
	if first != nil {
		raw = first.fields
	}
	if e.opts.HasHeaders {
		tbl, err := header.Resolve(raw, e.opts.DefaultHeaderName, e.resolver())
		if err != nil {
			return err
		}
		e.table = tbl
		e.next = 0
		e.headers = tbl.Names()
		e.names = e.headers
		e.fieldCount = tbl.Len()
		e.logger.Debug("Resolved ", e.fieldCount, " headers: ", e.headers)
		return nil
	}

	e.headers = []string{}
	e.fieldCount = len(raw)
	e.names = make([]string, e.fieldCount)
	for i := range e.names {
		e.names[i] = header.Default(e.opts.DefaultHeaderName, i)
	}
	e.pending = first
	return nil
}

func (e *engine) resolver() header.Resolver {
	fn := e.opts.DuplicateHeader
	if fn == nil {
		return nil
	}
	return func(name string, index int) string {
		renamed := fn(name, index)
		e.logger.Debug("Duplicate header ", name, " at column ", index, " renamed to ", renamed)
		return renamed
	}
}

// read returns the next data record, or io.EOF.
func (e *engine) read() (*parsed, error) {
	if e.closed {
		return nil, ErrClosed
	}
	e.begin()
	if rec := e.pending; rec != nil {
		e.pending = nil
		return rec, nil
	}
	return e.pull(e.fieldCount)
}

// pull reads one record from the tokenizer, handling bad lines according to
// OnBadLine. A record longer than limit is malformed; a negative limit
// accepts any length.
func (e *engine) pull(limit int) (*parsed, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.eof {
		return nil, io.EOF
	}
	for {
		e.tok.SetIndex(e.next)
		fields, err := e.tok.Next(make([]string, 0, e.fieldCount))
		if err == nil && limit >= 0 && len(fields) > limit {
			err = e.tooManyFields(len(fields))
		}
		switch {
		case err == nil:
			rec := &parsed{index: e.next, fields: fields, pos: e.tok.Start()}
			e.next++
			return rec, nil
		case err == io.EOF:
			e.eof = true
			return nil, io.EOF
		case e.skipBadLine(err):
			e.tok.Recover()
		default:
			e.err = err
			return nil, err
		}
	}
}

func (e *engine) tooManyFields(n int) error {
	start := e.tok.Start()
	e.logger.Trace("Record ", e.next, " has ", n, " fields, expected ", e.fieldCount)
	return &ParseError{
		Record:    e.next,
		StartLine: start.Line,
		Line:      start.Line,
		Column:    start.Column,
		Offset:    start.Offset,
		Err:       ErrTooManyFields,
	}
}

// skipBadLine reports whether err is a parse error the reader should skip.
func (e *engine) skipBadLine(err error) bool {
	var pe *ParseError
	if e.opts.OnBadLine == BadLineModeError || !errors.As(err, &pe) {
		return false
	}
	if cb := e.opts.BadLineCallback; cb != nil && !cb(pe) {
		return false
	}
	if e.opts.OnBadLine == BadLineModeWarn {
		e.logger.Warn("Skipping bad line ", pe.Line, ", cause: ", pe.Err)
		if wc := e.opts.WarningCallback; wc != nil {
			wc(pe.Line, pe.Error())
		}
	}
	return true
}

func (e *engine) setCurrent(rec *parsed) {
	e.cur = rec
	if rec != nil {
		e.curIndex = rec.index
	}
}

// value returns field i of the current record, applying overrides and the
// missing field action. null is true for a field replaced by null.
func (e *engine) value(i int) (v string, null bool, err error) {
	if e.closed {
		return "", false, ErrClosed
	}
	e.begin()
	if i < 0 || i >= e.fieldCount {
		return "", false, fmt.Errorf("%w: %d not in [0, %d)", ErrFieldIndex, i, e.fieldCount)
	}
	if e.cur == nil {
		return "", false, ErrNoCurrentRecord
	}
	if ov, ok := e.overrides[i]; ok {
		return ov, false, nil
	}
	if i < len(e.cur.fields) {
		return e.cur.fields[i], false, nil
	}
	switch e.opts.MissingFieldAction {
	case ReplaceByEmpty:
		return "", false, nil
	case ReplaceByNull:
		return "", true, nil
	}
	return "", false, &MissingFieldError{Record: e.curIndex, Field: i}
}

// Field returns field i of the current record.
func (e *engine) Field(i int) (string, error) {
	v, _, err := e.value(i)
	return v, err
}

// IsNull reports whether field i of the current record is missing and was
// replaced by null.
func (e *engine) IsNull(i int) bool {
	_, null, err := e.value(i)
	return err == nil && null
}

// FieldByName returns the field of the current record under header name.
func (e *engine) FieldByName(name string) (string, error) {
	i, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return e.Field(i)
}

func (e *engine) lookup(name string) (int, error) {
	if name == "" {
		return -1, ErrEmptyHeaderName
	}
	if err := e.begin(); err != nil {
		return -1, err
	}
	if e.table == nil {
		return -1, ErrNoHeaders
	}
	i, ok := e.table.Index(name)
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrHeaderNotFound, name)
	}
	return i, nil
}

// FieldIndex returns the column index of header name.
func (e *engine) FieldIndex(name string) (int, bool) {
	e.begin()
	return e.table.Index(name)
}

// HasHeader reports whether name is one of the headers. It is false when the
// reader has no headers.
func (e *engine) HasHeader(name string) (bool, error) {
	if name == "" {
		return false, ErrEmptyHeaderName
	}
	if err := e.begin(); err != nil {
		return false, err
	}
	_, ok := e.table.Index(name)
	return ok, nil
}

// Headers returns a copy of the resolved header names. It is empty when the
// reader has no headers.
func (e *engine) Headers() []string {
	e.begin()
	out := make([]string, len(e.headers))
	copy(out, e.headers)
	return out
}

// FieldCount returns the number of fields of every record.
func (e *engine) FieldCount() int {
	e.begin()
	return e.fieldCount
}

// CurrentRecordIndex returns the zero-based index of the current record, -1
// before the first read.
func (e *engine) CurrentRecordIndex() int64 {
	return e.curIndex
}

// EndOfStream reports whether the source is exhausted.
func (e *engine) EndOfStream() bool {
	e.begin()
	return e.eof && e.pending == nil
}

// CopyCurrentRecordTo copies the fields of the current record into dst
// starting at index start.
func (e *engine) CopyCurrentRecordTo(dst []string, start int) error {
	if dst == nil {
		return ErrNilDestination
	}
	if start < 0 || start >= len(dst) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrDestinationIndex, start, len(dst))
	}
	if e.closed {
		return ErrClosed
	}
	if e.cur == nil {
		return ErrNoCurrentRecord
	}
	if len(dst)-start < e.fieldCount {
		return fmt.Errorf("%w: need %d, have %d", ErrDestinationTooSmall, e.fieldCount, len(dst)-start)
	}
	for i := 0; i < e.fieldCount; i++ {
		v, _, err := e.value(i)
		if err != nil {
			return err
		}
		dst[start+i] = v
	}
	return nil
}

// Record returns an independent copy of the current record.
func (e *engine) Record() (Record, error) {
	if e.closed {
		return Record{}, ErrClosed
	}
	if e.cur == nil {
		return Record{}, ErrNoCurrentRecord
	}
	fields := make([]string, e.fieldCount)
	var nulls []bool
	for i := range fields {
		v, null, err := e.value(i)
		if err != nil {
			return Record{}, err
		}
		fields[i] = v
		if null {
			if nulls == nil {
				nulls = make([]bool, len(fields))
			}
			nulls[i] = true
		}
	}
	return Record{index: e.curIndex, fields: fields, nulls: nulls, headers: e.headers, pos: e.cur.pos}, nil
}

// SetSupportsMultiline allows or forbids line breaks in quoted fields for
// the records that follow.
func (e *engine) SetSupportsMultiline(v bool) {
	e.opts.SupportsMultiline = v
	e.tok.SetMultiline(v)
}

// SetSkipEmptyLines changes empty line handling for the records that follow.
func (e *engine) SetSkipEmptyLines(v bool) {
	e.opts.SkipEmptyLines = v
	e.tok.SetSkipEmptyLines(v)
}

// SetDefaultHeaderName changes the prefix of generated column names. Blank
// header names take it until the first read resolves the headers; the column
// names of a reader without headers follow it at any time.
func (e *engine) SetDefaultHeaderName(name string) {
	e.opts.DefaultHeaderName = name
	if e.started && e.table == nil {
		for i := range e.names {
			e.names[i] = header.Default(name, i)
		}
	}
}

// SetMissingFieldAction changes how missing fields are reported.
func (e *engine) SetMissingFieldAction(a MissingFieldAction) error {
	if a < RaiseError || a > ReplaceByNull {
		return &OptionsError{Field: "MissingFieldAction", Message: a.String()}
	}
	e.opts.MissingFieldAction = a
	return nil
}

// SetMaxQuotedFieldLength changes the quoted field bound for the fields that
// follow. 0 removes the bound.
func (e *engine) SetMaxQuotedFieldLength(n int) error {
	if n < 0 {
		return &OptionsError{Field: "MaxQuotedFieldLength", Message: "must not be negative"}
	}
	e.opts.MaxQuotedFieldLength = n
	e.tok.SetMaxQuotedFieldLength(n)
	return nil
}

// Options returns the current options.
func (e *engine) Options() Options {
	return e.opts
}

// Close releases the buffers and closes the source unless LeaveOpen is set.
// It is safe to call more than once.
func (e *engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.tok.Release()
	e.cur, e.pending = nil, nil

	var err error
	if c, ok := e.src.(io.Closer); ok && !e.opts.LeaveOpen {
		if cerr := c.Close(); cerr != nil {
			err = perrors.Wrap(cerr, "csv: close source")
		}
	}
	e.src = nil
	e.logger.Debug("Closed after ", e.next, " records")
	return err
}
