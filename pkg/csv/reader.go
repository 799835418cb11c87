package csv

import (
	"fmt"
	"io"
	"iter"

	"golang.org/x/text/encoding"
)

// Reader is a forward-only CSV reader. It reads one record at a time from
// its source and keeps only the current record.
//
// Example:
//
//	r, err := csv.NewReader(file, csv.DefaultOptions())
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	for {
//	    ok, err := r.ReadNextRecord()
//	    if err != nil {
//	        // handle error
//	    }
//	    if !ok {
//	        break
//	    }
//	    name, _ := r.Field(0)
//	    fmt.Println(name)
//	}
//
// A Reader is not safe for concurrent use.
type Reader struct {
	*engine
}

// NewReader creates a Reader over src. Nothing is read until the first call
// that needs the columns (ReadNextRecord, MoveTo, FieldCount, Headers,
// Columns, FieldIndex, HasHeader). That call reads the first record: it
// becomes the header row when opts.HasHeaders is set, and it fixes
// FieldCount either way. Header resolution errors are returned by the first
// read.
func NewReader(src io.Reader, opts Options) (*Reader, error) {
	e, err := newEngine(src, opts, false, nil)
	if err != nil {
		return nil, err
	}
	return &Reader{engine: e}, nil
}

// NewReaderWithEncoding creates a Reader over src decoded from enc. NUL
// characters are removed from the decoded text. A nil enc reads UTF-8.
func NewReaderWithEncoding(src io.Reader, enc encoding.Encoding, opts Options) (*Reader, error) {
	e, err := newEngine(src, opts, true, enc)
	if err != nil {
		return nil, err
	}
	return &Reader{engine: e}, nil
}

// ReadNextRecord advances to the next record. It returns false once the
// source is exhausted, and keeps returning false afterwards. A malformed
// record is returned as a *ParseError unless OnBadLine skips it.
func (r *Reader) ReadNextRecord() (bool, error) {
	rec, err := r.read()
	if err != nil {
		r.cur = nil
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	r.setCurrent(rec)
	return true, nil
}

// MoveTo advances to the record at index. A Reader only moves forward: an
// index before the current record returns false. -1 is accepted only while
// no record has been read.
func (r *Reader) MoveTo(index int64) (bool, error) {
	if r.closed {
		return false, ErrClosed
	}
	if index < r.curIndex {
		return false, nil
	}
	if index == r.curIndex {
		return index == -1 || r.cur != nil, nil
	}
	for r.curIndex < index {
		ok, err := r.ReadNextRecord()
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// FieldAt returns field of the record at index record, reading forward as
// needed. It fails with ErrCannotMoveBackward for a record before the
// current one.
func (r *Reader) FieldAt(record int64, field int) (string, error) {
	if r.closed {
		return "", ErrClosed
	}
	if record < r.curIndex {
		return "", fmt.Errorf("%w: record %d, current %d", ErrCannotMoveBackward, record, r.curIndex)
	}
	ok, err := r.MoveTo(record)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: record %d", ErrNoCurrentRecord, record)
	}
	return r.Field(field)
}

// Records returns a single-use iterator over the remaining records. Each
// Record is an independent copy. A parse or source error is yielded once and
// ends the sequence; a missing field error is yielded for its record and the
// sequence continues.
//
// Example:
//
//	for rec, err := range r.Records() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(rec.Fields())
//	}
func (r *Reader) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			ok, err := r.ReadNextRecord()
			if err != nil {
				yield(Record{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(r.Record()) {
				return
			}
		}
	}
}
