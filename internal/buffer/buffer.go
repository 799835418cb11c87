// Package buffer implements the character buffer that sits between a rune
// source and the record tokenizer.
//
// The buffer keeps a read cursor and, optionally, one open field region. The
// field region starts where Begin was called and accumulates every rune passed
// to Keep. Runes that are consumed with Advance (quotes, escape characters) are
// dropped from the region, so unescaping happens in place without a second
// copy. On refill the field region and the unread tail are compacted to the
// front of the array; when that is not enough the array doubles, bounded by the
// limit of the open field.
package buffer

import (
	"io"

	"github.com/pkg/errors"
)

// DefaultSize is the buffer capacity, in runes, used when none is given.
const DefaultSize = 4096

// maxEmptyReads bounds how many times a source may return (0, nil) in a row.
const maxEmptyReads = 100

// ErrLimit is returned by Ensure when the open field would need the buffer to
// grow past the limit passed to Begin.
var ErrLimit = errors.New("buffer: field exceeds buffer limit")

// Source provides chunks of characters. It follows the io.Reader contract,
// with runes instead of bytes: Read fills p with up to len(p) runes and
// returns io.EOF once the source is exhausted.
type Source interface {
	Read(p []rune) (n int, err error)
}

// Buffer is a growable rune window over a Source. It is not safe for
// concurrent use.
type Buffer struct {
	src  Source
	data []rune
	pos  int // read cursor
	end  int // fill level

	mark  int // start of the open field, -1 when no field is open
	wr    int // write cursor of the open field, mark <= wr <= pos
	limit int // growth bound while the field is open, 0 means unbounded

	err   error // sticky source error, io.EOF included
	empty int   // consecutive reads that returned no runes and no error

	// OnGrow, when set, is called each time the underlying array grows.
	OnGrow func(oldCap, newCap int)
}

// New returns a buffer of the given capacity reading from src. A
// non-positive size selects DefaultSize.
func New(src Source, size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Buffer{
		src:  src,
		data: getRunes(size),
		mark: -1,
	}
}

// Cap returns the current capacity of the buffer in runes.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Buffered returns the number of unread runes currently held.
func (b *Buffer) Buffered() int {
	return b.end - b.pos
}

// Ensure makes at least n unread runes available. It returns false, with a
// nil error, when the source ends first. Source failures other than io.EOF
// are returned wrapped; ErrLimit is returned when an open field cannot grow.
func (b *Buffer) Ensure(n int) (bool, error) {
	for b.end-b.pos < n {
		if b.err != nil {
			if b.err == io.EOF {
				return false, nil
			}
			return false, b.err
		}
		if err := b.fill(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Peek returns the rune off positions past the cursor. The caller must have
// made it available with Ensure.
func (b *Buffer) Peek(off int) rune {
	return b.data[b.pos+off]
}

// Advance consumes n runes without adding them to the open field.
func (b *Buffer) Advance(n int) {
	b.pos += n
}

// Begin opens a field region at the cursor. limit bounds the capacity the
// buffer may grow to while the region is open; 0 leaves it unbounded.
func (b *Buffer) Begin(limit int) {
	b.mark = b.pos
	b.wr = b.pos
	b.limit = limit
}

// Keep consumes the rune at the cursor and appends it to the open field.
func (b *Buffer) Keep() {
	b.data[b.wr] = b.data[b.pos]
	b.wr++
	b.pos++
}

// FieldLen returns the number of runes kept in the open field.
func (b *Buffer) FieldLen() int {
	if b.mark < 0 {
		return 0
	}
	return b.wr - b.mark
}

// Field closes the open field and returns its content. The string never
// shares memory with the buffer.
func (b *Buffer) Field() string {
	if b.mark < 0 {
		return ""
	}
	s := string(b.data[b.mark:b.wr])
	b.Discard()
	return s
}

// Discard closes the open field without materializing it.
func (b *Buffer) Discard() {
	b.mark = -1
	b.wr = 0
	b.limit = 0
}

// Release drops the array and the source. Any later Ensure reports the end of
// the source.
func (b *Buffer) Release() {
	b.src = nil
	putRunes(b.data)
	b.data = nil
	b.pos, b.end = 0, 0
	b.Discard()
	if b.err == nil {
		b.err = io.EOF
	}
}

// fill compacts, grows when needed and reads one chunk from the source.
func (b *Buffer) fill() error {
	b.compact()

	if b.end == len(b.data) {
		if err := b.grow(); err != nil {
			return err
		}
	}

	n, err := b.src.Read(b.data[b.end:])
	if n < 0 || n > len(b.data)-b.end {
		return errors.Errorf("buffer: source returned invalid count %d", n)
	}
	b.end += n
	if err != nil {
		if err == io.EOF {
			b.err = io.EOF
		} else {
			b.err = errors.Wrap(err, "buffer: read source")
		}
	} else if n == 0 {
		b.empty++
		if b.empty >= maxEmptyReads {
			b.err = errors.Wrap(io.ErrNoProgress, "buffer: read source")
		}
		return nil
	}
	b.empty = 0
	return nil
}

// compact moves the open field and the unread runes to the front of the
// array. Runes dropped from the field with Advance are squeezed out.
func (b *Buffer) compact() {
	if b.mark < 0 {
		if b.pos == 0 {
			return
		}
		n := copy(b.data, b.data[b.pos:b.end])
		b.pos, b.end = 0, n
		return
	}
	if b.mark == 0 && b.wr == b.pos {
		return
	}
	fl := copy(b.data, b.data[b.mark:b.wr])
	un := copy(b.data[fl:], b.data[b.pos:b.end])
	b.mark, b.wr, b.pos, b.end = 0, fl, fl, fl+un
}

func (b *Buffer) grow() error {
	oldCap := len(b.data)
	newCap := oldCap * 2
	if b.mark >= 0 && b.limit > 0 && newCap > b.limit {
		newCap = b.limit
	}
	if newCap <= oldCap {
		return ErrLimit
	}
	data := make([]rune, newCap)
	copy(data, b.data[:b.end])
	b.data = data
	if b.OnGrow != nil {
		b.OnGrow(oldCap, newCap)
	}
	return nil
}
