// Package source adapts byte streams into the rune chunks read by the
// buffer, optionally decoding a character set and dropping NUL characters.
package source

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Runes reads UTF-8 runes from an io.RuneReader in chunks. Invalid sequences
// decode to utf8.RuneError. It satisfies buffer.Source.
type Runes struct {
	rr io.RuneReader
	br *bufio.Reader // set when rr is a bufio.Reader
}

// FromReader returns a rune source over r. When r already implements
// io.RuneReader it is used directly, otherwise it is wrapped in a
// bufio.Reader of the given size.
func FromReader(r io.Reader, size int) *Runes {
	if br, ok := r.(*bufio.Reader); ok {
		return &Runes{rr: br, br: br}
	}
	if rr, ok := r.(io.RuneReader); ok {
		return &Runes{rr: rr}
	}
	br := bufio.NewReaderSize(r, size)
	return &Runes{rr: br, br: br}
}

// Read fills p with runes. It stops early rather than block once the
// bufio.Reader it owns has nothing buffered and at least one rune was read.
func (s *Runes) Read(p []rune) (int, error) {
	n := 0
	for n < len(p) {
		if n > 0 && s.br != nil && s.br.Buffered() == 0 {
			break
		}
		r, _, err := s.rr.ReadRune()
		if err == io.EOF {
			if n > 0 {
				return n, nil
			}
			return 0, io.EOF
		}
		if err != nil {
			return n, errors.Wrap(err, "source: read rune")
		}
		p[n] = r
		n++
	}
	return n, nil
}

// Decode wraps r so that it yields UTF-8 decoded from enc with every NUL
// character removed. A nil enc only removes NULs.
func Decode(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == nil {
		return transform.NewReader(r, NullRemover())
	}
	return transform.NewReader(r, transform.Chain(enc.NewDecoder(), NullRemover()))
}
