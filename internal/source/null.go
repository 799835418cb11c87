package source

import (
	"bytes"

	"golang.org/x/text/transform"
)

type nullRemover struct{ transform.NopResetter }

// NullRemover returns a transformer that drops every 0x00 byte. Applied to
// UTF-8 it removes U+0000 and nothing else, since no other UTF-8 sequence
// contains a zero byte.
func NullRemover() transform.Transformer {
	return nullRemover{}
}

func (nullRemover) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		i := bytes.IndexByte(src[nSrc:], 0)
		chunk := src[nSrc:]
		if i >= 0 {
			chunk = chunk[:i]
		}
		if len(chunk) > len(dst)-nDst {
			n := copy(dst[nDst:], chunk)
			return nDst + n, nSrc + n, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], chunk)
		nSrc += len(chunk)
		if i >= 0 {
			nSrc++ // the NUL itself
		}
	}
	return nDst, nSrc, nil
}
