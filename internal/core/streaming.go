package core

// streaming.go provides the reader that sits between an uploaded file and the
// CSV parser. It removes the UTF-8 byte order mark written by Excel on
// Windows and replaces invalid UTF-8 bytes with '?' so a sheet saved as
// Latin-1 still parses instead of being rejected.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SanitizingReader wraps an io.Reader, skips a leading BOM and replaces
// invalid UTF-8 sequences with '?' on the fly. Memory use is bounded by the
// internal buffer regardless of file size.
type SanitizingReader struct {
	src     *bufio.Reader
	pending []byte // encoded bytes of a rune that did not fit the last Read
	err     error
}

// NewSanitizingReader creates a SanitizingReader over r.
func NewSanitizingReader(r io.Reader) *SanitizingReader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return &SanitizingReader{src: br}
}

// Read implements io.Reader.
func (s *SanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	for n < len(p) {
		if s.err != nil {
			break
		}

		r, size, err := s.src.ReadRune()
		if err != nil {
			s.err = err
			break
		}

		if r == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}

		var buf [utf8.UTFMax]byte
		w := utf8.EncodeRune(buf[:], r)
		c := copy(p[n:], buf[:w])
		n += c
		if c < w {
			s.pending = append(s.pending, buf[c:w]...)
		}
	}

	if n > 0 {
		return n, nil
	}
	return 0, s.err
}
