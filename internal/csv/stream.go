package csv

// stream.go wraps the byte stream an import arrives on.
//
// Uploaded exports occasionally carry bytes that are not valid UTF-8,
// usually from legacy Windows code pages. Rather than rejecting the file,
// SanitizingReader replaces the offending bytes with '?' on the fly so the
// tokenizer only ever sees valid UTF-8. The tokenizer itself handles the
// leading BOM, so no separate BOM reader is needed.

import (
	"io"
	"unicode/utf8"
)

// SanitizingReader wraps an io.Reader and replaces invalid UTF-8 bytes with
// '?' as data flows through. Multi-byte runes split across Read boundaries
// are held back until the remaining bytes arrive, so a valid rune is never
// mangled by buffer edges.
type SanitizingReader struct {
	r io.Reader

	// Bytes from the previous read that may start an unfinished rune.
	pending []byte
}

// NewSanitizingReader wraps r with on-the-fly UTF-8 sanitization.
func NewSanitizingReader(r io.Reader) *SanitizingReader {
	return &SanitizingReader{
		r:       r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *SanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.r.Read(p[offset:])
	n += offset

	if n == 0 {
		return 0, err
	}

	// Most export data is plain ASCII; skip the rune walk when it is.
	if allASCII(p[:n]) {
		return n, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place, replacing invalid bytes with '?' and
// holding back an unfinished trailing rune unless the stream has ended.
// Returns the number of bytes now valid in data.
func (s *SanitizingReader) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if r == utf8.RuneError && size == 1 {
			rest := data[read:]
			if !atEOF && expectedRuneLen(rest[0]) > len(rest) {
				// Could be the start of a rune finished by the next read.
				s.pending = append(s.pending, rest...)
				return write
			}
			data[write] = '?'
			write++
			read++
			continue
		}

		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// expectedRuneLen returns how many bytes a UTF-8 sequence starting with b
// should occupy, or 0 for a bare continuation byte.
func expectedRuneLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}
