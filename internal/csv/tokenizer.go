package csv

// tokenizer.go turns raw export text into rows of fields.
//
// The tokenizer is a single-pass state machine with exactly two states,
// unquoted and quoted. There is deliberately no error state: files with
// unterminated quotes or ragged rows come out of real spreadsheets every
// day, and rejecting them would throw away the rows that are fine. The
// worst case for broken quoting is that the remainder of the input lands
// in one oversized field.

import "strings"

// bom is the UTF-8 byte order mark Excel prepends to exported files.
const bom = "﻿"

type tokenizerState int

const (
	stateUnquoted tokenizerState = iota
	stateQuoted
)

// Parse tokenizes raw text into rows of trimmed fields, detecting the
// delimiter from the first line. See ParseWith for the dialect rules.
func Parse(text string) [][]string {
	text = strings.TrimPrefix(text, bom)
	return ParseWith(text, DetectDelimiter(text))
}

// ParseWith tokenizes raw text into rows of trimmed fields using an
// explicit delimiter. The delimiter must be an ASCII character; in
// practice it is one of Comma or Semicolon.
//
// Dialect rules:
//   - A double-quoted field may contain the delimiter and line breaks.
//   - A doubled quote inside a quoted field is a literal quote and does
//     not close the field.
//   - \n, \r\n and bare \r all terminate a row; \r\n is one boundary,
//     never two.
//   - A leading byte order mark is stripped.
//   - Every field is trimmed of surrounding whitespace after extraction.
//   - Rows whose fields are all empty (a trailing blank line, a line of
//     bare delimiters) are dropped.
//
// ParseWith never fails. An unterminated quote swallows the rest of the
// input into the open field; the caller gets a possibly shortened row
// set rather than an error.
func ParseWith(text string, delim rune) [][]string {
	text = strings.TrimPrefix(text, bom)

	var (
		rows  [][]string
		row   []string
		field strings.Builder
		state = stateUnquoted
		d     = byte(delim)
	)

	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		endField()
		for _, f := range row {
			if f != "" {
				rows = append(rows, row)
				break
			}
		}
		row = nil
	}

	// Structural characters are all ASCII, so the scan can walk bytes;
	// multi-byte runes pass through into the field buffer untouched.
	for i := 0; i < len(text); i++ {
		c := text[i]

		if state == stateQuoted {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
					continue
				}
				state = stateUnquoted
				continue
			}
			field.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			state = stateQuoted
		case d:
			endField()
		case '\n':
			endRow()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			field.WriteByte(c)
		}
	}

	// Flush whatever the final line left behind.
	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}

	return rows
}
