package csv

import "strings"

// Supported field delimiters.
const (
	Comma     = ','
	Semicolon = ';'
)

// DetectDelimiter picks the field delimiter by counting candidates on the
// first line of text. Semicolon wins only when it strictly outnumbers
// commas; everything else, including a line with no delimiter at all,
// falls back to comma so a single-column file still parses.
//
// This is a heuristic, not a guarantee: a header like "last, first;notes"
// reads as comma-delimited. It never fails.
func DetectDelimiter(text string) rune {
	line := text
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}

	if strings.Count(line, ";") > strings.Count(line, ",") {
		return Semicolon
	}
	return Comma
}
