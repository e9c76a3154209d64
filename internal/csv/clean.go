package csv

import "strings"

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, the Excel formula prefix (="..."), and stray
// wrapping quotes that survived tokenizing.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return s
}

// CleanHeader normalizes a header cell for case-insensitive lookup.
func CleanHeader(s string) string {
	return strings.ToLower(CleanCell(s))
}
