package clients

import "strings"

// NormalizeName collapses runs of whitespace into single spaces, so
// "Acme   Corporation " and "Acme Corporation" import as the same value.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail lower-cases the address. Duplicate detection compares
// emails verbatim, so case must not create distinct entries.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone strips common formatting characters, keeping digits and a
// leading plus. "+1 (555) 010-0100" and "+15550100100" import as the same
// value. Unrecognized characters are kept so garbage still fails visibly.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+':
			if i == 0 {
				b.WriteRune(r)
			}
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// formatting, drop
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
