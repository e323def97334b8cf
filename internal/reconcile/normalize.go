package reconcile

import "strings"

// Normalize strips every character outside [A-Za-z0-9 ] from s. Order and case
// of the remaining characters are kept and whitespace is neither trimmed nor
// collapsed, so Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if keep(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// keep operates on bytes: every byte of a multi-byte UTF-8 sequence is >= 0x80
// and therefore dropped along with the rune it belongs to.
func keep(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == ' ':
		return true
	default:
		return false
	}
}
