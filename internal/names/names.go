// Package names implements the single normalization pipeline used
// everywhere node names are compared: add, update, remove, connection
// endpoints, and the autofixer. Callers must not hand-roll a local
// variant; see the name-collision checks in internal/diff.
package names

import "strings"

// Normalize trims surrounding whitespace, collapses any run of internal
// whitespace to a single space, and unescapes doubled backslashes and
// escaped quotes. Two names collide iff their normalized forms are equal.
func Normalize(name string) string {
	s := unescape(strings.TrimSpace(name))
	return collapseWhitespace(s)
}

// Equal reports whether a and b collide under normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !inSpace {
				b.WriteRune(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// unescape reverses doubled backslashes (`\\` -> `\`) and escaped quotes
// (`\"` -> `"`, `\'` -> `'`) produced by some upstream JSON round-trips.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case '"':
				b.WriteByte('"')
				i++
				continue
			case '\'':
				b.WriteByte('\'')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
