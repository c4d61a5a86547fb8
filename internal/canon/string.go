package canon

import "strings"

// writeString applies the two-phase string rule from spec §4.C: a
// character-level escape pass, followed by quote selection that prefers a
// double quote over escaping a single quote, but never introduces a double
// quote escape.
func writeString(b *strings.Builder, s string) {
	escaped := escape(s)

	hasSingle := strings.Contains(escaped, "'")
	hasDouble := strings.Contains(escaped, "\"")

	switch {
	case hasSingle && !hasDouble:
		b.WriteByte('"')
		b.WriteString(escaped)
		b.WriteByte('"')
	case hasSingle && hasDouble:
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(escaped, "'", "\\'"))
		b.WriteByte('\'')
	default:
		b.WriteByte('\'')
		b.WriteString(escaped)
		b.WriteByte('\'')
	}
}

const (
	zeroWidthSpace     = '\u200b'
	zeroWidthNonJoiner = '\u200c'
	zeroWidthJoiner    = '\u200d'
)

// escape performs the character-level escape map from spec §4.C, in order,
// on every rune of s. Everything not named here — including non-ASCII
// letters and emoji — passes through verbatim as its UTF-8 bytes; in
// particular no Unicode normalization is performed, so a zero-width joiner
// between two emoji is preserved (escaped, not stripped or recomposed).
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case zeroWidthSpace:
			b.WriteString("\\u200b")
		case zeroWidthNonJoiner:
			b.WriteString("\\u200c")
		case zeroWidthJoiner:
			b.WriteString("\\u200d")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
