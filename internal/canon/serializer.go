// Package canon implements the canonical textual serializer (spec component
// C). Its output must be byte-exact and reproducible: the serialization
// feeds directly into the SHA-256 digest that gets cryptographically signed,
// so any deviation — including deviations that would be semantically
// harmless in a general-purpose encoder — breaks every existing signature.
//
// Grounded on insights_ansible_playbook_lib/serialization.py's Serializer:
// the textual form matches what a widely used scripting runtime prints for
// an ordered dictionary (Python's repr of collections.OrderedDict), so that
// external verifiers written in that ecosystem produce identical bytes.
package canon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"
)

// Serialize produces the single-line canonical textual encoding of value,
// with no trailing newline. value must be built from the accepted value
// domain: nil, bool, int64, float64, string, *ordered.Map, []any.
func Serialize(value any) string {
	var b strings.Builder
	writeValue(&b, value)
	return b.String()
}

func writeValue(b *strings.Builder, value any) {
	switch v := value.(type) {
	case *ordered.Map:
		writeMapping(b, v)
	case []any:
		writeSequence(b, v)
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case float64:
		b.WriteString(formatFloat(v))
	case string:
		writeString(b, v)
	case nil:
		b.WriteString("None")
	case bool:
		// Signed material should never carry a live bool: the signer
		// installs strings for every field it writes. If one does reach
		// here regardless, emit Python's bool repr so behavior stays
		// defined rather than panicking.
		if v {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	default:
		// Defensive fallback for a value outside the accepted domain. Not
		// expected to be reachable via the loader; preserved only because
		// the reference implementation has the same escape hatch.
		b.WriteByte('\'')
		fmt.Fprintf(b, "%v", v)
		b.WriteByte('\'')
	}
}

func writeMapping(b *strings.Builder, m *ordered.Map) {
	if m.Len() == 0 {
		b.WriteString("ordereddict()")
		return
	}
	b.WriteString("ordereddict([")
	first := true
	m.Range(func(key string, value any) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString("('")
		b.WriteString(key)
		b.WriteString("', ")
		writeValue(b, value)
		b.WriteByte(')')
		return true
	})
	b.WriteString("])")
}

func writeSequence(b *strings.Builder, seq []any) {
	b.WriteByte('[')
	for i, v := range seq {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(b, v)
	}
	b.WriteByte(']')
}

// formatFloat produces Go's shortest decimal string that round-trips to v
// ('g' format). This matches Python's repr(float) for values with a
// fractional part that stay in fixed-point notation (17.93233901). It
// differs for integral floats, which print without a trailing ".0" (2.0
// gives "2", Python gives "2.0"), and for exponents of 6 and above, which Go
// prints in scientific notation (1e6 gives "1e+06", Python gives
// "1000000.0"). See Open Questions in SPEC_FULL.md.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

