// Package yamlscalar implements the two custom scalar resolution rules the
// verifier needs on top of plain YAML 1.1 resolution: a stricter boolean
// rule and an integer rule that treats colon-separated tokens as strings.
//
// Signature stability depends on every implementation resolving a given raw
// scalar token to exactly the same Go value, so resolution is done directly
// against the raw token text rather than relying on a YAML library's own
// (and possibly differently-configured) implicit typing.
//
// Grounded on the CustomSafeConstructor in
// insights_ansible_playbook_lib/serialization.py: construct_yaml_bool only
// accepts the literal (case-folded) tokens "true"/"false"; construct_yaml_int
// treats any token containing a colon as a string, uses the normal YAML
// rules for base-prefixed tokens, and otherwise parses base 10.
package yamlscalar

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	intPlainRe  = regexp.MustCompile(`^[-+]?[0-9][0-9_]*$`)
	intBase2Re  = regexp.MustCompile(`^[-+]?0b[0-1_]+$`)
	intBase8Re  = regexp.MustCompile(`^[-+]?0o?[0-7_]+$`)
	intBase16Re = regexp.MustCompile(`^[-+]?0x[0-9a-fA-F_]+$`)

	floatRe     = regexp.MustCompile(`^[-+]?(\.[0-9]+|[0-9][0-9_]*(\.[0-9_]*)?)([eE][-+]?[0-9]+)?$`)
	floatInfRe  = regexp.MustCompile(`^[-+]?\.(?i:inf)$`)
	floatNanRe  = regexp.MustCompile(`^\.(?i:nan)$`)
	nullWordsRe = regexp.MustCompile(`^(?i:null)$`)
)

// Resolve determines the dynamic value of a raw scalar token under the
// verifier's rules. quoted indicates the scalar was written with an
// explicit quoting or block style in the source (single/double quotes,
// literal "|" or folded ">" blocks); quoted scalars are always strings,
// regardless of what their text looks like.
func Resolve(raw string, quoted bool) any {
	if quoted {
		return raw
	}

	if raw == "" || raw == "~" || nullWordsRe.MatchString(raw) {
		return nil
	}

	if lower := strings.ToLower(raw); lower == "true" || lower == "false" {
		return lower == "true"
	}

	if iv, ok := resolveInt(raw); ok {
		return iv
	}

	if fv, ok := resolveFloat(raw); ok {
		return fv
	}

	return raw
}

// resolveInt implements the integer override: colon-bearing tokens are
// strings (blocking the H:MM:SS sexagesimal interpretation); base-prefixed
// tokens are parsed per their base; everything else integer-like is parsed
// as base 10.
func resolveInt(raw string) (int64, bool) {
	if strings.Contains(raw, ":") {
		return 0, false
	}

	clean := strings.ReplaceAll(raw, "_", "")

	switch {
	case intBase2Re.MatchString(raw):
		return parseSignedBase(clean, "0b", 2)
	case intBase16Re.MatchString(raw):
		return parseSignedBase(clean, "0x", 16)
	case intBase8Re.MatchString(raw):
		body := clean
		neg := false
		if len(body) > 0 && (body[0] == '+' || body[0] == '-') {
			neg = body[0] == '-'
			body = body[1:]
		}
		body = strings.TrimPrefix(body, "0o")
		body = strings.TrimPrefix(body, "0")
		if body == "" {
			return 0, false
		}
		v, err := strconv.ParseInt(body, 8, 64)
		if err != nil {
			return 0, false
		}
		if neg {
			v = -v
		}
		return v, true
	case intPlainRe.MatchString(raw):
		v, err := strconv.ParseInt(clean, 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

func parseSignedBase(clean, prefix string, base int) (int64, bool) {
	neg := false
	body := clean
	if len(body) > 0 && (body[0] == '+' || body[0] == '-') {
		neg = body[0] == '-'
		body = body[1:]
	}
	body = strings.TrimPrefix(body, prefix)
	v, err := strconv.ParseInt(body, base, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

func resolveFloat(raw string) (float64, bool) {
	if floatNanRe.MatchString(raw) {
		return nan(), true
	}
	if floatInfRe.MatchString(raw) {
		if strings.HasPrefix(raw, "-") {
			return negInf(), true
		}
		return posInf(), true
	}
	if !floatRe.MatchString(raw) {
		return 0, false
	}
	if !strings.ContainsAny(raw, ".eE") {
		// Purely digits with no fractional/exponent part is an integer
		// token, not a float; resolveInt already claims those.
		return 0, false
	}
	clean := strings.ReplaceAll(raw, "_", "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}

func negInf() float64 {
	var zero float64
	return -1 / zero
}
