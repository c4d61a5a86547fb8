package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"
)

func mapOf(pairs ...any) *ordered.Map {
	m := ordered.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

func TestSerializeScenarios(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"S1 single string field", mapOf("a", "a"), "ordereddict([('a', 'a')])"},
		{"S2 list field", mapOf("a", []any{"a1", "a2"}), "ordereddict([('a', ['a1', 'a2'])])"},
		{
			"S3 integer and float",
			mapOf("integer", int64(37), "float", 17.93233901),
			"ordereddict([('integer', 37), ('float', 17.93233901)])",
		},
		{"S8 empty mapping", ordered.New(), "ordereddict()"},
		{"S9 null value", mapOf("a", nil), "ordereddict([('a', None)])"},
		{"empty sequence", []any{}, "[]"},
		{"mixed types", mapOf("a", "a", "b", []any{"b1", "b2"}), "ordereddict([('a', 'a'), ('b', ['b1', 'b2'])])"},
		{"multiple string fields", mapOf("a", "a", "b", "b"), "ordereddict([('a', 'a'), ('b', 'b')])"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Serialize(tt.value))
		})
	}
}

func TestSerializeStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"S4 single quote only", "single'quote", `"single'quote"`},
		{"S5 both quotes", "both\"'quotes", `'both"\'quotes'`},
		{"S6 literal newline", "new\nline", `'new\nline'`},
		{"no quote", "no quote", "'no quote'"},
		{"double quote only", `double"quote`, `'double"quote'`},
		{"backslash", `\backslash`, `'\\backslash'`},
		{"tab", "tab\tchar", `'tab\tchar'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Serialize(tt.input))
		})
	}
}

func TestSerializeZeroWidthJoiner(t *testing.T) {
	// S7: U+200D (ZWJ) escapes to the six literal characters \u200d; a
	// realistic case is an emoji sequence joined by ZWJ, which must be
	// preserved verbatim (no NFC/NFD normalization) around the escape.
	input := "👨🏼" + "‍" + "🚀"
	expected := "'" + "👨🏼" + `\u200d` + "🚀" + "'"
	assert.Equal(t, expected, Serialize(input))
}

func TestSerializeZeroWidthSpaceAndNonJoiner(t *testing.T) {
	assert.Equal(t, `'a\u200bb'`, Serialize("a"+"​"+"b"))
	assert.Equal(t, `'a\u200cb'`, Serialize("a"+"‌"+"b"))
}

func TestSerializeNestedMapping(t *testing.T) {
	inner := mapOf("child", "value")
	outer := mapOf("parent", inner)
	assert.Equal(t, "ordereddict([('parent', ordereddict([('child', 'value')]))])", Serialize(outer))
}

func TestSerializeDeterministic(t *testing.T) {
	value := mapOf("a", "a", "b", []any{"b1", int64(2)})
	first := Serialize(value)
	second := Serialize(value)
	assert.Equal(t, first, second)
}

func TestSerializeKeyOrderPreserved(t *testing.T) {
	m := ordered.New()
	m.Set("z", int64(1))
	m.Set("a", int64(2))
	m.Set("m", int64(3))
	assert.Equal(t, "ordereddict([('z', 1), ('a', 2), ('m', 3)])", Serialize(m))
}
