// Package ordered provides an insertion-ordered, string-keyed map.
//
// The verifier's signatures are computed over a textual serialization of a
// parsed play, and that serialization is sensitive to the order in which
// mapping keys were written in the source YAML. Go's builtin map gives no
// iteration order guarantee at all, so every mapping that flows through
// parsing, cleaning, or serialization must be represented with Map instead.
package ordered

// Map is a string-keyed map that iterates in insertion order.
type Map struct {
	keys   []string
	values map[string]any
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]any)}
}

// NewWithCapacity returns an empty Map with room for n entries before the
// backing slice needs to grow.
func NewWithCapacity(n int) *Map {
	return &Map{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set inserts or updates the value at key. Updating an existing key does not
// change its position in iteration order.
func (m *Map) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value at key and whether it was present.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key, if present. It is a no-op otherwise.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// MoveToEnd moves an existing key to the last position in iteration order.
// It is a no-op if the key is not present.
func (m *Map) MoveToEnd(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			m.keys = append(m.keys, key)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Range calls fn for every entry in insertion order. Range stops early if fn
// returns false.
func (m *Map) Range(fn func(key string, value any) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of m: nested Maps and slices are themselves
// copied, so mutating the clone never affects m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := NewWithCapacity(len(m.keys))
	for _, k := range m.keys {
		out.Set(k, CloneValue(m.values[k]))
	}
	return out
}

// CloneValue deep-copies a value from the accepted value domain (nil, bool,
// int64, float64, string, *Map, []any).
func CloneValue(v any) any {
	switch val := v.(type) {
	case *Map:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	default:
		// Scalars (nil, bool, int64, float64, string) have value semantics.
		return val
	}
}

// Equal reports whether a and b contain the same keys, in the same order,
// with deeply-equal values.
func Equal(a, b *Map) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.keys) != len(b.keys) {
		return false
	}
	for i, k := range a.keys {
		if b.keys[i] != k {
			return false
		}
		if !valueEqual(a.values[k], b.values[k]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Map:
		bv, ok := b.(*Map)
		return ok && Equal(av, bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
