package ordered_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"
)

func TestSetPreservesInsertionOrder(t *testing.T) {
	m := ordered.New()
	m.Set("z", 1)
	m.Set("a", 2)
	m.Set("m", 3)
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())
}

func TestSetUpdateDoesNotChangePosition(t *testing.T) {
	m := ordered.New()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 99)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 99, v)
}

func TestDeleteRemovesKeyAndPreservesOrder(t *testing.T) {
	m := ordered.New()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	m := ordered.New()
	m.Set("a", 1)
	m.Delete("missing")
	assert.Equal(t, []string{"a"}, m.Keys())
}

func TestMoveToEndReordersExistingKey(t *testing.T) {
	m := ordered.New()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.MoveToEnd("a")
	assert.Equal(t, []string{"b", "c", "a"}, m.Keys())
}

func TestMoveToEndMissingKeyIsNoop(t *testing.T) {
	m := ordered.New()
	m.Set("a", 1)
	m.MoveToEnd("missing")
	assert.Equal(t, []string{"a"}, m.Keys())
}

func TestCloneIsDeepAndIndependent(t *testing.T) {
	inner := ordered.New()
	inner.Set("x", 1)
	outer := ordered.New()
	outer.Set("inner", inner)
	outer.Set("list", []any{1, 2, 3})

	clone := outer.Clone()
	clonedInner, _ := clone.Get("inner")
	clonedInner.(*ordered.Map).Set("x", 99)

	originalInner, _ := outer.Get("inner")
	v, _ := originalInner.(*ordered.Map).Get("x")
	assert.Equal(t, 1, v)

	clonedList, _ := clone.Get("list")
	clonedList.([]any)[0] = 100
	originalList, _ := outer.Get("list")
	assert.Equal(t, 1, originalList.([]any)[0])
}

func TestEqualComparesKeyOrderAndValues(t *testing.T) {
	a := ordered.New()
	a.Set("x", 1)
	a.Set("y", 2)

	b := ordered.New()
	b.Set("x", 1)
	b.Set("y", 2)

	c := ordered.New()
	c.Set("y", 2)
	c.Set("x", 1)

	assert.True(t, ordered.Equal(a, b))
	assert.False(t, ordered.Equal(a, c))
}

func TestRangeStopsEarly(t *testing.T) {
	m := ordered.New()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	var seen []string
	m.Range(func(key string, value any) bool {
		seen = append(seen, key)
		return key != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}
