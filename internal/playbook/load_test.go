package playbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/playbook"
)

func TestLoadPreservesKeyOrder(t *testing.T) {
	raw := `
- hosts: all
  vars:
    z: 1
    a: 2
  tasks: []
`
	plays, err := playbook.Load(raw)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Equal(t, []string{"hosts", "vars", "tasks"}, plays[0].Keys())

	vars, ok := plays[0].Get("vars")
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, vars.(*ordered.Map).Keys())
}

func TestLoadEmptyDocumentIsEmptyPlaybookNotError(t *testing.T) {
	plays, err := playbook.Load("")
	require.NoError(t, err)
	assert.Empty(t, plays)

	plays, err = playbook.Load("[]\n")
	require.NoError(t, err)
	assert.Empty(t, plays)
}

func TestLoadRejectsNonSequenceTopLevel(t *testing.T) {
	_, err := playbook.Load("hosts: all\n")
	require.Error(t, err)
	var parseErr *playbook.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestLoadRejectsNonMappingPlay(t *testing.T) {
	_, err := playbook.Load("- just a string\n")
	require.Error(t, err)
	var parseErr *playbook.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestLoadScalarResolution(t *testing.T) {
	raw := `
- vars:
    flag: true
    count: 42
    ratio: "3.14"
    label: "true"
    empty:
`
	plays, err := playbook.Load(raw)
	require.NoError(t, err)
	vars := mustVars(t, plays[0])

	v, _ := vars.Get("flag")
	assert.Equal(t, true, v)

	v, _ = vars.Get("count")
	assert.Equal(t, int64(42), v)

	// Quoted scalars are always strings, even if they look numeric.
	v, _ = vars.Get("ratio")
	assert.Equal(t, "3.14", v)

	v, _ = vars.Get("label")
	assert.Equal(t, "true", v)

	v, ok := vars.Get("empty")
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestLoadExplicitStrTagOverridesResolution(t *testing.T) {
	raw := "- vars:\n    id: !!str 0042\n"
	plays, err := playbook.Load(raw)
	require.NoError(t, err)
	vars := mustVars(t, plays[0])
	v, _ := vars.Get("id")
	assert.Equal(t, "0042", v)
}

func TestLoadNestedSequencesAndMappings(t *testing.T) {
	raw := `
- tasks:
    - name: one
      vars:
        x: 1
    - name: two
`
	plays, err := playbook.Load(raw)
	require.NoError(t, err)
	tasksValue, ok := plays[0].Get("tasks")
	require.True(t, ok)
	tasks := tasksValue.([]any)
	require.Len(t, tasks, 2)

	first := tasks[0].(*ordered.Map)
	assert.Equal(t, []string{"name", "vars"}, first.Keys())
}

func mustVars(t *testing.T, play *playbook.Play) *ordered.Map {
	t.Helper()
	v, ok := play.Get("vars")
	if !ok {
		t.Fatal("play has no vars")
	}
	return v.(*ordered.Map)
}
