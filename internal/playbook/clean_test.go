package playbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/playbook"
)

func TestCleanRemovesNamedFieldsOnly(t *testing.T) {
	raw := `
- hosts: all
  vars:
    insights_signature_exclude: "/hosts,/vars/insights_signature"
    insights_signature: deadbeef
  tasks: []
`
	plays, err := playbook.Load(raw)
	require.NoError(t, err)

	cleaned, err := playbook.Clean(plays[0])
	require.NoError(t, err)

	assert.False(t, cleaned.Has("hosts"))
	vars := mustVars(t, cleaned)
	assert.False(t, vars.Has("insights_signature"))
	assert.True(t, vars.Has("insights_signature_exclude"))
	assert.True(t, cleaned.Has("tasks"))
}

func TestCleanDoesNotMutateOriginal(t *testing.T) {
	raw := `
- hosts: all
  vars:
    insights_signature_exclude: "/hosts"
`
	plays, err := playbook.Load(raw)
	require.NoError(t, err)

	_, err = playbook.Clean(plays[0])
	require.NoError(t, err)

	assert.True(t, plays[0].Has("hosts"))
}

func TestCleanRequiresVars(t *testing.T) {
	plays, err := playbook.Load("- hosts: all\n")
	require.NoError(t, err)

	_, err = playbook.Clean(plays[0])
	require.Error(t, err)
	var preErr *playbook.PreconditionError
	assert.ErrorAs(t, err, &preErr)
}

func TestCleanRequiresExclusionDirective(t *testing.T) {
	plays, err := playbook.Load("- vars: {}\n")
	require.NoError(t, err)

	_, err = playbook.Clean(plays[0])
	require.Error(t, err)
}

func TestCleanRejectsForbiddenField(t *testing.T) {
	raw := `
- vars:
    insights_signature_exclude: "/tasks"
  tasks: []
`
	plays, err := playbook.Load(raw)
	require.NoError(t, err)

	_, err = playbook.Clean(plays[0])
	require.Error(t, err)
}

func TestCleanRejectsTooDeepPath(t *testing.T) {
	raw := `
- vars:
    insights_signature_exclude: "/vars/a/b"
`
	plays, err := playbook.Load(raw)
	require.NoError(t, err)

	_, err = playbook.Clean(plays[0])
	require.Error(t, err)
}

func TestCleanRejectsMissingField(t *testing.T) {
	raw := `
- vars:
    insights_signature_exclude: "/vars/nonexistent"
`
	plays, err := playbook.Load(raw)
	require.NoError(t, err)

	_, err = playbook.Clean(plays[0])
	require.Error(t, err)
}

func TestCleanRemovesNestedVariableField(t *testing.T) {
	raw := `
- vars:
    insights_signature_exclude: "/vars/insights_signature"
    insights_signature: deadbeef
    other: kept
`
	plays, err := playbook.Load(raw)
	require.NoError(t, err)

	cleaned, err := playbook.Clean(plays[0])
	require.NoError(t, err)

	vars := mustVars(t, cleaned)
	assert.False(t, vars.Has("insights_signature"))
	assert.True(t, vars.Has("other"))
	assert.True(t, vars.Has("insights_signature_exclude"))
}
