// Package playbook implements the playbook data model, the order-preserving
// loader (spec component B), and the play cleaner (spec component D).
package playbook

import "github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"

// Play is a single ordered mapping representing one automation unit within a
// playbook. It is kept as an alias, rather than a distinct type, so that
// *Play values can be passed directly to ordered.Map helpers and to the
// canonical serializer without conversion.
type Play = ordered.Map

// Playbook is an ordered sequence of plays, in source order.
type Playbook []*Play

// VariableFields lists the top-level keys that insights_signature_exclude
// directives are allowed to name.
var VariableFields = []string{"hosts", "vars"}

func isVariableField(name string) bool {
	for _, f := range VariableFields {
		if f == name {
			return true
		}
	}
	return false
}
