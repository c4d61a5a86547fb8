package playbook

import "strings"

// Clean removes the fields named by vars/insights_signature_exclude from a
// deep copy of play and returns the copy. play itself is never mutated.
//
// Grounded on clean_play in insights_ansible_playbook_lib/__init__.py: the
// exclusion directive is a comma-separated list of "/top" or "/top/child"
// paths. The directive string itself is never removed — only the fields it
// names, which by construction excludes the directive's sibling entry
// "insights_signature" but keeps "insights_signature_exclude" part of the
// signed material.
func Clean(play *Play) (*Play, error) {
	varsValue, ok := play.Get("vars")
	if !ok {
		return nil, newPreconditionError(
			"the play does not have the key 'vars', cannot exclude dynamic fields")
	}
	vars, ok := varsValue.(*Play)
	if !ok {
		return nil, newPreconditionError(
			"the play's 'vars' field is not a mapping, cannot exclude dynamic fields")
	}

	directiveValue, ok := vars.Get("insights_signature_exclude")
	if !ok {
		return nil, newPreconditionError(
			"the play does not have the key 'vars/insights_signature_exclude', " +
				"cannot exclude dynamic fields")
	}
	directive, ok := directiveValue.(string)
	if !ok {
		return nil, newPreconditionError(
			"'vars/insights_signature_exclude' is not a string")
	}

	result := play.Clone()

	for _, field := range strings.Split(directive, ",") {
		elements := splitNonEmpty(field, "/")
		if len(elements) != 1 && len(elements) != 2 {
			return nil, newPreconditionError(
				"variable field '%s' is too deep or shallow, only one or two levels are allowed", field)
		}
		if !isVariableField(elements[0]) {
			return nil, newPreconditionError("variable field '%s' cannot be excluded", field)
		}

		if len(elements) == 1 {
			if !result.Has(elements[0]) {
				return nil, newPreconditionError(
					"variable field '%s' is not present in the play", field)
			}
			result.Delete(elements[0])
			continue
		}

		parentValue, ok := result.Get(elements[0])
		if !ok {
			return nil, newPreconditionError(
				"variable field '%s' is not present in the play", field)
		}
		parent, ok := parentValue.(*Play)
		if !ok {
			return nil, newPreconditionError(
				"variable field '%s' is not present in the play", field)
		}
		if !parent.Has(elements[1]) {
			return nil, newPreconditionError(
				"variable field '%s' is not present in the play", field)
		}
		parent.Delete(elements[1])
	}

	return result, nil
}

func splitNonEmpty(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
