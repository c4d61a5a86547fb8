package playbook

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/yamlscalar"
)

// Load parses raw UTF-8 YAML text into an ordered sequence of ordered
// mappings. The top-level document must be a sequence of mappings. An empty
// sequence or empty document is not a parse error, because syntactically
// valid YAML ("[]" or "---\n") can still describe zero plays: Load returns
// an empty Playbook with a nil error, and callers reject it with a
// PreconditionError.
//
// Key order within every mapping, at every depth, is preserved exactly as it
// appears in the source: this function walks the yaml.v3 Node tree itself
// rather than unmarshaling into a Go map, because map iteration order is not
// guaranteed and a hash-map substitution here would silently break every
// signature computed downstream.
func Load(raw string) (Playbook, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &ParseError{cause: err}
	}

	if len(doc.Content) == 0 {
		// An entirely empty document (e.g. "" or "---") decodes as a
		// DocumentNode with no children. Treat it the same as an empty
		// sequence: it is validated by the caller, not rejected here.
		return Playbook{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, &ParseError{cause: fmt.Errorf("top-level YAML document must be a sequence, got kind %d", root.Kind)}
	}

	plays := make(Playbook, 0, len(root.Content))
	for _, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, &ParseError{cause: fmt.Errorf("play at index %d is not a mapping", len(plays))}
		}
		m, err := decodeMapping(item)
		if err != nil {
			return nil, &ParseError{cause: err}
		}
		plays = append(plays, m)
	}

	return plays, nil
}

func decodeNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return decodeMapping(node)
	case yaml.SequenceNode:
		return decodeSequence(node)
	case yaml.ScalarNode:
		return decodeScalar(node), nil
	case yaml.AliasNode:
		return decodeNode(node.Alias)
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", node.Kind)
	}
}

func decodeMapping(node *yaml.Node) (*ordered.Map, error) {
	m := ordered.NewWithCapacity(len(node.Content) / 2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("mapping key must be a scalar, got kind %d", keyNode.Kind)
		}
		key, ok := decodeScalar(keyNode).(string)
		if !ok {
			// Keys that resolve to a non-string scalar (e.g. a bare `true:`)
			// are still used by their literal source text, since the data
			// model requires string keys.
			key = keyNode.Value
		}
		value, err := decodeNode(valNode)
		if err != nil {
			return nil, err
		}
		m.Set(key, value)
	}
	return m, nil
}

func decodeSequence(node *yaml.Node) ([]any, error) {
	out := make([]any, 0, len(node.Content))
	for _, item := range node.Content {
		v, err := decodeNode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeScalar(node *yaml.Node) any {
	if node.Style&yaml.TaggedStyle != 0 && node.Tag == "!!str" {
		// An explicit "!!str" tag always wins, even over a plain-looking
		// token; tags beyond the core scalars are otherwise ignored, per
		// the loader's YAML 1.1-ish, not 1.2-compliant, contract.
		return node.Value
	}
	quoted := node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0
	return yamlscalar.Resolve(node.Value, quoted)
}
