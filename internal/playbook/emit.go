package playbook

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"
)

// Emit renders plays back to YAML text with key order preserved exactly,
// the inverse of Load. It builds a yaml.Node tree by hand rather than
// relying on yaml.v3's struct/map marshaling, for the same reason Load
// walks a Node tree to decode: a plain map has no iteration order
// guarantee, and the signer must re-emit the same key order it signed.
func Emit(plays Playbook) (string, error) {
	root := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, play := range plays {
		root.Content = append(root.Content, encodeMapping(play))
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func encodeValue(value any) *yaml.Node {
	switch v := value.(type) {
	case *ordered.Map:
		return encodeMapping(v)
	case []any:
		return encodeSequence(v)
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
	case bool:
		value := "false"
		if v {
			value = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: value}
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	default:
		var node yaml.Node
		_ = node.Encode(v)
		return &node
	}
}

func encodeMapping(m *ordered.Map) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Range(func(key string, value any) bool {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			encodeValue(value),
		)
		return true
	})
	return node
}

func encodeSequence(seq []any) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range seq {
		node.Content = append(node.Content, encodeValue(item))
	}
	return node
}
