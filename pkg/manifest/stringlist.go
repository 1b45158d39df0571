package manifest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// StringList accepts either a single scalar or a list of scalars and
// normalizes everything to strings, so manifests can write
//
//	id: 42
//	id: "a"
//	id: [1, 2, "x"]
//
// interchangeably.
type StringList []string

func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: value list items must be scalars", item.Line)
			}
			out = append(out, item.Value)
		}
		*s = out
		return nil
	default:
		return fmt.Errorf("line %d: expected scalar or list of scalars", node.Line)
	}
}

func (s *StringList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case []any:
		out := make(StringList, 0, len(v))
		for _, item := range v {
			str, err := scalarToString(item)
			if err != nil {
				return err
			}
			out = append(out, str)
		}
		*s = out
		return nil
	default:
		str, err := scalarToString(raw)
		if err != nil {
			return err
		}
		*s = StringList{str}
		return nil
	}
}

func scalarToString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "", fmt.Errorf("value list items must not be null")
	default:
		return "", fmt.Errorf("value list items must be scalars, got %T", v)
	}
}
