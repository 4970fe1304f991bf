package config

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"wf-exporter/internal/bundle"
)

// Entry is one key/value pair of an OrderedMap.
type Entry struct {
	Key   string
	Value string
}

// OrderedMap is a string mapping that keeps declaration order.
type OrderedMap []Entry

// --- OrderedMap YAML methods ---

// UnmarshalYAML accepts a mapping of scalars and keeps key order.
func (m *OrderedMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping, got %v", node.Line, kindName(node.Kind))
	}

	out := make(OrderedMap, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value for %q must be a scalar", v.Line, k.Value)
		}

		out = append(out, Entry{Key: k.Value, Value: v.Value})
	}

	*m = out

	return nil
}

// MarshalYAML emits a mapping node in stored order.
func (m OrderedMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		node.Content = append(node.Content, bundle.StringNode(e.Key), bundle.StringNode(e.Value))
	}

	return node, nil
}

// --- OrderedMap TOML methods ---

// UnmarshalTOML accepts a table of strings. TOML decoding does not expose key
// order here, so keys are sorted; the loader reorders them from metadata.
func (m *OrderedMap) UnmarshalTOML(v any) error {
	table, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("expected table, got %T", v)
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make(OrderedMap, 0, len(keys))

	for _, k := range keys {
		s, ok := table[k].(string)
		if !ok {
			return fmt.Errorf("value for %q must be a string, got %T", k, table[k])
		}

		out = append(out, Entry{Key: k, Value: s})
	}

	*m = out

	return nil
}

// Keys returns keys in order.
func (m OrderedMap) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}

	return keys
}

// reorder sorts entries to follow order; keys missing from order keep their
// relative position at the end.
func (m OrderedMap) reorder(order []string) OrderedMap {
	rank := make(map[string]int, len(order))
	for i, k := range order {
		if _, seen := rank[k]; !seen {
			rank[k] = i
		}
	}

	out := append(OrderedMap(nil), m...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i].Key]
		rj, jok := rank[out[j].Key]

		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		default:
			return false
		}
	})

	return out
}

// ID is a job or pipeline identifier. Jobs use integers, pipelines use
// UUID strings; both are kept as text.
type ID string

// UnmarshalYAML accepts any scalar.
func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", node.Line)
	}

	*id = ID(node.Value)

	return nil
}

// UnmarshalTOML accepts an integer or a string.
func (id *ID) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case int64:
		*id = ID(strconv.FormatInt(val, 10))
	case string:
		*id = ID(val)
	default:
		return fmt.Errorf("id must be an integer or string, got %T", v)
	}

	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
