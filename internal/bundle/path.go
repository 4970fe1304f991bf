package bundle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldPath is a parsed field locator.
type FieldPath struct {
	Segments []PathSegment
}

// PathSegment is one dotted component of a FieldPath.
type PathSegment struct {
	Name    string
	IsSlice bool
}

// String renders the locator back into its textual form.
func (fp FieldPath) String() string {
	parts := make([]string, len(fp.Segments))
	for i, seg := range fp.Segments {
		parts[i] = seg.Name
		if seg.IsSlice {
			parts[i] += "[]"
		}
	}

	return strings.Join(parts, ".")
}

// ParsePath parses a field locator string into a FieldPath.
// Supports: "field", "nested.field", "items[]", "items[].name".
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		isSlice := false
		name := part

		if strings.HasSuffix(part, "[]") {
			isSlice = true
			name = strings.TrimSuffix(part, "[]")

			if name == "" {
				return FieldPath{}, fmt.Errorf("invalid path %q: slice without field name", path)
			}
		}

		if !isValidIdent(name) {
			return FieldPath{}, fmt.Errorf("invalid path %q: invalid identifier %q", path, name)
		}

		segments = append(segments, PathSegment{
			Name:    name,
			IsSlice: isSlice,
		})
	}

	return FieldPath{Segments: segments}, nil
}

// MustParsePath is like ParsePath but panics on error. Intended for static tables.
func MustParsePath(path string) FieldPath {
	fp, err := ParsePath(path)
	if err != nil {
		panic(err)
	}

	return fp
}

// Field is a resolved scalar addressed by a concrete locator.
type Field struct {
	// Locator is the concrete path, e.g. "libraries[1].whl".
	Locator string
	// Node is the scalar node; mutating Node.Value rewrites the document.
	Node *yaml.Node
}

// Value returns the scalar text.
func (f Field) Value() string {
	return f.Node.Value
}

// Resolve returns every scalar under node addressed by fp, in document order.
// Missing intermediate keys simply produce no fields.
func (fp FieldPath) Resolve(node *yaml.Node) []Field {
	var out []Field

	fp.walk(node, 0, "", true, &out)

	return out
}

// Nodes is like Resolve but returns the addressed nodes of any kind.
func (fp FieldPath) Nodes(node *yaml.Node) []Field {
	var out []Field

	fp.walk(node, 0, "", false, &out)

	return out
}

// First returns the first resolved field, if any.
func (fp FieldPath) First(node *yaml.Node) (Field, bool) {
	fields := fp.Resolve(node)
	if len(fields) == 0 {
		return Field{}, false
	}

	return fields[0], true
}

func (fp FieldPath) walk(node *yaml.Node, idx int, prefix string, scalars bool, out *[]Field) {
	if node == nil || idx >= len(fp.Segments) {
		return
	}

	seg := fp.Segments[idx]
	last := idx == len(fp.Segments)-1

	child := MappingValue(node, seg.Name)
	if child == nil {
		return
	}

	loc := seg.Name
	if prefix != "" {
		loc = prefix + "." + seg.Name
	}

	if !seg.IsSlice {
		if last {
			if !scalars || child.Kind == yaml.ScalarNode {
				*out = append(*out, Field{Locator: loc, Node: child})
			}

			return
		}

		fp.walk(child, idx+1, loc, scalars, out)

		return
	}

	if child.Kind != yaml.SequenceNode {
		return
	}

	for i, item := range child.Content {
		itemLoc := loc + "[" + strconv.Itoa(i) + "]"

		if last {
			if !scalars || item.Kind == yaml.ScalarNode {
				*out = append(*out, Field{Locator: itemLoc, Node: item})
			}

			continue
		}

		fp.walk(item, idx+1, itemLoc, scalars, out)
	}
}

// LookupAny resolves fp against a generic decoded value (map[string]any / []any)
// and returns concrete locator -> string value pairs, in order.
func (fp FieldPath) LookupAny(v any) []KeyValue {
	var out []KeyValue

	fp.walkAny(v, 0, "", &out)

	return out
}

// KeyValue is an ordered locator/value pair.
type KeyValue struct {
	Key   string
	Value string
}

func (fp FieldPath) walkAny(v any, idx int, prefix string, out *[]KeyValue) {
	m, ok := v.(map[string]any)
	if !ok || idx >= len(fp.Segments) {
		return
	}

	seg := fp.Segments[idx]
	last := idx == len(fp.Segments)-1

	child, ok := m[seg.Name]
	if !ok {
		return
	}

	loc := seg.Name
	if prefix != "" {
		loc = prefix + "." + seg.Name
	}

	if !seg.IsSlice {
		if last {
			if s, ok := child.(string); ok {
				*out = append(*out, KeyValue{Key: loc, Value: s})
			}

			return
		}

		fp.walkAny(child, idx+1, loc, out)

		return
	}

	items, ok := child.([]any)
	if !ok {
		return
	}

	for i, item := range items {
		itemLoc := loc + "[" + strconv.Itoa(i) + "]"

		if last {
			if s, ok := item.(string); ok {
				*out = append(*out, KeyValue{Key: itemLoc, Value: s})
			}

			continue
		}

		fp.walkAny(item, idx+1, itemLoc, out)
	}
}

// isValidIdent checks if a string is a valid YAML key identifier for locators.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return false
			}
		} else {
			if !isLetter(r) && !isDigit(r) && r != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
