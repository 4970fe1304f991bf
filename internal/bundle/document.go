package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Kind distinguishes the two exportable resource sections.
type Kind string

const (
	KindWorkflow Kind = "workflow"
	KindPipeline Kind = "pipeline"
)

// Section returns the key under "resources" that holds this kind.
func (k Kind) Section() string {
	if k == KindPipeline {
		return "pipelines"
	}

	return "jobs"
}

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	return k == KindWorkflow || k == KindPipeline
}

// Document is a parsed bundle resource file.
type Document struct {
	// Path is the file the document was loaded from (empty for parsed bytes).
	Path string

	root yaml.Node
}

// Resource is one entry under resources.jobs or resources.pipelines.
type Resource struct {
	Kind Kind
	Key  string
	Node *yaml.Node
}

// LoadFile loads and parses a bundle YAML file from the given path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle file %s: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	doc.Path = path

	return doc, nil
}

// Parse parses YAML data into a Document.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}

	if err := yaml.Unmarshal(data, &doc.root); err != nil {
		return nil, fmt.Errorf("failed to parse bundle YAML: %w", err)
	}

	if doc.root.Kind == 0 {
		doc.root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}

	if doc.Root().Kind != yaml.MappingNode {
		return nil, errors.New("bundle YAML root must be a mapping")
	}

	return doc, nil
}

// Root returns the top-level mapping node.
func (d *Document) Root() *yaml.Node {
	if d.root.Kind == yaml.DocumentNode && len(d.root.Content) > 0 {
		return d.root.Content[0]
	}

	return &d.root
}

// Dir returns the directory containing the document file.
func (d *Document) Dir() string {
	return filepath.Dir(d.Path)
}

// Resources returns the job and pipeline resources in document order.
func (d *Document) Resources() []Resource {
	resources := MappingValue(d.Root(), "resources")

	var out []Resource

	for _, kind := range []Kind{KindWorkflow, KindPipeline} {
		section := MappingValue(resources, kind.Section())
		if section == nil || section.Kind != yaml.MappingNode {
			continue
		}

		for i := 0; i+1 < len(section.Content); i += 2 {
			out = append(out, Resource{
				Kind: kind,
				Key:  section.Content[i].Value,
				Node: section.Content[i+1],
			})
		}
	}

	return out
}

// Resource returns the resource of kind with the given key.
func (d *Document) Resource(kind Kind, key string) (Resource, bool) {
	for _, r := range d.Resources() {
		if r.Kind == kind && r.Key == key {
			return r, true
		}
	}

	return Resource{}, false
}

// Marshal serializes the document with two-space indentation.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(&d.root); err != nil {
		return nil, fmt.Errorf("failed to marshal bundle YAML: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal bundle YAML: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFile writes the document to path, creating parent directories.
func (d *Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write bundle file %s: %w", path, err)
	}

	return nil
}

// MappingValue returns the value node for key in a mapping node, or nil.
func MappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}

// ScalarValue returns the scalar text stored under key, or "".
func ScalarValue(node *yaml.Node, key string) string {
	v := MappingValue(node, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}

	return v.Value
}

// MappingKeys returns the keys of a mapping node in order.
func MappingKeys(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}

	return keys
}

// SetMappingValue replaces the value for key, appending the pair if absent.
func SetMappingValue(node *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			node.Content[i+1] = value
			return
		}
	}

	node.Content = append(node.Content, StringNode(key), value)
}

// DeleteMappingKey removes key from a mapping node and reports whether it was present.
func DeleteMappingKey(node *yaml.Node, key string) bool {
	if node == nil || node.Kind != yaml.MappingNode {
		return false
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			node.Content = append(node.Content[:i], node.Content[i+2:]...)
			return true
		}
	}

	return false
}

// StringNode builds a plain string scalar.
func StringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// WalkScalars calls fn for every value scalar under node. Mapping keys are skipped.
func WalkScalars(node *yaml.Node, fn func(*yaml.Node)) {
	if node == nil {
		return
	}

	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range node.Content {
			WalkScalars(c, fn)
		}
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			WalkScalars(node.Content[i], fn)
		}
	case yaml.ScalarNode:
		fn(node)
	case yaml.AliasNode:
		// Aliases share their anchor's node, which is visited where it is defined.
	}
}
