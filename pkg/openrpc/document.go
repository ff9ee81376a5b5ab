package openrpc

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Version is the OpenRPC specification version written to every document
const Version = "1.3.0"

// SchemaRefPrefix is the JSON pointer prefix of component schema references
const SchemaRefPrefix = "#/components/schemas/"

// Document is an OpenRPC document
type Document struct {
	OpenRPC    string     `json:"openrpc" yaml:"openrpc"`
	Info       Info       `json:"info" yaml:"info"`
	Methods    []Method   `json:"methods" yaml:"methods"`
	Components Components `json:"components" yaml:"components"`
}

// Info is the document metadata
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Components holds the reusable named schemas
type Components struct {
	Schemas *SchemaMap `json:"schemas" yaml:"schemas"`
}

// Method is an OpenRPC method object
type Method struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []Param `json:"params" yaml:"params"`
	Result      Result  `json:"result" yaml:"result"`
}

// Param is a content descriptor for a method parameter. Required is always written.
type Param struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required" yaml:"required"`
	Schema      *Schema `json:"schema" yaml:"schema"`
}

// Result is the content descriptor of a method result
type Result struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      *Schema `json:"schema" yaml:"schema"`
}

// Schema is the subset of JSON Schema the generator emits
type Schema struct {
	Ref                  string     `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type                 string     `json:"type,omitempty" yaml:"type,omitempty"`
	Description          string     `json:"description,omitempty" yaml:"description,omitempty"`
	Items                *Schema    `json:"items,omitempty" yaml:"items,omitempty"`
	Properties           *SchemaMap `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required             []string   `json:"required,omitempty" yaml:"required,omitempty"`
	AdditionalProperties *Schema    `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
}

// RefSchema returns a schema pointing at the named component schema
func RefSchema(name string) *Schema {
	return &Schema{Ref: SchemaRefPrefix + name}
}

// ArraySchema wraps items in an array schema
func ArraySchema(items *Schema) *Schema {
	return &Schema{Type: "array", Items: items}
}

// SchemaMap is a string to schema map that remembers insertion order.
// Setting an existing key replaces its value but keeps its position.
type SchemaMap struct {
	keys   []string
	values map[string]*Schema
}

// NewSchemaMap returns an empty map
func NewSchemaMap() *SchemaMap {
	return &SchemaMap{values: make(map[string]*Schema)}
}

// Set stores s under name
func (m *SchemaMap) Set(name string, s *Schema) {
	if m.values == nil {
		m.values = make(map[string]*Schema)
	}
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = s
}

// Get returns the schema stored under name
func (m *SchemaMap) Get(name string) (*Schema, bool) {
	if m == nil {
		return nil, false
	}
	s, ok := m.values[name]
	return s, ok
}

// Len returns the number of entries
func (m *SchemaMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the names in insertion order
func (m *SchemaMap) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// MarshalJSON writes the entries as a JSON object in insertion order
func (m *SchemaMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, key := range m.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			v, err := json.Marshal(m.values[key])
			if err != nil {
				return nil, err
			}
			buf.Write(v)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order of the input
func (m *SchemaMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	m.keys = nil
	m.values = make(map[string]*Schema)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var s Schema
		if err := dec.Decode(&s); err != nil {
			return err
		}
		m.Set(key, &s)
	}
	_, err := dec.Token()
	return err
}

// MarshalYAML writes the entries as a YAML mapping in insertion order
func (m *SchemaMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if m == nil {
		return node, nil
	}
	for _, key := range m.keys {
		value := &yaml.Node{}
		if err := value.Encode(m.values[key]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value,
		)
	}
	return node, nil
}
