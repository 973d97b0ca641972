package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is the derived, validating form of a Descriptor.
type Schema struct {
	name   string
	desc   *Descriptor
	fields []SchemaField

	doc       map[string]any
	validator *jsonschema.Schema
}

// SchemaField is a field of a derived schema.
type SchemaField struct {
	Name        string
	Type        Type
	Description string
	Required    bool
	Default     any
}

// Type is a resolved field type. Record is set for records and for the
// items of record lists.
type Type struct {
	Kind   Kind
	Scalar Scalar
	Enum   []string
	Record *Schema
	Elem   *Type
}

// Name returns the schema name, "<Descriptor.Name>Model".
func (s *Schema) Name() string { return s.name }

// Descriptor returns the descriptor s was derived from.
func (s *Schema) Descriptor() *Descriptor { return s.desc }

// Fields returns the schema fields in declaration order.
func (s *Schema) Fields() []SchemaField { return s.fields }

// Field looks up a field by name.
func (s *Schema) Field(name string) (SchemaField, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return SchemaField{}, false
}

// JSON returns the JSON Schema document. Nested records are emitted
// under $defs and referenced with $ref. Callers must not modify it.
func (s *Schema) JSON() map[string]any { return s.doc }

// MarshalJSON encodes the JSON Schema document.
func (s *Schema) MarshalJSON() ([]byte, error) { return json.Marshal(s.doc) }

// Validate checks a decoded JSON value (as produced by
// jsonschema.UnmarshalJSON or json.Unmarshal into any) against s.
func (s *Schema) Validate(instance any) error {
	if s.validator == nil {
		return fmt.Errorf("schema %s is not finalized", s.name)
	}
	if err := s.validator.Validate(instance); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

// Decode validates raw against s, fills defaults for absent optional
// fields and unmarshals the result into dst. Empty input is treated as
// an empty object.
func (s *Schema) Decode(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: decode: %w", s.name, err)
	}
	if err := s.Validate(inst); err != nil {
		return err
	}
	s.ApplyDefaults(inst)
	b, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("%s: re-encode: %w", s.name, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s: unmarshal: %w", s.name, err)
	}
	return nil
}

// ApplyDefaults sets declared defaults on absent optional fields of v and
// of the records nested in it. Values that are not objects are ignored.
func (s *Schema) ApplyDefaults(v any) {
	obj, ok := v.(map[string]any)
	if !ok {
		return
	}
	for _, f := range s.fields {
		cur, present := obj[f.Name]
		if !present {
			if !f.Required && f.Default != nil {
				obj[f.Name] = f.Default
			}
			continue
		}
		f.Type.applyDefaults(cur)
	}
}

func (t Type) applyDefaults(v any) {
	switch t.Kind {
	case KindRecord:
		if t.Record != nil {
			t.Record.ApplyDefaults(v)
		}
	case KindList:
		items, ok := v.([]any)
		if !ok || t.Elem == nil {
			return
		}
		for _, item := range items {
			t.Elem.applyDefaults(item)
		}
	}
}

func (s *Schema) compile() error {
	doc := s.document()
	s.doc = doc

	// The compiler wants plain decoded JSON values, not Go slices of
	// strings or ints, so round-trip through the encoder.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	loaded, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", loaded); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return err
	}
	s.validator = compiled
	return nil
}

func (s *Schema) document() map[string]any {
	defs := map[string]any{}
	s.collectDefs(defs)

	doc := s.body()
	doc["$schema"] = draft
	doc["title"] = s.name
	if len(defs) > 0 {
		doc["$defs"] = defs
	}
	return doc
}

func (s *Schema) collectDefs(defs map[string]any) {
	for _, f := range s.fields {
		f.Type.collectDefs(defs)
	}
}

func (t Type) collectDefs(defs map[string]any) {
	if t.Record != nil {
		if _, ok := defs[t.Record.name]; ok {
			return
		}
		defs[t.Record.name] = t.Record.body()
		t.Record.collectDefs(defs)
	}
	if t.Elem != nil {
		t.Elem.collectDefs(defs)
	}
}

func (s *Schema) body() map[string]any {
	props := make(map[string]any, len(s.fields))
	required := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		p := f.Type.jsonSchema()
		if !f.Required {
			p = nullable(p)
			if f.Default != nil {
				p["default"] = f.Default
			}
		} else {
			required = append(required, f.Name)
		}
		if f.Description != "" {
			p["description"] = f.Description
		}
		props[f.Name] = p
	}

	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	if s.desc != nil && s.desc.Description != "" {
		out["description"] = s.desc.Description
	}
	return out
}

func (t Type) jsonSchema() map[string]any {
	switch t.Kind {
	case KindScalar:
		out := map[string]any{"type": string(t.Scalar)}
		if len(t.Enum) > 0 {
			enum := make([]any, 0, len(t.Enum))
			for _, v := range t.Enum {
				enum = append(enum, v)
			}
			out["enum"] = enum
		}
		return out
	case KindRecord:
		if t.Record == nil {
			return map[string]any{"type": "object"}
		}
		return map[string]any{"$ref": "#/$defs/" + t.Record.name}
	case KindList:
		out := map[string]any{"type": "array"}
		if t.Elem != nil {
			out["items"] = t.Elem.jsonSchema()
		}
		return out
	case KindMap:
		out := map[string]any{"type": "object"}
		if t.Elem != nil && t.Elem.Kind != KindAny {
			out["additionalProperties"] = t.Elem.jsonSchema()
		}
		return out
	default:
		return map[string]any{}
	}
}

// nullable widens p to also accept null.
func nullable(p map[string]any) map[string]any {
	if _, ok := p["$ref"]; ok {
		return map[string]any{"anyOf": []any{p, map[string]any{"type": "null"}}}
	}
	typ, ok := p["type"].(string)
	if !ok {
		// Already unconstrained.
		return p
	}
	p["type"] = []any{typ, "null"}
	if enum, ok := p["enum"].([]any); ok {
		p["enum"] = append(enum, nil)
	}
	return p
}
