package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Serialize returns the canonical export form of s: indented JSON with keys
// in declaration order (version, title, description, fields).
func Serialize(s Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(canonical(s)); err != nil {
		return nil, fmt.Errorf("schema: serialize: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses JSON data and normalizes the result. Only malformed JSON
// produces an error; structural problems are repaired.
func Decode(data []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("schema: decode: %w", err)
	}
	return s, nil
}

// UnmarshalJSON decodes any JSON value and normalizes it into s.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NormalizeSchema(raw)
	return nil
}

// UnmarshalJSON decodes any JSON value and normalizes it into f as the first
// field of a schema.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = NormalizeField(raw, 0)
	return nil
}

// UnmarshalJSON decodes any JSON value and normalizes it into o.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = NormalizeOption(raw, 0)
	return nil
}

// canonical fills nil slices and defaults so the encoded form never carries
// null where an array or value is expected.
func canonical(s Schema) Schema {
	out := s
	out.Fields = make([]Field, len(s.Fields))
	for idx, field := range s.Fields {
		if field.Options == nil {
			field.Options = []Option{}
		}
		if field.DefaultValue == nil {
			field.DefaultValue = DefaultsFor(field.Type).DefaultValue
		}
		out.Fields[idx] = field
	}
	return out
}
