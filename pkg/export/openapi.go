// Package export converts a schema into an OpenAPI 3 schema object describing
// the data a filled form submits.
package export

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Extension is the vendor extension carrying builder-only metadata.
const Extension = "x-formbuilder"

// OpenAPISchema returns an object schema with one property per field, keyed
// by field id. Field order and presentation details live under Extension.
func OpenAPISchema(s schema.Schema) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	out.Title = s.Title
	out.Description = s.Description

	order := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		out.WithProperty(field.ID, propertySchema(field))
		if field.Required {
			out.Required = append(out.Required, field.ID)
		}
		order = append(order, field.ID)
	}

	out.Extensions = map[string]any{
		Extension: map[string]any{
			"version": s.Version,
			"order":   order,
		},
	}
	return out
}

// JSONSchema marshals OpenAPISchema(s) as indented JSON.
func JSONSchema(s schema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(OpenAPISchema(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal schema: %w", err)
	}
	return data, nil
}

func propertySchema(field schema.Field) *openapi3.Schema {
	var prop *openapi3.Schema
	meta := map[string]any{"type": string(field.Type)}

	switch field.Type {
	case schema.FieldNumber:
		prop = openapi3.NewFloat64Schema()
		if min := field.Validations.Min; min != nil {
			prop.WithMin(*min)
		}
		if max := field.Validations.Max; max != nil {
			prop.WithMax(*max)
		}
	case schema.FieldCheckbox:
		prop = openapi3.NewBoolSchema()
		if field.Required {
			prop.WithEnum(true)
		}
	case schema.FieldSelect:
		prop = openapi3.NewStringSchema()
		values := make([]any, 0, len(field.Options))
		options := make([]map[string]any, 0, len(field.Options))
		for _, option := range field.Options {
			values = append(values, option.Value)
			options = append(options, map[string]any{
				"id":    option.ID,
				"label": option.Label,
				"value": option.Value,
			})
		}
		prop.WithEnum(values...)
		meta["options"] = options
	case schema.FieldDate:
		prop = openapi3.NewStringSchema().WithFormat("date")
	case schema.FieldEmail:
		prop = openapi3.NewStringSchema().WithFormat("email")
	default:
		prop = openapi3.NewStringSchema()
	}

	if schema.IsLengthSupported(field.Type) {
		if minLength, ok := length(field.Validations.MinLength, math.Ceil); ok {
			prop.WithMinLength(minLength)
		}
		if maxLength, ok := length(field.Validations.MaxLength, math.Floor); ok {
			prop.WithMaxLength(maxLength)
		}
	}

	prop.Title = field.Label
	prop.Description = field.HelpText
	if value, ok := defaultOf(field); ok {
		prop.Default = value
	}
	if field.Placeholder != "" {
		meta["placeholder"] = field.Placeholder
	}
	prop.Extensions = map[string]any{Extension: meta}
	return prop
}

// length converts a length rule to the integer bound that accepts the same
// lengths. Negative bounds are dropped.
func length(value *float64, round func(float64) float64) (int64, bool) {
	if value == nil || *value < 0 {
		return 0, false
	}
	return int64(round(*value)), true
}

func defaultOf(field schema.Field) (any, bool) {
	switch dv := field.DefaultValue.(type) {
	case schema.BoolDefault:
		return bool(dv), true
	case schema.NumberDefault:
		if dv.Value == nil {
			return nil, false
		}
		return *dv.Value, true
	case schema.TextDefault:
		if dv == "" {
			return nil, false
		}
		return string(dv), true
	}
	return nil, false
}
