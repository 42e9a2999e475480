package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/ids"
)

// NormalizeSchema coerces an arbitrary value into a well-formed schema. The
// candidate may be a JSON-decoded value, a Schema (or pointer) or any map or
// slice shaped like one. Normalization never fails: missing or malformed data
// is replaced by the documented fallbacks.
func NormalizeSchema(candidate any) Schema {
	obj, _ := asObject(candidate)

	rawFields, _ := asArray(obj["fields"])
	fields := make([]Field, 0, len(rawFields))
	seen := make(map[string]struct{}, len(rawFields))
	for idx, raw := range rawFields {
		field := NormalizeField(raw, idx)
		if _, dup := seen[field.ID]; dup {
			field.ID = ids.New(ids.PrefixField)
		}
		seen[field.ID] = struct{}{}
		fields = append(fields, field)
	}

	title := DefaultTitle
	if str, ok := nonBlankString(obj["title"]); ok {
		title = str
	}
	description, _ := obj["description"].(string)

	return Schema{
		Version:     Version,
		Title:       title,
		Description: description,
		Fields:      fields,
	}
}

// NormalizeField coerces candidate into a valid field. index is the position
// of the field in its schema and is used to synthesize a label when the
// candidate has none.
func NormalizeField(candidate any, index int) Field {
	obj, _ := asObject(candidate)

	fieldType, ok := ParseFieldType(obj["type"])
	if !ok {
		fieldType = FallbackType()
	}
	d := DefaultsFor(fieldType)

	label, ok := nonBlankString(obj["label"])
	if !ok {
		label = fmt.Sprintf("%s %d", d.Label, index+1)
	}
	placeholder, ok := obj["placeholder"].(string)
	if !ok {
		placeholder = d.Placeholder
	}
	helpText, ok := obj["helpText"].(string)
	if !ok {
		helpText = d.HelpText
	}

	validations, _ := asObject(obj["validations"])

	return Field{
		ID:           normalizeID(obj["id"], ids.PrefixField),
		Type:         fieldType,
		Label:        label,
		Placeholder:  placeholder,
		HelpText:     helpText,
		Required:     truthy(obj["required"]),
		DefaultValue: CoerceDefault(fieldType, obj["defaultValue"]),
		Validations: ValidationRules{
			MinLength: NullableNumber(validations[RuleMinLength]),
			MaxLength: NullableNumber(validations[RuleMaxLength]),
			Min:       NullableNumber(validations[RuleMin]),
			Max:       NullableNumber(validations[RuleMax]),
		},
		Options: normalizeOptions(fieldType, obj["options"]),
	}
}

// NormalizeOption coerces candidate into a valid select option.
func NormalizeOption(candidate any, index int) Option {
	obj, _ := asObject(candidate)

	label, ok := nonBlankString(obj["label"])
	if !ok {
		label = fmt.Sprintf("Option %d", index+1)
	}
	value, ok := nonBlankString(obj["value"])
	if !ok {
		value = OptionValueFromLabel(label)
	}

	return Option{
		ID:    normalizeID(obj["id"], ids.PrefixOption),
		Label: label,
		Value: value,
	}
}

func normalizeOptions(fieldType FieldType, raw any) []Option {
	if !IsOptionsSupported(fieldType) {
		return []Option{}
	}
	list, _ := asArray(raw)
	if len(list) == 0 {
		return DefaultOptions()
	}
	out := make([]Option, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for idx, item := range list {
		option := NormalizeOption(item, idx)
		if _, dup := seen[option.ID]; dup {
			option.ID = ids.New(ids.PrefixOption)
		}
		seen[option.ID] = struct{}{}
		out = append(out, option)
	}
	return out
}

// CoerceDefault converts raw into the default value variant of fieldType. A
// nil raw value yields the type default.
func CoerceDefault(fieldType FieldType, raw any) DefaultValue {
	if dv, ok := raw.(DefaultValue); ok {
		raw = dv.Raw()
	}
	d := DefaultsFor(fieldType)
	if raw == nil {
		return d.DefaultValue
	}

	switch fieldType {
	case FieldCheckbox:
		return BoolDefault(truthy(raw))
	case FieldNumber:
		if str, ok := raw.(string); ok && str == "" {
			return NumberDefault{}
		}
		if _, isBool := raw.(bool); isBool {
			return NumberDefault{}
		}
		if value, ok := toNumber(raw); ok {
			return Number(value)
		}
		return NumberDefault{}
	default:
		switch typed := raw.(type) {
		case string:
			return TextDefault(typed)
		case bool:
			return TextDefault(strconv.FormatBool(typed))
		}
		if value, ok := toNumber(raw); ok {
			return TextDefault(FormatNumber(value))
		}
		return d.DefaultValue
	}
}

// NullableNumber converts raw into an optional finite number. Empty strings
// and nil become nil, as does anything that does not parse to a finite value.
func NullableNumber(raw any) *float64 {
	switch typed := raw.(type) {
	case nil:
		return nil
	case string:
		if typed == "" {
			return nil
		}
	case *float64:
		if typed == nil {
			return nil
		}
		raw = *typed
	}
	value, ok := toNumber(raw)
	if !ok {
		return nil
	}
	return &value
}

func normalizeID(raw any, prefix string) string {
	switch typed := raw.(type) {
	case string:
		if typed != "" {
			return typed
		}
	case bool:
		if typed {
			return "true"
		}
	default:
		if value, ok := toNumber(raw); ok && value != 0 {
			return FormatNumber(value)
		}
	}
	return ids.New(prefix)
}

func nonBlankString(raw any) (string, bool) {
	str, ok := raw.(string)
	if !ok || strings.TrimSpace(str) == "" {
		return "", false
	}
	return str, true
}

// truthy follows JavaScript truthiness for JSON-like values.
func truthy(raw any) bool {
	switch typed := raw.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	}
	if value, ok := toNumber(raw); ok {
		return value != 0
	}
	if f, isFloat := raw.(float64); isFloat && math.IsNaN(f) {
		return false
	}
	return true
}

// ToNumber parses raw the way a form control value is read: strings are
// trimmed (blank reads as 0), booleans are 1 or 0. ok is false for anything
// that does not yield a finite number.
func ToNumber(raw any) (value float64, ok bool) {
	return toNumber(raw)
}

// toNumber mirrors JavaScript's Number() for scalar JSON values and reports
// whether the result is finite.
func toNumber(raw any) (float64, bool) {
	var value float64
	switch typed := raw.(type) {
	case float64:
		value = typed
	case float32:
		value = float64(typed)
	case int:
		value = float64(typed)
	case int8:
		value = float64(typed)
	case int16:
		value = float64(typed)
	case int32:
		value = float64(typed)
	case int64:
		value = float64(typed)
	case uint:
		value = float64(typed)
	case uint8:
		value = float64(typed)
	case uint16:
		value = float64(typed)
	case uint32:
		value = float64(typed)
	case uint64:
		value = float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		value = parsed
	case bool:
		if typed {
			return 1, true
		}
		return 0, true
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// asObject returns the JSON-object view of raw. Typed schema values are
// lowered into their JSON-like form so a single code path handles both.
func asObject(raw any) (map[string]any, bool) {
	switch typed := raw.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return typed, true
	case Schema:
		return typed.plain(), true
	case *Schema:
		if typed == nil {
			return nil, false
		}
		return typed.plain(), true
	case Field:
		return typed.plain(), true
	case *Field:
		if typed == nil {
			return nil, false
		}
		return typed.plain(), true
	case Option:
		return typed.plain(), true
	case *Option:
		if typed == nil {
			return nil, false
		}
		return typed.plain(), true
	case ValidationRules:
		return typed.plain(), true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asArray returns the JSON-array view of raw.
func asArray(raw any) ([]any, bool) {
	switch typed := raw.(type) {
	case nil:
		return nil, false
	case []any:
		return typed, true
	case []Field:
		out := make([]any, len(typed))
		for idx, field := range typed {
			out[idx] = field.plain()
		}
		return out, true
	case []Option:
		out := make([]any, len(typed))
		for idx, option := range typed {
			out[idx] = option.plain()
		}
		return out, true
	case string, []byte:
		return nil, false
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for idx := 0; idx < rv.Len(); idx++ {
		out[idx] = rv.Index(idx).Interface()
	}
	return out, true
}

// Plain returns the JSON-like representation of s, the same shape a decoded
// export would have.
func (s Schema) Plain() map[string]any {
	return s.plain()
}

func (s Schema) plain() map[string]any {
	fields := make([]any, len(s.Fields))
	for idx, field := range s.Fields {
		fields[idx] = field.plain()
	}
	return map[string]any{
		"version":     s.Version,
		"title":       s.Title,
		"description": s.Description,
		"fields":      fields,
	}
}

// Plain returns the JSON-like representation of f.
func (f Field) Plain() map[string]any {
	return f.plain()
}

func (f Field) plain() map[string]any {
	out := map[string]any{
		"id":          f.ID,
		"type":        string(f.Type),
		"label":       f.Label,
		"placeholder": f.Placeholder,
		"helpText":    f.HelpText,
		"required":    f.Required,
		"validations": f.Validations.plain(),
	}
	if f.DefaultValue != nil {
		out["defaultValue"] = f.DefaultValue.Raw()
	}
	options := make([]any, len(f.Options))
	for idx, option := range f.Options {
		options[idx] = option.plain()
	}
	out["options"] = options
	return out
}

// Plain returns the JSON-like representation of o.
func (o Option) Plain() map[string]any {
	return o.plain()
}

func (o Option) plain() map[string]any {
	return map[string]any{
		"id":    o.ID,
		"label": o.Label,
		"value": o.Value,
	}
}

func (v ValidationRules) plain() map[string]any {
	out := make(map[string]any, len(RuleNames))
	for _, rule := range RuleNames {
		if value := v.Get(rule); value != nil {
			out[rule] = *value
		} else {
			out[rule] = nil
		}
	}
	return out
}
