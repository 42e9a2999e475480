package schema

import (
	"encoding/json"
	"strconv"
)

// Version is the schema version every normalized schema carries.
const Version = 1

// DefaultTitle is assigned to schemas without a usable title.
const DefaultTitle = "Untitled Form"

// FieldType is the closed set of input kinds a schema can contain.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
)

// Rule names used by ValidationRules and by partial validation updates.
const (
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RuleMin       = "min"
	RuleMax       = "max"
)

// RuleNames lists the validation rules in canonical order.
var RuleNames = []string{RuleMinLength, RuleMaxLength, RuleMin, RuleMax}

// Option is a single choice of a select field.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ValidationRules holds the optional numeric constraints of a field. A nil
// pointer means the rule is inactive. Values are always finite.
type ValidationRules struct {
	MinLength *float64 `json:"minLength"`
	MaxLength *float64 `json:"maxLength"`
	Min       *float64 `json:"min"`
	Max       *float64 `json:"max"`
}

// Get returns the rule value by name.
func (v ValidationRules) Get(rule string) *float64 {
	switch rule {
	case RuleMinLength:
		return v.MinLength
	case RuleMaxLength:
		return v.MaxLength
	case RuleMin:
		return v.Min
	case RuleMax:
		return v.Max
	default:
		return nil
	}
}

// With returns a copy with the named rule replaced. Unknown names are ignored.
func (v ValidationRules) With(rule string, value *float64) ValidationRules {
	value = cloneNumber(value)
	switch rule {
	case RuleMinLength:
		v.MinLength = value
	case RuleMaxLength:
		v.MaxLength = value
	case RuleMin:
		v.Min = value
	case RuleMax:
		v.Max = value
	}
	return v
}

// Clone returns a copy that shares no pointers with v.
func (v ValidationRules) Clone() ValidationRules {
	return ValidationRules{
		MinLength: cloneNumber(v.MinLength),
		MaxLength: cloneNumber(v.MaxLength),
		Min:       cloneNumber(v.Min),
		Max:       cloneNumber(v.Max),
	}
}

// DefaultValue is the initial value of a field. The concrete type depends on
// the field type: BoolDefault for checkbox, NumberDefault for number and
// TextDefault for every other type.
type DefaultValue interface {
	// Raw returns the JSON-like representation (string, float64, bool or "").
	Raw() any
	defaultValue()
}

// TextDefault is the default of text-like, select and date fields.
type TextDefault string

// NumberDefault is the default of number fields. A nil Value is the empty
// default and serializes as "".
type NumberDefault struct {
	Value *float64
}

// BoolDefault is the default of checkbox fields.
type BoolDefault bool

func (TextDefault) defaultValue()   {}
func (NumberDefault) defaultValue() {}
func (BoolDefault) defaultValue()   {}

func (d TextDefault) Raw() any { return string(d) }
func (d BoolDefault) Raw() any { return bool(d) }

func (d NumberDefault) Raw() any {
	if d.Value == nil {
		return ""
	}
	return *d.Value
}

// String renders the default the way an input control would display it.
func (d NumberDefault) String() string {
	if d.Value == nil {
		return ""
	}
	return FormatNumber(*d.Value)
}

// MarshalJSON emits the number or an empty string when unset.
func (d NumberDefault) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Raw())
}

// Number returns a NumberDefault holding value.
func Number(value float64) NumberDefault {
	return NumberDefault{Value: &value}
}

// Field is one input definition of a schema.
type Field struct {
	ID           string          `json:"id"`
	Type         FieldType       `json:"type"`
	Label        string          `json:"label"`
	Placeholder  string          `json:"placeholder"`
	HelpText     string          `json:"helpText"`
	Required     bool            `json:"required"`
	DefaultValue DefaultValue    `json:"defaultValue"`
	Validations  ValidationRules `json:"validations"`
	Options      []Option        `json:"options"`
}

// Clone returns a deep copy so callers can edit options and validations
// without aliasing the original.
func (f Field) Clone() Field {
	out := f
	out.Validations = f.Validations.Clone()
	out.Options = cloneOptions(f.Options)
	if n, ok := f.DefaultValue.(NumberDefault); ok {
		out.DefaultValue = NumberDefault{Value: cloneNumber(n.Value)}
	}
	return out
}

// Schema is the versioned, ordered description of a form.
type Schema struct {
	Version     int     `json:"version"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// FieldByID returns the field with the given id.
func (s Schema) FieldByID(id string) (Field, bool) {
	if idx := s.IndexOf(id); idx >= 0 {
		return s.Fields[idx], true
	}
	return Field{}, false
}

// IndexOf returns the position of the field with the given id or -1.
func (s Schema) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for idx, field := range s.Fields {
		if field.ID == id {
			return idx
		}
	}
	return -1
}

// FormatNumber renders a float the way JavaScript's Number#toString does for
// the values a schema can hold.
func FormatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func cloneNumber(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func cloneOptions(options []Option) []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}
