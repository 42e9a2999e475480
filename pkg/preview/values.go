// Package preview runs a schema as a fillable form: initial values, value
// validation, submission normalization and a static HTML rendering.
package preview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Values holds the raw control values keyed by field id. Checkbox values are
// bools, every other control holds a string.
type Values map[string]any

// Errors maps field ids to their validation message.
type Errors map[string]string

// InitialValues returns the control values a fresh form starts with.
func InitialValues(fields []schema.Field) Values {
	values := make(Values, len(fields))
	for _, field := range fields {
		values[field.ID] = initialValue(field)
	}
	return values
}

func initialValue(field schema.Field) any {
	switch dv := field.DefaultValue.(type) {
	case schema.BoolDefault:
		return bool(dv)
	case schema.NumberDefault:
		return dv.String()
	case schema.TextDefault:
		if field.Type == schema.FieldCheckbox {
			return dv != ""
		}
		return string(dv)
	case nil:
		if field.Type == schema.FieldCheckbox {
			return false
		}
	}
	return ""
}

// ValidateValue checks value against field and returns the first failing
// message, or "" when the value is acceptable.
func ValidateValue(field schema.Field, value any) string {
	text, _ := value.(string)

	if field.Required {
		if field.Type == schema.FieldCheckbox {
			if !checked(value) {
				return "This checkbox must be checked."
			}
		} else if strings.TrimSpace(text) == "" {
			return "This field is required."
		}
	}

	if text == "" && field.Type != schema.FieldCheckbox {
		return ""
	}

	if field.Type == schema.FieldEmail && !emailPattern.MatchString(text) {
		return "Please enter a valid email address."
	}

	if schema.IsLengthSupported(field.Type) {
		length := float64(textLength(text))
		if minLength := field.Validations.MinLength; minLength != nil && length < *minLength {
			return fmt.Sprintf("Must be at least %s characters.", schema.FormatNumber(*minLength))
		}
		if maxLength := field.Validations.MaxLength; maxLength != nil && length > *maxLength {
			return fmt.Sprintf("Must be at most %s characters.", schema.FormatNumber(*maxLength))
		}
	}

	if schema.IsNumberRangeSupported(field.Type) {
		number, ok := schema.ToNumber(value)
		if !ok {
			return "Please enter a valid number."
		}
		if minimum := field.Validations.Min; minimum != nil && number < *minimum {
			return fmt.Sprintf("Must be at least %s.", schema.FormatNumber(*minimum))
		}
		if maximum := field.Validations.Max; maximum != nil && number > *maximum {
			return fmt.Sprintf("Must be at most %s.", schema.FormatNumber(*maximum))
		}
	}

	if schema.IsOptionsSupported(field.Type) && text != "" && !hasOption(field, text) {
		return "Please choose a valid option."
	}

	return ""
}

// Validate checks every field of s and returns the failing ones. A missing
// value is validated as an empty control.
func Validate(s schema.Schema, values Values) Errors {
	errs := Errors{}
	for _, field := range s.Fields {
		if msg := ValidateValue(field, valueOf(field, values)); msg != "" {
			errs[field.ID] = msg
		}
	}
	return errs
}

// Submit validates values and, when every field passes, returns the
// normalized submission keyed by field label.
func Submit(s schema.Schema, values Values) (Submission, bool) {
	if errs := Validate(s, values); len(errs) > 0 {
		return Submission{}, false
	}
	var out Submission
	for _, field := range s.Fields {
		out.set(field.Label, submissionValue(field, valueOf(field, values)))
	}
	return out, true
}

func valueOf(field schema.Field, values Values) any {
	if value, ok := values[field.ID]; ok && value != nil {
		return value
	}
	if field.Type == schema.FieldCheckbox {
		return false
	}
	return ""
}

func submissionValue(field schema.Field, value any) any {
	switch field.Type {
	case schema.FieldCheckbox:
		return checked(value)
	case schema.FieldNumber:
		if text, ok := value.(string); ok && text == "" {
			return nil
		}
		number, _ := schema.ToNumber(value)
		return number
	}
	return value
}

func hasOption(field schema.Field, value string) bool {
	for _, option := range field.Options {
		if option.Value == value {
			return true
		}
	}
	return false
}

func checked(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case float64:
		return typed != 0
	}
	return true
}

// textLength counts UTF-16 code units, the unit browsers use for
// minlength/maxlength.
func textLength(text string) int {
	return len(utf16.Encode([]rune(text)))
}

// Submission is the normalized result of a successful submit. Keys keep field
// order; a repeated label keeps its first position and its last value.
type Submission struct {
	keys   []string
	values map[string]any
}

func (s *Submission) set(key string, value any) {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Keys returns the labels in submission order.
func (s Submission) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Get returns the submitted value for label.
func (s Submission) Get(label string) (any, bool) {
	value, ok := s.values[label]
	return value, ok
}

// Len returns the number of entries.
func (s Submission) Len() int { return len(s.keys) }

// MarshalJSON encodes the submission as an object in key order.
func (s Submission) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, key := range s.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
