package schema

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/ids"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// TypeInfo describes a catalogue entry for palettes and menus.
type TypeInfo struct {
	Type        FieldType
	Label       string
	Description string
}

var catalogue = []TypeInfo{
	{Type: FieldText, Label: "Text", Description: "Single-line text input"},
	{Type: FieldEmail, Label: "Email", Description: "Email address with format checks"},
	{Type: FieldNumber, Label: "Number", Description: "Numeric input with min/max"},
	{Type: FieldTextarea, Label: "Textarea", Description: "Long-form text area"},
	{Type: FieldSelect, Label: "Select", Description: "Dropdown selection field"},
	{Type: FieldCheckbox, Label: "Checkbox", Description: "Single yes/no toggle"},
	{Type: FieldDate, Label: "Date", Description: "Date picker input"},
}

// Defaults is the per-type configuration used when constructing or repairing
// fields.
type Defaults struct {
	Label        string
	Placeholder  string
	HelpText     string
	Required     bool
	DefaultValue DefaultValue
}

var defaultsByType = map[FieldType]Defaults{
	FieldText:     {Label: "Text Field", Placeholder: "Enter text", DefaultValue: TextDefault("")},
	FieldEmail:    {Label: "Email Field", Placeholder: "name@example.com", DefaultValue: TextDefault("")},
	FieldNumber:   {Label: "Number Field", Placeholder: "0", DefaultValue: NumberDefault{}},
	FieldTextarea: {Label: "Textarea Field", Placeholder: "Write your answer", DefaultValue: TextDefault("")},
	FieldSelect:   {Label: "Select Field", DefaultValue: TextDefault("")},
	FieldCheckbox: {Label: "Checkbox Field", DefaultValue: BoolDefault(false)},
	FieldDate:     {Label: "Date Field", DefaultValue: TextDefault("")},
}

// Catalogue returns the supported field types in palette order.
func Catalogue() []TypeInfo {
	out := make([]TypeInfo, len(catalogue))
	copy(out, catalogue)
	return out
}

// FallbackType is the type used when a candidate carries an unknown type.
func FallbackType() FieldType {
	return catalogue[0].Type
}

// ParseFieldType reports whether value names a catalogue type.
func ParseFieldType(value any) (FieldType, bool) {
	str, ok := value.(string)
	if !ok {
		if typed, isType := value.(FieldType); isType {
			str = string(typed)
		} else {
			return "", false
		}
	}
	candidate := FieldType(str)
	if _, known := defaultsByType[candidate]; known {
		return candidate, true
	}
	return "", false
}

// Valid reports whether t belongs to the catalogue.
func (t FieldType) Valid() bool {
	_, ok := defaultsByType[t]
	return ok
}

// DefaultsFor returns the defaults of t, falling back to the text defaults.
func DefaultsFor(t FieldType) Defaults {
	if d, ok := defaultsByType[t]; ok {
		return d
	}
	return defaultsByType[FieldText]
}

// DefaultOptions returns the starter options of a select field with freshly
// generated ids.
func DefaultOptions() []Option {
	return []Option{
		{ID: ids.New(ids.PrefixOption), Label: "Option 1", Value: "option_1"},
		{ID: ids.New(ids.PrefixOption), Label: "Option 2", Value: "option_2"},
	}
}

// IsLengthSupported reports whether minLength/maxLength apply to t.
func IsLengthSupported(t FieldType) bool {
	return t == FieldText || t == FieldEmail || t == FieldTextarea
}

// IsNumberRangeSupported reports whether min/max apply to t.
func IsNumberRangeSupported(t FieldType) bool {
	return t == FieldNumber
}

// IsOptionsSupported reports whether t carries options.
func IsOptionsSupported(t FieldType) bool {
	return t == FieldSelect
}

// CreateField returns a new field of type t populated with the type defaults.
// Unknown types produce a text field.
func CreateField(t FieldType) Field {
	if !t.Valid() {
		t = FieldText
	}
	d := defaultsByType[t]

	options := []Option{}
	if IsOptionsSupported(t) {
		options = DefaultOptions()
	}

	return Field{
		ID:           ids.New(ids.PrefixField),
		Type:         t,
		Label:        d.Label,
		Placeholder:  d.Placeholder,
		HelpText:     d.HelpText,
		Required:     d.Required,
		DefaultValue: d.DefaultValue,
		Validations:  ValidationRules{},
		Options:      options,
	}
}

// DemoSchema returns the showcase schema used as the initial state and as
// the reset target.
func DemoSchema() Schema {
	name := CreateField(FieldText)
	name.Label = "Full Name"
	name.Placeholder = "Jane Doe"
	name.Required = true
	minLength := 2.0
	name.Validations.MinLength = &minLength

	email := CreateField(FieldEmail)
	email.Label = "Work Email"
	email.Placeholder = "jane@company.com"
	email.Required = true

	role := CreateField(FieldSelect)
	role.Label = "Role"
	role.HelpText = "Choose the role that fits best."
	role.Required = true
	role.Options = []Option{
		{ID: ids.New(ids.PrefixOption), Label: "Design", Value: "design"},
		{ID: ids.New(ids.PrefixOption), Label: "Engineering", Value: "engineering"},
		{ID: ids.New(ids.PrefixOption), Label: "Product", Value: "product"},
	}

	updates := CreateField(FieldCheckbox)
	updates.Label = "Receive weekly product updates"
	updates.DefaultValue = BoolDefault(true)

	return Schema{
		Version:     Version,
		Title:       "Team Intake Form",
		Description: "Collect core details before project kickoff.",
		Fields:      []Field{name, email, role, updates},
	}
}

// OptionValueFromLabel derives an option value: lower-cased with whitespace
// runs replaced by underscores.
func OptionValueFromLabel(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(label), "_")
}
