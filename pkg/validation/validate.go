package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Issue is a single validation error with its location in the candidate.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures the outcome of validating an import candidate. Schema is
// only set when IsValid is true.
type Result struct {
	IsValid bool           `json:"isValid"`
	Errors  []string       `json:"errors"`
	Issues  []Issue        `json:"issues,omitempty"`
	Schema  *schema.Schema `json:"schema"`
}

type collector struct {
	issues []Issue
}

func (c *collector) add(path, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Path:    path,
		Field:   fieldPathFromPointer(path),
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *collector) result() Result {
	errs := make([]string, len(c.issues))
	for idx, issue := range c.issues {
		errs[idx] = issue.Message
	}
	return Result{IsValid: false, Errors: errs, Issues: c.issues}
}

// Validate checks candidate structurally and, when no check fails, returns
// the normalized schema. Errors accumulate in field order, then check order
// within a field.
func Validate(candidate any) Result {
	candidate = lower(candidate)

	root, ok := candidate.(map[string]any)
	if !ok {
		c := &collector{}
		c.add("", "Schema must be a JSON object.")
		return c.result()
	}

	c := &collector{}

	rawFields, hasFields := root["fields"]
	fields, fieldsOK := rawFields.([]any)
	if hasFields && !fieldsOK {
		c.add("/fields", `Schema "fields" must be an array.`)
	}
	if value, present := root["title"]; present {
		if _, isString := value.(string); !isString {
			c.add("/title", `Schema "title" must be a string.`)
		}
	}
	if value, present := root["description"]; present {
		if _, isString := value.(string); !isString {
			c.add("/description", `Schema "description" must be a string.`)
		}
	}

	for idx, raw := range fields {
		validateField(c, idx, raw)
	}

	if len(c.issues) > 0 {
		return c.result()
	}

	normalized := schema.NormalizeSchema(root)
	return Result{IsValid: true, Errors: []string{}, Schema: &normalized}
}

func validateField(c *collector, idx int, raw any) {
	n := idx + 1
	base := "/fields/" + strconv.Itoa(idx)

	field, ok := raw.(map[string]any)
	if !ok {
		c.add(base, "Field %d must be an object.", n)
		return
	}

	fieldType, typeOK := schema.ParseFieldType(field["type"])
	if !typeOK {
		c.add(base+"/type", "Field %d has unsupported type %q.", n, describe(field["type"]))
	}

	if value, present := field["label"]; present {
		if _, isString := value.(string); !isString {
			c.add(base+"/label", `Field %d: "label" must be a string.`, n)
		}
	}
	if value, present := field["required"]; present {
		if _, isBool := value.(bool); !isBool {
			c.add(base+"/required", `Field %d: "required" must be true or false.`, n)
		}
	}

	if value, present := field["validations"]; present {
		rules, isObject := value.(map[string]any)
		if !isObject {
			c.add(base+"/validations", `Field %d: "validations" must be an object.`, n)
		}
		for _, rule := range schema.RuleNames {
			if !numberOrNull(rules[rule]) {
				c.add(base+"/validations/"+rule, `Field %d: "validations.%s" must be a number or null.`, n, rule)
			}
		}
	}

	if typeOK && schema.IsOptionsSupported(fieldType) {
		validateOptions(c, n, base, field["options"])
	}
}

func validateOptions(c *collector, n int, base string, raw any) {
	options, ok := raw.([]any)
	if !ok {
		c.add(base+"/options", `Field %d: select fields require an "options" array.`, n)
		return
	}
	if len(options) == 0 {
		c.add(base+"/options", "Field %d: select fields need at least one option.", n)
		return
	}
	for idx, item := range options {
		m := idx + 1
		path := base + "/options/" + strconv.Itoa(idx)
		option, isObject := item.(map[string]any)
		if !isObject {
			c.add(path, "Field %d, option %d must be an object.", n, m)
			continue
		}
		if !nonBlank(option["label"]) {
			c.add(path+"/label", "Field %d, option %d needs a non-empty label.", n, m)
		}
		if !nonBlank(option["value"]) {
			c.add(path+"/value", "Field %d, option %d needs a non-empty value.", n, m)
		}
	}
}

func numberOrNull(value any) bool {
	if value == nil {
		return true
	}
	number, ok := value.(float64)
	return ok && !math.IsNaN(number) && !math.IsInf(number, 0)
}

func nonBlank(value any) bool {
	str, ok := value.(string)
	return ok && strings.TrimSpace(str) != ""
}

func describe(value any) string {
	switch typed := value.(type) {
	case nil:
		return "<missing>"
	case string:
		return typed
	case float64:
		return schema.FormatNumber(typed)
	default:
		return fmt.Sprint(typed)
	}
}

// lower converts typed schemas and Go collections into the JSON-like shape
// the checks operate on: map[string]any, []any, float64, string, bool, nil.
func lower(value any) any {
	switch typed := value.(type) {
	case nil, string, bool, float64:
		return typed
	case json.Number:
		if number, err := typed.Float64(); err == nil {
			return number
		}
		return typed.String()
	case schema.Schema:
		return typed.Plain()
	case *schema.Schema:
		if typed == nil {
			return nil
		}
		return typed.Plain()
	case schema.Field:
		return lower(typed.Plain())
	case *schema.Field:
		if typed == nil {
			return nil
		}
		return lower(typed.Plain())
	case schema.Option:
		return typed.Plain()
	case *schema.Option:
		if typed == nil {
			return nil
		}
		return typed.Plain()
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = lower(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = lower(item)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = lower(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for idx := 0; idx < rv.Len(); idx++ {
			out[idx] = lower(rv.Index(idx).Interface())
		}
		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return lower(rv.Elem().Interface())
	}
	return value
}

// fieldPathFromPointer turns /fields/0/options/1 into fields.0.options.1.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	for idx, segment := range parts {
		segment = strings.ReplaceAll(segment, "~1", "/")
		parts[idx] = strings.ReplaceAll(segment, "~0", "~")
	}
	return strings.Join(parts, ".")
}
