package validation

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EmptyImportMessage is reported when the import payload is blank.
const EmptyImportMessage = "Please paste a schema JSON payload before importing."

// ParseImport parses text as JSON and validates the result. Blank input and
// malformed JSON short-circuit with a single error.
func ParseImport(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return failed(EmptyImportMessage)
	}

	var candidate any
	if err := json.Unmarshal([]byte(trimmed), &candidate); err != nil {
		return failed("Invalid JSON: " + strings.TrimPrefix(err.Error(), "json: "))
	}
	return Validate(candidate)
}

// ParseImportYAML parses text as a YAML document and validates the result.
func ParseImportYAML(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return failed(EmptyImportMessage)
	}

	var candidate any
	if err := yaml.Unmarshal([]byte(trimmed), &candidate); err != nil {
		return failed("Invalid YAML: " + strings.TrimPrefix(err.Error(), "yaml: "))
	}
	return Validate(fromYAML(candidate))
}

// ParseImportFile picks the parser from the file extension: .yaml and .yml
// use YAML, everything else JSON.
func ParseImportFile(name string, data []byte) Result {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ParseImportYAML(string(data))
	default:
		return ParseImport(string(data))
	}
}

func failed(message string) Result {
	return Result{
		IsValid: false,
		Errors:  []string{message},
		Issues:  []Issue{{Message: message}},
	}
}

// fromYAML rewrites values yaml.v3 produces for untyped targets that have no
// JSON counterpart.
func fromYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, item := range typed {
			typed[key] = fromYAML(item)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = fromYAML(item)
		}
		return out
	case []any:
		for idx, item := range typed {
			typed[idx] = fromYAML(item)
		}
		return typed
	case time.Time:
		if typed.Equal(typed.Truncate(24 * time.Hour)) {
			return typed.Format(time.DateOnly)
		}
		return typed.Format(time.RFC3339)
	}
	return lower(value)
}
