// Package testsupport holds fixture and golden helpers shared by tests.
package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// IgnoreIDs compares schemas without their generated field and option ids.
var IgnoreIDs = cmp.Options{
	cmpopts.IgnoreFields(schema.Field{}, "ID"),
	cmpopts.IgnoreFields(schema.Option{}, "ID"),
}

// LoadSchema reads a schema fixture. Testing helpers fail the test on error
// to keep contract tests concise.
func LoadSchema(t *testing.T, path string) schema.Schema {
	t.Helper()

	s, err := LoadSchemaFromPath(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return s
}

// LoadSchemaFromPath returns a normalized schema without requiring testing.T.
func LoadSchemaFromPath(path string) (schema.Schema, error) {
	if path == "" {
		return schema.Schema{}, errors.New("testsupport: schema path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("testsupport: read schema: %w", err)
	}
	s, err := schema.Decode(data)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("testsupport: decode schema: %w", err)
	}
	return s, nil
}

// DecodeJSON decodes raw into its JSON-like form (maps, slices, float64).
func DecodeJSON(t *testing.T, raw string) any {
	t.Helper()

	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return out
}

// DemoState returns a fresh state seeded with the demo schema and default
// preferences.
func DemoState() builder.State {
	return builder.NewState(nil, builder.DefaultPreferences())
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
