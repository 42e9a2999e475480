package builder_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

func TestValidationSummary(t *testing.T) {
	field := schema.CreateField(schema.FieldNumber)
	field.Required = true
	field.Validations = schema.ValidationRules{
		Max:       builder.Ptr(10.5),
		Min:       builder.Ptr(0.0),
		MinLength: builder.Ptr(3.0),
	}

	want := []string{"Required", "Min length: 3", "Min value: 0", "Max value: 10.5"}
	if diff := cmp.Diff(want, builder.ValidationSummary(field)); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}

	if got := builder.ValidationSummary(schema.CreateField(schema.FieldText)); len(got) != 0 {
		t.Fatalf("expected empty summary, got %v", got)
	}
}

func TestSelectedField(t *testing.T) {
	state := demoState()
	field, ok := builder.SelectedField(state)
	if !ok || field.Label != "Full Name" {
		t.Fatalf("expected first demo field selected, got %#v", field)
	}

	empty := builder.NewState(map[string]any{}, builder.DefaultPreferences())
	if _, ok := builder.SelectedField(empty); ok {
		t.Fatalf("expected no selection")
	}
	if len(builder.Fields(empty)) != 0 {
		t.Fatalf("expected no fields")
	}
}

func TestPreferencesOf(t *testing.T) {
	state := demoState()
	state = builder.Reduce(state, builder.ToggleTheme{})
	state = builder.Reduce(state, builder.SetActiveView{View: builder.ViewPreview})

	want := builder.Preferences{Theme: builder.ThemeDark, ActiveView: builder.ViewPreview}
	if diff := cmp.Diff(want, builder.PreferencesOf(state)); diff != "" {
		t.Fatalf("unexpected preferences (-want +got):\n%s", diff)
	}
}

func TestCanUndoRedo(t *testing.T) {
	state := demoState()
	state = builder.Reduce(state, builder.AppendField(schema.FieldEmail))
	if !builder.CanUndo(state) || builder.CanRedo(state) {
		t.Fatalf("expected undo only")
	}
	state = builder.Reduce(state, builder.Undo{})
	if builder.CanUndo(state) || !builder.CanRedo(state) {
		t.Fatalf("expected redo only")
	}
}
