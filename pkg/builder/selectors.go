package builder

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Fields returns the fields of the current schema.
func Fields(state State) []schema.Field {
	return state.Schema.Fields
}

// SelectedField returns the currently selected field.
func SelectedField(state State) (schema.Field, bool) {
	return state.Schema.FieldByID(state.SelectedFieldID)
}

// CanUndo reports whether the undo stack has snapshots.
func CanUndo(state State) bool {
	return state.History.PastLen() > 0
}

// CanRedo reports whether the redo stack has snapshots.
func CanRedo(state State) bool {
	return state.History.FutureLen() > 0
}

// PreferencesOf projects the persisted UI preferences out of state.
func PreferencesOf(state State) Preferences {
	return Preferences{Theme: state.UI.Theme, ActiveView: state.UI.ActiveView}.Normalize()
}

// ValidationSummary lists the active rules of field in a fixed order:
// Required, Min length, Max length, Min value, Max value.
func ValidationSummary(field schema.Field) []string {
	summary := []string{}
	if field.Required {
		summary = append(summary, "Required")
	}

	labels := []struct {
		rule  string
		label string
	}{
		{schema.RuleMinLength, "Min length"},
		{schema.RuleMaxLength, "Max length"},
		{schema.RuleMin, "Min value"},
		{schema.RuleMax, "Max value"},
	}
	for _, entry := range labels {
		if value := field.Validations.Get(entry.rule); value != nil {
			summary = append(summary, fmt.Sprintf("%s: %s", entry.label, schema.FormatNumber(*value)))
		}
	}
	return summary
}
