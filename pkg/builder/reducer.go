package builder

import (
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Reduce applies action to state and returns the next state. It never fails:
// actions that cannot apply (unknown ids, boundaries, empty history) return
// state unchanged.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddField:
		field := schema.CreateField(a.Type)
		next := withFields(state.Schema, insertAt(state.Schema.Fields, a.Index, field))
		return commit(state, next, field.ID)

	case UpdateField:
		fields := make([]schema.Field, len(state.Schema.Fields))
		for idx, field := range state.Schema.Fields {
			if field.ID == a.FieldID {
				field = patchField(field, a.Changes)
			}
			fields[idx] = field
		}
		return commit(state, withFields(state.Schema, fields), state.SelectedFieldID)

	case DeleteField:
		fields := make([]schema.Field, 0, len(state.Schema.Fields))
		for _, field := range state.Schema.Fields {
			if field.ID != a.FieldID {
				fields = append(fields, field)
			}
		}
		return commit(state, withFields(state.Schema, fields), state.SelectedFieldID)

	case SelectField:
		if state.Schema.IndexOf(a.FieldID) < 0 {
			return state
		}
		state.SelectedFieldID = a.FieldID
		return state

	case ReorderFields:
		fields, moved := reorder(state.Schema.Fields, a.SourceID, a.TargetID)
		if !moved {
			return state
		}
		return commit(state, withFields(state.Schema, fields), state.SelectedFieldID)

	case MoveField:
		fields, moved := moveByDirection(state.Schema.Fields, a.FieldID, a.Direction)
		if !moved {
			return state
		}
		return commit(state, withFields(state.Schema, fields), state.SelectedFieldID)

	case SetSchema:
		return commit(state, schema.NormalizeSchema(a.Schema), state.SelectedFieldID)

	case ResetToDemo:
		return commit(state, schema.DemoSchema(), state.SelectedFieldID)

	case Undo:
		h := state.History.ready()
		previous, past, ok := h.past.PopBack()
		if !ok {
			return state
		}
		h.past = past
		h.future = h.future.PushFront(state.Schema)
		return restore(state, previous, h)

	case Redo:
		h := state.History.ready()
		upcoming, future, ok := h.future.PopFront()
		if !ok {
			return state
		}
		h.future = future
		h.past = h.past.PushBack(state.Schema)
		return restore(state, upcoming, h)

	case SetUI:
		state.UI = mergeUI(state.UI, a.Changes)
		return state

	case ToggleTheme:
		if state.UI.Theme == ThemeDark {
			state.UI.Theme = ThemeLight
		} else {
			state.UI.Theme = ThemeDark
		}
		return state

	case SetActiveView:
		state.UI.ActiveView = ParseView(string(a.View))
		return state

	default:
		return state
	}
}

// commit records the current schema in the undo stack, clears redo and
// installs next.
func commit(state State, next schema.Schema, preferredSelection string) State {
	h := state.History.ready()
	h.past = h.past.PushBack(state.Schema)
	h.future = h.future.Clear()

	state.History = h
	state.Schema = next
	state.SelectedFieldID = resolveSelection(next, preferredSelection)
	state.Revision++
	return state
}

func restore(state State, snapshot schema.Schema, h History) State {
	state.History = h
	state.Schema = snapshot
	state.SelectedFieldID = resolveSelection(snapshot, state.SelectedFieldID)
	state.Revision++
	return state
}

// resolveSelection keeps preferred when it names an existing field, falls
// back to the first field, or returns "" for an empty schema.
func resolveSelection(s schema.Schema, preferred string) string {
	if len(s.Fields) == 0 {
		return ""
	}
	if s.IndexOf(preferred) >= 0 {
		return preferred
	}
	return s.Fields[0].ID
}

func withFields(s schema.Schema, fields []schema.Field) schema.Schema {
	s.Fields = fields
	return s
}

func insertAt(fields []schema.Field, index *int, field schema.Field) []schema.Field {
	out := make([]schema.Field, 0, len(fields)+1)
	if index == nil || *index < 0 || *index >= len(fields) {
		out = append(out, fields...)
		return append(out, field)
	}
	out = append(out, fields[:*index]...)
	out = append(out, field)
	return append(out, fields[*index:]...)
}

func reorder(fields []schema.Field, sourceID, targetID string) ([]schema.Field, bool) {
	if sourceID == "" || targetID == "" || sourceID == targetID {
		return fields, false
	}
	from, to := indexOf(fields, sourceID), indexOf(fields, targetID)
	if from < 0 || to < 0 {
		return fields, false
	}
	return moveTo(fields, from, to), true
}

func moveByDirection(fields []schema.Field, fieldID string, direction Direction) ([]schema.Field, bool) {
	from := indexOf(fields, fieldID)
	if from < 0 {
		return fields, false
	}
	to := from + 1
	if direction == DirectionUp {
		to = from - 1
	}
	if to < 0 || to >= len(fields) {
		return fields, false
	}
	return moveTo(fields, from, to), true
}

// moveTo removes the element at from and reinserts it at to, on a copy.
func moveTo(fields []schema.Field, from, to int) []schema.Field {
	out := make([]schema.Field, 0, len(fields))
	out = append(out, fields[:from]...)
	out = append(out, fields[from+1:]...)

	moved := fields[from]
	out = append(out, schema.Field{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out
}

func indexOf(fields []schema.Field, id string) int {
	for idx, field := range fields {
		if field.ID == id {
			return idx
		}
	}
	return -1
}

func patchField(field schema.Field, changes FieldChanges) schema.Field {
	next := field.Clone()

	if changes.Label != nil {
		next.Label = *changes.Label
	}
	if changes.Placeholder != nil {
		next.Placeholder = *changes.Placeholder
	}
	if changes.HelpText != nil {
		next.HelpText = *changes.HelpText
	}
	if changes.Required != nil {
		next.Required = *changes.Required
	}
	if changes.DefaultValue != nil {
		next.DefaultValue = schema.CoerceDefault(next.Type, changes.DefaultValue)
	}
	for _, rule := range schema.RuleNames {
		if value, ok := changes.Validations[rule]; ok {
			next.Validations = next.Validations.With(rule, schema.NullableNumber(value))
		}
	}
	if len(changes.Options) > 0 && schema.IsOptionsSupported(next.Type) {
		options := make([]schema.Option, len(changes.Options))
		for idx, option := range changes.Options {
			options[idx] = schema.NormalizeOption(option, idx)
		}
		next.Options = options
	}
	return next
}

func mergeUI(ui UIState, changes UIChanges) UIState {
	if changes.ActiveView != nil {
		ui.ActiveView = ParseView(string(*changes.ActiveView))
	}
	if changes.Theme != nil {
		ui.Theme = ParseTheme(string(*changes.Theme))
	}
	assignBool(&ui.MobilePaletteOpen, changes.MobilePaletteOpen)
	assignBool(&ui.MobileSettingsOpen, changes.MobileSettingsOpen)
	assignBool(&ui.AboutOpen, changes.AboutOpen)
	assignBool(&ui.ImportOpen, changes.ImportOpen)
	assignBool(&ui.ExportOpen, changes.ExportOpen)
	assignBool(&ui.ConfirmResetOpen, changes.ConfirmResetOpen)
	assignBool(&ui.ApplyingImport, changes.ApplyingImport)
	return ui
}

func assignBool(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}
