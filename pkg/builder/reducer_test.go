package builder_test

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func demoState() builder.State {
	return builder.NewState(nil, builder.DefaultPreferences())
}

func fieldIDs(state builder.State) []string {
	out := make([]string, 0, len(state.Schema.Fields))
	for _, field := range state.Schema.Fields {
		out = append(out, field.ID)
	}
	return out
}

func assertSelection(t *testing.T, state builder.State) {
	t.Helper()
	if len(state.Schema.Fields) == 0 {
		if state.SelectedFieldID != "" {
			t.Fatalf("expected empty selection for empty schema, got %q", state.SelectedFieldID)
		}
		return
	}
	if state.Schema.IndexOf(state.SelectedFieldID) < 0 {
		t.Fatalf("selection %q does not name a field", state.SelectedFieldID)
	}
}

func TestNewState(t *testing.T) {
	state := builder.NewState(nil, builder.Preferences{Theme: "dark", ActiveView: "settings"})

	if len(state.Schema.Fields) != 4 {
		t.Fatalf("expected demo schema, got %d fields", len(state.Schema.Fields))
	}
	if state.SelectedFieldID != state.Schema.Fields[0].ID {
		t.Fatalf("expected first field selected")
	}
	if state.UI.Theme != builder.ThemeDark || state.UI.ActiveView != builder.ViewBuilder {
		t.Fatalf("unexpected ui %#v", state.UI)
	}
	if builder.CanUndo(state) || builder.CanRedo(state) {
		t.Fatalf("expected empty history")
	}

	empty := builder.NewState(map[string]any{"fields": []any{}}, builder.DefaultPreferences())
	if empty.SelectedFieldID != "" || empty.Schema.Title != schema.DefaultTitle {
		t.Fatalf("unexpected empty state %#v", empty)
	}
}

func TestReduce_AddField(t *testing.T) {
	state := demoState()

	appended := builder.Reduce(state, builder.AppendField(schema.FieldNumber))
	if len(appended.Schema.Fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(appended.Schema.Fields))
	}
	last := appended.Schema.Fields[4]
	if last.Type != schema.FieldNumber || appended.SelectedFieldID != last.ID {
		t.Fatalf("expected appended number field to be selected")
	}
	if appended.History.PastLen() != 1 || appended.Revision != state.Revision+1 {
		t.Fatalf("expected a commit")
	}

	inserted := builder.Reduce(state, builder.InsertField(schema.FieldDate, 1))
	if inserted.Schema.Fields[1].Type != schema.FieldDate {
		t.Fatalf("expected date field at index 1")
	}
	if diff := cmp.Diff(fieldIDs(state), append(fieldIDs(inserted)[:1:1], fieldIDs(inserted)[2:]...)); diff != "" {
		t.Fatalf("other fields moved (-want +got):\n%s", diff)
	}

	for _, idx := range []int{-1, 4, 99} {
		out := builder.Reduce(state, builder.InsertField(schema.FieldText, idx))
		if out.Schema.Fields[len(out.Schema.Fields)-1].ID != out.SelectedFieldID {
			t.Fatalf("index %d: expected append", idx)
		}
	}

	if len(state.Schema.Fields) != 4 {
		t.Fatalf("original state mutated")
	}
}

func TestReduce_HistoryBound(t *testing.T) {
	state := demoState()
	for i := 0; i < 100; i++ {
		state = builder.Reduce(state, builder.AppendField(schema.FieldText))
	}

	if got := state.History.PastLen(); got != builder.MaxHistory {
		t.Fatalf("expected %d snapshots, got %d", builder.MaxHistory, got)
	}
	oldest := state.History.Past()[0]
	if len(oldest.Fields) != 4+40 {
		t.Fatalf("expected oldest snapshots dropped, oldest has %d fields", len(oldest.Fields))
	}

	for i := 0; i < 100; i++ {
		state = builder.Reduce(state, builder.Undo{})
	}
	if state.History.FutureLen() > builder.MaxHistory {
		t.Fatalf("redo stack exceeded bound: %d", state.History.FutureLen())
	}
}

func TestReduce_UpdateField(t *testing.T) {
	state := demoState()
	name := state.Schema.Fields[0]

	next := builder.Reduce(state, builder.UpdateField{
		FieldID: name.ID,
		Changes: builder.FieldChanges{
			Label:       builder.Ptr("Preferred Name"),
			Validations: map[string]*float64{schema.RuleMaxLength: builder.Ptr(40.0)},
		},
	})

	got := next.Schema.Fields[0]
	if got.Label != "Preferred Name" || !got.Required {
		t.Fatalf("unexpected patched field %#v", got)
	}
	want := schema.ValidationRules{MinLength: builder.Ptr(2.0), MaxLength: builder.Ptr(40.0)}
	if diff := cmp.Diff(want, got.Validations); diff != "" {
		t.Fatalf("validations not merged (-want +got):\n%s", diff)
	}
	if state.Schema.Fields[0].Label != "Full Name" || state.Schema.Fields[0].Validations.MaxLength != nil {
		t.Fatalf("previous snapshot mutated")
	}

	cleared := builder.Reduce(next, builder.UpdateField{
		FieldID: name.ID,
		Changes: builder.FieldChanges{Validations: map[string]*float64{schema.RuleMinLength: nil}},
	})
	if cleared.Schema.Fields[0].Validations.MinLength != nil || cleared.Schema.Fields[0].Validations.MaxLength == nil {
		t.Fatalf("expected only minLength cleared, got %#v", cleared.Schema.Fields[0].Validations)
	}
}

func TestReduce_UpdateFieldOptionsAndDefaults(t *testing.T) {
	state := demoState()
	role := state.Schema.Fields[2]
	updates := state.Schema.Fields[3]

	replacement := []schema.Option{{ID: "o1", Label: "Ops", Value: "ops"}}
	next := builder.Reduce(state, builder.UpdateField{FieldID: role.ID, Changes: builder.FieldChanges{Options: replacement}})
	replacement[0].Label = "Mutated"

	if diff := cmp.Diff([]schema.Option{{ID: "o1", Label: "Ops", Value: "ops"}}, next.Schema.Fields[2].Options); diff != "" {
		t.Fatalf("options not replaced by copy (-want +got):\n%s", diff)
	}

	next = builder.Reduce(next, builder.UpdateField{FieldID: updates.ID, Changes: builder.FieldChanges{
		DefaultValue: false,
		Options:      []schema.Option{{ID: "x", Label: "x", Value: "x"}},
	}})
	got := next.Schema.Fields[3]
	if got.DefaultValue != schema.BoolDefault(false) {
		t.Fatalf("expected checkbox default false, got %#v", got.DefaultValue)
	}
	if len(got.Options) != 0 {
		t.Fatalf("expected options ignored on checkbox field")
	}
}

func TestReduce_UpdateFieldOptionsKeepInvariant(t *testing.T) {
	state := demoState()
	role := state.Schema.Fields[2]

	next := builder.Reduce(state, builder.UpdateField{FieldID: role.ID, Changes: builder.FieldChanges{Options: []schema.Option{}}})
	if diff := cmp.Diff(role.Options, next.Schema.Fields[2].Options); diff != "" {
		t.Fatalf("empty replacement should keep options (-want +got):\n%s", diff)
	}

	next = builder.Reduce(state, builder.UpdateField{FieldID: role.ID, Changes: builder.FieldChanges{
		Options: []schema.Option{{ID: "x", Label: " ", Value: ""}, {Label: "Large Size"}},
	}})
	got := next.Schema.Fields[2].Options
	if len(got) != 2 {
		t.Fatalf("expected 2 options, got %#v", got)
	}
	if diff := cmp.Diff(schema.Option{ID: "x", Label: "Option 1", Value: "option_1"}, got[0]); diff != "" {
		t.Fatalf("blank option not repaired (-want +got):\n%s", diff)
	}
	if got[1].ID == "" || got[1].Value != "large_size" {
		t.Fatalf("unexpected second option %#v", got[1])
	}
}

func TestReduce_UpdateMissingFieldStillCommits(t *testing.T) {
	state := demoState()
	state = builder.Reduce(state, builder.AppendField(schema.FieldText))
	state = builder.Reduce(state, builder.Undo{})
	if !builder.CanRedo(state) {
		t.Fatalf("expected redo available")
	}

	next := builder.Reduce(state, builder.UpdateField{FieldID: "missing", Changes: builder.FieldChanges{Label: builder.Ptr("x")}})

	if diff := cmp.Diff(state.Schema, next.Schema); diff != "" {
		t.Fatalf("fields changed (-want +got):\n%s", diff)
	}
	if next.History.PastLen() != state.History.PastLen()+1 {
		t.Fatalf("expected a history entry")
	}
	if builder.CanRedo(next) {
		t.Fatalf("expected redo cleared")
	}
}

func TestReduce_DeleteFieldReresolvesSelection(t *testing.T) {
	state := demoState()
	first := state.Schema.Fields[0].ID
	second := state.Schema.Fields[1].ID

	next := builder.Reduce(state, builder.DeleteField{FieldID: first})
	if next.SelectedFieldID != second {
		t.Fatalf("expected selection to fall back to %q, got %q", second, next.SelectedFieldID)
	}

	third := state.Schema.Fields[2].ID
	selected := builder.Reduce(state, builder.SelectField{FieldID: third})
	next = builder.Reduce(selected, builder.DeleteField{FieldID: first})
	if next.SelectedFieldID != third {
		t.Fatalf("expected selection kept, got %q", next.SelectedFieldID)
	}

	for _, id := range fieldIDs(state) {
		state = builder.Reduce(state, builder.DeleteField{FieldID: id})
	}
	if len(state.Schema.Fields) != 0 || state.SelectedFieldID != "" {
		t.Fatalf("expected empty schema without selection")
	}
}

func TestReduce_SelectFieldIsNotUndoable(t *testing.T) {
	state := demoState()
	target := state.Schema.Fields[3].ID

	next := builder.Reduce(state, builder.SelectField{FieldID: target})
	if next.SelectedFieldID != target {
		t.Fatalf("expected selection %q", target)
	}
	if next.History.PastLen() != 0 || next.Revision != state.Revision {
		t.Fatalf("selection must not commit")
	}

	ignored := builder.Reduce(next, builder.SelectField{FieldID: "missing"})
	if ignored.SelectedFieldID != target {
		t.Fatalf("unknown id should leave selection untouched")
	}
}

func TestReduce_ReorderFields(t *testing.T) {
	state := demoState()
	ids := fieldIDs(state)

	next := builder.Reduce(state, builder.ReorderFields{SourceID: ids[0], TargetID: ids[2]})
	if diff := cmp.Diff([]string{ids[1], ids[2], ids[0], ids[3]}, fieldIDs(next)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}

	next = builder.Reduce(state, builder.ReorderFields{SourceID: ids[3], TargetID: ids[1]})
	if diff := cmp.Diff([]string{ids[0], ids[3], ids[1], ids[2]}, fieldIDs(next)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestReduce_ReorderNoop(t *testing.T) {
	state := demoState()
	id := state.Schema.Fields[1].ID

	noops := []builder.ReorderFields{
		{SourceID: id, TargetID: id},
		{SourceID: "missing", TargetID: id},
		{SourceID: id, TargetID: "missing"},
		{SourceID: "", TargetID: id},
	}
	for _, action := range noops {
		next := builder.Reduce(state, action)
		if &next.Schema.Fields[0] != &state.Schema.Fields[0] {
			t.Fatalf("%#v: expected the same field slice", action)
		}
		if next.History.PastLen() != 0 || next.Revision != state.Revision {
			t.Fatalf("%#v: expected no history entry", action)
		}
	}
}

func TestReduce_MoveField(t *testing.T) {
	state := demoState()
	ids := fieldIDs(state)

	down := builder.Reduce(state, builder.MoveField{FieldID: ids[0], Direction: builder.DirectionDown})
	if diff := cmp.Diff([]string{ids[1], ids[0], ids[2], ids[3]}, fieldIDs(down)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}

	for _, action := range []builder.MoveField{
		{FieldID: ids[0], Direction: builder.DirectionUp},
		{FieldID: ids[3], Direction: builder.DirectionDown},
		{FieldID: "missing", Direction: builder.DirectionUp},
	} {
		next := builder.Reduce(state, action)
		if next.History.PastLen() != 0 || &next.Schema.Fields[0] != &state.Schema.Fields[0] {
			t.Fatalf("%#v: expected no-op", action)
		}
	}
}

func TestReduce_SetSchemaNormalizes(t *testing.T) {
	state := demoState()
	next := builder.Reduce(state, builder.SetSchema{Schema: map[string]any{
		"title":  "Imported",
		"fields": []any{map[string]any{"type": "select", "label": "Pick"}},
	}})

	if next.Schema.Title != "Imported" || len(next.Schema.Fields) != 1 {
		t.Fatalf("unexpected schema %#v", next.Schema)
	}
	if len(next.Schema.Fields[0].Options) != 2 {
		t.Fatalf("expected default options")
	}
	if next.SelectedFieldID != next.Schema.Fields[0].ID {
		t.Fatalf("expected selection on the imported field")
	}
	if next.History.PastLen() != 1 {
		t.Fatalf("expected import to be undoable")
	}
}

func TestReduce_ResetToDemo(t *testing.T) {
	state := builder.NewState(map[string]any{}, builder.DefaultPreferences())
	next := builder.Reduce(state, builder.ResetToDemo{})

	if len(next.Schema.Fields) != 4 || next.Schema.Title != "Team Intake Form" {
		t.Fatalf("expected demo schema")
	}
	if next.SelectedFieldID != next.Schema.Fields[0].ID {
		t.Fatalf("expected first field selected")
	}
}

func TestReduce_UndoRedoInverse(t *testing.T) {
	base := demoState()
	ids := fieldIDs(base)

	actions := []builder.Action{
		builder.AppendField(schema.FieldSelect),
		builder.InsertField(schema.FieldCheckbox, 0),
		builder.UpdateField{FieldID: ids[1], Changes: builder.FieldChanges{HelpText: builder.Ptr("Work only")}},
		builder.UpdateField{FieldID: "missing"},
		builder.DeleteField{FieldID: ids[2]},
		builder.ReorderFields{SourceID: ids[0], TargetID: ids[3]},
		builder.MoveField{FieldID: ids[1], Direction: builder.DirectionUp},
		builder.SetSchema{Schema: map[string]any{"title": "Other"}},
		builder.ResetToDemo{},
	}

	for _, action := range actions {
		applied := builder.Reduce(base, action)
		undone := builder.Reduce(applied, builder.Undo{})
		if diff := cmp.Diff(base.Schema, undone.Schema); diff != "" {
			t.Fatalf("%s: undo mismatch (-want +got):\n%s", action.Name(), diff)
		}
		assertSelection(t, undone)

		redone := builder.Reduce(undone, builder.Redo{})
		if diff := cmp.Diff(applied.Schema, redone.Schema); diff != "" {
			t.Fatalf("%s: redo mismatch (-want +got):\n%s", action.Name(), diff)
		}
		assertSelection(t, redone)
	}
}

func TestReduce_UndoRedoStacks(t *testing.T) {
	s0 := demoState()
	s1 := builder.Reduce(s0, builder.AppendField(schema.FieldText))
	s2 := builder.Reduce(s1, builder.AppendField(schema.FieldEmail))

	u1 := builder.Reduce(s2, builder.Undo{})
	u2 := builder.Reduce(u1, builder.Undo{})
	if diff := cmp.Diff(s0.Schema, u2.Schema); diff != "" {
		t.Fatalf("double undo mismatch (-want +got):\n%s", diff)
	}
	future := u2.History.Future()
	if len(future) != 2 {
		t.Fatalf("expected 2 redo snapshots, got %d", len(future))
	}
	if diff := cmp.Diff(s1.Schema, future[0]); diff != "" {
		t.Fatalf("next redo should be s1 (-want +got):\n%s", diff)
	}

	if same := builder.Reduce(u2, builder.Undo{}); same.Revision != u2.Revision {
		t.Fatalf("undo on empty stack must be a no-op")
	}

	r1 := builder.Reduce(u2, builder.Redo{})
	if diff := cmp.Diff(s1.Schema, r1.Schema); diff != "" {
		t.Fatalf("redo mismatch (-want +got):\n%s", diff)
	}

	branched := builder.Reduce(r1, builder.AppendField(schema.FieldDate))
	if builder.CanRedo(branched) {
		t.Fatalf("expected new commit to clear redo")
	}
	if same := builder.Reduce(branched, builder.Redo{}); same.Revision != branched.Revision {
		t.Fatalf("redo on empty stack must be a no-op")
	}
}

func TestReduce_AddMoveUndoScenario(t *testing.T) {
	start := demoState()

	added := builder.Reduce(start, builder.AppendField(schema.FieldNumber))
	newID := added.SelectedFieldID
	moved := builder.Reduce(added, builder.MoveField{FieldID: newID, Direction: builder.DirectionUp})
	if moved.Schema.Fields[3].ID != newID {
		t.Fatalf("expected new field at index 3")
	}

	restored := builder.Reduce(builder.Reduce(moved, builder.Undo{}), builder.Undo{})
	if diff := cmp.Diff(start.Schema, restored.Schema); diff != "" {
		t.Fatalf("scenario mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fieldIDs(start), fieldIDs(restored)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	assertSelection(t, restored)
}

func TestReduce_SelectionInvariantUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	types := schema.Catalogue()

	state := demoState()
	for step := 0; step < 500; step++ {
		var action builder.Action
		switch rng.Intn(6) {
		case 0:
			action = builder.InsertField(types[rng.Intn(len(types))].Type, rng.Intn(6)-1)
		case 1, 2:
			if ids := fieldIDs(state); len(ids) > 0 {
				action = builder.DeleteField{FieldID: ids[rng.Intn(len(ids))]}
			} else {
				action = builder.DeleteField{FieldID: "none"}
			}
		case 3:
			if rng.Intn(4) == 0 {
				action = builder.SetSchema{Schema: map[string]any{"fields": []any{}}}
			} else {
				action = builder.SetSchema{Schema: schema.DemoSchema()}
			}
		case 4:
			action = builder.Undo{}
		default:
			action = builder.Redo{}
		}
		state = builder.Reduce(state, action)
		assertSelection(t, state)
	}
}

func TestReduce_UIActions(t *testing.T) {
	state := demoState()
	revision := state.Revision

	state = builder.Reduce(state, builder.ToggleTheme{})
	if state.UI.Theme != builder.ThemeDark {
		t.Fatalf("expected dark theme")
	}
	state = builder.Reduce(state, builder.ToggleTheme{})
	if state.UI.Theme != builder.ThemeLight {
		t.Fatalf("expected light theme")
	}

	state = builder.Reduce(state, builder.SetActiveView{View: builder.ViewPreview})
	if state.UI.ActiveView != builder.ViewPreview {
		t.Fatalf("expected preview view")
	}
	state = builder.Reduce(state, builder.SetActiveView{View: "settings"})
	if state.UI.ActiveView != builder.ViewBuilder {
		t.Fatalf("expected unknown view coerced to builder")
	}

	state = builder.Reduce(state, builder.SetUI{Changes: builder.UIChanges{
		ImportOpen:     builder.Ptr(true),
		ApplyingImport: builder.Ptr(true),
	}})
	if !state.UI.ImportOpen || !state.UI.ApplyingImport || state.UI.ExportOpen {
		t.Fatalf("unexpected ui %#v", state.UI)
	}
	state = builder.Reduce(state, builder.SetUI{Changes: builder.UIChanges{ImportOpen: builder.Ptr(false)}})
	if state.UI.ImportOpen || !state.UI.ApplyingImport {
		t.Fatalf("expected shallow merge, got %#v", state.UI)
	}

	if state.History.PastLen() != 0 || state.Revision != revision {
		t.Fatalf("ui actions must not touch history")
	}
}

func TestReduce_ZeroState(t *testing.T) {
	var state builder.State
	state = builder.Reduce(state, builder.AppendField(schema.FieldText))
	state = builder.Reduce(state, builder.AppendField(schema.FieldText))
	if state.History.PastLen() != 2 {
		t.Fatalf("expected zero state history to work, got %d", state.History.PastLen())
	}
	state = builder.Reduce(state, builder.Undo{})
	if len(state.Schema.Fields) != 1 {
		t.Fatalf("expected undo on zero-based state")
	}
}

func assertRoundTrip(t *testing.T, name string, state builder.State) {
	t.Helper()
	data, err := schema.Serialize(state.Schema)
	if err != nil {
		t.Fatalf("%s: serialize: %v", name, err)
	}
	result := validation.ParseImport(string(data))
	if !result.IsValid {
		t.Fatalf("%s: committed schema rejected: %v", name, result.Errors)
	}
	if diff := cmp.Diff(schema.NormalizeSchema(state.Schema), *result.Schema); diff != "" {
		t.Fatalf("%s: round trip mismatch (-want +got):\n%s", name, diff)
	}
}

func TestReduce_CommittedStatesRoundTrip(t *testing.T) {
	base := demoState()
	ids := fieldIDs(base)
	role := ids[2]

	actions := []builder.Action{
		builder.AppendField(schema.FieldSelect),
		builder.InsertField(schema.FieldCheckbox, 0),
		builder.AppendField(schema.FieldNumber),
		builder.UpdateField{FieldID: ids[1], Changes: builder.FieldChanges{HelpText: builder.Ptr("Work only")}},
		builder.UpdateField{FieldID: ids[0], Changes: builder.FieldChanges{
			Label:       builder.Ptr(" "),
			Validations: map[string]*float64{schema.RuleMaxLength: builder.Ptr(40.0), schema.RuleMinLength: nil},
		}},
		builder.UpdateField{FieldID: role, Changes: builder.FieldChanges{Options: []schema.Option{}}},
		builder.UpdateField{FieldID: role, Changes: builder.FieldChanges{
			Options:      []schema.Option{{ID: "x", Label: " ", Value: ""}},
			DefaultValue: "option_1",
		}},
		builder.UpdateField{FieldID: "missing"},
		builder.DeleteField{FieldID: ids[3]},
		builder.ReorderFields{SourceID: ids[0], TargetID: ids[1]},
		builder.MoveField{FieldID: ids[1], Direction: builder.DirectionUp},
		builder.SetSchema{Schema: map[string]any{"title": "Other"}},
		builder.ResetToDemo{},
	}

	for _, action := range actions {
		assertRoundTrip(t, action.Name(), builder.Reduce(base, action))
	}

	state := base
	for _, action := range actions[:len(actions)-2] {
		state = builder.Reduce(state, action)
		assertRoundTrip(t, "sequence "+action.Name(), state)
	}
}
