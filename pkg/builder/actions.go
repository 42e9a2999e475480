package builder

import "github.com/goliatone/go-formbuilder/pkg/schema"

// Action is a transition request understood by Reduce. The set of actions is
// closed; the unexported marker keeps other packages from adding variants.
type Action interface {
	// Name returns the action tag, e.g. "ADD_FIELD".
	Name() string
	isAction()
}

// Direction is the step of a MoveField action.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// AddField creates a field of Type and inserts it at Index. A nil or out of
// range Index appends.
type AddField struct {
	Type  schema.FieldType
	Index *int
}

// UpdateField patches the field identified by FieldID.
type UpdateField struct {
	FieldID string
	Changes FieldChanges
}

// DeleteField removes the field identified by FieldID.
type DeleteField struct {
	FieldID string
}

// SelectField changes the selection without touching history.
type SelectField struct {
	FieldID string
}

// ReorderFields moves SourceID to the position currently held by TargetID.
type ReorderFields struct {
	SourceID string
	TargetID string
}

// MoveField swaps a field with its neighbour in Direction.
type MoveField struct {
	FieldID   string
	Direction Direction
}

// SetSchema normalizes Schema and commits it wholesale.
type SetSchema struct {
	Schema any
}

// ResetToDemo commits the demo schema.
type ResetToDemo struct{}

// Undo restores the most recent snapshot from the undo stack.
type Undo struct{}

// Redo re-applies the next snapshot from the redo stack.
type Redo struct{}

// SetUI merges Changes into the UI state.
type SetUI struct {
	Changes UIChanges
}

// ToggleTheme flips between light and dark.
type ToggleTheme struct{}

// SetActiveView switches the workspace tab.
type SetActiveView struct {
	View View
}

// FieldChanges is a partial field update. Nil members are left untouched.
type FieldChanges struct {
	Label       *string
	Placeholder *string
	HelpText    *string
	Required    *bool
	// DefaultValue is coerced to the variant of the field type.
	DefaultValue any
	// Validations merges rule by rule: a present key replaces the rule, a
	// present nil clears it. Keys are schema.Rule* names.
	Validations map[string]*float64
	// Options replaces every option when non-empty. Each option is normalized
	// (blank labels and values are filled in). Ignored for fields that do not
	// support options.
	Options []schema.Option
}

// UIChanges is a partial UI update. Nil members are left untouched.
type UIChanges struct {
	ActiveView         *View
	Theme              *Theme
	MobilePaletteOpen  *bool
	MobileSettingsOpen *bool
	AboutOpen          *bool
	ImportOpen         *bool
	ExportOpen         *bool
	ConfirmResetOpen   *bool
	ApplyingImport     *bool
}

func (AddField) Name() string      { return "ADD_FIELD" }
func (UpdateField) Name() string   { return "UPDATE_FIELD" }
func (DeleteField) Name() string   { return "DELETE_FIELD" }
func (SelectField) Name() string   { return "SELECT_FIELD" }
func (ReorderFields) Name() string { return "REORDER_FIELDS" }
func (MoveField) Name() string     { return "MOVE_FIELD" }
func (SetSchema) Name() string     { return "SET_SCHEMA" }
func (ResetToDemo) Name() string   { return "RESET_TO_DEMO" }
func (Undo) Name() string          { return "UNDO" }
func (Redo) Name() string          { return "REDO" }
func (SetUI) Name() string         { return "SET_UI" }
func (ToggleTheme) Name() string   { return "TOGGLE_THEME" }
func (SetActiveView) Name() string { return "SET_ACTIVE_VIEW" }

func (AddField) isAction()      {}
func (UpdateField) isAction()   {}
func (DeleteField) isAction()   {}
func (SelectField) isAction()   {}
func (ReorderFields) isAction() {}
func (MoveField) isAction()     {}
func (SetSchema) isAction()     {}
func (ResetToDemo) isAction()   {}
func (Undo) isAction()          {}
func (Redo) isAction()          {}
func (SetUI) isAction()         {}
func (ToggleTheme) isAction()   {}
func (SetActiveView) isAction() {}

// InsertField returns an AddField action targeting index.
func InsertField(t schema.FieldType, index int) AddField {
	return AddField{Type: t, Index: &index}
}

// AppendField returns an AddField action that appends.
func AppendField(t schema.FieldType) AddField {
	return AddField{Type: t}
}

// Ptr returns a pointer to v; handy for building change sets.
func Ptr[T any](v T) *T {
	return &v
}
