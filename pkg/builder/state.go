package builder

import (
	"github.com/goliatone/go-formbuilder/internal/history"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// MaxHistory bounds both the undo and the redo stacks.
const MaxHistory = 60

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps anything other than "dark" to ThemeLight.
func ParseTheme(value string) Theme {
	if Theme(value) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// View is the active workspace tab.
type View string

const (
	ViewBuilder View = "builder"
	ViewPreview View = "preview"
)

// ParseView maps anything other than "preview" to ViewBuilder.
func ParseView(value string) View {
	if View(value) == ViewPreview {
		return ViewPreview
	}
	return ViewBuilder
}

// Preferences are the UI settings that survive restarts.
type Preferences struct {
	Theme      Theme `json:"theme"`
	ActiveView View  `json:"activeView"`
}

// DefaultPreferences returns the light theme on the builder view.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, ActiveView: ViewBuilder}
}

// Normalize coerces unknown values to their defaults.
func (p Preferences) Normalize() Preferences {
	return Preferences{
		Theme:      ParseTheme(string(p.Theme)),
		ActiveView: ParseView(string(p.ActiveView)),
	}
}

// UIState is transient view state. It is not versioned and never enters the
// undo history.
type UIState struct {
	ActiveView         View
	Theme              Theme
	MobilePaletteOpen  bool
	MobileSettingsOpen bool
	AboutOpen          bool
	ImportOpen         bool
	ExportOpen         bool
	ConfirmResetOpen   bool
	ApplyingImport     bool
}

func defaultUIState() UIState {
	return UIState{ActiveView: ViewBuilder, Theme: ThemeLight}
}

// History stores schema snapshots for undo (Past, oldest first) and redo
// (Future, next redo first).
type History struct {
	past   history.Ring[schema.Schema]
	future history.Ring[schema.Schema]
}

func newHistory() History {
	return History{
		past:   history.New[schema.Schema](MaxHistory),
		future: history.New[schema.Schema](MaxHistory),
	}
}

// ready returns h with its rings allocated, so a zero State still honours
// MaxHistory.
func (h History) ready() History {
	if h.past.Cap() != MaxHistory {
		h.past = resize(h.past)
	}
	if h.future.Cap() != MaxHistory {
		h.future = resize(h.future)
	}
	return h
}

func resize(r history.Ring[schema.Schema]) history.Ring[schema.Schema] {
	out := history.New[schema.Schema](MaxHistory)
	for _, snapshot := range r.Slice() {
		out = out.PushBack(snapshot)
	}
	return out
}

// Past returns the undo snapshots, oldest first.
func (h History) Past() []schema.Schema { return h.past.Slice() }

// Future returns the redo snapshots, next redo first.
func (h History) Future() []schema.Schema { return h.future.Slice() }

// PastLen returns the number of undo snapshots.
func (h History) PastLen() int { return h.past.Len() }

// FutureLen returns the number of redo snapshots.
func (h History) FutureLen() int { return h.future.Len() }

// State is the complete builder state.
type State struct {
	Schema schema.Schema
	// SelectedFieldID is empty only when Schema has no fields.
	SelectedFieldID string
	UI              UIState
	History         History
	// Revision increases whenever the current schema changes (commit, undo
	// or redo).
	Revision uint64
}

// NewState builds the initial state from a persisted or imported schema
// candidate. A nil candidate seeds the demo schema.
func NewState(candidate any, prefs Preferences) State {
	if candidate == nil {
		candidate = schema.DemoSchema()
	}
	current := schema.NormalizeSchema(candidate)
	prefs = prefs.Normalize()

	ui := defaultUIState()
	ui.ActiveView = prefs.ActiveView
	ui.Theme = prefs.Theme

	return State{
		Schema:          current,
		SelectedFieldID: resolveSelection(current, ""),
		UI:              ui,
		History:         newHistory(),
	}
}
