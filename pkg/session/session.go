// Package session owns a builder state and connects it to persistence,
// import and export. All methods are safe for concurrent use; dispatches are
// serialized so transitions never interleave.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/apperror"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/export"
	"github.com/goliatone/go-formbuilder/pkg/logging"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Format names an export representation.
type Format string

const (
	FormatJSON    Format = "json"
	FormatOpenAPI Format = "openapi"
	FormatHTML    Format = "html"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatJSON, FormatOpenAPI, FormatHTML}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the logger. Nil keeps the discarding default.
func WithLogger(logger logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer overrides the HTML preview renderer.
func WithRenderer(renderer *preview.Renderer) Option {
	return func(s *Session) {
		s.renderer = renderer
	}
}

// WithAutosave toggles persisting after every change. Enabled by default.
func WithAutosave(enabled bool) Option {
	return func(s *Session) {
		s.autosave = enabled
	}
}

// Session is a running builder.
type Session struct {
	mu         sync.Mutex
	store      storage.Store
	logger     logging.Logger
	renderer   *preview.Renderer
	autosave   bool
	state      builder.State
	seededDemo bool
}

// New loads the persisted snapshot from store and builds the initial state. A
// store read failure is logged and the session starts from the demo schema.
// A nil store keeps everything in memory.
func New(ctx context.Context, store storage.Store, options ...Option) (*Session, error) {
	if store == nil {
		store = storage.NewMemoryStore(nil)
	}
	s := &Session{
		store:    store,
		logger:   logging.Nop(),
		autosave: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.renderer == nil {
		renderer, err := preview.NewRenderer(nil)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		s.renderer = renderer
	}

	snapshot, err := storage.Load(ctx, store)
	if err != nil {
		s.logger.Warn("load persisted state: %v", err)
	}
	prefs := snapshot.UIPreferences
	if theme, ok, err := storage.LoadTheme(ctx, store); err != nil {
		s.logger.Warn("load theme preference: %v", err)
	} else if ok {
		prefs.Theme = theme
	}

	s.state = builder.NewState(snapshot.Schema, prefs)
	s.seededDemo = snapshot.SeededDemo
	if s.seededDemo {
		s.logger.Info("demo schema was seeded for the first run")
	}
	return s, nil
}

// State returns the current state.
func (s *Session) State() builder.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SeededDemo reports whether the session started from the demo schema
// because nothing usable was stored.
func (s *Session) SeededDemo() bool {
	return s.seededDemo
}

// Dispatch applies action and persists the result when the schema or the
// preferences changed. The new state is kept even when persisting fails.
func (s *Session) Dispatch(ctx context.Context, action builder.Action) (builder.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ctx, action)
}

func (s *Session) apply(ctx context.Context, actions ...builder.Action) (builder.State, error) {
	prev := s.state
	next := prev
	for _, action := range actions {
		next = builder.Reduce(next, action)
		logging.WithFields(s.logger, map[string]any{
			"action":   action.Name(),
			"revision": next.Revision,
		}).Debug("dispatch %s", action.Name())
	}
	s.state = next

	if !s.autosave {
		return next, nil
	}
	return next, s.persist(ctx, prev, next)
}

func (s *Session) persist(ctx context.Context, prev, next builder.State) error {
	prevPrefs, nextPrefs := builder.PreferencesOf(prev), builder.PreferencesOf(next)

	var errs []error
	if next.Revision != prev.Revision || prevPrefs != nextPrefs {
		if err := storage.Save(ctx, s.store, next.Schema, nextPrefs); err != nil {
			s.logger.Warn("persist state: %v", err)
			errs = append(errs, err)
		}
	}
	if prevPrefs.Theme != nextPrefs.Theme {
		if err := storage.SaveTheme(ctx, s.store, nextPrefs.Theme); err != nil {
			s.logger.Warn("persist theme: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Save writes the current state regardless of autosave.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := builder.PreferencesOf(s.state)
	if err := storage.Save(ctx, s.store, s.state.Schema, prefs); err != nil {
		return err
	}
	if err := storage.SaveTheme(ctx, s.store, prefs.Theme); err != nil {
		return err
	}
	s.logger.Info("schema saved (%d fields)", len(s.state.Schema.Fields))
	return nil
}

// Reset replaces the schema with the demo schema. The change is undoable.
func (s *Session) Reset(ctx context.Context) (builder.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.apply(ctx, builder.ResetToDemo{}, builder.SetUI{Changes: builder.UIChanges{
		ConfirmResetOpen: builder.Ptr(false),
	}})
	s.logger.Info("builder reset to demo schema")
	return state, err
}

// Import parses data (JSON, or YAML for .yaml/.yml names) and replaces the
// schema when it validates. An invalid payload leaves the state untouched and
// returns an IMPORT_INVALID error carrying the messages.
func (s *Session) Import(ctx context.Context, name string, data []byte) (validation.Result, error) {
	return s.applyImport(ctx, name, validation.ParseImportFile(name, data))
}

// ImportText imports a pasted JSON payload.
func (s *Session) ImportText(ctx context.Context, text string) (validation.Result, error) {
	return s.applyImport(ctx, "", validation.ParseImport(text))
}

func (s *Session) applyImport(ctx context.Context, name string, result validation.Result) (validation.Result, error) {
	if !result.IsValid {
		s.logger.Info("import rejected with %d errors", len(result.Errors))
		return result, apperror.From(apperror.ErrImportInvalid, "", nil, map[string]any{
			"errors": result.Errors,
			"source": name,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.apply(ctx,
		builder.SetUI{Changes: builder.UIChanges{
			ImportOpen:         builder.Ptr(false),
			ApplyingImport:     builder.Ptr(true),
			ActiveView:         builder.Ptr(builder.ViewBuilder),
			MobilePaletteOpen:  builder.Ptr(false),
			MobileSettingsOpen: builder.Ptr(false),
		}},
		builder.SetSchema{Schema: *result.Schema},
		builder.SetUI{Changes: builder.UIChanges{ApplyingImport: builder.Ptr(false)}},
	)
	s.logger.Info("schema imported (%d fields)", len(result.Schema.Fields))
	return result, err
}

// Export renders the current schema in format.
func (s *Session) Export(format Format) ([]byte, error) {
	state := s.State()
	switch format {
	case FormatJSON:
		return schema.Serialize(state.Schema)
	case FormatOpenAPI:
		return export.JSONSchema(state.Schema)
	case FormatHTML:
		html, err := s.renderer.Render(state.Schema, preview.FormState{Theme: string(state.UI.Theme)})
		if err != nil {
			return nil, err
		}
		return []byte(html), nil
	}
	return nil, apperror.From(apperror.ErrExportUnsupported, fmt.Sprintf("export format %q not supported", format), nil, map[string]any{
		"format": string(format),
	})
}

// ParseFormat maps a name onto a Format.
func ParseFormat(name string) (Format, bool) {
	for _, format := range Formats {
		if string(format) == name {
			return format, true
		}
	}
	return "", false
}
