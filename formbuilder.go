// Package formbuilder is the entry point for embedding the form builder:
// it wires a persistence store, a logger and a session with sensible
// defaults. The building blocks live under pkg/.
package formbuilder

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/logging"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/session"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Schema aliases schema.Schema for callers that only need the facade.
type Schema = schema.Schema

// Field aliases schema.Field.
type Field = schema.Field

// State aliases builder.State.
type State = builder.State

// Action aliases builder.Action.
type Action = builder.Action

// Session aliases session.Session.
type Session = session.Session

// StoreKind names a persistence backend understood by OpenStore.
type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
	StoreSQLite StoreKind = "sqlite"
)

// Option configures New.
type Option func(*options)

type options struct {
	store    storage.Store
	logger   logging.Logger
	renderer *preview.Renderer
	autosave bool
}

// WithStore persists the session in store. Without it the session lives in
// memory.
func WithStore(store storage.Store) Option {
	return func(o *options) {
		if store != nil {
			o.store = store
		}
	}
}

// WithLogger sets the logger shared by the session.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRenderer overrides the HTML preview renderer, e.g. one built over
// custom templates with preview.NewRenderer.
func WithRenderer(renderer *preview.Renderer) Option {
	return func(o *options) {
		o.renderer = renderer
	}
}

// WithAutosave toggles persisting after every change.
func WithAutosave(enabled bool) Option {
	return func(o *options) {
		o.autosave = enabled
	}
}

// New starts a session.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	cfg := options{logger: logging.Nop(), autosave: true}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.store == nil {
		cfg.store = storage.NewMemoryStore(nil)
	}

	sessionOpts := []session.Option{
		session.WithLogger(cfg.logger),
		session.WithAutosave(cfg.autosave),
	}
	if cfg.renderer != nil {
		sessionOpts = append(sessionOpts, session.WithRenderer(cfg.renderer))
	}
	return session.New(ctx, cfg.store, sessionOpts...)
}

// OpenStore opens the backend named by kind. path is a directory for the file
// store and a database file for sqlite; memory ignores it. The returned
// closer releases the backend and is never nil.
func OpenStore(ctx context.Context, kind StoreKind, path string) (storage.Store, io.Closer, error) {
	switch kind {
	case StoreMemory, "":
		return storage.NewMemoryStore(nil), nopCloser{}, nil
	case StoreFile:
		store, err := storage.NewFileStore(path)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return store, nopCloser{}, nil
	case StoreSQLite:
		store, err := storage.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return store, store, nil
	}
	return nil, nopCloser{}, fmt.Errorf("formbuilder: unknown store kind %q", kind)
}

// Validate runs the schema validator over candidate.
func Validate(candidate any) validation.Result {
	return validation.Validate(candidate)
}

// ParseImport parses and validates a JSON payload.
func ParseImport(text string) validation.Result {
	return validation.ParseImport(text)
}

// Normalize coerces candidate into a well-formed schema.
func Normalize(candidate any) Schema {
	return schema.NormalizeSchema(candidate)
}

// Reduce applies action to state.
func Reduce(state State, action Action) State {
	return builder.Reduce(state, action)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
