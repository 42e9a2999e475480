package storage

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-formbuilder/pkg/apperror"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

const (
	// Version is the envelope format version.
	Version = 1
	// Key holds the current envelope.
	Key = "form_builder_pro_v1"
	// ThemeKey holds the theme preference on its own.
	ThemeKey = "form_builder_pro_theme"
)

// LegacyKeys are consulted, in order, when Key is missing or unreadable.
var LegacyKeys = []string{"form_builder_pro_v0", "form_builder_pro"}

// Envelope is the persisted record.
type Envelope struct {
	StorageVersion int                 `json:"storageVersion"`
	SchemaVersion  int                 `json:"schemaVersion"`
	Schema         schema.Schema       `json:"schema"`
	UIPreferences  builder.Preferences `json:"uiPreferences"`
}

// Snapshot is what a session starts from.
type Snapshot struct {
	Schema        schema.Schema
	UIPreferences builder.Preferences
	// SeededDemo is true when nothing usable was stored and the demo schema
	// was substituted.
	SeededDemo bool
}

// Load reads the envelope, falling back to the legacy keys and then to the
// demo schema. The returned snapshot is always usable; a non-nil error
// reports a store failure that forced a fallback.
func Load(ctx context.Context, store Store) (Snapshot, error) {
	payload, readErr := readPayload(ctx, store, Key)
	if payload == nil {
		for _, key := range LegacyKeys {
			legacy, err := readPayload(ctx, store, key)
			if err != nil && readErr == nil {
				readErr = err
			}
			if legacy != nil {
				payload = legacy
				break
			}
		}
	}

	snapshot, ok := migratePayload(payload)
	if !ok {
		snapshot = Snapshot{
			Schema:        schema.DemoSchema(),
			UIPreferences: builder.DefaultPreferences(),
			SeededDemo:    true,
		}
	}
	return snapshot, readErr
}

// Save writes the envelope for s and prefs under Key.
func Save(ctx context.Context, store Store, s schema.Schema, prefs builder.Preferences) error {
	envelope := Envelope{
		StorageVersion: Version,
		SchemaVersion:  schema.Version,
		Schema:         schema.NormalizeSchema(s),
		UIPreferences:  prefs.Normalize(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return apperror.From(apperror.ErrStorageWrite, "encode envelope", err, map[string]any{"key": Key})
	}
	if err := store.Set(ctx, Key, string(data)); err != nil {
		return apperror.From(apperror.ErrStorageWrite, "save envelope", err, map[string]any{"key": Key})
	}
	return nil
}

// LoadTheme returns the stored theme. ok is false when no valid theme is
// stored.
func LoadTheme(ctx context.Context, store Store) (theme builder.Theme, ok bool, err error) {
	value, found, err := store.Get(ctx, ThemeKey)
	if err != nil {
		return "", false, apperror.From(apperror.ErrStorageRead, "load theme", err, map[string]any{"key": ThemeKey})
	}
	if !found {
		return "", false, nil
	}
	switch builder.Theme(value) {
	case builder.ThemeLight, builder.ThemeDark:
		return builder.Theme(value), true, nil
	}
	return "", false, nil
}

// SaveTheme stores theme, coercing anything but dark to light.
func SaveTheme(ctx context.Context, store Store, theme builder.Theme) error {
	value := string(builder.ParseTheme(string(theme)))
	if err := store.Set(ctx, ThemeKey, value); err != nil {
		return apperror.From(apperror.ErrStorageWrite, "save theme", err, map[string]any{"key": ThemeKey})
	}
	return nil
}

// Clear removes the envelope. Legacy keys and the theme are kept.
func Clear(ctx context.Context, store Store) error {
	if err := store.Delete(ctx, Key); err != nil {
		return apperror.From(apperror.ErrStorageWrite, "clear envelope", err, map[string]any{"key": Key})
	}
	return nil
}

// readPayload returns the parsed value under key, or nil when the key is
// missing, unparseable or holds a falsy JSON value.
func readPayload(ctx context.Context, store Store, key string) (any, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, apperror.From(apperror.ErrStorageRead, "load "+key, err, map[string]any{"key": key})
	}
	if !found || raw == "" {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, nil
	}
	if !truthy(payload) {
		return nil, nil
	}
	return payload, nil
}

// migratePayload lifts a stored payload into a snapshot. A payload carrying a
// truthy "schema" member is an envelope; any other object is a bare schema.
func migratePayload(payload any) (Snapshot, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return Snapshot{}, false
	}

	source := any(obj)
	if inner, present := obj["schema"]; present && truthy(inner) {
		source = inner
	}

	prefs := builder.DefaultPreferences()
	if stored, ok := obj["uiPreferences"].(map[string]any); ok {
		if theme, ok := stored["theme"].(string); ok {
			prefs.Theme = builder.Theme(theme)
		}
		if view, ok := stored["activeView"].(string); ok {
			prefs.ActiveView = builder.View(view)
		}
	}

	return Snapshot{
		Schema:        schema.NormalizeSchema(source),
		UIPreferences: prefs.Normalize(),
	}, true
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case float64:
		return typed != 0
	}
	return true
}
