package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbuilder/pkg/apperror"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/logging"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (brokenStore) Set(context.Context, string, string) error { return errors.New("disk on fire") }
func (brokenStore) Delete(context.Context, string) error      { return errors.New("disk on fire") }

func newSession(t *testing.T, store storage.Store, options ...Option) *Session {
	t.Helper()
	s, err := New(context.Background(), store, options...)
	require.NoError(t, err)
	return s
}

func TestNew_SeedsDemoOnEmptyStore(t *testing.T) {
	s := newSession(t, storage.NewMemoryStore(nil))

	require.True(t, s.SeededDemo())
	state := s.State()
	require.Equal(t, "Team Intake Form", state.Schema.Title)
	require.Equal(t, state.Schema.Fields[0].ID, state.SelectedFieldID)
	require.Equal(t, builder.ThemeLight, state.UI.Theme)
}

func TestNew_NilStore(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Dispatch(context.Background(), builder.AppendField(schema.FieldDate))
	require.NoError(t, err)
	require.Len(t, s.State().Schema.Fields, 5)
}

func TestNew_ThemeKeyOverridesEnvelope(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)
	require.NoError(t, storage.Save(ctx, store, schema.DemoSchema(), builder.Preferences{
		Theme:      builder.ThemeLight,
		ActiveView: builder.ViewPreview,
	}))
	require.NoError(t, storage.SaveTheme(ctx, store, builder.ThemeDark))

	s := newSession(t, store)
	require.False(t, s.SeededDemo())
	require.Equal(t, builder.ThemeDark, s.State().UI.Theme)
	require.Equal(t, builder.ViewPreview, s.State().UI.ActiveView)
}

func TestNew_StoreFailureStillStarts(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, brokenStore{}, WithLogger(logging.NewFmtLogger(&out)))

	require.True(t, s.SeededDemo())
	require.Len(t, s.State().Schema.Fields, 4)
	require.Contains(t, out.String(), "load persisted state")
}

func TestDispatch_PersistsSchemaChanges(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)
	s := newSession(t, store)

	state, err := s.Dispatch(ctx, builder.AppendField(schema.FieldNumber))
	require.NoError(t, err)
	require.Len(t, state.Schema.Fields, 5)

	snapshot, err := storage.Load(ctx, store)
	require.NoError(t, err)
	require.False(t, snapshot.SeededDemo)
	require.Equal(t, state.Schema, snapshot.Schema)
}

func TestDispatch_SelectionDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)
	s := newSession(t, store)

	second := s.State().Schema.Fields[1].ID
	_, err := s.Dispatch(ctx, builder.SelectField{FieldID: second})
	require.NoError(t, err)

	_, found, err := store.Get(ctx, storage.Key)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDispatch_ThemeToggleSavesTheme(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)
	s := newSession(t, store)

	_, err := s.Dispatch(ctx, builder.ToggleTheme{})
	require.NoError(t, err)

	theme, ok, err := storage.LoadTheme(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, builder.ThemeDark, theme)

	snapshot, err := storage.Load(ctx, store)
	require.NoError(t, err)
	require.Equal(t, builder.ThemeDark, snapshot.UIPreferences.Theme)
}

func TestDispatch_AutosaveDisabled(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)
	s := newSession(t, store, WithAutosave(false))

	_, err := s.Dispatch(ctx, builder.AppendField(schema.FieldText))
	require.NoError(t, err)
	_, found, err := store.Get(ctx, storage.Key)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Save(ctx))
	snapshot, err := storage.Load(ctx, store)
	require.NoError(t, err)
	require.Len(t, snapshot.Schema.Fields, 5)
}

func TestDispatch_WriteFailureKeepsState(t *testing.T) {
	s := newSession(t, brokenStore{})

	state, err := s.Dispatch(context.Background(), builder.AppendField(schema.FieldText))
	require.Error(t, err)
	require.True(t, apperror.HasCode(err, apperror.CodeStorageWrite))
	require.Len(t, state.Schema.Fields, 5)
	require.Len(t, s.State().Schema.Fields, 5)
}

func TestImportText_Valid(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, storage.NewMemoryStore(nil))
	_, err := s.Dispatch(ctx, builder.SetActiveView{View: builder.ViewPreview})
	require.NoError(t, err)

	result, err := s.ImportText(ctx, `{"title":"Imported","fields":[{"type":"text","label":"A"}]}`)
	require.NoError(t, err)
	require.True(t, result.IsValid)

	state := s.State()
	require.Equal(t, "Imported", state.Schema.Title)
	require.Len(t, state.Schema.Fields, 1)
	require.Equal(t, state.Schema.Fields[0].ID, state.SelectedFieldID)
	require.Equal(t, builder.ViewBuilder, state.UI.ActiveView)
	require.False(t, state.UI.ApplyingImport)
	require.False(t, state.UI.ImportOpen)
	require.True(t, builder.CanUndo(state))

	_, err = s.Dispatch(ctx, builder.Undo{})
	require.NoError(t, err)
	require.Equal(t, "Team Intake Form", s.State().Schema.Title)
}

func TestImportText_InvalidLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, storage.NewMemoryStore(nil))
	before := s.State()

	result, err := s.ImportText(ctx, `{"fields":[{"type":"color"}]}`)
	require.Error(t, err)
	require.False(t, result.IsValid)
	require.True(t, apperror.HasCode(err, apperror.CodeImportInvalid))
	require.Equal(t, result.Errors, apperror.Metadata(err)["errors"])
	require.Equal(t, before.Revision, s.State().Revision)
	require.Equal(t, before.Schema, s.State().Schema)
}

func TestImport_YAMLFile(t *testing.T) {
	s := newSession(t, storage.NewMemoryStore(nil))
	data := []byte("title: From YAML\nfields:\n  - type: number\n    label: Age\n    validations:\n      min: 18\n")

	result, err := s.Import(context.Background(), "form.yaml", data)
	require.NoError(t, err)
	require.True(t, result.IsValid)

	field := s.State().Schema.Fields[0]
	require.Equal(t, schema.FieldNumber, field.Type)
	require.NotNil(t, field.Validations.Min)
	require.Equal(t, 18.0, *field.Validations.Min)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, storage.NewMemoryStore(nil))
	_, err := s.ImportText(ctx, `{"title":"Other","fields":[]}`)
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, builder.SetUI{Changes: builder.UIChanges{ConfirmResetOpen: builder.Ptr(true)}})
	require.NoError(t, err)

	state, err := s.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, "Team Intake Form", state.Schema.Title)
	require.False(t, state.UI.ConfirmResetOpen)
	require.True(t, builder.CanUndo(state))
}

func TestExport(t *testing.T) {
	s := newSession(t, storage.NewMemoryStore(nil))

	data, err := s.Export(FormatJSON)
	require.NoError(t, err)
	decoded, err := schema.Decode(data)
	require.NoError(t, err)
	require.Equal(t, s.State().Schema, decoded)

	data, err = s.Export(FormatOpenAPI)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, fmt.Sprint(doc["type"]), "object")

	data, err = s.Export(FormatHTML)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "Team Intake Form"))

	_, err = s.Export(Format("xml"))
	require.Error(t, err)
	require.True(t, apperror.HasCode(err, apperror.CodeExportUnsupported))
}

func TestParseFormat(t *testing.T) {
	format, ok := ParseFormat("openapi")
	require.True(t, ok)
	require.Equal(t, FormatOpenAPI, format)

	_, ok = ParseFormat("pdf")
	require.False(t, ok)
}
