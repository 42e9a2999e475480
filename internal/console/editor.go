// Package console is the interactive terminal editor: a menu loop over a
// PromptDriver that dispatches builder actions through a session.
package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/logging"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

// Option configures the Editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Editor edits the schema of a session interactively.
type Editor struct {
	session *session.Session
	driver  PromptDriver
	logger  logging.Logger
}

// NewEditor builds an editor over s using the survey driver unless another is
// provided.
func NewEditor(s *session.Session, options ...Option) (*Editor, error) {
	if s == nil {
		return nil, ErrNoSession
	}
	e := &Editor{session: s, logger: logging.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(nil)
	}
	return e, nil
}

type menuItem struct {
	label string
	run   func(context.Context) error
}

var errQuit = errors.New("console: quit")

// Run shows the main menu until the user quits or aborts. Aborting a nested
// prompt returns to the menu.
func (e *Editor) Run(ctx context.Context) error {
	if e.session.SeededDemo() {
		if err := e.driver.Info(ctx, "No saved form found, starting from the demo form."); err != nil {
			return err
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.driver.Info(ctx, e.header()); err != nil {
			return err
		}

		items := e.menu()
		labels := make([]string, len(items))
		for idx, item := range items {
			labels[idx] = item.label
		}
		choice, err := e.driver.Select(ctx, SelectConfig{Message: "What next?", Options: labels, PageSize: len(labels)})
		if errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if choice < 0 || choice >= len(items) {
			continue
		}

		err = items[choice].run(ctx)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, ErrAborted):
			continue
		case err != nil:
			e.logger.Warn("%s: %v", items[choice].label, err)
			if infoErr := e.driver.Info(ctx, "Error: "+err.Error()); infoErr != nil {
				return infoErr
			}
		}
	}
}

func (e *Editor) header() string {
	state := e.session.State()
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s (%d fields, %s theme)\n", state.Schema.Title, len(state.Schema.Fields), state.UI.Theme)
	for idx, field := range state.Schema.Fields {
		marker := " "
		if field.ID == state.SelectedFieldID {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %d. %s [%s]", marker, idx+1, field.Label, field.Type)
		if summary := builder.ValidationSummary(field); len(summary) > 0 {
			fmt.Fprintf(&b, " %s", strings.Join(summary, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (e *Editor) menu() []menuItem {
	state := e.session.State()
	items := []menuItem{{label: "Add field", run: e.addField}}
	if len(state.Schema.Fields) > 0 {
		items = append(items,
			menuItem{label: "Select field", run: e.selectField},
			menuItem{label: "Edit selected field", run: e.editField},
			menuItem{label: "Move selected field up", run: e.moveField(builder.DirectionUp)},
			menuItem{label: "Move selected field down", run: e.moveField(builder.DirectionDown)},
			menuItem{label: "Delete selected field", run: e.deleteField},
		)
	}
	items = append(items, menuItem{label: "Edit form details", run: e.editDetails})
	if builder.CanUndo(state) {
		items = append(items, menuItem{label: "Undo", run: e.dispatchOnly(builder.Undo{})})
	}
	if builder.CanRedo(state) {
		items = append(items, menuItem{label: "Redo", run: e.dispatchOnly(builder.Redo{})})
	}
	return append(items,
		menuItem{label: "Preview form", run: e.previewForm},
		menuItem{label: "Import schema file", run: e.importFile},
		menuItem{label: "Export schema", run: e.exportSchema},
		menuItem{label: "Toggle theme", run: e.dispatchOnly(builder.ToggleTheme{})},
		menuItem{label: "Reset to demo form", run: e.reset},
		menuItem{label: "Quit", run: func(context.Context) error { return errQuit }},
	)
}

func (e *Editor) dispatch(ctx context.Context, action builder.Action) error {
	_, err := e.session.Dispatch(ctx, action)
	return err
}

func (e *Editor) dispatchOnly(action builder.Action) func(context.Context) error {
	return func(ctx context.Context) error {
		return e.dispatch(ctx, action)
	}
}

func (e *Editor) addField(ctx context.Context) error {
	catalogue := schema.Catalogue()
	labels := make([]string, len(catalogue))
	for idx, info := range catalogue {
		labels[idx] = fmt.Sprintf("%s: %s", info.Label, info.Description)
	}
	choice, err := e.driver.Select(ctx, SelectConfig{Message: "Field type", Options: labels})
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(catalogue) {
		return nil
	}

	action := builder.AppendField(catalogue[choice].Type)
	if idx := e.selectedIndex(); idx >= 0 {
		action = builder.InsertField(catalogue[choice].Type, idx+1)
	}
	return e.dispatch(ctx, action)
}

func (e *Editor) selectedIndex() int {
	state := e.session.State()
	return state.Schema.IndexOf(state.SelectedFieldID)
}

func (e *Editor) selectField(ctx context.Context) error {
	state := e.session.State()
	labels := make([]string, len(state.Schema.Fields))
	for idx, field := range state.Schema.Fields {
		labels[idx] = fmt.Sprintf("%d. %s [%s]", idx+1, field.Label, field.Type)
	}
	choice, err := e.driver.Select(ctx, SelectConfig{
		Message:      "Select field",
		Options:      labels,
		DefaultIndex: state.Schema.IndexOf(state.SelectedFieldID),
	})
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(state.Schema.Fields) {
		return nil
	}
	return e.dispatch(ctx, builder.SelectField{FieldID: state.Schema.Fields[choice].ID})
}

func (e *Editor) moveField(direction builder.Direction) func(context.Context) error {
	return func(ctx context.Context) error {
		return e.dispatch(ctx, builder.MoveField{FieldID: e.session.State().SelectedFieldID, Direction: direction})
	}
}

func (e *Editor) deleteField(ctx context.Context) error {
	field, ok := builder.SelectedField(e.session.State())
	if !ok {
		return nil
	}
	confirmed, err := e.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Delete %q?", field.Label)})
	if err != nil || !confirmed {
		return err
	}
	return e.dispatch(ctx, builder.DeleteField{FieldID: field.ID})
}

func (e *Editor) editDetails(ctx context.Context) error {
	current := e.session.State().Schema
	title, err := e.driver.Input(ctx, InputConfig{Message: "Form title", Default: current.Title})
	if err != nil {
		return err
	}
	description, err := e.driver.Input(ctx, InputConfig{Message: "Form description", Default: current.Description})
	if err != nil {
		return err
	}
	if title == current.Title && description == current.Description {
		return nil
	}
	next := current
	next.Title = title
	next.Description = description
	return e.dispatch(ctx, builder.SetSchema{Schema: next})
}

func (e *Editor) reset(ctx context.Context) error {
	if _, err := e.session.Dispatch(ctx, builder.SetUI{Changes: builder.UIChanges{ConfirmResetOpen: builder.Ptr(true)}}); err != nil {
		return err
	}
	confirmed, err := e.driver.Confirm(ctx, ConfirmConfig{Message: "Replace the form with the demo form? You can undo this."})
	if err != nil || !confirmed {
		_, closeErr := e.session.Dispatch(ctx, builder.SetUI{Changes: builder.UIChanges{ConfirmResetOpen: builder.Ptr(false)}})
		return errors.Join(err, closeErr)
	}
	_, err = e.session.Reset(ctx)
	return err
}

func (e *Editor) importFile(ctx context.Context) error {
	path, err := e.driver.Input(ctx, InputConfig{Message: "Schema file (JSON or YAML)"})
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	result, err := e.session.Import(ctx, filepath.Base(path), data)
	if !result.IsValid {
		lines := append([]string{"Import failed:"}, result.Errors...)
		return e.driver.Info(ctx, strings.Join(lines, "\n  - "))
	}
	if err != nil {
		return err
	}
	return e.driver.Info(ctx, fmt.Sprintf("Imported %q with %d fields.", result.Schema.Title, len(result.Schema.Fields)))
}

func (e *Editor) exportSchema(ctx context.Context) error {
	labels := make([]string, len(session.Formats))
	for idx, format := range session.Formats {
		labels[idx] = string(format)
	}
	choice, err := e.driver.Select(ctx, SelectConfig{Message: "Export format", Options: labels})
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(session.Formats) {
		return nil
	}
	data, err := e.session.Export(session.Formats[choice])
	if err != nil {
		return err
	}

	path, err := e.driver.Input(ctx, InputConfig{Message: "Output file (blank prints it)"})
	if err != nil {
		return err
	}
	if path = strings.TrimSpace(path); path == "" {
		return e.driver.Info(ctx, string(data))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return e.driver.Info(ctx, fmt.Sprintf("Wrote %s.", path))
}

// previewForm fills the form field by field and shows either the validation
// errors or the submission payload.
func (e *Editor) previewForm(ctx context.Context) error {
	current := e.session.State().Schema
	if len(current.Fields) == 0 {
		return e.driver.Info(ctx, "Add fields to preview the form.")
	}
	values := preview.InitialValues(current.Fields)
	for _, field := range current.Fields {
		value, err := e.askValue(ctx, field, values[field.ID])
		if err != nil {
			return err
		}
		values[field.ID] = value
	}

	submission, ok := preview.Submit(current, values)
	if !ok {
		errs := preview.Validate(current, values)
		lines := []string{"The form has errors:"}
		for _, field := range current.Fields {
			if msg := errs[field.ID]; msg != "" {
				lines = append(lines, fmt.Sprintf("%s: %s", field.Label, msg))
			}
		}
		return e.driver.Info(ctx, strings.Join(lines, "\n  - "))
	}
	payload, err := submission.MarshalJSON()
	if err != nil {
		return err
	}
	return e.driver.Info(ctx, "Submitted: "+string(payload))
}

func (e *Editor) askValue(ctx context.Context, field schema.Field, current any) (any, error) {
	message := field.Label
	if field.Required {
		message += " *"
	}
	switch field.Type {
	case schema.FieldCheckbox:
		checked, _ := current.(bool)
		return e.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: checked, Help: field.HelpText})
	case schema.FieldSelect:
		labels := []string{"(none)"}
		defaultIndex := 0
		for idx, option := range field.Options {
			labels = append(labels, option.Label)
			if option.Value == current {
				defaultIndex = idx + 1
			}
		}
		choice, err := e.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: defaultIndex, Help: field.HelpText})
		if err != nil {
			return nil, err
		}
		if choice <= 0 || choice > len(field.Options) {
			return "", nil
		}
		return field.Options[choice-1].Value, nil
	case schema.FieldTextarea:
		text, _ := current.(string)
		return e.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: text, Help: field.HelpText})
	default:
		text, _ := current.(string)
		return e.driver.Input(ctx, InputConfig{Message: message, Default: text, Help: field.HelpText})
	}
}

func (e *Editor) editField(ctx context.Context) error {
	field, ok := builder.SelectedField(e.session.State())
	if !ok {
		return nil
	}

	props := []string{"Label", "Placeholder", "Help text", "Required", "Default value"}
	if schema.IsLengthSupported(field.Type) {
		props = append(props, "Min length", "Max length")
	}
	if schema.IsNumberRangeSupported(field.Type) {
		props = append(props, "Min value", "Max value")
	}
	if schema.IsOptionsSupported(field.Type) {
		props = append(props, "Options")
	}
	choice, err := e.driver.Select(ctx, SelectConfig{Message: fmt.Sprintf("Edit %q", field.Label), Options: props})
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(props) {
		return nil
	}

	changes, err := e.askChanges(ctx, field, props[choice])
	if err != nil {
		return err
	}
	return e.dispatch(ctx, builder.UpdateField{FieldID: field.ID, Changes: changes})
}

var ruleByProp = map[string]string{
	"Min length": schema.RuleMinLength,
	"Max length": schema.RuleMaxLength,
	"Min value":  schema.RuleMin,
	"Max value":  schema.RuleMax,
}

func (e *Editor) askChanges(ctx context.Context, field schema.Field, prop string) (builder.FieldChanges, error) {
	var changes builder.FieldChanges
	switch prop {
	case "Label":
		value, err := e.driver.Input(ctx, InputConfig{Message: "Label", Default: field.Label})
		changes.Label = &value
		return changes, err
	case "Placeholder":
		value, err := e.driver.Input(ctx, InputConfig{Message: "Placeholder", Default: field.Placeholder})
		changes.Placeholder = &value
		return changes, err
	case "Help text":
		value, err := e.driver.Input(ctx, InputConfig{Message: "Help text", Default: field.HelpText})
		changes.HelpText = &value
		return changes, err
	case "Required":
		value, err := e.driver.Confirm(ctx, ConfirmConfig{Message: "Required?", Default: field.Required})
		changes.Required = &value
		return changes, err
	case "Default value":
		value, err := e.askDefault(ctx, field)
		changes.DefaultValue = value
		return changes, err
	case "Options":
		options, err := e.askOptions(ctx, field)
		changes.Options = options
		return changes, err
	}

	rule, ok := ruleByProp[prop]
	if !ok {
		return changes, nil
	}
	current := ""
	if value := field.Validations.Get(rule); value != nil {
		current = schema.FormatNumber(*value)
	}
	raw, err := e.driver.Input(ctx, InputConfig{
		Message:   prop + " (blank clears)",
		Default:   current,
		Validator: numberOrBlank,
	})
	if err != nil {
		return changes, err
	}
	changes.Validations = map[string]*float64{rule: schema.NullableNumber(strings.TrimSpace(raw))}
	return changes, nil
}

func (e *Editor) askDefault(ctx context.Context, field schema.Field) (any, error) {
	switch value := field.DefaultValue.(type) {
	case schema.BoolDefault:
		return e.driver.Confirm(ctx, ConfirmConfig{Message: "Checked by default?", Default: bool(value)})
	case schema.NumberDefault:
		raw, err := e.driver.Input(ctx, InputConfig{Message: "Default value", Default: value.String(), Validator: numberOrBlank})
		return strings.TrimSpace(raw), err
	}

	current, _ := field.DefaultValue.Raw().(string)
	if schema.IsOptionsSupported(field.Type) {
		labels := []string{"(none)"}
		defaultIndex := 0
		for idx, option := range field.Options {
			labels = append(labels, option.Label)
			if option.Value == current {
				defaultIndex = idx + 1
			}
		}
		choice, err := e.driver.Select(ctx, SelectConfig{Message: "Default option", Options: labels, DefaultIndex: defaultIndex})
		if err != nil || choice <= 0 || choice > len(field.Options) {
			return "", err
		}
		return field.Options[choice-1].Value, nil
	}
	return e.driver.Input(ctx, InputConfig{Message: "Default value", Default: current})
}

// askOptions edits select options one per line as "Label" or "Label=value".
// Existing option ids are kept by position.
func (e *Editor) askOptions(ctx context.Context, field schema.Field) ([]schema.Option, error) {
	lines := make([]string, len(field.Options))
	for idx, option := range field.Options {
		lines[idx] = option.Label + "=" + option.Value
	}
	raw, err := e.driver.TextArea(ctx, TextAreaConfig{
		Message: "Options, one per line (Label or Label=value)",
		Default: strings.Join(lines, "\n"),
	})
	if err != nil {
		return nil, err
	}
	return parseOptions(raw, field.Options)
}

func parseOptions(raw string, existing []schema.Option) ([]schema.Option, error) {
	var options []schema.Option
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, found := strings.Cut(line, "=")
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)
		if label == "" {
			label = fmt.Sprintf("Option %d", len(options)+1)
		}
		if !found || value == "" {
			value = schema.OptionValueFromLabel(label)
		}
		id := ids.New(ids.PrefixOption)
		if idx := len(options); idx < len(existing) {
			id = existing[idx].ID
		}
		options = append(options, schema.Option{ID: id, Label: label, Value: value})
	}
	if len(options) == 0 {
		return nil, errors.New("a select field needs at least one option")
	}
	return options, nil
}

func numberOrBlank(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, ok := schema.ToNumber(raw); !ok {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}
