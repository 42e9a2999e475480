package preview

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

//go:embed templates
var templateFS embed.FS

const formTemplate = "form.html.tpl"

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy

	defaultRendererOnce sync.Once
	defaultRenderer     *Renderer
	defaultRendererErr  error
)

// FormState is the interactive state rendered alongside the schema.
type FormState struct {
	Values Values
	// Errors are shown in place of help text.
	Errors Errors
	// Theme is "light" or "dark"; empty renders light.
	Theme string
}

// Renderer renders schemas through a pongo2 template set.
type Renderer struct {
	mu        sync.Mutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// NewRenderer builds a renderer over templates, which must contain
// form.html.tpl. A nil fs uses the embedded template.
func NewRenderer(templates fs.FS) (*Renderer, error) {
	if templates == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("preview: embedded templates: %w", err)
		}
		templates = sub
	}
	return &Renderer{
		set:       pongo2.NewSet("formbuilder-preview", pongo2.NewFSLoader(templates)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// RenderHTML renders s with its initial values using the embedded template.
func RenderHTML(s schema.Schema) (string, error) {
	defaultRendererOnce.Do(func() {
		defaultRenderer, defaultRendererErr = NewRenderer(nil)
	})
	if defaultRendererErr != nil {
		return "", defaultRendererErr
	}
	return defaultRenderer.Render(s, FormState{})
}

// Render renders s with state. Missing values fall back to the initial
// values of each field.
func (r *Renderer) Render(s schema.Schema, state FormState) (string, error) {
	if r == nil || r.set == nil {
		return "", errors.New("preview: renderer not configured")
	}
	tmpl, err := r.template(formTemplate)
	if err != nil {
		return "", err
	}
	out, err := tmpl.Execute(pongo2.Context{"form": buildView(s, state)})
	if err != nil {
		return "", fmt.Errorf("preview: render: %w", err)
	}
	return out, nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("preview: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

type formView struct {
	Title       string
	Description string
	Theme       string
	Fields      []fieldView
}

type fieldView struct {
	ID          string
	InputID     string
	Type        string
	Label       string
	Placeholder string
	Required    bool
	Value       string
	Checked     bool
	Attrs       []attrView
	Options     []optionView
	Error       string
	HelpHTML    string
	Meta        bool
}

type attrView struct {
	Name  string
	Value string
}

type optionView struct {
	Label    string
	Value    string
	Selected bool
}

func buildView(s schema.Schema, state FormState) formView {
	theme := "light"
	if state.Theme == "dark" {
		theme = "dark"
	}
	view := formView{
		Title:       s.Title,
		Description: s.Description,
		Theme:       theme,
		Fields:      make([]fieldView, 0, len(s.Fields)),
	}

	for _, field := range s.Fields {
		value, ok := state.Values[field.ID]
		if !ok || value == nil {
			value = initialValue(field)
		}
		text, _ := value.(string)

		fv := fieldView{
			ID:          field.ID,
			InputID:     "preview-" + field.ID,
			Type:        string(field.Type),
			Label:       field.Label,
			Placeholder: field.Placeholder,
			Required:    field.Required,
			Value:       text,
			Checked:     checked(value),
			Attrs:       constraintAttrs(field),
			Error:       state.Errors[field.ID],
			HelpHTML:    sanitizeHelp(field.HelpText),
		}
		fv.Meta = fv.Error != "" || fv.HelpHTML != ""
		for _, option := range field.Options {
			fv.Options = append(fv.Options, optionView{
				Label:    option.Label,
				Value:    option.Value,
				Selected: text != "" && option.Value == text,
			})
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}

func constraintAttrs(field schema.Field) []attrView {
	var attrs []attrView
	add := func(name string, value *float64) {
		if value != nil {
			attrs = append(attrs, attrView{Name: name, Value: schema.FormatNumber(*value)})
		}
	}
	if schema.IsLengthSupported(field.Type) {
		add("minlength", field.Validations.MinLength)
		add("maxlength", field.Validations.MaxLength)
	}
	if schema.IsNumberRangeSupported(field.Type) {
		add("min", field.Validations.Min)
		add("max", field.Validations.Max)
	}
	return attrs
}

func sanitizeHelp(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	helpPolicyOnce.Do(func() {
		helpPolicy = bluemonday.UGCPolicy()
	})
	return strings.TrimSpace(helpPolicy.Sanitize(trimmed))
}
