package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/apperror"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/session"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

type editCmd struct{}

func (c *editCmd) Run(a *app) error {
	editor, err := a.editor()
	if err != nil {
		return err
	}
	if err := editor.Run(a.ctx); err != nil {
		return err
	}
	if !a.cfg.AutosaveEnabled() {
		return a.session.Save(a.ctx)
	}
	return nil
}

type importCmd struct {
	File string `arg:"" type:"existingfile" help:"Schema file (.json, .yaml or .yml)."`
}

func (c *importCmd) Run(a *app) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	result, err := a.session.Import(a.ctx, filepath.Base(c.File), data)
	if !result.IsValid {
		printErrors(a, result)
		return err
	}
	if err != nil {
		return err
	}
	if !a.cfg.AutosaveEnabled() {
		if err := a.session.Save(a.ctx); err != nil {
			return err
		}
	}
	a.printf("Imported %q with %d fields.\n", result.Schema.Title, len(result.Schema.Fields))
	return nil
}

type validateCmd struct {
	File string `arg:"" type:"existingfile" help:"Schema file (.json, .yaml or .yml)."`
}

func (c *validateCmd) Run(a *app) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	result := validation.ParseImportFile(c.File, data)
	if !result.IsValid {
		printErrors(a, result)
		return apperror.From(apperror.ErrImportInvalid, fmt.Sprintf("%s is not a valid schema", c.File), nil, map[string]any{
			"errors": result.Errors,
			"source": c.File,
		})
	}
	a.printf("%s is valid: %q with %d fields.\n", c.File, result.Schema.Title, len(result.Schema.Fields))
	return nil
}

func printErrors(a *app, result validation.Result) {
	a.printf("Schema rejected:\n")
	for _, msg := range result.Errors {
		a.printf("  - %s\n", msg)
	}
}

type exportCmd struct {
	Format string `short:"f" enum:"json,openapi,html" default:"json" help:"Output format (json, openapi, html)."`
	Output string `short:"o" type:"path" help:"Write to this file instead of stdout."`
}

func (c *exportCmd) Run(a *app) error {
	format, ok := session.ParseFormat(c.Format)
	if !ok {
		format = session.Format(c.Format)
	}
	data, err := a.session.Export(format)
	if err != nil {
		return err
	}
	if c.Output == "" {
		a.printf("%s\n", data)
		return nil
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return err
	}
	a.printf("Wrote %s.\n", c.Output)
	return nil
}

type showCmd struct{}

func (c *showCmd) Run(a *app) error {
	state := a.session.State()
	a.printf("%s\n", state.Schema.Title)
	if state.Schema.Description != "" {
		a.printf("%s\n", state.Schema.Description)
	}
	for idx, field := range state.Schema.Fields {
		a.printf("%d. %s [%s]", idx+1, field.Label, field.Type)
		if summary := builder.ValidationSummary(field); len(summary) > 0 {
			a.printf(" %s", strings.Join(summary, ", "))
		}
		a.printf("\n")
		for _, option := range field.Options {
			a.printf("   - %s (%s)\n", option.Label, option.Value)
		}
	}
	if len(state.Schema.Fields) == 0 {
		a.printf("No fields yet.\n")
	}
	return nil
}

type resetCmd struct {
	Clear bool `help:"Delete the saved form instead of resetting it to the demo form."`
}

func (c *resetCmd) Run(a *app) error {
	if c.Clear {
		if err := storage.Clear(a.ctx, a.store); err != nil {
			return err
		}
		a.printf("Saved form cleared.\n")
		return nil
	}
	if _, err := a.session.Reset(a.ctx); err != nil {
		return err
	}
	if !a.cfg.AutosaveEnabled() {
		if err := a.session.Save(a.ctx); err != nil {
			return err
		}
	}
	a.printf("Form reset to the demo form.\n")
	return nil
}
