package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/console"
	"github.com/goliatone/go-formbuilder/pkg/logging"
	"github.com/goliatone/go-formbuilder/pkg/session"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

type Globals struct {
	Config    string `help:"YAML configuration file." type:"path" env:"FORMBUILDER_CONFIG"`
	Store     string `help:"Store kind: memory, file or sqlite." env:"FORMBUILDER_STORE"`
	StorePath string `name:"store-path" help:"Store directory (file) or database file (sqlite)." env:"FORMBUILDER_STORE_PATH"`
	LogLevel  string `name:"log-level" help:"Log level." env:"FORMBUILDER_LOG_LEVEL"`
	LogJSON   bool   `name:"log-json" help:"Emit JSON logs." env:"FORMBUILDER_LOG_JSON"`
}

type cli struct {
	Globals `embed:""`

	Edit     editCmd     `cmd:"" default:"1" help:"Edit the form interactively."`
	Import   importCmd   `cmd:"" help:"Replace the form with a JSON or YAML schema file."`
	Validate validateCmd `cmd:"" help:"Check a schema file without importing it."`
	Export   exportCmd   `cmd:"" help:"Export the form as JSON, OpenAPI schema or HTML."`
	Show     showCmd     `cmd:"" help:"Print the current form."`
	Reset    resetCmd    `cmd:"" help:"Replace the form with the demo form."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "formbuilder: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var root cli
	parser, err := kong.New(&root,
		kong.Name("formbuilder"),
		kong.Description("Build form schemas from the terminal."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, root.Globals, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	return kctx.Run(a)
}

// app carries what every command needs.
type app struct {
	ctx     context.Context
	out     io.Writer
	cfg     config.Config
	logger  logging.Logger
	store   storage.Store
	closer  io.Closer
	session *session.Session
}

func newApp(ctx context.Context, g Globals, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	overrides := config.Overrides{StoreKind: g.Store, StorePath: g.StorePath, LogLevel: g.LogLevel}
	if g.LogJSON {
		overrides.LogJSON = &g.LogJSON
	}
	if cfg, err = cfg.Apply(overrides); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Writer: stderr})
	store, closer, err := formbuilder.OpenStore(ctx, formbuilder.StoreKind(cfg.Store.Kind), cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	s, err := formbuilder.New(ctx,
		formbuilder.WithStore(store),
		formbuilder.WithLogger(logger),
		formbuilder.WithAutosave(cfg.AutosaveEnabled()),
	)
	if err != nil {
		closer.Close()
		return nil, err
	}

	logging.WithFields(logger, map[string]any{
		"store": string(cfg.Store.Kind),
		"path":  cfg.Store.Path,
	}).Debug("session ready")

	return &app{
		ctx:     ctx,
		out:     stdout,
		cfg:     cfg,
		logger:  logger,
		store:   store,
		closer:  closer,
		session: s,
	}, nil
}

func (a *app) close() {
	if err := a.closer.Close(); err != nil {
		a.logger.Warn("close store: %v", err)
	}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) editor() (*console.Editor, error) {
	return console.NewEditor(a.session, console.WithLogger(a.logger))
}
