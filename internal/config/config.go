// Package config loads the command line configuration: an optional YAML file
// whose values the CLI flags and FORMBUILDER_* environment variables override.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/apperror"
)

// StoreKind selects the persistence backend.
type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
	StoreSQLite StoreKind = "sqlite"
)

// StoreConfig configures persistence. Path is a directory for the file store
// and a database file for sqlite.
type StoreConfig struct {
	Kind StoreKind `yaml:"kind"`
	Path string    `yaml:"path"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is the CLI configuration.
type Config struct {
	Store    StoreConfig `yaml:"store"`
	Log      LogConfig   `yaml:"log"`
	Autosave *bool       `yaml:"autosave"`
}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "fatal"}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store: StoreConfig{Kind: StoreFile, Path: defaultStorePath()},
		Log:   LogConfig{Level: "info"},
	}
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "formbuilder")
	}
	return ".formbuilder"
}

// Load reads path over the defaults. An empty path returns the defaults; a
// missing file is an error since it was asked for explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, apperror.From(apperror.ErrConfigInvalid, fmt.Sprintf("read config %s", path), err, map[string]any{
			"path": path,
		})
	}
	parsed, err := Parse(data)
	if err != nil {
		return cfg, apperror.From(apperror.ErrConfigInvalid, fmt.Sprintf("parse config %s", path), err, map[string]any{
			"path": path,
		})
	}
	return parsed, nil
}

// Parse decodes YAML data, fills unset values with the defaults and validates
// the result.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg = cfg.withDefaults()
	return cfg, cfg.Validate()
}

func (c Config) withDefaults() Config {
	def := Default()
	if c.Store.Kind == "" {
		c.Store.Kind = def.Store.Kind
	}
	if c.Store.Path == "" && c.Store.Kind != StoreMemory {
		c.Store.Path = def.Store.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	return c
}

// Validate reports unknown store kinds, a missing store path and unknown log
// levels.
func (c Config) Validate() error {
	var problems []string
	switch c.Store.Kind {
	case StoreMemory:
	case StoreFile, StoreSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			problems = append(problems, fmt.Sprintf("store %s requires a path", c.Store.Kind))
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store kind %q", c.Store.Kind))
	}
	if !contains(logLevels, strings.ToLower(c.Log.Level)) {
		problems = append(problems, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	if len(problems) == 0 {
		return nil
	}
	return apperror.From(apperror.ErrConfigInvalid, strings.Join(problems, "; "), errors.New(problems[0]), map[string]any{
		"problems": problems,
	})
}

// AutosaveEnabled reports the autosave setting, on unless disabled.
func (c Config) AutosaveEnabled() bool {
	return c.Autosave == nil || *c.Autosave
}

// Overrides are values set on the command line. Empty members keep the loaded
// value.
type Overrides struct {
	StoreKind string
	StorePath string
	LogLevel  string
	LogJSON   *bool
}

// Apply merges o into c and validates the result.
func (c Config) Apply(o Overrides) (Config, error) {
	if o.StoreKind != "" {
		c.Store.Kind = StoreKind(strings.ToLower(o.StoreKind))
	}
	if o.StorePath != "" {
		c.Store.Path = o.StorePath
	}
	if o.LogLevel != "" {
		c.Log.Level = strings.ToLower(o.LogLevel)
	}
	if o.LogJSON != nil {
		c.Log.JSON = *o.LogJSON
	}
	c = c.withDefaults()
	return c, c.Validate()
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
