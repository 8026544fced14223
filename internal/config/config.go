// Package config loads tabledao settings from a YAML file.
//
// A config file is checked against an embedded CUE schema before it is
// decoded, so unknown keys, bad drivers and malformed durations are reported
// with file positions. Values missing from the file keep their defaults.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Defaults.
const (
	DefaultDriver       = "sqlite3"
	DefaultDSN          = "tabledao.db"
	DefaultRowLimit     = 100
	DefaultWaitTimeout  = 30 * time.Second
	DefaultWaitInterval = 2 * time.Second
	DefaultNamespace    = "github.com/roach88/tabledao/internal/example"
)

// Config holds the settings shared by the CLI and the scenario harness.
type Config struct {
	// Driver is the database/sql driver name: sqlite3 or mysql.
	Driver string `yaml:"driver"`

	// DSN is the data source name; a file path for sqlite3.
	DSN string `yaml:"dsn"`

	// Namespaces limits handler lookup to these package paths.
	Namespaces []string `yaml:"namespaces"`

	// RowLimit caps finds that have no conditions.
	RowLimit int `yaml:"row_limit"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Wait configures row polling.
	Wait WaitConfig `yaml:"wait"`
}

// WaitConfig configures row polling in scenarios.
type WaitConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Driver:     DefaultDriver,
		DSN:        DefaultDSN,
		Namespaces: []string{DefaultNamespace},
		RowLimit:   DefaultRowLimit,
		LogLevel:   "info",
		Wait: WaitConfig{
			Timeout:  DefaultWaitTimeout,
			Interval: DefaultWaitInterval,
		},
	}
}

// Load reads the config file at path over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and decodes YAML config data over the defaults.
// filename is used in error positions only.
func Parse(filename string, data []byte) (*Config, error) {
	if err := validate(filename, data); err != nil {
		return nil, err
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", filename, err)
	}
	return cfg, nil
}

// validate checks data against the #Config schema.
func validate(filename string, data []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return formatCUEError(err)
	}
	v := ctx.BuildFile(file)
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// Level returns the slog level for LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Error reports an invalid config file.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts path and position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Report the first error; CUE lists them in source order
	first := errs[0]
	field := strings.Join(first.Path(), ".")
	if field == "" {
		field = "config"
	}
	msg := first.Error()
	var pos token.Pos
	for _, p := range cueerrors.Positions(first) {
		if p.Filename() != "schema.cue" {
			pos = p
			break
		}
	}
	return &Error{Field: field, Message: msg, Pos: pos}
}
