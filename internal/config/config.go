// Package config loads lumen.toml, the pipeline configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"lumen/internal/pass"
	"lumen/internal/passes"
)

// FileName is the configuration file looked up by Find.
const FileName = "lumen.toml"

// ErrUnknownPass is wrapped by errors about pass names.
var ErrUnknownPass = errors.New("unknown pass")

type Pipeline struct {
	Passes          []string `toml:"passes"`
	RefreshStale    bool     `toml:"refresh_stale"`
	MaxDiagnostics  int      `toml:"max_diagnostics"`
	Jobs            int      `toml:"jobs"`
	CheckInvariants bool     `toml:"check_invariants"`
}

type Dump struct {
	Dir    string   `toml:"dir"`
	Format string   `toml:"format"` // text | msgpack
	Passes []string `toml:"passes"`
}

type Trace struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
	Mode   string `toml:"mode"`
}

// Config is the decoded lumen.toml. Path is empty for the defaults.
type Config struct {
	Path     string   `toml:"-"`
	Pipeline Pipeline `toml:"pipeline"`
	Dump     Dump     `toml:"dump"`
	Trace    Trace    `toml:"trace"`
}

// Default runs every pass that has a built-in implementation.
func Default() *Config {
	ids := make([]pass.ID, 0, 8)
	for id := range passes.Builtin() {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return &Config{
		Pipeline: Pipeline{Passes: names, MaxDiagnostics: 0},
		Dump:     Dump{Format: "text"},
		Trace:    Trace{Level: "off", Output: "stderr", Format: "auto", Mode: "stream"},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	if cfg.Dump.Dir != "" && !filepath.IsAbs(cfg.Dump.Dir) {
		cfg.Dump.Dir = filepath.Join(filepath.Dir(path), cfg.Dump.Dir)
	}
	return cfg, nil
}

// Decode parses TOML text over the defaults.
func Decode(text string) (*Config, error) {
	cfg := Default()
	var file Config
	meta, err := toml.Decode(text, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("pipeline", "passes") {
		cfg.Pipeline.Passes = file.Pipeline.Passes
	}
	if meta.IsDefined("pipeline", "refresh_stale") {
		cfg.Pipeline.RefreshStale = file.Pipeline.RefreshStale
	}
	if meta.IsDefined("pipeline", "max_diagnostics") {
		cfg.Pipeline.MaxDiagnostics = file.Pipeline.MaxDiagnostics
	}
	if meta.IsDefined("pipeline", "jobs") {
		cfg.Pipeline.Jobs = file.Pipeline.Jobs
	}
	if meta.IsDefined("pipeline", "check_invariants") {
		cfg.Pipeline.CheckInvariants = file.Pipeline.CheckInvariants
	}
	if meta.IsDefined("dump", "dir") {
		cfg.Dump.Dir = file.Dump.Dir
	}
	if meta.IsDefined("dump", "format") {
		cfg.Dump.Format = file.Dump.Format
	}
	if meta.IsDefined("dump", "passes") {
		cfg.Dump.Passes = file.Dump.Passes
	}
	if meta.IsDefined("trace", "level") {
		cfg.Trace.Level = file.Trace.Level
	}
	if meta.IsDefined("trace", "output") {
		cfg.Trace.Output = file.Trace.Output
	}
	if meta.IsDefined("trace", "format") {
		cfg.Trace.Format = file.Trace.Format
	}
	if meta.IsDefined("trace", "mode") {
		cfg.Trace.Mode = file.Trace.Mode
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that do not depend on the rest of the program.
func (c *Config) Validate() error {
	if _, err := c.PassIDs(); err != nil {
		return err
	}
	if _, err := ParsePasses(c.Dump.Passes); err != nil {
		return fmt.Errorf("[dump].passes: %w", err)
	}
	if c.Pipeline.MaxDiagnostics < 0 {
		return fmt.Errorf("[pipeline].max_diagnostics must not be negative, got %d", c.Pipeline.MaxDiagnostics)
	}
	if c.Pipeline.Jobs < 0 {
		return fmt.Errorf("[pipeline].jobs must not be negative, got %d", c.Pipeline.Jobs)
	}
	switch c.Dump.Format {
	case "", "text", "msgpack":
	default:
		return fmt.Errorf("[dump].format must be text or msgpack, got %q", c.Dump.Format)
	}
	return nil
}

// PassIDs resolves [pipeline].passes.
func (c *Config) PassIDs() ([]pass.ID, error) {
	ids, err := ParsePasses(c.Pipeline.Passes)
	if err != nil {
		return nil, fmt.Errorf("[pipeline].passes: %w", err)
	}
	return ids, nil
}

// ParsePasses resolves pass names, rejecting duplicates.
func ParsePasses(names []string) ([]pass.ID, error) {
	ids := make([]pass.ID, 0, len(names))
	for _, name := range names {
		id, err := pass.Parse(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownPass, name)
		}
		if slices.Contains(ids, id) {
			return nil, fmt.Errorf("pass %s listed twice", id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Find walks up from startDir to locate lumen.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
