// Package config loads the rnw.toml project manifest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"rnw/internal/plugin"
)

// FileName is the manifest file looked up from the working directory upward.
const FileName = "rnw.toml"

// ErrInvalid marks manifest values that fail validation.
var ErrInvalid = errors.New("invalid configuration")

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Manifest is a loaded rnw.toml. Root is the directory holding it.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the rnw.toml layout.
type Config struct {
	Build  BuildConfig       `toml:"build"`
	JSX    JSXConfig         `toml:"jsx"`
	Filter FilterConfig      `toml:"filter"`
	Scan   ScanConfig        `toml:"scan"`
	Env    EnvConfig         `toml:"env"`
	Define map[string]string `toml:"define"`
}

type BuildConfig struct {
	Entry  string `toml:"entry"`
	Outdir string `toml:"outdir"`
	Mode   string `toml:"mode"`
}

type JSXConfig struct {
	Runtime      string `toml:"runtime"`
	ImportSource string `toml:"import_source"`
}

type FilterConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type ScanConfig struct {
	Root string `toml:"root"`
	Jobs int    `toml:"jobs"`
	// Cache is a pointer so an absent key keeps the default (on).
	Cache *bool `toml:"cache"`
}

type EnvConfig struct {
	// Prefixes selects the variables exposed as process.env defines.
	// nil means DefaultEnvPrefix; an explicit empty list exposes nothing.
	Prefixes []string `toml:"prefixes"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		Build: BuildConfig{Outdir: "dist", Mode: ModeProduction},
		JSX:   JSXConfig{Runtime: string(plugin.JSXAutomatic), ImportSource: plugin.DefaultJSXImportSource},
		Scan:  ScanConfig{Root: "node_modules"},
	}
}

// Find walks from startDir up to the filesystem root looking for rnw.toml.
func Find(startDir string) (string, bool, error) {
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

// Load finds and parses the manifest. A missing manifest is not an error:
// the returned Manifest carries Default() rooted at startDir and ok is false.
func Load(startDir string) (manifest *Manifest, ok bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		root, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return nil, false, absErr
		}
		return &Manifest{Root: root, Config: Default()}, false, nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadFile parses and validates one manifest; unset keys keep their defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Build.Mode {
	case ModeProduction, ModeDevelopment:
	default:
		return fmt.Errorf("%w: [build].mode %q (expected production|development)", ErrInvalid, c.Build.Mode)
	}
	if _, err := plugin.ParseJSXRuntime(c.JSX.Runtime); err != nil {
		return fmt.Errorf("%w: [jsx].runtime: %w", ErrInvalid, err)
	}
	if c.Scan.Jobs < 0 {
		return fmt.Errorf("%w: [scan].jobs must not be negative", ErrInvalid)
	}
	return nil
}

// Production reports whether the configured mode is production.
func (c Config) Production() bool {
	return c.Build.Mode != ModeDevelopment
}

// CacheEnabled reports whether scans may use the disk cache.
func (c Config) CacheEnabled() bool {
	return c.Scan.Cache == nil || *c.Scan.Cache
}

// PluginOptions converts the manifest into plugin options.
func (c Config) PluginOptions() plugin.Options {
	runtime, err := plugin.ParseJSXRuntime(c.JSX.Runtime)
	if err != nil {
		runtime = plugin.JSXAutomatic
	}
	return plugin.Options{
		Include:         c.Filter.Include,
		Exclude:         c.Filter.Exclude,
		JSXRuntime:      runtime,
		JSXImportSource: c.JSX.ImportSource,
		Production:      c.Production(),
		Define:          c.Define,
	}.WithDefaults()
}

// ResolvePath makes a manifest-relative path absolute.
func (m *Manifest) ResolvePath(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

// Entry returns the absolute [build].entry path.
func (m *Manifest) Entry() (string, error) {
	entry := strings.TrimSpace(m.Config.Build.Entry)
	if entry == "" {
		where := m.Path
		if where == "" {
			where = FileName
		}
		return "", fmt.Errorf("%s: %w: missing [build].entry", where, ErrInvalid)
	}
	return m.ResolvePath(entry), nil
}
