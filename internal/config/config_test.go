package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rnw/internal/plugin"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestFindWalksUpward(t *testing.T) {
	root := t.TempDir()
	want := writeManifest(t, root, "[build]\nentry = \"src/main.tsx\"\n")
	nested := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("found %q, want %q", got, want)
	}
}

func TestLoadWithoutManifestUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	m, ok, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("no manifest expected in %s", dir)
	}
	if diff := cmp.Diff(Default(), m.Config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if _, err := m.Entry(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected missing entry error, got %v", err)
	}
}

func TestLoadFullManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[build]
entry = "src/main.tsx"
outdir = "public/build"
mode = "development"

[jsx]
runtime = "classic"

[filter]
include = ['\.[jt]sx?$']
exclude = []

[scan]
jobs = 4
cache = false

[define]
"process.env.API_URL" = '"https://example.test"'
`)
	m, ok, err := Load(root)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	cfg := m.Config
	if cfg.Production() {
		t.Fatalf("mode should be development")
	}
	if cfg.CacheEnabled() {
		t.Fatalf("cache should be disabled")
	}
	if cfg.Scan.Root != "node_modules" {
		t.Fatalf("unset scan root should keep default, got %q", cfg.Scan.Root)
	}
	entry, err := m.Entry()
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if want := filepath.Join(root, "src", "main.tsx"); entry != want {
		t.Fatalf("entry = %q, want %q", entry, want)
	}

	opts := cfg.PluginOptions()
	if opts.JSXRuntime != plugin.JSXClassic {
		t.Fatalf("runtime = %q", opts.JSXRuntime)
	}
	if opts.Production {
		t.Fatalf("plugin options should be development")
	}
	if len(opts.Exclude) != 0 {
		t.Fatalf("explicit empty exclude must be kept, got %v", opts.Exclude)
	}
	if got := opts.Define["process.env.API_URL"]; got != `"https://example.test"` {
		t.Fatalf("define = %q", got)
	}
}

func TestLoadFileRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "mode", body: "[build]\nmode = \"staging\"\n", want: "[build].mode"},
		{name: "runtime", body: "[jsx]\nruntime = \"preact\"\n", want: "[jsx].runtime"},
		{name: "jobs", body: "[scan]\njobs = -1\n", want: "[scan].jobs"},
		{name: "unknown key", body: "[build]\nentrypoint = \"x\"\n", want: "build.entrypoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.body)
			_, err := LoadFile(path)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) || !strings.Contains(err.Error(), path) {
				t.Fatalf("error %q should mention %q and the path", err, tt.want)
			}
		})
	}
}

func TestLoadFileReportsSyntaxErrors(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[build\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "failed to parse TOML") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
