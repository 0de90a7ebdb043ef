package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rnw/internal/buildpipeline"
	"rnw/internal/cache"
	"rnw/internal/legacybind"
)

const webUtilsRel = "react-native-reanimated/lib/module/ReanimatedModule/js-reanimated/webUtils.web.js"

const webUtilsSource = `export let createReactDOMStyle;
export let createTransformValue;
export let createTextShadowValue;

try {
  createReactDOMStyle = require('react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle').default;
} catch (e) {}

try {
  createTransformValue = require('react-native-web/dist/exports/StyleSheet/preprocess').createTransformValue;
} catch (e) {}
`

// erased blocks and declarations leave their line breaks behind
var webUtilsRewritten = strings.Repeat("\n", 8) +
	"export { default as createReactDOMStyle } from 'react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle';\n" +
	"export { createTransformValue as createTransformValue } from 'react-native-web/dist/exports/StyleSheet/preprocess';\n"

func nodeModules(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "node_modules")
	files := map[string]string{
		webUtilsRel: webUtilsSource,
		// same content outside reanimated's webUtils: not a candidate
		"other/lib/webUtils.web.js": webUtilsSource,
		"react-native-reanimated/lib/module/index.js": "export * from './ReanimatedModule';\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestScanReportsBindingsWithoutWriting(t *testing.T) {
	root := nodeModules(t)
	sink := &buildpipeline.RecordingSink{}

	result, err := Scan(context.Background(), ScanRequest{Root: root, Production: true, Progress: sink})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 candidate, got %+v", result.Files)
	}
	file := result.Files[0]
	if file.Path != webUtilsRel {
		t.Fatalf("path = %q", file.Path)
	}
	if !file.Changed || file.Written || file.Cached {
		t.Fatalf("unexpected flags: %+v", file)
	}
	want := []Binding{
		{Name: "createReactDOMStyle", Line: 1, Target: &legacybind.Target{
			ModulePath: "react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle",
			Member:     legacybind.DefaultMember,
		}},
		{Name: "createTransformValue", Line: 2, Target: &legacybind.Target{
			ModulePath: "react-native-web/dist/exports/StyleSheet/preprocess",
			Member:     "createTransformValue",
		}},
		{Name: "createTextShadowValue", Line: 3},
	}
	if diff := cmp.Diff(want, file.Bindings); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"createTextShadowValue"}, file.Unresolved()); diff != "" {
		t.Fatalf("unresolved mismatch (-want +got):\n%s", diff)
	}
	if file.Resolved != 2 || result.Changed() != 1 {
		t.Fatalf("resolved=%d changed=%d", file.Resolved, result.Changed())
	}
	if got := readFile(t, filepath.Join(root, filepath.FromSlash(webUtilsRel))); got != webUtilsSource {
		t.Fatalf("dry scan must not touch the file")
	}
	if result.Err() != nil {
		t.Fatalf("unexpected file errors: %v", result.Err())
	}

	var sawRewrite bool
	for _, evt := range sink.Events() {
		if evt.File == webUtilsRel && evt.Stage == buildpipeline.StageRewrite && evt.Status == buildpipeline.StatusDone {
			sawRewrite = true
		}
	}
	if !sawRewrite {
		t.Fatalf("expected a rewrite done event, got %+v", sink.Events())
	}
}

func TestScanWritesAndCaches(t *testing.T) {
	root := nodeModules(t)
	c, err := cache.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	req := ScanRequest{Root: root, Production: true, Write: true, Jobs: 2, Cache: c}

	first, err := Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !first.Files[0].Written {
		t.Fatalf("expected file to be written: %+v", first.Files[0])
	}
	path := filepath.Join(root, filepath.FromSlash(webUtilsRel))
	if diff := cmp.Diff(webUtilsRewritten, readFile(t, path)); diff != "" {
		t.Fatalf("rewritten file mismatch (-want +got):\n%s", diff)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode = %v, want 0640", info.Mode().Perm())
	}
	if !first.Timings.Has(buildpipeline.StageWrite) {
		t.Fatalf("expected write timing")
	}

	second, err := Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	again := second.Files[0]
	if !again.Cached || again.Changed || again.Written {
		t.Fatalf("second scan should hit the cache and change nothing: %+v", again)
	}
	if diff := cmp.Diff(webUtilsRewritten, readFile(t, path)); diff != "" {
		t.Fatalf("file changed on the second scan (-want +got):\n%s", diff)
	}
}

func TestScanCachedDryRunKeepsResult(t *testing.T) {
	root := nodeModules(t)
	c, err := cache.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	req := ScanRequest{Root: root, Production: true, Cache: c}
	if _, err := Scan(context.Background(), req); err != nil {
		t.Fatalf("scan: %v", err)
	}
	result, err := Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	file := result.Files[0]
	if !file.Cached || !file.Changed || file.Resolved != 2 {
		t.Fatalf("unexpected cached result: %+v", file)
	}
	if diff := cmp.Diff([]string{"createReactDOMStyle", "createTransformValue", "createTextShadowValue"}, file.Declared); diff != "" {
		t.Fatalf("declared mismatch (-want +got):\n%s", diff)
	}
	// development mode has its own cache key
	dev, err := Scan(context.Background(), ScanRequest{Root: root, Cache: c})
	if err != nil {
		t.Fatalf("dev scan: %v", err)
	}
	if dev.Files[0].Cached || dev.Files[0].Changed {
		t.Fatalf("development scan must not reuse production results: %+v", dev.Files[0])
	}
}

func TestScanKeysCacheByPath(t *testing.T) {
	root := nodeModules(t)
	nestedRel := "x/node_modules/" + webUtilsRel
	nested := filepath.Join(root, filepath.FromSlash(nestedRel))
	if err := os.MkdirAll(filepath.Dir(nested), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(nested, []byte(webUtilsSource), 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := cache.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	req := ScanRequest{Root: root, Production: true, Jobs: 2, Cache: c}
	if _, err := Scan(context.Background(), req); err != nil {
		t.Fatalf("scan: %v", err)
	}

	for _, rel := range []string{webUtilsRel, nestedRel} {
		entry, ok, err := c.Get(cache.Key(rel, []byte(webUtilsSource), true))
		if err != nil || !ok {
			t.Fatalf("no cache entry for %s: ok=%v err=%v", rel, ok, err)
		}
		if entry.Path != rel {
			t.Errorf("entry for %s records path %s", rel, entry.Path)
		}
	}

	again, err := Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if len(again.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(again.Files))
	}
	for _, file := range again.Files {
		if !file.Cached || !file.Changed {
			t.Errorf("%s should come from the cache: %+v", file.Path, file)
		}
	}
}

func TestScanDevelopmentIsIdentity(t *testing.T) {
	root := nodeModules(t)
	result, err := Scan(context.Background(), ScanRequest{Root: root, Write: true})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Changed() != 0 || result.Files[0].Written {
		t.Fatalf("development scan must not rewrite: %+v", result.Files)
	}
	if got := readFile(t, filepath.Join(root, filepath.FromSlash(webUtilsRel))); got != webUtilsSource {
		t.Fatalf("file changed in development mode")
	}
}

func TestScanEmptyTree(t *testing.T) {
	result, err := Scan(context.Background(), ScanRequest{Root: t.TempDir(), Production: true})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(result.Files) != 0 {
		t.Fatalf("expected no files, got %+v", result.Files)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := Scan(context.Background(), ScanRequest{Root: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestScanCanceled(t *testing.T) {
	root := nodeModules(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, ScanRequest{Root: root, Production: true}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCandidates(t *testing.T) {
	root := nodeModules(t)
	got, err := Candidates(root)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if diff := cmp.Diff([]string{webUtilsRel}, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}
