package plugin

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/evanw/esbuild/pkg/api"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"rnw/internal/legacybind"
)

// Name is the esbuild plugin name.
const Name = "rnw"

// loadFilter selects the files onLoad is asked about; Filter narrows it down.
const loadFilter = `\.[cm]?[jt]sx?$`

// componentsFilter selects the imports that may resolve to css-interop's runtime components.
const componentsFilter = `components(\.js)?$`

const (
	cssInteropPackage = "react-native-css-interop"
	cssInteropModule  = "runtime/components.js"
)

// resolveMarker tags the nested build.Resolve call so onResolve skips it.
type resolveMarker struct{}

type cacheKey struct {
	path string
	hash [32]byte
}

// Plugin loads react-native sources for esbuild: it applies the
// legacy-binding rewrite to reanimated's webUtils and treats .js as JSX.
// It is safe for concurrent use by esbuild's loader goroutines.
type Plugin struct {
	opts   Options
	filter *Filter
	logger *zap.Logger
	cache  *lru.Cache[cacheKey, string]

	loaded    atomic.Int64
	rewritten atomic.Int64
}

// New builds a plugin. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) (*Plugin, error) {
	opts = opts.WithDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	filter, err := NewFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("plugin: %w", err)
	}
	cache, err := lru.New[cacheKey, string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("plugin: %w", err)
	}
	return &Plugin{
		opts:   opts,
		filter: filter,
		logger: logger.Named(Name),
		cache:  cache,
	}, nil
}

// Options returns the options the plugin was built with, defaults applied.
func (p *Plugin) Options() Options {
	return p.opts
}

// Loaded returns how many files the plugin has loaded.
func (p *Plugin) Loaded() int64 { return p.loaded.Load() }

// Rewritten returns how many loaded files the legacy-binding rewrite changed.
func (p *Plugin) Rewritten() int64 { return p.rewritten.Load() }

// Handles reports whether the plugin loads the file at path itself.
func (p *Plugin) Handles(path string) bool {
	return p.filter.Match(path)
}

// TransformFile applies the legacy-binding rewrite to code loaded from path.
// The result is memoized by path and content.
func (p *Plugin) TransformFile(path, code string) (string, bool) {
	key := cacheKey{path: path, hash: sha256.Sum256([]byte(code))}
	if out, ok := p.cache.Get(key); ok {
		return out, out != code
	}
	out := legacybind.Transform(code, code, path, p.opts.Production)
	changed := out != code
	if changed {
		analysis := legacybind.Analyze(code)
		p.logger.Info("rewrote legacy bindings",
			zap.String("path", path),
			zap.Int("declared", len(analysis.Declarations)),
			zap.Int("resolved", analysis.Groups.Bindings()),
			zap.Strings("unresolved", analysis.Unresolved()),
		)
	}
	p.cache.Add(key, out)
	return out, changed
}

// ESBuild returns the esbuild plugin.
func (p *Plugin) ESBuild() api.Plugin {
	return api.Plugin{
		Name: Name,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: componentsFilter}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				return p.onResolve(build, args)
			})
			build.OnLoad(api.OnLoadOptions{Filter: loadFilter, Namespace: "file"}, p.onLoad)
		},
	}
}

// IsCSSInteropComponents reports whether path is react-native-css-interop's
// runtime/components.js. NativeWind relies on its import side effects.
func IsCSSInteropComponents(path string) bool {
	path = filepath.ToSlash(path)
	return strings.Contains(path, cssInteropPackage) && strings.HasSuffix(path, cssInteropModule)
}

// onResolve keeps css-interop's runtime components in the bundle even when
// the package declares "sideEffects": false.
func (p *Plugin) onResolve(build api.PluginBuild, args api.OnResolveArgs) (api.OnResolveResult, error) {
	if _, nested := args.PluginData.(resolveMarker); nested {
		return api.OnResolveResult{}, nil
	}
	res := build.Resolve(args.Path, api.ResolveOptions{
		Importer:   args.Importer,
		ResolveDir: args.ResolveDir,
		Kind:       args.Kind,
		Namespace:  args.Namespace,
		PluginData: resolveMarker{},
	})
	if len(res.Errors) > 0 || res.Namespace != "file" || !IsCSSInteropComponents(res.Path) {
		// пусть esbuild разрешит импорт сам
		return api.OnResolveResult{}, nil
	}
	p.logger.Debug("keeping side effects", zap.String("path", res.Path))
	return api.OnResolveResult{
		Path:        res.Path,
		Namespace:   res.Namespace,
		SideEffects: api.SideEffectsTrue,
		PluginName:  Name,
	}, nil
}

func (p *Plugin) onLoad(args api.OnLoadArgs) (api.OnLoadResult, error) {
	if !p.Handles(args.Path) {
		// пустой результат: esbuild загрузит файл сам
		return api.OnLoadResult{}, nil
	}
	// #nosec G304 -- path comes from esbuild's resolver
	data, err := os.ReadFile(args.Path)
	if err != nil {
		return api.OnLoadResult{}, fmt.Errorf("read %s: %w", args.Path, err)
	}
	out, changed := p.TransformFile(args.Path, string(data))
	p.loaded.Add(1)
	if changed {
		p.rewritten.Add(1)
	}
	return api.OnLoadResult{
		Contents:   &out,
		Loader:     LoaderFor(args.Path),
		ResolveDir: filepath.Dir(args.Path),
		PluginName: Name,
	}, nil
}

// LoaderFor picks the esbuild loader for a path. Plain .js is treated as JSX
// because react-native packages ship JSX in .js files.
func LoaderFor(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx":
		return api.LoaderJSX
	case ".ts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".json":
		return api.LoaderJSON
	default:
		return api.LoaderJS
	}
}
