package plugin

import (
	"maps"
	"strconv"

	"github.com/evanw/esbuild/pkg/api"
)

// Extensions is the resolve order: web-specific files win over shared ones.
var Extensions = []string{
	".web.js",
	".web.ts",
	".web.tsx",
	".web.mjs",
	".web.cjs",
	".js",
	".jsx",
	".json",
	".ts",
	".tsx",
	".mjs",
	".cjs",
}

// Aliases maps react-native imports onto react-native-web.
var Aliases = map[string]string{
	"react-native": "react-native-web",
}

// Defines returns the global replacements react-native packages expect on the web.
// Values are esbuild define expressions (identifiers or JSON).
func Defines(opts Options) map[string]string {
	dev := strconv.FormatBool(!opts.Production)
	defs := map[string]string{
		"global":               "window",
		"DEV":                  dev,
		"__DEV__":              dev,
		"global.__x":           "{}",
		"_frameTimestamp":      "undefined",
		"_WORKLET":             "false",
		"process.env.NODE_ENV": strconv.Quote(opts.Mode()),
		"global.Error":         "Error",
	}
	maps.Copy(defs, opts.Define)
	return defs
}

// BuildRequest is what BuildOptions needs besides Options.
type BuildRequest struct {
	EntryPoints []string
	Outdir      string
	Write       bool
}

// BuildOptions translates Options into an esbuild configuration with p installed.
func BuildOptions(opts Options, req BuildRequest, p *Plugin) api.BuildOptions {
	opts = opts.WithDefaults()
	build := api.BuildOptions{
		EntryPoints:       req.EntryPoints,
		Outdir:            req.Outdir,
		Write:             req.Write,
		Bundle:            true,
		Format:            api.FormatESModule,
		Platform:          api.PlatformBrowser,
		ResolveExtensions: append([]string(nil), Extensions...),
		Alias:             maps.Clone(Aliases),
		Loader:            map[string]api.Loader{".js": api.LoaderJSX},
		Define:            Defines(opts),
		TreeShaking:       api.TreeShakingTrue,
		MinifySyntax:      opts.Production,
		MinifyWhitespace:  opts.Production,
		MinifyIdentifiers: opts.Production,
		Sourcemap:         api.SourceMapLinked,
		LogLevel:          api.LogLevelSilent,
	}
	switch opts.JSXRuntime {
	case JSXClassic:
		build.JSX = api.JSXTransform
	default:
		build.JSX = api.JSXAutomatic
		build.JSXImportSource = opts.JSXImportSource
		build.JSXDev = !opts.Production
	}
	if p != nil {
		build.Plugins = []api.Plugin{p.ESBuild()}
	}
	return build
}
