package plugin

import (
	"fmt"
	"strings"
)

// JSXRuntime selects how JSX is compiled.
type JSXRuntime string

const (
	// JSXAutomatic imports the jsx runtime from JSXImportSource.
	JSXAutomatic JSXRuntime = "automatic"
	// JSXClassic compiles JSX to React.createElement calls.
	JSXClassic JSXRuntime = "classic"
)

// ParseJSXRuntime reads a runtime name; empty means automatic.
func ParseJSXRuntime(value string) (JSXRuntime, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "automatic":
		return JSXAutomatic, nil
	case "classic":
		return JSXClassic, nil
	default:
		return "", fmt.Errorf("invalid jsx runtime %q (expected automatic|classic)", value)
	}
}

const (
	// DefaultInclude matches the files the plugin loads itself.
	DefaultInclude = `\.[tj]sx?$`
	// DefaultExclude skips node_modules except react-native and expo packages.
	DefaultExclude = `/node_modules/(?!react-native|@react-native|expo|@expo)`
	// DefaultJSXImportSource is the package the automatic runtime imports from.
	DefaultJSXImportSource = "react"
	// DefaultCacheSize bounds the number of memoized transforms.
	DefaultCacheSize = 512
)

// Options configures the plugin and the build options derived from it.
type Options struct {
	Include         []string
	Exclude         []string
	JSXRuntime      JSXRuntime
	JSXImportSource string
	Production      bool
	// Define adds to (and overrides) the built-in defines.
	Define    map[string]string
	CacheSize int
}

// WithDefaults fills zero fields with their defaults.
func (o Options) WithDefaults() Options {
	if len(o.Include) == 0 {
		o.Include = []string{DefaultInclude}
	}
	if o.Exclude == nil {
		o.Exclude = []string{DefaultExclude}
	}
	if o.JSXRuntime == "" {
		o.JSXRuntime = JSXAutomatic
	}
	if o.JSXImportSource == "" {
		o.JSXImportSource = DefaultJSXImportSource
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	return o
}

// Mode returns "production" or "development".
func (o Options) Mode() string {
	if o.Production {
		return "production"
	}
	return "development"
}
