package plugin

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const filterTimeout = 100 * time.Millisecond

// Filter decides which module ids the plugin handles.
// Patterns use JavaScript regex syntax (lookahead included), which is why
// they are compiled with regexp2 rather than the standard library.
type Filter struct {
	include []*regexp2.Regexp
	exclude []*regexp2.Regexp
}

// NewFilter compiles include and exclude patterns.
func NewFilter(include, exclude []string) (*Filter, error) {
	inc, err := compilePatterns(include)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	exc, err := compilePatterns(exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return &Filter{include: inc, exclude: exc}, nil
}

func compilePatterns(patterns []string) ([]*regexp2.Regexp, error) {
	out := make([]*regexp2.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp2.Compile(p, regexp2.ECMAScript)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		re.MatchTimeout = filterTimeout
		out = append(out, re)
	}
	return out, nil
}

// Match reports whether id passes the filter. The query part (?...) is
// ignored and Windows separators are normalized. With no include patterns
// every id is included.
func (f *Filter) Match(id string) bool {
	path, _, _ := strings.Cut(id, "?")
	if path == "" {
		return false
	}
	path = strings.ReplaceAll(path, `\`, "/")
	if len(f.include) > 0 && !anyMatch(f.include, path) {
		return false
	}
	return !anyMatch(f.exclude, path)
}

func anyMatch(res []*regexp2.Regexp, s string) bool {
	for _, re := range res {
		ok, err := re.MatchString(s)
		if err != nil {
			// таймаут считаем несовпадением
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
