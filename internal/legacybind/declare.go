package legacybind

import (
	"regexp"

	"rnw/internal/source"
)

const identPattern = `[A-Za-z_$][\w$]*`

var declarationRE = regexp.MustCompile(`export[ \t]+let[ \t]+(` + identPattern + `)[ \t]*;`)

// Declarations returns every `export let <name>;` in text, in order,
// keeping only the first statement for each name.
func Declarations(text string) []Declaration {
	matches := declarationRE.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]Declaration, 0, len(matches))
	for _, m := range matches {
		name := text[m[2]:m[3]]
		if _, dup := seen[name]; dup {
			continue
		}
		span, err := source.SpanOf(0, m[0], m[1])
		if err != nil {
			// файл больше 4GiB: не переписываем
			return nil
		}
		seen[name] = struct{}{}
		out = append(out, Declaration{Name: name, Span: span})
	}
	return out
}

// DeclaredNames is Declarations without positions.
func DeclaredNames(text string) []string {
	decls := Declarations(text)
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	return names
}
