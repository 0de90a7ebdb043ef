package legacybind

// Analysis describes what the rewriter found in a file's original text.
type Analysis struct {
	Declarations []Declaration
	Groups       *Groups
}

// Declared returns the declared names in order.
func (a Analysis) Declared() []string {
	names := make([]string, len(a.Declarations))
	for i, d := range a.Declarations {
		names[i] = d.Name
	}
	return names
}

// Unresolved returns the declared names that have no require target.
func (a Analysis) Unresolved() []string {
	var out []string
	for _, d := range a.Declarations {
		if _, ok := a.Groups.Lookup(d.Name); !ok {
			out = append(out, d.Name)
		}
	}
	return out
}

// Analyze extracts the declarations of original and resolves their targets.
func Analyze(original string) Analysis {
	decls := Declarations(original)
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	return Analysis{
		Declarations: decls,
		Groups:       Resolve(original, names),
	}
}

// Transform rewrites candidate, the file text as produced by earlier pipeline
// stages, using original, the untouched file text, to resolve require targets.
//
// candidate comes back unchanged when the file is not eligible or declares
// nothing. Otherwise the guarded blocks and declarations are erased from
// candidate, and the re-exports, if any, are appended after a line break.
func Transform(candidate, original, fileID string, production bool) string {
	if !Eligible(fileID, original, production) {
		return candidate
	}
	analysis := Analyze(original)
	if len(analysis.Declarations) == 0 {
		return candidate
	}
	erased := Erase(candidate)
	exports := Synthesize(analysis.Groups)
	if exports == "" {
		return erased
	}
	return erased + "\n" + exports
}
