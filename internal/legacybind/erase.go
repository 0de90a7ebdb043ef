package legacybind

import (
	"regexp"

	"rnw/internal/source"
)

// guardedRequireRE matches a flat `try { ... require(...) ... } catch (...) { ... }`.
// Neither body may contain braces, so a try nested inside another try only
// matches the inner block.
var guardedRequireRE = regexp.MustCompile(`\btry\s*\{[^{}]*?require\([^)]+\)[^{}]*?\}\s*catch[^{}]*?\{[^{}]*?\}`)

// Erase removes the guarded require blocks and then every bare declaration.
// The rest of text is returned byte-for-byte in its original order.
func Erase(text string) string {
	return eraseMatches(eraseMatches(text, guardedRequireRE), declarationRE)
}

// GuardedBlocks returns the spans of the flat guarded require blocks in text.
func GuardedBlocks(text string) []source.Span {
	return matchSpans(text, guardedRequireRE)
}

func eraseMatches(text string, re *regexp.Regexp) string {
	spans := matchSpans(text, re)
	if len(spans) == 0 {
		return text
	}
	edits := make([]source.Edit, len(spans))
	for i, span := range spans {
		edits[i] = source.Deletion(span)
	}
	out, err := source.ApplyEdits([]byte(text), edits)
	if err != nil {
		// spans of one regexp scan never overlap
		return text
	}
	return string(out)
}

func matchSpans(text string, re *regexp.Regexp) []source.Span {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	spans := make([]source.Span, 0, len(locs))
	for _, loc := range locs {
		span, err := source.SpanOf(0, loc[0], loc[1])
		if err != nil {
			return nil
		}
		spans = append(spans, span)
	}
	return spans
}
