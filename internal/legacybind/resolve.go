package legacybind

import (
	"regexp"
)

// assignmentRE matches `<name> = require('<path>')[.<member>]`.
// Whitespace and comments may sit between `=` and require, across lines.
// The character before the name must not continue an identifier or be a
// property access, so `other.name = require(...)` is not an assignment to name.
var assignmentRE = regexp.MustCompile(
	`(?:^|[^\w$.])(` + identPattern + `)\s*=` +
		`(?:\s|//[^\n]*|/\*[\s\S]*?\*/)*` +
		`require\(\s*(?:'([^'"\n]+)'|"([^'"\n]+)")\s*\)` +
		`(?:\.(` + identPattern + `))?`,
)

// Resolve looks up, in the original text, the require target of every name.
// The first matching assignment wins for each name; later reassignments are
// ignored. Names with no matching assignment are left out of the result.
func Resolve(original string, names []string) *Groups {
	groups := newGroups()
	if len(names) == 0 {
		return groups
	}
	first := firstAssignments(original, names)
	for _, name := range names {
		if target, ok := first[name]; ok {
			groups.add(target, name)
		}
	}
	return groups
}

func firstAssignments(text string, names []string) map[string]Target {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	found := make(map[string]Target, len(names))
	for _, m := range assignmentRE.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, ok := wanted[name]; !ok {
			continue
		}
		if _, done := found[name]; done {
			continue
		}
		path := m[2]
		if path == "" {
			path = m[3]
		}
		member := m[4]
		if member == "" {
			member = DefaultMember
		}
		found[name] = Target{ModulePath: path, Member: member}
		if len(found) == len(wanted) {
			break
		}
	}
	return found
}
