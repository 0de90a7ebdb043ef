package legacybind

import "rnw/internal/source"

// DefaultMember marks a target that takes the module's default value.
const DefaultMember = "default"

// Declaration is one `export let <name>;` statement.
type Declaration struct {
	Name string
	Span source.Span
}

// Target is the value a binding really refers to.
type Target struct {
	ModulePath string
	Member     string // DefaultMember for the default value
}

// IsDefault reports whether the target is the module's default value.
func (t Target) IsDefault() bool {
	return t.Member == DefaultMember
}

// Group lists the exported names that resolve to the same target,
// in the order they were declared.
type Group struct {
	Target Target
	Names  []string
}

// Groups keeps import groups in order of first appearance.
type Groups struct {
	order []Target
	names map[Target][]string
}

func newGroups() *Groups {
	return &Groups{names: make(map[Target][]string)}
}

func (g *Groups) add(target Target, name string) {
	if _, ok := g.names[target]; !ok {
		g.order = append(g.order, target)
	}
	g.names[target] = append(g.names[target], name)
}

// Len returns the number of distinct targets.
func (g *Groups) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Bindings returns the total number of names across all groups.
func (g *Groups) Bindings() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, names := range g.names {
		n += len(names)
	}
	return n
}

// All returns a copy of the groups in first-appearance order.
func (g *Groups) All() []Group {
	if g == nil {
		return nil
	}
	out := make([]Group, 0, len(g.order))
	for _, target := range g.order {
		out = append(out, Group{
			Target: target,
			Names:  append([]string(nil), g.names[target]...),
		})
	}
	return out
}

// Lookup returns the target a name resolved to.
func (g *Groups) Lookup(name string) (Target, bool) {
	if g == nil {
		return Target{}, false
	}
	for _, target := range g.order {
		for _, n := range g.names[target] {
			if n == name {
				return target, true
			}
		}
	}
	return Target{}, false
}
