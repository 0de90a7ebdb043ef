package legacybind

import "strings"

// Synthesize renders one static re-export per binding: groups in order of
// first appearance, names within a group in declaration order.
// It returns "" when there is nothing to export.
func Synthesize(groups *Groups) string {
	if groups.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for _, g := range groups.All() {
		for _, name := range g.Names {
			writeReExport(&b, g.Target, name)
		}
	}
	return b.String()
}

func writeReExport(b *strings.Builder, target Target, name string) {
	b.WriteString("export { ")
	if target.IsDefault() {
		b.WriteString(DefaultMember)
	} else {
		b.WriteString(target.Member)
	}
	b.WriteString(" as ")
	b.WriteString(name)
	b.WriteString(" } from '")
	b.WriteString(target.ModulePath)
	b.WriteString("';\n")
}
