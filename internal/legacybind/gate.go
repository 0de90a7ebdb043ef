package legacybind

import "strings"

const (
	// PackageMarker and ModuleMarker together identify the webUtils module.
	PackageMarker = "node_modules/react-native-reanimated"
	ModuleMarker  = "ReanimatedModule/js-reanimated/webUtils"

	declarationToken = "export let"
	guardToken       = "try"
	requireToken     = "require"
)

// MatchesFile reports whether fileID names the known webUtils module.
// Windows separators are accepted.
func MatchesFile(fileID string) bool {
	id := strings.ReplaceAll(fileID, `\`, "/")
	return strings.Contains(id, PackageMarker) && strings.Contains(id, ModuleMarker)
}

// Eligible decides whether Transform should do any work for this file.
// It is an allow-list: production builds of the webUtils module whose
// original text carries the declaration, guard and require tokens.
func Eligible(fileID, original string, production bool) bool {
	if !production || !MatchesFile(fileID) {
		return false
	}
	return strings.Contains(original, declarationToken) &&
		strings.Contains(original, guardToken) &&
		strings.Contains(original, requireToken)
}
