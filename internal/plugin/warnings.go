package plugin

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// FilterWarnings drops warnings that third-party react-native code triggers
// on every build: module-level "use client"/"use server" directives and
// source maps that point at a missing original location.
func FilterWarnings(msgs []api.Message) []api.Message {
	out := make([]api.Message, 0, len(msgs))
	for _, msg := range msgs {
		if isDirectiveWarning(msg) || isSourceMapWarning(msg) {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func isDirectiveWarning(msg api.Message) bool {
	return strings.Contains(msg.Text, "use client") || strings.Contains(msg.Text, "use server")
}

func isSourceMapWarning(msg api.Message) bool {
	return strings.Contains(msg.Text, "resolve original location") &&
		(msg.Location == nil || (msg.Location.Line <= 1 && msg.Location.Column == 0))
}
