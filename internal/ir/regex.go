package ir

import "strings"

// charactersToEscape are the regex metacharacters CQP interprets inside
// quoted values. Backslash goes first so later replacements do not double
// up.
const charactersToEscape = `\.|+?*[]()`

// EscapeRegex escapes every CQP regex metacharacter in s so the engine
// matches it as literal text.
func EscapeRegex(s string) string {
	for _, c := range charactersToEscape {
		s = strings.ReplaceAll(s, string(c), `\`+string(c))
	}
	return s
}
