package env

import (
	"os"
	"regexp"
)

var referencePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Expand replaces ${VAR} and ${VAR:-default} with values from the process environment.
func Expand(s string) string {
	return ExpandWith(s, os.LookupEnv)
}

// ExpandWith expands references using lookup. The default applies when the
// variable is unset or empty.
func ExpandWith(s string, lookup func(string) (string, bool)) string {
	return referencePattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := referencePattern.FindStringSubmatch(ref)
		if v, ok := lookup(m[1]); ok && v != "" {
			return v
		}
		return m[2]
	})
}
