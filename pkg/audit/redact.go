package audit

import (
	"net/http"
	"strings"
)

// RedactHeaders flattens h into a name-to-value mapping suitable for an
// audit entry, dropping any header whose name appears in excludedNames.
// The comparison is case-insensitive. Multi-valued headers are joined into
// a single string per name, in the order the values were set.
//
// The caller decides whether headers are logged at all; this function
// always returns a non-nil mapping, possibly empty.
func RedactHeaders(h http.Header, excludedNames []string) map[string]string {
	excluded := make(map[string]struct{}, len(excludedNames))
	for _, name := range excludedNames {
		excluded[strings.ToLower(name)] = struct{}{}
	}

	out := make(map[string]string, len(h))
	for name, values := range h {
		if _, drop := excluded[strings.ToLower(name)]; drop {
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}
