// Package fields holds the per-field transforms applied to every raw report
// record: header-name normalization and best-effort numeric coercion.
package fields

import "strings"

// Normalize maps a raw header name to its canonical key: the name is
// lower-cased and every '.' becomes '_'. Nothing else is altered, so
// Normalize(Normalize(k)) == Normalize(k).
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), ".", "_")
}
