// Package csvx writes CSV lines by hand where exact output bytes matter
// (LF endings, no trailing newline control, quoting only when required).
package csvx

import "strings"

// Escape quotes a field when it contains a comma, quote, CR or LF. Inner quotes
// are doubled.
func Escape(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Line joins escaped fields with commas.
func Line(fields ...string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = Escape(f)
	}
	return strings.Join(out, ",")
}
