// Package strings provides string helpers shared by request parsing and the loader
package strings

import (
	std "strings"

	"golang.org/x/text/unicode/norm"
)

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustPrefix normalizes and asserts a root path like /series or /meta
// ensures a single leading slash and no trailing slash
// panics if the input is empty after trimming
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Label trims s and folds it to NFC so "Cork" typed on two keyboards compares equal
func Label(s string) string {
	return norm.NFC.String(std.TrimSpace(s))
}

// Labels applies Label to every entry and drops the blanks
func Labels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if v := Label(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SQLNull returns nil for blank s so optional columns store NULL
func SQLNull(s string) any {
	if std.TrimSpace(s) == "" {
		return nil
	}
	return s
}
