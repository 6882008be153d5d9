// Package encoding provides text normalization for names read from asset
// files.
package encoding

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns s in Unicode NFC with trailing NUL padding removed.
// Names compared against curve bindings must go through it on both sides.
func NormalizeName(s string) string {
	s = strings.TrimRight(s, "\x00")
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// NormalizePath normalizes a scene path and converts backslashes to
// forward slashes.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return NormalizeName(path)
}
