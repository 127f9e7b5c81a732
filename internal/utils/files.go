package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9-_ ]`)

// SafeBaseName derives a download-safe base name from an uploaded filename:
// extension stripped, anything outside letters/digits/hyphen/underscore/space
// removed, trimmed, capped at 60 characters. The result is never empty.
func SafeBaseName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = unsafeChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(base)
	if len(base) > 60 {
		base = strings.TrimSpace(base[:60])
	}
	if base == "" {
		return "file"
	}
	return base
}

// ExtOf returns the lowercased extension of a filename without the dot.
func ExtOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
