package storage

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename returns a version of name that is safe to use as a flat
// file name: folded to ASCII, path separators dropped, whitespace collapsed
// to underscores. The result may be empty.
func SanitizeFilename(name string) string {
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(folder, name)
	if err != nil {
		return ""
	}

	ascii = strings.ReplaceAll(ascii, "/", " ")
	ascii = strings.Join(strings.Fields(ascii), "_")
	ascii = unsafeFilenameChars.ReplaceAllString(ascii, "")
	return strings.Trim(ascii, "._")
}

// Extension returns the lowercased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ExtensionSet is a case-insensitive set of allowed extensions.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds a set from extensions with or without a leading dot.
func NewExtensionSet(exts []string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

// Allows reports whether name carries one of the allowed extensions.
func (s ExtensionSet) Allows(name string) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}
	_, ok := s[ext]
	return ok
}
