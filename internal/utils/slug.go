package utils

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stripDiacritics turns "Relatório" into "Relatorio".
func stripDiacritics(s string) string {
	out, _, err := transform.String(deaccent, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify derives a lowercase, hyphenated, URL-safe slug from a name.
// Runs of anything outside [a-z0-9] collapse into a single hyphen, so the
// result is safe to use as a storage path segment.
func Slugify(name string) string {
	s := strings.ToLower(stripDiacritics(name))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress leading hyphens
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NormalizeFileName slugifies the stem and lowercases the extension:
// "Relatório (2023).PDF" -> "relatorio-2023.pdf". Any path components in the
// input are discarded, which closes off path injection via filenames.
func NormalizeFileName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	slug := Slugify(stem)
	if slug == "" {
		slug = "file"
	}

	// Extension itself may carry hostile characters; keep it only when clean.
	if ext != "" {
		clean := Slugify(strings.TrimPrefix(ext, "."))
		if clean == "" {
			return slug
		}
		ext = "." + clean
	}
	return slug + ext
}
