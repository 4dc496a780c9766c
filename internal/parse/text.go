package parse

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	nonSlugRe  = regexp.MustCompile(`[^a-z0-9-]`)
	dashRunRe  = regexp.MustCompile(`-+`)
	filenameRe = regexp.MustCompile(`^[a-zA-Z0-9.-]{1,100}$`)
)

// maxFieldLen caps every free-text registration field.
const maxFieldLen = 255

// SanitizeString trims s, strips angle brackets and caps it at 255 characters.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if utf8.RuneCountInString(s) > maxFieldLen {
		s = string([]rune(s)[:maxFieldLen])
	}
	return s
}

// ProfileSlug builds the vehicle's profile URL segment, e.g. "ford-model-a-1234".
func ProfileSlug(make, model string, entryNumber int) string {
	s := strings.ToLower(fmt.Sprintf("%s-%s-%d", make, model, entryNumber))
	s = nonSlugRe.ReplaceAllString(s, "-")
	return dashRunRe.ReplaceAllString(s, "-")
}

// ValidFilename reports whether name is safe to use as an object name as-is.
func ValidFilename(name string) bool {
	return filenameRe.MatchString(name)
}

// Extension returns the lower-cased extension of name without the dot, or
// fallback when there is none.
func Extension(name, fallback string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return fallback
	}
	return ext
}
