// Package lang normalises language tags and detects the language of extracted text.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Spanish is the base language that needs no translation and keeps its accented characters
const Spanish = "es"

// Base returns the lower-case base language of a BCP 47 tag ("es-MX" -> "es").
// Unparseable tags are returned lower-cased and trimmed.
func Base(tag string) string {
	tag = strings.TrimSpace(tag)
	parsed, err := language.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	base, _ := parsed.Base()
	return base.String()
}

// IsSpanish reports whether the tag's base language is Spanish
func IsSpanish(tag string) bool {
	return Base(tag) == Spanish
}

// Normalize validates a tag and returns its canonical form ("EN-us" -> "en-US")
func Normalize(tag string) (string, error) {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "", fmt.Errorf("invalid language tag %q: %w", tag, err)
	}
	return parsed.String(), nil
}
