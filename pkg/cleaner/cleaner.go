// Package cleaner normalises extracted text before it is split into sentences.
package cleaner

import (
	"regexp"
	"strings"

	"doc-narrator/pkg/lang"
)

var (
	nonASCIIRun = regexp.MustCompile(`[^\x00-\x7F]+`)
	// DEL is included so non-Spanish output is printable ASCII only
	controlRun = regexp.MustCompile(`[\x00-\x1F\x7F]+`)
	// ASCII whitespace, the information separators and Unicode separators
	whitespaceRun = regexp.MustCompile(`[\t-\r\x1c-\x1f\x85\p{Z}]+`)
)

// Clean normalises whitespace and, unless the source language is Spanish, strips
// non-ASCII and control characters. Spanish text keeps its accented characters.
//
// The stripping runs first so the spaces it inserts are collapsed afterwards.
func Clean(text, sourceLanguage string) string {
	if !lang.IsSpanish(sourceLanguage) {
		text = nonASCIIRun.ReplaceAllString(text, " ")
		text = controlRun.ReplaceAllString(text, " ")
	}
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.Trim(text, " ")
}
