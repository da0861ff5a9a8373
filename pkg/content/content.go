// Package content turns fetched document bytes into a single text blob.
package content

import (
	"errors"
	"fmt"

	"doc-narrator/pkg/domain"
	"doc-narrator/pkg/fetch"
)

// ErrUnsupportedKind is returned by ForKind for content kinds without an extractor
var ErrUnsupportedKind = errors.New("unsupported content kind")

// FormatError reports document bytes that do not match the declared kind
type FormatError struct {
	Kind domain.ContentKind
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s document: %v", e.Kind, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Extractor converts a fetched document into text.
// startPage is 1-indexed and only meaningful for paged documents.
type Extractor interface {
	Extract(doc *fetch.Document, startPage int) (string, error)
	// Title returns the document title, or "" when it has none
	Title(doc *fetch.Document) string
}

// ForKind returns the extractor for the given content kind
func ForKind(kind domain.ContentKind) (Extractor, error) {
	switch kind {
	case domain.KindPDF:
		return NewPDFExtractor(), nil
	case domain.KindHTML:
		return NewHTMLExtractor(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}
