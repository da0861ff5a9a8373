package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"doc-narrator/pkg/domain"
	"doc-narrator/pkg/fetch"
)

var (
	errNilDocument     = errors.New("document is nil")
	errEmptyPDFContent = errors.New("pdf content is empty")
)

// pageMarker precedes the text of every extracted page. The page number is zero-indexed.
const pageMarker = "página: %d.\n"

// PDFExtractor extracts page-annotated text from PDF documents
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text of pages startPage..last, each preceded by its page marker.
// A startPage past the last page yields empty text.
func (e *PDFExtractor) Extract(doc *fetch.Document, startPage int) (text string, err error) {
	reader, err := openPDF(doc)
	if err != nil {
		return "", err
	}

	// The pdf package panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &FormatError{Kind: domain.KindPDF, Err: fmt.Errorf("reading pages: %v", r)}
		}
	}()

	if startPage < 1 {
		startPage = 1
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := startPage; i <= numPages; i++ {
		pageText, err := extractPageText(reader.Page(i))
		if err != nil {
			return "", &FormatError{Kind: domain.KindPDF, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		fmt.Fprintf(&buf, pageMarker, i-1)
		buf.WriteString(pageText)
	}

	return buf.String(), nil
}

// Title reads the Title entry of the document information dictionary
func (e *PDFExtractor) Title(doc *fetch.Document) (title string) {
	defer func() {
		if recover() != nil {
			title = ""
		}
	}()

	reader, err := openPDF(doc)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())
}

// openPDF parses the in-memory document, mapping every failure to a FormatError
func openPDF(doc *fetch.Document) (*pdf.Reader, error) {
	if doc == nil {
		return nil, &FormatError{Kind: domain.KindPDF, Err: errNilDocument}
	}
	if len(doc.Body) == 0 {
		return nil, &FormatError{Kind: domain.KindPDF, Err: errEmptyPDFContent}
	}

	reader, err := pdf.NewReader(bytes.NewReader(doc.Body), int64(len(doc.Body)))
	if err != nil {
		return nil, &FormatError{Kind: domain.KindPDF, Err: err}
	}
	return reader, nil
}

// extractPageText turns one page into plain text; pages without content give ""
func extractPageText(page pdf.Page) (string, error) {
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
