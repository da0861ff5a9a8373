package content

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"doc-narrator/pkg/domain"
	"doc-narrator/pkg/fetch"
)

// HTMLExtractor joins the text of every paragraph in document order.
// It keeps the decoded body of the last document so Extract and Title decode it once.
type HTMLExtractor struct {
	mu      sync.Mutex
	doc     *fetch.Document
	decoded string
}

// NewHTMLExtractor creates a new HTML extractor
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract returns the text of all <p> elements joined by single spaces.
// A page without paragraphs yields empty text, not an error. startPage is ignored.
func (e *HTMLExtractor) Extract(doc *fetch.Document, _ int) (string, error) {
	htmlContent, err := e.decode(doc)
	if err != nil {
		return "", err
	}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", &FormatError{Kind: domain.KindHTML, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	var paragraphs []string
	parsed.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, s.Text())
	})

	return strings.Join(paragraphs, " "), nil
}

// Title extracts the page title using readability first, then goquery fallbacks
func (e *HTMLExtractor) Title(doc *fetch.Document) string {
	htmlContent, err := e.decode(doc)
	if err != nil || strings.TrimSpace(htmlContent) == "" {
		return ""
	}
	title, err := ExtractTitle(htmlContent)
	if err != nil {
		return ""
	}
	return title
}

// decode returns the body as UTF-8 text, using the response charset
func (e *HTMLExtractor) decode(doc *fetch.Document) (string, error) {
	if doc == nil {
		return "", &FormatError{Kind: domain.KindHTML, Err: errNilDocument}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == doc {
		return e.decoded, nil
	}

	reader, err := charset.NewReader(bytes.NewReader(doc.Body), doc.ContentType)
	if err != nil {
		return "", &FormatError{Kind: domain.KindHTML, Err: fmt.Errorf("decoding charset: %w", err)}
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", &FormatError{Kind: domain.KindHTML, Err: fmt.Errorf("decoding charset: %w", err)}
	}

	e.doc, e.decoded = doc, buf.String()
	return e.decoded, nil
}
