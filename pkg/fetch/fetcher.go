// Package fetch downloads the raw bytes of a remote document.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"doc-narrator/pkg/httpclient"
)

// Document is the raw response body of a fetched URL
type Document struct {
	URL         string
	ContentType string
	Body        []byte
}

// TransportError reports a failed fetch: either a non-2xx status or a network failure
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves raw bytes for a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

// HTTPFetcher performs a single blocking GET per call. It never retries.
type HTTPFetcher struct {
	client *httpclient.HTTPClient
}

// New creates an HTTPFetcher on top of the given client
func New(client *httpclient.HTTPClient) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

// Fetch downloads the document at url
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	log.Printf("Fetcher: GET %s", url)
	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if !statusOK(resp.StatusCode) {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	log.Printf("Fetcher: Got %d bytes (%s) from %s", len(body), resp.Header.Get("Content-Type"), url)
	return &Document{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)

func statusOK(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
