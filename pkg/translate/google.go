package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"doc-narrator/pkg/lang"
)

const (
	ProviderGoogle = "google"

	defaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"
)

// GoogleTranslator calls the public translate_a "gtx" endpoint used by browser extensions
type GoogleTranslator struct {
	endpoint string
	client   *http.Client
}

// NewGoogleTranslator creates a translator against endpoint, or the public endpoint when empty
func NewGoogleTranslator(endpoint string, client *http.Client) *GoogleTranslator {
	if endpoint == "" {
		endpoint = defaultGoogleEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	return &GoogleTranslator{endpoint: endpoint, client: client}
}

// Translate sends one sentence and joins the translated segments of the answer
func (g *GoogleTranslator) Translate(ctx context.Context, text, source, dest string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", googleLanguage(source))
	params.Set("tl", googleLanguage(dest))
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ServiceError{Provider: ProviderGoogle, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse reads the nested array answer:
// [[["translated","original",null,null,10],...],null,"en",...]
func parseGoogleResponse(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("google translate: decoding response: %w", err)
	}
	if len(raw) == 0 {
		return "", ErrEmptyTranslation
	}

	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("google translate: decoding segments: %w", err)
	}

	var b strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		if s, ok := segment[0].(string); ok {
			b.WriteString(s)
		}
	}

	if b.Len() == 0 {
		return "", ErrEmptyTranslation
	}
	return b.String(), nil
}

// googleLanguage maps a tag to the code the endpoint expects; "auto" is passed through
func googleLanguage(tag string) string {
	if tag == "" || tag == "auto" {
		return "auto"
	}
	switch strings.ToLower(tag) {
	case "zh-cn", "zh-tw":
		return tag
	}
	return lang.Base(tag)
}
