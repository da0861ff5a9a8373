package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"doc-narrator/pkg/lang"
)

const ProviderLibre = "libre"

// LibreTranslator talks to a LibreTranslate server (POST /translate)
type LibreTranslator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// NewLibreTranslator creates a translator for the server at endpoint (e.g. "http://localhost:5000")
func NewLibreTranslator(endpoint, apiKey string, client *http.Client) *LibreTranslator {
	if client == nil {
		client = &http.Client{}
	}
	return &LibreTranslator{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		client:   client,
	}
}

// Translate sends one sentence to the server
func (l *LibreTranslator) Translate(ctx context.Context, text, source, dest string) (string, error) {
	payload, err := json.Marshal(libreRequest{
		Q:      text,
		Source: lang.Base(source),
		Target: lang.Base(dest),
		Format: "text",
		APIKey: l.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("libretranslate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var decoded libreResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode != http.StatusOK {
		return "", &ServiceError{Provider: ProviderLibre, StatusCode: resp.StatusCode, Message: decoded.Error}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("libretranslate: decoding response: %w", decodeErr)
	}
	if decoded.TranslatedText == "" {
		return "", ErrEmptyTranslation
	}
	return decoded.TranslatedText, nil
}
