// Package translate wraps remote text-translation services.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyTranslation is returned when a service answers without any translated text
var ErrEmptyTranslation = errors.New("translation service returned no text")

// Translator translates text from a source language into a destination language
type Translator interface {
	Translate(ctx context.Context, text, source, dest string) (string, error)
}

// ServiceError reports a non-2xx answer from a translation service
type ServiceError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status code: %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status code: %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Outcome is the result of one translation attempt. Err is set when the attempt failed.
type Outcome struct {
	Text string
	Err  error
}

// OK reports whether the attempt produced a translation
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Attempt runs one translation and captures any failure in the Outcome instead of returning it
func Attempt(ctx context.Context, t Translator, text, source, dest string) Outcome {
	translated, err := t.Translate(ctx, text, source, dest)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Text: translated}
}

// New builds the translator for a provider name
func New(provider, endpoint, apiKey string, client *http.Client) (Translator, error) {
	switch provider {
	case "", ProviderGoogle:
		return NewGoogleTranslator(endpoint, client), nil
	case ProviderLibre:
		if endpoint == "" {
			return nil, fmt.Errorf("libretranslate provider needs an endpoint")
		}
		return NewLibreTranslator(endpoint, apiKey, client), nil
	default:
		return nil, fmt.Errorf("unknown translation provider %q", provider)
	}
}
