package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleTranslator_Translate(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{"sl": q.Get("sl"), "tl": q.Get("tl"), "q": q.Get("q"), "client": q.Get("client")}
		w.Write([]byte(`[[["Hola mundo. ","Hello world. ",null,null,10],["Adiós.","Goodbye.",null,null,10]],null,"en"]`))
	}))
	defer server.Close()

	got, err := NewGoogleTranslator(server.URL, server.Client()).Translate(context.Background(), "Hello world. Goodbye.", "en-US", "es")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Hola mundo. Adiós." {
		t.Errorf("Translate = %q, want %q", got, "Hola mundo. Adiós.")
	}
	if gotQuery["sl"] != "en" || gotQuery["tl"] != "es" || gotQuery["client"] != "gtx" {
		t.Errorf("unexpected query: %v", gotQuery)
	}
	if gotQuery["q"] != "Hello world. Goodbye." {
		t.Errorf("q = %q", gotQuery["q"])
	}
}

func TestGoogleTranslator_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewGoogleTranslator(server.URL, nil).Translate(context.Background(), "Hi.", "en", "fr")
	var sErr *ServiceError
	if !errors.As(err, &sErr) {
		t.Fatalf("error = %v (%T), want *ServiceError", err, err)
	}
	if sErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", sErr.StatusCode)
	}
}

func TestParseGoogleResponse_Empty(t *testing.T) {
	for _, body := range []string{`[]`, `[[]]`, `[[[null]]]`} {
		if _, err := parseGoogleResponse([]byte(body)); !errors.Is(err, ErrEmptyTranslation) {
			t.Errorf("parseGoogleResponse(%s) error = %v, want ErrEmptyTranslation", body, err)
		}
	}
	if _, err := parseGoogleResponse([]byte(`<html>captcha</html>`)); err == nil {
		t.Error("expected decode error for non-json body")
	}
}

func TestLibreTranslator_Translate(t *testing.T) {
	var got libreRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"translatedText":"Bonjour."}`))
	}))
	defer server.Close()

	text, err := NewLibreTranslator(server.URL+"/", "secret", nil).Translate(context.Background(), "Hello.", "en", "fr-CA")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if text != "Bonjour." {
		t.Errorf("Translate = %q", text)
	}
	want := libreRequest{Q: "Hello.", Source: "en", Target: "fr", Format: "text", APIKey: "secret"}
	if got != want {
		t.Errorf("request = %+v, want %+v", got, want)
	}
}

func TestLibreTranslator_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"fr-XX is not supported"}`))
	}))
	defer server.Close()

	_, err := NewLibreTranslator(server.URL, "", nil).Translate(context.Background(), "Hello.", "en", "xx")
	var sErr *ServiceError
	if !errors.As(err, &sErr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
	if sErr.Message != "fr-XX is not supported" {
		t.Errorf("message = %q", sErr.Message)
	}
}

type failingTranslator struct{ err error }

func (f failingTranslator) Translate(ctx context.Context, text, source, dest string) (string, error) {
	return "", f.err
}

func TestAttempt(t *testing.T) {
	boom := errors.New("boom")
	out := Attempt(context.Background(), failingTranslator{err: boom}, "x", "en", "fr")
	if out.OK() || !errors.Is(out.Err, boom) {
		t.Errorf("Attempt outcome = %+v, want failure wrapping boom", out)
	}
}

func TestNew(t *testing.T) {
	if tr, err := New("", "", "", nil); err != nil {
		t.Errorf("New(default) error: %v", err)
	} else if _, ok := tr.(*GoogleTranslator); !ok {
		t.Errorf("New(default) = %T, want *GoogleTranslator", tr)
	}
	if _, err := New(ProviderLibre, "", "", nil); err == nil {
		t.Error("libre without endpoint should fail")
	}
	if _, err := New("deepl", "", "", nil); err == nil {
		t.Error("unknown provider should fail")
	}
}
