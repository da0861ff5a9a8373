package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"doc-narrator/pkg/lang"
)

// ContentKind is the declared type of the remote document
type ContentKind string

const (
	KindPDF  ContentKind = "pdf"
	KindHTML ContentKind = "html"
)

// DefaultDestLanguage is used when a request does not name a destination language.
// A Spanish destination also means "read without translating".
const DefaultDestLanguage = "es"

// AutoLanguage asks the pipeline to detect the source language from the extracted text
const AutoLanguage = "auto"

// JobRequest describes one narration job. It is not modified once accepted.
type JobRequest struct {
	URL            string      `json:"url"`
	Kind           ContentKind `json:"content_type"`
	SourceLanguage string      `json:"content_language"`
	DestLanguage   string      `json:"dest_language,omitempty"`
	StartPage      int         `json:"start_page,omitempty"`
}

// WithDefaults returns a copy of the request with the optional fields filled in
func (r JobRequest) WithDefaults() JobRequest {
	r.URL = strings.TrimSpace(r.URL)
	r.Kind = ContentKind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
	r.SourceLanguage = strings.TrimSpace(r.SourceLanguage)
	r.DestLanguage = strings.TrimSpace(r.DestLanguage)
	if r.DestLanguage == "" {
		r.DestLanguage = DefaultDestLanguage
	}
	if r.StartPage == 0 {
		r.StartPage = 1
	}
	return r
}

// Validate checks the required fields. It returns a *ValidationError naming the first bad field.
func (r JobRequest) Validate() error {
	if r.URL == "" {
		return &ValidationError{Field: "url", Message: "is required"}
	}
	if r.Kind == "" {
		return &ValidationError{Field: "content_type", Message: "is required"}
	}
	if r.SourceLanguage == "" {
		return &ValidationError{Field: "content_language", Message: "is required"}
	}

	parsed, err := url.Parse(r.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("invalid URL %q (must be http or https)", r.URL)}
	}

	switch r.Kind {
	case KindPDF, KindHTML:
	default:
		return &ValidationError{Field: "content_type", Message: fmt.Sprintf("unsupported content type %q", r.Kind)}
	}

	if !strings.EqualFold(r.SourceLanguage, AutoLanguage) {
		if _, err := lang.Normalize(r.SourceLanguage); err != nil {
			return &ValidationError{Field: "content_language", Message: fmt.Sprintf("is not a language tag: %q", r.SourceLanguage)}
		}
	}
	if _, err := lang.Normalize(r.DestLanguage); err != nil {
		return &ValidationError{Field: "dest_language", Message: fmt.Sprintf("is not a language tag: %q", r.DestLanguage)}
	}

	if r.StartPage < 0 {
		return &ValidationError{Field: "start_page", Message: "must be 1 or greater"}
	}
	return nil
}

// Result is produced once at the end of a run and handed back to the caller
type Result struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	Title          string `json:"title,omitempty"`
	SourceLanguage string `json:"source_language"`
	Sentences      int    `json:"sentences"`
	Spoken         int    `json:"spoken"`
	Cancelled      bool   `json:"cancelled"`
}

// JobStatus tracks the pipeline state of the current job
type JobStatus string

const (
	JobStatusIdle       JobStatus = "idle"
	JobStatusExtracting JobStatus = "extracting"
	JobStatusCleaning   JobStatus = "cleaning"
	JobStatusSegmenting JobStatus = "segmenting"
	JobStatusNarrating  JobStatus = "narrating"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Active reports whether the status belongs to a run that has not finished
func (s JobStatus) Active() bool {
	switch s {
	case JobStatusExtracting, JobStatusCleaning, JobStatusSegmenting, JobStatusNarrating:
		return true
	default:
		return false
	}
}

// RunRecord is the metadata kept about a finished or running job.
// It deliberately holds no document or translated text.
type RunRecord struct {
	ID             string      `bson:"_id" json:"id"`
	URL            string      `bson:"url" json:"url"`
	Kind           ContentKind `bson:"kind" json:"content_type"`
	SourceLanguage string      `bson:"source_language" json:"source_language"`
	DestLanguage   string      `bson:"dest_language" json:"dest_language"`
	StartPage      int         `bson:"start_page" json:"start_page"`
	Status         JobStatus   `bson:"status" json:"status"`
	Error          string      `bson:"error,omitempty" json:"error,omitempty"`
	Sentences      int         `bson:"sentences" json:"sentences"`
	Spoken         int         `bson:"spoken" json:"spoken"`
	StartedAt      time.Time   `bson:"started_at" json:"started_at"`
	FinishedAt     time.Time   `bson:"finished_at,omitempty" json:"finished_at,omitempty"`
}
