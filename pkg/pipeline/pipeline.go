package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"doc-narrator/pkg/cleaner"
	"doc-narrator/pkg/content"
	"doc-narrator/pkg/domain"
	"doc-narrator/pkg/fetch"
	"doc-narrator/pkg/lang"
	"doc-narrator/pkg/narrate"
	"doc-narrator/pkg/segment"
	"doc-narrator/pkg/stop"
)

// ExtractorFactory returns the extractor for a content kind
type ExtractorFactory func(kind domain.ContentKind) (content.Extractor, error)

// SentenceNarrator translates and speaks one sentence
type SentenceNarrator interface {
	Narrate(ctx context.Context, sentence, source, dest string, flag *stop.Flag) narrate.Narration
}

// Stages holds the collaborators of a run
type Stages struct {
	Fetcher    fetch.Fetcher
	Extractors ExtractorFactory // defaults to content.ForKind
	Segmenter  segment.Segmenter
	Narrator   SentenceNarrator
	Detector   lang.Detector // only needed for "auto" source languages
}

// Hooks observe a run. Both are optional and are called on the run's goroutine.
type Hooks struct {
	OnStage    func(status domain.JobStatus)
	OnSentence func(index, total int, n narrate.Narration)
}

// Pipeline runs one document through extraction, cleaning, segmentation and narration
type Pipeline struct {
	stages Stages
}

// NewPipeline creates a new pipeline with the given stages
func NewPipeline(stages Stages) *Pipeline {
	if stages.Extractors == nil {
		stages.Extractors = content.ForKind
	}
	return &Pipeline{stages: stages}
}

// Run executes the pipeline without hooks
func (p *Pipeline) Run(ctx context.Context, req domain.JobRequest, flag *stop.Flag) (domain.Result, error) {
	return p.RunWithHooks(ctx, req, flag, Hooks{})
}

// RunWithHooks executes the pipeline:
// 1. Extracting: fetch the document and extract its text
// 2. Cleaning: normalise the text for the source language
// 3. Segmenting: split the cleaned text into sentences
// 4. Narrating: narrate each sentence in order until the flag is set
//
// A failure in any stage aborts the run with no result. Cancellation is not an
// error: the result holds whatever was assembled so far.
func (p *Pipeline) RunWithHooks(ctx context.Context, req domain.JobRequest, flag *stop.Flag, hooks Hooks) (domain.Result, error) {
	hooks.stage(domain.JobStatusExtracting)
	extracted, title, err := p.extract(ctx, req)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", domain.JobStatusExtracting, err)
	}

	source, err := p.resolveSource(req.SourceLanguage, extracted)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", domain.JobStatusExtracting, err)
	}

	hooks.stage(domain.JobStatusCleaning)
	cleaned := cleaner.Clean(extracted, source)

	hooks.stage(domain.JobStatusSegmenting)
	sentences := p.stages.Segmenter.Segment(cleaned, source)
	log.Printf("Pipeline: %d sentences in %s (source=%s, dest=%s)", len(sentences), req.URL, source, req.DestLanguage)

	hooks.stage(domain.JobStatusNarrating)
	result := domain.Result{
		OriginalText:   cleaned,
		Title:          title,
		SourceLanguage: source,
		Sentences:      len(sentences),
	}

	narrated := make([]string, 0, len(sentences))
	for i, sentence := range sentences {
		if flag.IsSet() {
			log.Printf("Pipeline: stopped before sentence %d/%d", i+1, len(sentences))
			result.Cancelled = true
			break
		}
		n := p.stages.Narrator.Narrate(ctx, sentence, source, req.DestLanguage, flag)
		if n.Spoken {
			result.Spoken++
		}
		narrated = append(narrated, n.Text)
		hooks.sentence(i, len(sentences), n)
	}

	result.TranslatedText = assemble(source, cleaned, narrated)
	return result, nil
}

// extract fetches the document and returns its text and title
func (p *Pipeline) extract(ctx context.Context, req domain.JobRequest) (string, string, error) {
	extractor, err := p.stages.Extractors(req.Kind)
	if err != nil {
		return "", "", err
	}

	log.Printf("Pipeline: Fetching %s document from %s", req.Kind, req.URL)
	doc, err := p.stages.Fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch document: %w", err)
	}

	text, err := extractor.Extract(doc, req.StartPage)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, extractor.Title(doc), nil
}

// resolveSource returns the source language, detecting it when the request asks for "auto"
func (p *Pipeline) resolveSource(requested, text string) (string, error) {
	if !strings.EqualFold(requested, domain.AutoLanguage) {
		return requested, nil
	}
	if p.stages.Detector == nil {
		return "", &domain.ValidationError{Field: "content_language", Message: "auto detection is not available"}
	}

	detected, err := p.stages.Detector.Detect(text)
	if err != nil {
		if errors.Is(err, lang.ErrUndetected) {
			return "", &domain.ValidationError{Field: "content_language", Message: "could not be detected from the document"}
		}
		return "", err
	}
	log.Printf("Pipeline: detected source language %q", detected)
	return detected, nil
}

// assemble builds the destination text. A Spanish source is returned as cleaned,
// whatever the narrator produced for it.
func assemble(source, cleaned string, narrated []string) string {
	if lang.IsSpanish(source) {
		return cleaned
	}
	return strings.Join(narrated, " ")
}

func (h Hooks) stage(status domain.JobStatus) {
	log.Printf("Pipeline: %s", status)
	if h.OnStage != nil {
		h.OnStage(status)
	}
}

func (h Hooks) sentence(index, total int, n narrate.Narration) {
	if h.OnSentence != nil {
		h.OnSentence(index, total, n)
	}
}
