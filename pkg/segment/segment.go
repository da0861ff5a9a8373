// Package segment splits cleaned text into sentences with the Punkt algorithm.
package segment

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/data"
	"github.com/neurosnap/sentences/english"

	"doc-narrator/pkg/lang"
)

// Segmenter splits text into an ordered sequence of sentences
type Segmenter interface {
	Segment(text, language string) []string
}

// trainingData maps base languages to the Punkt models bundled with the sentences package
var trainingData = map[string]string{
	"cs": "czech",
	"da": "danish",
	"de": "german",
	"el": "greek",
	"es": "spanish",
	"et": "estonian",
	"fi": "finnish",
	"fr": "french",
	"it": "italian",
	"nl": "dutch",
	"no": "norwegian",
	"pl": "polish",
	"pt": "portuguese",
	"sl": "slovene",
	"sv": "swedish",
	"tr": "turkish",
}

// PunktSegmenter caches one tokenizer per language. English is used for unknown languages.
type PunktSegmenter struct {
	mu         sync.Mutex
	tokenizers map[string]*sentences.DefaultSentenceTokenizer
}

// NewPunktSegmenter creates a segmenter with an empty tokenizer cache
func NewPunktSegmenter() *PunktSegmenter {
	return &PunktSegmenter{
		tokenizers: make(map[string]*sentences.DefaultSentenceTokenizer),
	}
}

// Segment returns the trimmed, non-empty sentences of text in order
func (s *PunktSegmenter) Segment(text, language string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tokenizer := s.tokenizer(lang.Base(language))

	var out []string
	for _, sentence := range tokenizer.Tokenize(text) {
		if trimmed := strings.TrimSpace(sentence.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// tokenizer returns the cached tokenizer for a base language, building it on first use
func (s *PunktSegmenter) tokenizer(base string) *sentences.DefaultSentenceTokenizer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tokenizers[base]; ok {
		return t
	}

	t, err := newTokenizer(base)
	if err != nil {
		log.Printf("Segmenter: No model for %q (%v), using english", base, err)
		t = s.english()
	}
	s.tokenizers[base] = t
	return t
}

// english returns the english tokenizer; callers hold s.mu
func (s *PunktSegmenter) english() *sentences.DefaultSentenceTokenizer {
	if t, ok := s.tokenizers["en"]; ok {
		return t
	}
	t, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		// the english model is compiled into the sentences package
		panic(fmt.Sprintf("loading english sentence model: %v", err))
	}
	s.tokenizers["en"] = t
	return t
}

func newTokenizer(base string) (*sentences.DefaultSentenceTokenizer, error) {
	if base == "en" {
		return english.NewSentenceTokenizer(nil)
	}

	name, ok := trainingData[base]
	if !ok {
		return nil, fmt.Errorf("no bundled training data")
	}

	b, err := data.Asset("data/" + name + ".json")
	if err != nil {
		return nil, err
	}

	training, err := sentences.LoadTraining(b)
	if err != nil {
		return nil, fmt.Errorf("loading %s training data: %w", name, err)
	}
	return sentences.NewSentenceTokenizer(training), nil
}
