package lang

import (
	"errors"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// ErrUndetected is returned when the text gives no reliable language signal
var ErrUndetected = errors.New("could not detect language")

// Detector guesses the language of a text
type Detector interface {
	Detect(text string) (string, error)
}

// defaultLanguages keeps the lingua models small; these are the languages the
// translation and speech providers handle well
var defaultLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Catalan,
}

// LinguaDetector detects languages with lingua-go. The model is built on first use.
type LinguaDetector struct {
	languages []lingua.Language

	once     sync.Once
	detector lingua.LanguageDetector
}

// NewLinguaDetector creates a detector over the given languages, or a default set when none are given
func NewLinguaDetector(languages ...lingua.Language) *LinguaDetector {
	if len(languages) < 2 {
		languages = defaultLanguages
	}
	return &LinguaDetector{languages: languages}
}

// Detect returns the ISO 639-1 code of the most likely language
func (d *LinguaDetector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetected
	}

	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(d.languages...).
			Build()
	})

	detected, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", ErrUndetected
	}
	return strings.ToLower(detected.IsoCode639_1().String()), nil
}
