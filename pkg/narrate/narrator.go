// Package narrate turns one sentence into spoken output, translating it first when needed.
package narrate

import (
	"context"
	"fmt"
	"log"

	"doc-narrator/pkg/lang"
	"doc-narrator/pkg/speech"
	"doc-narrator/pkg/stop"
	"doc-narrator/pkg/translate"
)

const translationErrorFormat = "[Error translating sentence: %s]"

// Narration is what happened to one sentence
type Narration struct {
	// Text is the translated sentence, the original one, or the error placeholder
	Text string
	// Spoken is false when the flag was set before speaking or the synthesizer failed
	Spoken bool
	// TranslationErr is the absorbed translation failure, if any
	TranslationErr error
}

// Narrator translates and speaks sentences. It must be called from a single goroutine.
type Narrator struct {
	translator translate.Translator
	synth      speech.Synthesizer
}

// New creates a narrator
func New(translator translate.Translator, synth speech.Synthesizer) *Narrator {
	return &Narrator{
		translator: translator,
		synth:      synth,
	}
}

// Narrate translates the sentence into dest unless dest is Spanish, then speaks it
// unless the flag has been set in the meantime. It never fails: translation and
// speech errors are logged and reported in the returned Narration.
func (n *Narrator) Narrate(ctx context.Context, sentence, source, dest string, flag *stop.Flag) Narration {
	text := sentence
	voice := source
	var translationErr error

	if !lang.IsSpanish(dest) {
		outcome := translate.Attempt(ctx, n.translator, sentence, source, dest)
		if outcome.OK() {
			text = outcome.Text
			voice = dest
		} else {
			log.Printf("Narrator: error translating sentence %q: %v", sentence, outcome.Err)
			text = fmt.Sprintf(translationErrorFormat, sentence)
			translationErr = outcome.Err
		}
	}

	if flag.IsSet() {
		return Narration{Text: text, TranslationErr: translationErr}
	}

	log.Printf("Narrator: Reading: %s", text)
	if err := n.synth.Speak(ctx, text, voice); err != nil {
		log.Printf("Narrator: speech failed: %v", err)
		return Narration{Text: text, TranslationErr: translationErr}
	}
	return Narration{Text: text, Spoken: true, TranslationErr: translationErr}
}
