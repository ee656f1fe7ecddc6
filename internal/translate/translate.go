// Package translate normalises user prompts to English before they reach the image models.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vto/internal/providers/bedrock"
)

// Translated is the outcome of a translation. Degraded is set when the original
// text was returned because the translator failed.
type Translated struct {
	Text     string
	Degraded bool
}

// Translator never fails; on any error it hands back the input unchanged.
type Translator interface {
	ToEnglish(ctx context.Context, text string) Translated
}

// TextModel is the Converse capability the Bedrock translator needs.
type TextModel interface {
	ConverseText(ctx context.Context, req bedrock.ConverseRequest) (string, error)
}

// Passthrough returns text untouched.
type Passthrough struct{}

func (Passthrough) ToEnglish(_ context.Context, text string) Translated {
	return Translated{Text: text}
}

type Options struct {
	Model   TextModel
	ModelID string
	Logger  *zerolog.Logger
}

// Bedrock translates with a small text model over Converse.
type Bedrock struct {
	model   TextModel
	modelID string
	logger  zerolog.Logger
}

func NewBedrock(opts Options) *Bedrock {
	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		modelID = bedrock.TranslationModelID
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Bedrock{model: opts.Model, modelID: modelID, logger: logger}
}

func (b *Bedrock) ToEnglish(ctx context.Context, text string) Translated {
	if strings.TrimSpace(text) == "" || b.model == nil {
		return Translated{Text: text}
	}
	out, err := b.model.ConverseText(ctx, bedrock.ConverseRequest{
		ModelID:   b.modelID,
		Prompt:    buildPrompt(text),
		Inference: bedrock.TranslationInference,
	})
	if err != nil {
		b.logger.Warn().Err(err).Msg("translation failed, returning original text")
		return Translated{Text: text, Degraded: true}
	}
	translated := strings.TrimSpace(out)
	if translated == "" {
		b.logger.Warn().Msg("translation returned empty text, returning original text")
		return Translated{Text: text, Degraded: true}
	}
	b.logger.Debug().Str("original", text).Str("translated", translated).Msg("prompt translated")
	return Translated{Text: translated}
}

func buildPrompt(text string) string {
	return fmt.Sprintf("\nTranslate the following <text> to English. If the <text> is English, you must return the same <text>. Only return the translated text, nothing else\n<text>%s</text>", text)
}

var (
	_ Translator = Passthrough{}
	_ Translator = (*Bedrock)(nil)
)
