package services

import (
	"context"
	"time"

	"github.com/local/studyai/api/codec"
	"github.com/local/studyai/api/genai"
	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
)

// Creativity settings for structured artifacts
const (
	structuredTemperature = 0.5
	structuredTopP        = 0.95
	structuredMaxTokens   = 8192
)

// Generators produce the five artifact kinds. Every method returns the
// artifact and whether it is a fallback. The only error is a
// ConfigurationError; service and parse failures degrade to the fallback.
type Generators struct {
	client  genai.Generator
	decoder codec.Decoder
	now     func() time.Time
}

func NewGenerators(client genai.Generator, decoder codec.Decoder) *Generators {
	now := decoder.Now
	if now == nil {
		now = time.Now
	}
	return &Generators{client: client, decoder: decoder, now: now}
}

func structuredRequest(prompt string) models.GenerationRequest {
	return models.GenerationRequest{
		Prompt:      prompt,
		JSONMode:    true,
		Temperature: structuredTemperature,
		MaxTokens:   structuredMaxTokens,
		TopP:        structuredTopP,
	}
}

// generate returns the raw response. Any failure other than a
// configuration error yields "" so the decoder falls back.
func (g *Generators) generate(ctx context.Context, kind models.Kind, prompt string) (string, error) {
	if g.client == nil {
		return "", &genai.ConfigurationError{Missing: "GEMINI_API_KEY"}
	}
	start := time.Now()
	raw, err := g.client.Generate(ctx, structuredRequest(prompt))
	if err != nil {
		if genai.IsConfiguration(err) {
			return "", err
		}
		log.Warn().Err(err).Str("kind", string(kind)).Msg("Generation failed, using fallback")
		return "", nil
	}
	log.Info().
		Str("kind", string(kind)).
		Int("response_chars", len(raw)).
		Dur("took", time.Since(start)).
		Msg("Generated artifact")
	return raw, nil
}
