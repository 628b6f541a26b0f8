package services

import (
	"context"
	"strings"

	"github.com/local/studyai/api/codec"
	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
)

// Slides builds a deck from an outline. An empty outline returns the
// fallback deck without calling the service.
func (g *Generators) Slides(ctx context.Context, outline string) (models.SlideDeck, bool, error) {
	outline = strings.TrimSpace(outline)
	if outline == "" {
		log.Info().Msg("Empty outline, returning fallback deck")
		return codec.FallbackSlideDeck(""), true, nil
	}

	raw, err := g.generate(ctx, models.KindSlideDeck, renderPrompt("slides", map[string]string{
		"outline": ClipMaterial(outline),
	}))
	if err != nil {
		return models.SlideDeck{}, false, err
	}

	deck, usedFallback := g.decoder.DecodeSlideDeck(raw)
	if !usedFallback {
		applySlideTemplates(&deck)
		if deck.TotalSlides != deck.SlideCount() {
			log.Debug().
				Int("reported", deck.TotalSlides).
				Int("actual", deck.SlideCount()).
				Msg("Slide count differs from reported total")
		}
	}
	return deck, usedFallback, nil
}
