package services

import (
	"context"
	"math"
	"strconv"

	"github.com/local/studyai/api/models"
	"github.com/samber/lo"
)

// Flashcards writes a deck and hints at a 30/50/20 easy/medium/hard split.
// The split is not enforced.
func (g *Generators) Flashcards(ctx context.Context, material string, count int) (models.FlashcardSet, bool, error) {
	count = lo.Clamp(count, MinFlashcards, MaxFlashcards)
	easy, medium, hard := DifficultySplit(count)

	raw, err := g.generate(ctx, models.KindFlashcards, renderPrompt("flashcards", map[string]string{
		"material": ClipMaterial(material),
		"count":    strconv.Itoa(count),
		"easy":     strconv.Itoa(easy),
		"medium":   strconv.Itoa(medium),
		"hard":     strconv.Itoa(hard),
	}))
	if err != nil {
		return models.FlashcardSet{}, false, err
	}

	set, usedFallback := g.decoder.DecodeFlashcards(raw)
	return set, usedFallback, nil
}

// DifficultySplit divides count into 30% easy, 20% hard and the rest medium
func DifficultySplit(count int) (easy, medium, hard int) {
	easy = int(math.Round(0.3 * float64(count)))
	hard = int(math.Round(0.2 * float64(count)))
	medium = count - easy - hard
	return easy, medium, hard
}
