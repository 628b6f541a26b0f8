package services

import (
	"context"
	"strconv"

	"github.com/local/studyai/api/models"
	"github.com/samber/lo"
)

const (
	MinQuizQuestions = 1
	MaxQuizQuestions = 50
	MinFlashcards    = 1
	MaxFlashcards    = 100
)

var difficultyGuidance = map[models.Difficulty]string{
	models.DifficultyEasy:   "Test recall of definitions and basic facts with clearly wrong distractors.",
	models.DifficultyMedium: "Test understanding and application with plausible distractors.",
	models.DifficultyHard:   "Test analysis and edge cases with closely related distractors.",
}

// Quiz writes a quiz at the given difficulty. Points come from the
// difficulty tier, never from the model.
func (g *Generators) Quiz(ctx context.Context, material string, difficulty models.Difficulty, count int) (models.Quiz, bool, error) {
	difficulty = models.ParseDifficulty(string(difficulty))
	count = lo.Clamp(count, MinQuizQuestions, MaxQuizQuestions)

	raw, err := g.generate(ctx, models.KindQuiz, renderPrompt("quiz", map[string]string{
		"material":            ClipMaterial(material),
		"difficulty":          string(difficulty),
		"difficulty_guidance": difficultyGuidance[difficulty],
		"count":               strconv.Itoa(count),
		"time_limit":          strconv.Itoa(max(5, 2*count)),
	}))
	if err != nil {
		return models.Quiz{}, false, err
	}

	quiz, usedFallback := g.decoder.DecodeQuiz(raw)
	quiz.ApplyDifficulty(difficulty)
	return quiz, usedFallback, nil
}
