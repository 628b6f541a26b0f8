package models

import "fmt"

// GenerationRequest is a single call to the text generation service
type GenerationRequest struct {
	Prompt      string
	JSONMode    bool
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Validate rejects parameters outside the ranges the service accepts
func (r GenerationRequest) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("empty prompt")
	}
	if r.Temperature < 0 || r.Temperature > 1 {
		return fmt.Errorf("temperature %.2f out of range [0,1]", r.Temperature)
	}
	if r.TopP < 0 || r.TopP > 1 {
		return fmt.Errorf("topP %.2f out of range [0,1]", r.TopP)
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("maxTokens must be positive, got %d", r.MaxTokens)
	}
	return nil
}

// Kind identifies one of the generated artifact types
type Kind string

const (
	KindLectureNotes Kind = "lecture-notes"
	KindSlideDeck    Kind = "slides"
	KindMindMap      Kind = "mindmap"
	KindQuiz         Kind = "quiz"
	KindFlashcards   Kind = "flashcards"
)

// Kinds lists every artifact kind in a stable order
var Kinds = []Kind{KindLectureNotes, KindSlideDeck, KindMindMap, KindQuiz, KindFlashcards}

// ParseKind maps a path segment to a Kind
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Difficulty is shared by quizzes and flashcards
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes a difficulty label, defaulting to medium
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s)
	default:
		return DifficultyMedium
	}
}

// Points is the fixed per-question value for a difficulty tier
func (d Difficulty) Points() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyHard:
		return 20
	default:
		return 15
	}
}
