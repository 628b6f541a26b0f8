package codec

import (
	"fmt"
	"time"

	"github.com/local/studyai/api/models"
)

// Fallback artifacts are minimal but valid. They never depend on prompts or
// network state; the only inputs are an optional title and the clock.

const FallbackQuizID = "fallback-quiz"

func FallbackLectureNotes(title string, now time.Time) models.LectureNotes {
	if title == "" {
		title = "Lecture Notes"
	}
	detailed := fmt.Sprintf("# %s\n\nNotes could not be generated for this material. Review the source directly and try generating again.", title)
	return models.LectureNotes{
		Title:              title,
		Summary:            "Notes are temporarily unavailable.",
		LearningObjectives: []string{"Review the source material"},
		Vocabulary:         []models.VocabularyEntry{},
		KeyPoints:          []string{"Generation failed; this is a placeholder."},
		DetailedNotes:      detailed,
		PracticeQuestions:  []models.PracticeQuestion{},
		StudyTips:          []string{"Try generating the notes again in a moment."},
		WordCount:          WordCount(detailed),
		Timestamp:          now.UTC().Round(0),
	}
}

func FallbackSlideDeck(title string) models.SlideDeck {
	if title == "" {
		title = "Presentation"
	}
	return models.SlideDeck{
		Title:       title,
		Theme:       "default",
		TotalSlides: 2,
		Slides: []models.Slide{
			{
				SlideNumber:   1,
				Type:          models.SlideTitle,
				Title:         title,
				Subtitle:      "Slides unavailable",
				Content:       []string{},
				AnimationType: "fade",
			},
			{
				SlideNumber:   2,
				Type:          models.SlideContent,
				Title:         "Content unavailable",
				Content:       []string{"The slides could not be generated.", "Add an outline and try again."},
				AnimationType: "fade",
			},
		},
		DesignTips: []string{},
	}
}

func FallbackMindMap(topic string) models.MindMap {
	if topic == "" {
		topic = "Main Topic"
	}
	branches := make([]models.Branch, models.MindMapBranches)
	for i := range branches {
		branches[i] = models.Branch{
			ID:        i + 1,
			Topic:     fmt.Sprintf("Subtopic %d", i+1),
			Emoji:     "📌",
			Color:     BranchPalette[i%len(BranchPalette)],
			Subtopics: []models.Subtopic{},
		}
	}
	m := models.MindMap{
		CentralTopic: topic,
		CentralEmoji: "🧠",
		Branches:     branches,
		Connections:  []models.MapConnection{},
	}
	m.TotalNodes = m.CountNodes()
	return m
}

// FallbackQuiz has exactly one placeholder question
func FallbackQuiz(d models.Difficulty, now time.Time) models.Quiz {
	return models.Quiz{
		ID:             FallbackQuizID,
		Title:          "Practice Quiz",
		Description:    "The quiz could not be generated. This placeholder keeps the session usable.",
		Difficulty:     d,
		TotalQuestions: 1,
		Questions: []models.Question{
			{
				ID:          "q1",
				Text:        "Quiz generation failed. Would you like to try again?",
				Hint:        "Pick the first option.",
				Explanation: "This placeholder question appears when generation fails.",
				Points:      d.Points(),
				Body: models.MultipleChoice{
					Options: []string{"Yes, try again", "No, review notes instead"},
					Correct: 0,
				},
			},
		},
		TimeLimit:    5,
		PassingScore: 70,
		CreatedAt:    now.UTC().Round(0),
	}
}

func FallbackFlashcards() models.FlashcardSet {
	return models.FlashcardSet{
		Title: "Flashcards",
		Cards: []models.Flashcard{
			{
				ID:         "card-1",
				Front:      "Flashcards unavailable",
				Back:       "The flashcards could not be generated. Try again in a moment.",
				Hint:       "Generation failed",
				Difficulty: models.DifficultyEasy,
				Category:   "General",
				MemoryTip:  "Retry generation later.",
				Example:    "",
			},
		},
		TotalCards: 1,
		Categories: []string{"General"},
	}
}

// Fallback returns the fallback artifact for kind
func Fallback(kind models.Kind, now time.Time) (any, error) {
	switch kind {
	case models.KindLectureNotes:
		return FallbackLectureNotes("", now), nil
	case models.KindSlideDeck:
		return FallbackSlideDeck(""), nil
	case models.KindMindMap:
		return FallbackMindMap(""), nil
	case models.KindQuiz:
		return FallbackQuiz(models.DifficultyMedium, now), nil
	case models.KindFlashcards:
		return FallbackFlashcards(), nil
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}
}
