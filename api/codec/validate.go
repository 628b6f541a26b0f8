package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/local/studyai/api/models"
)

// Validate checks the invariants every artifact of its kind must satisfy.
// Successful decodes and fallbacks both pass.
func Validate(artifact any) error {
	switch a := artifact.(type) {
	case models.LectureNotes:
		return validateLectureNotes(a)
	case models.SlideDeck:
		return validateSlideDeck(a)
	case models.MindMap:
		return validateMindMap(a)
	case models.Quiz:
		return validateQuiz(a)
	case models.FlashcardSet:
		return validateFlashcards(a)
	default:
		return fmt.Errorf("unsupported artifact %T", artifact)
	}
}

func validateLectureNotes(n models.LectureNotes) error {
	var errs []error
	if strings.TrimSpace(n.Title) == "" {
		errs = append(errs, errors.New("title is empty"))
	}
	if n.WordCount != WordCount(n.DetailedNotes) {
		errs = append(errs, fmt.Errorf("wordCount %d does not match detailedNotes", n.WordCount))
	}
	if n.Timestamp.IsZero() {
		errs = append(errs, errors.New("timestamp not set"))
	}
	return errors.Join(errs...)
}

func validateSlideDeck(d models.SlideDeck) error {
	var errs []error
	if len(d.Slides) == 0 {
		errs = append(errs, errors.New("no slides"))
	}
	for i, s := range d.Slides {
		if s.SlideNumber < 1 {
			errs = append(errs, fmt.Errorf("slide %d: slideNumber %d < 1", i, s.SlideNumber))
		}
		if s.Type != models.SlideTitle && s.Type != models.SlideContent {
			errs = append(errs, fmt.Errorf("slide %d: unknown type %q", i, s.Type))
		}
	}
	return errors.Join(errs...)
}

func validateMindMap(m models.MindMap) error {
	var errs []error
	if strings.TrimSpace(m.CentralTopic) == "" {
		errs = append(errs, errors.New("central topic is empty"))
	}
	if len(m.Branches) == 0 {
		errs = append(errs, errors.New("no branches"))
	}
	ids := map[int]bool{0: true}
	for _, b := range m.Branches {
		if ids[b.ID] {
			errs = append(errs, fmt.Errorf("duplicate or reserved branch id %d", b.ID))
		}
		ids[b.ID] = true
		for _, st := range b.Subtopics {
			if ids[st.ID] {
				errs = append(errs, fmt.Errorf("duplicate or reserved subtopic id %d", st.ID))
			}
			ids[st.ID] = true
		}
	}
	if m.TotalNodes != m.CountNodes() {
		errs = append(errs, fmt.Errorf("totalNodes %d, counted %d", m.TotalNodes, m.CountNodes()))
	}
	return errors.Join(errs...)
}

func validateQuiz(q models.Quiz) error {
	var errs []error
	if q.ID == "" {
		errs = append(errs, errors.New("quiz id is empty"))
	}
	switch q.Difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		errs = append(errs, fmt.Errorf("unknown difficulty %q", q.Difficulty))
	}
	if len(q.Questions) == 0 {
		errs = append(errs, errors.New("no questions"))
	}
	ids := map[string]bool{}
	for _, question := range q.Questions {
		if question.ID == "" || ids[question.ID] {
			errs = append(errs, fmt.Errorf("missing or duplicate question id %q", question.ID))
		}
		ids[question.ID] = true
		if question.Points <= 0 {
			errs = append(errs, fmt.Errorf("question %s: points must be positive", question.ID))
		}
		if question.Body == nil {
			errs = append(errs, fmt.Errorf("question %s: no body", question.ID))
			continue
		}
		if opts, correct, ok := question.Choices(); ok && (correct < 0 || correct >= len(opts)) {
			errs = append(errs, fmt.Errorf("question %s: correct index %d outside %d options", question.ID, correct, len(opts)))
		}
	}
	return errors.Join(errs...)
}

func validateFlashcards(s models.FlashcardSet) error {
	var errs []error
	if len(s.Cards) == 0 {
		errs = append(errs, errors.New("no cards"))
	}
	ids := map[string]bool{}
	for _, c := range s.Cards {
		if c.ID == "" || ids[c.ID] {
			errs = append(errs, fmt.Errorf("missing or duplicate card id %q", c.ID))
		}
		ids[c.ID] = true
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			errs = append(errs, fmt.Errorf("card %s: empty side", c.ID))
		}
	}
	if s.TotalCards != len(s.Cards) {
		errs = append(errs, fmt.Errorf("totalCards %d, have %d", s.TotalCards, len(s.Cards)))
	}
	return errors.Join(errs...)
}
