package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// BranchPalette colors branches the model left uncolored
var BranchPalette = []string{"#6366F1", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#06B6D4", "#EC4899"}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// WordCount counts whitespace-separated words
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func normalizeLectureNotes(n *models.LectureNotes, now time.Time) {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		n.Title = "Lecture Notes"
	}
	n.LearningObjectives = orEmpty(n.LearningObjectives)
	n.KeyPoints = orEmpty(n.KeyPoints)
	n.StudyTips = orEmpty(n.StudyTips)
	if n.Vocabulary == nil {
		n.Vocabulary = []models.VocabularyEntry{}
	}
	if n.PracticeQuestions == nil {
		n.PracticeQuestions = []models.PracticeQuestion{}
	}
	n.WordCount = WordCount(n.DetailedNotes)
	n.Timestamp = now
}

func normalizeSlideDeck(d *models.SlideDeck) error {
	if len(d.Slides) == 0 {
		return &ParseError{Kind: models.KindSlideDeck, Reason: "deck has no slides"}
	}
	for i := range d.Slides {
		s := &d.Slides[i]
		if s.SlideNumber < 1 {
			s.SlideNumber = i + 1
		}
		if s.Type != models.SlideTitle && s.Type != models.SlideContent {
			s.Type = models.SlideContent
		}
		s.Content = orEmpty(s.Content)
	}
	if strings.TrimSpace(d.Title) == "" {
		d.Title = lo.Ternary(d.Slides[0].Title != "", d.Slides[0].Title, "Presentation")
	}
	if d.TotalSlides <= 0 {
		d.TotalSlides = len(d.Slides)
	}
	d.DesignTips = orEmpty(d.DesignTips)
	return nil
}

func normalizeMindMap(m *models.MindMap) error {
	m.CentralTopic = strings.TrimSpace(m.CentralTopic)
	if m.CentralTopic == "" {
		return &ParseError{Kind: models.KindMindMap, Reason: "empty central topic"}
	}
	if len(m.Branches) == 0 {
		return &ParseError{Kind: models.KindMindMap, Reason: "mind map has no branches"}
	}

	if !uniqueIDs(m) {
		renumberMindMap(m)
		// old references are ambiguous once ids move
		m.Connections = nil
	}

	known := map[int]bool{}
	for i := range m.Branches {
		b := &m.Branches[i]
		known[b.ID] = true
		if b.Color == "" {
			b.Color = BranchPalette[i%len(BranchPalette)]
		}
		if b.Subtopics == nil {
			b.Subtopics = []models.Subtopic{}
		}
		for j := range b.Subtopics {
			st := &b.Subtopics[j]
			known[st.ID] = true
			st.Items = orEmpty(st.Items)
			st.Connections = orEmpty(st.Connections)
		}
	}
	m.Connections = lo.Filter(m.Connections, func(c models.MapConnection, _ int) bool {
		return known[c.From] && known[c.To] && c.From != c.To
	})
	if m.Connections == nil {
		m.Connections = []models.MapConnection{}
	}
	m.TotalNodes = m.CountNodes()
	return nil
}

// uniqueIDs reports whether every branch and subtopic id is positive and
// distinct across the whole map. Layout shares one id space with the
// central node at 0.
func uniqueIDs(m *models.MindMap) bool {
	seen := map[int]bool{}
	for _, b := range m.Branches {
		if b.ID <= 0 || seen[b.ID] {
			return false
		}
		seen[b.ID] = true
		for _, st := range b.Subtopics {
			if st.ID <= 0 || seen[st.ID] {
				return false
			}
			seen[st.ID] = true
		}
	}
	return true
}

// renumberMindMap gives branches 1..N and subtopics a map-wide sequence after them
func renumberMindMap(m *models.MindMap) {
	next := len(m.Branches) + 1
	for i := range m.Branches {
		m.Branches[i].ID = i + 1
		for j := range m.Branches[i].Subtopics {
			m.Branches[i].Subtopics[j].ID = next
			next++
		}
	}
}

func buildQuiz(w quizWire, now time.Time, newID func() string) (models.Quiz, error) {
	q := models.Quiz{
		ID:           strings.TrimSpace(w.ID),
		Title:        strings.TrimSpace(w.Title),
		Description:  w.Description,
		Difficulty:   models.ParseDifficulty(w.Difficulty),
		TimeLimit:    w.TimeLimit,
		PassingScore: w.PassingScore,
		CreatedAt:    now,
	}
	if q.ID == "" {
		q.ID = newID()
	}
	if q.Title == "" {
		q.Title = "Quiz"
	}

	seen := map[string]bool{}
	for i, raw := range w.Questions {
		var question models.Question
		if err := json.Unmarshal(raw, &question); err != nil {
			log.Debug().Err(err).Int("index", i).Msg("Dropping invalid quiz question")
			continue
		}
		question.ID = strings.TrimSpace(question.ID)
		if question.ID == "" || seen[question.ID] {
			question.ID = uniqueQuestionID(i+1, seen)
		}
		seen[question.ID] = true
		if question.Points <= 0 {
			question.Points = q.Difficulty.Points()
		}
		q.Questions = append(q.Questions, question)
	}
	if len(q.Questions) == 0 {
		return q, &ParseError{Kind: models.KindQuiz, Reason: "no valid questions"}
	}

	q.TotalQuestions = len(q.Questions)
	if q.TimeLimit <= 0 {
		q.TimeLimit = max(5, 2*len(q.Questions))
	}
	if q.PassingScore <= 0 || q.PassingScore > 100 {
		q.PassingScore = 70
	}
	return q, nil
}

func uniqueQuestionID(n int, seen map[string]bool) string {
	id := fmt.Sprintf("q%d", n)
	for suffix := 2; seen[id]; suffix++ {
		id = fmt.Sprintf("q%d-%d", n, suffix)
	}
	return id
}

func normalizeFlashcards(set *models.FlashcardSet) error {
	cards := lo.Filter(set.Cards, func(c models.Flashcard, _ int) bool {
		return strings.TrimSpace(c.Front) != "" && strings.TrimSpace(c.Back) != ""
	})
	if len(cards) == 0 {
		return &ParseError{Kind: models.KindFlashcards, Reason: "no usable cards"}
	}

	seen := map[string]bool{}
	for i := range cards {
		c := &cards[i]
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" || seen[c.ID] {
			c.ID = fmt.Sprintf("card-%d", i+1)
			for suffix := 2; seen[c.ID]; suffix++ {
				c.ID = fmt.Sprintf("card-%d-%d", i+1, suffix)
			}
		}
		seen[c.ID] = true
		c.Difficulty = models.ParseDifficulty(string(c.Difficulty))
		if strings.TrimSpace(c.Category) == "" {
			c.Category = "General"
		}
	}
	set.Cards = cards
	set.TotalCards = len(cards)
	if strings.TrimSpace(set.Title) == "" {
		set.Title = "Flashcards"
	}
	if len(set.Categories) == 0 {
		set.Categories = lo.Uniq(lo.Map(cards, func(c models.Flashcard, _ int) string { return c.Category }))
	}
	return nil
}
