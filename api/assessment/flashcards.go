package assessment

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/local/studyai/api/models"
)

// Tally is the live counter shown while drilling flashcards
type Tally struct {
	Correct  int `json:"correct"`
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// FlashcardSession records per-card correctness. There is no partial
// credit and no tier.
type FlashcardSession struct {
	mu      sync.Mutex
	set     models.FlashcardSet
	cards   map[string]models.Flashcard
	results map[string]bool
}

func NewFlashcardSession(set models.FlashcardSet) *FlashcardSession {
	s := &FlashcardSession{}
	s.load(set)
	return s
}

func (s *FlashcardSession) load(set models.FlashcardSet) {
	s.set = set
	s.cards = make(map[string]models.Flashcard, len(set.Cards))
	for _, c := range set.Cards {
		s.cards[c.ID] = c
	}
	s.results = map[string]bool{}
}

func (s *FlashcardSession) Set() models.FlashcardSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Record stores whether the learner got a card right, replacing any earlier mark
func (s *FlashcardSession) Record(cardID string, correct bool) (Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[cardID]; !ok {
		return Tally{}, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	s.results[cardID] = correct
	return s.tally(), nil
}

// Grade checks a typed answer against the back of the card and records it
func (s *FlashcardSession) Grade(cardID, typed string) (bool, Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[cardID]
	if !ok {
		return false, Tally{}, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	correct := MatchesAnswer(typed, card.Back)
	s.results[cardID] = correct
	return correct, s.tally(), nil
}

// MatchesAnswer accepts answers within a small edit distance of the
// expected text, scaled to its length, ignoring case and outer spaces
func MatchesAnswer(typed, expected string) bool {
	typed = strings.ToLower(strings.TrimSpace(typed))
	expected = strings.ToLower(strings.TrimSpace(expected))
	if typed == "" || expected == "" {
		return false
	}
	tolerance := max(1, utf8.RuneCountInString(expected)/5)
	return fuzzy.LevenshteinDistance(typed, expected) <= tolerance
}

func (s *FlashcardSession) Tally() Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally()
}

func (s *FlashcardSession) tally() Tally {
	t := Tally{Answered: len(s.results), Total: len(s.set.Cards)}
	for _, ok := range s.results {
		if ok {
			t.Correct++
		}
	}
	return t
}

// Reset clears every mark and loads set, which may be a new deck
func (s *FlashcardSession) Reset(set models.FlashcardSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(set)
}
