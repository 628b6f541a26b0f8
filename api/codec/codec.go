// Package codec decodes generation service output into typed artifacts and
// substitutes a deterministic fallback whenever the output breaks the contract.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// ParseError means the response could not be turned into a valid artifact.
// Callers never see it: decoding falls back instead.
type ParseError struct {
	Kind   models.Kind
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Kind, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// requiredKeys are the top-level keys each artifact must carry
var requiredKeys = map[models.Kind][]string{
	models.KindLectureNotes: {"title", "detailedNotes"},
	models.KindSlideDeck:    {"slides"},
	models.KindMindMap:      {"centralTopic", "branches"},
	models.KindQuiz:         {"questions"},
	models.KindFlashcards:   {"cards"},
}

// Decoder turns raw text into artifacts. Now and NewID feed derived fields.
type Decoder struct {
	Now   func() time.Time
	NewID func() string
}

// NewDecoder uses the wall clock and random UUIDs
func NewDecoder() Decoder {
	return Decoder{Now: time.Now, NewID: uuid.NewString}
}

func (d Decoder) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC().Round(0)
	}
	return d.Now().UTC().Round(0)
}

func (d Decoder) newID() string {
	if d.NewID == nil {
		return uuid.NewString()
	}
	return d.NewID()
}

// CheckShape verifies raw is a JSON object with the kind's required keys
func CheckShape(kind models.Kind, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &ParseError{Kind: kind, Reason: "empty response"}
	}
	if !gjson.Valid(raw) {
		return &ParseError{Kind: kind, Reason: "response is not valid JSON"}
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return &ParseError{Kind: kind, Reason: "response is not a JSON object"}
	}
	var missing []string
	for _, key := range requiredKeys[kind] {
		if !root.Get(key).Exists() {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &ParseError{Kind: kind, Reason: "missing keys " + strings.Join(missing, ", ")}
	}
	return nil
}

func unmarshalChecked(kind models.Kind, raw string, dst any) error {
	if err := CheckShape(kind, raw); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), dst); err != nil {
		return &ParseError{Kind: kind, Reason: "schema mismatch", Err: err}
	}
	return nil
}

// decode runs build and swaps in the fallback on any error or panic
func decode[T any](kind models.Kind, raw string, build func(string) (T, error), fallback func() T) (out T, usedFallback bool) {
	defer func() {
		if r := recover(); r != nil {
			logFallback(kind, &ParseError{Kind: kind, Reason: fmt.Sprintf("panic: %v", r)})
			out, usedFallback = fallback(), true
		}
	}()
	v, err := build(raw)
	if err != nil {
		logFallback(kind, err)
		return fallback(), true
	}
	return v, false
}

func logFallback(kind models.Kind, err error) {
	log.Warn().Err(err).Str("kind", string(kind)).Msg("Using fallback artifact")
}

// DecodeLectureNotes parses lecture notes and derives wordCount and timestamp
func (d Decoder) DecodeLectureNotes(raw string) (models.LectureNotes, bool) {
	now := d.now()
	return decode(models.KindLectureNotes, raw, func(raw string) (models.LectureNotes, error) {
		var notes models.LectureNotes
		if err := unmarshalChecked(models.KindLectureNotes, raw, &notes); err != nil {
			return notes, err
		}
		normalizeLectureNotes(&notes, now)
		return notes, nil
	}, func() models.LectureNotes { return FallbackLectureNotes("", now) })
}

// DecodeSlideDeck parses a slide deck. TotalSlides keeps the reported value.
func (d Decoder) DecodeSlideDeck(raw string) (models.SlideDeck, bool) {
	return decode(models.KindSlideDeck, raw, func(raw string) (models.SlideDeck, error) {
		var deck models.SlideDeck
		if err := unmarshalChecked(models.KindSlideDeck, raw, &deck); err != nil {
			return deck, err
		}
		if err := normalizeSlideDeck(&deck); err != nil {
			return deck, err
		}
		return deck, nil
	}, func() models.SlideDeck { return FallbackSlideDeck("") })
}

// DecodeMindMap parses a mind map and guarantees ids unique across branches and subtopics
func (d Decoder) DecodeMindMap(raw string) (models.MindMap, bool) {
	return decode(models.KindMindMap, raw, func(raw string) (models.MindMap, error) {
		var m models.MindMap
		if err := unmarshalChecked(models.KindMindMap, raw, &m); err != nil {
			return m, err
		}
		if err := normalizeMindMap(&m); err != nil {
			return m, err
		}
		return m, nil
	}, func() models.MindMap { return FallbackMindMap("") })
}

// quizWire defers question decoding so one bad question does not sink the quiz
type quizWire struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Difficulty   string            `json:"difficulty"`
	Questions    []json.RawMessage `json:"questions"`
	TimeLimit    int               `json:"timeLimit"`
	PassingScore int               `json:"passingScore"`
}

// DecodeQuiz parses a quiz, dropping questions that cannot be graded as typed
func (d Decoder) DecodeQuiz(raw string) (models.Quiz, bool) {
	now := d.now()
	return decode(models.KindQuiz, raw, func(raw string) (models.Quiz, error) {
		var w quizWire
		if err := unmarshalChecked(models.KindQuiz, raw, &w); err != nil {
			return models.Quiz{}, err
		}
		return buildQuiz(w, now, d.newID)
	}, func() models.Quiz { return FallbackQuiz(models.DifficultyMedium, now) })
}

// DecodeFlashcards parses a flashcard set
func (d Decoder) DecodeFlashcards(raw string) (models.FlashcardSet, bool) {
	return decode(models.KindFlashcards, raw, func(raw string) (models.FlashcardSet, error) {
		var set models.FlashcardSet
		if err := unmarshalChecked(models.KindFlashcards, raw, &set); err != nil {
			return set, err
		}
		if err := normalizeFlashcards(&set); err != nil {
			return set, err
		}
		return set, nil
	}, FallbackFlashcards)
}
