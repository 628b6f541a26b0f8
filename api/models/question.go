package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
)

// QuestionType is the wire tag of a question variant
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeTrueFalse      QuestionType = "true-false"
	TypeShortAnswer    QuestionType = "short-answer"
	TypeEssay          QuestionType = "essay"
)

// Gradable reports whether answers of this type can be scored without a human
func (t QuestionType) Gradable() bool {
	return t == TypeMultipleChoice || t == TypeTrueFalse
}

// Question holds the fields every variant shares. Body carries the
// variant-specific part and is one of MultipleChoice, TrueFalse,
// ShortAnswer or Essay.
type Question struct {
	ID          string       `json:"id"`
	Text        string       `json:"question"`
	Hint        string       `json:"hint"`
	Explanation string       `json:"explanation"`
	Points      int          `json:"points"`
	Body        QuestionBody `json:"-"`
}

// QuestionBody is sealed to the four variants in this package
type QuestionBody interface {
	questionType() QuestionType
}

// MultipleChoice is graded by option index
type MultipleChoice struct {
	Options []string
	Correct int
}

// TrueFalse is graded by option index, options are normally ["True","False"]
type TrueFalse struct {
	Options []string
	Correct int
}

// ShortAnswer is never auto-graded; Reference is a model answer for review
type ShortAnswer struct {
	Reference string
}

// Essay is never auto-graded
type Essay struct {
	Reference string
}

func (MultipleChoice) questionType() QuestionType { return TypeMultipleChoice }
func (TrueFalse) questionType() QuestionType      { return TypeTrueFalse }
func (ShortAnswer) questionType() QuestionType    { return TypeShortAnswer }
func (Essay) questionType() QuestionType          { return TypeEssay }

// Type returns the variant tag, or "" when Body is unset
func (q Question) Type() QuestionType {
	if q.Body == nil {
		return ""
	}
	return q.Body.questionType()
}

// Choices returns the selectable options and the correct index for gradable
// variants. ok is false for free-text questions.
func (q Question) Choices() (options []string, correct int, ok bool) {
	switch b := q.Body.(type) {
	case MultipleChoice:
		return b.Options, b.Correct, true
	case TrueFalse:
		return b.Options, b.Correct, true
	default:
		return nil, 0, false
	}
}

type questionWire struct {
	ID            string          `json:"id"`
	Type          QuestionType    `json:"type"`
	Question      string          `json:"question"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
	Hint          string          `json:"hint"`
	Explanation   string          `json:"explanation"`
	Points        int             `json:"points"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	w := questionWire{
		ID:          q.ID,
		Type:        q.Type(),
		Question:    q.Text,
		Hint:        q.Hint,
		Explanation: q.Explanation,
		Points:      q.Points,
	}
	switch b := q.Body.(type) {
	case MultipleChoice:
		w.Options = b.Options
		w.CorrectAnswer = json.RawMessage(strconv.Itoa(b.Correct))
	case TrueFalse:
		w.Options = b.Options
		w.CorrectAnswer = json.RawMessage(strconv.Itoa(b.Correct))
	case ShortAnswer:
		w.CorrectAnswer = referenceJSON(b.Reference)
	case Essay:
		w.CorrectAnswer = referenceJSON(b.Reference)
	case nil:
		return nil, fmt.Errorf("question %q has no body", q.ID)
	}
	return json.Marshal(w)
}

func referenceJSON(ref string) json.RawMessage {
	if ref == "" {
		return nil
	}
	b, _ := json.Marshal(ref)
	return b
}

// UnmarshalJSON accepts the flat wire shape and rejects questions whose
// correct answer cannot be resolved to a valid option index.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	q.ID = w.ID
	q.Text = w.Question
	q.Hint = w.Hint
	q.Explanation = w.Explanation
	q.Points = w.Points

	switch w.Type {
	case TypeMultipleChoice:
		if len(w.Options) < 2 {
			return fmt.Errorf("question %q: multiple-choice needs at least 2 options", w.ID)
		}
		idx, err := resolveChoice(w.CorrectAnswer, w.Options)
		if err != nil {
			return fmt.Errorf("question %q: %w", w.ID, err)
		}
		q.Body = MultipleChoice{Options: w.Options, Correct: idx}
	case TypeTrueFalse:
		opts := w.Options
		if len(opts) == 0 {
			opts = []string{"True", "False"}
		}
		if len(opts) != 2 {
			return fmt.Errorf("question %q: true-false needs exactly 2 options", w.ID)
		}
		idx, err := resolveChoice(w.CorrectAnswer, opts)
		if err != nil {
			return fmt.Errorf("question %q: %w", w.ID, err)
		}
		q.Body = TrueFalse{Options: opts, Correct: idx}
	case TypeShortAnswer:
		q.Body = ShortAnswer{Reference: rawText(w.CorrectAnswer)}
	case TypeEssay:
		q.Body = Essay{Reference: rawText(w.CorrectAnswer)}
	default:
		return fmt.Errorf("question %q: unknown type %q", w.ID, w.Type)
	}
	return nil
}

// resolveChoice maps an int, a numeric string, an option's text or a
// true/false literal onto an index into options.
func resolveChoice(raw json.RawMessage, options []string) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing correctAnswer")
	}
	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		return checkIndex(idx, options)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return matchOption(strconv.FormatBool(b), options)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("correctAnswer must be an index or option text")
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return checkIndex(n, options)
	}
	return matchOption(s, options)
}

func checkIndex(idx int, options []string) (int, error) {
	if idx < 0 || idx >= len(options) {
		return 0, fmt.Errorf("correctAnswer %d out of range for %d options", idx, len(options))
	}
	return idx, nil
}

func matchOption(s string, options []string) (int, error) {
	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("correctAnswer %q matches no option", s)
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// JSONSchemaExtend describes the wire-only fields hidden behind Body
func (Question) JSONSchemaExtend(s *jsonschema.Schema) {
	s.Properties.Set("type", &jsonschema.Schema{
		Type: "string",
		Enum: []any{TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer, TypeEssay},
	})
	s.Properties.Set("options", &jsonschema.Schema{
		Type:  "array",
		Items: &jsonschema.Schema{Type: "string"},
	})
	s.Properties.Set("correctAnswer", &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{{Type: "integer"}, {Type: "string"}},
	})
	s.Required = append(s.Required, "type")
}
