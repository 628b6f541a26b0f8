package assessment

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/local/studyai/api/models"
	"github.com/samber/lo"
)

// State of a quiz session
type State string

const (
	StateInProgress State = "in_progress"
	StateSubmitted  State = "submitted"
	StateReviewed   State = "reviewed"
)

// Response is a learner's answer. Choice is set for multiple-choice and
// true-false questions, Text for short-answer and essay.
type Response struct {
	Choice *int   `json:"choice,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Result is computed once on submit
type Result struct {
	Score        float64 `json:"score"`
	Tier         Tier    `json:"tier"`
	Earned       int     `json:"earned_points"`
	Total        int     `json:"total_points"`
	Correct      int     `json:"correct"`
	Gradable     int     `json:"gradable"`
	Passed       bool    `json:"passed"`
	PassingScore int     `json:"passing_score"`
	Suggested    string  `json:"suggested_difficulty"`
}

// Feedback describes one question after review
type Feedback struct {
	QuestionID    string   `json:"question_id"`
	Type          string   `json:"type"`
	Gradable      bool     `json:"gradable"`
	Correct       bool     `json:"correct"`
	Earned        int      `json:"earned_points"`
	Points        int      `json:"points"`
	Response      Response `json:"response"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation"`
}

// QuizSession is the answer/submit/review state machine for one quiz
type QuizSession struct {
	mu      sync.Mutex
	quiz    models.Quiz
	index   map[string]int
	answers map[string]Response
	state   State
	result  *Result
}

// NewQuizSession starts a session in progress
func NewQuizSession(quiz models.Quiz) *QuizSession {
	s := &QuizSession{}
	s.load(quiz)
	return s
}

func (s *QuizSession) load(quiz models.Quiz) {
	s.quiz = quiz
	s.index = make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		s.index[q.ID] = i
	}
	s.answers = map[string]Response{}
	s.state = StateInProgress
	s.result = nil
}

func (s *QuizSession) Quiz() models.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz
}

func (s *QuizSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Answered is the number of questions with a recorded response
func (s *QuizSession) Answered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Result is nil until the quiz is submitted
func (s *QuizSession) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// Answer records or overwrites the response for one question
func (s *QuizSession) Answer(questionID string, r Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	i, ok := s.index[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if err := checkResponse(s.quiz.Questions[i], r); err != nil {
		return err
	}
	s.answers[questionID] = r
	return nil
}

func checkResponse(q models.Question, r Response) error {
	if options, _, ok := q.Choices(); ok {
		if r.Choice == nil {
			return fmt.Errorf("%w: question %s needs a choice", ErrInvalidResponse, q.ID)
		}
		if *r.Choice < 0 || *r.Choice >= len(options) {
			return fmt.Errorf("%w: choice %d outside %d options", ErrInvalidResponse, *r.Choice, len(options))
		}
		return nil
	}
	if r.Choice != nil {
		return fmt.Errorf("%w: question %s takes a text answer", ErrInvalidResponse, q.ID)
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: empty answer for question %s", ErrInvalidResponse, q.ID)
	}
	return nil
}

// Submit scores the quiz. With questions unanswered it returns
// IncompleteSubmissionError and leaves the session untouched.
func (s *QuizSession) Submit() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return Result{}, ErrNotInProgress
	}
	if remaining := len(s.quiz.Questions) - len(s.answers); remaining > 0 {
		return Result{}, &IncompleteSubmissionError{Remaining: remaining}
	}

	r := Score(s.quiz, s.answers)
	s.result = &r
	s.state = StateSubmitted
	return r, nil
}

// Score applies score = 100 * earned / total. Free-text questions count
// toward total but never earn points.
func Score(quiz models.Quiz, answers map[string]Response) Result {
	r := Result{PassingScore: quiz.PassingScore}
	for _, q := range quiz.Questions {
		r.Total += q.Points
		if !q.Type().Gradable() {
			continue
		}
		r.Gradable++
		if isCorrect(q, answers[q.ID]) {
			r.Correct++
			r.Earned += q.Points
		}
	}
	if r.Total > 0 {
		r.Score = 100 * float64(r.Earned) / float64(r.Total)
	}
	r.Tier = TierFor(r.Score)
	r.Suggested = string(r.Tier.Next())
	r.Passed = r.Score >= float64(quiz.PassingScore)
	return r
}

func isCorrect(q models.Question, r Response) bool {
	_, correct, ok := q.Choices()
	return ok && r.Choice != nil && *r.Choice == correct
}

// Review moves a submitted quiz to reviewed and explains every question.
// Calling it again on a reviewed quiz returns the same feedback.
func (s *QuizSession) Review() ([]Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSubmitted && s.state != StateReviewed {
		return nil, ErrNotSubmitted
	}
	s.state = StateReviewed

	return lo.Map(s.quiz.Questions, func(q models.Question, _ int) Feedback {
		r := s.answers[q.ID]
		f := Feedback{
			QuestionID:  q.ID,
			Type:        string(q.Type()),
			Gradable:    q.Type().Gradable(),
			Points:      q.Points,
			Response:    r,
			Explanation: q.Explanation,
		}
		switch b := q.Body.(type) {
		case models.MultipleChoice:
			f.CorrectAnswer = b.Options[b.Correct]
		case models.TrueFalse:
			f.CorrectAnswer = b.Options[b.Correct]
		case models.ShortAnswer:
			f.CorrectAnswer = b.Reference
		case models.Essay:
			f.CorrectAnswer = b.Reference
		}
		if isCorrect(q, r) {
			f.Correct = true
			f.Earned = q.Points
		}
		return f
	}), nil
}

// Reset discards every answer and starts over on quiz, which may be the
// same quiz, a shuffled copy, or a new one
func (s *QuizSession) Reset(quiz models.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(quiz)
}

// Shuffled returns a copy with questions and multiple-choice options
// reordered. Correct indexes follow their options.
func Shuffled(quiz models.Quiz, rng *rand.Rand) models.Quiz {
	out := quiz
	out.Questions = slices.Clone(quiz.Questions)
	rng.Shuffle(len(out.Questions), func(i, j int) {
		out.Questions[i], out.Questions[j] = out.Questions[j], out.Questions[i]
	})
	for i, q := range out.Questions {
		mc, ok := q.Body.(models.MultipleChoice)
		if !ok {
			continue
		}
		order := rng.Perm(len(mc.Options))
		options := make([]string, len(mc.Options))
		correct := 0
		for to, from := range order {
			options[to] = mc.Options[from]
			if from == mc.Correct {
				correct = to
			}
		}
		out.Questions[i].Body = models.MultipleChoice{Options: options, Correct: correct}
	}
	return out
}
