package assessment

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/local/studyai/api/models"
)

func choice(i int) Response { return Response{Choice: &i} }

func mc(id string, points, correct int) models.Question {
	return models.Question{
		ID:     id,
		Text:   "Question " + id,
		Points: points,
		Body:   models.MultipleChoice{Options: []string{"A", "B", "C", "D"}, Correct: correct},
	}
}

func sampleQuiz() models.Quiz {
	return models.Quiz{
		ID:           "quiz-1",
		Title:        "Cells",
		Difficulty:   models.DifficultyMedium,
		PassingScore: 70,
		Questions: []models.Question{
			mc("q1", 15, 0),
			mc("q2", 15, 1),
			mc("q3", 15, 2),
			mc("q4", 15, 3),
		},
		TotalQuestions: 4,
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{100, TierAdvanced},
		{95, TierAdvanced},
		{90, TierAdvanced},
		{89.99, TierIntermediate},
		{75, TierIntermediate},
		{70, TierIntermediate},
		{69.9, TierBeginner},
		{40, TierBeginner},
		{0, TierBeginner},
	}
	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}

	rank := map[Tier]int{TierBeginner: 0, TierIntermediate: 1, TierAdvanced: 2}
	prev := TierFor(0)
	for s := 0.0; s <= 100; s += 0.5 {
		cur := TierFor(s)
		if rank[cur] < rank[prev] {
			t.Fatalf("TierFor not monotonic at %v", s)
		}
		prev = cur
	}
}

func TestSubmitEqualWeights(t *testing.T) {
	for j := 0; j <= 4; j++ {
		s := NewQuizSession(sampleQuiz())
		for i, q := range s.Quiz().Questions {
			_, correct, _ := q.Choices()
			pick := correct
			if i >= j {
				pick = (correct + 1) % 4
			}
			if err := s.Answer(q.ID, choice(pick)); err != nil {
				t.Fatalf("answer %s: %v", q.ID, err)
			}
		}
		r, err := s.Submit()
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		want := 100 * float64(j) / 4
		if math.Abs(r.Score-want) > 1e-9 {
			t.Errorf("j=%d: score = %v, want %v", j, r.Score, want)
		}
		if r.Correct != j || r.Gradable != 4 {
			t.Errorf("j=%d: correct=%d gradable=%d", j, r.Correct, r.Gradable)
		}
		if r.Tier != TierFor(want) {
			t.Errorf("j=%d: tier = %s", j, r.Tier)
		}
	}
}

func TestSubmitMixedWeightsAndFreeText(t *testing.T) {
	quiz := models.Quiz{
		ID:           "mixed",
		PassingScore: 50,
		Questions: []models.Question{
			mc("a", 10, 0),
			{ID: "b", Points: 20, Body: models.TrueFalse{Options: []string{"True", "False"}, Correct: 1}},
			mc("c", 30, 2),
			{ID: "d", Points: 40, Body: models.ShortAnswer{Reference: "Osmosis"}},
		},
	}
	s := NewQuizSession(quiz)
	mustAnswer(t, s, "a", choice(0))
	mustAnswer(t, s, "b", choice(1))
	mustAnswer(t, s, "c", choice(0))
	mustAnswer(t, s, "d", Response{Text: "Osmosis"})

	r, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.Earned != 30 || r.Total != 100 {
		t.Fatalf("earned/total = %d/%d, want 30/100", r.Earned, r.Total)
	}
	if r.Score != 30 {
		t.Errorf("score = %v, want 30", r.Score)
	}
	if r.Tier != TierBeginner || r.Passed {
		t.Errorf("tier=%s passed=%v", r.Tier, r.Passed)
	}
	if r.Suggested != string(models.DifficultyEasy) {
		t.Errorf("suggested = %s", r.Suggested)
	}
}

func mustAnswer(t *testing.T, s *QuizSession, id string, r Response) {
	t.Helper()
	if err := s.Answer(id, r); err != nil {
		t.Fatalf("answer %s: %v", id, err)
	}
}

func TestSubmitIncompleteLeavesStateUnchanged(t *testing.T) {
	s := NewQuizSession(sampleQuiz())
	mustAnswer(t, s, "q1", choice(0))
	mustAnswer(t, s, "q2", choice(3))

	for range 2 {
		_, err := s.Submit()
		var incomplete *IncompleteSubmissionError
		if !errors.As(err, &incomplete) {
			t.Fatalf("expected IncompleteSubmissionError, got %v", err)
		}
		if incomplete.Remaining != 2 {
			t.Errorf("remaining = %d, want 2", incomplete.Remaining)
		}
		if s.State() != StateInProgress || s.Answered() != 2 || s.Result() != nil {
			t.Fatalf("state changed after rejected submit: %s answered=%d", s.State(), s.Answered())
		}
	}

	mustAnswer(t, s, "q3", choice(2))
	mustAnswer(t, s, "q4", choice(3))
	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit after completing: %v", err)
	}
}

func TestAnswerOverwrites(t *testing.T) {
	s := NewQuizSession(sampleQuiz())
	mustAnswer(t, s, "q1", choice(3))
	mustAnswer(t, s, "q1", choice(0))
	mustAnswer(t, s, "q2", choice(1))
	mustAnswer(t, s, "q3", choice(2))
	mustAnswer(t, s, "q4", choice(3))
	if s.Answered() != 4 {
		t.Fatalf("answered = %d", s.Answered())
	}
	r, err := s.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if r.Score != 100 {
		t.Errorf("latest answer should count, score = %v", r.Score)
	}
}

func TestAnswerRejections(t *testing.T) {
	quiz := sampleQuiz()
	quiz.Questions = append(quiz.Questions, models.Question{ID: "essay", Points: 15, Body: models.Essay{}})
	s := NewQuizSession(quiz)

	tests := []struct {
		name string
		id   string
		r    Response
		want error
	}{
		{"unknown question", "nope", choice(0), ErrUnknownQuestion},
		{"choice out of range", "q1", choice(4), ErrInvalidResponse},
		{"negative choice", "q1", choice(-1), ErrInvalidResponse},
		{"text for choice question", "q1", Response{Text: "A"}, ErrInvalidResponse},
		{"choice for essay", "essay", choice(0), ErrInvalidResponse},
		{"blank essay", "essay", Response{Text: "   "}, ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Answer(tt.id, tt.r); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
	if s.Answered() != 0 {
		t.Errorf("rejected answers were recorded")
	}
}

func TestStateMachine(t *testing.T) {
	s := NewQuizSession(sampleQuiz())
	if _, err := s.Review(); !errors.Is(err, ErrNotSubmitted) {
		t.Fatalf("review before submit: %v", err)
	}
	for i, q := range s.Quiz().Questions {
		mustAnswer(t, s, q.ID, choice(i))
	}
	if _, err := s.Submit(); err != nil {
		t.Fatal(err)
	}
	if err := s.Answer("q1", choice(0)); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("answer after submit: %v", err)
	}
	if _, err := s.Submit(); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("double submit: %v", err)
	}

	feedback, err := s.Review()
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != StateReviewed {
		t.Errorf("state = %s", s.State())
	}
	if len(feedback) != 4 || !feedback[0].Correct || feedback[0].CorrectAnswer != "A" || feedback[0].Earned != 15 {
		t.Errorf("unexpected feedback %+v", feedback)
	}
	again, err := s.Review()
	if err != nil || !reflect.DeepEqual(again, feedback) || s.State() != StateReviewed {
		t.Errorf("repeat review: %v %+v", err, again)
	}

	s.Reset(s.Quiz())
	if s.State() != StateInProgress || s.Answered() != 0 || s.Result() != nil {
		t.Errorf("reset did not clear state")
	}
}

func TestShuffledKeepsCorrectAnswers(t *testing.T) {
	quiz := sampleQuiz()
	shuffled := Shuffled(quiz, rand.New(rand.NewPCG(1, 2)))

	if len(shuffled.Questions) != len(quiz.Questions) {
		t.Fatalf("question count changed")
	}
	orig := map[string]string{}
	for _, q := range quiz.Questions {
		opts, c, _ := q.Choices()
		orig[q.ID] = opts[c]
	}
	for _, q := range shuffled.Questions {
		opts, c, ok := q.Choices()
		if !ok {
			t.Fatalf("question %s lost its body", q.ID)
		}
		if opts[c] != orig[q.ID] {
			t.Errorf("question %s: correct option %q, want %q", q.ID, opts[c], orig[q.ID])
		}
	}
	// the original is untouched
	if _, c, _ := quiz.Questions[1].Choices(); c != 1 || quiz.Questions[1].ID != "q2" {
		t.Errorf("original quiz mutated")
	}
}

func TestFlashcardSession(t *testing.T) {
	set := models.FlashcardSet{
		Title: "Cells",
		Cards: []models.Flashcard{
			{ID: "card-1", Front: "Powerhouse of the cell", Back: "Mitochondria"},
			{ID: "card-2", Front: "Energy currency", Back: "ATP"},
			{ID: "card-3", Front: "Holds DNA", Back: "Nucleus"},
		},
		TotalCards: 3,
	}
	s := NewFlashcardSession(set)

	tally, err := s.Record("card-1", true)
	if err != nil {
		t.Fatal(err)
	}
	if tally != (Tally{Correct: 1, Answered: 1, Total: 3}) {
		t.Errorf("tally = %+v", tally)
	}
	tally, _ = s.Record("card-1", false)
	if tally.Correct != 0 || tally.Answered != 1 {
		t.Errorf("record should overwrite, tally = %+v", tally)
	}

	ok, tally, err := s.Grade("card-3", "nucleas")
	if err != nil || !ok {
		t.Errorf("typo within tolerance should pass: ok=%v err=%v", ok, err)
	}
	if tally.Correct != 1 || tally.Answered != 2 {
		t.Errorf("tally = %+v", tally)
	}

	if _, err := s.Record("card-9", true); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("expected ErrUnknownCard, got %v", err)
	}

	s.Reset(set)
	if got := s.Tally(); got != (Tally{Total: 3}) {
		t.Errorf("reset tally = %+v", got)
	}
}

func TestMatchesAnswer(t *testing.T) {
	tests := []struct {
		typed, expected string
		want            bool
	}{
		{"Mitochondria", "Mitochondria", true},
		{"  mitochondria ", "Mitochondria", true},
		{"mitocondria", "Mitochondria", true},
		{"ATP", "ATP", true},
		{"ADP", "ATP", true},
		{"DNA", "ATP", false},
		{"ribosome", "Mitochondria", false},
		{"", "ATP", false},
	}
	for _, tt := range tests {
		if got := MatchesAnswer(tt.typed, tt.expected); got != tt.want {
			t.Errorf("MatchesAnswer(%q, %q) = %v, want %v", tt.typed, tt.expected, got, tt.want)
		}
	}
}
