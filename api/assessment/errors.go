// Package assessment scores quizzes and flashcard drills for one learner.
// Sessions are owned by the caller; nothing here is shared between learners.
package assessment

import (
	"errors"
	"fmt"
)

var (
	ErrNotInProgress   = errors.New("assessment is not in progress")
	ErrNotSubmitted    = errors.New("assessment has not been submitted")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownCard     = errors.New("unknown card")
	ErrInvalidResponse = errors.New("invalid response")
)

// IncompleteSubmissionError is returned by Submit while questions remain unanswered
type IncompleteSubmissionError struct {
	Remaining int
}

func (e *IncompleteSubmissionError) Error() string {
	if e.Remaining == 1 {
		return "1 question remains unanswered"
	}
	return fmt.Sprintf("%d questions remain unanswered", e.Remaining)
}
