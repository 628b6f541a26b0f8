package handlers

import (
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/local/studyai/api/assessment"
	"github.com/rs/zerolog/log"
)

type AnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Choice     *int   `json:"choice"`
	Text       string `json:"text" binding:"max=5000"`
}

type ResetQuizRequest struct {
	Shuffle bool `json:"shuffle"`
}

type FlashcardAnswerRequest struct {
	CardID  string `json:"card_id" binding:"required"`
	Correct *bool  `json:"correct"`
	Typed   string `json:"typed" binding:"max=1000"`
}

// assessmentError maps session errors to status codes
func assessmentError(c *gin.Context, err error) {
	var incomplete *assessment.IncompleteSubmissionError
	switch {
	case errors.As(err, &incomplete):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "remaining": incomplete.Remaining})
	case errors.Is(err, assessment.ErrUnknownQuestion), errors.Is(err, assessment.ErrUnknownCard):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, assessment.ErrInvalidResponse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, assessment.ErrNotInProgress), errors.Is(err, assessment.ErrNotSubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("Assessment request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Assessment request failed"})
	}
}

func (h *Handler) quizSession(c *gin.Context) (*assessment.QuizSession, bool) {
	ws, ok := h.workspace(c)
	if !ok {
		return nil, false
	}
	s := ws.QuizSession()
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No quiz generated yet"})
		return nil, false
	}
	return s, true
}

func (h *Handler) flashcardSession(c *gin.Context) (*assessment.FlashcardSession, bool) {
	ws, ok := h.workspace(c)
	if !ok {
		return nil, false
	}
	s := ws.FlashcardSession()
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No flashcards generated yet"})
		return nil, false
	}
	return s, true
}

func (h *Handler) GetQuiz(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"quiz":     s.Quiz(),
		"state":    s.State(),
		"answered": s.Answered(),
		"result":   s.Result(),
	})
}

func (h *Handler) AnswerQuestion(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Answer(req.QuestionID, assessment.Response{Choice: req.Choice, Text: req.Text}); err != nil {
		assessmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answered": s.Answered(), "total": len(s.Quiz().Questions)})
}

func (h *Handler) SubmitQuiz(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	result, err := s.Submit()
	if err != nil {
		assessmentError(c, err)
		return
	}
	log.Info().Float64("score", result.Score).Str("tier", string(result.Tier)).Msg("Quiz submitted")
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) ReviewQuiz(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	feedback, err := s.Review()
	if err != nil {
		assessmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": s.Result(), "feedback": feedback})
}

// ResetQuiz starts the quiz over. The body is optional.
func (h *Handler) ResetQuiz(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	var req ResetQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz := s.Quiz()
	if req.Shuffle {
		quiz = assessment.Shuffled(quiz, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	}
	s.Reset(quiz)
	c.JSON(http.StatusOK, gin.H{"quiz": quiz, "state": s.State()})
}

func (h *Handler) GetFlashcards(c *gin.Context) {
	s, ok := h.flashcardSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"flashcards": s.Set(), "tally": s.Tally()})
}

// AnswerFlashcard grades a typed answer when one is given, otherwise
// records the learner's self-assessment
func (h *Handler) AnswerFlashcard(c *gin.Context) {
	s, ok := h.flashcardSession(c)
	if !ok {
		return
	}
	var req FlashcardAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		correct bool
		tally   assessment.Tally
		err     error
	)
	switch {
	case strings.TrimSpace(req.Typed) != "":
		correct, tally, err = s.Grade(req.CardID, req.Typed)
	case req.Correct != nil:
		correct = *req.Correct
		tally, err = s.Record(req.CardID, correct)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either typed or correct is required"})
		return
	}
	if err != nil {
		assessmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"correct": correct, "tally": tally})
}

func (h *Handler) ResetFlashcards(c *gin.Context) {
	s, ok := h.flashcardSession(c)
	if !ok {
		return
	}
	s.Reset(s.Set())
	c.JSON(http.StatusOK, gin.H{"tally": s.Tally()})
}
