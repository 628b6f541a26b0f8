package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/local/studyai/api/models"
	"github.com/local/studyai/api/services"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultQuizCount = 10
	defaultCardCount = 20
)

type LectureNotesRequest struct {
	SourceName string `json:"source_name" binding:"max=200"`
	Transcript string `json:"transcript"`
}

type SlidesRequest struct {
	Outline string `json:"outline"`
}

type MindMapRequest struct {
	Content string `json:"content" binding:"required"`
}

type QuizRequest struct {
	Material   string `json:"material" binding:"required"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Count      int    `json:"count" binding:"omitempty,min=1,max=50"`
}

type FlashcardsRequest struct {
	Material string `json:"material" binding:"required"`
	Count    int    `json:"count" binding:"omitempty,min=1,max=100"`
}

type StudyPackRequest struct {
	Material   string `json:"material" binding:"required"`
	SourceName string `json:"source_name" binding:"max=200"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	QuizCount  int    `json:"quiz_count" binding:"omitempty,min=1,max=50"`
	CardCount  int    `json:"card_count" binding:"omitempty,min=1,max=100"`
}

func orDefault(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}

func (h *Handler) GenerateLectureNotes(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req LectureNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := h.tracker.Begin(ws.surface(models.KindLectureNotes))
	notes, fallback, err := h.gens.LectureNotes(c.Request.Context(), req.SourceName, req.Transcript)
	if err != nil {
		generationFailed(c, models.KindLectureNotes, err)
		return
	}
	if !h.commit(ws, models.KindLectureNotes, token, func() { ws.setLectureNotes(notes, fallback) }) {
		superseded(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fallback": fallback, "lecture_notes": notes})
}

func (h *Handler) GenerateSlides(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req SlidesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := h.tracker.Begin(ws.surface(models.KindSlideDeck))
	deck, fallback, err := h.gens.Slides(c.Request.Context(), req.Outline)
	if err != nil {
		generationFailed(c, models.KindSlideDeck, err)
		return
	}
	if !h.commit(ws, models.KindSlideDeck, token, func() { ws.setSlides(deck, fallback) }) {
		superseded(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fallback": fallback, "slides": deck})
}

func (h *Handler) GenerateMindMap(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req MindMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := h.tracker.Begin(ws.surface(models.KindMindMap))
	m, fallback, err := h.gens.MindMap(c.Request.Context(), req.Content)
	if err != nil {
		generationFailed(c, models.KindMindMap, err)
		return
	}
	if !h.commit(ws, models.KindMindMap, token, func() { ws.setMindMap(m, fallback) }) {
		superseded(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fallback": fallback, "mindmap": m})
}

func (h *Handler) GenerateQuiz(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	difficulty := models.ParseDifficulty(req.Difficulty)
	token := h.tracker.Begin(ws.surface(models.KindQuiz))
	quiz, fallback, err := h.gens.Quiz(c.Request.Context(), req.Material, difficulty, orDefault(req.Count, defaultQuizCount))
	if err != nil {
		generationFailed(c, models.KindQuiz, err)
		return
	}
	if !h.commit(ws, models.KindQuiz, token, func() { ws.setQuiz(quiz, fallback) }) {
		superseded(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fallback": fallback, "quiz": quiz})
}

func (h *Handler) GenerateFlashcards(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req FlashcardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := h.tracker.Begin(ws.surface(models.KindFlashcards))
	set, fallback, err := h.gens.Flashcards(c.Request.Context(), req.Material, orDefault(req.Count, defaultCardCount))
	if err != nil {
		generationFailed(c, models.KindFlashcards, err)
		return
	}
	if !h.commit(ws, models.KindFlashcards, token, func() { ws.setFlashcards(set, fallback) }) {
		superseded(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fallback": fallback, "flashcards": set})
}

// GenerateStudyPack fills every artifact from one material. Each kind is
// committed separately, so a newer single-kind request still wins.
func (h *Handler) GenerateStudyPack(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req StudyPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens := make(map[models.Kind]ulid.ULID, len(models.Kinds))
	for _, kind := range models.Kinds {
		tokens[kind] = h.tracker.Begin(ws.surface(kind))
	}

	pack, err := h.gens.StudyPack(c.Request.Context(), req.Material, services.PackOptions{
		SourceName: req.SourceName,
		Difficulty: models.ParseDifficulty(req.Difficulty),
		QuizCount:  orDefault(req.QuizCount, defaultQuizCount),
		CardCount:  orDefault(req.CardCount, defaultCardCount),
	})
	if err != nil {
		generationFailed(c, "pack", err)
		return
	}

	apply := map[models.Kind]func(){
		models.KindLectureNotes: func() { ws.setLectureNotes(pack.LectureNotes, pack.Fallbacks[models.KindLectureNotes]) },
		models.KindSlideDeck:    func() { ws.setSlides(pack.Slides, pack.Fallbacks[models.KindSlideDeck]) },
		models.KindMindMap:      func() { ws.setMindMap(pack.MindMap, pack.Fallbacks[models.KindMindMap]) },
		models.KindQuiz:         func() { ws.setQuiz(pack.Quiz, pack.Fallbacks[models.KindQuiz]) },
		models.KindFlashcards:   func() { ws.setFlashcards(pack.Flashcards, pack.Fallbacks[models.KindFlashcards]) },
	}
	committed := make([]models.Kind, 0, len(models.Kinds))
	for _, kind := range models.Kinds {
		if h.commit(ws, kind, tokens[kind], apply[kind]) {
			committed = append(committed, kind)
		}
	}
	if len(committed) == 0 {
		superseded(c)
		return
	}
	log.Info().Str("workspace_id", ws.ID).Int("committed", len(committed)).Msg("Study pack stored")

	c.JSON(http.StatusOK, gin.H{"pack": pack, "committed": committed})
}
