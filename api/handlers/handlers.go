package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/local/studyai/api/codec"
	"github.com/local/studyai/api/config"
	"github.com/local/studyai/api/genai"
	"github.com/local/studyai/api/layout"
	"github.com/local/studyai/api/models"
	"github.com/local/studyai/api/services"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Handler struct {
	db         *gorm.DB
	cfg        *config.Config
	gens       *services.Generators
	tutor      *services.Tutor
	tracker    *services.Tracker
	renderer   layout.Renderer
	workspaces *Registry
}

// New wires the handlers. A nil client makes every generation and chat
// request fail with 503.
func New(db *gorm.DB, cfg *config.Config, client genai.Generator, renderer layout.Renderer) *Handler {
	return &Handler{
		db:         db,
		cfg:        cfg,
		gens:       services.NewGenerators(client, codec.NewDecoder()),
		tutor:      services.NewTutor(client),
		tracker:    services.NewTracker(),
		renderer:   renderer,
		workspaces: NewRegistry(),
	}
}

// Register mounts every route under /api
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/api/health", h.Health)

	api := router.Group("/api")
	{
		api.GET("/schemas/:kind", h.GetSchema)
		api.GET("/exports/:exportId", h.DownloadExport)

		api.POST("/workspaces", h.CreateWorkspace)
		ws := api.Group("/workspaces/:id")
		{
			ws.GET("", h.GetWorkspace)
			ws.GET("/artifacts/:kind", h.GetArtifact)
			ws.POST("/pack", h.GenerateStudyPack)

			ws.POST("/lecture-notes", h.GenerateLectureNotes)
			ws.POST("/slides", h.GenerateSlides)
			ws.POST("/mindmap", h.GenerateMindMap)
			ws.GET("/mindmap/layout", h.MindMapLayout)
			ws.GET("/mindmap.png", h.MindMapPNG)

			ws.POST("/quiz", h.GenerateQuiz)
			ws.GET("/quiz", h.GetQuiz)
			ws.POST("/quiz/answers", h.AnswerQuestion)
			ws.POST("/quiz/submit", h.SubmitQuiz)
			ws.POST("/quiz/review", h.ReviewQuiz)
			ws.POST("/quiz/reset", h.ResetQuiz)

			ws.POST("/flashcards", h.GenerateFlashcards)
			ws.GET("/flashcards", h.GetFlashcards)
			ws.POST("/flashcards/answers", h.AnswerFlashcard)
			ws.POST("/flashcards/reset", h.ResetFlashcards)

			ws.POST("/chat", h.ChatAsk)
			ws.GET("/chat", h.ChatHistory)

			ws.POST("/exports/:kind", h.CreateExport)
			ws.GET("/exports", h.ListExports)
		}
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  h.cfg.GeminiModel,
		"db":     h.cfg.DBDriver,
	})
}

func (h *Handler) GetSchema(c *gin.Context) {
	kind, ok := models.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown artifact kind"})
		return
	}
	schema, err := codec.Schema(kind)
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("Failed to build schema")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build schema"})
		return
	}
	c.JSON(http.StatusOK, schema)
}

type CreateWorkspaceRequest struct {
	Name            string   `json:"name" binding:"required,max=100"`
	EnrolledCourses []string `json:"enrolled_courses" binding:"max=50,dive,max=200"`
}

func (h *Handler) CreateWorkspace(c *gin.Context) {
	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	courses := make([]string, 0, len(req.EnrolledCourses))
	for _, course := range req.EnrolledCourses {
		if course = strings.TrimSpace(course); course != "" {
			courses = append(courses, course)
		}
	}
	ws := h.workspaces.Create(models.Learner{Name: strings.TrimSpace(req.Name), EnrolledCourses: courses})
	log.Info().Str("workspace_id", ws.ID).Int("courses", len(courses)).Msg("Workspace created")

	c.JSON(http.StatusCreated, gin.H{"workspace_id": ws.ID})
}

func (h *Handler) GetWorkspace(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Summary())
}

func (h *Handler) GetArtifact(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	kind, ok := models.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown artifact kind"})
		return
	}
	artifact, fallback, ok := ws.artifact(kind)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nothing generated yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fallback": fallback, "artifact": artifact})
}

func (h *Handler) workspace(c *gin.Context) (*Workspace, bool) {
	ws, ok := h.workspaces.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
	}
	return ws, ok
}

// commit applies a generation result only while its token is still the
// latest for the surface. The check and the write share the workspace lock.
func (h *Handler) commit(ws *Workspace, kind models.Kind, token ulid.ULID, apply func()) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if !h.tracker.IsCurrent(ws.surface(kind), token) {
		log.Info().Str("workspace_id", ws.ID).Str("kind", string(kind)).Msg("Discarding superseded result")
		return false
	}
	apply()
	return true
}

func superseded(c *gin.Context) {
	c.JSON(http.StatusConflict, gin.H{"error": "Superseded by a newer request"})
}

func generationFailed(c *gin.Context, kind models.Kind, err error) {
	if genai.IsConfiguration(err) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Generation service is not configured"})
		return
	}
	log.Error().Err(err).Str("kind", string(kind)).Msg("Generation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Generation failed"})
}
