package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/local/studyai/api/assessment"
	"github.com/local/studyai/api/config"
	"github.com/local/studyai/api/db"
	"github.com/local/studyai/api/genai"
	"github.com/local/studyai/api/layout"
	"github.com/local/studyai/api/models"
)

const (
	notesJSON = `{"title": "Photosynthesis", "summary": "How plants make food",
		"detailedNotes": "# Photosynthesis\n\nPlants convert light into sugar.", "keyPoints": ["Light to sugar"]}`
	slidesJSON = `{"title": "Cells", "slides": [
		{"slideNumber": 1, "type": "title", "title": "Cells"},
		{"slideNumber": 2, "type": "content", "title": "Parts", "content": ["Membrane", "Nucleus"]}]}`
	mindMapJSON = `{"centralTopic": "Biology", "branches": [
		{"id": 1, "topic": "Cells", "subtopics": [{"id": 10, "name": "Membrane"}]},
		{"id": 2, "topic": "Genetics", "subtopics": [{"id": 20, "name": "DNA"}]}]}`
	quizJSON = `{"title": "Cells", "questions": [
		{"id": "q1", "type": "multiple-choice", "question": "Powerhouse?", "options": ["Nucleus", "Mitochondria"], "correctAnswer": 1},
		{"id": "q2", "type": "true-false", "question": "Cells divide", "correctAnswer": 0}]}`
	cardsJSON = `{"title": "Cells", "cards": [
		{"id": "c1", "front": "Powerhouse of the cell", "back": "Mitochondria"},
		{"id": "c2", "front": "Genetic code", "back": "DNA"}]}`
)

// fakeGenerator answers by prompt marker
type fakeGenerator struct {
	mu    sync.Mutex
	err   error
	calls int
}

var markers = map[string]string{
	"note-taker":                 notesJSON,
	"presentation designer":      slidesJSON,
	"visual learning specialist": mindMapJSON,
	"Mix the question types":     quizJSON,
	"memory coach":               cardsJSON,
	"AI tutor":                   "Mitochondria make ATP.",
}

func (f *fakeGenerator) Generate(_ context.Context, req models.GenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	for marker, resp := range markers {
		if strings.Contains(req.Prompt, marker) {
			return resp, nil
		}
	}
	return "", nil
}

func setupRouter(t *testing.T, client genai.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	database, err := db.Init("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("db init: %v", err)
	}
	cfg := &config.Config{GeminiModel: "test-model", DBDriver: "sqlite"}
	router := gin.New()
	New(database, cfg, client, layout.Renderer{}).Register(router)
	return router
}

func do(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func createWorkspace(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := do(router, http.MethodPost, "/api/workspaces", gin.H{"name": "Ada", "enrolled_courses": []string{"Biology 101"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create workspace: %d %s", w.Code, w.Body.String())
	}
	return decode[struct {
		ID string `json:"workspace_id"`
	}](t, w).ID
}

func TestHealth(t *testing.T) {
	router := setupRouter(t, &fakeGenerator{})
	w := do(router, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "test-model") {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestSchemas(t *testing.T) {
	router := setupRouter(t, &fakeGenerator{})
	if w := do(router, http.MethodGet, "/api/schemas/quiz", nil); w.Code != http.StatusOK {
		t.Errorf("quiz schema: %d", w.Code)
	}
	if w := do(router, http.MethodGet, "/api/schemas/poster", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown kind: %d", w.Code)
	}
}

func TestWorkspaceValidation(t *testing.T) {
	router := setupRouter(t, &fakeGenerator{})
	if w := do(router, http.MethodPost, "/api/workspaces", gin.H{"enrolled_courses": []string{}}); w.Code != http.StatusBadRequest {
		t.Errorf("missing name: %d", w.Code)
	}
	if w := do(router, http.MethodPost, "/api/workspaces/nope/mindmap", gin.H{"content": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown workspace: %d", w.Code)
	}
	id := createWorkspace(t, router)
	tests := []struct {
		path string
		body gin.H
	}{
		{"/quiz", gin.H{"material": "cells", "difficulty": "impossible"}},
		{"/quiz", gin.H{"material": "cells", "count": 51}},
		{"/quiz", gin.H{}},
		{"/flashcards", gin.H{"material": "cells", "count": 101}},
		{"/mindmap", gin.H{}},
	}
	for _, tt := range tests {
		if w := do(router, http.MethodPost, "/api/workspaces/"+id+tt.path, tt.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s %v: got %d, want 400", tt.path, tt.body, w.Code)
		}
	}
}

type quizResponse struct {
	Fallback bool        `json:"fallback"`
	Quiz     models.Quiz `json:"quiz"`
}

func TestQuizFlow(t *testing.T) {
	router := setupRouter(t, &fakeGenerator{})
	base := "/api/workspaces/" + createWorkspace(t, router)

	if w := do(router, http.MethodPost, base+"/quiz/submit", nil); w.Code != http.StatusNotFound {
		t.Errorf("submit before generating: %d", w.Code)
	}

	w := do(router, http.MethodPost, base+"/quiz", gin.H{"material": "Cells are the unit of life.", "difficulty": "easy", "count": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("generate quiz: %d %s", w.Code, w.Body.String())
	}
	got := decode[quizResponse](t, w)
	if got.Fallback || len(got.Quiz.Questions) != 2 {
		t.Fatalf("unexpected quiz %+v", got)
	}

	w = do(router, http.MethodPost, base+"/quiz/submit", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("incomplete submit: %d", w.Code)
	}
	if r := decode[struct {
		Remaining int `json:"remaining"`
	}](t, w); r.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", r.Remaining)
	}

	if w := do(router, http.MethodPost, base+"/quiz/answers", gin.H{"question_id": "zzz", "choice": 0}); w.Code != http.StatusNotFound {
		t.Errorf("unknown question: %d", w.Code)
	}
	if w := do(router, http.MethodPost, base+"/quiz/answers", gin.H{"question_id": got.Quiz.Questions[0].ID, "choice": 9}); w.Code != http.StatusBadRequest {
		t.Errorf("out of range choice: %d", w.Code)
	}
	if w := do(router, http.MethodPost, base+"/quiz/review", nil); w.Code != http.StatusConflict {
		t.Errorf("review before submit: %d", w.Code)
	}

	for _, q := range got.Quiz.Questions {
		_, correct, _ := q.Choices()
		if w := do(router, http.MethodPost, base+"/quiz/answers", gin.H{"question_id": q.ID, "choice": correct}); w.Code != http.StatusOK {
			t.Fatalf("answer %s: %d %s", q.ID, w.Code, w.Body.String())
		}
	}

	w = do(router, http.MethodPost, base+"/quiz/submit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	result := decode[struct {
		Result assessment.Result `json:"result"`
	}](t, w).Result
	if result.Score != 100 || result.Tier != assessment.TierAdvanced || result.Suggested != "hard" {
		t.Errorf("result = %+v", result)
	}
	if w := do(router, http.MethodPost, base+"/quiz/answers", gin.H{"question_id": got.Quiz.Questions[0].ID, "choice": 0}); w.Code != http.StatusConflict {
		t.Errorf("answer after submit: %d", w.Code)
	}

	w = do(router, http.MethodPost, base+"/quiz/review", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("review: %d", w.Code)
	}
	if fb := decode[struct {
		Feedback []assessment.Feedback `json:"feedback"`
	}](t, w).Feedback; len(fb) != 2 || !fb[0].Correct {
		t.Errorf("feedback = %+v", fb)
	}

	w = do(router, http.MethodPost, base+"/quiz/reset", gin.H{"shuffle": true})
	if w.Code != http.StatusOK {
		t.Fatalf("reset: %d", w.Code)
	}
	w = do(router, http.MethodGet, base+"/quiz", nil)
	state := decode[struct {
		State    assessment.State `json:"state"`
		Answered int              `json:"answered"`
	}](t, w)
	if state.State != assessment.StateInProgress || state.Answered != 0 {
		t.Errorf("after reset: %+v", state)
	}

	// reset without a body keeps the order
	if w := do(router, http.MethodPost, base+"/quiz/reset", nil); w.Code != http.StatusOK {
		t.Errorf("reset without body: %d %s", w.Code, w.Body.String())
	}
}

func TestServiceErrorFallsBack(t *testing.T) {
	router := setupRouter(t, &fakeGenerator{err: &genai.ServiceError{Status: 500, Message: "boom"}})
	base := "/api/workspaces/" + createWorkspace(t, router)

	for _, path := range []string{"/mindmap", "/quiz", "/flashcards"} {
		w := do(router, http.MethodPost, base+path, gin.H{"content": "cells", "material": "cells"})
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", path, w.Code, w.Body.String())
		}
		if fb := decode[struct {
			Fallback bool `json:"fallback"`
		}](t, w).Fallback; !fb {
			t.Errorf("%s: expected fallback", path)
		}
	}

	w := do(router, http.MethodPost, base+"/chat", gin.H{"message": "What is ATP?"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "having trouble") {
		t.Errorf("chat apology: %d %s", w.Code, w.Body.String())
	}
}

func TestMissingClientIsUnavailable(t *testing.T) {
	router := setupRouter(t, nil)
	base := "/api/workspaces/" + createWorkspace(t, router)

	if w := do(router, http.MethodPost, base+"/mindmap", gin.H{"content": "cells"}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("mindmap: %d", w.Code)
	}
	if w := do(router, http.MethodPost, base+"/pack", gin.H{"material": "cells"}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("pack: %d", w.Code)
	}
	if w := do(router, http.MethodPost, base+"/chat", gin.H{"message": "hi"}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("chat: %d", w.Code)
	}
	w := do(router, http.MethodGet, base+"/chat", nil)
	if h := decode[struct {
		History []models.Turn `json:"history"`
	}](t, w).History; len(h) != 0 {
		t.Errorf("failed ask should not be recorded, got %+v", h)
	}
}

// gatedGenerator holds its first call until released
type gatedGenerator struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedGenerator) Generate(ctx context.Context, _ models.GenerationRequest) (string, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()
	if n == 1 {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return `{"centralTopic": "First", "branches": [{"id": 1, "topic": "Old"}]}`, nil
	}
	return `{"centralTopic": "Second", "branches": [{"id": 1, "topic": "New"}]}`, nil
}

func TestSupersededGenerationIsDiscarded(t *testing.T) {
	g := &gatedGenerator{entered: make(chan struct{}), release: make(chan struct{})}
	router := setupRouter(t, g)
	base := "/api/workspaces/" + createWorkspace(t, router)

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- do(router, http.MethodPost, base+"/mindmap", gin.H{"content": "old material"})
	}()

	select {
	case <-g.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never reached the generator")
	}

	if w := do(router, http.MethodPost, base+"/mindmap", gin.H{"content": "new material"}); w.Code != http.StatusOK {
		t.Fatalf("second request: %d", w.Code)
	}
	close(g.release)
	if w := <-first; w.Code != http.StatusConflict {
		t.Errorf("stale request: got %d, want 409", w.Code)
	}

	w := do(router, http.MethodGet, base+"/artifacts/mindmap", nil)
	m := decode[struct {
		Artifact models.MindMap `json:"artifact"`
	}](t, w).Artifact
	if m.CentralTopic != "Second" {
		t.Errorf("stored map = %q, want the newer one", m.CentralTopic)
	}
}

func TestMindMapLayoutAndPNG(t *testing.T) {
	router := setupRouter(t, &fakeGenerator{})
	base := "/api/workspaces/" + createWorkspace(t, router)

	if w := do(router, http.MethodGet, base+"/mindmap/layout", nil); w.Code != http.StatusNotFound {
		t.Errorf("layout before generating: %d", w.Code)
	}
	if w := do(router, http.MethodPost, base+"/mindmap", gin.H{"content": "Biology"}); w.Code != http.StatusOK {
		t.Fatalf("generate: %d", w.Code)
	}

	firstBranch := func(l layout.Layout) layout.Point {
		for _, n := range l.Nodes {
			if n.Kind == layout.NodeBranch {
				return n.Position
			}
		}
		t.Fatal("no branch nodes")
		return layout.Point{}
	}
	near := func(p layout.Point, x, y float64) bool {
		return math.Abs(p.X-x) < 1e-6 && math.Abs(p.Y-y) < 1e-6
	}

	w := do(router, http.MethodGet, base+"/mindmap/layout?cx=350&cy=280&radius=100", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("layout: %d %s", w.Code, w.Body.String())
	}
	if p := firstBranch(decode[layout.Layout](t, w)); !near(p, 350, 180) {
		t.Errorf("branch 0 at %+v, want (350,180)", p)
	}

	w = do(router, http.MethodGet, base+"/mindmap/layout?cx=350&cy=280&radius=100&zoom=2", nil)
	if p := firstBranch(decode[layout.Layout](t, w)); !near(p, 350, 80) {
		t.Errorf("zoomed branch 0 at %+v, want (350,80)", p)
	}

	if w := do(router, http.MethodGet, base+"/mindmap/layout?zoom=-1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("negative zoom: %d", w.Code)
	}

	w = do(router, http.MethodGet, base+"/mindmap.png?width=640&height=480", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("png: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	cfg, err := png.DecodeConfig(w.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("png size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestFlashcardFlow(t *testing.T) {
	router := setupRouter(t, &fakeGenerator{})
	base := "/api/workspaces/" + createWorkspace(t, router)

	if w := do(router, http.MethodPost, base+"/flashcards", gin.H{"material": "Cells"}); w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}

	type answer struct {
		Correct bool             `json:"correct"`
		Tally   assessment.Tally `json:"tally"`
	}
	w := do(router, http.MethodPost, base+"/flashcards/answers", gin.H{"card_id": "c1", "typed": " mitochondira "})
	if a := decode[answer](t, w); !a.Correct || a.Tally.Correct != 1 || a.Tally.Total != 2 {
		t.Errorf("typed answer: %+v", a)
	}
	w = do(router, http.MethodPost, base+"/flashcards/answers", gin.H{"card_id": "c2", "correct": false})
	if a := decode[answer](t, w); a.Correct || a.Tally.Answered != 2 || a.Tally.Correct != 1 {
		t.Errorf("self assessed: %+v", a)
	}

	if w := do(router, http.MethodPost, base+"/flashcards/answers", gin.H{"card_id": "c1"}); w.Code != http.StatusBadRequest {
		t.Errorf("no answer: %d", w.Code)
	}
	if w := do(router, http.MethodPost, base+"/flashcards/answers", gin.H{"card_id": "c1", "typed": "   "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank typed answer: %d", w.Code)
	}
	if w := do(router, http.MethodPost, base+"/flashcards/answers", gin.H{"card_id": "c9", "correct": true}); w.Code != http.StatusNotFound {
		t.Errorf("unknown card: %d", w.Code)
	}

	w = do(router, http.MethodPost, base+"/flashcards/reset", nil)
	if tally := decode[struct {
		Tally assessment.Tally `json:"tally"`
	}](t, w).Tally; tally.Answered != 0 || tally.Total != 2 {
		t.Errorf("after reset: %+v", tally)
	}
}

func TestChat(t *testing.T) {
	router := setupRouter(t, &fakeGenerator{})
	base := "/api/workspaces/" + createWorkspace(t, router)

	w := do(router, http.MethodPost, base+"/chat", gin.H{"message": "What makes ATP?"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Mitochondria make ATP.") {
		t.Fatalf("chat: %d %s", w.Code, w.Body.String())
	}
	if w := do(router, http.MethodPost, base+"/chat", gin.H{"message": "   "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank message: %d", w.Code)
	}

	w = do(router, http.MethodGet, base+"/chat", nil)
	hist := decode[struct {
		Learner models.Learner `json:"learner"`
		History []models.Turn  `json:"history"`
	}](t, w)
	if len(hist.History) != 2 || hist.History[0].Role != models.RoleStudent || hist.Learner.Name != "Ada" {
		t.Errorf("history = %+v", hist)
	}
}

func TestExports(t *testing.T) {
	router := setupRouter(t, &fakeGenerator{})
	base := "/api/workspaces/" + createWorkspace(t, router)

	if w := do(router, http.MethodPost, base+"/exports/quiz", nil); w.Code != http.StatusNotFound {
		t.Errorf("export before generating: %d", w.Code)
	}
	if w := do(router, http.MethodPost, base+"/exports/poster", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown kind: %d", w.Code)
	}

	do(router, http.MethodPost, base+"/lecture-notes", gin.H{"source_name": "Photosynthesis", "transcript": "Plants use light."})
	do(router, http.MethodPost, base+"/chat", gin.H{"message": "Why green?"})

	type created struct {
		Export models.ExportRecord `json:"export"`
	}
	w := do(router, http.MethodPost, base+"/exports/lecture-notes", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("export notes: %d %s", w.Code, w.Body.String())
	}
	notes := decode[created](t, w).Export
	if notes.Filename != "photosynthesis.md" {
		t.Errorf("filename = %q", notes.Filename)
	}

	w = do(router, http.MethodGet, "/api/exports/"+notes.ID, nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "# Photosynthesis") {
		t.Errorf("download: %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "photosynthesis.md") {
		t.Errorf("content disposition %q", cd)
	}

	w = do(router, http.MethodPost, base+"/exports/transcript", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("export transcript: %d", w.Code)
	}
	transcript := decode[created](t, w).Export
	w = do(router, http.MethodGet, "/api/exports/"+transcript.ID, nil)
	if !strings.Contains(w.Body.String(), "Why green?") {
		t.Errorf("transcript body %q", w.Body.String())
	}

	w = do(router, http.MethodGet, base+"/exports", nil)
	if list := decode[struct {
		Exports []models.ExportRecord `json:"exports"`
	}](t, w).Exports; len(list) != 2 {
		t.Errorf("listed %d exports, want 2", len(list))
	}

	if w := do(router, http.MethodGet, "/api/exports/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing export: %d", w.Code)
	}
}

func TestStudyPack(t *testing.T) {
	f := &fakeGenerator{}
	router := setupRouter(t, f)
	base := "/api/workspaces/" + createWorkspace(t, router)

	w := do(router, http.MethodPost, base+"/pack", gin.H{"material": "Cells are the unit of life.", "source_name": "Cells"})
	if w.Code != http.StatusOK {
		t.Fatalf("pack: %d %s", w.Code, w.Body.String())
	}
	if committed := decode[struct {
		Committed []models.Kind `json:"committed"`
	}](t, w).Committed; len(committed) != len(models.Kinds) {
		t.Errorf("committed %v", committed)
	}
	if f.calls != 5 {
		t.Errorf("generator calls = %d, want 5", f.calls)
	}

	w = do(router, http.MethodGet, base, nil)
	summary := decode[struct {
		Artifacts map[string]struct {
			Fallback bool `json:"fallback"`
		} `json:"artifacts"`
	}](t, w)
	if len(summary.Artifacts) != 5 {
		t.Errorf("summary artifacts = %+v", summary.Artifacts)
	}
	for kind, a := range summary.Artifacts {
		if a.Fallback {
			t.Errorf("%s unexpectedly fell back", kind)
		}
	}
}
