package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/local/studyai/api/assessment"
	"github.com/local/studyai/api/models"
	"github.com/local/studyai/api/services"
)

// Workspace holds one learner's current artifacts, assessment sessions and
// tutoring conversation. Replacing an artifact discards its session.
type Workspace struct {
	ID        string
	CreatedAt time.Time
	Chat      *services.Conversation

	mu         sync.Mutex
	notes      *models.LectureNotes
	slides     *models.SlideDeck
	mindMap    *models.MindMap
	quiz       *assessment.QuizSession
	flashcards *assessment.FlashcardSession
	fallbacks  map[models.Kind]bool
}

func newWorkspace(learner models.Learner) *Workspace {
	return &Workspace{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Chat:      services.NewConversation(learner),
		fallbacks: map[models.Kind]bool{},
	}
}

// surface names the generation surface for request tokens
func (w *Workspace) surface(kind models.Kind) string {
	return w.ID + "/" + string(kind)
}

func (w *Workspace) setLectureNotes(n models.LectureNotes, fallback bool) {
	w.notes = &n
	w.fallbacks[models.KindLectureNotes] = fallback
}

func (w *Workspace) setSlides(d models.SlideDeck, fallback bool) {
	w.slides = &d
	w.fallbacks[models.KindSlideDeck] = fallback
}

func (w *Workspace) setMindMap(m models.MindMap, fallback bool) {
	w.mindMap = &m
	w.fallbacks[models.KindMindMap] = fallback
}

func (w *Workspace) setQuiz(q models.Quiz, fallback bool) {
	w.quiz = assessment.NewQuizSession(q)
	w.fallbacks[models.KindQuiz] = fallback
}

func (w *Workspace) setFlashcards(s models.FlashcardSet, fallback bool) {
	w.flashcards = assessment.NewFlashcardSession(s)
	w.fallbacks[models.KindFlashcards] = fallback
}

// artifact returns the current artifact of kind, if any
func (w *Workspace) artifact(kind models.Kind) (any, bool, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fb := w.fallbacks[kind]
	switch kind {
	case models.KindLectureNotes:
		if w.notes != nil {
			return *w.notes, fb, true
		}
	case models.KindSlideDeck:
		if w.slides != nil {
			return *w.slides, fb, true
		}
	case models.KindMindMap:
		if w.mindMap != nil {
			return *w.mindMap, fb, true
		}
	case models.KindQuiz:
		if w.quiz != nil {
			return w.quiz.Quiz(), fb, true
		}
	case models.KindFlashcards:
		if w.flashcards != nil {
			return w.flashcards.Set(), fb, true
		}
	}
	return nil, false, false
}

func (w *Workspace) MindMap() (models.MindMap, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mindMap == nil {
		return models.MindMap{}, false
	}
	return *w.mindMap, true
}

func (w *Workspace) QuizSession() *assessment.QuizSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.quiz
}

func (w *Workspace) FlashcardSession() *assessment.FlashcardSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flashcards
}

// Summary lists which artifacts exist and whether each is a fallback
func (w *Workspace) Summary() map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	present := map[models.Kind]bool{
		models.KindLectureNotes: w.notes != nil,
		models.KindSlideDeck:    w.slides != nil,
		models.KindMindMap:      w.mindMap != nil,
		models.KindQuiz:         w.quiz != nil,
		models.KindFlashcards:   w.flashcards != nil,
	}
	artifacts := map[string]any{}
	for _, kind := range models.Kinds {
		if present[kind] {
			artifacts[string(kind)] = map[string]bool{"fallback": w.fallbacks[kind]}
		}
	}
	return map[string]any{
		"workspace_id": w.ID,
		"learner":      w.Chat.Learner(),
		"created_at":   w.CreatedAt,
		"artifacts":    artifacts,
		"turns":        len(w.Chat.History()),
	}
}

// Registry keeps workspaces in memory for the life of the process
type Registry struct {
	mu    sync.RWMutex
	items map[string]*Workspace
}

func NewRegistry() *Registry {
	return &Registry{items: map[string]*Workspace{}}
}

func (r *Registry) Create(learner models.Learner) *Workspace {
	w := newWorkspace(learner)
	r.mu.Lock()
	r.items[w.ID] = w
	r.mu.Unlock()
	return w
}

func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.items[id]
	return w, ok
}
