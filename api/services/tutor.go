package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/local/studyai/api/genai"
	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
)

const (
	// HistoryWindow is how many prior turns go into each tutor prompt
	HistoryWindow = 6

	tutorTemperature = 0.7
	tutorTopP        = 0.95
	tutorMaxTokens   = 1000
)

// Apology is the reply when the tutor cannot reach the service
const Apology = "I'm sorry, I'm having trouble answering right now. Please try again in a moment."

// Conversation is one learner's tutoring dialogue. History only grows;
// the prompt window is a slice taken at read time.
type Conversation struct {
	askMu   sync.Mutex
	mu      sync.Mutex
	learner models.Learner
	history []models.Turn
}

func NewConversation(learner models.Learner) *Conversation {
	return &Conversation{learner: learner}
}

func (c *Conversation) Learner() models.Learner {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.learner
}

// History returns a copy of every turn
func (c *Conversation) History() []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

// Window returns a copy of at most the last n turns
func (c *Conversation) Window(n int) []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := max(0, len(c.history)-n)
	return slices.Clone(c.history[start:])
}

func (c *Conversation) append(turns ...models.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, turns...)
}

// Tutor answers learner messages in free-text mode
type Tutor struct {
	client genai.Generator
	now    func() time.Time
}

func NewTutor(client genai.Generator) *Tutor {
	return &Tutor{client: client, now: time.Now}
}

// Ask sends message with the recent history and records both turns. A
// service failure is answered with Apology, never an error. Asks on the
// same conversation run one at a time so replies stay in order.
func (t *Tutor) Ask(ctx context.Context, conv *Conversation, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("empty message")
	}
	if t.client == nil {
		return "", &genai.ConfigurationError{Missing: "GEMINI_API_KEY"}
	}

	conv.askMu.Lock()
	defer conv.askMu.Unlock()

	asked := t.now().UTC().Round(0)
	prompt := BuildTutorPrompt(conv.Learner(), conv.Window(HistoryWindow), message)

	reply, err := t.client.Generate(ctx, models.GenerationRequest{
		Prompt:      prompt,
		JSONMode:    false,
		Temperature: tutorTemperature,
		MaxTokens:   tutorMaxTokens,
		TopP:        tutorTopP,
	})
	if err != nil {
		if genai.IsConfiguration(err) {
			return "", err
		}
		log.Warn().Err(err).Msg("Tutor request failed, replying with apology")
		reply = Apology
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = Apology
	}

	conv.append(
		models.Turn{Role: models.RoleStudent, Content: message, Timestamp: asked},
		models.Turn{Role: models.RoleAssistant, Content: reply, Timestamp: t.now().UTC().Round(0)},
	)
	return reply, nil
}

// BuildTutorPrompt renders the preamble, the given turns and the new message
func BuildTutorPrompt(learner models.Learner, window []models.Turn, message string) string {
	name := strings.TrimSpace(learner.Name)
	if name == "" {
		name = "a student"
	}
	courses := "They are not enrolled in any courses yet."
	if len(learner.EnrolledCourses) > 0 {
		courses = "They are enrolled in: " + strings.Join(learner.EnrolledCourses, ", ") + "."
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(renderPrompt("tutor", map[string]string{
		"name":    name,
		"courses": courses,
	})))
	sb.WriteString("\n\n")
	if len(window) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, turn := range window {
			sb.WriteString(speaker(turn.Role))
			sb.WriteString(": ")
			sb.WriteString(turn.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Student: ")
	sb.WriteString(message)
	sb.WriteString("\nTutor:")
	return sb.String()
}

func speaker(r models.Role) string {
	if r == models.RoleAssistant {
		return "Tutor"
	}
	return "Student"
}
