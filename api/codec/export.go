package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/local/studyai/api/models"
)

const (
	ContentTypeJSON     = "application/json"
	ContentTypeMarkdown = "text/markdown; charset=utf-8"
	ContentTypePNG      = "image/png"
)

// Export is a downloadable rendering of an artifact
type Export struct {
	Body        []byte
	ContentType string
	Filename    string
}

// ExportJSON pretty-prints an artifact. The output is the artifact's own
// schema, so decoding it again yields the same value.
func ExportJSON(artifact any) ([]byte, error) {
	b, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return b, nil
}

// ExportMarkdown returns the notes' detailed markdown as-is
func ExportMarkdown(n models.LectureNotes) []byte {
	return []byte(n.DetailedNotes)
}

// ExportArtifact picks the export format for an artifact
func ExportArtifact(artifact any) (Export, error) {
	switch a := artifact.(type) {
	case models.LectureNotes:
		return Export{Body: ExportMarkdown(a), ContentType: ContentTypeMarkdown, Filename: fileSlug(a.Title, "lecture-notes") + ".md"}, nil
	case models.SlideDeck:
		return exportJSON(a, fileSlug(a.Title, "slides"))
	case models.MindMap:
		return exportJSON(a, fileSlug(a.CentralTopic, "mindmap"))
	case models.Quiz:
		return exportJSON(a, fileSlug(a.Title, "quiz"))
	case models.FlashcardSet:
		return exportJSON(a, fileSlug(a.Title, "flashcards"))
	default:
		return Export{}, fmt.Errorf("unsupported artifact %T", artifact)
	}
}

func exportJSON(v any, name string) (Export, error) {
	b, err := ExportJSON(v)
	if err != nil {
		return Export{}, err
	}
	return Export{Body: b, ContentType: ContentTypeJSON, Filename: name + ".json"}, nil
}

// ExportTranscript renders a full conversation history as markdown
func ExportTranscript(learner models.Learner, turns []models.Turn) Export {
	var sb strings.Builder
	name := learner.Name
	if name == "" {
		name = "Student"
	}
	sb.WriteString(fmt.Sprintf("# Tutoring session with %s\n\n", name))
	for _, t := range turns {
		speaker := name
		if t.Role == models.RoleAssistant {
			speaker = "Tutor"
		}
		sb.WriteString(fmt.Sprintf("**%s** (%s)\n\n%s\n\n", speaker, t.Timestamp.UTC().Format("2006-01-02 15:04"), t.Content))
	}
	return Export{Body: []byte(sb.String()), ContentType: ContentTypeMarkdown, Filename: "transcript.md"}
}

const maxSlugLen = 60

// fileSlug turns a title into a filename stem, falling back to def
func fileSlug(title, def string) string {
	out := slug.Make(title)
	if len(out) > maxSlugLen {
		out = strings.Trim(out[:maxSlugLen], "-")
	}
	if out == "" {
		return def
	}
	return out
}
