package services

import (
	"context"
	"strings"

	"github.com/local/studyai/api/codec"
	"github.com/local/studyai/api/models"
)

// LectureNotes turns a lecture transcript into study notes. Without a
// transcript the model only gets the source name to frame the notes.
func (g *Generators) LectureNotes(ctx context.Context, sourceName, transcript string) (models.LectureNotes, bool, error) {
	sourceName = strings.TrimSpace(sourceName)
	if sourceName == "" {
		sourceName = "Untitled lecture"
	}

	section := "No transcript is available. Write introductory notes based on the lecture title alone."
	if t := strings.TrimSpace(transcript); t != "" {
		section = "Transcript:\n" + ClipMaterial(t)
	}

	raw, err := g.generate(ctx, models.KindLectureNotes, renderPrompt("lecture_notes", map[string]string{
		"source_name":        sourceName,
		"transcript_section": section,
	}))
	if err != nil {
		return models.LectureNotes{}, false, err
	}

	notes, usedFallback := g.decoder.DecodeLectureNotes(raw)
	if usedFallback {
		notes = codec.FallbackLectureNotes(sourceName, g.now())
	}
	return notes, usedFallback, nil
}
