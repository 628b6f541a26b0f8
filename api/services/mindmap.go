package services

import (
	"context"
	"strconv"

	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
)

// MindMap asks for five branches of two or three subtopics. Other shapes
// are kept and only lower the coverage.
func (g *Generators) MindMap(ctx context.Context, content string) (models.MindMap, bool, error) {
	raw, err := g.generate(ctx, models.KindMindMap, renderPrompt("mindmap", map[string]string{
		"content":           ClipMaterial(content),
		"branches":          strconv.Itoa(models.MindMapBranches),
		"min_subtopics":     strconv.Itoa(models.MindMapMinSubtopics),
		"max_subtopics":     strconv.Itoa(models.MindMapMaxSubtopics),
		"first_subtopic_id": strconv.Itoa(models.MindMapBranches + 1),
	}))
	if err != nil {
		return models.MindMap{}, false, err
	}

	m, usedFallback := g.decoder.DecodeMindMap(raw)
	if !usedFallback {
		log.Debug().
			Int("branches", len(m.Branches)).
			Int("nodes", m.TotalNodes).
			Float64("coverage", m.Coverage()).
			Msg("Decoded mind map")
	}
	return m, usedFallback, nil
}
