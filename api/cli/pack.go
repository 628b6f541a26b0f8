package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/local/studyai/api/codec"
	"github.com/local/studyai/api/layout"
	"github.com/local/studyai/api/models"
	"github.com/local/studyai/api/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type packOptions struct {
	material   string
	dir        string
	sourceName string
	difficulty string
	quizCount  int
	cardCount  int
	font       string
}

func newPackCmd() *cobra.Command {
	var opts packOptions
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Generate all five artifacts and write their exports to a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPack(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.material, "material", "m", "", "Material file, .pdf or text (required)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Output directory (required)")
	cmd.Flags().StringVar(&opts.sourceName, "source-name", "", "Lecture title for notes (default: material file name)")
	cmd.Flags().StringVarP(&opts.difficulty, "difficulty", "d", "medium", "Quiz difficulty: easy, medium, hard")
	cmd.Flags().IntVar(&opts.quizCount, "quiz-count", 10, "Number of quiz questions")
	cmd.Flags().IntVar(&opts.cardCount, "card-count", 20, "Number of flashcards")
	cmd.Flags().StringVar(&opts.font, "font", "", "TTF font for the mind map image")
	_ = cmd.MarkFlagRequired("material")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func runPack(cmd *cobra.Command, opts packOptions) error {
	material, err := loadMaterial(opts.material)
	if err != nil {
		return err
	}
	gens, err := generators()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.dir, err)
	}

	pack, err := gens.StudyPack(cmd.Context(), material, services.PackOptions{
		SourceName: sourceName(generateOptions{material: opts.material, sourceName: opts.sourceName}),
		Difficulty: models.ParseDifficulty(opts.difficulty),
		QuizCount:  opts.quizCount,
		CardCount:  opts.cardCount,
	})
	if err != nil {
		return err
	}

	artifacts := []any{pack.LectureNotes, pack.Slides, pack.MindMap, pack.Quiz, pack.Flashcards}
	for i, a := range artifacts {
		export, err := codec.ExportArtifact(a)
		if err != nil {
			return err
		}
		// prefix keeps names unique when titles collide
		name := fmt.Sprintf("%d-%s-%s", i+1, models.Kinds[i], export.Filename)
		if err := writeOutput(cmd, filepath.Join(opts.dir, name), export.Body); err != nil {
			return err
		}
	}

	png, err := renderMindMap(pack.MindMap, opts.font, defaultPNGWidth, defaultPNGHeight)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, filepath.Join(opts.dir, "mindmap.png"), png); err != nil {
		return err
	}

	for _, kind := range models.Kinds {
		if pack.Fallbacks[kind] {
			log.Warn().Str("kind", string(kind)).Msg("Placeholder content written")
		}
	}
	return nil
}

func renderMindMap(m models.MindMap, fontPath string, w, h int) ([]byte, error) {
	r := layout.Renderer{}
	if fontPath != "" {
		face, err := layout.LoadFontFace(fontPath, 14)
		if err != nil {
			return nil, err
		}
		r.Face = face
	}
	center := layout.Point{X: float64(w) / 2, Y: float64(h) / 2}
	return r.RenderPNG(layout.Radial(m, center, layout.FitRadius(w, h)), w, h)
}
