package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/local/studyai/api/codec"
	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// artifact names accepted on the command line
var generateTargets = map[string]models.Kind{
	"notes":      models.KindLectureNotes,
	"slides":     models.KindSlideDeck,
	"mindmap":    models.KindMindMap,
	"quiz":       models.KindQuiz,
	"flashcards": models.KindFlashcards,
}

type generateOptions struct {
	material   string
	difficulty string
	count      int
	sourceName string
	out        string
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:       "generate {notes|slides|mindmap|quiz|flashcards}",
		Short:     "Generate one artifact from a material file",
		Long:      "Generate one artifact from a .pdf or text file. Notes are written as markdown, everything else as JSON.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"notes", "slides", "mindmap", "quiz", "flashcards"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, generateTargets[args[0]], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.material, "material", "m", "", "Material file, .pdf or text (required)")
	cmd.Flags().StringVarP(&opts.difficulty, "difficulty", "d", "medium", "Quiz difficulty: easy, medium, hard")
	cmd.Flags().IntVarP(&opts.count, "count", "c", 0, "Number of quiz questions or flashcards")
	cmd.Flags().StringVar(&opts.sourceName, "source-name", "", "Lecture title for notes (default: material file name)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("material")
	return cmd
}

func runGenerate(cmd *cobra.Command, kind models.Kind, opts generateOptions) error {
	material, err := loadMaterial(opts.material)
	if err != nil {
		return err
	}
	gens, err := generators()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var (
		artifact any
		fallback bool
	)
	switch kind {
	case models.KindLectureNotes:
		artifact, fallback, err = gens.LectureNotes(ctx, sourceName(opts), material)
	case models.KindSlideDeck:
		artifact, fallback, err = gens.Slides(ctx, material)
	case models.KindMindMap:
		artifact, fallback, err = gens.MindMap(ctx, material)
	case models.KindQuiz:
		artifact, fallback, err = gens.Quiz(ctx, material, models.ParseDifficulty(opts.difficulty), orDefault(opts.count, 10))
	case models.KindFlashcards:
		artifact, fallback, err = gens.Flashcards(ctx, material, orDefault(opts.count, 20))
	default:
		return fmt.Errorf("unknown artifact %q", kind)
	}
	if err != nil {
		return err
	}
	if fallback {
		log.Warn().Str("kind", string(kind)).Msg("Generation failed, writing placeholder content")
	}

	export, err := codec.ExportArtifact(artifact)
	if err != nil {
		return err
	}
	return writeOutput(cmd, opts.out, export.Body)
}

func sourceName(opts generateOptions) string {
	if opts.sourceName != "" {
		return opts.sourceName
	}
	base := filepath.Base(opts.material)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
