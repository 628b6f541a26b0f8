package services

import (
	"context"
	"sync"

	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type PackOptions struct {
	SourceName string
	Difficulty models.Difficulty
	QuizCount  int
	CardCount  int
}

// StudyPack holds one artifact of every kind generated from the same material
type StudyPack struct {
	LectureNotes models.LectureNotes  `json:"lecture_notes"`
	Slides       models.SlideDeck     `json:"slides"`
	MindMap      models.MindMap       `json:"mindmap"`
	Quiz         models.Quiz          `json:"quiz"`
	Flashcards   models.FlashcardSet  `json:"flashcards"`
	Fallbacks    map[models.Kind]bool `json:"fallbacks"`
}

// StudyPack runs all five generators concurrently. It fails only when the
// service is not configured.
func (g *Generators) StudyPack(ctx context.Context, material string, opts PackOptions) (*StudyPack, error) {
	pack := &StudyPack{Fallbacks: make(map[models.Kind]bool, len(models.Kinds))}
	var mu sync.Mutex
	mark := func(kind models.Kind, fallback bool) {
		mu.Lock()
		pack.Fallbacks[kind] = fallback
		mu.Unlock()
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		notes, fb, err := g.LectureNotes(ctx, opts.SourceName, material)
		if err != nil {
			return err
		}
		pack.LectureNotes = notes
		mark(models.KindLectureNotes, fb)
		return nil
	})
	eg.Go(func() error {
		deck, fb, err := g.Slides(ctx, material)
		if err != nil {
			return err
		}
		pack.Slides = deck
		mark(models.KindSlideDeck, fb)
		return nil
	})
	eg.Go(func() error {
		m, fb, err := g.MindMap(ctx, material)
		if err != nil {
			return err
		}
		pack.MindMap = m
		mark(models.KindMindMap, fb)
		return nil
	})
	eg.Go(func() error {
		q, fb, err := g.Quiz(ctx, material, opts.Difficulty, opts.QuizCount)
		if err != nil {
			return err
		}
		pack.Quiz = q
		mark(models.KindQuiz, fb)
		return nil
	})
	eg.Go(func() error {
		set, fb, err := g.Flashcards(ctx, material, opts.CardCount)
		if err != nil {
			return err
		}
		pack.Flashcards = set
		mark(models.KindFlashcards, fb)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	log.Info().Interface("fallbacks", pack.Fallbacks).Msg("Study pack generated")
	return pack, nil
}
