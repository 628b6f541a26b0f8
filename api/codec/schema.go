package codec

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/local/studyai/api/models"
)

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
}

// Schema reflects the Go artifact type for kind into a JSON Schema document
func Schema(kind models.Kind) (*jsonschema.Schema, error) {
	r := reflector()
	var s *jsonschema.Schema
	switch kind {
	case models.KindLectureNotes:
		s = r.Reflect(&models.LectureNotes{})
	case models.KindSlideDeck:
		s = r.Reflect(&models.SlideDeck{})
	case models.KindMindMap:
		s = r.Reflect(&models.MindMap{})
	case models.KindQuiz:
		s = r.Reflect(&models.Quiz{})
	case models.KindFlashcards:
		s = r.Reflect(&models.FlashcardSet{})
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}
	s.Title = string(kind)
	return s, nil
}
