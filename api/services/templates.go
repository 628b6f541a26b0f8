package services

import (
	"strings"

	"github.com/local/studyai/api/models"
)

// SlideTemplate is the presentation treatment picked for a slide
type SlideTemplate struct {
	Layout    string
	Theme     string
	Animation string
}

// SelectSlideTemplate picks a template from the slide's position and content
func SelectSlideTemplate(s models.Slide) SlideTemplate {
	if s.SlideNumber == 1 || s.Type == models.SlideTitle {
		return SlideTemplate{Layout: "title", Theme: "gradient", Animation: "zoom"}
	}

	content := strings.Join(s.Content, "\n")
	contentLower := strings.ToLower(content)
	titleLower := strings.ToLower(s.Title)

	if strings.Contains(titleLower, "summary") ||
		strings.Contains(titleLower, "conclusion") ||
		strings.Contains(titleLower, "recap") ||
		strings.Contains(contentLower, "in summary") {
		return SlideTemplate{Layout: "summary", Theme: "purple", Animation: "fade"}
	}

	if strings.Contains(titleLower, "q&a") || strings.Contains(titleLower, "questions") {
		return SlideTemplate{Layout: "title", Theme: "gradient", Animation: "fade"}
	}

	if strings.Contains(contentLower, " vs ") ||
		strings.Contains(contentLower, "versus") ||
		strings.Contains(contentLower, "compared to") ||
		strings.Contains(contentLower, "difference between") {
		return SlideTemplate{Layout: "comparison", Theme: "orange", Animation: "slide-left"}
	}

	if strings.Contains(contentLower, "%") ||
		strings.Contains(contentLower, "data") ||
		strings.Contains(contentLower, "statistics") ||
		strings.Contains(contentLower, "research shows") {
		return SlideTemplate{Layout: "data", Theme: "green", Animation: "zoom"}
	}

	if len(content) > 300 {
		return SlideTemplate{Layout: "concept", Theme: "blue", Animation: "fade"}
	}

	if len(s.Content) >= 3 {
		return SlideTemplate{Layout: "list", Theme: "blue", Animation: "slide-up"}
	}

	themes := []string{"blue", "green", "purple", "orange"}
	return SlideTemplate{
		Layout:    "standard",
		Theme:     themes[s.SlideNumber%len(themes)],
		Animation: "slide-up",
	}
}

// applySlideTemplates fills animation types the model left out
func applySlideTemplates(deck *models.SlideDeck) {
	for i := range deck.Slides {
		if strings.TrimSpace(deck.Slides[i].AnimationType) == "" {
			deck.Slides[i].AnimationType = SelectSlideTemplate(deck.Slides[i]).Animation
		}
	}
	if strings.TrimSpace(deck.Theme) == "" {
		deck.Theme = "modern"
	}
}
