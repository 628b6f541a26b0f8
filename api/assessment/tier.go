package assessment

import "github.com/local/studyai/api/models"

// Tier is the learner level derived from a submitted quiz
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

const (
	advancedThreshold     = 90
	intermediateThreshold = 70
)

// TierFor maps a score in [0,100] to a tier. Boundaries belong to the higher tier.
func TierFor(score float64) Tier {
	switch {
	case score >= advancedThreshold:
		return TierAdvanced
	case score >= intermediateThreshold:
		return TierIntermediate
	default:
		return TierBeginner
	}
}

// Next is the difficulty suggested for the following quiz
func (t Tier) Next() models.Difficulty {
	switch t {
	case TierAdvanced:
		return models.DifficultyHard
	case TierIntermediate:
		return models.DifficultyMedium
	default:
		return models.DifficultyEasy
	}
}
