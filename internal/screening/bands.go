package screening

import "halal_finance/internal/models"

// GradeFor maps a score to its letter grade.
func GradeFor(score int) models.Grade {
	switch {
	case score >= 90:
		return models.GradeAPlus
	case score >= 80:
		return models.GradeA
	case score >= 70:
		return models.GradeBPlus
	case score >= 60:
		return models.GradeB
	case score >= 50:
		return models.GradeC
	case score >= 30:
		return models.GradeD
	default:
		return models.GradeF
	}
}

// RecommendationFor maps a score to a recommendation. The bands are coarser
// than the grade bands and are read from the score, not the grade.
func RecommendationFor(score int) models.Recommendation {
	switch {
	case score > 80:
		return models.HighlyRecommended
	case score > 60:
		return models.Recommended
	case score > 40:
		return models.Caution
	default:
		return models.Avoid
	}
}

// GhararFor maps a score to an uncertainty level.
func GhararFor(score int) models.GhararLevel {
	switch {
	case score > 70:
		return models.GhararLow
	case score > 40:
		return models.GhararMedium
	default:
		return models.GhararHigh
	}
}
