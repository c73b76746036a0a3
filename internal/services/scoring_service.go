package services

import (
	"quoting-service/internal/models"
)

// ScoringService turns a submitted security questionnaire into a risk grade.
// The catalog is immutable and injected once at startup; Score itself is pure
// and safe to call concurrently.
type ScoringService struct {
	catalog *models.QuestionCatalog
}

func NewScoringService(catalog *models.QuestionCatalog) *ScoringService {
	return &ScoringService{catalog: catalog}
}

func (s *ScoringService) Catalog() *models.QuestionCatalog {
	return s.catalog
}

// Score walks every applicable catalog question and accumulates earned versus
// maximum points. Unanswered applicable questions still count toward the
// maximum, so an omission always penalizes the score.
func (s *ScoringService) Score(answers models.QuestionnaireAnswers, annualRevenue float64) models.RiskAssessment {
	var earnedPoints, maxPoints float64

	for _, q := range s.catalog.Questions {
		if !s.catalog.Applies(q, answers, annualRevenue) {
			continue
		}
		maxPoints++
		earnedPoints += questionPoints(q, answers[q.ID])
	}

	percentage := 0.0
	if maxPoints > 0 {
		percentage = 100 * earnedPoints / maxPoints
	}

	grade := gradeForPercentage(percentage)

	return models.RiskAssessment{
		Grade:              grade,
		Percentage:         percentage,
		Rationale:          gradeRationales[grade],
		DirectBindEligible: grade == models.GradeA || grade == models.GradeB,
	}
}

// questionPoints scores a single answered question. A missing or unexpected
// answer scores 0.
func questionPoints(q models.Question, answer models.AnswerValue) float64 {
	switch q.Kind {
	case models.QuestionBinary:
		good := models.AnswerYes
		if q.Polarity == models.PolarityNegative {
			good = models.AnswerNo
		}
		switch answer {
		case good:
			return 1
		case models.AnswerPartial:
			return 0.5
		default:
			return 0
		}
	case models.QuestionContinuity:
		switch answer {
		case models.ContinuityFull:
			return 1
		case models.ContinuityMostForWeek, models.ContinuityMostForDay:
			return 0.5
		default:
			return 0
		}
	case models.QuestionCardinality:
		switch answer {
		case models.RecordsUnder10K:
			return 1
		case models.Records10KTo100K:
			return 0.5
		default:
			return 0
		}
	default:
		return 0
	}
}

// Grade thresholds, evaluated top-down, first match wins.
func gradeForPercentage(percentage float64) models.RiskGrade {
	switch {
	case percentage >= 90:
		return models.GradeA
	case percentage >= 70:
		return models.GradeB
	case percentage >= 60:
		return models.GradeC
	case percentage >= 50:
		return models.GradeD
	default:
		return models.GradeE
	}
}

var gradeRationales = map[models.RiskGrade]string{
	models.GradeA: "excellent cyber hygiene (>=90%)",
	models.GradeB: "good cyber hygiene (>=70%)",
	models.GradeC: "moderate cyber hygiene (>=60%) - underwriting required",
	models.GradeD: "weak cyber hygiene (>=50%) - underwriting required",
	models.GradeE: "insufficient cyber hygiene (<50%) - underwriting required",
}
