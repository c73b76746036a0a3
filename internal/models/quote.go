package models

import (
	"time"

	"quoting-service/internal/utils"

	"github.com/google/uuid"
)

// ============================================================================
// QUOTE (PROPOSAL ENTITY)
// ============================================================================

type Quote struct {
	ID          uuid.UUID `json:"id" db:"id"`
	QuoteNumber string    `json:"quote_number" db:"quote_number"`
	CustomerID  string    `json:"customer_id" db:"customer_id"`
	BrokerID    *string   `json:"broker_id,omitempty" db:"broker_id"`

	// Intake wizard snapshots
	CompanyProfile     utils.JSONMap        `json:"company_profile" db:"company_profile"`
	RiskProfileAnswers utils.JSONMap        `json:"risk_profile_answers" db:"risk_profile_answers"`
	SecurityAnswers    QuestionnaireAnswers `json:"security_answers" db:"security_answers"`
	AnnualRevenue      float64              `json:"annual_revenue" db:"annual_revenue"`

	// Risk assessment, recomputed and overwritten on every security step
	// submission. Null until the security step has been submitted once.
	RiskGrade          *RiskGrade `json:"risk_grade,omitempty" db:"risk_grade"`
	RiskPercentage     *float64   `json:"risk_percentage,omitempty" db:"risk_percentage"`
	RiskRationale      *string    `json:"risk_rationale,omitempty" db:"risk_rationale"`
	DirectBindEligible bool       `json:"direct_bind_eligible" db:"direct_bind_eligible"`

	CoverageTier CoverageTier `json:"coverage_tier" db:"coverage_tier"`
	Premium      *float64     `json:"premium,omitempty" db:"premium"`

	Status    QuoteStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// RiskAssessment is the scoring engine's output. It is derived state: the
// grade, percentage and rationale are persisted on the quote, never as an
// independent record.
type RiskAssessment struct {
	Grade              RiskGrade `json:"grade"`
	Percentage         float64   `json:"percentage"`
	Rationale          string    `json:"rationale"`
	DirectBindEligible bool      `json:"direct_bind_eligible"`
}

// Assessment reconstructs the quote's current assessment, or nil when the
// security step has never been submitted.
func (q *Quote) Assessment() *RiskAssessment {
	if q.RiskGrade == nil || q.RiskPercentage == nil {
		return nil
	}
	rationale := ""
	if q.RiskRationale != nil {
		rationale = *q.RiskRationale
	}
	return &RiskAssessment{
		Grade:              *q.RiskGrade,
		Percentage:         *q.RiskPercentage,
		Rationale:          rationale,
		DirectBindEligible: q.DirectBindEligible,
	}
}

func (q *Quote) ApplyAssessment(a RiskAssessment) {
	grade := a.Grade
	percentage := a.Percentage
	rationale := a.Rationale
	q.RiskGrade = &grade
	q.RiskPercentage = &percentage
	q.RiskRationale = &rationale
	q.DirectBindEligible = a.DirectBindEligible
}
