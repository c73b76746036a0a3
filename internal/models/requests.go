package models

import (
	"strings"

	"quoting-service/internal/utils"
)

func isValidCaseDecision(decision CaseDecision) bool {
	switch decision {
	case DecisionApprove, DecisionReject, DecisionNeedsInfo:
		return true
	default:
		return false
	}
}

type CreateQuoteRequest struct {
	CoverageTier   CoverageTier  `json:"coverage_tier"`
	BrokerID       *string       `json:"broker_id,omitempty"`
	CompanyProfile utils.JSONMap `json:"company_profile,omitempty"`
}

func (r CreateQuoteRequest) Validate() error {
	if !IsValidCoverageTier(r.CoverageTier) {
		return utils.ValidationError{Field: "coverage_tier", Message: "must be one of basic, standard, premium"}
	}
	return nil
}

type SaveCompanyStepRequest struct {
	CompanyProfile utils.JSONMap `json:"company_profile"`
}

func (r SaveCompanyStepRequest) Validate() error {
	if len(r.CompanyProfile) == 0 {
		return utils.ValidationError{Field: "company_profile", Message: "is required"}
	}
	if email, ok := r.CompanyProfile["contact_email"].(string); ok && email != "" {
		if _, err := utils.ValidateEmail(email); err != nil {
			return utils.ValidationError{Field: "contact_email", Message: "format incorrect"}
		}
	}
	return nil
}

type SaveRiskProfileStepRequest struct {
	RiskProfileAnswers utils.JSONMap `json:"risk_profile_answers"`
}

func (r SaveRiskProfileStepRequest) Validate() error {
	if len(r.RiskProfileAnswers) == 0 {
		return utils.ValidationError{Field: "risk_profile_answers", Message: "is required"}
	}
	return nil
}

type SubmitSecurityStepRequest struct {
	SecurityAnswers QuestionnaireAnswers `json:"security_answers"`
	AnnualRevenue   float64              `json:"annual_revenue"`
}

func (r SubmitSecurityStepRequest) Validate() error {
	if len(r.SecurityAnswers) == 0 {
		return utils.ValidationError{Field: "security_answers", Message: "is required"}
	}
	if r.AnnualRevenue < 0 {
		return utils.ValidationError{Field: "annual_revenue", Message: "must not be negative"}
	}
	return nil
}

type RecordDecisionRequest struct {
	Decision        CaseDecision `json:"decision"`
	Notes           string       `json:"notes"`
	AdjustedPremium *float64     `json:"adjusted_premium,omitempty"`
}

func (r RecordDecisionRequest) Validate() error {
	if !isValidCaseDecision(r.Decision) {
		return utils.ValidationError{Field: "decision", Message: "must be one of approve, reject, needs_info"}
	}
	if strings.TrimSpace(r.Notes) == "" {
		return utils.ValidationError{Field: "notes", Message: "is required"}
	}
	if r.AdjustedPremium != nil {
		if r.Decision != DecisionApprove {
			return utils.ValidationError{Field: "adjusted_premium", Message: "is only allowed with an approve decision"}
		}
		if *r.AdjustedPremium <= 0 {
			return utils.ValidationError{Field: "adjusted_premium", Message: "must be positive"}
		}
	}
	return nil
}

type SubmitCustomerResponseRequest struct {
	Response string `json:"response"`
}

func (r SubmitCustomerResponseRequest) Validate() error {
	if strings.TrimSpace(r.Response) == "" {
		return utils.ValidationError{Field: "response", Message: "is required"}
	}
	return nil
}

type BindQuoteRequest struct {
	StartDate int64 `json:"start_date"`
}

func (r BindQuoteRequest) Validate() error {
	if r.StartDate <= 0 {
		return utils.ValidationError{Field: "start_date", Message: "must be a unix timestamp"}
	}
	return nil
}
