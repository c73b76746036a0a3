package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// UNDERWRITING CASE (REVIEW WORKFLOW, 1:1 WITH QUOTE)
// ============================================================================

// UnderwritingCase is created at most once per quote, only when the quote is
// not direct-bind eligible. It is an audit record and is never deleted.
type UnderwritingCase struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	QuoteID         uuid.UUID     `json:"quote_id" db:"quote_id"`
	Status          CaseStatus    `json:"status" db:"status"`
	Decision        *CaseDecision `json:"decision,omitempty" db:"decision"`
	AdjustedPremium *float64      `json:"adjusted_premium,omitempty" db:"adjusted_premium"`
	DecidedBy       *string       `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt       *time.Time    `json:"decided_at,omitempty" db:"decided_at"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// CaseNote is one entry in the case's append-only note log. The log carries
// underwriter decisions, information requests and customer responses.
type CaseNote struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	CaseID     uuid.UUID      `json:"case_id" db:"case_id"`
	AuthorID   string         `json:"author_id" db:"author_id"`
	AuthorRole NoteAuthorRole `json:"author_role" db:"author_role"`
	Body       string         `json:"body" db:"body"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}
