package services

import (
	"context"

	"quoting-service/internal/event"
	"quoting-service/internal/models"

	"github.com/google/uuid"
)

// Store interfaces satisfied by the sqlx repositories. Services depend on
// these so the state machines can be exercised against in-memory fakes.

type QuoteStore interface {
	Create(quote *models.Quote) error
	GetByID(id uuid.UUID) (*models.Quote, error)
	GetByCustomerID(customerID string) ([]models.Quote, error)
	GetAll() ([]models.Quote, error)
	GetByStatus(status models.QuoteStatus) ([]models.Quote, error)
	UpdateIf(quote *models.Quote, expected []models.QuoteStatus) (bool, error)
	UpdateStatusIf(id uuid.UUID, from []models.QuoteStatus, to models.QuoteStatus) (bool, error)
}

type CaseStore interface {
	Create(uwCase *models.UnderwritingCase) error
	GetByID(id uuid.UUID) (*models.UnderwritingCase, error)
	GetByQuoteID(quoteID uuid.UUID) (*models.UnderwritingCase, error)
	GetByStatuses(statuses []models.CaseStatus) ([]models.UnderwritingCase, error)
	UpdateStatusIf(id uuid.UUID, from []models.CaseStatus, to models.CaseStatus) (bool, error)
	ResolveIf(id uuid.UUID, from []models.CaseStatus, to models.CaseStatus, decision *models.CaseDecision, adjustedPremium *float64, decidedBy string) (bool, error)
	AddNote(note *models.CaseNote) error
	GetNotesByCaseID(caseID uuid.UUID) ([]models.CaseNote, error)
}

type PolicyStore interface {
	CreateBound(policy *models.Policy, quoteFrom []models.QuoteStatus) (bool, error)
	GetByID(id uuid.UUID) (*models.Policy, error)
	GetByQuoteID(quoteID uuid.UUID) (*models.Policy, error)
	GetByCustomerID(customerID string) ([]models.Policy, error)
	UpdateStatusIf(id uuid.UUID, from []models.PolicyStatus, to models.PolicyStatus) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, evt event.QuoteEventModel) error
}

// AssessmentCacher is satisfied by the Redis-backed AssessmentCache.
type AssessmentCacher interface {
	Get(ctx context.Context, quoteID uuid.UUID) (*models.RiskAssessment, error)
	Set(ctx context.Context, quoteID uuid.UUID, assessment models.RiskAssessment) error
	Delete(ctx context.Context, quoteID uuid.UUID) error
}
