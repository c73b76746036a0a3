package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"quoting-service/internal/event"
	"quoting-service/internal/models"
	"quoting-service/internal/utils"

	"github.com/google/uuid"
)

// QuoteService drives the proposal lifecycle: intake wizard steps, risk
// scoring on security step submission, and on-demand underwriting case
// creation for quotes that cannot bind directly.
type QuoteService struct {
	quoteRepo QuoteStore
	caseRepo  CaseStore
	scoring   *ScoringService
	cache     AssessmentCacher
	publisher EventPublisher
}

func NewQuoteService(
	quoteRepo QuoteStore,
	caseRepo CaseStore,
	scoring *ScoringService,
	cache AssessmentCacher,
	publisher EventPublisher,
) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		caseRepo:  caseRepo,
		scoring:   scoring,
		cache:     cache,
		publisher: publisher,
	}
}

func (s *QuoteService) CreateQuote(ctx context.Context, customerID string, req models.CreateQuoteRequest) (*models.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quote := &models.Quote{
		ID:             uuid.New(),
		QuoteNumber:    "Q-" + utils.GenerateRandomStringWithLength(10),
		CustomerID:     customerID,
		BrokerID:       req.BrokerID,
		CompanyProfile: req.CompanyProfile,
		CoverageTier:   req.CoverageTier,
		Status:         models.QuoteDraft,
	}

	if err := s.quoteRepo.Create(quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	slog.Info("Quote created",
		"quote_id", quote.ID,
		"quote_number", quote.QuoteNumber,
		"customer_id", customerID,
		"coverage_tier", quote.CoverageTier)

	return quote, nil
}

// getOwned loads a quote and verifies the acting customer owns it.
func (s *QuoteService) getOwned(quoteID uuid.UUID, customerID string) (*models.Quote, error) {
	quote, err := s.quoteRepo.GetByID(quoteID)
	if err != nil {
		return nil, err
	}
	if quote.CustomerID != customerID {
		return nil, models.ErrNotQuoteOwner
	}
	return quote, nil
}

func (s *QuoteService) GetQuoteOwned(ctx context.Context, quoteID uuid.UUID, customerID string) (*models.Quote, error) {
	return s.getOwned(quoteID, customerID)
}

func (s *QuoteService) GetQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	return s.quoteRepo.GetByID(quoteID)
}

func (s *QuoteService) GetQuotesByCustomer(ctx context.Context, customerID string) ([]models.Quote, error) {
	return s.quoteRepo.GetByCustomerID(customerID)
}

func (s *QuoteService) GetAllQuotes(ctx context.Context) ([]models.Quote, error) {
	return s.quoteRepo.GetAll()
}

func (s *QuoteService) GetQuotesByStatus(ctx context.Context, status models.QuoteStatus) ([]models.Quote, error) {
	return s.quoteRepo.GetByStatus(status)
}

// intakeStatuses are the only statuses a wizard-step write may land on. The
// conditional update re-checks them at commit time.
var intakeStatuses = []models.QuoteStatus{models.QuoteDraft, models.QuoteCalculated}

// editableForIntake guards the wizard steps: only draft and calculated quotes
// are re-enterable; everything past pending_underwriting is forward-only.
func editableForIntake(status models.QuoteStatus) bool {
	return status == models.QuoteDraft || status == models.QuoteCalculated
}

// intakeWriteConflict reports the status that beat a stale intake write.
func (s *QuoteService) intakeWriteConflict(quoteID uuid.UUID) error {
	current, err := s.quoteRepo.GetByID(quoteID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: quote is %s", models.ErrInvalidTransition, current.Status)
}

func (s *QuoteService) SaveCompanyStep(ctx context.Context, quoteID uuid.UUID, customerID string, req models.SaveCompanyStepRequest) (*models.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quote, err := s.getOwned(quoteID, customerID)
	if err != nil {
		return nil, err
	}
	if !editableForIntake(quote.Status) {
		return nil, fmt.Errorf("%w: quote is %s", models.ErrInvalidTransition, quote.Status)
	}

	quote.CompanyProfile = req.CompanyProfile
	ok, err := s.quoteRepo.UpdateIf(quote, intakeStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to save company step: %w", err)
	}
	if !ok {
		return nil, s.intakeWriteConflict(quoteID)
	}

	return quote, nil
}

func (s *QuoteService) SaveRiskProfileStep(ctx context.Context, quoteID uuid.UUID, customerID string, req models.SaveRiskProfileStepRequest) (*models.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quote, err := s.getOwned(quoteID, customerID)
	if err != nil {
		return nil, err
	}
	if !editableForIntake(quote.Status) {
		return nil, fmt.Errorf("%w: quote is %s", models.ErrInvalidTransition, quote.Status)
	}

	quote.RiskProfileAnswers = req.RiskProfileAnswers
	ok, err := s.quoteRepo.UpdateIf(quote, intakeStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to save risk profile step: %w", err)
	}
	if !ok {
		return nil, s.intakeWriteConflict(quoteID)
	}

	return quote, nil
}

// SubmitSecurityStep stores the security questionnaire, runs the scoring
// engine and moves the quote to calculated. Resubmission overwrites the prior
// assessment.
func (s *QuoteService) SubmitSecurityStep(ctx context.Context, quoteID uuid.UUID, customerID string, req models.SubmitSecurityStepRequest) (*models.RiskAssessment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quote, err := s.getOwned(quoteID, customerID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionQuote(quote.Status, models.QuoteCalculated) {
		return nil, fmt.Errorf("%w: quote is %s", models.ErrInvalidTransition, quote.Status)
	}

	if err := s.scoring.Catalog().ValidateAnswers(req.SecurityAnswers); err != nil {
		return nil, err
	}

	assessment := s.scoring.Score(req.SecurityAnswers, req.AnnualRevenue)

	quote.SecurityAnswers = req.SecurityAnswers
	quote.AnnualRevenue = req.AnnualRevenue
	quote.ApplyAssessment(assessment)
	quote.Status = models.QuoteCalculated

	ok, err := s.quoteRepo.UpdateIf(quote, intakeStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to save security step: %w", err)
	}
	if !ok {
		return nil, s.intakeWriteConflict(quoteID)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, quote.ID, assessment); err != nil {
			slog.Error("Failed to cache risk assessment", "quote_id", quote.ID, "error", err)
			// A stale cached entry must not outlive the rescore.
			if err := s.cache.Delete(ctx, quote.ID); err != nil {
				slog.Error("Failed to drop stale assessment cache", "quote_id", quote.ID, "error", err)
			}
		}
	}

	slog.Info("Security step scored",
		"quote_id", quote.ID,
		"grade", assessment.Grade,
		"percentage", assessment.Percentage,
		"direct_bind_eligible", assessment.DirectBindEligible)

	return &assessment, nil
}

// GetAssessment returns the quote's current risk assessment, reading through
// the Redis cache when available.
func (s *QuoteService) GetAssessment(ctx context.Context, quoteID uuid.UUID) (*models.RiskAssessment, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, quoteID)
		if err != nil {
			slog.Error("Failed to read assessment cache", "quote_id", quoteID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	quote, err := s.quoteRepo.GetByID(quoteID)
	if err != nil {
		return nil, err
	}

	assessment := quote.Assessment()
	if assessment == nil {
		return nil, fmt.Errorf("quote %s has not been scored yet", quoteID)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, quoteID, *assessment); err != nil {
			slog.Error("Failed to cache risk assessment", "quote_id", quoteID, "error", err)
		}
	}

	return assessment, nil
}

// CreateUnderwritingCaseIfAbsent opens the review case for a quote that
// cannot bind directly. Creation is idempotent: when a case already exists it
// is returned with alreadyExists set instead of an error.
func (s *QuoteService) CreateUnderwritingCaseIfAbsent(ctx context.Context, quoteID uuid.UUID) (*models.UnderwritingCase, bool, error) {
	quote, err := s.quoteRepo.GetByID(quoteID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.caseRepo.GetByQuoteID(quoteID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, models.ErrCaseNotFound) {
		return nil, false, err
	}

	if quote.Assessment() == nil {
		return nil, false, fmt.Errorf("%w: quote has not been scored yet", models.ErrInvalidTransition)
	}
	if quote.DirectBindEligible {
		return nil, false, fmt.Errorf("%w: quote is direct bind eligible, no review required", models.ErrInvalidTransition)
	}

	ok, err := s.quoteRepo.UpdateStatusIf(quoteID, []models.QuoteStatus{models.QuoteCalculated}, models.QuotePendingUnderwriting)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		// Lost a race or the quote moved on; if the winner already created
		// the case, return it.
		if existing, err := s.caseRepo.GetByQuoteID(quoteID); err == nil {
			return existing, true, nil
		}
		current, err := s.quoteRepo.GetByID(quoteID)
		if err != nil {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: quote is %s", models.ErrInvalidTransition, current.Status)
	}

	uwCase := &models.UnderwritingCase{
		ID:      uuid.New(),
		QuoteID: quoteID,
		Status:  models.CasePending,
	}
	if err := s.caseRepo.Create(uwCase); err != nil {
		return nil, false, fmt.Errorf("failed to create underwriting case: %w", err)
	}

	slog.Info("Underwriting case created",
		"case_id", uwCase.ID,
		"quote_id", quoteID,
		"risk_grade", quote.RiskGrade)

	s.publish(ctx, event.QuoteEventModel{
		Type:       event.EventCaseCreated,
		QuoteID:    quoteID.String(),
		CaseID:     uwCase.ID.String(),
		CustomerID: quote.CustomerID,
		Title:      "Quote routed to underwriting",
		Body:       "Your quote requires a manual review by an underwriter.",
	})

	return uwCase, false, nil
}

// publish sends a workflow event best-effort; a broker outage never fails the
// business operation.
func (s *QuoteService) publish(ctx context.Context, evt event.QuoteEventModel) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Error("Failed to publish quote event", "type", evt.Type, "quote_id", evt.QuoteID, "error", err)
	}
}
