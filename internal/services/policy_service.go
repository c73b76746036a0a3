package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quoting-service/internal/event"
	"quoting-service/internal/models"
	"quoting-service/internal/utils"

	"github.com/google/uuid"
)

// PolicyService materializes bound policies from eligible quotes.
type PolicyService struct {
	policyRepo PolicyStore
	quoteRepo  QuoteStore
	caseRepo   CaseStore
	publisher  EventPublisher
}

func NewPolicyService(policyRepo PolicyStore, quoteRepo QuoteStore, caseRepo CaseStore, publisher EventPublisher) *PolicyService {
	return &PolicyService{
		policyRepo: policyRepo,
		quoteRepo:  quoteRepo,
		caseRepo:   caseRepo,
		publisher:  publisher,
	}
}

// Bind converts a quote into an active policy. Eligible quotes are either
// direct-bind (grade A/B) or carry an approved underwriting case. Binding is
// exactly-once: a policied quote can never be bound again.
func (s *PolicyService) Bind(ctx context.Context, quoteID uuid.UUID, startDate time.Time) (*models.Policy, error) {
	quote, err := s.quoteRepo.GetByID(quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status == models.QuotePolicied {
		return nil, models.ErrAlreadyBound
	}

	premium, fromStatus, err := s.resolveBinding(quote)
	if err != nil {
		return nil, err
	}

	policy := &models.Policy{
		ID:           uuid.New(),
		PolicyNumber: "P-" + utils.GenerateRandomStringWithLength(10),
		QuoteID:      quote.ID,
		CustomerID:   quote.CustomerID,
		CoverageTier: quote.CoverageTier,
		CoverageSnapshot: utils.JSONMap{
			"coverage_tier":   string(quote.CoverageTier),
			"risk_grade":      quote.RiskGrade,
			"risk_percentage": quote.RiskPercentage,
			"company_profile": map[string]any(quote.CompanyProfile),
		},
		Premium:   premium,
		StartDate: startDate,
		EndDate:   startDate.AddDate(1, 0, 0),
		Status:    models.PolicyActive,
	}

	ok, err := s.policyRepo.CreateBound(policy, []models.QuoteStatus{fromStatus})
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.quoteRepo.GetByID(quoteID)
		if err != nil {
			return nil, err
		}
		if current.Status == models.QuotePolicied {
			return nil, models.ErrAlreadyBound
		}
		return nil, fmt.Errorf("%w: quote is %s", models.ErrNotEligibleToBind, current.Status)
	}

	slog.Info("Policy bound",
		"policy_id", policy.ID,
		"policy_number", policy.PolicyNumber,
		"quote_id", quote.ID,
		"premium", policy.Premium,
		"start_date", policy.StartDate,
		"end_date", policy.EndDate)

	s.publish(ctx, event.QuoteEventModel{
		Type:       event.EventPolicyBound,
		QuoteID:    quote.ID.String(),
		CustomerID: quote.CustomerID,
		Title:      "Policy bound",
		Body:       fmt.Sprintf("Policy %s is active from %s.", policy.PolicyNumber, policy.StartDate.Format("2006-01-02")),
		Data:       map[string]any{"policy_id": policy.ID.String(), "premium": policy.Premium},
	})

	return policy, nil
}

// resolveBinding checks bind eligibility and picks the premium: the
// underwriter's adjusted premium when one was recorded, else the fixed price
// for the quote's coverage tier.
func (s *PolicyService) resolveBinding(quote *models.Quote) (float64, models.QuoteStatus, error) {
	tierPremium, err := models.PremiumForCoverageTier(quote.CoverageTier)
	if err != nil {
		return 0, "", err
	}

	if quote.DirectBindEligible {
		if quote.Status != models.QuoteCalculated {
			return 0, "", fmt.Errorf("%w: quote is %s", models.ErrNotEligibleToBind, quote.Status)
		}
		return tierPremium, models.QuoteCalculated, nil
	}

	uwCase, err := s.caseRepo.GetByQuoteID(quote.ID)
	if err != nil {
		if errors.Is(err, models.ErrCaseNotFound) {
			return 0, "", models.ErrNotEligibleToBind
		}
		return 0, "", err
	}
	if uwCase.Decision == nil || *uwCase.Decision != models.DecisionApprove {
		return 0, "", models.ErrNotEligibleToBind
	}

	premium := tierPremium
	if uwCase.AdjustedPremium != nil {
		premium = *uwCase.AdjustedPremium
	}
	return premium, models.QuoteApproved, nil
}

// CancelPolicy deactivates the policy bound to the quote. Only active policies
// can be cancelled; a cancelled or expired policy conflicts.
func (s *PolicyService) CancelPolicy(ctx context.Context, quoteID uuid.UUID) (*models.Policy, error) {
	policy, err := s.policyRepo.GetByQuoteID(quoteID)
	if err != nil {
		return nil, err
	}

	ok, err := s.policyRepo.UpdateStatusIf(policy.ID, []models.PolicyStatus{models.PolicyActive}, models.PolicyCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.policyRepo.GetByID(policy.ID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: policy is %s", models.ErrInvalidTransition, current.Status)
	}
	policy.Status = models.PolicyCancelled

	slog.Info("Policy cancelled",
		"policy_id", policy.ID,
		"policy_number", policy.PolicyNumber,
		"quote_id", quoteID)

	s.publish(ctx, event.QuoteEventModel{
		Type:       event.EventPolicyCancelled,
		QuoteID:    quoteID.String(),
		CustomerID: policy.CustomerID,
		Title:      "Policy cancelled",
		Body:       fmt.Sprintf("Policy %s has been cancelled.", policy.PolicyNumber),
		Data:       map[string]any{"policy_id": policy.ID.String()},
	})

	return policy, nil
}

func (s *PolicyService) GetPolicy(ctx context.Context, policyID uuid.UUID) (*models.Policy, error) {
	return s.policyRepo.GetByID(policyID)
}

func (s *PolicyService) GetPolicyByQuote(ctx context.Context, quoteID uuid.UUID) (*models.Policy, error) {
	return s.policyRepo.GetByQuoteID(quoteID)
}

func (s *PolicyService) GetPoliciesByCustomer(ctx context.Context, customerID string) ([]models.Policy, error) {
	return s.policyRepo.GetByCustomerID(customerID)
}

func (s *PolicyService) publish(ctx context.Context, evt event.QuoteEventModel) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Error("Failed to publish quote event", "type", evt.Type, "quote_id", evt.QuoteID, "error", err)
	}
}
