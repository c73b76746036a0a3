package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"quoting-service/internal/event"
	"quoting-service/internal/models"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type policyFixture struct {
	*underwritingFixture
	service  *PolicyService
	policies *fakePolicyStore
}

func newPolicyFixture() *policyFixture {
	base := newUnderwritingFixture()
	policies := newFakePolicyStore(base.quotes)
	return &policyFixture{
		underwritingFixture: base,
		service:             NewPolicyService(policies, base.quotes, base.cases, base.publisher),
		policies:            policies,
	}
}

var testStartDate = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

// ============================================================================
// TEST SUITE 1: DIRECT BIND
// ============================================================================

func TestBind_DirectBindEligible(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")
	f.scoreQuote(t, quote, baseCleanAnswers())

	policy, err := f.service.Bind(context.Background(), quote.ID, testStartDate)

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(policy.PolicyNumber, "P-"))
	assert.Equal(t, models.PolicyActive, policy.Status)
	assert.Equal(t, 250_000.0, policy.Premium, "standard tier price applies without an adjustment")
	assert.Equal(t, testStartDate, policy.StartDate)
	assert.Equal(t, testStartDate.AddDate(1, 0, 0), policy.EndDate)

	storedQuote, err := f.quotes.GetByID(quote.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.QuotePolicied, storedQuote.Status)

	assert.Equal(t, event.EventPolicyBound, f.publisher.lastEventType())
}

func TestBind_Idempotence(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")
	f.scoreQuote(t, quote, baseCleanAnswers())

	_, err := f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.NoError(t, err)

	_, err = f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.ErrorIs(t, err, models.ErrAlreadyBound)

	policies, err := f.policies.GetByCustomerID("cust-1")
	assert.NoError(t, err)
	assert.Len(t, policies, 1, "a quote binds exactly once")
}

func TestBind_NotEligibleWithoutApproval(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")
	f.scoreQuote(t, quote, weakAnswers())

	// Grade C, no underwriting case yet.
	_, err := f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.ErrorIs(t, err, models.ErrNotEligibleToBind)

	// Case open but undecided.
	uwCase, _, err := f.quoteServiceFixture.service.CreateUnderwritingCaseIfAbsent(context.Background(), quote.ID)
	assert.NoError(t, err)
	_, err = f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.ErrorIs(t, err, models.ErrNotEligibleToBind)

	// Rejected case never becomes bindable.
	_, err = f.underwritingFixture.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionReject,
		Notes:    "Out of appetite.",
	})
	assert.NoError(t, err)
	_, err = f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.ErrorIs(t, err, models.ErrNotEligibleToBind)
}

func TestBind_UnscoredDraft(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")

	_, err := f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.ErrorIs(t, err, models.ErrNotEligibleToBind)
}

// ============================================================================
// TEST SUITE 2: BIND AFTER UNDERWRITING
// ============================================================================

func TestBind_ApprovedWithAdjustedPremium(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")
	f.scoreQuote(t, quote, weakAnswers())

	uwCase, _, err := f.quoteServiceFixture.service.CreateUnderwritingCaseIfAbsent(context.Background(), quote.ID)
	assert.NoError(t, err)

	adjusted := 450_000.0
	_, err = f.underwritingFixture.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision:        models.DecisionApprove,
		Notes:           "Approved with a surcharge for the EOL systems.",
		AdjustedPremium: &adjusted,
	})
	assert.NoError(t, err)

	policy, err := f.service.Bind(context.Background(), quote.ID, testStartDate)

	assert.NoError(t, err)
	assert.Equal(t, adjusted, policy.Premium, "the underwriter's premium overrides the tier price")

	storedQuote, err := f.quotes.GetByID(quote.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.QuotePolicied, storedQuote.Status)
	assert.Equal(t, adjusted, *storedQuote.Premium)
}

func TestBind_ApprovedWithoutAdjustment(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")
	f.scoreQuote(t, quote, weakAnswers())

	uwCase, _, err := f.quoteServiceFixture.service.CreateUnderwritingCaseIfAbsent(context.Background(), quote.ID)
	assert.NoError(t, err)

	_, err = f.underwritingFixture.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionApprove,
		Notes:    "Approved at list price.",
	})
	assert.NoError(t, err)

	policy, err := f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.NoError(t, err)
	assert.Equal(t, 250_000.0, policy.Premium)
}

func TestBind_SnapshotCarriesRiskProfile(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")
	_, err := f.quoteServiceFixture.service.SaveCompanyStep(context.Background(), quote.ID, "cust-1", models.SaveCompanyStepRequest{
		CompanyProfile: map[string]interface{}{"name": "Acme GmbH", "industry": "manufacturing"},
	})
	assert.NoError(t, err)
	f.scoreQuote(t, quote, baseCleanAnswers())

	policy, err := f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.NoError(t, err)

	assert.Equal(t, "standard", policy.CoverageSnapshot["coverage_tier"])
	profile, ok := policy.CoverageSnapshot["company_profile"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "Acme GmbH", profile["name"])
}

// ============================================================================
// TEST SUITE 3: CANCELLATION
// ============================================================================

func TestCancelPolicy(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")
	f.scoreQuote(t, quote, baseCleanAnswers())

	bound, err := f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.NoError(t, err)

	cancelled, err := f.service.CancelPolicy(context.Background(), quote.ID)

	assert.NoError(t, err)
	assert.Equal(t, models.PolicyCancelled, cancelled.Status)

	stored, err := f.policies.GetByID(bound.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PolicyCancelled, stored.Status)

	assert.Equal(t, event.EventPolicyCancelled, f.publisher.lastEventType())
}

func TestCancelPolicy_AlreadyCancelled(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")
	f.scoreQuote(t, quote, baseCleanAnswers())

	_, err := f.service.Bind(context.Background(), quote.ID, testStartDate)
	assert.NoError(t, err)

	_, err = f.service.CancelPolicy(context.Background(), quote.ID)
	assert.NoError(t, err)

	_, err = f.service.CancelPolicy(context.Background(), quote.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "only active policies can be cancelled")
}

func TestCancelPolicy_NoPolicy(t *testing.T) {
	f := newPolicyFixture()
	quote := f.createQuote(t, "cust-1")

	_, err := f.service.CancelPolicy(context.Background(), quote.ID)
	assert.ErrorIs(t, err, models.ErrPolicyNotFound)
}

// ============================================================================
// TEST SUITE 4: FULL WORKFLOW
// ============================================================================

func TestFullUnderwritingWorkflow(t *testing.T) {
	f := newPolicyFixture()
	ctx := context.Background()

	quote := f.createQuote(t, "cust-1")
	assessment := f.scoreQuote(t, quote, weakAnswers())
	assert.Equal(t, models.GradeC, assessment.Grade)

	uwCase, _, err := f.quoteServiceFixture.service.CreateUnderwritingCaseIfAbsent(ctx, quote.ID)
	assert.NoError(t, err)

	_, err = f.underwritingFixture.service.RecordDecision(ctx, uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionNeedsInfo,
		Notes:    "Provide your incident response retainer agreement.",
	})
	assert.NoError(t, err)

	_, err = f.underwritingFixture.service.SubmitCustomerResponse(ctx, uwCase.ID, "cust-1", models.SubmitCustomerResponseRequest{
		Response: "Retainer with a national IR firm, copy attached.",
	})
	assert.NoError(t, err)

	adjusted := 450_000.0
	_, err = f.underwritingFixture.service.RecordDecision(ctx, uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision:        models.DecisionApprove,
		Notes:           "Approved with surcharge.",
		AdjustedPremium: &adjusted,
	})
	assert.NoError(t, err)

	policy, err := f.service.Bind(ctx, quote.ID, testStartDate)
	assert.NoError(t, err)
	assert.Equal(t, adjusted, policy.Premium)

	types := make([]event.QuoteEventType, 0, 4)
	for _, evt := range f.publisher.published() {
		types = append(types, evt.Type)
	}
	assert.Equal(t, []event.QuoteEventType{
		event.EventCaseCreated,
		event.EventInformationRequested,
		event.EventCustomerResponded,
		event.EventDecisionRecorded,
		event.EventPolicyBound,
	}, types)
}
