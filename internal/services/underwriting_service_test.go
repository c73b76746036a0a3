package services

import (
	"context"
	"testing"

	"quoting-service/internal/event"
	"quoting-service/internal/models"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type underwritingFixture struct {
	*quoteServiceFixture
	service *UnderwritingService
}

func newUnderwritingFixture() *underwritingFixture {
	base := newQuoteServiceFixture()
	return &underwritingFixture{
		quoteServiceFixture: base,
		service:             NewUnderwritingService(base.cases, base.quotes, base.publisher),
	}
}

// openCase creates a scored quote, routes it to review and returns both.
func (f *underwritingFixture) openCase(t *testing.T, customerID string) (*models.Quote, *models.UnderwritingCase) {
	t.Helper()
	quote := f.createQuote(t, customerID)
	f.scoreQuote(t, quote, weakAnswers())
	uwCase, _, err := f.quoteServiceFixture.service.CreateUnderwritingCaseIfAbsent(context.Background(), quote.ID)
	assert.NoError(t, err)
	return quote, uwCase
}

// ============================================================================
// TEST SUITE 1: DECISIONS
// ============================================================================

func TestRecordDecision_Approve(t *testing.T) {
	f := newUnderwritingFixture()
	quote, uwCase := f.openCase(t, "cust-1")
	adjusted := 450_000.0

	decided, err := f.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision:        models.DecisionApprove,
		Notes:           "Compensating controls are adequate for the exposure.",
		AdjustedPremium: &adjusted,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.CaseApproved, decided.Status)
	assert.Equal(t, models.DecisionApprove, *decided.Decision)
	assert.Equal(t, adjusted, *decided.AdjustedPremium)
	assert.Equal(t, "uw-1", *decided.DecidedBy)
	assert.NotNil(t, decided.DecidedAt)

	storedQuote, err := f.quotes.GetByID(quote.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.QuoteApproved, storedQuote.Status, "approval propagates to the quote")

	notes, err := f.cases.GetNotesByCaseID(uwCase.ID)
	assert.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, models.NoteAuthorUnderwriter, notes[0].AuthorRole)

	assert.Equal(t, event.EventDecisionRecorded, f.publisher.lastEventType())
}

func TestRecordDecision_Reject(t *testing.T) {
	f := newUnderwritingFixture()
	quote, uwCase := f.openCase(t, "cust-1")

	decided, err := f.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionReject,
		Notes:    "Unremediated incident history with ongoing losses.",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.CaseRejected, decided.Status)

	storedQuote, err := f.quotes.GetByID(quote.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.QuoteRejected, storedQuote.Status)
}

func TestRecordDecision_AlreadyDecided(t *testing.T) {
	f := newUnderwritingFixture()
	_, uwCase := f.openCase(t, "cust-1")

	_, err := f.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionReject,
		Notes:    "first decision",
	})
	assert.NoError(t, err)

	_, err = f.service.RecordDecision(context.Background(), uwCase.ID, "uw-2", models.RecordDecisionRequest{
		Decision: models.DecisionApprove,
		Notes:    "second decision",
	})
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)

	current, err := f.cases.GetByID(uwCase.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.CaseRejected, current.Status, "the first decision stands")
	assert.Equal(t, "uw-1", *current.DecidedBy)
}

// ============================================================================
// TEST SUITE 2: INFORMATION REQUEST LOOP
// ============================================================================

func TestRecordDecision_NeedsInfo(t *testing.T) {
	f := newUnderwritingFixture()
	quote, uwCase := f.openCase(t, "cust-1")

	parked, err := f.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionNeedsInfo,
		Notes:    "Please share your backup restore test results.",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.CaseNeedsInfo, parked.Status)
	assert.Nil(t, parked.Decision, "needs_info is not a resolution")

	storedQuote, err := f.quotes.GetByID(quote.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.QuotePendingUnderwriting, storedQuote.Status, "the quote stays in underwriting")

	assert.Equal(t, event.EventInformationRequested, f.publisher.lastEventType())
}

func TestSubmitCustomerResponse(t *testing.T) {
	f := newUnderwritingFixture()
	_, uwCase := f.openCase(t, "cust-1")

	_, err := f.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionNeedsInfo,
		Notes:    "Please share your backup restore test results.",
	})
	assert.NoError(t, err)

	responded, err := f.service.SubmitCustomerResponse(context.Background(), uwCase.ID, "cust-1", models.SubmitCustomerResponseRequest{
		Response: "Restore tests run quarterly, last one passed in August.",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.CaseInReview, responded.Status)

	notes, err := f.cases.GetNotesByCaseID(uwCase.ID)
	assert.NoError(t, err)
	assert.Len(t, notes, 2)
	assert.Equal(t, models.NoteAuthorCustomer, notes[1].AuthorRole)

	assert.Equal(t, event.EventCustomerResponded, f.publisher.lastEventType())
}

func TestSubmitCustomerResponse_NoPendingRequest(t *testing.T) {
	f := newUnderwritingFixture()
	_, uwCase := f.openCase(t, "cust-1")

	_, err := f.service.SubmitCustomerResponse(context.Background(), uwCase.ID, "cust-1", models.SubmitCustomerResponseRequest{
		Response: "unsolicited",
	})
	assert.ErrorIs(t, err, models.ErrNoPendingRequest)
}

func TestSubmitCustomerResponse_WrongCustomer(t *testing.T) {
	f := newUnderwritingFixture()
	_, uwCase := f.openCase(t, "cust-1")

	_, err := f.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionNeedsInfo,
		Notes:    "Please clarify your patching cadence.",
	})
	assert.NoError(t, err)

	_, err = f.service.SubmitCustomerResponse(context.Background(), uwCase.ID, "cust-2", models.SubmitCustomerResponseRequest{
		Response: "not my quote",
	})
	assert.ErrorIs(t, err, models.ErrNotQuoteOwner)
}

func TestDecideAfterCustomerResponse(t *testing.T) {
	f := newUnderwritingFixture()
	quote, uwCase := f.openCase(t, "cust-1")

	_, err := f.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionNeedsInfo,
		Notes:    "Need evidence of endpoint coverage.",
	})
	assert.NoError(t, err)

	// A parked case cannot be decided until the customer responds.
	_, err = f.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionApprove,
		Notes:    "premature",
	})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = f.service.SubmitCustomerResponse(context.Background(), uwCase.ID, "cust-1", models.SubmitCustomerResponseRequest{
		Response: "EDR deployed on all endpoints, report attached.",
	})
	assert.NoError(t, err)

	decided, err := f.service.RecordDecision(context.Background(), uwCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionApprove,
		Notes:    "Evidence satisfactory.",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.CaseApproved, decided.Status)

	storedQuote, err := f.quotes.GetByID(quote.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.QuoteApproved, storedQuote.Status)
}

// ============================================================================
// TEST SUITE 3: REVIEW QUEUE
// ============================================================================

func TestGetReviewQueue(t *testing.T) {
	f := newUnderwritingFixture()
	_, openCase := f.openCase(t, "cust-1")
	_, decidedCase := f.openCase(t, "cust-2")

	_, err := f.service.RecordDecision(context.Background(), decidedCase.ID, "uw-1", models.RecordDecisionRequest{
		Decision: models.DecisionReject,
		Notes:    "Exposure outside appetite.",
	})
	assert.NoError(t, err)

	queue, err := f.service.GetReviewQueue(context.Background())
	assert.NoError(t, err)
	assert.Len(t, queue, 1)
	assert.Equal(t, openCase.ID, queue[0].ID, "resolved cases leave the queue")
}
