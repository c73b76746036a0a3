package services

import (
	"context"
	"fmt"
	"log/slog"

	"quoting-service/internal/event"
	"quoting-service/internal/models"

	"github.com/google/uuid"
)

// UnderwritingService coordinates the human review workflow: underwriter
// decisions and the information request/response loop with the customer.
type UnderwritingService struct {
	caseRepo  CaseStore
	quoteRepo QuoteStore
	publisher EventPublisher
}

func NewUnderwritingService(caseRepo CaseStore, quoteRepo QuoteStore, publisher EventPublisher) *UnderwritingService {
	return &UnderwritingService{
		caseRepo:  caseRepo,
		quoteRepo: quoteRepo,
		publisher: publisher,
	}
}

// Statuses from which a decision may be recorded. Both mean "awaiting a human
// decision".
var decidableStatuses = []models.CaseStatus{models.CasePending, models.CaseInReview}

// RecordDecision applies an underwriter's decision to a case. Approve and
// reject resolve the case and propagate to the quote; needs_info parks the
// case until the customer responds. Deciding an already-resolved case fails
// with ErrAlreadyDecided and changes nothing.
func (s *UnderwritingService) RecordDecision(ctx context.Context, caseID uuid.UUID, underwriterID string, req models.RecordDecisionRequest) (*models.UnderwritingCase, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	uwCase, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return nil, err
	}

	var ok bool
	switch req.Decision {
	case models.DecisionNeedsInfo:
		ok, err = s.caseRepo.UpdateStatusIf(caseID, decidableStatuses, models.CaseNeedsInfo)
	case models.DecisionApprove:
		decision := models.DecisionApprove
		ok, err = s.caseRepo.ResolveIf(caseID, decidableStatuses, models.CaseApproved, &decision, req.AdjustedPremium, underwriterID)
	case models.DecisionReject:
		decision := models.DecisionReject
		ok, err = s.caseRepo.ResolveIf(caseID, decidableStatuses, models.CaseRejected, &decision, nil, underwriterID)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.caseRepo.GetByID(caseID)
		if err != nil {
			return nil, err
		}
		if models.IsTerminalCaseStatus(current.Status) {
			return nil, models.ErrAlreadyDecided
		}
		return nil, fmt.Errorf("%w: case is %s", models.ErrInvalidTransition, current.Status)
	}

	note := &models.CaseNote{
		CaseID:     caseID,
		AuthorID:   underwriterID,
		AuthorRole: models.NoteAuthorUnderwriter,
		Body:       req.Notes,
	}
	if err := s.caseRepo.AddNote(note); err != nil {
		return nil, fmt.Errorf("failed to append decision note: %w", err)
	}

	// Propagate resolutions to the quote lifecycle.
	switch req.Decision {
	case models.DecisionApprove:
		if err := s.moveQuote(uwCase.QuoteID, models.QuoteApproved); err != nil {
			return nil, err
		}
	case models.DecisionReject:
		if err := s.moveQuote(uwCase.QuoteID, models.QuoteRejected); err != nil {
			return nil, err
		}
	}

	updated, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return nil, err
	}

	slog.Info("Underwriting decision recorded",
		"case_id", caseID,
		"quote_id", uwCase.QuoteID,
		"decision", req.Decision,
		"underwriter_id", underwriterID)

	evtType := event.EventDecisionRecorded
	title := "Underwriting decision recorded"
	if req.Decision == models.DecisionNeedsInfo {
		evtType = event.EventInformationRequested
		title = "Underwriter requested more information"
	}
	s.publish(ctx, event.QuoteEventModel{
		Type:    evtType,
		QuoteID: uwCase.QuoteID.String(),
		CaseID:  caseID.String(),
		Title:   title,
		Body:    req.Notes,
		Data:    map[string]any{"decision": string(req.Decision)},
	})

	return updated, nil
}

func (s *UnderwritingService) moveQuote(quoteID uuid.UUID, to models.QuoteStatus) error {
	ok, err := s.quoteRepo.UpdateStatusIf(quoteID, []models.QuoteStatus{models.QuotePendingUnderwriting}, to)
	if err != nil {
		return err
	}
	if !ok {
		slog.Error("Quote did not follow its underwriting case", "quote_id", quoteID, "target_status", to)
		return fmt.Errorf("%w: quote could not move to %s", models.ErrInvalidTransition, to)
	}
	return nil
}

// SubmitCustomerResponse appends the customer's answer to the note log and
// returns the case to review. Only valid while an information request is
// pending.
func (s *UnderwritingService) SubmitCustomerResponse(ctx context.Context, caseID uuid.UUID, customerID string, req models.SubmitCustomerResponseRequest) (*models.UnderwritingCase, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	uwCase, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return nil, err
	}

	quote, err := s.quoteRepo.GetByID(uwCase.QuoteID)
	if err != nil {
		return nil, err
	}
	if quote.CustomerID != customerID {
		return nil, models.ErrNotQuoteOwner
	}

	ok, err := s.caseRepo.UpdateStatusIf(caseID, []models.CaseStatus{models.CaseNeedsInfo}, models.CaseInReview)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrNoPendingRequest
	}

	note := &models.CaseNote{
		CaseID:     caseID,
		AuthorID:   customerID,
		AuthorRole: models.NoteAuthorCustomer,
		Body:       req.Response,
	}
	if err := s.caseRepo.AddNote(note); err != nil {
		return nil, fmt.Errorf("failed to append customer response: %w", err)
	}

	updated, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return nil, err
	}

	slog.Info("Customer response submitted",
		"case_id", caseID,
		"quote_id", uwCase.QuoteID,
		"customer_id", customerID)

	s.publish(ctx, event.QuoteEventModel{
		Type:       event.EventCustomerResponded,
		QuoteID:    uwCase.QuoteID.String(),
		CaseID:     caseID.String(),
		CustomerID: customerID,
		Title:      "Customer responded to information request",
		Body:       req.Response,
	})

	return updated, nil
}

func (s *UnderwritingService) GetCase(ctx context.Context, caseID uuid.UUID) (*models.UnderwritingCase, []models.CaseNote, error) {
	uwCase, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return nil, nil, err
	}

	notes, err := s.caseRepo.GetNotesByCaseID(caseID)
	if err != nil {
		return nil, nil, err
	}

	return uwCase, notes, nil
}

func (s *UnderwritingService) GetCaseByQuote(ctx context.Context, quoteID uuid.UUID) (*models.UnderwritingCase, error) {
	return s.caseRepo.GetByQuoteID(quoteID)
}

// GetReviewQueue returns the open cases awaiting underwriter attention.
func (s *UnderwritingService) GetReviewQueue(ctx context.Context) ([]models.UnderwritingCase, error) {
	return s.caseRepo.GetByStatuses([]models.CaseStatus{models.CasePending, models.CaseInReview, models.CaseNeedsInfo})
}

func (s *UnderwritingService) publish(ctx context.Context, evt event.QuoteEventModel) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Error("Failed to publish quote event", "type", evt.Type, "case_id", evt.CaseID, "error", err)
	}
}
