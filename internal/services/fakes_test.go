package services

import (
	"context"
	"sync"
	"time"

	"quoting-service/internal/event"
	"quoting-service/internal/models"

	"github.com/google/uuid"
)

// ============================================================================
// IN-MEMORY STORE FAKES
// ============================================================================

type fakeQuoteStore struct {
	mu     sync.Mutex
	quotes map[uuid.UUID]models.Quote
}

func newFakeQuoteStore() *fakeQuoteStore {
	return &fakeQuoteStore{quotes: make(map[uuid.UUID]models.Quote)}
}

func (s *fakeQuoteStore) Create(quote *models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quote.CreatedAt = time.Now()
	quote.UpdatedAt = quote.CreatedAt
	s.quotes[quote.ID] = *quote
	return nil
}

func (s *fakeQuoteStore) GetByID(id uuid.UUID) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quote, ok := s.quotes[id]
	if !ok {
		return nil, models.ErrQuoteNotFound
	}
	return &quote, nil
}

func (s *fakeQuoteStore) GetByCustomerID(customerID string) ([]models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Quote
	for _, q := range s.quotes {
		if q.CustomerID == customerID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeQuoteStore) GetAll() ([]models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Quote
	for _, q := range s.quotes {
		out = append(out, q)
	}
	return out, nil
}

func (s *fakeQuoteStore) GetByStatus(status models.QuoteStatus) ([]models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Quote
	for _, q := range s.quotes {
		if q.Status == status {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeQuoteStore) UpdateIf(quote *models.Quote, expected []models.QuoteStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.quotes[quote.ID]
	if !ok {
		return false, nil
	}
	for _, st := range expected {
		if current.Status == st {
			quote.UpdatedAt = time.Now()
			s.quotes[quote.ID] = *quote
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeQuoteStore) UpdateStatusIf(id uuid.UUID, from []models.QuoteStatus, to models.QuoteStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quote, ok := s.quotes[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if quote.Status == f {
			quote.Status = to
			quote.UpdatedAt = time.Now()
			s.quotes[id] = quote
			return true, nil
		}
	}
	return false, nil
}

type fakeCaseStore struct {
	mu    sync.Mutex
	cases map[uuid.UUID]models.UnderwritingCase
	notes []models.CaseNote
}

func newFakeCaseStore() *fakeCaseStore {
	return &fakeCaseStore{cases: make(map[uuid.UUID]models.UnderwritingCase)}
}

func (s *fakeCaseStore) Create(uwCase *models.UnderwritingCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uwCase.CreatedAt = time.Now()
	uwCase.UpdatedAt = uwCase.CreatedAt
	s.cases[uwCase.ID] = *uwCase
	return nil
}

func (s *fakeCaseStore) GetByID(id uuid.UUID) (*models.UnderwritingCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uwCase, ok := s.cases[id]
	if !ok {
		return nil, models.ErrCaseNotFound
	}
	return &uwCase, nil
}

func (s *fakeCaseStore) GetByQuoteID(quoteID uuid.UUID) (*models.UnderwritingCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cases {
		if c.QuoteID == quoteID {
			uwCase := c
			return &uwCase, nil
		}
	}
	return nil, models.ErrCaseNotFound
}

func (s *fakeCaseStore) GetByStatuses(statuses []models.CaseStatus) ([]models.UnderwritingCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.UnderwritingCase
	for _, c := range s.cases {
		for _, st := range statuses {
			if c.Status == st {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeCaseStore) UpdateStatusIf(id uuid.UUID, from []models.CaseStatus, to models.CaseStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uwCase, ok := s.cases[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if uwCase.Status == f {
			uwCase.Status = to
			uwCase.UpdatedAt = time.Now()
			s.cases[id] = uwCase
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeCaseStore) ResolveIf(id uuid.UUID, from []models.CaseStatus, to models.CaseStatus, decision *models.CaseDecision, adjustedPremium *float64, decidedBy string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uwCase, ok := s.cases[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if uwCase.Status == f {
			now := time.Now()
			uwCase.Status = to
			uwCase.Decision = decision
			uwCase.AdjustedPremium = adjustedPremium
			uwCase.DecidedBy = &decidedBy
			uwCase.DecidedAt = &now
			uwCase.UpdatedAt = now
			s.cases[id] = uwCase
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeCaseStore) AddNote(note *models.CaseNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	note.CreatedAt = time.Now()
	s.notes = append(s.notes, *note)
	return nil
}

func (s *fakeCaseStore) GetNotesByCaseID(caseID uuid.UUID) ([]models.CaseNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CaseNote
	for _, n := range s.notes {
		if n.CaseID == caseID {
			out = append(out, n)
		}
	}
	return out, nil
}

// fakePolicyStore shares the quote store so CreateBound can mirror the
// transactional conditional update the real repository performs.
type fakePolicyStore struct {
	mu       sync.Mutex
	quotes   *fakeQuoteStore
	policies map[uuid.UUID]models.Policy
}

func newFakePolicyStore(quotes *fakeQuoteStore) *fakePolicyStore {
	return &fakePolicyStore{quotes: quotes, policies: make(map[uuid.UUID]models.Policy)}
}

func (s *fakePolicyStore) CreateBound(policy *models.Policy, quoteFrom []models.QuoteStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.quotes.UpdateStatusIf(policy.QuoteID, quoteFrom, models.QuotePolicied)
	if err != nil || !ok {
		return false, err
	}
	if quote, err := s.quotes.GetByID(policy.QuoteID); err == nil {
		premium := policy.Premium
		quote.Premium = &premium
		_, _ = s.quotes.UpdateIf(quote, []models.QuoteStatus{models.QuotePolicied})
	}

	policy.CreatedAt = time.Now()
	s.policies[policy.ID] = *policy
	return true, nil
}

func (s *fakePolicyStore) GetByID(id uuid.UUID) (*models.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy, ok := s.policies[id]
	if !ok {
		return nil, models.ErrPolicyNotFound
	}
	return &policy, nil
}

func (s *fakePolicyStore) GetByQuoteID(quoteID uuid.UUID) (*models.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.policies {
		if p.QuoteID == quoteID {
			policy := p
			return &policy, nil
		}
	}
	return nil, models.ErrPolicyNotFound
}

func (s *fakePolicyStore) GetByCustomerID(customerID string) ([]models.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Policy
	for _, p := range s.policies {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePolicyStore) UpdateStatusIf(id uuid.UUID, from []models.PolicyStatus, to models.PolicyStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy, ok := s.policies[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if policy.Status == f {
			policy.Status = to
			s.policies[id] = policy
			return true, nil
		}
	}
	return false, nil
}

// fakeAssessmentCache stands in for the Redis cache; setErr forces Set
// failures so the stale-entry handling can be exercised.
type fakeAssessmentCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]models.RiskAssessment
	setErr  error
	deletes int
}

func newFakeAssessmentCache() *fakeAssessmentCache {
	return &fakeAssessmentCache{entries: make(map[uuid.UUID]models.RiskAssessment)}
}

func (c *fakeAssessmentCache) Get(ctx context.Context, quoteID uuid.UUID) (*models.RiskAssessment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	assessment, ok := c.entries[quoteID]
	if !ok {
		return nil, nil
	}
	return &assessment, nil
}

func (c *fakeAssessmentCache) Set(ctx context.Context, quoteID uuid.UUID, assessment models.RiskAssessment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[quoteID] = assessment
	return nil
}

func (c *fakeAssessmentCache) Delete(ctx context.Context, quoteID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, quoteID)
	c.deletes++
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event.QuoteEventModel
}

func (p *fakePublisher) Publish(ctx context.Context, evt event.QuoteEventModel) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) published() []event.QuoteEventModel {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.QuoteEventModel, len(p.events))
	copy(out, p.events)
	return out
}

func (p *fakePublisher) lastEventType() event.QuoteEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return ""
	}
	return p.events[len(p.events)-1].Type
}
