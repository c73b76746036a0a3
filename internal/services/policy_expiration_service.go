package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PolicyExpirer is the slice of the policy repository the sweep needs.
type PolicyExpirer interface {
	ExpireActiveBefore(cutoff time.Time) (int64, error)
}

// PolicyExpirationService moves active policies past their end date to
// expired. It runs as a scheduled background job.
type PolicyExpirationService struct {
	policyRepo PolicyExpirer
	stats      *ExpirationStats
}

// ExpirationStats tracks sweep statistics
type ExpirationStats struct {
	TotalExpired  int64
	FailedSweeps  int64
	LastProcessed time.Time
	mu            sync.RWMutex
}

func NewPolicyExpirationService(policyRepo PolicyExpirer) *PolicyExpirationService {
	return &PolicyExpirationService{
		policyRepo: policyRepo,
		stats: &ExpirationStats{
			LastProcessed: time.Now(),
		},
	}
}

// Sweep expires every active policy whose end date has passed. Safe to run
// concurrently: the status update is conditional on the policy still being
// active.
func (s *PolicyExpirationService) Sweep(ctx context.Context) error {
	expired, err := s.policyRepo.ExpireActiveBefore(time.Now().UTC())
	if err != nil {
		s.recordSweep(0, true)
		return fmt.Errorf("failed to expire policies: %w", err)
	}

	s.recordSweep(expired, false)
	if expired > 0 {
		slog.Info("Expired policies past end date", "count", expired)
	}
	return nil
}

func (s *PolicyExpirationService) recordSweep(expired int64, failed bool) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	s.stats.LastProcessed = time.Now()
	s.stats.TotalExpired += expired
	if failed {
		s.stats.FailedSweeps++
	}
}

// GetStats returns current sweep statistics
func (s *PolicyExpirationService) GetStats() (totalExpired int64, failedSweeps int64, lastProcessed time.Time) {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()
	return s.stats.TotalExpired, s.stats.FailedSweeps, s.stats.LastProcessed
}
