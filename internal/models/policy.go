package models

import (
	"fmt"
	"time"

	"quoting-service/internal/utils"

	"github.com/google/uuid"
)

// ============================================================================
// POLICY (BOUND CONTRACT)
// ============================================================================

type Policy struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	PolicyNumber     string        `json:"policy_number" db:"policy_number"`
	QuoteID          uuid.UUID     `json:"quote_id" db:"quote_id"`
	CustomerID       string        `json:"customer_id" db:"customer_id"`
	CoverageTier     CoverageTier  `json:"coverage_tier" db:"coverage_tier"`
	CoverageSnapshot utils.JSONMap `json:"coverage_snapshot" db:"coverage_snapshot"`
	Premium          float64       `json:"premium" db:"premium"`
	StartDate        time.Time     `json:"start_date" db:"start_date"`
	EndDate          time.Time     `json:"end_date" db:"end_date"`
	Status           PolicyStatus  `json:"status" db:"status"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
}

// Fixed annual premium price list per coverage tier. Premiums are not
// computed from first principles; an underwriter's adjusted premium
// overrides these at bind time.
var coverageTierPremiums = map[CoverageTier]float64{
	CoverageBasic:    120_000,
	CoverageStandard: 250_000,
	CoveragePremium:  500_000,
}

func PremiumForCoverageTier(tier CoverageTier) (float64, error) {
	premium, ok := coverageTierPremiums[tier]
	if !ok {
		return 0, fmt.Errorf("unknown coverage tier %q", tier)
	}
	return premium, nil
}

func IsValidCoverageTier(tier CoverageTier) bool {
	_, ok := coverageTierPremiums[tier]
	return ok
}
