package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quoting-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PolicyRepository struct {
	db *sqlx.DB
}

func NewPolicyRepository(db *sqlx.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// CreateBound marks the quote policied and inserts the policy in one
// transaction. The quote update is conditional on its expected status, so two
// concurrent bind attempts cannot both succeed; the unique quote_id constraint
// on policy is the backstop. Returns false when the status check loses.
func (r *PolicyRepository) CreateBound(policy *models.Policy, quoteFrom []models.QuoteStatus) (bool, error) {
	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}
	policy.CreatedAt = time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	from := make([]string, len(quoteFrom))
	for i, s := range quoteFrom {
		from[i] = string(s)
	}

	result, err := tx.Exec(
		`UPDATE quote SET status = $1, premium = $2, updated_at = $3 WHERE id = $4 AND status = ANY($5)`,
		models.QuotePolicied, policy.Premium, time.Now(), policy.QuoteID, pq.Array(from),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark quote policied: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	query := `
		INSERT INTO policy (
			id, policy_number, quote_id, customer_id, coverage_tier,
			coverage_snapshot, premium, start_date, end_date, status, created_at
		) VALUES (
			:id, :policy_number, :quote_id, :customer_id, :coverage_tier,
			:coverage_snapshot, :premium, :start_date, :end_date, :status, :created_at
		)`

	if _, err := tx.NamedExec(query, policy); err != nil {
		return false, fmt.Errorf("failed to create policy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit policy binding: %w", err)
	}

	return true, nil
}

func (r *PolicyRepository) GetByID(id uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	query := `SELECT * FROM policy WHERE id = $1`

	err := r.db.Get(&policy, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	return &policy, nil
}

func (r *PolicyRepository) GetByQuoteID(quoteID uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	query := `SELECT * FROM policy WHERE quote_id = $1`

	err := r.db.Get(&policy, query, quoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to get policy by quote: %w", err)
	}

	return &policy, nil
}

func (r *PolicyRepository) GetByCustomerID(customerID string) ([]models.Policy, error) {
	var policies []models.Policy
	query := `SELECT * FROM policy WHERE customer_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&policies, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get policies by customer: %w", err)
	}

	return policies, nil
}

// UpdateStatusIf atomically moves the policy's status when the current status
// is one of the expected values. Returns false when another transition won.
func (r *PolicyRepository) UpdateStatusIf(id uuid.UUID, from []models.PolicyStatus, to models.PolicyStatus) (bool, error) {
	query := `UPDATE policy SET status = $1 WHERE id = $2 AND status = ANY($3)`

	result, err := r.db.Exec(query, to, id, pq.Array(policyStatusStrings(from)))
	if err != nil {
		return false, fmt.Errorf("failed to update policy status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows > 0, nil
}

func policyStatusStrings(statuses []models.PolicyStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// ExpireActiveBefore marks every active policy with an end date before the
// cutoff as expired and returns how many rows changed.
func (r *PolicyRepository) ExpireActiveBefore(cutoff time.Time) (int64, error) {
	query := `UPDATE policy SET status = $1 WHERE status = $2 AND end_date < $3`

	result, err := r.db.Exec(query, models.PolicyExpired, models.PolicyActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire policies: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows, nil
}
