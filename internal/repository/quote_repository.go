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

type QuoteRepository struct {
	db *sqlx.DB
}

func NewQuoteRepository(db *sqlx.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(quote *models.Quote) error {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	quote.CreatedAt = time.Now()
	quote.UpdatedAt = time.Now()

	query := `
		INSERT INTO quote (
			id, quote_number, customer_id, broker_id,
			company_profile, risk_profile_answers, security_answers, annual_revenue,
			risk_grade, risk_percentage, risk_rationale, direct_bind_eligible,
			coverage_tier, premium, status, created_at, updated_at
		) VALUES (
			:id, :quote_number, :customer_id, :broker_id,
			:company_profile, :risk_profile_answers, :security_answers, :annual_revenue,
			:risk_grade, :risk_percentage, :risk_rationale, :direct_bind_eligible,
			:coverage_tier, :premium, :status, :created_at, :updated_at
		)`

	_, err := r.db.NamedExec(query, quote)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}

	return nil
}

func (r *QuoteRepository) GetByID(id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	query := `SELECT * FROM quote WHERE id = $1`

	err := r.db.Get(&quote, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	return &quote, nil
}

func (r *QuoteRepository) GetByCustomerID(customerID string) ([]models.Quote, error) {
	var quotes []models.Quote
	query := `SELECT * FROM quote WHERE customer_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&quotes, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes by customer: %w", err)
	}

	return quotes, nil
}

func (r *QuoteRepository) GetAll() ([]models.Quote, error) {
	var quotes []models.Quote
	query := `SELECT * FROM quote ORDER BY created_at DESC`

	err := r.db.Select(&quotes, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}

	return quotes, nil
}

func (r *QuoteRepository) GetByStatus(status models.QuoteStatus) ([]models.Quote, error) {
	var quotes []models.Quote
	query := `SELECT * FROM quote WHERE status = $1 ORDER BY created_at DESC`

	err := r.db.Select(&quotes, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes by status: %w", err)
	}

	return quotes, nil
}

// UpdateIf persists the quote's mutable fields, succeeding only when the
// row's current status is one of the expected values. Intake writes go
// through the same conditional discipline as status moves, so a transition
// committed between a read and this write is never silently overwritten.
func (r *QuoteRepository) UpdateIf(quote *models.Quote, expected []models.QuoteStatus) (bool, error) {
	quote.UpdatedAt = time.Now()

	query := `
		UPDATE quote SET
			broker_id = $1, company_profile = $2, risk_profile_answers = $3,
			security_answers = $4, annual_revenue = $5, risk_grade = $6,
			risk_percentage = $7, risk_rationale = $8, direct_bind_eligible = $9,
			coverage_tier = $10, premium = $11, status = $12, updated_at = $13
		WHERE id = $14 AND status = ANY($15)`

	result, err := r.db.Exec(query,
		quote.BrokerID, quote.CompanyProfile, quote.RiskProfileAnswers,
		quote.SecurityAnswers, quote.AnnualRevenue, quote.RiskGrade,
		quote.RiskPercentage, quote.RiskRationale, quote.DirectBindEligible,
		quote.CoverageTier, quote.Premium, quote.Status, quote.UpdatedAt,
		quote.ID, pq.Array(statusStrings(expected)))
	if err != nil {
		return false, fmt.Errorf("failed to update quote: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows > 0, nil
}

// UpdateStatusIf atomically moves the quote's status, succeeding only when the
// current status is one of the expected values. Returns false when another
// transition won.
func (r *QuoteRepository) UpdateStatusIf(id uuid.UUID, from []models.QuoteStatus, to models.QuoteStatus) (bool, error) {
	query := `UPDATE quote SET status = $1, updated_at = $2 WHERE id = $3 AND status = ANY($4)`

	result, err := r.db.Exec(query, to, time.Now(), id, pq.Array(statusStrings(from)))
	if err != nil {
		return false, fmt.Errorf("failed to update quote status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows > 0, nil
}

func statusStrings(statuses []models.QuoteStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
