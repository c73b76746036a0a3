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

type UnderwritingCaseRepository struct {
	db *sqlx.DB
}

func NewUnderwritingCaseRepository(db *sqlx.DB) *UnderwritingCaseRepository {
	return &UnderwritingCaseRepository{db: db}
}

func (r *UnderwritingCaseRepository) Create(uwCase *models.UnderwritingCase) error {
	if uwCase.ID == uuid.Nil {
		uwCase.ID = uuid.New()
	}
	uwCase.CreatedAt = time.Now()
	uwCase.UpdatedAt = time.Now()

	query := `
		INSERT INTO underwriting_case (
			id, quote_id, status, decision, adjusted_premium,
			decided_by, decided_at, created_at, updated_at
		) VALUES (
			:id, :quote_id, :status, :decision, :adjusted_premium,
			:decided_by, :decided_at, :created_at, :updated_at
		)`

	_, err := r.db.NamedExec(query, uwCase)
	if err != nil {
		return fmt.Errorf("failed to create underwriting case: %w", err)
	}

	return nil
}

func (r *UnderwritingCaseRepository) GetByID(id uuid.UUID) (*models.UnderwritingCase, error) {
	var uwCase models.UnderwritingCase
	query := `SELECT * FROM underwriting_case WHERE id = $1`

	err := r.db.Get(&uwCase, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to get underwriting case: %w", err)
	}

	return &uwCase, nil
}

func (r *UnderwritingCaseRepository) GetByQuoteID(quoteID uuid.UUID) (*models.UnderwritingCase, error) {
	var uwCase models.UnderwritingCase
	query := `SELECT * FROM underwriting_case WHERE quote_id = $1`

	err := r.db.Get(&uwCase, query, quoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to get underwriting case by quote: %w", err)
	}

	return &uwCase, nil
}

func (r *UnderwritingCaseRepository) GetByStatuses(statuses []models.CaseStatus) ([]models.UnderwritingCase, error) {
	var cases []models.UnderwritingCase
	query := `SELECT * FROM underwriting_case WHERE status = ANY($1) ORDER BY created_at ASC`

	err := r.db.Select(&cases, query, pq.Array(caseStatusStrings(statuses)))
	if err != nil {
		return nil, fmt.Errorf("failed to get underwriting cases by status: %w", err)
	}

	return cases, nil
}

// UpdateStatusIf atomically moves the case's status when the current status
// is one of the expected values.
func (r *UnderwritingCaseRepository) UpdateStatusIf(id uuid.UUID, from []models.CaseStatus, to models.CaseStatus) (bool, error) {
	query := `UPDATE underwriting_case SET status = $1, updated_at = $2 WHERE id = $3 AND status = ANY($4)`

	result, err := r.db.Exec(query, to, time.Now(), id, pq.Array(caseStatusStrings(from)))
	if err != nil {
		return false, fmt.Errorf("failed to update case status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows > 0, nil
}

// ResolveIf records a decision and its side fields together with the status
// move in one conditional write. At most one of two concurrent decisions can
// succeed.
func (r *UnderwritingCaseRepository) ResolveIf(
	id uuid.UUID,
	from []models.CaseStatus,
	to models.CaseStatus,
	decision *models.CaseDecision,
	adjustedPremium *float64,
	decidedBy string,
) (bool, error) {
	now := time.Now()
	query := `
		UPDATE underwriting_case SET
			status = $1, decision = $2, adjusted_premium = $3,
			decided_by = $4, decided_at = $5, updated_at = $5
		WHERE id = $6 AND status = ANY($7)`

	result, err := r.db.Exec(query, to, decision, adjustedPremium, decidedBy, now, id, pq.Array(caseStatusStrings(from)))
	if err != nil {
		return false, fmt.Errorf("failed to resolve underwriting case: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows > 0, nil
}

// AddNote appends to the case's note log. Notes are never updated or deleted.
func (r *UnderwritingCaseRepository) AddNote(note *models.CaseNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	note.CreatedAt = time.Now()

	query := `
		INSERT INTO underwriting_case_note (id, case_id, author_id, author_role, body, created_at)
		VALUES (:id, :case_id, :author_id, :author_role, :body, :created_at)`

	_, err := r.db.NamedExec(query, note)
	if err != nil {
		return fmt.Errorf("failed to add case note: %w", err)
	}

	return nil
}

func (r *UnderwritingCaseRepository) GetNotesByCaseID(caseID uuid.UUID) ([]models.CaseNote, error) {
	var notes []models.CaseNote
	query := `SELECT * FROM underwriting_case_note WHERE case_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&notes, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get case notes: %w", err)
	}

	return notes, nil
}

func caseStatusStrings(statuses []models.CaseStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
