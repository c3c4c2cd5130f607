package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
)

const clarificationColumns = `application_id, request_text, response_text, created_at, updated_at`

type ClarificationRepo struct {
	pool *pgxpool.Pool
}

func NewClarificationRepo(pool *pgxpool.Pool) *ClarificationRepo {
	return &ClarificationRepo{pool: pool}
}

// PutRequest creates the thread or replaces its request. Overwriting clears
// any earlier response, so a re-asked question is pending again.
func (r *ClarificationRepo) PutRequest(ctx context.Context, applicationID uuid.UUID, requestText string) (*domain.ClarificationThread, error) {
	const q = `
		INSERT INTO clarification_requests (application_id, request_text)
		VALUES ($1, $2)
		ON CONFLICT (application_id) DO UPDATE
		SET request_text = EXCLUDED.request_text, response_text = NULL, updated_at = now()
		RETURNING ` + clarificationColumns

	rows, err := r.pool.Query(ctx, q, applicationID, requestText)
	if err != nil {
		return nil, fmt.Errorf("failed to put clarification request: %w", err)
	}

	thread, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.ClarificationThread])
	if err != nil {
		return nil, fmt.Errorf("failed to scan clarification thread: %w", err)
	}
	return &thread, nil
}

func (r *ClarificationRepo) PutResponse(ctx context.Context, applicationID uuid.UUID, responseText string) (*domain.ClarificationThread, error) {
	const q = `
		UPDATE clarification_requests
		SET response_text = $2, updated_at = now()
		WHERE application_id = $1 AND response_text IS NULL
		RETURNING ` + clarificationColumns

	rows, err := r.pool.Query(ctx, q, applicationID, responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to put clarification response: %w", err)
	}

	thread, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.ClarificationThread])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoPendingRequest
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan clarification thread: %w", err)
	}
	return &thread, nil
}

func (r *ClarificationRepo) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*domain.ClarificationThread, error) {
	const q = `SELECT ` + clarificationColumns + ` FROM clarification_requests WHERE application_id = $1`

	rows, err := r.pool.Query(ctx, q, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clarification thread: %w", err)
	}

	thread, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.ClarificationThread])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClarificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan clarification thread: %w", err)
	}
	return &thread, nil
}

func (r *ClarificationRepo) ListPendingByStudent(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	const q = `
		SELECT c.application_id
		FROM clarification_requests c
		JOIN applications a ON a.id = c.application_id
		WHERE a.student_id = $1 AND c.response_text IS NULL
		ORDER BY c.updated_at`

	rows, err := r.pool.Query(ctx, q, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending clarifications: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending clarifications: %w", err)
	}
	return ids, nil
}
