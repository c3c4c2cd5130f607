package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
)

const openingColumns = `id, company_id, title, description, deadline, published, created_at, updated_at`

type OpeningRepo struct {
	pool *pgxpool.Pool
}

func NewOpeningRepo(pool *pgxpool.Pool) *OpeningRepo {
	return &OpeningRepo{pool: pool}
}

func (r *OpeningRepo) Create(ctx context.Context, companyID uuid.UUID, title, description string, deadline time.Time) (*domain.Opening, error) {
	const q = `
		INSERT INTO openings (company_id, title, description, deadline)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + openingColumns

	rows, err := r.pool.Query(ctx, q, companyID, title, description, deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to create opening: %w", err)
	}

	opening, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Opening])
	if err != nil {
		return nil, fmt.Errorf("failed to scan opening: %w", err)
	}
	return &opening, nil
}

func (r *OpeningRepo) Close(ctx context.Context, openingID, companyID uuid.UUID) (*domain.Opening, error) {
	const q = `
		UPDATE openings
		SET published = FALSE, updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + openingColumns

	rows, err := r.pool.Query(ctx, q, openingID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to close opening: %w", err)
	}

	opening, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Opening])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOpeningNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan opening: %w", err)
	}
	return &opening, nil
}

func (r *OpeningRepo) GetByID(ctx context.Context, openingID uuid.UUID) (*domain.Opening, error) {
	const q = `SELECT ` + openingColumns + ` FROM openings WHERE id = $1`

	rows, err := r.pool.Query(ctx, q, openingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get opening: %w", err)
	}

	opening, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Opening])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOpeningNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan opening: %w", err)
	}
	return &opening, nil
}

func (r *OpeningRepo) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Opening, error) {
	const q = `
		SELECT o.id, o.company_id, o.title, o.description, o.deadline, o.published, o.created_at, o.updated_at
		FROM openings o
		JOIN subscriptions s ON s.company_id = o.company_id
		WHERE s.student_id = $1 AND o.published
		ORDER BY o.created_at DESC`

	return r.list(ctx, q, studentID)
}

func (r *OpeningRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Opening, error) {
	const q = `
		SELECT ` + openingColumns + `
		FROM openings
		WHERE company_id = $1
		ORDER BY created_at DESC`

	return r.list(ctx, q, companyID)
}

func (r *OpeningRepo) ListAll(ctx context.Context) ([]domain.Opening, error) {
	const q = `SELECT ` + openingColumns + ` FROM openings ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *OpeningRepo) list(ctx context.Context, q string, args ...any) ([]domain.Opening, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list openings: %w", err)
	}

	openings, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Opening])
	if err != nil {
		return nil, fmt.Errorf("failed to scan openings: %w", err)
	}
	return openings, nil
}
