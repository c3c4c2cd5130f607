package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
)

const applicationColumns = `id, student_id, company_id, opening_id, stage, essay, created_at, updated_at`

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

// Create inserts the application only when the student subscribes to the
// company and holds no rejected application there. Both preconditions are
// evaluated inside the insert itself, so concurrent rejections cannot slip
// a new application past the lock.
func (r *ApplicationRepo) Create(ctx context.Context, studentID, companyID, openingID uuid.UUID, essay string) (*domain.Application, error) {
	const q = `
		INSERT INTO applications (student_id, company_id, opening_id, essay)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (
			SELECT 1 FROM subscriptions WHERE student_id = $1 AND company_id = $2
		) AND NOT EXISTS (
			SELECT 1 FROM applications WHERE student_id = $1 AND company_id = $2 AND stage = 'rejected'
		)
		RETURNING ` + applicationColumns

	rows, err := r.pool.Query(ctx, q, studentID, companyID, openingID, essay)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	app, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Application])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.createPreconditionError(ctx, studentID, companyID)
	}
	if isUniqueViolation(err) {
		// The (student_id, opening_id) unique index fired: a previous
		// application to this opening exists, whatever its outcome.
		return nil, domain.ErrAlreadyApplied
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &app, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// createPreconditionError re-checks which gate blocked the insert so the
// caller gets the precise sentinel.
func (r *ApplicationRepo) createPreconditionError(ctx context.Context, studentID, companyID uuid.UUID) error {
	const q = `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE student_id = $1 AND company_id = $2)`

	var subscribed bool
	if err := r.pool.QueryRow(ctx, q, studentID, companyID).Scan(&subscribed); err != nil {
		return fmt.Errorf("failed to check application preconditions: %w", err)
	}
	if !subscribed {
		return domain.ErrNotSubscribed
	}
	return domain.ErrRejectionLocked
}

func (r *ApplicationRepo) GetByID(ctx context.Context, applicationID uuid.UUID) (*domain.Application, error) {
	const q = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	rows, err := r.pool.Query(ctx, q, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	app, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Application])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &app, nil
}

// UpdateStage moves the application from one stage to another with a
// compare-and-swap on the from stage. Concurrent writers race on the same
// row; exactly one wins and the rest see ErrStageConflict.
func (r *ApplicationRepo) UpdateStage(ctx context.Context, applicationID uuid.UUID, from, to domain.Stage) (*domain.Application, error) {
	const q = `
		UPDATE applications
		SET stage = $3, updated_at = now()
		WHERE id = $1 AND stage = $2
		RETURNING ` + applicationColumns

	rows, err := r.pool.Query(ctx, q, applicationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}

	app, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Application])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.stageConflictError(ctx, applicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &app, nil
}

func (r *ApplicationRepo) stageConflictError(ctx context.Context, applicationID uuid.UUID) error {
	const q = `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, q, applicationID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check application existence: %w", err)
	}
	if !exists {
		return domain.ErrApplicationNotFound
	}
	return domain.ErrStageConflict
}

func (r *ApplicationRepo) ForceStage(ctx context.Context, applicationID uuid.UUID, to domain.Stage) (*domain.Application, error) {
	const q = `
		UPDATE applications
		SET stage = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + applicationColumns

	rows, err := r.pool.Query(ctx, q, applicationID, to)
	if err != nil {
		return nil, fmt.Errorf("failed to force stage: %w", err)
	}

	app, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Application])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &app, nil
}

func (r *ApplicationRepo) UpdateEssay(ctx context.Context, applicationID uuid.UUID, essay string) (*domain.Application, error) {
	const q = `
		UPDATE applications
		SET essay = $2, updated_at = now()
		WHERE id = $1 AND stage = 'applied'
		RETURNING ` + applicationColumns

	rows, err := r.pool.Query(ctx, q, applicationID, essay)
	if err != nil {
		return nil, fmt.Errorf("failed to update essay: %w", err)
	}

	app, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Application])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.essayLockedError(ctx, applicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &app, nil
}

// ForceEssay replaces the essay regardless of stage (admin path).
func (r *ApplicationRepo) ForceEssay(ctx context.Context, applicationID uuid.UUID, essay string) (*domain.Application, error) {
	const q = `
		UPDATE applications
		SET essay = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + applicationColumns

	rows, err := r.pool.Query(ctx, q, applicationID, essay)
	if err != nil {
		return nil, fmt.Errorf("failed to force essay: %w", err)
	}

	app, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Application])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &app, nil
}

func (r *ApplicationRepo) essayLockedError(ctx context.Context, applicationID uuid.UUID) error {
	const q = `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, q, applicationID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check application existence: %w", err)
	}
	if !exists {
		return domain.ErrApplicationNotFound
	}
	return domain.ErrEssayLocked
}

func (r *ApplicationRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Application, error) {
	const q = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE student_id = $1
		ORDER BY created_at DESC`

	return r.list(ctx, q, studentID)
}

func (r *ApplicationRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Application, error) {
	const q = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE company_id = $1
		ORDER BY created_at DESC`

	return r.list(ctx, q, companyID)
}

func (r *ApplicationRepo) ListAll(ctx context.Context) ([]domain.Application, error) {
	const q = `SELECT ` + applicationColumns + ` FROM applications ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *ApplicationRepo) list(ctx context.Context, q string, args ...any) ([]domain.Application, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	apps, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Application])
	if err != nil {
		return nil, fmt.Errorf("failed to scan applications: %w", err)
	}
	return apps, nil
}
