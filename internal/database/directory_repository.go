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

// DirectoryRepo resolves session user ids to full identities. The role comes
// from the session; the directory only confirms the matching profile exists.
type DirectoryRepo struct {
	pool *pgxpool.Pool
}

func NewDirectoryRepo(pool *pgxpool.Pool) *DirectoryRepo {
	return &DirectoryRepo{pool: pool}
}

func (r *DirectoryRepo) Resolve(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.Identity, error) {
	switch role {
	case domain.RoleStudent:
		student, err := r.studentByAccount(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &domain.Identity{UserID: userID, Role: role, StudentID: student.ID}, nil
	case domain.RoleCompany:
		company, err := r.companyByAccount(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &domain.Identity{UserID: userID, Role: role, CompanyID: company.ID}, nil
	case domain.RoleAdmin:
		return &domain.Identity{UserID: userID, Role: role}, nil
	default:
		return nil, domain.ErrWrongRole
	}
}

func (r *DirectoryRepo) studentByAccount(ctx context.Context, accountID uuid.UUID) (*domain.Student, error) {
	const q = `
		SELECT id, account_id, full_name, created_at, updated_at
		FROM students
		WHERE account_id = $1`

	rows, err := r.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	student, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Student])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	return &student, nil
}

func (r *DirectoryRepo) companyByAccount(ctx context.Context, accountID uuid.UUID) (*domain.Company, error) {
	const q = `
		SELECT c.id, c.account_id, c.name,
		       (SELECT count(*) FROM openings o WHERE o.company_id = c.id AND o.published) AS opening_count,
		       c.created_at, c.updated_at
		FROM companies c
		WHERE c.account_id = $1`

	rows, err := r.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve company: %w", err)
	}

	company, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.Company])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}
	return &company, nil
}
