package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
)

type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

func (r *SubscriptionRepo) Subscribe(ctx context.Context, studentID, companyID uuid.UUID) error {
	const q = `
		INSERT INTO subscriptions (student_id, company_id)
		VALUES ($1, $2)
		ON CONFLICT (student_id, company_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, q, studentID, companyID); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) Unsubscribe(ctx context.Context, studentID, companyID uuid.UUID) error {
	const q = `DELETE FROM subscriptions WHERE student_id = $1 AND company_id = $2`

	if _, err := r.pool.Exec(ctx, q, studentID, companyID); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) Exists(ctx context.Context, studentID, companyID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE student_id = $1 AND company_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, q, studentID, companyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return exists, nil
}

func (r *SubscriptionRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Subscription, error) {
	const q = `
		SELECT student_id, company_id, created_at
		FROM subscriptions
		WHERE student_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, q, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Subscription])
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscriptions: %w", err)
	}
	return subs, nil
}
