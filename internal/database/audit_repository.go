package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, entry domain.AuditEntry) error {
	const q = `
		INSERT INTO audit_entries (actor, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.pool.Exec(ctx, q, entry.Actor, entry.Action, entry.EntityType, entry.EntityID, entry.Details); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	const q = `
		SELECT id, actor, action, entity_type, entity_id, details, created_at
		FROM audit_entries
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.AuditEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit entries: %w", err)
	}
	return entries, nil
}
