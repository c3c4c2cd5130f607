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

const interviewColumns = `application_id, scheduled_at, location, notes, created_at, updated_at`

type InterviewSlotRepo struct {
	pool *pgxpool.Pool
}

func NewInterviewSlotRepo(pool *pgxpool.Pool) *InterviewSlotRepo {
	return &InterviewSlotRepo{pool: pool}
}

// Schedule creates or replaces the slot for the application. Rescheduling is
// an upsert: one slot per application.
func (r *InterviewSlotRepo) Schedule(ctx context.Context, applicationID uuid.UUID, scheduledAt time.Time, location, notes string) (*domain.InterviewSlot, error) {
	const q = `
		INSERT INTO interview_slots (application_id, scheduled_at, location, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (application_id) DO UPDATE
		SET scheduled_at = EXCLUDED.scheduled_at,
		    location = EXCLUDED.location,
		    notes = EXCLUDED.notes,
		    updated_at = now()
		RETURNING ` + interviewColumns

	rows, err := r.pool.Query(ctx, q, applicationID, scheduledAt, location, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule interview: %w", err)
	}

	slot, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.InterviewSlot])
	if err != nil {
		return nil, fmt.Errorf("failed to scan interview slot: %w", err)
	}
	return &slot, nil
}

func (r *InterviewSlotRepo) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*domain.InterviewSlot, error) {
	const q = `SELECT ` + interviewColumns + ` FROM interview_slots WHERE application_id = $1`

	rows, err := r.pool.Query(ctx, q, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interview slot: %w", err)
	}

	slot, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.InterviewSlot])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInterviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan interview slot: %w", err)
	}
	return &slot, nil
}
