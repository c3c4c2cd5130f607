package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Model types ---

type Student struct {
	ID        uuid.UUID `db:"id" json:"id"`
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Company struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AccountID    uuid.UUID `db:"account_id" json:"account_id"`
	Name         string    `db:"name" json:"name"`
	OpeningCount int       `db:"opening_count" json:"opening_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Subscription struct {
	StudentID uuid.UUID `db:"student_id" json:"student_id"`
	CompanyID uuid.UUID `db:"company_id" json:"company_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Opening struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CompanyID   uuid.UUID `db:"company_id" json:"company_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Deadline    time.Time `db:"deadline" json:"deadline"`
	Published   bool      `db:"published" json:"published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Application struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StudentID uuid.UUID `db:"student_id" json:"student_id"`
	CompanyID uuid.UUID `db:"company_id" json:"company_id"`
	OpeningID uuid.UUID `db:"opening_id" json:"opening_id"`
	Stage     Stage     `db:"stage" json:"stage"`
	Essay     string    `db:"essay" json:"essay"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClarificationThread is the single request/response exchange attached to one
// application. A pending request is one with ResponseText == nil.
type ClarificationThread struct {
	ApplicationID uuid.UUID `db:"application_id" json:"application_id"`
	RequestText   string    `db:"request_text" json:"request_text"`
	ResponseText  *string   `db:"response_text" json:"response_text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Pending reports whether the company is still waiting for the student.
func (t *ClarificationThread) Pending() bool {
	return t.ResponseText == nil
}

type InterviewSlot struct {
	ApplicationID uuid.UUID `db:"application_id" json:"application_id"`
	ScheduledAt   time.Time `db:"scheduled_at" json:"scheduled_at"`
	Location      string    `db:"location" json:"location"`
	Notes         string    `db:"notes" json:"notes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type AuditEntry struct {
	ID         int64     `db:"id" json:"id"`
	Actor      uuid.UUID `db:"actor" json:"actor"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID `db:"entity_id" json:"entity_id"`
	Details    string    `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// --- Identity ---

type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

// Identity is what the session provider supplies on every call. The core
// trusts it as ground truth for all authorization checks.
type Identity struct {
	UserID    uuid.UUID
	Role      Role
	StudentID uuid.UUID // set only for RoleStudent
	CompanyID uuid.UUID // set only for RoleCompany
}

// --- Repository contracts ---

type SubscriptionRepository interface {
	// Subscribe is idempotent: duplicate calls leave exactly one row.
	Subscribe(ctx context.Context, studentID, companyID uuid.UUID) error
	// Unsubscribe on a non-existent row is a no-op, not an error.
	Unsubscribe(ctx context.Context, studentID, companyID uuid.UUID) error
	Exists(ctx context.Context, studentID, companyID uuid.UUID) (bool, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Subscription, error)
}

type OpeningRepository interface {
	Create(ctx context.Context, companyID uuid.UUID, title, description string, deadline time.Time) (*Opening, error)
	Close(ctx context.Context, openingID, companyID uuid.UUID) (*Opening, error)
	GetByID(ctx context.Context, openingID uuid.UUID) (*Opening, error)
	// ListForStudent returns only openings of companies the student subscribes to.
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]Opening, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]Opening, error)
	ListAll(ctx context.Context) ([]Opening, error)
}

type ApplicationRepository interface {
	// Create enforces the subscription gate and the rejection lock in a single
	// conditional insert. It returns ErrNotSubscribed or ErrRejectionLocked
	// when a precondition fails, and ErrAlreadyApplied when an application for
	// the same opening already exists.
	Create(ctx context.Context, studentID, companyID, openingID uuid.UUID, essay string) (*Application, error)
	GetByID(ctx context.Context, applicationID uuid.UUID) (*Application, error)
	// UpdateStage is a compare-and-swap on the from stage. It returns
	// ErrStageConflict when the row is no longer in from.
	UpdateStage(ctx context.Context, applicationID uuid.UUID, from, to Stage) (*Application, error)
	// ForceStage updates the stage unconditionally (admin path).
	ForceStage(ctx context.Context, applicationID uuid.UUID, to Stage) (*Application, error)
	// UpdateEssay succeeds only while the application is still in StageApplied.
	UpdateEssay(ctx context.Context, applicationID uuid.UUID, essay string) (*Application, error)
	// ForceEssay updates the essay regardless of stage (admin path).
	ForceEssay(ctx context.Context, applicationID uuid.UUID, essay string) (*Application, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Application, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]Application, error)
	ListAll(ctx context.Context) ([]Application, error)
}

type ClarificationRepository interface {
	// PutRequest creates or overwrites the request and clears any response.
	PutRequest(ctx context.Context, applicationID uuid.UUID, requestText string) (*ClarificationThread, error)
	// PutResponse requires a pending request; returns ErrNoPendingRequest otherwise.
	PutResponse(ctx context.Context, applicationID uuid.UUID, responseText string) (*ClarificationThread, error)
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*ClarificationThread, error)
	// ListPendingByStudent lists application ids with an unanswered request.
	ListPendingByStudent(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error)
}

type InterviewSlotRepository interface {
	Schedule(ctx context.Context, applicationID uuid.UUID, scheduledAt time.Time, location, notes string) (*InterviewSlot, error)
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*InterviewSlot, error)
}

// AccountDirectory resolves a session's user id to a full identity.
type AccountDirectory interface {
	Resolve(ctx context.Context, userID uuid.UUID, role Role) (*Identity, error)
}

// AuditSink accepts audit records. Failures are logged by callers and never
// block the triggering mutation.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]AuditEntry, error)
}

// Notifier delivers best-effort side notifications (outbound messages to
// students or companies). Errors never propagate to the triggering mutation.
type Notifier interface {
	Notify(ctx context.Context, msg OutboundMessage) error
}

// OutboundMessage is a side notification handed to the external delivery
// collaborator (SMS/email gateway; out of scope here).
type OutboundMessage struct {
	Recipient uuid.UUID `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
}

// EventEmitter publishes a change event to all connected sessions. Emission
// is fire-and-forget relative to the mutation that triggered it.
type EventEmitter interface {
	Emit(event ChangeEvent, audience Audience)
}

// AppService is the application layer contract. Handlers route all
// operations through here.
type AppService interface {
	Subscribe(ctx context.Context, id Identity, companyID uuid.UUID) error
	Unsubscribe(ctx context.Context, id Identity, companyID uuid.UUID) error
	ListOpenings(ctx context.Context, id Identity) ([]Opening, error)
	CreateOpening(ctx context.Context, id Identity, title, description string, deadline time.Time) (*Opening, error)
	CloseOpening(ctx context.Context, id Identity, openingID uuid.UUID) (*Opening, error)

	CreateApplication(ctx context.Context, id Identity, openingID uuid.UUID, essay string) (*Application, error)
	ListApplications(ctx context.Context, id Identity, scope Scope) ([]Application, error)
	GetApplication(ctx context.Context, id Identity, applicationID uuid.UUID) (*Application, error)
	PatchApplicationStage(ctx context.Context, id Identity, applicationID uuid.UUID, to Stage) (*Application, error)
	PatchApplicationEssay(ctx context.Context, id Identity, applicationID uuid.UUID, essay string) (*Application, error)

	SendClarificationRequest(ctx context.Context, id Identity, applicationID uuid.UUID, text string) (*ClarificationThread, error)
	RespondClarificationRequest(ctx context.Context, id Identity, applicationID uuid.UUID, text string) (*ClarificationThread, error)
	GetClarification(ctx context.Context, id Identity, applicationID uuid.UUID) (*ClarificationThread, error)

	ScheduleInterview(ctx context.Context, id Identity, applicationID uuid.UUID, scheduledAt time.Time, location, notes string) (*InterviewSlot, error)
	ListAuditEntries(ctx context.Context, id Identity, limit int) ([]AuditEntry, error)
}

// Scope selects which application collection a list call returns.
type Scope string

const (
	ScopeSelf    Scope = "self"
	ScopeCompany Scope = "company"
	ScopeAll     Scope = "all"
)
