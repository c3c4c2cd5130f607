// Package app is the application layer. It is the only component that
// references multiple domain collaborators: every use case authorizes,
// persists, then emits exactly one change event.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	"github.com/timayobrian6-droid/Internship-tracker/internal/metrics"
)

const defaultAuditLimit = 100

// Service orchestrates all use cases over the repositories, the audit sink,
// the best-effort notifier and the event emitter.
type Service struct {
	subscriptions  domain.SubscriptionRepository
	openings       domain.OpeningRepository
	applications   domain.ApplicationRepository
	clarifications domain.ClarificationRepository
	interviews     domain.InterviewSlotRepository
	audit          domain.AuditSink
	notifier       domain.Notifier
	emitter        domain.EventEmitter
	clock          clockwork.Clock
}

func NewService(
	subscriptions domain.SubscriptionRepository,
	openings domain.OpeningRepository,
	applications domain.ApplicationRepository,
	clarifications domain.ClarificationRepository,
	interviews domain.InterviewSlotRepository,
	audit domain.AuditSink,
	notifier domain.Notifier,
	emitter domain.EventEmitter,
	clock clockwork.Clock,
) *Service {
	return &Service{
		subscriptions:  subscriptions,
		openings:       openings,
		applications:   applications,
		clarifications: clarifications,
		interviews:     interviews,
		audit:          audit,
		notifier:       notifier,
		emitter:        emitter,
		clock:          clock,
	}
}

// --- Subscriptions ---

func (s *Service) Subscribe(ctx context.Context, id domain.Identity, companyID uuid.UUID) error {
	if id.Role != domain.RoleStudent {
		return domain.ErrWrongRole
	}
	if err := s.subscriptions.Subscribe(ctx, id.StudentID, companyID); err != nil {
		return err
	}
	s.emitter.Emit(
		domain.ChangeEvent{Name: domain.EventOpeningsChanged, Action: "subscribed", EntityType: domain.EntityCompany, EntityID: companyID, CompanyID: companyID},
		domain.Audience{Roles: []domain.Role{domain.RoleStudent}, StudentID: id.StudentID},
	)
	return nil
}

func (s *Service) Unsubscribe(ctx context.Context, id domain.Identity, companyID uuid.UUID) error {
	if id.Role != domain.RoleStudent {
		return domain.ErrWrongRole
	}
	if err := s.subscriptions.Unsubscribe(ctx, id.StudentID, companyID); err != nil {
		return err
	}
	s.emitter.Emit(
		domain.ChangeEvent{Name: domain.EventOpeningsChanged, Action: "unsubscribed", EntityType: domain.EntityCompany, EntityID: companyID, CompanyID: companyID},
		domain.Audience{Roles: []domain.Role{domain.RoleStudent}, StudentID: id.StudentID},
	)
	return nil
}

// --- Openings ---

// ListOpenings returns the caller's authorized view: students see openings
// of subscribed companies, companies see their own, admins see everything.
func (s *Service) ListOpenings(ctx context.Context, id domain.Identity) ([]domain.Opening, error) {
	switch id.Role {
	case domain.RoleStudent:
		return s.openings.ListForStudent(ctx, id.StudentID)
	case domain.RoleCompany:
		return s.openings.ListByCompany(ctx, id.CompanyID)
	case domain.RoleAdmin:
		return s.openings.ListAll(ctx)
	default:
		return nil, domain.ErrWrongRole
	}
}

func (s *Service) CreateOpening(ctx context.Context, id domain.Identity, title, description string, deadline time.Time) (*domain.Opening, error) {
	if id.Role != domain.RoleCompany {
		return nil, domain.ErrWrongRole
	}
	opening, err := s.openings.Create(ctx, id.CompanyID, title, description, deadline)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(
		domain.ChangeEvent{Name: domain.EventOpeningsChanged, Action: "created", EntityID: opening.ID, CompanyID: opening.CompanyID},
		domain.Audience{Roles: []domain.Role{domain.RoleStudent, domain.RoleCompany}, CompanyID: opening.CompanyID},
	)
	return opening, nil
}

func (s *Service) CloseOpening(ctx context.Context, id domain.Identity, openingID uuid.UUID) (*domain.Opening, error) {
	if id.Role != domain.RoleCompany {
		return nil, domain.ErrWrongRole
	}
	opening, err := s.openings.Close(ctx, openingID, id.CompanyID)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(
		domain.ChangeEvent{Name: domain.EventOpeningsChanged, Action: "closed", EntityID: opening.ID, CompanyID: opening.CompanyID},
		domain.Audience{Roles: []domain.Role{domain.RoleStudent, domain.RoleCompany}, CompanyID: opening.CompanyID},
	)
	return opening, nil
}

// --- Applications ---

func (s *Service) CreateApplication(ctx context.Context, id domain.Identity, openingID uuid.UUID, essay string) (*domain.Application, error) {
	if id.Role != domain.RoleStudent {
		return nil, domain.ErrWrongRole
	}

	opening, err := s.openings.GetByID(ctx, openingID)
	if err != nil {
		return nil, err
	}
	if !opening.Published || s.clock.Now().After(opening.Deadline) {
		return nil, domain.ErrOpeningClosed
	}

	app, err := s.applications.Create(ctx, id.StudentID, opening.CompanyID, openingID, essay)
	if err != nil {
		return nil, err
	}

	s.emitApplicationChanged(app, "created")
	s.notify(ctx, opening.CompanyID, "New application", fmt.Sprintf("A new application arrived for opening %q.", opening.Title))
	return app, nil
}

func (s *Service) ListApplications(ctx context.Context, id domain.Identity, scope domain.Scope) ([]domain.Application, error) {
	if err := checkScope(id.Role, scope); err != nil {
		return nil, err
	}
	switch id.Role {
	case domain.RoleStudent:
		return s.applications.ListByStudent(ctx, id.StudentID)
	case domain.RoleCompany:
		return s.applications.ListByCompany(ctx, id.CompanyID)
	case domain.RoleAdmin:
		return s.applications.ListAll(ctx)
	default:
		return nil, domain.ErrWrongRole
	}
}

func (s *Service) GetApplication(ctx context.Context, id domain.Identity, applicationID uuid.UUID) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := authorizeApplicationAccess(id, app); err != nil {
		return nil, err
	}
	return app, nil
}

// PatchApplicationStage moves the application through the stage machine.
// Non-admin callers go through a compare-and-swap on the stage they read, so
// a concurrent transition surfaces as ErrStageConflict instead of silently
// overwriting. Admin overrides bypass both the edge set and the CAS.
func (s *Service) PatchApplicationStage(ctx context.Context, id domain.Identity, applicationID uuid.UUID, to domain.Stage) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := authorizeApplicationAccess(id, app); err != nil {
		return nil, err
	}
	if !domain.RoleAllows(id.Role, app.Stage, to) {
		return nil, domain.ErrForbiddenTransition
	}

	var updated *domain.Application
	if id.Role == domain.RoleAdmin {
		updated, err = s.applications.ForceStage(ctx, applicationID, to)
	} else {
		updated, err = s.applications.UpdateStage(ctx, applicationID, app.Stage, to)
	}
	if err != nil {
		return nil, err
	}

	metrics.StageTransitionsTotal.WithLabelValues(string(to), string(id.Role)).Inc()

	if id.Role == domain.RoleAdmin {
		s.recordAudit(ctx, id, "stage-override", domain.EntityApplication, applicationID,
			fmt.Sprintf("stage forced from %s to %s", app.Stage, to))
		s.emitter.Emit(
			domain.ChangeEvent{Name: domain.EventAdminChanged, Action: "stage-changed", EntityType: domain.EntityApplication, EntityID: updated.ID, CompanyID: updated.CompanyID},
			applicationAudience(updated),
		)
	} else {
		s.emitApplicationChanged(updated, "stage-changed")
	}

	if id.Role == domain.RoleCompany {
		s.notify(ctx, updated.StudentID, "Application update", fmt.Sprintf("Your application moved to stage %q.", to))
	}
	return updated, nil
}

// PatchApplicationEssay lets the owning student edit the essay while the
// application is still in the applied stage. Admins may replace any essay
// regardless of stage; those edits are audit-logged.
func (s *Service) PatchApplicationEssay(ctx context.Context, id domain.Identity, applicationID uuid.UUID, essay string) (*domain.Application, error) {
	if id.Role != domain.RoleStudent && id.Role != domain.RoleAdmin {
		return nil, domain.ErrWrongRole
	}
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if id.Role == domain.RoleStudent && app.StudentID != id.StudentID {
		return nil, domain.ErrNotOwner
	}

	if id.Role == domain.RoleAdmin {
		updated, err := s.applications.ForceEssay(ctx, applicationID, essay)
		if err != nil {
			return nil, err
		}
		s.recordAudit(ctx, id, "essay-override", domain.EntityApplication, applicationID, "essay replaced")
		s.emitter.Emit(
			domain.ChangeEvent{Name: domain.EventAdminChanged, Action: "essay-updated", EntityType: domain.EntityApplication, EntityID: updated.ID, CompanyID: updated.CompanyID},
			applicationAudience(updated),
		)
		return updated, nil
	}

	updated, err := s.applications.UpdateEssay(ctx, applicationID, essay)
	if err != nil {
		return nil, err
	}
	s.emitApplicationChanged(updated, "essay-updated")
	return updated, nil
}

// --- Clarifications ---

func (s *Service) SendClarificationRequest(ctx context.Context, id domain.Identity, applicationID uuid.UUID, text string) (*domain.ClarificationThread, error) {
	if id.Role != domain.RoleCompany && id.Role != domain.RoleAdmin {
		return nil, domain.ErrWrongRole
	}
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := authorizeApplicationAccess(id, app); err != nil {
		return nil, err
	}

	thread, err := s.clarifications.PutRequest(ctx, applicationID, text)
	if err != nil {
		return nil, err
	}

	if id.Role == domain.RoleAdmin {
		s.recordAudit(ctx, id, "clarification-request", domain.EntitySupport, applicationID, "clarification requested on behalf of company")
	}
	s.emitClarificationChanged(app, "clarification-requested")
	s.notify(ctx, app.StudentID, "Clarification requested", "A company asked for clarification on your application.")
	return thread, nil
}

func (s *Service) RespondClarificationRequest(ctx context.Context, id domain.Identity, applicationID uuid.UUID, text string) (*domain.ClarificationThread, error) {
	if id.Role != domain.RoleStudent {
		return nil, domain.ErrWrongRole
	}
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.StudentID != id.StudentID {
		return nil, domain.ErrNotOwner
	}

	thread, err := s.clarifications.PutResponse(ctx, applicationID, text)
	if err != nil {
		return nil, err
	}

	s.emitClarificationChanged(app, "clarification-answered")
	s.notify(ctx, app.CompanyID, "Clarification answered", "A student answered your clarification request.")
	return thread, nil
}

func (s *Service) GetClarification(ctx context.Context, id domain.Identity, applicationID uuid.UUID) (*domain.ClarificationThread, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := authorizeApplicationAccess(id, app); err != nil {
		return nil, err
	}
	return s.clarifications.GetByApplicationID(ctx, applicationID)
}

// --- Interviews ---

func (s *Service) ScheduleInterview(ctx context.Context, id domain.Identity, applicationID uuid.UUID, scheduledAt time.Time, location, notes string) (*domain.InterviewSlot, error) {
	if id.Role != domain.RoleCompany && id.Role != domain.RoleAdmin {
		return nil, domain.ErrWrongRole
	}
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := authorizeApplicationAccess(id, app); err != nil {
		return nil, err
	}
	if app.Stage != domain.StageInterviewing {
		return nil, domain.ErrStageConflict
	}

	slot, err := s.interviews.Schedule(ctx, applicationID, scheduledAt, location, notes)
	if err != nil {
		return nil, err
	}

	if id.Role == domain.RoleAdmin {
		s.recordAudit(ctx, id, "interview-schedule", domain.EntityApplication, applicationID,
			fmt.Sprintf("interview scheduled for %s", scheduledAt.Format(time.RFC3339)))
	}
	s.emitApplicationChanged(app, "interview-scheduled")
	s.notify(ctx, app.StudentID, "Interview scheduled", fmt.Sprintf("Your interview is scheduled for %s.", scheduledAt.Format(time.RFC1123)))
	return slot, nil
}

// --- Audit ---

func (s *Service) ListAuditEntries(ctx context.Context, id domain.Identity, limit int) ([]domain.AuditEntry, error) {
	if id.Role != domain.RoleAdmin {
		return nil, domain.ErrWrongRole
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return s.audit.ListRecent(ctx, limit)
}

// --- Helpers ---

func checkScope(role domain.Role, scope domain.Scope) error {
	if scope == "" {
		return nil
	}
	switch role {
	case domain.RoleStudent:
		if scope != domain.ScopeSelf {
			return domain.ErrWrongRole
		}
	case domain.RoleCompany:
		if scope != domain.ScopeCompany {
			return domain.ErrWrongRole
		}
	case domain.RoleAdmin:
		// Admins may request any scope; they see everything regardless.
	}
	return nil
}

// authorizeApplicationAccess enforces visibility: the owning student, the
// owning company, or an admin.
func authorizeApplicationAccess(id domain.Identity, app *domain.Application) error {
	switch id.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleStudent:
		if app.StudentID != id.StudentID {
			return domain.ErrNotOwner
		}
		return nil
	case domain.RoleCompany:
		if app.CompanyID != id.CompanyID {
			return domain.ErrNotOwner
		}
		return nil
	default:
		return domain.ErrWrongRole
	}
}

func applicationAudience(app *domain.Application) domain.Audience {
	return domain.Audience{
		Roles:     []domain.Role{domain.RoleStudent, domain.RoleCompany},
		StudentID: app.StudentID,
		CompanyID: app.CompanyID,
	}
}

func (s *Service) emitApplicationChanged(app *domain.Application, action string) {
	s.emitter.Emit(
		domain.ChangeEvent{Name: domain.EventApplicationsChanged, Action: action, EntityType: domain.EntityApplication, EntityID: app.ID, CompanyID: app.CompanyID},
		applicationAudience(app),
	)
}

func (s *Service) emitClarificationChanged(app *domain.Application, action string) {
	s.emitter.Emit(
		domain.ChangeEvent{Name: domain.EventApplicationsChanged, Action: action, EntityType: domain.EntitySupport, EntityID: app.ID, CompanyID: app.CompanyID},
		applicationAudience(app),
	)
}

// recordAudit writes an audit entry. Failures are logged and never abort the
// mutation that triggered them.
func (s *Service) recordAudit(ctx context.Context, id domain.Identity, action, entityType string, entityID uuid.UUID, details string) {
	entry := domain.AuditEntry{
		Actor:      id.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		slog.Error("Failed to record audit entry", "action", action, "entity_id", entityID.String(), "error", err)
	}
}

// notify sends a best-effort side notification. Errors are logged and never
// propagate to the caller.
func (s *Service) notify(ctx context.Context, recipient uuid.UUID, subject, body string) {
	msg := domain.OutboundMessage{Recipient: recipient, Subject: subject, Body: body}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		slog.Warn("Failed to deliver notification", "recipient", recipient.String(), "error", err)
	}
}
