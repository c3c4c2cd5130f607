package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/timayobrian6-droid/Internship-tracker/internal/app"
	"github.com/timayobrian6-droid/Internship-tracker/internal/config"
	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	apperrors "github.com/timayobrian6-droid/Internship-tracker/internal/errors"
)

// mockAppService implements appService with overridable function fields.
// Unset fields return zero values.
type mockAppService struct {
	subscribeFn      func(ctx context.Context, id domain.Identity, companyID uuid.UUID) error
	unsubscribeFn    func(ctx context.Context, id domain.Identity, companyID uuid.UUID) error
	listOpeningsFn   func(ctx context.Context, id domain.Identity) ([]domain.Opening, error)
	createOpeningFn  func(ctx context.Context, id domain.Identity, title, description string, deadline time.Time) (*domain.Opening, error)
	closeOpeningFn   func(ctx context.Context, id domain.Identity, openingID uuid.UUID) (*domain.Opening, error)
	createAppFn      func(ctx context.Context, id domain.Identity, openingID uuid.UUID, essay string) (*domain.Application, error)
	listAppsFn       func(ctx context.Context, id domain.Identity, scope domain.Scope) ([]domain.Application, error)
	getAppFn         func(ctx context.Context, id domain.Identity, applicationID uuid.UUID) (*domain.Application, error)
	patchStageFn     func(ctx context.Context, id domain.Identity, applicationID uuid.UUID, to domain.Stage) (*domain.Application, error)
	patchEssayFn     func(ctx context.Context, id domain.Identity, applicationID uuid.UUID, essay string) (*domain.Application, error)
	sendClarifyFn    func(ctx context.Context, id domain.Identity, applicationID uuid.UUID, text string) (*domain.ClarificationThread, error)
	respondClarifyFn func(ctx context.Context, id domain.Identity, applicationID uuid.UUID, text string) (*domain.ClarificationThread, error)
	getClarifyFn     func(ctx context.Context, id domain.Identity, applicationID uuid.UUID) (*domain.ClarificationThread, error)
	scheduleFn       func(ctx context.Context, id domain.Identity, applicationID uuid.UUID, scheduledAt time.Time, location, notes string) (*domain.InterviewSlot, error)
	listAuditFn      func(ctx context.Context, id domain.Identity, limit int) ([]domain.AuditEntry, error)
	buildDashboardFn func(ctx context.Context, id domain.Identity) (*app.DashboardView, error)
}

func (m *mockAppService) Subscribe(ctx context.Context, id domain.Identity, companyID uuid.UUID) error {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, id, companyID)
	}
	return nil
}

func (m *mockAppService) Unsubscribe(ctx context.Context, id domain.Identity, companyID uuid.UUID) error {
	if m.unsubscribeFn != nil {
		return m.unsubscribeFn(ctx, id, companyID)
	}
	return nil
}

func (m *mockAppService) ListOpenings(ctx context.Context, id domain.Identity) ([]domain.Opening, error) {
	if m.listOpeningsFn != nil {
		return m.listOpeningsFn(ctx, id)
	}
	return nil, nil
}

func (m *mockAppService) CreateOpening(ctx context.Context, id domain.Identity, title, description string, deadline time.Time) (*domain.Opening, error) {
	if m.createOpeningFn != nil {
		return m.createOpeningFn(ctx, id, title, description, deadline)
	}
	return &domain.Opening{}, nil
}

func (m *mockAppService) CloseOpening(ctx context.Context, id domain.Identity, openingID uuid.UUID) (*domain.Opening, error) {
	if m.closeOpeningFn != nil {
		return m.closeOpeningFn(ctx, id, openingID)
	}
	return &domain.Opening{}, nil
}

func (m *mockAppService) CreateApplication(ctx context.Context, id domain.Identity, openingID uuid.UUID, essay string) (*domain.Application, error) {
	if m.createAppFn != nil {
		return m.createAppFn(ctx, id, openingID, essay)
	}
	return &domain.Application{}, nil
}

func (m *mockAppService) ListApplications(ctx context.Context, id domain.Identity, scope domain.Scope) ([]domain.Application, error) {
	if m.listAppsFn != nil {
		return m.listAppsFn(ctx, id, scope)
	}
	return nil, nil
}

func (m *mockAppService) GetApplication(ctx context.Context, id domain.Identity, applicationID uuid.UUID) (*domain.Application, error) {
	if m.getAppFn != nil {
		return m.getAppFn(ctx, id, applicationID)
	}
	return &domain.Application{}, nil
}

func (m *mockAppService) PatchApplicationStage(ctx context.Context, id domain.Identity, applicationID uuid.UUID, to domain.Stage) (*domain.Application, error) {
	if m.patchStageFn != nil {
		return m.patchStageFn(ctx, id, applicationID, to)
	}
	return &domain.Application{}, nil
}

func (m *mockAppService) PatchApplicationEssay(ctx context.Context, id domain.Identity, applicationID uuid.UUID, essay string) (*domain.Application, error) {
	if m.patchEssayFn != nil {
		return m.patchEssayFn(ctx, id, applicationID, essay)
	}
	return &domain.Application{}, nil
}

func (m *mockAppService) SendClarificationRequest(ctx context.Context, id domain.Identity, applicationID uuid.UUID, text string) (*domain.ClarificationThread, error) {
	if m.sendClarifyFn != nil {
		return m.sendClarifyFn(ctx, id, applicationID, text)
	}
	return &domain.ClarificationThread{}, nil
}

func (m *mockAppService) RespondClarificationRequest(ctx context.Context, id domain.Identity, applicationID uuid.UUID, text string) (*domain.ClarificationThread, error) {
	if m.respondClarifyFn != nil {
		return m.respondClarifyFn(ctx, id, applicationID, text)
	}
	return &domain.ClarificationThread{}, nil
}

func (m *mockAppService) GetClarification(ctx context.Context, id domain.Identity, applicationID uuid.UUID) (*domain.ClarificationThread, error) {
	if m.getClarifyFn != nil {
		return m.getClarifyFn(ctx, id, applicationID)
	}
	return &domain.ClarificationThread{}, nil
}

func (m *mockAppService) ScheduleInterview(ctx context.Context, id domain.Identity, applicationID uuid.UUID, scheduledAt time.Time, location, notes string) (*domain.InterviewSlot, error) {
	if m.scheduleFn != nil {
		return m.scheduleFn(ctx, id, applicationID, scheduledAt, location, notes)
	}
	return &domain.InterviewSlot{}, nil
}

func (m *mockAppService) ListAuditEntries(ctx context.Context, id domain.Identity, limit int) ([]domain.AuditEntry, error) {
	if m.listAuditFn != nil {
		return m.listAuditFn(ctx, id, limit)
	}
	return nil, nil
}

func (m *mockAppService) BuildDashboard(ctx context.Context, id domain.Identity) (*app.DashboardView, error) {
	if m.buildDashboardFn != nil {
		return m.buildDashboardFn(ctx, id)
	}
	return &app.DashboardView{Role: id.Role}, nil
}

// mockDirectory resolves every user id to a fixed identity.
type mockDirectory struct {
	resolveFn func(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.Identity, error)
}

func (m *mockDirectory) Resolve(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.Identity, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, userID, role)
	}
	return &domain.Identity{UserID: userID, Role: role}, nil
}

// newTestServer builds a Server wired to mocks, without starting it.
func newTestServer(svc appService, directory domain.AccountDirectory) *Server {
	e := echo.New()
	e.HideBanner = true

	sessionStore := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	sessionStore.Options = &sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}

	return &Server{
		echo:         e,
		config:       &config.Config{Port: "0"},
		app:          svc,
		directory:    directory,
		sessionStore: sessionStore,
		upgrader:     websocket.Upgrader{},
		startTime:    time.Now(),
	}
}

// callHandler invokes a handler and renders any returned error the way the
// error middleware would.
func callHandler(h echo.HandlerFunc, c echo.Context) error {
	if err := h(c); err != nil {
		return apperrors.HandleError(c, err)
	}
	return nil
}
