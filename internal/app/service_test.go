package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
)

// --- In-memory fakes ---

type fakeSubscriptionRepo struct {
	subs map[[2]uuid.UUID]domain.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[[2]uuid.UUID]domain.Subscription)}
}

func (f *fakeSubscriptionRepo) Subscribe(_ context.Context, studentID, companyID uuid.UUID) error {
	key := [2]uuid.UUID{studentID, companyID}
	if _, ok := f.subs[key]; !ok {
		f.subs[key] = domain.Subscription{StudentID: studentID, CompanyID: companyID}
	}
	return nil
}

func (f *fakeSubscriptionRepo) Unsubscribe(_ context.Context, studentID, companyID uuid.UUID) error {
	delete(f.subs, [2]uuid.UUID{studentID, companyID})
	return nil
}

func (f *fakeSubscriptionRepo) Exists(_ context.Context, studentID, companyID uuid.UUID) (bool, error) {
	_, ok := f.subs[[2]uuid.UUID{studentID, companyID}]
	return ok, nil
}

func (f *fakeSubscriptionRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]domain.Subscription, error) {
	var out []domain.Subscription
	for _, s := range f.subs {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeOpeningRepo struct {
	openings map[uuid.UUID]*domain.Opening
	subs     *fakeSubscriptionRepo
}

func newFakeOpeningRepo(subs *fakeSubscriptionRepo) *fakeOpeningRepo {
	return &fakeOpeningRepo{openings: make(map[uuid.UUID]*domain.Opening), subs: subs}
}

func (f *fakeOpeningRepo) Create(_ context.Context, companyID uuid.UUID, title, description string, deadline time.Time) (*domain.Opening, error) {
	o := &domain.Opening{ID: uuid.New(), CompanyID: companyID, Title: title, Description: description, Deadline: deadline, Published: true}
	f.openings[o.ID] = o
	return o, nil
}

func (f *fakeOpeningRepo) Close(_ context.Context, openingID, companyID uuid.UUID) (*domain.Opening, error) {
	o, ok := f.openings[openingID]
	if !ok || o.CompanyID != companyID {
		return nil, domain.ErrOpeningNotFound
	}
	o.Published = false
	return o, nil
}

func (f *fakeOpeningRepo) GetByID(_ context.Context, openingID uuid.UUID) (*domain.Opening, error) {
	o, ok := f.openings[openingID]
	if !ok {
		return nil, domain.ErrOpeningNotFound
	}
	return o, nil
}

func (f *fakeOpeningRepo) ListForStudent(_ context.Context, studentID uuid.UUID) ([]domain.Opening, error) {
	var out []domain.Opening
	for _, o := range f.openings {
		if !o.Published {
			continue
		}
		if _, ok := f.subs.subs[[2]uuid.UUID{studentID, o.CompanyID}]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOpeningRepo) ListByCompany(_ context.Context, companyID uuid.UUID) ([]domain.Opening, error) {
	var out []domain.Opening
	for _, o := range f.openings {
		if o.CompanyID == companyID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOpeningRepo) ListAll(_ context.Context) ([]domain.Opening, error) {
	var out []domain.Opening
	for _, o := range f.openings {
		out = append(out, *o)
	}
	return out, nil
}

type fakeApplicationRepo struct {
	apps map[uuid.UUID]*domain.Application
	subs *fakeSubscriptionRepo
}

func newFakeApplicationRepo(subs *fakeSubscriptionRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[uuid.UUID]*domain.Application), subs: subs}
}

func (f *fakeApplicationRepo) Create(_ context.Context, studentID, companyID, openingID uuid.UUID, essay string) (*domain.Application, error) {
	if _, ok := f.subs.subs[[2]uuid.UUID{studentID, companyID}]; !ok {
		return nil, domain.ErrNotSubscribed
	}
	for _, a := range f.apps {
		if a.StudentID == studentID && a.CompanyID == companyID && a.Stage == domain.StageRejected {
			return nil, domain.ErrRejectionLocked
		}
	}
	for _, a := range f.apps {
		if a.StudentID == studentID && a.OpeningID == openingID {
			return nil, domain.ErrAlreadyApplied
		}
	}
	a := &domain.Application{ID: uuid.New(), StudentID: studentID, CompanyID: companyID, OpeningID: openingID, Stage: domain.StageApplied, Essay: essay}
	f.apps[a.ID] = a
	return a, nil
}

func (f *fakeApplicationRepo) GetByID(_ context.Context, applicationID uuid.UUID) (*domain.Application, error) {
	a, ok := f.apps[applicationID]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeApplicationRepo) UpdateStage(_ context.Context, applicationID uuid.UUID, from, to domain.Stage) (*domain.Application, error) {
	a, ok := f.apps[applicationID]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	if a.Stage != from {
		return nil, domain.ErrStageConflict
	}
	a.Stage = to
	copied := *a
	return &copied, nil
}

func (f *fakeApplicationRepo) ForceStage(_ context.Context, applicationID uuid.UUID, to domain.Stage) (*domain.Application, error) {
	a, ok := f.apps[applicationID]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	a.Stage = to
	copied := *a
	return &copied, nil
}

func (f *fakeApplicationRepo) UpdateEssay(_ context.Context, applicationID uuid.UUID, essay string) (*domain.Application, error) {
	a, ok := f.apps[applicationID]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	if a.Stage != domain.StageApplied {
		return nil, domain.ErrEssayLocked
	}
	a.Essay = essay
	copied := *a
	return &copied, nil
}

func (f *fakeApplicationRepo) ForceEssay(_ context.Context, applicationID uuid.UUID, essay string) (*domain.Application, error) {
	a, ok := f.apps[applicationID]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	a.Essay = essay
	copied := *a
	return &copied, nil
}

func (f *fakeApplicationRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]domain.Application, error) {
	var out []domain.Application
	for _, a := range f.apps {
		if a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) ListByCompany(_ context.Context, companyID uuid.UUID) ([]domain.Application, error) {
	var out []domain.Application
	for _, a := range f.apps {
		if a.CompanyID == companyID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) ListAll(_ context.Context) ([]domain.Application, error) {
	var out []domain.Application
	for _, a := range f.apps {
		out = append(out, *a)
	}
	return out, nil
}

type fakeClarificationRepo struct {
	threads map[uuid.UUID]*domain.ClarificationThread
	apps    *fakeApplicationRepo
}

func newFakeClarificationRepo(apps *fakeApplicationRepo) *fakeClarificationRepo {
	return &fakeClarificationRepo{threads: make(map[uuid.UUID]*domain.ClarificationThread), apps: apps}
}

func (f *fakeClarificationRepo) PutRequest(_ context.Context, applicationID uuid.UUID, requestText string) (*domain.ClarificationThread, error) {
	t := &domain.ClarificationThread{ApplicationID: applicationID, RequestText: requestText}
	f.threads[applicationID] = t
	copied := *t
	return &copied, nil
}

func (f *fakeClarificationRepo) PutResponse(_ context.Context, applicationID uuid.UUID, responseText string) (*domain.ClarificationThread, error) {
	t, ok := f.threads[applicationID]
	if !ok || t.ResponseText != nil {
		return nil, domain.ErrNoPendingRequest
	}
	t.ResponseText = &responseText
	copied := *t
	return &copied, nil
}

func (f *fakeClarificationRepo) GetByApplicationID(_ context.Context, applicationID uuid.UUID) (*domain.ClarificationThread, error) {
	t, ok := f.threads[applicationID]
	if !ok {
		return nil, domain.ErrClarificationNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeClarificationRepo) ListPendingByStudent(_ context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, t := range f.threads {
		if t.ResponseText != nil {
			continue
		}
		if a, ok := f.apps.apps[id]; ok && a.StudentID == studentID {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeInterviewRepo struct {
	slots map[uuid.UUID]*domain.InterviewSlot
}

func newFakeInterviewRepo() *fakeInterviewRepo {
	return &fakeInterviewRepo{slots: make(map[uuid.UUID]*domain.InterviewSlot)}
}

func (f *fakeInterviewRepo) Schedule(_ context.Context, applicationID uuid.UUID, scheduledAt time.Time, location, notes string) (*domain.InterviewSlot, error) {
	s := &domain.InterviewSlot{ApplicationID: applicationID, ScheduledAt: scheduledAt, Location: location, Notes: notes}
	f.slots[applicationID] = s
	copied := *s
	return &copied, nil
}

func (f *fakeInterviewRepo) GetByApplicationID(_ context.Context, applicationID uuid.UUID) (*domain.InterviewSlot, error) {
	s, ok := f.slots[applicationID]
	if !ok {
		return nil, domain.ErrInterviewNotFound
	}
	copied := *s
	return &copied, nil
}

type fakeAuditSink struct {
	entries []domain.AuditEntry
}

func (f *fakeAuditSink) Record(_ context.Context, entry domain.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditSink) ListRecent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	if len(f.entries) > limit {
		return f.entries[len(f.entries)-limit:], nil
	}
	return f.entries, nil
}

type fakeNotifier struct {
	messages []domain.OutboundMessage
}

func (f *fakeNotifier) Notify(_ context.Context, msg domain.OutboundMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

type emittedEvent struct {
	event    domain.ChangeEvent
	audience domain.Audience
}

type fakeEmitter struct {
	events []emittedEvent
}

func (f *fakeEmitter) Emit(event domain.ChangeEvent, audience domain.Audience) {
	f.events = append(f.events, emittedEvent{event: event, audience: audience})
}

// --- Fixture ---

type fixture struct {
	svc      *Service
	subs     *fakeSubscriptionRepo
	openings *fakeOpeningRepo
	apps     *fakeApplicationRepo
	threads  *fakeClarificationRepo
	audit    *fakeAuditSink
	notifier *fakeNotifier
	emitter  *fakeEmitter
	clock    *clockwork.FakeClock

	student  domain.Identity
	student2 domain.Identity
	company  domain.Identity
	admin    domain.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	subs := newFakeSubscriptionRepo()
	openings := newFakeOpeningRepo(subs)
	apps := newFakeApplicationRepo(subs)
	threads := newFakeClarificationRepo(apps)
	audit := &fakeAuditSink{}
	notifier := &fakeNotifier{}
	emitter := &fakeEmitter{}
	clock := clockwork.NewFakeClock()

	svc := NewService(subs, openings, apps, threads, newFakeInterviewRepo(), audit, notifier, emitter, clock)

	return &fixture{
		svc:      svc,
		subs:     subs,
		openings: openings,
		apps:     apps,
		threads:  threads,
		audit:    audit,
		notifier: notifier,
		emitter:  emitter,
		clock:    clock,
		student:  domain.Identity{UserID: uuid.New(), Role: domain.RoleStudent, StudentID: uuid.New()},
		student2: domain.Identity{UserID: uuid.New(), Role: domain.RoleStudent, StudentID: uuid.New()},
		company:  domain.Identity{UserID: uuid.New(), Role: domain.RoleCompany, CompanyID: uuid.New()},
		admin:    domain.Identity{UserID: uuid.New(), Role: domain.RoleAdmin},
	}
}

// createOpening publishes an opening for the fixture company with a deadline
// far in the future.
func (f *fixture) createOpening(t *testing.T) *domain.Opening {
	t.Helper()
	deadline := f.clock.Now().Add(30 * 24 * time.Hour)
	opening, err := f.svc.CreateOpening(context.Background(), f.company, "Backend Intern", "Go service work", deadline)
	require.NoError(t, err)
	return opening
}

func (f *fixture) subscribeAndApply(t *testing.T, student domain.Identity) *domain.Application {
	t.Helper()
	opening := f.createOpening(t)
	require.NoError(t, f.svc.Subscribe(context.Background(), student, f.company.CompanyID))
	app, err := f.svc.CreateApplication(context.Background(), student, opening.ID, "my essay")
	require.NoError(t, err)
	return app
}

// --- Subscription tests ---

func TestSubscribeIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Subscribe(ctx, f.student, f.company.CompanyID))
	require.NoError(t, f.svc.Subscribe(ctx, f.student, f.company.CompanyID))

	subs, err := f.subs.ListByStudent(ctx, f.student.StudentID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestUnsubscribeWithoutSubscriptionIsNoOp(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.Unsubscribe(context.Background(), f.student, f.company.CompanyID))
}

func TestSubscribeRequiresStudentRole(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Subscribe(context.Background(), f.company, f.company.CompanyID)
	assert.ErrorIs(t, err, domain.ErrWrongRole)
}

func TestUnsubscribeKeepsExistingApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	require.NoError(t, f.svc.Unsubscribe(ctx, f.student, f.company.CompanyID))

	got, err := f.svc.GetApplication(ctx, f.student, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
}

// --- Application creation tests ---

func TestCreateApplicationRequiresSubscription(t *testing.T) {
	f := newFixture(t)
	opening := f.createOpening(t)

	_, err := f.svc.CreateApplication(context.Background(), f.student, opening.ID, "essay")
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestCreateApplicationRejectionLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.PatchApplicationStage(ctx, f.company, app.ID, domain.StageRejected)
	require.NoError(t, err)

	// A fresh opening at the same company stays locked.
	opening := f.createOpening(t)
	_, err = f.svc.CreateApplication(ctx, f.student, opening.ID, "second try")
	assert.ErrorIs(t, err, domain.ErrRejectionLocked)
}

func TestCreateApplicationRejectionLockClearedByAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.PatchApplicationStage(ctx, f.company, app.ID, domain.StageRejected)
	require.NoError(t, err)

	// Only an admin override lifts the lock.
	_, err = f.svc.PatchApplicationStage(ctx, f.admin, app.ID, domain.StageWithdrawn)
	require.NoError(t, err)

	opening := f.createOpening(t)
	_, err = f.svc.CreateApplication(ctx, f.student, opening.ID, "second try")
	assert.NoError(t, err)
}

func TestReapplyToSameOpeningConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.PatchApplicationStage(ctx, f.student, app.ID, domain.StageWithdrawn)
	require.NoError(t, err)

	// The withdrawn application still occupies its opening slot.
	_, err = f.svc.CreateApplication(ctx, f.student, app.OpeningID, "take two")
	assert.ErrorIs(t, err, domain.ErrAlreadyApplied)

	// Unlike a rejection, a withdrawal does not lock the company.
	opening := f.createOpening(t)
	_, err = f.svc.CreateApplication(ctx, f.student, opening.ID, "take two")
	assert.NoError(t, err)
}

func TestCreateApplicationOnClosedOpening(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	opening := f.createOpening(t)
	require.NoError(t, f.svc.Subscribe(ctx, f.student, f.company.CompanyID))

	_, err := f.svc.CloseOpening(ctx, f.company, opening.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateApplication(ctx, f.student, opening.ID, "essay")
	assert.ErrorIs(t, err, domain.ErrOpeningClosed)
}

func TestCreateApplicationAfterDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	opening := f.createOpening(t)
	require.NoError(t, f.svc.Subscribe(ctx, f.student, f.company.CompanyID))

	f.clock.Advance(31 * 24 * time.Hour)

	_, err := f.svc.CreateApplication(ctx, f.student, opening.ID, "essay")
	assert.ErrorIs(t, err, domain.ErrOpeningClosed)
}

func TestCreateApplicationEmitsOneEventAndNotifiesCompany(t *testing.T) {
	f := newFixture(t)
	app := f.subscribeAndApply(t, f.student)

	// subscribeAndApply emits: opening created, subscribed, application created.
	last := f.emitter.events[len(f.emitter.events)-1]
	assert.Equal(t, domain.EventApplicationsChanged, last.event.Name)
	assert.Equal(t, "created", last.event.Action)
	assert.Equal(t, app.ID, last.event.EntityID)
	assert.Equal(t, f.student.StudentID, last.audience.StudentID)
	assert.Equal(t, f.company.CompanyID, last.audience.CompanyID)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, f.company.CompanyID, f.notifier.messages[0].Recipient)
}

// --- Stage transition tests ---

func TestCompanyAdvancesThroughPipeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	for _, to := range []domain.Stage{domain.StageInterviewing, domain.StageOffer, domain.StagePlaced} {
		updated, err := f.svc.PatchApplicationStage(ctx, f.company, app.ID, to)
		require.NoError(t, err)
		assert.Equal(t, to, updated.Stage)
	}
}

func TestUnauthorizedTransitionLeavesStageUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.PatchApplicationStage(ctx, f.student, app.ID, domain.StageOffer)
	assert.ErrorIs(t, err, domain.ErrForbiddenTransition)

	got, err := f.svc.GetApplication(ctx, f.student, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageApplied, got.Stage)
}

func TestStudentWithdraws(t *testing.T) {
	f := newFixture(t)
	app := f.subscribeAndApply(t, f.student)

	updated, err := f.svc.PatchApplicationStage(context.Background(), f.student, app.ID, domain.StageWithdrawn)
	require.NoError(t, err)
	assert.Equal(t, domain.StageWithdrawn, updated.Stage)
}

func TestCompanyCannotTouchForeignApplication(t *testing.T) {
	f := newFixture(t)
	app := f.subscribeAndApply(t, f.student)

	otherCompany := domain.Identity{UserID: uuid.New(), Role: domain.RoleCompany, CompanyID: uuid.New()}
	_, err := f.svc.PatchApplicationStage(context.Background(), otherCompany, app.ID, domain.StageInterviewing)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestAdminOverrideBypassesEdgesAndAudits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	updated, err := f.svc.PatchApplicationStage(ctx, f.admin, app.ID, domain.StagePlaced)
	require.NoError(t, err)
	assert.Equal(t, domain.StagePlaced, updated.Stage)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "stage-override", f.audit.entries[0].Action)
	assert.Equal(t, f.admin.UserID, f.audit.entries[0].Actor)

	last := f.emitter.events[len(f.emitter.events)-1]
	assert.Equal(t, domain.EventAdminChanged, last.event.Name)
	assert.Equal(t, domain.EntityApplication, last.event.EntityType)
}

func TestConcurrentTransitionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	// The student withdraws between the company's read and write.
	_, err := f.svc.PatchApplicationStage(ctx, f.student, app.ID, domain.StageWithdrawn)
	require.NoError(t, err)

	_, err = f.svc.PatchApplicationStage(ctx, f.company, app.ID, domain.StageInterviewing)
	assert.Error(t, err)
}

// --- Essay tests ---

func TestPatchEssayOnlyWhileApplied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	updated, err := f.svc.PatchApplicationEssay(ctx, f.student, app.ID, "revised essay")
	require.NoError(t, err)
	assert.Equal(t, "revised essay", updated.Essay)

	_, err = f.svc.PatchApplicationStage(ctx, f.company, app.ID, domain.StageInterviewing)
	require.NoError(t, err)

	_, err = f.svc.PatchApplicationEssay(ctx, f.student, app.ID, "too late")
	assert.ErrorIs(t, err, domain.ErrEssayLocked)
}

func TestPatchEssayOwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.PatchApplicationEssay(context.Background(), f.student2, app.ID, "hijack")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestAdminEditsEssayRegardlessOfStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.PatchApplicationStage(ctx, f.company, app.ID, domain.StageInterviewing)
	require.NoError(t, err)

	// The applied-only lock holds for the student but not for an admin.
	_, err = f.svc.PatchApplicationEssay(ctx, f.student, app.ID, "too late")
	require.ErrorIs(t, err, domain.ErrEssayLocked)

	updated, err := f.svc.PatchApplicationEssay(ctx, f.admin, app.ID, "corrected by admin")
	require.NoError(t, err)
	assert.Equal(t, "corrected by admin", updated.Essay)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "essay-override", f.audit.entries[0].Action)
	assert.Equal(t, f.admin.UserID, f.audit.entries[0].Actor)

	last := f.emitter.events[len(f.emitter.events)-1]
	assert.Equal(t, domain.EventAdminChanged, last.event.Name)
	assert.Equal(t, domain.EntityApplication, last.event.EntityType)
}

// --- Clarification tests ---

func TestClarificationRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	thread, err := f.svc.SendClarificationRequest(ctx, f.company, app.ID, "Which semester are you in?")
	require.NoError(t, err)
	assert.True(t, thread.Pending())

	thread, err = f.svc.RespondClarificationRequest(ctx, f.student, app.ID, "Fifth.")
	require.NoError(t, err)
	assert.False(t, thread.Pending())
	require.NotNil(t, thread.ResponseText)
	assert.Equal(t, "Fifth.", *thread.ResponseText)

	// One answer per request.
	_, err = f.svc.RespondClarificationRequest(ctx, f.student, app.ID, "Again?")
	assert.ErrorIs(t, err, domain.ErrNoPendingRequest)
}

func TestRespondWithoutRequest(t *testing.T) {
	f := newFixture(t)
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.RespondClarificationRequest(context.Background(), f.student, app.ID, "answer")
	assert.ErrorIs(t, err, domain.ErrNoPendingRequest)
}

func TestClarificationSupersededRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.SendClarificationRequest(ctx, f.company, app.ID, "First question")
	require.NoError(t, err)

	// A re-asked question overwrites the first and is pending again.
	thread, err := f.svc.SendClarificationRequest(ctx, f.company, app.ID, "Better question")
	require.NoError(t, err)
	assert.True(t, thread.Pending())
	assert.Equal(t, "Better question", thread.RequestText)

	thread, err = f.svc.RespondClarificationRequest(ctx, f.student, app.ID, "Answer to the better one")
	require.NoError(t, err)
	assert.Equal(t, "Better question", thread.RequestText)
}

func TestClarificationNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)
	f.notifier.messages = nil

	_, err := f.svc.SendClarificationRequest(ctx, f.company, app.ID, "question")
	require.NoError(t, err)
	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, f.student.StudentID, f.notifier.messages[0].Recipient)

	_, err = f.svc.RespondClarificationRequest(ctx, f.student, app.ID, "answer")
	require.NoError(t, err)
	require.Len(t, f.notifier.messages, 2)
	assert.Equal(t, f.company.CompanyID, f.notifier.messages[1].Recipient)
}

// --- Interview tests ---

func TestScheduleInterviewRequiresInterviewingStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)
	when := f.clock.Now().Add(48 * time.Hour)

	_, err := f.svc.ScheduleInterview(ctx, f.company, app.ID, when, "HQ", "")
	assert.ErrorIs(t, err, domain.ErrStageConflict)

	_, err = f.svc.PatchApplicationStage(ctx, f.company, app.ID, domain.StageInterviewing)
	require.NoError(t, err)

	slot, err := f.svc.ScheduleInterview(ctx, f.company, app.ID, when, "HQ", "bring laptop")
	require.NoError(t, err)
	assert.Equal(t, app.ID, slot.ApplicationID)

	// Company mutations leave no audit trail.
	assert.Empty(t, f.audit.entries)
}

func TestAdminMutationsAreAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.SendClarificationRequest(ctx, f.admin, app.ID, "please verify enrollment")
	require.NoError(t, err)

	_, err = f.svc.PatchApplicationStage(ctx, f.admin, app.ID, domain.StageInterviewing)
	require.NoError(t, err)

	when := f.clock.Now().Add(24 * time.Hour)
	_, err = f.svc.ScheduleInterview(ctx, f.admin, app.ID, when, "remote", "")
	require.NoError(t, err)

	var actions []string
	for _, e := range f.audit.entries {
		actions = append(actions, e.Action)
		assert.Equal(t, f.admin.UserID, e.Actor)
	}
	assert.Equal(t, []string{"clarification-request", "stage-override", "interview-schedule"}, actions)
}

// --- Listing and visibility tests ---

func TestListApplicationsScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.subscribeAndApply(t, f.student)

	opening := f.createOpening(t)
	require.NoError(t, f.svc.Subscribe(ctx, f.student2, f.company.CompanyID))
	_, err := f.svc.CreateApplication(ctx, f.student2, opening.ID, "essay two")
	require.NoError(t, err)

	own, err := f.svc.ListApplications(ctx, f.student, domain.ScopeSelf)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	companyApps, err := f.svc.ListApplications(ctx, f.company, domain.ScopeCompany)
	require.NoError(t, err)
	assert.Len(t, companyApps, 2)

	all, err := f.svc.ListApplications(ctx, f.admin, domain.ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListApplicationsScopeMismatch(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListApplications(context.Background(), f.student, domain.ScopeAll)
	assert.ErrorIs(t, err, domain.ErrWrongRole)
}

func TestStudentCannotSeeForeignApplication(t *testing.T) {
	f := newFixture(t)
	app := f.subscribeAndApply(t, f.student)

	_, err := f.svc.GetApplication(context.Background(), f.student2, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestListAuditEntriesAdminOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListAuditEntries(context.Background(), f.student, 10)
	assert.ErrorIs(t, err, domain.ErrWrongRole)

	entries, err := f.svc.ListAuditEntries(context.Background(), f.admin, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// --- Dashboard tests ---

func TestBuildDashboardByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.subscribeAndApply(t, f.student)
	_, err := f.svc.SendClarificationRequest(ctx, f.company, app.ID, "question")
	require.NoError(t, err)

	studentView, err := f.svc.BuildDashboard(ctx, f.student)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, studentView.Role)
	require.NotNil(t, studentView.Student)
	assert.Nil(t, studentView.Company)
	assert.Len(t, studentView.Student.Applications, 1)
	assert.Equal(t, []uuid.UUID{app.ID}, studentView.Student.PendingClarifications)

	companyView, err := f.svc.BuildDashboard(ctx, f.company)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCompany, companyView.Role)
	require.NotNil(t, companyView.Company)
	assert.Len(t, companyView.Company.Applications, 1)

	adminView, err := f.svc.BuildDashboard(ctx, f.admin)
	require.NoError(t, err)
	require.NotNil(t, adminView.Admin)
	assert.Len(t, adminView.Admin.Applications, 1)
}

// --- Opening visibility ---

func TestListOpeningsGatedBySubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createOpening(t)

	visible, err := f.svc.ListOpenings(ctx, f.student)
	require.NoError(t, err)
	assert.Empty(t, visible)

	require.NoError(t, f.svc.Subscribe(ctx, f.student, f.company.CompanyID))

	visible, err = f.svc.ListOpenings(ctx, f.student)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}
