package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
)

// DashboardView is the role-shaped payload of the dashboard endpoint. Exactly
// one of the three branches is set, selected by Role. Clients switch on Role
// instead of probing optional fields.
type DashboardView struct {
	Role    domain.Role  `json:"role"`
	Student *StudentView `json:"student,omitempty"`
	Company *CompanyView `json:"company,omitempty"`
	Admin   *AdminView   `json:"admin,omitempty"`
}

// StudentView is what a student session renders: subscribed companies, the
// openings those companies published, the student's own applications and any
// clarification requests still waiting for an answer.
type StudentView struct {
	Subscriptions         []domain.Subscription `json:"subscriptions"`
	Openings              []domain.Opening      `json:"openings"`
	Applications          []domain.Application  `json:"applications"`
	PendingClarifications []uuid.UUID           `json:"pending_clarifications"`
}

type CompanyView struct {
	Openings     []domain.Opening     `json:"openings"`
	Applications []domain.Application `json:"applications"`
}

type AdminView struct {
	Openings     []domain.Opening     `json:"openings"`
	Applications []domain.Application `json:"applications"`
	AuditEntries []domain.AuditEntry  `json:"audit_entries"`
}

// BuildDashboard assembles the caller's full authorized view in one call.
// This is the fetch target of the refetch-on-signal protocol: after any
// change event a client may simply re-request its dashboard.
func (s *Service) BuildDashboard(ctx context.Context, id domain.Identity) (*DashboardView, error) {
	switch id.Role {
	case domain.RoleStudent:
		return s.buildStudentView(ctx, id)
	case domain.RoleCompany:
		return s.buildCompanyView(ctx, id)
	case domain.RoleAdmin:
		return s.buildAdminView(ctx, id)
	default:
		return nil, domain.ErrWrongRole
	}
}

func (s *Service) buildStudentView(ctx context.Context, id domain.Identity) (*DashboardView, error) {
	subs, err := s.subscriptions.ListByStudent(ctx, id.StudentID)
	if err != nil {
		return nil, err
	}
	openings, err := s.openings.ListForStudent(ctx, id.StudentID)
	if err != nil {
		return nil, err
	}
	apps, err := s.applications.ListByStudent(ctx, id.StudentID)
	if err != nil {
		return nil, err
	}
	pending, err := s.clarifications.ListPendingByStudent(ctx, id.StudentID)
	if err != nil {
		return nil, err
	}
	return &DashboardView{
		Role: domain.RoleStudent,
		Student: &StudentView{
			Subscriptions:         subs,
			Openings:              openings,
			Applications:          apps,
			PendingClarifications: pending,
		},
	}, nil
}

func (s *Service) buildCompanyView(ctx context.Context, id domain.Identity) (*DashboardView, error) {
	openings, err := s.openings.ListByCompany(ctx, id.CompanyID)
	if err != nil {
		return nil, err
	}
	apps, err := s.applications.ListByCompany(ctx, id.CompanyID)
	if err != nil {
		return nil, err
	}
	return &DashboardView{
		Role:    domain.RoleCompany,
		Company: &CompanyView{Openings: openings, Applications: apps},
	}, nil
}

func (s *Service) buildAdminView(ctx context.Context, id domain.Identity) (*DashboardView, error) {
	openings, err := s.openings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := s.applications.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.audit.ListRecent(ctx, defaultAuditLimit)
	if err != nil {
		return nil, err
	}
	return &DashboardView{
		Role:  domain.RoleAdmin,
		Admin: &AdminView{Openings: openings, Applications: apps, AuditEntries: entries},
	}, nil
}
