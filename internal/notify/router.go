// Package notify derives UI notification targets from change events and
// delivers best-effort side notifications.
package notify

import (
	"github.com/google/uuid"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
)

// Target is the UI surface a client should badge for an incoming event.
type Target string

const (
	TargetNone         Target = ""
	TargetApplications Target = "applications"
	TargetInternships  Target = "internships"
	TargetApplicants   Target = "applicants"
	TargetSupport      Target = "support"
	TargetStudents     Target = "students"
	TargetCompanies    Target = "companies"
)

// CachedState is the client's locally cached view the router consults.
// It is read-only input: the router itself is a pure function.
type CachedState struct {
	// SubscribedCompanies is the set of company ids the student subscribes to.
	SubscribedCompanies map[uuid.UUID]bool
}

// Route maps (role, event, cached state) to the UI target to badge.
// The latest event is authoritative: callers must apply the most recent
// result and assume nothing about delivery ordering.
func Route(role domain.Role, ev domain.ChangeEvent, state CachedState) Target {
	switch role {
	case domain.RoleStudent:
		return routeStudent(ev, state)
	case domain.RoleCompany:
		return routeCompany(ev)
	case domain.RoleAdmin:
		return routeAdmin(ev)
	default:
		return TargetNone
	}
}

func routeStudent(ev domain.ChangeEvent, state CachedState) Target {
	switch ev.Name {
	case domain.EventApplicationsChanged:
		// Covers stage changes and clarification activity alike: both live
		// on the applications surface.
		return TargetApplications
	case domain.EventOpeningsChanged:
		if ev.CompanyID != uuid.Nil && !state.SubscribedCompanies[ev.CompanyID] {
			return TargetNone
		}
		return TargetInternships
	case domain.EventAdminChanged:
		// An admin override still invalidates the owner's applications view.
		if ev.EntityType == domain.EntityApplication {
			return TargetApplications
		}
		return TargetNone
	default:
		return TargetNone
	}
}

func routeCompany(ev domain.ChangeEvent) Target {
	switch ev.Name {
	case domain.EventApplicationsChanged:
		return TargetApplicants
	case domain.EventAdminChanged:
		if ev.EntityType == domain.EntityApplication {
			return TargetApplicants
		}
		return TargetNone
	default:
		return TargetNone
	}
}

func routeAdmin(ev domain.ChangeEvent) Target {
	switch ev.EntityType {
	case domain.EntitySupport:
		return TargetSupport
	case domain.EntityApplication:
		return TargetApplications
	case domain.EntityStudent:
		return TargetStudents
	case domain.EntityCompany:
		return TargetCompanies
	default:
		return TargetNone
	}
}
