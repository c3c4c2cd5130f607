package domain

import "github.com/google/uuid"

// EventName identifies which collection a change event invalidates.
type EventName string

const (
	EventApplicationsChanged EventName = "applications-changed"
	EventOpeningsChanged     EventName = "openings-changed"
	EventAdminChanged        EventName = "admin-changed"
)

// Entity-type hints carried by events for the admin sidebar mapping.
const (
	EntityApplication = "application"
	EntitySupport     = "support"
	EntityStudent     = "student"
	EntityCompany     = "company"
)

// ChangeEvent is the payload broadcast after a successful mutation. It is a
// change descriptor only: an action verb plus affected id(s), never a delta.
// Receivers refetch their authorized view of the named collection in full.
type ChangeEvent struct {
	Name       EventName `json:"name"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   uuid.UUID `json:"entity_id"`
	CompanyID  uuid.UUID `json:"company_id,omitempty"`
}

// Audience scopes delivery server-side. A zero StudentID/CompanyID means
// every session of that role; a set id narrows delivery to that identity.
// Admin sessions are included in every audience.
type Audience struct {
	Roles     []Role    `json:"roles"`
	StudentID uuid.UUID `json:"student_id,omitempty"`
	CompanyID uuid.UUID `json:"company_id,omitempty"`
}

// Covers reports whether the audience includes the given identity.
func (a Audience) Covers(id Identity) bool {
	if id.Role == RoleAdmin {
		return true
	}
	for _, r := range a.Roles {
		if r != id.Role {
			continue
		}
		switch id.Role {
		case RoleStudent:
			if a.StudentID == uuid.Nil || a.StudentID == id.StudentID {
				return true
			}
		case RoleCompany:
			if a.CompanyID == uuid.Nil || a.CompanyID == id.CompanyID {
				return true
			}
		}
	}
	return false
}
