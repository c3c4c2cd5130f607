package domain

// Stage is an application's position in the pipeline.
type Stage string

const (
	StageApplied      Stage = "applied"
	StageInterviewing Stage = "interviewing"
	StageOffer        Stage = "offer"
	StagePlaced       Stage = "placed"
	StageWaitlisted   Stage = "waitlisted"
	StageRejected     Stage = "rejected"
	StageWithdrawn    Stage = "withdrawn"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageApplied, StageInterviewing, StageOffer, StagePlaced,
		StageWaitlisted, StageRejected, StageWithdrawn:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions leave s.
func (s Stage) Terminal() bool {
	switch s {
	case StagePlaced, StageRejected, StageWithdrawn:
		return true
	default:
		return false
	}
}

// StageAllows reports whether from→to is an edge of the stage machine,
// independent of who performs it.
func StageAllows(from, to Stage) bool {
	if from.Terminal() || from == to || !to.Valid() {
		return false
	}
	switch to {
	case StageInterviewing:
		return from == StageApplied || from == StageWaitlisted
	case StageOffer:
		return from == StageInterviewing
	case StagePlaced:
		return from == StageOffer
	case StageWaitlisted:
		return from == StageApplied || from == StageInterviewing
	case StageRejected, StageWithdrawn:
		return true // any non-terminal
	default:
		return false
	}
}

// RoleAllows reports whether role may perform the from→to transition.
// Admin changes bypass the edge set entirely; company and student changes
// must both follow an edge and be on that role's side of the machine.
func RoleAllows(role Role, from, to Stage) bool {
	if role == RoleAdmin {
		return to.Valid() && from != to
	}
	if !StageAllows(from, to) {
		return false
	}
	switch role {
	case RoleCompany:
		return to == StageInterviewing || to == StageOffer || to == StagePlaced ||
			to == StageRejected || to == StageWaitlisted
	case RoleStudent:
		return to == StageWithdrawn
	default:
		return false
	}
}
