package entities

// Role is one of the three tenant kinds that own a disjoint slice of data
type Role string

const (
	RolePatient  Role = "patient"
	RolePharmacy Role = "pharmacy"
	RoleClinic   Role = "clinic"
)

// Valid reports whether the role is one of the known tenant kinds
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RolePharmacy, RoleClinic:
		return true
	}
	return false
}

// DashboardPath returns the dashboard route owned by the role
func (r Role) DashboardPath() string {
	return "/dashboard/" + string(r)
}

// RoleAssignment binds an authenticated identity to exactly one tenant kind.
// At most one row exists per user.
type RoleAssignment struct {
	UserID string `json:"user_id" db:"user_id"`
	Role   Role   `json:"role" db:"role"`
}

// ResolutionState tracks the lifecycle of an asynchronous role lookup.
// "not yet resolved" is deliberately distinct from "resolved to no role"
// so route guarding can wait instead of misrouting.
type ResolutionState int

const (
	// ResolutionUnknown means the lookup has not completed yet
	ResolutionUnknown ResolutionState = iota

	// ResolutionResolved means the lookup found exactly one role
	ResolutionResolved

	// ResolutionNone means the lookup completed and no role row exists
	ResolutionNone
)

// Resolution is the outcome of a role lookup
type Resolution struct {
	State ResolutionState
	Role  Role

	// Fallback is set when Role was assigned by the failure-fallback
	// policy rather than read from the role-assignment table
	Fallback bool
}

// ResolvedRole returns the role when resolved, or "" otherwise
func (r Resolution) ResolvedRole() Role {
	if r.State == ResolutionResolved {
		return r.Role
	}
	return ""
}
