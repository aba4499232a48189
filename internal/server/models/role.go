package models

// Role is the closed set of user roles. Authorization checks go through
// AnyOf rather than comparing raw strings at call sites.
type Role string

const (
	RoleSuperAdmin       Role = "SUPER_ADMIN"
	RoleAdmin            Role = "ADMIN"
	RoleZonalCoordinator Role = "ZONAL_COORDINATOR"
	RoleCellLeader       Role = "CELL_LEADER"
	RoleFollowUpTeam     Role = "FOLLOW_UP_TEAM"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleZonalCoordinator, RoleCellLeader, RoleFollowUpTeam:
		return true
	}
	return false
}

// AnyOf reports whether r is one of the given roles.
func (r Role) AnyOf(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
