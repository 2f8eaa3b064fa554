package models

// RoleName identifies one of the fixed workflow roles.
type RoleName string

const (
	RoleSuperuser      RoleName = "SUPERUSER"
	RoleReceiveSection RoleName = "RECEIVE_SECTION"
	RoleSectionHead    RoleName = "SECTION_HEAD"
	RoleSectionMember  RoleName = "SECTION_MEMBER"
	RoleViewer         RoleName = "VIEWER"
)

// Capabilities is the set of flags a role grants.
type Capabilities struct {
	CanReceive     bool `json:"canReceive"`
	CanForward     bool `json:"canForward"`
	CanApprove     bool `json:"canApprove"`
	CanManageUsers bool `json:"canManageUsers"`
}

// Union ORs two capability sets.
func (c Capabilities) Union(other Capabilities) Capabilities {
	return Capabilities{
		CanReceive:     c.CanReceive || other.CanReceive,
		CanForward:     c.CanForward || other.CanForward,
		CanApprove:     c.CanApprove || other.CanApprove,
		CanManageUsers: c.CanManageUsers || other.CanManageUsers,
	}
}

// FullCapabilities is granted unconditionally to superusers.
var FullCapabilities = Capabilities{CanReceive: true, CanForward: true, CanApprove: true, CanManageUsers: true}

// RoleTable is the fixed role definition set. It is not user editable.
var RoleTable = map[RoleName]Capabilities{
	RoleSuperuser:      FullCapabilities,
	RoleReceiveSection: {CanReceive: true, CanForward: true},
	RoleSectionHead:    {CanForward: true, CanApprove: true},
	RoleSectionMember:  {CanForward: true},
	RoleViewer:         {},
}

// Valid reports whether the name belongs to the fixed role table.
func (r RoleName) Valid() bool {
	_, ok := RoleTable[r]
	return ok
}

// RoleAssignment links a user to a role.
type RoleAssignment struct {
	UserID string   `db:"user_id" json:"-"`
	Role   RoleName `db:"role_name" json:"role"`
	Active bool     `db:"active" json:"active"`
}
