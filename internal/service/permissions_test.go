package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/doctrack-api/internal/models"
)

func TestPermissionsOfUnionsActiveRoles(t *testing.T) {
	user := &models.User{Roles: []models.RoleAssignment{
		{Role: models.RoleReceiveSection, Active: true},
		{Role: models.RoleSectionHead, Active: true},
		{Role: models.RoleSuperuser, Active: false},
	}}

	caps := PermissionsOf(user)
	assert.True(t, caps.CanReceive)
	assert.True(t, caps.CanForward)
	assert.True(t, caps.CanApprove)
	assert.False(t, caps.CanManageUsers)
}

func TestPermissionsOfSuperuserFlag(t *testing.T) {
	assert.Equal(t, models.FullCapabilities, PermissionsOf(&models.User{IsSuperuser: true}))
	assert.Equal(t, models.Capabilities{}, PermissionsOf(nil))
	assert.Equal(t, models.Capabilities{}, PermissionsOf(&models.User{Roles: []models.RoleAssignment{{Role: models.RoleViewer, Active: true}}}))
}

func TestIsSectionHead(t *testing.T) {
	assert.True(t, IsSectionHead(&models.User{IsSectionHead: true}))
	assert.True(t, IsSectionHead(&models.User{Roles: []models.RoleAssignment{{Role: models.RoleSectionHead, Active: true}}}))
	assert.False(t, IsSectionHead(&models.User{Roles: []models.RoleAssignment{{Role: models.RoleSectionHead}}}))
	assert.False(t, IsSectionHead(nil))
}

func TestHasRoleIgnoresInactive(t *testing.T) {
	user := &models.User{Roles: []models.RoleAssignment{{Role: models.RoleReceiveSection, Active: false}}}
	assert.False(t, HasRole(user, models.RoleReceiveSection))
	user.Roles[0].Active = true
	assert.True(t, HasRole(user, models.RoleReceiveSection))
}

func TestIsSuperuserHonoursActiveRole(t *testing.T) {
	assert.True(t, IsSuperuser(&models.User{IsSuperuser: true}))
	assert.True(t, IsSuperuser(&models.User{Roles: []models.RoleAssignment{{Role: models.RoleSuperuser, Active: true}}}))
	assert.False(t, IsSuperuser(&models.User{Roles: []models.RoleAssignment{{Role: models.RoleSuperuser}}}))
	assert.False(t, IsSuperuser(nil))
}
