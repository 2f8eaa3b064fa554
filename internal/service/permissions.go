package service

import "github.com/noah-isme/doctrack-api/internal/models"

// IsSuperuser reports the unconditional full grant, held either through the
// per-user flag or an active SUPERUSER assignment.
func IsSuperuser(user *models.User) bool {
	if user == nil {
		return false
	}
	return user.IsSuperuser || HasRole(user, models.RoleSuperuser)
}

// HasRole reports whether the user holds an active assignment of role.
func HasRole(user *models.User, role models.RoleName) bool {
	if user == nil {
		return false
	}
	for _, assignment := range user.Roles {
		if assignment.Active && assignment.Role == role {
			return true
		}
	}
	return false
}

// IsSectionHead honours both the per-user flag and the SECTION_HEAD role.
func IsSectionHead(user *models.User) bool {
	if user == nil {
		return false
	}
	return user.IsSectionHead || HasRole(user, models.RoleSectionHead)
}

// PermissionsOf unions the capabilities of every active role assignment.
func PermissionsOf(user *models.User) models.Capabilities {
	if user == nil {
		return models.Capabilities{}
	}
	if IsSuperuser(user) {
		return models.FullCapabilities
	}
	var caps models.Capabilities
	for _, assignment := range user.Roles {
		if !assignment.Active {
			continue
		}
		caps = caps.Union(models.RoleTable[assignment.Role])
	}
	return caps
}
