// Package policy holds the two authorization primitives every guard composes from.
// Admin permissions are a superset of staff permissions and a nil profile satisfies neither.
package policy

import "ss-uniforms/internal/models"

// HasAdminPermissions is true iff the profile carries the admin role.
func HasAdminPermissions(p *models.Profile) bool {
	return p != nil && p.Role == models.RoleAdmin
}

// HasStaffPermissions is true for admin and staff profiles.
func HasStaffPermissions(p *models.Profile) bool {
	return p != nil && (p.Role == models.RoleAdmin || p.Role == models.RoleStaff)
}

// Satisfies evaluates a required role against a profile. An empty requirement
// accepts any present profile.
func Satisfies(p *models.Profile, required models.Role) bool {
	switch required {
	case "":
		return p != nil
	case models.RoleAdmin:
		return HasAdminPermissions(p)
	case models.RoleStaff:
		return HasStaffPermissions(p)
	default:
		return false
	}
}
