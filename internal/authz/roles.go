package authz

import "absensi/internal/models"

func IsAdmin(role string) bool {
	return role == models.RoleAdmin
}

func IsKnownRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleEmployee
}

// CanAccessUser reports whether the caller may read or act on targetID's data.
func CanAccessUser(callerID int, role string, targetID int) bool {
	return IsAdmin(role) || (callerID > 0 && callerID == targetID)
}
