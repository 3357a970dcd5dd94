package constants

import "fmt"

// Role names as stored on users.role.
const (
	RoleAdmin    = "admin"
	RoleDistrict = "district"
)

// Error message templates for role gates.
const (
	ErrOnlyAdminsCanAccess    = "Only admins may access %s."
	ErrOnlyDistrictsCanAccess = "Only district users may access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorDistrict(feature string) string {
	return fmt.Sprintf(ErrOnlyDistrictsCanAccess, feature)
}

// Grouped role slices for route guards.
var (
	AllRoles = []string{
		RoleAdmin,
		RoleDistrict,
	}

	AdminOnly = []string{
		RoleAdmin,
	}

	DistrictOnly = []string{
		RoleDistrict,
	}
)

// ValidRole reports whether s names a role this platform knows about.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleDistrict
}
