package model

// Role enumerates application roles a profile can hold.
type Role string

const (
	// RoleUnverified is assigned at signup and held until email verification.
	RoleUnverified Role = "unverified"
	// RoleKid is forced for users under 16 and for linked child accounts.
	RoleKid Role = "kid"
	// RoleParent is the default adult role.
	RoleParent           Role = "parent"
	RoleGuardian         Role = "guardian"
	RoleTeacher          Role = "teacher"
	RoleClassTeacher     Role = "class_teacher"
	RoleExternalEducator Role = "external_educator"
	RoleCaregiver        Role = "caregiver"
	RoleHealthcare       Role = "healthcare_provider"
	RolePrincipal        Role = "principal"
	RoleAdmin            Role = "admin"
)

// AllRoles lists every enumerated role.
var AllRoles = []Role{
	RoleUnverified,
	RoleKid,
	RoleParent,
	RoleGuardian,
	RoleTeacher,
	RoleClassTeacher,
	RoleExternalEducator,
	RoleCaregiver,
	RoleHealthcare,
	RolePrincipal,
	RoleAdmin,
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
