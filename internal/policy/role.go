package policy

import (
	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

const (
	// KidAgeLimit is the age below which every signup becomes a kid.
	KidAgeLimit = 16
	// AdultRoleMinAge gates guardian, teacher and caregiver.
	AdultRoleMinAge = 18
	// HealthcareMinAge gates healthcare_provider.
	HealthcareMinAge = 21
)

// adultRoles are the roles selectable at signup by users 16 and over.
// Anything else falls back to parent.
var adultRoles = map[model.Role]bool{
	model.RoleParent:     true,
	model.RoleGuardian:   true,
	model.RoleTeacher:    true,
	model.RoleCaregiver:  true,
	model.RoleHealthcare: true,
}

// minAges holds per-role minimum ages checked on top of the adult gate.
// Failing one is an AGE_RESTRICTION error, never a silent downgrade.
var minAges = map[model.Role]int{
	model.RoleHealthcare: HealthcareMinAge,
	model.RoleGuardian:   AdultRoleMinAge,
	model.RoleTeacher:    AdultRoleMinAge,
	model.RoleCaregiver:  AdultRoleMinAge,
}

// ResolveRole applies the age-eligibility rules, in order: under-16 forcing,
// adult-role fallback, then per-role minimum ages. An empty requested role
// defaults to parent.
func ResolveRole(age int, requested model.Role) (model.Role, error) {
	if age < KidAgeLimit {
		return model.RoleKid, nil
	}

	if requested == "" {
		requested = model.RoleParent
	}

	if min, gated := minAges[requested]; gated && age < min {
		return "", apperr.NewAgeRestriction(requested.String(), min)
	}

	if !adultRoles[requested] {
		return model.RoleParent, nil
	}

	return requested, nil
}

// assignableRoles maps an acting role to the roles it may hand out.
var assignableRoles = map[model.Role][]model.Role{
	model.RoleAdmin: {
		model.RoleKid, model.RoleParent, model.RoleGuardian, model.RoleTeacher,
		model.RoleClassTeacher, model.RoleExternalEducator, model.RoleCaregiver,
		model.RoleHealthcare, model.RolePrincipal, model.RoleAdmin,
	},
	model.RolePrincipal: {
		model.RoleClassTeacher, model.RoleTeacher, model.RoleHealthcare,
		model.RoleCaregiver, model.RoleExternalEducator,
	},
	model.RoleParent:   {model.RoleKid},
	model.RoleGuardian: {model.RoleKid},
}

// CanAssign reports whether actor may assign role to another profile.
func CanAssign(actor, role model.Role) bool {
	for _, allowed := range assignableRoles[actor] {
		if allowed == role {
			return true
		}
	}
	return false
}

// guardianRoles may add child records to their profile.
var guardianRoles = map[model.Role]bool{
	model.RoleParent:    true,
	model.RoleGuardian:  true,
	model.RoleTeacher:   true,
	model.RoleCaregiver: true,
	model.RoleAdmin:     true,
	model.RolePrincipal: true,
}

// CanAddChild reports whether role may add a child record.
func CanAddChild(role model.Role) bool {
	return guardianRoles[role]
}
