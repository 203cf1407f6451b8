package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/policy"
)

// defaultKidDOBYears is used when a kid role is assigned to a profile
// without a known date of birth. The resulting child record is marked
// dob_defaulted so the placeholder can be corrected later.
// TODO: collect a real date of birth during role assignment instead of
// defaulting.
const defaultKidDOBYears = 10

// Roles applies role assignments under the role-based authorization matrix.
type Roles struct {
	profiles model.ProfileStore
	children model.ChildStore
	logger   *logger.Logger
	now      func() time.Time
}

func NewRoles(profiles model.ProfileStore, children model.ChildStore, logger *logger.Logger) *Roles {
	return &Roles{
		profiles: profiles,
		children: children,
		logger:   logger,
		now:      time.Now,
	}
}

// Assign sets role on the target profile, authorized against the acting
// profile's role. Assigning kid additionally materializes a child record
// linked to the actor, inside one transaction with the role change.
func (r *Roles) Assign(ctx context.Context, actorID, targetID uuid.UUID, role model.Role) error {
	r.logger.Debug("Roles service: assigning role",
		"actor_id", actorID,
		"target_id", targetID,
		"role", role)

	if !role.Valid() {
		return apperr.NewInvalidRole(role.String())
	}

	actor, err := r.profiles.GetByID(ctx, actorID)
	if errors.Is(err, model.ErrNotFound) {
		return apperr.NewNotAuthenticated()
	}
	if err != nil {
		r.logger.Error("Roles service: failed to get actor profile", "actor_id", actorID, "error", err.Error())
		return apperr.NewAuthAPIError("")
	}

	if !policy.CanAssign(actor.Role, role) {
		return apperr.NewUnauthorized("Your role cannot assign this role")
	}

	target, err := r.profiles.GetByID(ctx, targetID)
	if errors.Is(err, model.ErrNotFound) {
		return apperr.NewNotFound("Profile")
	}
	if err != nil {
		r.logger.Error("Roles service: failed to get target profile", "target_id", targetID, "error", err.Error())
		return apperr.NewAuthAPIError("")
	}

	if role != model.RoleKid {
		if err := r.profiles.SetRole(ctx, targetID, role); err != nil {
			r.logger.Error("Roles service: failed to set role", "target_id", targetID, "error", err.Error())
			return apperr.NewProfileUpdateFailed()
		}
		r.logger.Info("Roles service: role assigned", "target_id", targetID, "role", role)
		return nil
	}

	child := r.childForProfile(target, actorID)
	if _, err := r.children.CreateLinkedWithRole(ctx, child, targetID, model.RoleKid, actorID); err != nil {
		r.logger.Error("Roles service: failed to assign kid role",
			"target_id", targetID,
			"error", err.Error())
		if errors.Is(err, model.ErrChildInsertFailed) {
			return apperr.NewChildCreationFailed()
		}
		return apperr.NewProfileUpdateFailed()
	}

	r.logger.Info("Roles service: kid role assigned", "target_id", targetID, "actor_id", actorID)
	return nil
}

// childForProfile builds the child record materialized by a kid assignment.
// The target's stored date of birth is used when present; otherwise a
// placeholder is written and flagged.
func (r *Roles) childForProfile(target model.Profile, actorID uuid.UUID) model.Child {
	now := r.now()

	dob := now.AddDate(-defaultKidDOBYears, 0, 0)
	defaulted := true
	if raw, ok := target.Metadata["dob"].(string); ok && raw != "" {
		if parsed, err := time.Parse(DOBLayout, raw); err == nil {
			dob = parsed
			defaulted = false
		}
	}

	return model.Child{
		ID:   uuid.New(),
		Name: target.FullName,
		DOB:  dob,
		Metadata: map[string]any{
			"is_self":        true,
			"linked_user_id": target.ID.String(),
			"dob_defaulted":  defaulted,
		},
		CreatedBy: actorID,
		CreatedAt: now,
	}
}
