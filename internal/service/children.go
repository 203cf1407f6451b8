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

// Children manages child records linked to guardian profiles.
type Children struct {
	children model.ChildStore
	profiles model.ProfileStore
	auth     *Auth
	logger   *logger.Logger
	now      func() time.Time
}

func NewChildren(children model.ChildStore, profiles model.ProfileStore, auth *Auth, logger *logger.Logger) *Children {
	return &Children{
		children: children,
		profiles: profiles,
		auth:     auth,
		logger:   logger,
		now:      time.Now,
	}
}

// AddChildParams carries a child creation request. When CreateAccount is
// set, a login-capable kid account is registered for the child as well.
type AddChildParams struct {
	Name     string
	DOB      string
	Gender   string
	Metadata map[string]any

	CreateAccount bool
	Email         string
	Password      string
}

// Add creates a child record and links it to the acting guardian's profile
// atomically. The optional child account is registered first, so the child
// record can carry the linked account id.
func (c *Children) Add(ctx context.Context, actorID uuid.UUID, params AddChildParams) (model.Child, error) {
	c.logger.Debug("Children service: adding child", "actor_id", actorID)

	actor, err := c.profiles.GetByID(ctx, actorID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Child{}, apperr.NewNotAuthenticated()
	}
	if err != nil {
		c.logger.Error("Children service: failed to get actor profile", "actor_id", actorID, "error", err.Error())
		return model.Child{}, apperr.NewAuthAPIError("")
	}

	if !policy.CanAddChild(actor.Role) {
		return model.Child{}, apperr.NewUnauthorized("Only guardian roles can add children")
	}

	if params.Name == "" {
		return model.Child{}, apperr.NewMissingFields("Child name is required")
	}
	if params.DOB == "" {
		return model.Child{}, apperr.NewDOBRequired()
	}
	dob, err := time.Parse(DOBLayout, params.DOB)
	if err != nil {
		return model.Child{}, apperr.NewInvalidDate("Invalid date of birth")
	}

	metadata := map[string]any{}
	for k, v := range params.Metadata {
		metadata[k] = v
	}

	if params.CreateAccount {
		result, err := c.auth.SignUpChild(ctx, SignUpParams{
			Email:    params.Email,
			Password: params.Password,
			FullName: params.Name,
			DOB:      params.DOB,
		})
		if err != nil {
			return model.Child{}, err
		}
		metadata["has_user_account"] = true
		metadata["linked_user_id"] = result.AccountID.String()
	}

	child := model.Child{
		ID:        uuid.New(),
		Name:      params.Name,
		DOB:       dob,
		Gender:    params.Gender,
		Metadata:  metadata,
		CreatedBy: actorID,
		CreatedAt: c.now(),
	}

	child, err = c.children.CreateLinked(ctx, child, actorID)
	if err != nil {
		c.logger.Error("Children service: failed to create linked child",
			"actor_id", actorID,
			"error", err.Error())
		if errors.Is(err, model.ErrChildLinkFailed) {
			return model.Child{}, apperr.NewProfileUpdateFailed()
		}
		return model.Child{}, apperr.NewChildCreationFailed()
	}

	c.logger.Info("Children service: child added", "child_id", child.ID, "actor_id", actorID)

	return child, nil
}

// Get returns a child visible to the actor: admins see everything, other
// roles only children linked to their profile.
func (c *Children) Get(ctx context.Context, actorID, childID uuid.UUID) (model.Child, error) {
	actor, err := c.profiles.GetByID(ctx, actorID)
	if err != nil {
		return model.Child{}, apperr.NewNotAuthenticated()
	}

	if actor.Role != model.RoleAdmin && !containsID(actor.ChildrenIDs, childID) {
		return model.Child{}, apperr.NewNotFound("Child")
	}

	child, err := c.children.GetByID(ctx, childID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Child{}, apperr.NewNotFound("Child")
	}
	if err != nil {
		c.logger.Error("Children service: failed to get child", "child_id", childID, "error", err.Error())
		return model.Child{}, apperr.NewAuthAPIError("")
	}

	return child, nil
}

// Remove deletes a child the actor owns and unlinks it from the actor's
// profile in the same transaction.
func (c *Children) Remove(ctx context.Context, actorID, childID uuid.UUID) error {
	err := c.children.DeleteOwned(ctx, childID, actorID)
	if errors.Is(err, model.ErrNotFound) {
		return apperr.NewNotFound("Child")
	}
	if err != nil {
		c.logger.Error("Children service: failed to delete child",
			"child_id", childID,
			"actor_id", actorID,
			"error", err.Error())
		return apperr.NewAuthAPIError("")
	}

	c.logger.Info("Children service: child removed", "child_id", childID, "actor_id", actorID)
	return nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
