package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/policy"
)

// avatarExtensions maps accepted avatar content types to object key
// extensions.
var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// Profiles manages profile reads, self-service updates and avatars.
type Profiles struct {
	profiles model.ProfileStore
	storage  model.Storage
	logger   *logger.Logger
	now      func() time.Time
}

func NewProfiles(profiles model.ProfileStore, storage model.Storage, logger *logger.Logger) *Profiles {
	return &Profiles{
		profiles: profiles,
		storage:  storage,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the acting account's profile.
func (p *Profiles) Get(ctx context.Context, accountID uuid.UUID) (model.Profile, error) {
	profile, err := p.profiles.GetByID(ctx, accountID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, apperr.NewNotFound("Profile")
	}
	if err != nil {
		p.logger.Error("Profiles service: failed to get profile", "account_id", accountID, "error", err.Error())
		return model.Profile{}, apperr.NewAuthAPIError("")
	}

	return profile, nil
}

// UpdateParams describes a profile upsert. UserID defaults to the acting
// account; Role, when set, must pass the assignment matrix.
type UpdateParams struct {
	UserID   uuid.UUID
	FullName string
	Role     string
}

// Update upserts a profile's display fields. Updating another account's
// profile, or changing a role, requires assignment rights over that role;
// role changes for kids still go through role assignment so the linked
// child record is created.
func (p *Profiles) Update(ctx context.Context, actorID uuid.UUID, params UpdateParams) (model.Profile, error) {
	if params.FullName == "" {
		return model.Profile{}, apperr.NewMissingFields("Full name is required")
	}

	targetID := params.UserID
	if targetID == uuid.Nil {
		targetID = actorID
	}

	role := model.RoleUnverified
	if existing, err := p.profiles.GetByID(ctx, targetID); err == nil {
		role = existing.Role
	}

	requested := model.Role(params.Role)
	if params.Role != "" && requested != role {
		if !requested.Valid() {
			return model.Profile{}, apperr.NewInvalidRole(params.Role)
		}
		actor, err := p.profiles.GetByID(ctx, actorID)
		if err != nil || !policy.CanAssign(actor.Role, requested) {
			return model.Profile{}, apperr.NewUnauthorized("You cannot update this profile")
		}
		role = requested
	} else if targetID != actorID {
		actor, err := p.profiles.GetByID(ctx, actorID)
		if err != nil || (actor.Role != model.RoleAdmin && !policy.CanAssign(actor.Role, role)) {
			return model.Profile{}, apperr.NewUnauthorized("You cannot update this profile")
		}
	}

	if err := p.profiles.Upsert(ctx, targetID, params.FullName, role); err != nil {
		p.logger.Error("Profiles service: failed to upsert profile", "account_id", targetID, "error", err.Error())
		return model.Profile{}, apperr.NewProfileUpdateFailed()
	}

	p.logger.Info("Profiles service: profile updated", "account_id", targetID, "role", role)

	return p.Get(ctx, targetID)
}

// UploadAvatar stores the avatar in object storage and records its key on
// the profile. The previous avatar object, if any, is overwritten by key.
func (p *Profiles) UploadAvatar(ctx context.Context, accountID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", apperr.NewMissingFields("Avatar must be a PNG, JPEG or WebP image")
	}

	key := fmt.Sprintf("avatars/%s.%s", accountID, ext)
	if err := p.storage.Upload(ctx, key, reader, size, contentType); err != nil {
		p.logger.Error("Profiles service: failed to upload avatar", "account_id", accountID, "error", err.Error())
		return "", apperr.NewProfileUpdateFailed()
	}

	url := "/profiles/avatar/" + key
	if err := p.profiles.SetAvatarURL(ctx, accountID, url); err != nil {
		p.logger.Error("Profiles service: failed to record avatar url", "account_id", accountID, "error", err.Error())
		return "", apperr.NewProfileUpdateFailed()
	}

	p.logger.Info("Profiles service: avatar uploaded", "account_id", accountID, "key", key)
	return url, nil
}

// DownloadAvatar streams a stored avatar object.
func (p *Profiles) DownloadAvatar(ctx context.Context, key string) (io.ReadCloser, error) {
	exists, err := p.storage.Exists(ctx, key)
	if err != nil {
		p.logger.Error("Profiles service: failed to check avatar", "key", key, "error", err.Error())
		return nil, apperr.NewAuthAPIError("")
	}
	if !exists {
		return nil, apperr.NewNotFound("Avatar")
	}

	return p.storage.Download(ctx, key)
}
