package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/service"
)

// ProfileService defines profile read, update and avatar operations.
type ProfileService interface {
	Get(ctx context.Context, accountID uuid.UUID) (model.Profile, error)
	Update(ctx context.Context, actorID uuid.UUID, params service.UpdateParams) (model.Profile, error)
	UploadAvatar(ctx context.Context, accountID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
	DownloadAvatar(ctx context.Context, key string) (io.ReadCloser, error)
}

// Profile handles the HTTP endpoints for profiles.
type Profile struct {
	profileService ProfileService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewProfile creates a new Profile handler.
func NewProfile(profileService ProfileService, contextManager model.ContextManager, logger *logger.Logger) *Profile {
	return &Profile{
		profileService: profileService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func profileResponse(p model.Profile) gin.H {
	return gin.H{
		"id":           p.ID,
		"full_name":    p.FullName,
		"email":        p.Email,
		"role":         p.Role,
		"metadata":     p.Metadata,
		"children_ids": p.ChildrenIDs,
		"avatar_url":   p.AvatarURL,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	}
}

// Me returns the acting account's profile.
func (h *Profile) Me(c *gin.Context) {
	accountID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), accountID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(profile))
}

type updateProfileRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
}

// Update upserts a profile. user_id defaults to the acting account.
func (h *Profile) Update(c *gin.Context) {
	accountID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.NewMissingFields("Invalid request body"))
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), accountID, service.UpdateParams{
		UserID:   req.UserID,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		h.logger.Error("Profile handler: update failed", "account_id", accountID, "error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(profile))
}

// UploadAvatar stores a multipart avatar image for the acting account.
func (h *Profile) UploadAvatar(c *gin.Context) {
	accountID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		handleError(c, apperr.NewMissingFields("Avatar file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, apperr.NewAuthAPIError(""))
		return
	}
	defer file.Close()

	url, err := h.profileService.UploadAvatar(
		c.Request.Context(),
		accountID,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		h.logger.Error("Profile handler: avatar upload failed", "account_id", accountID, "error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

// DownloadAvatar streams a stored avatar object.
func (h *Profile) DownloadAvatar(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		handleError(c, apperr.NewNotFound("Avatar"))
		return
	}

	object, err := h.profileService.DownloadAvatar(c.Request.Context(), key)
	if err != nil {
		handleError(c, err)
		return
	}
	defer object.Close()

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, object); err != nil {
		h.logger.Error("Profile handler: avatar stream failed", "key", key, "error", err.Error())
	}
}
