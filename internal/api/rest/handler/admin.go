package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

// RoleService defines role assignment operations.
type RoleService interface {
	Assign(ctx context.Context, actorID, targetID uuid.UUID, role model.Role) error
}

// Admin handles the privileged HTTP endpoints.
type Admin struct {
	roleService    RoleService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAdmin creates a new Admin handler.
func NewAdmin(roleService RoleService, contextManager model.ContextManager, logger *logger.Logger) *Admin {
	return &Admin{
		roleService:    roleService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type assignRoleRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// AssignRole sets a role on a target profile, authorized against the acting
// profile's role.
func (h *Admin) AssignRole(c *gin.Context) {
	actorID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == uuid.Nil {
		handleError(c, apperr.NewMissingFields("User id and role are required"))
		return
	}

	h.logger.Debug("Admin handler: processing role assignment",
		"actor_id", actorID,
		"target_id", req.UserID,
		"role", req.Role)

	if err := h.roleService.Assign(c.Request.Context(), actorID, req.UserID, model.Role(req.Role)); err != nil {
		h.logger.Error("Admin handler: role assignment failed",
			"target_id", req.UserID,
			"error", err.Error())
		handleError(c, err)
		return
	}

	h.logger.Info("Admin handler: role assigned", "target_id", req.UserID, "role", req.Role)

	c.JSON(http.StatusOK, gin.H{"message": "Role assigned"})
}
