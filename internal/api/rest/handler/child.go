package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/service"
)

// ChildService defines child record operations.
type ChildService interface {
	Add(ctx context.Context, actorID uuid.UUID, params service.AddChildParams) (model.Child, error)
	Get(ctx context.Context, actorID, childID uuid.UUID) (model.Child, error)
	Remove(ctx context.Context, actorID, childID uuid.UUID) error
}

// Child handles the HTTP endpoints for child records.
type Child struct {
	childService   ChildService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewChild creates a new Child handler.
func NewChild(childService ChildService, contextManager model.ContextManager, logger *logger.Logger) *Child {
	return &Child{
		childService:   childService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type addChildRequest struct {
	Name     string         `json:"name"`
	DOB      string         `json:"dob"`
	Gender   string         `json:"gender"`
	Metadata map[string]any `json:"metadata"`

	CreateAccount bool   `json:"create_account"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

func childResponse(child model.Child) gin.H {
	return gin.H{
		"id":         child.ID,
		"name":       child.Name,
		"dob":        child.DOB.Format(service.DOBLayout),
		"gender":     child.Gender,
		"metadata":   child.Metadata,
		"created_by": child.CreatedBy,
		"created_at": child.CreatedAt,
	}
}

// Add creates a child record linked to the acting guardian, optionally with
// a login-capable child account.
func (h *Child) Add(c *gin.Context) {
	actorID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	var req addChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.NewMissingFields("Invalid request body"))
		return
	}

	h.logger.Debug("Child handler: processing add request", "actor_id", actorID)

	child, err := h.childService.Add(c.Request.Context(), actorID, service.AddChildParams{
		Name:          req.Name,
		DOB:           req.DOB,
		Gender:        req.Gender,
		Metadata:      req.Metadata,
		CreateAccount: req.CreateAccount,
		Email:         req.Email,
		Password:      req.Password,
	})
	if err != nil {
		h.logger.Error("Child handler: add failed", "actor_id", actorID, "error", err.Error())
		handleError(c, err)
		return
	}

	h.logger.Info("Child handler: child added", "child_id", child.ID, "actor_id", actorID)

	c.JSON(http.StatusCreated, childResponse(child))
}

// Get returns a child linked to the acting profile.
func (h *Child) Get(c *gin.Context) {
	actorID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, apperr.NewNotFound("Child"))
		return
	}

	child, err := h.childService.Get(c.Request.Context(), actorID, childID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, childResponse(child))
}

// Remove deletes a child owned by the acting profile.
func (h *Child) Remove(c *gin.Context) {
	actorID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, apperr.NewNotFound("Child"))
		return
	}

	if err := h.childService.Remove(c.Request.Context(), actorID, childID); err != nil {
		h.logger.Error("Child handler: remove failed", "child_id", childID, "error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Child removed"})
}
