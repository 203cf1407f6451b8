package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/service"
)

// SummaryService defines daily summary operations.
type SummaryService interface {
	Create(ctx context.Context, actorID uuid.UUID, params service.SummaryParams) (model.DailySummary, error)
	Get(ctx context.Context, actorID, summaryID uuid.UUID) (model.DailySummary, error)
	Update(ctx context.Context, actorID, summaryID uuid.UUID, params service.SummaryParams) (model.DailySummary, error)
	Delete(ctx context.Context, actorID, summaryID uuid.UUID) error
}

// Summary handles the HTTP endpoints for daily summaries.
type Summary struct {
	summaryService SummaryService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewSummary creates a new Summary handler.
func NewSummary(summaryService SummaryService, contextManager model.ContextManager, logger *logger.Logger) *Summary {
	return &Summary{
		summaryService: summaryService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type summaryRequest struct {
	ChildID        uuid.UUID      `json:"child_id"`
	Date           string         `json:"date"`
	ActivityCounts map[string]any `json:"activity_counts"`
	AvgScores      map[string]any `json:"avg_scores"`
	MilestoneList  []any          `json:"milestone_list"`
	Growth         map[string]any `json:"growth"`
}

func (r summaryRequest) toParams() (service.SummaryParams, error) {
	params := service.SummaryParams{
		ChildID:        r.ChildID,
		ActivityCounts: r.ActivityCounts,
		AvgScores:      r.AvgScores,
		MilestoneList:  r.MilestoneList,
		Growth:         r.Growth,
	}
	if r.Date != "" {
		date, err := time.Parse(service.DOBLayout, r.Date)
		if err != nil {
			return service.SummaryParams{}, apperr.NewInvalidDate("Invalid summary date")
		}
		params.Date = date
	}
	return params, nil
}

func summaryResponse(s model.DailySummary) gin.H {
	return gin.H{
		"id":              s.ID,
		"child_id":        s.ChildID,
		"date":            s.Date.Format(service.DOBLayout),
		"activity_counts": s.ActivityCounts,
		"avg_scores":      s.AvgScores,
		"milestone_list":  s.MilestoneList,
		"growth":          s.Growth,
		"created_by":      s.CreatedBy,
		"created_at":      s.CreatedAt,
		"updated_at":      s.UpdatedAt,
	}
}

// Create records a daily summary for a linked child.
func (h *Summary) Create(c *gin.Context) {
	actorID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.NewMissingFields("Invalid request body"))
		return
	}

	params, err := req.toParams()
	if err != nil {
		handleError(c, err)
		return
	}

	summary, err := h.summaryService.Create(c.Request.Context(), actorID, params)
	if err != nil {
		h.logger.Error("Summary handler: create failed", "actor_id", actorID, "error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summaryResponse(summary))
}

// Get returns a summary for a linked child.
func (h *Summary) Get(c *gin.Context) {
	actorID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	summaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, apperr.NewNotFound("Daily summary"))
		return
	}

	summary, err := h.summaryService.Get(c.Request.Context(), actorID, summaryID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaryResponse(summary))
}

// Update replaces the mutable fields of a summary.
func (h *Summary) Update(c *gin.Context) {
	actorID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	summaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, apperr.NewNotFound("Daily summary"))
		return
	}

	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.NewMissingFields("Invalid request body"))
		return
	}

	params, err := req.toParams()
	if err != nil {
		handleError(c, err)
		return
	}

	summary, err := h.summaryService.Update(c.Request.Context(), actorID, summaryID, params)
	if err != nil {
		h.logger.Error("Summary handler: update failed", "summary_id", summaryID, "error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaryResponse(summary))
}

// Delete removes a summary.
func (h *Summary) Delete(c *gin.Context) {
	actorID, ok := h.contextManager.GetAccountIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apperr.NewNotAuthenticated())
		return
	}

	summaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, apperr.NewNotFound("Daily summary"))
		return
	}

	if err := h.summaryService.Delete(c.Request.Context(), actorID, summaryID); err != nil {
		h.logger.Error("Summary handler: delete failed", "summary_id", summaryID, "error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Daily summary deleted"})
}
