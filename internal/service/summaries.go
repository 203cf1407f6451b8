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

// Summaries manages per-child daily activity rollups. Writes require a
// guardian role with the child linked to the acting profile; admins may
// write for any child.
type Summaries struct {
	summaries model.DailySummaryStore
	profiles  model.ProfileStore
	logger    *logger.Logger
	now       func() time.Time
}

func NewSummaries(summaries model.DailySummaryStore, profiles model.ProfileStore, logger *logger.Logger) *Summaries {
	return &Summaries{
		summaries: summaries,
		profiles:  profiles,
		logger:    logger,
		now:       time.Now,
	}
}

// SummaryParams carries the mutable content of a daily summary.
type SummaryParams struct {
	ChildID        uuid.UUID
	Date           time.Time
	ActivityCounts map[string]any
	AvgScores      map[string]any
	MilestoneList  []any
	Growth         map[string]any
}

func (s *Summaries) authorize(ctx context.Context, actorID, childID uuid.UUID) error {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if errors.Is(err, model.ErrNotFound) {
		return apperr.NewNotAuthenticated()
	}
	if err != nil {
		s.logger.Error("Summaries service: failed to get actor profile", "actor_id", actorID, "error", err.Error())
		return apperr.NewAuthAPIError("")
	}

	if actor.Role == model.RoleAdmin {
		return nil
	}
	if !policy.CanAddChild(actor.Role) || !containsID(actor.ChildrenIDs, childID) {
		return apperr.NewUnauthorized("You cannot record summaries for this child")
	}
	return nil
}

// Create records a new daily summary for a child linked to the actor.
func (s *Summaries) Create(ctx context.Context, actorID uuid.UUID, params SummaryParams) (model.DailySummary, error) {
	if params.ChildID == uuid.Nil {
		return model.DailySummary{}, apperr.NewMissingFields("Child id is required")
	}
	if params.Date.IsZero() {
		params.Date = s.now()
	}

	if err := s.authorize(ctx, actorID, params.ChildID); err != nil {
		return model.DailySummary{}, err
	}

	now := s.now()
	summary := model.DailySummary{
		ID:             uuid.New(),
		ChildID:        params.ChildID,
		Date:           params.Date,
		ActivityCounts: params.ActivityCounts,
		AvgScores:      params.AvgScores,
		MilestoneList:  params.MilestoneList,
		Growth:         params.Growth,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	saved, err := s.summaries.Create(ctx, summary)
	if err != nil {
		s.logger.Error("Summaries service: failed to create summary",
			"child_id", params.ChildID,
			"error", err.Error())
		return model.DailySummary{}, apperr.NewAuthAPIError("Failed to create daily summary")
	}

	s.logger.Info("Summaries service: summary created", "summary_id", saved.ID, "child_id", saved.ChildID)
	return saved, nil
}

// Get returns a summary for a child visible to the actor.
func (s *Summaries) Get(ctx context.Context, actorID, summaryID uuid.UUID) (model.DailySummary, error) {
	summary, err := s.summaries.GetByID(ctx, summaryID)
	if errors.Is(err, model.ErrNotFound) {
		return model.DailySummary{}, apperr.NewNotFound("Daily summary")
	}
	if err != nil {
		s.logger.Error("Summaries service: failed to get summary", "summary_id", summaryID, "error", err.Error())
		return model.DailySummary{}, apperr.NewAuthAPIError("")
	}

	if err := s.authorize(ctx, actorID, summary.ChildID); err != nil {
		return model.DailySummary{}, err
	}

	return summary, nil
}

// Update replaces the mutable fields of an existing summary.
func (s *Summaries) Update(ctx context.Context, actorID, summaryID uuid.UUID, params SummaryParams) (model.DailySummary, error) {
	summary, err := s.Get(ctx, actorID, summaryID)
	if err != nil {
		return model.DailySummary{}, err
	}

	summary.ActivityCounts = params.ActivityCounts
	summary.AvgScores = params.AvgScores
	summary.MilestoneList = params.MilestoneList
	summary.Growth = params.Growth

	if err := s.summaries.Update(ctx, summary); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.DailySummary{}, apperr.NewNotFound("Daily summary")
		}
		s.logger.Error("Summaries service: failed to update summary", "summary_id", summaryID, "error", err.Error())
		return model.DailySummary{}, apperr.NewAuthAPIError("Failed to update daily summary")
	}

	return s.summaries.GetByID(ctx, summaryID)
}

// Delete removes a summary the actor is authorized for.
func (s *Summaries) Delete(ctx context.Context, actorID, summaryID uuid.UUID) error {
	if _, err := s.Get(ctx, actorID, summaryID); err != nil {
		return err
	}

	if err := s.summaries.Delete(ctx, summaryID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apperr.NewNotFound("Daily summary")
		}
		s.logger.Error("Summaries service: failed to delete summary", "summary_id", summaryID, "error", err.Error())
		return apperr.NewAuthAPIError("Failed to delete daily summary")
	}

	s.logger.Info("Summaries service: summary deleted", "summary_id", summaryID)
	return nil
}
