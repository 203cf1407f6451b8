package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DailySummaryStore defines persistence operations for daily summaries.
type DailySummaryStore interface {
	Create(ctx context.Context, summary DailySummary) (DailySummary, error)
	GetByID(ctx context.Context, id uuid.UUID) (DailySummary, error)
	Update(ctx context.Context, summary DailySummary) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DailySummary is a per-child daily activity rollup.
type DailySummary struct {
	ID             uuid.UUID
	ChildID        uuid.UUID
	Date           time.Time
	ActivityCounts map[string]any
	AvgScores      map[string]any
	MilestoneList  []any
	Growth         map[string]any
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
