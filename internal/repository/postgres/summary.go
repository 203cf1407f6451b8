package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

var _ model.DailySummaryStore = (*DailySummaryRepository)(nil)

type DailySummaryRepository struct {
	db DB
}

func NewDailySummaryRepository(db DB) *DailySummaryRepository {
	return &DailySummaryRepository{
		db: db,
	}
}

const summaryColumns = `id, child_id, date, activity_counts, avg_scores, milestone_list, growth, created_by, created_at, updated_at`

func scanSummary(row pgx.Row) (model.DailySummary, error) {
	var s model.DailySummary
	err := row.Scan(
		&s.ID, &s.ChildID, &s.Date, &s.ActivityCounts, &s.AvgScores,
		&s.MilestoneList, &s.Growth, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *DailySummaryRepository) Create(ctx context.Context, summary model.DailySummary) (model.DailySummary, error) {
	query := `INSERT INTO daily_summaries (id, child_id, date, activity_counts, avg_scores, milestone_list, growth, created_by, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + summaryColumns

	saved, err := scanSummary(r.db.QueryRow(ctx, query,
		summary.ID, summary.ChildID, summary.Date, summary.ActivityCounts,
		summary.AvgScores, summary.MilestoneList, summary.Growth,
		summary.CreatedBy, summary.CreatedAt, summary.UpdatedAt,
	))
	if err != nil {
		return model.DailySummary{}, fmt.Errorf("failed to create daily summary: %w", err)
	}

	return saved, nil
}

func (r *DailySummaryRepository) GetByID(ctx context.Context, id uuid.UUID) (model.DailySummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM daily_summaries WHERE id = $1`

	summary, err := scanSummary(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DailySummary{}, model.ErrNotFound
		}
		return model.DailySummary{}, fmt.Errorf("failed to get daily summary by id: %w", err)
	}

	return summary, nil
}

func (r *DailySummaryRepository) Update(ctx context.Context, summary model.DailySummary) error {
	query := `UPDATE daily_summaries
			  SET activity_counts = $2, avg_scores = $3, milestone_list = $4, growth = $5, updated_at = NOW()
			  WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		summary.ID, summary.ActivityCounts, summary.AvgScores,
		summary.MilestoneList, summary.Growth,
	)
	if err != nil {
		return fmt.Errorf("failed to update daily summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *DailySummaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM daily_summaries WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete daily summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
