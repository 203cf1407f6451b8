package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

var _ model.ChildStore = (*ChildRepository)(nil)

type ChildRepository struct {
	db DB
}

func NewChildRepository(db DB) *ChildRepository {
	return &ChildRepository{
		db: db,
	}
}

const childColumns = `id, name, dob, gender, metadata, created_by, created_at`

const insertChildQuery = `INSERT INTO children (id, name, dob, gender, metadata, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + childColumns

// appendChildQuery appends the child id to children_ids only when absent,
// keeping the list duplicate-free without a read-modify-write cycle.
const appendChildQuery = `UPDATE profiles
		SET children_ids = array_append(children_ids, $1), updated_at = NOW()
		WHERE id = $2 AND NOT ($1 = ANY(children_ids))`

func scanChild(row pgx.Row) (model.Child, error) {
	var child model.Child
	err := row.Scan(
		&child.ID, &child.Name, &child.DOB, &child.Gender,
		&child.Metadata, &child.CreatedBy, &child.CreatedAt,
	)
	return child, err
}

func (r *ChildRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE id = $1`

	child, err := scanChild(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Child{}, model.ErrNotFound
		}
		return model.Child{}, fmt.Errorf("failed to get child by id: %w", err)
	}

	return child, nil
}

func (r *ChildRepository) CreateLinked(ctx context.Context, child model.Child, guardianID uuid.UUID) (model.Child, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Child{}, fmt.Errorf("failed to begin child link tx: %w", err)
	}
	defer tx.Rollback(ctx)

	saved, err := r.insertAndLink(ctx, tx, child, guardianID)
	if err != nil {
		return model.Child{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Child{}, fmt.Errorf("failed to commit child link tx: %w", err)
	}

	return saved, nil
}

func (r *ChildRepository) CreateLinkedWithRole(ctx context.Context, child model.Child, targetID uuid.UUID, role model.Role, guardianID uuid.UUID) (model.Child, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Child{}, fmt.Errorf("failed to begin role assignment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`, targetID, role)
	if err != nil {
		return model.Child{}, fmt.Errorf("failed to set target role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Child{}, model.ErrNotFound
	}

	saved, err := r.insertAndLink(ctx, tx, child, guardianID)
	if err != nil {
		return model.Child{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Child{}, fmt.Errorf("failed to commit role assignment tx: %w", err)
	}

	return saved, nil
}

func (r *ChildRepository) insertAndLink(ctx context.Context, tx pgx.Tx, child model.Child, guardianID uuid.UUID) (model.Child, error) {
	saved, err := scanChild(tx.QueryRow(ctx, insertChildQuery,
		child.ID, child.Name, child.DOB, child.Gender,
		child.Metadata, child.CreatedBy, child.CreatedAt,
	))
	if err != nil {
		return model.Child{}, fmt.Errorf("%w: %v", model.ErrChildInsertFailed, err)
	}

	tag, err := tx.Exec(ctx, appendChildQuery, child.ID, guardianID)
	if err != nil {
		return model.Child{}, fmt.Errorf("%w: %v", model.ErrChildLinkFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return model.Child{}, fmt.Errorf("%w: guardian profile %s not updated", model.ErrChildLinkFailed, guardianID)
	}

	return saved, nil
}

func (r *ChildRepository) DeleteOwned(ctx context.Context, id, guardianID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin child delete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM children WHERE id = $1 AND created_by = $2`, id, guardianID)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`UPDATE profiles SET children_ids = array_remove(children_ids, $1), updated_at = NOW() WHERE id = $2`,
		id, guardianID)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrChildLinkFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit child delete tx: %w", err)
	}

	return nil
}
