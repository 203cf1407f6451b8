package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

var _ model.ProfileStore = (*ProfileRepository)(nil)

type ProfileRepository struct {
	db DB
}

func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

const profileColumns = `id, full_name, email, role, metadata, children_ids, avatar_url, created_at, updated_at`

func scanProfile(row pgx.Row) (model.Profile, error) {
	var profile model.Profile
	err := row.Scan(
		&profile.ID, &profile.FullName, &profile.Email, &profile.Role,
		&profile.Metadata, &profile.ChildrenIDs, &profile.AvatarURL,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	return profile, err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	profile, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile model.Profile) (model.Profile, error) {
	query := `INSERT INTO profiles (id, full_name, email, role, metadata, children_ids, avatar_url, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + profileColumns

	saved, err := scanProfile(r.db.QueryRow(ctx, query,
		profile.ID, profile.FullName, profile.Email, profile.Role,
		profile.Metadata, profile.ChildrenIDs, profile.AvatarURL,
		profile.CreatedAt, profile.UpdatedAt,
	))
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to create profile: %w", err)
	}

	return saved, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, id uuid.UUID, fullName string, role model.Role) error {
	query := `INSERT INTO profiles (id, full_name, role, metadata, children_ids, created_at, updated_at)
			  VALUES ($1, $2, $3, '{}', '{}', NOW(), NOW())
			  ON CONFLICT (id) DO UPDATE
			  SET full_name = EXCLUDED.full_name, role = EXCLUDED.role, updated_at = NOW()`

	if _, err := r.db.Exec(ctx, query, id, fullName, role); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

func (r *ProfileRepository) SetRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	query := `UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, role)
	if err != nil {
		return fmt.Errorf("failed to set profile role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *ProfileRepository) MergeMetadata(ctx context.Context, id uuid.UUID, metadata map[string]any) error {
	query := `UPDATE profiles SET metadata = metadata || $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, metadata)
	if err != nil {
		return fmt.Errorf("failed to merge profile metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *ProfileRepository) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	query := `UPDATE profiles SET avatar_url = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to set avatar url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
