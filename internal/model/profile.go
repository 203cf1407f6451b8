package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProfileStore defines persistence operations for profiles.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	Create(ctx context.Context, profile Profile) (Profile, error)
	Upsert(ctx context.Context, id uuid.UUID, fullName string, role Role) error
	SetRole(ctx context.Context, id uuid.UUID, role Role) error
	MergeMetadata(ctx context.Context, id uuid.UUID, metadata map[string]any) error
	SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error
}

// Profile represents the application-visible record for an account.
// Profile.ID always equals the owning account's ID.
type Profile struct {
	ID          uuid.UUID
	FullName    string
	Email       string
	Role        Role
	Metadata    map[string]any
	ChildrenIDs []uuid.UUID
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
