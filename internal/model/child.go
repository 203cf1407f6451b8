package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinels distinguishing which half of a linked child write failed, so
// callers can report CHILD_CREATION_FAILED vs PROFILE_UPDATE_FAILED.
var (
	ErrChildInsertFailed = errors.New("child insert failed")
	ErrChildLinkFailed   = errors.New("children list update failed")
)

// ChildStore defines persistence operations for child records. The multi-row
// operations run inside a single transaction: a child row never exists
// without its guardian's children_ids entry.
type ChildStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Child, error)
	// CreateLinked inserts the child and appends its id to the guardian's
	// children_ids. The append is idempotent: an id already present is not
	// appended twice.
	CreateLinked(ctx context.Context, child Child, guardianID uuid.UUID) (Child, error)
	// CreateLinkedWithRole additionally sets the target profile's role,
	// used when assigning the kid role materializes a child record.
	CreateLinkedWithRole(ctx context.Context, child Child, targetID uuid.UUID, role Role, guardianID uuid.UUID) (Child, error)
	// DeleteOwned removes the child and its id from the owning guardian's
	// children_ids.
	DeleteOwned(ctx context.Context, id, guardianID uuid.UUID) error
}

// Child represents a dependent tracked by one or more guardians.
type Child struct {
	ID        uuid.UUID
	Name      string
	DOB       time.Time
	Gender    string
	Metadata  map[string]any
	CreatedBy uuid.UUID
	CreatedAt time.Time
}
