package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountStore defines persistence operations for authenticatable accounts.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	Create(ctx context.Context, account Account) (Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkVerified flips the email-verified flag and, in the same
	// transaction, promotes the profile's role and merges verification
	// metadata into it.
	MarkVerified(ctx context.Context, id uuid.UUID, promoteTo Role, metadata map[string]any) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash []byte) error
}

// Account represents a stored authenticatable identity. Signup metadata
// (full name, intended role, dob, age) lives on the account so the profile
// can be completed after email verification.
type Account struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  []byte
	EmailVerified bool
	FullName      string
	IntendedRole  Role
	DOB           time.Time
	Age           int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
