package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VerificationTokenTTL is how long a one-time token stays redeemable.
const VerificationTokenTTL = 24 * time.Hour

// TokenPurpose distinguishes what a one-time token is redeemable for.
type TokenPurpose string

const (
	PurposeSignup        TokenPurpose = "signup"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// VerificationTokenStore persists one-time email tokens. Tokens are stored
// hashed and consumed exactly once.
type VerificationTokenStore interface {
	Create(ctx context.Context, token VerificationToken) error
	// Consume atomically marks an unconsumed, unexpired token as consumed
	// and returns it. ErrNotFound covers unknown, expired and already
	// consumed tokens alike.
	Consume(ctx context.Context, tokenHash []byte, purpose TokenPurpose) (VerificationToken, error)
}

// VerificationToken describes a pending one-time email token.
type VerificationToken struct {
	TokenHash []byte
	AccountID uuid.UUID
	Purpose   TokenPurpose
	ExpiresAt time.Time
	Consumed  bool
	CreatedAt time.Time
}
