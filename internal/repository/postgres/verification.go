package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

var _ model.VerificationTokenStore = (*VerificationTokenRepository)(nil)

type VerificationTokenRepository struct {
	db DB
}

func NewVerificationTokenRepository(db DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{
		db: db,
	}
}

func (r *VerificationTokenRepository) Create(ctx context.Context, token model.VerificationToken) error {
	query := `INSERT INTO verification_tokens (token_hash, account_id, purpose, expires_at, consumed, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		token.TokenHash, token.AccountID, token.Purpose,
		token.ExpiresAt, token.Consumed, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	return nil
}

// Consume marks a live token consumed and returns it in one statement, so a
// token can never be redeemed twice.
func (r *VerificationTokenRepository) Consume(ctx context.Context, tokenHash []byte, purpose model.TokenPurpose) (model.VerificationToken, error) {
	query := `UPDATE verification_tokens
			  SET consumed = TRUE
			  WHERE token_hash = $1 AND purpose = $2 AND consumed = FALSE AND expires_at > NOW()
			  RETURNING token_hash, account_id, purpose, expires_at, consumed, created_at`

	var token model.VerificationToken
	err := r.db.QueryRow(ctx, query, tokenHash, purpose).Scan(
		&token.TokenHash, &token.AccountID, &token.Purpose,
		&token.ExpiresAt, &token.Consumed, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VerificationToken{}, model.ErrNotFound
		}
		return model.VerificationToken{}, fmt.Errorf("failed to consume verification token: %w", err)
	}

	return token, nil
}
