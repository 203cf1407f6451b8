package model

import (
	"context"

	"github.com/google/uuid"
)

// ContextManager carries the acting identity through request context.
// Workflows never read ambient global state; the acting account is always
// explicit.
type ContextManager interface {
	SetAccountIDToContext(ctx context.Context, accountID uuid.UUID) context.Context
	GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool)
}
