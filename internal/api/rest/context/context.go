// Package context carries the acting account identity through request
// contexts.
package context

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const accountIDKey contextKey = "account_id"

// Manager sets and retrieves the acting account ID on a request context.
// The identity is always explicit; nothing reads ambient global state.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetAccountIDToContext returns a context carrying the account ID.
func (m *Manager) SetAccountIDToContext(ctx context.Context, accountID uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// GetAccountIDFromContext retrieves the account ID set by the
// authentication middleware.
func (m *Manager) GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	accountID, ok := ctx.Value(accountIDKey).(uuid.UUID)
	if !ok || accountID == uuid.Nil {
		return uuid.Nil, false
	}
	return accountID, true
}
