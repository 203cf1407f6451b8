package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

// TokenService resolves the account ID from bearer tokens.
type TokenService interface {
	GetAccountID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects the account ID into the
// request context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle parses the Authorization header, validates the token and attaches
// the account ID to the request context. Requests without a valid token are
// rejected with NOT_AUTHENTICATED.
func (m *Authenticate) Handle(c *gin.Context) {
	accountID, err := m.authenticate(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Not authenticated",
			"code":  "NOT_AUTHENTICATED",
		})
		return
	}

	ctx := m.contextManager.SetAccountIDToContext(c.Request.Context(), accountID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// HandleOptional attaches the account ID when a valid token is present, but
// lets anonymous requests through. Used by endpoints that accept either a
// session or a one-time token.
func (m *Authenticate) HandleOptional(c *gin.Context) {
	if accountID, err := m.authenticate(c); err == nil {
		ctx := m.contextManager.SetAccountIDToContext(c.Request.Context(), accountID)
		c.Request = c.Request.WithContext(ctx)
	}
	c.Next()
}

func (m *Authenticate) authenticate(c *gin.Context) (uuid.UUID, error) {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" || tokenString == header {
		return uuid.Nil, model.ErrTokenMismatch
	}

	accountID, err := m.tokenService.GetAccountID(c.Request.Context(), tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	if accountID == uuid.Nil {
		return uuid.Nil, model.ErrTokenMismatch
	}

	return accountID, nil
}
