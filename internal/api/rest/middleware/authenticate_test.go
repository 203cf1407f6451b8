package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	restctx "github.com/kinfolkhq/kinfolk-server/internal/api/rest/context"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
)

type tokenServiceMock struct {
	mock.Mock
}

func (m *tokenServiceMock) GetAccountID(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func newAuthTestEngine(tokenService TokenService) (*gin.Engine, *restctx.Manager) {
	gin.SetMode(gin.TestMode)
	ctxMgr := restctx.NewManager()
	authenticate := NewAuthenticate(tokenService, ctxMgr, logger.New(0))

	engine := gin.New()
	engine.GET("/protected", authenticate.Handle, func(c *gin.Context) {
		accountID, _ := ctxMgr.GetAccountIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"account_id": accountID})
	})
	return engine, ctxMgr
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	engine, _ := newAuthTestEngine(&tokenServiceMock{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_AUTHENTICATED")
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	tokenService := &tokenServiceMock{}
	tokenService.On("GetAccountID", mock.Anything, "bad-token").Return(uuid.Nil, assert.AnError).Once()

	engine, _ := newAuthTestEngine(tokenService)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ValidTokenInjectsAccountID(t *testing.T) {
	accountID := uuid.New()
	tokenService := &tokenServiceMock{}
	tokenService.On("GetAccountID", mock.Anything, "good-token").Return(accountID, nil).Once()

	engine, _ := newAuthTestEngine(tokenService)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), accountID.String())
}
