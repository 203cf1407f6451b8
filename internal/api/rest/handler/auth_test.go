package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	restctx "github.com/kinfolkhq/kinfolk-server/internal/api/rest/context"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/service"
)

type authServiceMock struct {
	mock.Mock
}

func (m *authServiceMock) SignUp(ctx context.Context, params service.SignUpParams) (service.SignUpResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(service.SignUpResult), args.Error(1)
}

func (m *authServiceMock) SignIn(ctx context.Context, email, password string) (service.SignInResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(service.SignInResult), args.Error(1)
}

func (m *authServiceMock) VerifyEmail(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *authServiceMock) ResendVerification(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *authServiceMock) ResetPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *authServiceMock) UpdatePassword(ctx context.Context, accountID uuid.UUID, resetToken, newPassword string) error {
	args := m.Called(ctx, accountID, resetToken, newPassword)
	return args.Error(0)
}

func (m *authServiceMock) GoogleSignInURL(redirectTo string) (string, error) {
	args := m.Called(redirectTo)
	return args.String(0), args.Error(1)
}

type tokenServiceMock struct {
	mock.Mock
}

func (m *tokenServiceMock) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *tokenServiceMock) RevokeByToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func newAuthTestRouter(authService AuthService, tokenService TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuth(authService, tokenService, restctx.NewManager(), "http://localhost:8080", logger.New(0))

	engine := gin.New()
	engine.POST("/auth/signup", h.SignUp)
	engine.POST("/auth/signin", h.SignIn)
	engine.POST("/auth/refresh", h.Refresh)
	engine.POST("/auth/signout", h.SignOut)
	engine.GET("/auth/callback", h.Callback)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_SignUp_Created(t *testing.T) {
	authService := &authServiceMock{}
	tokenService := &tokenServiceMock{}

	accountID := uuid.New()
	authService.On("SignUp", mock.Anything, mock.Anything).Return(service.SignUpResult{
		AccountID:              accountID,
		Email:                  "jordan@example.com",
		Role:                   "unverified",
		IntendedRole:           "parent",
		Age:                    36,
		NeedsEmailVerification: true,
	}, nil).Once()

	engine := newAuthTestRouter(authService, tokenService)
	rec := doJSON(t, engine, http.MethodPost, "/auth/signup", gin.H{
		"email":    "jordan@example.com",
		"password": "hunter22",
		"dob":      "1990-03-01",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User struct {
			ID           uuid.UUID `json:"id"`
			Role         string    `json:"role"`
			IntendedRole string    `json:"intended_role"`
		} `json:"user"`
		NeedsEmailVerification bool `json:"needs_email_verification"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, accountID, resp.User.ID)
	assert.Equal(t, "unverified", resp.User.Role)
	assert.Equal(t, "parent", resp.User.IntendedRole)
	assert.True(t, resp.NeedsEmailVerification)
}

func TestAuthHandler_SignUp_ErrorEnvelope(t *testing.T) {
	authService := &authServiceMock{}
	tokenService := &tokenServiceMock{}

	authService.On("SignUp", mock.Anything, mock.Anything).Return(service.SignUpResult{}, apperr.NewUserExists()).Once()

	engine := newAuthTestRouter(authService, tokenService)
	rec := doJSON(t, engine, http.MethodPost, "/auth/signup", gin.H{
		"email":    "taken@example.com",
		"password": "hunter22",
		"dob":      "1990-03-01",
	})

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "USER_EXISTS", resp["code"])
	assert.NotEmpty(t, resp["error"])
}

func TestAuthHandler_SignIn_Unverified(t *testing.T) {
	authService := &authServiceMock{}
	tokenService := &tokenServiceMock{}

	authService.On("SignIn", mock.Anything, "jordan@example.com", "hunter22").
		Return(service.SignInResult{}, apperr.NewEmailNotVerified()).Once()

	engine := newAuthTestRouter(authService, tokenService)
	rec := doJSON(t, engine, http.MethodPost, "/auth/signin", gin.H{
		"email":    "jordan@example.com",
		"password": "hunter22",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "EMAIL_NOT_VERIFIED", resp["code"])
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	engine := newAuthTestRouter(&authServiceMock{}, &tokenServiceMock{})

	rec := doJSON(t, engine, http.MethodPost, "/auth/refresh", gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MISSING_FIELDS", resp["code"])
}

func TestAuthHandler_Callback_RedirectsOnSuccess(t *testing.T) {
	authService := &authServiceMock{}
	tokenService := &tokenServiceMock{}

	authService.On("VerifyEmail", mock.Anything, "tok123").Return(nil).Once()

	engine := newAuthTestRouter(authService, tokenService)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?token_hash=tok123&type=signup", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://localhost:8080/?verified=true", rec.Header().Get("Location"))
}

func TestAuthHandler_Callback_RedirectsOnFailure(t *testing.T) {
	authService := &authServiceMock{}
	tokenService := &tokenServiceMock{}

	authService.On("VerifyEmail", mock.Anything, "stale").Return(assert.AnError).Once()

	engine := newAuthTestRouter(authService, tokenService)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?token_hash=stale&type=signup", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "VERIFICATION_FAILED")
}
