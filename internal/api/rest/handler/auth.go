package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/service"
	"github.com/kinfolkhq/kinfolk-server/internal/token"
)

// AuthService defines account registration, signin and verification
// operations.
type AuthService interface {
	SignUp(ctx context.Context, params service.SignUpParams) (service.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (service.SignInResult, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, accountID uuid.UUID, resetToken, newPassword string) error
	GoogleSignInURL(redirectTo string) (string, error)
}

// TokenService defines session refresh and revoke operations.
type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, err error)
	RevokeByToken(ctx context.Context, refreshToken string) error
}

// Auth handles the HTTP endpoints for authentication.
type Auth struct {
	authService    AuthService
	tokenService   TokenService
	contextManager model.ContextManager
	baseURL        string
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, tokenService TokenService, contextManager model.ContextManager, baseURL string, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		tokenService:   tokenService,
		contextManager: contextManager,
		baseURL:        baseURL,
		logger:         logger,
	}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	DOB      string `json:"dob"`
	Role     string `json:"role"`
}

// SignUp registers an account. No session is issued; the response reports
// that email verification is required.
func (h *Auth) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.NewMissingFields("Invalid request body"))
		return
	}

	h.logger.Debug("Auth handler: processing signup request", "email", req.Email)

	result, err := h.authService.SignUp(c.Request.Context(), service.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		DOB:      req.DOB,
		Role:     req.Role,
	})
	if err != nil {
		h.logger.Error("Auth handler: signup failed", "email", req.Email, "error", err.Error())
		handleError(c, err)
		return
	}

	h.logger.Info("Auth handler: signup completed", "account_id", result.AccountID)

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":            result.AccountID,
			"email":         result.Email,
			"role":          result.Role,
			"intended_role": result.IntendedRole,
			"age":           result.Age,
		},
		"needs_email_verification": result.NeedsEmailVerification,
		"message":                  "Please check your email to verify your account",
	})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn verifies credentials and returns a token pair.
func (h *Auth) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.NewMissingFields("Invalid request body"))
		return
	}

	h.logger.Debug("Auth handler: processing signin request", "email", req.Email)

	result, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: signin failed", "email", req.Email, "error", err.Error())
		handleError(c, err)
		return
	}

	h.logger.Info("Auth handler: signin completed", "account_id", result.Account.ID)

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    result.Account.ID,
			"email": result.Account.Email,
			"role":  result.Account.IntendedRole,
		},
		"session": gin.H{
			"access_token":  result.AccessToken,
			"refresh_token": result.RefreshToken,
			"expires_at":    time.Now().Add(token.AccessTTL).Unix(),
		},
		"email_verified": true,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates the refresh token and returns a fresh pair.
func (h *Auth) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		handleError(c, apperr.NewMissingFields("Refresh token is required"))
		return
	}

	access, refresh, err := h.tokenService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: token refresh failed", "error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// SignOut revokes the presented refresh token.
func (h *Auth) SignOut(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		handleError(c, apperr.NewMissingFields("Refresh token is required"))
		return
	}

	if err := h.tokenService.RevokeByToken(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Auth handler: signout failed", "error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendVerification issues a fresh verification email.
func (h *Auth) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.NewMissingFields("Email is required"))
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

// ResetPassword dispatches a password reset email.
func (h *Auth) ResetPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.NewMissingFields("Email is required"))
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

type updatePasswordRequest struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

// UpdatePassword changes the password for the acting account, or for the
// account identified by a one-time reset token.
func (h *Auth) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.NewMissingFields("Password is required"))
		return
	}

	accountID, _ := h.contextManager.GetAccountIDFromContext(c.Request.Context())

	if err := h.authService.UpdatePassword(c.Request.Context(), accountID, req.Token, req.Password); err != nil {
		h.logger.Error("Auth handler: password update failed", "error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

type googleSignInRequest struct {
	RedirectTo string `json:"redirect_to"`
}

// GoogleSignIn returns the Google OAuth authorization URL.
func (h *Auth) GoogleSignIn(c *gin.Context) {
	var req googleSignInRequest
	// Body is optional; an empty redirect defaults to the root.
	_ = c.ShouldBindJSON(&req)

	url, err := h.authService.GoogleSignInURL(req.RedirectTo)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Callback completes email verification from the emailed link and redirects
// back to the frontend. Errors redirect too; this endpoint is opened in a
// browser, not called by the API client.
func (h *Auth) Callback(c *gin.Context) {
	token := c.Query("token_hash")
	kind := c.DefaultQuery("type", "signup")

	if token == "" || kind != "signup" {
		c.Redirect(http.StatusFound, h.baseURL+"/auth/error?code=INVALID_LINK")
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), token); err != nil {
		h.logger.Error("Auth handler: email verification failed", "error", err.Error())
		c.Redirect(http.StatusFound, h.baseURL+"/auth/error?code=VERIFICATION_FAILED")
		return
	}

	h.logger.Info("Auth handler: email verification completed")
	c.Redirect(http.StatusFound, h.baseURL+"/?verified=true")
}
