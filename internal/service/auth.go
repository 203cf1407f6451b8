package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/mailer"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/oauth"
	"github.com/kinfolkhq/kinfolk-server/internal/policy"
	"github.com/kinfolkhq/kinfolk-server/internal/secret"
)

// DOBLayout is the wire format for dates of birth.
const DOBLayout = "2006-01-02"

const minPasswordLength = 6

// Auth implements the registration, signin and verification workflows.
type Auth struct {
	accounts     model.AccountStore
	profiles     model.ProfileStore
	tokens       model.VerificationTokenStore
	tokenService *TokenService
	mailer       mailer.Mailer
	google       *oauth.Google
	baseURL      string
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuth(
	accounts model.AccountStore,
	profiles model.ProfileStore,
	tokens model.VerificationTokenStore,
	refreshTokenStore model.RefreshTokenStore,
	tokenManager model.TokenManager,
	mailer mailer.Mailer,
	google *oauth.Google,
	baseURL string,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		accounts:     accounts,
		profiles:     profiles,
		tokens:       tokens,
		tokenService: NewTokenService(tokenManager, refreshTokenStore, logger),
		mailer:       mailer,
		google:       google,
		baseURL:      baseURL,
		logger:       logger,
		now:          time.Now,
	}
}

// TokenService exposes the session token operations sharing this service's
// wiring.
func (a *Auth) TokenService() *TokenService {
	return a.tokenService
}

// SignUpParams carries a registration request.
type SignUpParams struct {
	Email    string
	Password string
	FullName string
	DOB      string
	Role     string
}

// SignUpResult reports a completed registration. No session is issued;
// email verification is mandatory before signin.
type SignUpResult struct {
	AccountID              uuid.UUID
	Email                  string
	Role                   model.Role
	IntendedRole           model.Role
	Age                    int
	NeedsEmailVerification bool
}

// SignUp runs the registration workflow: validate, compute age, resolve the
// effective role, create the account and its unverified profile, and
// dispatch a verification email. If profile creation fails the account is
// deleted again (compensating action) and PROFILE_CREATION_FAILED surfaces.
func (a *Auth) SignUp(ctx context.Context, params SignUpParams) (SignUpResult, error) {
	return a.signUp(ctx, params, false)
}

// SignUpChild registers a login-capable account for a child, forcing the
// kid role regardless of age.
func (a *Auth) SignUpChild(ctx context.Context, params SignUpParams) (SignUpResult, error) {
	return a.signUp(ctx, params, true)
}

func (a *Auth) signUp(ctx context.Context, params SignUpParams, forceKid bool) (SignUpResult, error) {
	a.logger.Debug("Auth service: starting registration", "email", params.Email)

	email := strings.ToLower(strings.TrimSpace(params.Email))
	password := strings.TrimSpace(params.Password)
	fullName := strings.TrimSpace(params.FullName)

	if email == "" || password == "" {
		return SignUpResult{}, apperr.NewMissingFields("Email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return SignUpResult{}, apperr.NewInvalidEmail()
	}
	if len(password) < minPasswordLength {
		return SignUpResult{}, apperr.NewWeakPassword()
	}
	if params.DOB == "" {
		return SignUpResult{}, apperr.NewDOBRequired()
	}

	dob, err := time.Parse(DOBLayout, params.DOB)
	if err != nil {
		return SignUpResult{}, apperr.NewInvalidDate("Invalid date of birth")
	}

	now := a.now()
	age, err := policy.Age(dob, now)
	if err != nil {
		return SignUpResult{}, apperr.NewInvalidDate("Date of birth cannot be in the future")
	}

	role := model.RoleKid
	if !forceKid {
		role, err = policy.ResolveRole(age, model.Role(params.Role))
		if err != nil {
			return SignUpResult{}, err
		}
	}

	passwordHash, err := secret.HashPassword(password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password", "email", email, "error", err.Error())
		return SignUpResult{}, apperr.NewAuthAPIError("")
	}

	account := model.Account{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  passwordHash,
		EmailVerified: false,
		FullName:      fullName,
		IntendedRole:  role,
		DOB:           dob,
		Age:           age,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	account, err = a.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			a.logger.Info("Auth service: account already exists", "email", email)
			return SignUpResult{}, apperr.NewUserExists()
		}
		a.logger.Error("Auth service: failed to create account", "email", email, "error", err.Error())
		return SignUpResult{}, apperr.NewAuthAPIError("")
	}

	profile := model.Profile{
		ID:       account.ID,
		FullName: fullName,
		Email:    email,
		Role:     model.RoleUnverified,
		Metadata: map[string]any{
			"dob":              params.DOB,
			"age":              age,
			"intended_role":    role.String(),
			"signup_completed": false,
		},
		ChildrenIDs: []uuid.UUID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := a.profiles.Create(ctx, profile); err != nil {
		a.logger.Error("Auth service: failed to create profile, deleting account",
			"account_id", account.ID,
			"error", err.Error())

		if delErr := a.accounts.Delete(ctx, account.ID); delErr != nil {
			a.logger.Error("Auth service: compensating account delete failed",
				"account_id", account.ID,
				"error", delErr.Error())
		}

		return SignUpResult{}, apperr.NewProfileCreationFailed()
	}

	a.dispatchVerification(account)

	a.logger.Info("Auth service: registration completed",
		"account_id", account.ID,
		"role", role)

	return SignUpResult{
		AccountID:              account.ID,
		Email:                  email,
		Role:                   model.RoleUnverified,
		IntendedRole:           role,
		Age:                    age,
		NeedsEmailVerification: true,
	}, nil
}

// dispatchVerification stores a one-time token and sends the verification
// email from a goroutine. Delivery failures are logged, never surfaced.
func (a *Auth) dispatchVerification(account model.Account) {
	token, hash, err := secret.NewOneTimeToken()
	if err != nil {
		a.logger.Error("Auth service: failed to generate verification token",
			"account_id", account.ID,
			"error", err.Error())
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		vt := model.VerificationToken{
			TokenHash: hash,
			AccountID: account.ID,
			Purpose:   model.PurposeSignup,
			ExpiresAt: a.now().Add(model.VerificationTokenTTL),
			CreatedAt: a.now(),
		}
		if err := a.tokens.Create(ctx, vt); err != nil {
			a.logger.Error("Auth service: failed to store verification token",
				"account_id", account.ID,
				"error", err.Error())
			return
		}

		link := fmt.Sprintf("%s/auth/callback?token_hash=%s&type=signup", a.baseURL, token)
		if err := a.mailer.SendVerification(ctx, account.Email, link); err != nil {
			a.logger.Error("Auth service: failed to send verification email",
				"account_id", account.ID,
				"error", err.Error())
		}
	}()
}

// SignInResult reports a successful signin with a fresh session.
type SignInResult struct {
	Account      model.Account
	AccessToken  string
	RefreshToken string
}

// SignIn verifies credentials and issues a session. Unverified accounts are
// rejected with EMAIL_NOT_VERIFIED so the caller can offer a resend.
func (a *Auth) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		return SignInResult{}, apperr.NewMissingFields("Email and password are required")
	}

	account, err := a.accounts.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return SignInResult{}, apperr.NewInvalidCredentials()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get account by email", "error", err.Error())
		return SignInResult{}, apperr.NewAuthAPIError("")
	}

	if !secret.ComparePassword(account.PasswordHash, password) {
		return SignInResult{}, apperr.NewInvalidCredentials()
	}

	if !account.EmailVerified {
		return SignInResult{}, apperr.NewEmailNotVerified()
	}

	access, refresh, err := a.tokenService.Issue(ctx, account.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue session", "account_id", account.ID, "error", err.Error())
		return SignInResult{}, apperr.NewAuthAPIError("")
	}

	a.logger.Info("Auth service: signin completed", "account_id", account.ID)

	return SignInResult{
		Account:      account,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// VerifyEmail consumes a one-time signup token, marks the account verified
// and promotes the profile's role from unverified to the stored intended
// role in the same transaction.
func (a *Auth) VerifyEmail(ctx context.Context, token string) error {
	vt, err := a.tokens.Consume(ctx, secret.HashToken(token), model.PurposeSignup)
	if err != nil {
		return fmt.Errorf("failed to consume verification token: %w", err)
	}

	account, err := a.accounts.GetByID(ctx, vt.AccountID)
	if err != nil {
		return fmt.Errorf("failed to get account for verification: %w", err)
	}

	promoteTo := account.IntendedRole
	if !promoteTo.Valid() || promoteTo == model.RoleUnverified {
		promoteTo = model.RoleParent
	}

	metadata := map[string]any{
		"email_verified": true,
		"verified_at":    a.now().Format(time.RFC3339),
	}
	if err := a.accounts.MarkVerified(ctx, account.ID, promoteTo, metadata); err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}

	a.logger.Info("Auth service: email verified",
		"account_id", account.ID,
		"role", promoteTo)

	return nil
}

// ResendVerification issues a fresh signup token for an unverified account.
// Verified accounts are a no-op success.
func (a *Auth) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperr.NewMissingFields("Email is required")
	}

	account, err := a.accounts.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		// Do not reveal whether the email is registered.
		a.logger.Info("Auth service: resend requested for unknown email")
		return nil
	}
	if err != nil {
		return apperr.NewAuthAPIError("")
	}

	if account.EmailVerified {
		return nil
	}

	a.dispatchVerification(account)
	return nil
}

// ResetPassword dispatches a password reset email. Unknown emails succeed
// silently to avoid account enumeration.
func (a *Auth) ResetPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperr.NewMissingFields("Email is required")
	}

	account, err := a.accounts.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: reset requested for unknown email")
		return nil
	}
	if err != nil {
		return apperr.NewAuthAPIError("")
	}

	token, hash, err := secret.NewOneTimeToken()
	if err != nil {
		return apperr.NewAuthAPIError("")
	}

	vt := model.VerificationToken{
		TokenHash: hash,
		AccountID: account.ID,
		Purpose:   model.PurposePasswordReset,
		ExpiresAt: a.now().Add(model.VerificationTokenTTL),
		CreatedAt: a.now(),
	}
	if err := a.tokens.Create(ctx, vt); err != nil {
		a.logger.Error("Auth service: failed to store reset token", "account_id", account.ID, "error", err.Error())
		return apperr.NewAuthAPIError("")
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		link := fmt.Sprintf("%s/auth/update-password?token=%s", a.baseURL, token)
		if err := a.mailer.SendPasswordReset(sendCtx, account.Email, link); err != nil {
			a.logger.Error("Auth service: failed to send reset email", "account_id", account.ID, "error", err.Error())
		}
	}()

	return nil
}

// UpdatePassword changes an account's password, either for the acting
// account or via a one-time reset token. All sessions are revoked.
func (a *Auth) UpdatePassword(ctx context.Context, accountID uuid.UUID, resetToken, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if len(newPassword) < minPasswordLength {
		return apperr.NewWeakPassword()
	}

	if resetToken != "" {
		vt, err := a.tokens.Consume(ctx, secret.HashToken(resetToken), model.PurposePasswordReset)
		if err != nil {
			return apperr.NewAuthAPIError("Invalid or expired reset token")
		}
		accountID = vt.AccountID
	}

	if accountID == uuid.Nil {
		return apperr.NewNotAuthenticated()
	}

	hash, err := secret.HashPassword(newPassword)
	if err != nil {
		return apperr.NewAuthAPIError("")
	}

	if err := a.accounts.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apperr.NewNotFound("Account")
		}
		return apperr.NewAuthAPIError("")
	}

	if err := a.tokenService.RevokeAllForAccount(ctx, accountID); err != nil {
		a.logger.Error("Auth service: failed to revoke sessions after password change",
			"account_id", accountID,
			"error", err.Error())
	}

	a.logger.Info("Auth service: password updated", "account_id", accountID)
	return nil
}

// GoogleSignInURL returns the external OAuth authorization URL.
func (a *Auth) GoogleSignInURL(redirectTo string) (string, error) {
	if a.google == nil || !a.google.Configured() {
		return "", apperr.NewOAuthError("Google OAuth is not configured")
	}
	if redirectTo == "" {
		redirectTo = "/"
	}

	url, err := a.google.AuthURL(redirectTo)
	if err != nil {
		return "", apperr.NewOAuthError("Failed to build authorization URL")
	}

	return url, nil
}
