package model

import "errors"

// Refresh session failures. All three end the session; callers should
// require a fresh sign-in rather than retrying.
var (
	ErrTokenRevoked  = errors.New("refresh token has been revoked")
	ErrTokenExpired  = errors.New("refresh token has expired")
	ErrTokenMismatch = errors.New("refresh token does not match stored session")
)
