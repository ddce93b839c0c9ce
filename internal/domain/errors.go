package domain

import "errors"

// Sentinel errors for the authentication flow. Handlers map these onto the
// HTTP error envelope; services return them wrapped so call sites can use
// errors.Is.
var (
	ErrGuestNotFound     = errors.New("guest not found")
	ErrInvalidAuthMethod = errors.New("auth method not enabled for guest")
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenUsed         = errors.New("token already used")
	ErrTokenExists       = errors.New("token value already exists")
	ErrSessionInvalid    = errors.New("session invalid")
	ErrSessionExpired    = errors.New("session expired")
)
