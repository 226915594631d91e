package auth

import (
	"errors"
	"time"

	"github.com/devbn3li/movies-api/internal/domain/model"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidCode     = errors.New("invalid or expired code")
	ErrNotVerified     = errors.New("email is not verified")
	ErrAlreadyVerified = errors.New("account already verified")
	ErrTooManyRequests = errors.New("too many requests")
)

type AccessClaims struct {
	AccountID int64
	IsAdmin   bool
	ExpiresAt time.Time
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Account   model.Account
}
