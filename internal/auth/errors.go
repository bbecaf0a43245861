package auth

import (
	"database/sql"
	"errors"
	"strings"
)

// Sentinel causes the API layer maps to user-visible messages. Anything the
// classifier does not recognize falls through to ErrUnknown so the user
// always gets an actionable message instead of a raw provider error.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("no account found for this email")
	ErrUnknown            = errors.New("something went wrong, please try again")
)

// Classify folds a raw error from the store or the hashing layer into one of
// the known auth failure causes.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrEmailInUse),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordMismatch):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return ErrUserNotFound
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrEmailInUse
	default:
		return ErrUnknown
	}
}
