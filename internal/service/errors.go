package service

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrListingNotFound    = errors.New("listing not found")
	ErrPlaceNotFound      = errors.New("place not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidStatus      = errors.New("invalid listing status")
	ErrDuplicateListing   = errors.New("you already have a listing for this place")
	ErrEmailAlreadyUsed   = errors.New("email already registered")
	ErrStorage            = errors.New("storage failure")
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// storageError wraps a repository failure so callers match ErrStorage while the
// cause stays available for logging.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
