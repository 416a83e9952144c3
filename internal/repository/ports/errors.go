package ports

import "errors"

// ErrConflict is returned when a write would violate a uniqueness rule
// (duplicate email, duplicate listing for the same owner).
var ErrConflict = errors.New("repository: conflict")
