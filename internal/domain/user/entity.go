package user

import "errors"

// User represents a user entity in the system.
type User struct {
	ID    int64  // ID is assigned by storage on creation and never changes
	Name  string // Name is the display name of the user
	Email string // Email is unique across all users
}

// UpdateResult reports how many rows an update matched and how many it actually changed.
// A row whose stored values already equal the new values is matched but not changed.
type UpdateResult struct {
	Matched int64
	Changed int64
}

// Repository errors
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)
