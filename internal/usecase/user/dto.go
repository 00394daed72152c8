package user

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

// CreateUserResponse echoes the stored user including its new id.
type CreateUserResponse struct {
	ID    int64
	Name  string
	Email string
}

// UpdateUserRequest represents the request payload for replacing name and email of a user.
type UpdateUserRequest struct {
	ID    int64
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

// UpdateUserResponse reports the values now stored for the user.
// Modified is false when the stored values were already identical.
type UpdateUserResponse struct {
	ID       int64
	Name     string
	Email    string
	Modified bool
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	ID    int64
	Name  string
	Email string
}

// ListUsersResponse holds all users, newest first.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}
