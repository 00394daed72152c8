package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"users-api/internal/adapter/db/pool"
	domain "users-api/internal/domain/user"
	apperrors "users-api/pkg/errors"
)

// Repository defines the interface for user data access operations.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)               // Insert, returns the storage assigned id
	List(ctx context.Context) ([]domain.User, error)                         // All users, id descending
	GetByID(ctx context.Context, id int64) (*domain.User, error)             // domain.ErrNotFound when missing
	Update(ctx context.Context, u *domain.User) (domain.UpdateResult, error) // Matched and changed row counts
	Delete(ctx context.Context, id int64) (int64, error)                     // Rows removed
}

// Usecase implements the business logic for user management operations.
// It never retries; storage failures are classified and surfaced.
type Usecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a client facing error.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewValidationError("", err.Error())
	}

	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, strings.ToLower(e.Field()))
	}

	// Name and email are the only validated fields and both are required.
	if len(fields) > 1 {
		return apperrors.NewValidationError(strings.Join(fields, ","), "name and email are required")
	}
	return apperrors.NewValidationError(fields[0], fmt.Sprintf("%s is required", fields[0]))
}

// storageError classifies a repository error for the transport layer.
func storageError(action string, err error) error {
	switch {
	case errors.Is(err, pool.ErrNotReady):
		return apperrors.NewUnavailableError("service temporarily unavailable (database not ready)")
	case errors.Is(err, domain.ErrNotFound):
		return apperrors.NewNotFoundError("user", "user not found")
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.NewAlreadyExistsError("user", "email already registered")
	default:
		return apperrors.NewInternalError(fmt.Sprintf("internal server error while %s", action), err)
	}
}

// CreateUser validates the request and inserts the user. Duplicate emails are
// detected by the storage unique constraint, not by a pre-check.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	uc.log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("create user validation failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	id, err := uc.repo.Create(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		return nil, storageError("creating user", err)
	}

	return &CreateUserResponse{ID: id, Name: in.Name, Email: in.Email}, nil
}

// ListUsers returns every user ordered by id descending.
func (uc *Usecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		return nil, storageError("listing users", err)
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = User{
			ID:    du.ID,
			Name:  du.Name,
			Email: du.Email,
		}
	}

	return &ListUsersResponse{Users: users}, nil
}

// GetUser retrieves a user by id.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	if in.ID <= 0 {
		// storage ids start at 1, nothing can match
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, storageError("getting user", err)
	}

	return &GetUserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}, nil
}

// UpdateUser replaces name and email of an existing user. Modified in the
// response distinguishes a real change from a write of identical values.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	uc.log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("update user validation failed", zap.Int64("id", in.ID), zap.Error(err))
		return nil, formatValidationError(err)
	}

	if in.ID <= 0 {
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	res, err := uc.repo.Update(ctx, &domain.User{
		ID:    in.ID,
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		return nil, storageError("updating user", err)
	}

	if res.Matched == 0 {
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	return &UpdateUserResponse{
		ID:       in.ID,
		Name:     in.Name,
		Email:    in.Email,
		Modified: res.Changed > 0,
	}, nil
}

// DeleteUser removes a user. Deleting a missing user is a not-found error.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	uc.log.Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	affected, err := uc.repo.Delete(ctx, in.ID)
	if err != nil {
		return nil, storageError("deleting user", err)
	}

	if affected == 0 {
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	return &DeleteUserResponse{ID: in.ID}, nil
}
