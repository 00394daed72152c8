package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"users-api/internal/adapter/db/pool"
	domain "users-api/internal/domain/user"
	apperrors "users-api/pkg/errors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *domain.User) (domain.UpdateResult, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.UpdateResult), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func setupTestUsecase(t *testing.T) (*Usecase, *MockRepository) {
	mockRepo := new(MockRepository)
	uc := New(mockRepo, zaptest.NewLogger(t))
	return uc, mockRepo
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	var s apperrors.HTTPStatuser
	require.True(t, errors.As(err, &s), "error %v carries no HTTP status", err)
	assert.Equal(t, status, s.HTTPStatus())
}

// ==================== CREATE USER TESTS ====================

func TestCreateUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, &domain.User{Name: "Ana", Email: "ana@x.com"}).Return(int64(1), nil)

	resp, err := uc.CreateUser(ctx, CreateUserRequest{Name: "Ana", Email: "ana@x.com"})

	require.NoError(t, err)
	assert.Equal(t, &CreateUserResponse{ID: 1, Name: "Ana", Email: "ana@x.com"}, resp)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    CreateUserRequest
		errMsg string
	}{
		{"missing name", CreateUserRequest{Email: "ana@x.com"}, "name is required"},
		{"missing email", CreateUserRequest{Name: "Ana"}, "email is required"},
		{"missing both", CreateUserRequest{}, "name and email are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)

			resp, err := uc.CreateUser(context.Background(), tt.req)

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.errMsg, err.Error())
			assertStatus(t, err, 400)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(int64(0), errors.Join(domain.ErrEmailTaken, errors.New("23505")))

	_, err := uc.CreateUser(ctx, CreateUserRequest{Name: "Bea", Email: "ana@x.com"})

	assertStatus(t, err, 409)
}

func TestCreateUser_StorageError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	cause := errors.New("connection reset by peer")
	mockRepo.On("Create", ctx, mock.Anything).Return(int64(0), cause)

	_, err := uc.CreateUser(ctx, CreateUserRequest{Name: "Ana", Email: "ana@x.com"})

	assertStatus(t, err, 500)
	assert.ErrorIs(t, err, cause)

	var internal *apperrors.InternalError
	require.True(t, errors.As(err, &internal))
	assert.Equal(t, "connection reset by peer", internal.Detail())
}

func TestCreateUser_PoolNotReady(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(int64(0), pool.ErrNotReady)

	_, err := uc.CreateUser(ctx, CreateUserRequest{Name: "Ana", Email: "ana@x.com"})

	assertStatus(t, err, 503)
}

// ==================== LIST USERS TESTS ====================

func TestListUsers_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return([]domain.User{
		{ID: 3, Name: "C", Email: "c@x.com"},
		{ID: 2, Name: "B", Email: "b@x.com"},
		{ID: 1, Name: "A", Email: "a@x.com"},
	}, nil)

	resp, err := uc.ListUsers(ctx)

	require.NoError(t, err)
	require.Len(t, resp.Users, 3)
	assert.Equal(t, User{ID: 3, Name: "C", Email: "c@x.com"}, resp.Users[0])
	assert.Equal(t, int64(1), resp.Users[2].ID)
}

func TestListUsers_Empty(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return([]domain.User{}, nil)

	resp, err := uc.ListUsers(ctx)

	require.NoError(t, err)
	assert.NotNil(t, resp.Users)
	assert.Empty(t, resp.Users)
}

func TestListUsers_StorageError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return(nil, errors.New("relation \"users\" does not exist"))

	_, err := uc.ListUsers(ctx)

	assertStatus(t, err, 500)
}

// ==================== GET USER TESTS ====================

func TestGetUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Name: "Ana", Email: "ana@x.com"}, nil)

	resp, err := uc.GetUser(ctx, GetUserRequest{ID: 1})

	require.NoError(t, err)
	assert.Equal(t, &GetUserResponse{ID: 1, Name: "Ana", Email: "ana@x.com"}, resp)
}

func TestGetUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(7)).Return(nil, domain.ErrNotFound)

	_, err := uc.GetUser(ctx, GetUserRequest{ID: 7})

	assertStatus(t, err, 404)
}

func TestGetUser_NonPositiveID(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	_, err := uc.GetUser(context.Background(), GetUserRequest{ID: 0})

	assertStatus(t, err, 404)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// ==================== UPDATE USER TESTS ====================

func TestUpdateUser_Changed(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, &domain.User{ID: 1, Name: "Ana", Email: "ana2@x.com"}).
		Return(domain.UpdateResult{Matched: 1, Changed: 1}, nil)

	resp, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 1, Name: "Ana", Email: "ana2@x.com"})

	require.NoError(t, err)
	assert.Equal(t, &UpdateUserResponse{ID: 1, Name: "Ana", Email: "ana2@x.com", Modified: true}, resp)
}

func TestUpdateUser_Unchanged(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, mock.Anything).Return(domain.UpdateResult{Matched: 1, Changed: 0}, nil)

	resp, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 1, Name: "Ana", Email: "ana@x.com"})

	require.NoError(t, err)
	assert.False(t, resp.Modified)
	assert.Equal(t, int64(1), resp.ID)
}

func TestUpdateUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, mock.Anything).Return(domain.UpdateResult{}, nil)

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 9, Name: "Ana", Email: "ana@x.com"})

	assertStatus(t, err, 404)
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, mock.Anything).Return(domain.UpdateResult{}, domain.ErrEmailTaken)

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 2, Name: "Bea", Email: "ana@x.com"})

	assertStatus(t, err, 409)
}

func TestUpdateUser_ValidationError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	_, err := uc.UpdateUser(context.Background(), UpdateUserRequest{ID: 1, Name: "Ana"})

	assertStatus(t, err, 400)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateUser_ValidationBeforeID(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 0, Name: "Ana"})
	assertStatus(t, err, 400)

	_, err = uc.UpdateUser(ctx, UpdateUserRequest{ID: 0, Name: "Ana", Email: "ana@x.com"})
	assertStatus(t, err, 404)

	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// ==================== DELETE USER TESTS ====================

func TestDeleteUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(int64(1), nil)

	resp, err := uc.DeleteUser(ctx, DeleteUserRequest{ID: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestDeleteUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(int64(0), nil)

	_, err := uc.DeleteUser(ctx, DeleteUserRequest{ID: 1})

	assertStatus(t, err, 404)
}

func TestDeleteUser_StorageError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(int64(0), errors.New("deadlock detected"))

	_, err := uc.DeleteUser(ctx, DeleteUserRequest{ID: 1})

	assertStatus(t, err, 500)
}
