package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"users-api/internal/usecase/user"
	apperrors "users-api/pkg/errors"
	"users-api/pkg/logger"
)

const (
	msgUpdated     = "user updated successfully"
	msgNotModified = "user not modified (data unchanged)"
	msgDeleted     = "user deleted successfully"
	msgNotFound    = "user not found"
	msgBadBody     = "invalid request body"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.UserUsecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UserRequest is the HTTP request body for create and update. Presence of
// both fields is checked by the usecase so the messages stay consistent.
type UserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserResponse reports the outcome of an update
type UpdateUserResponse struct {
	Message  string `json:"message"`
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Modified bool   `json:"modified"`
}

// MessageResponse carries a human readable outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response. Error holds the underlying
// cause and is only set for 500 responses.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, "create user", err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		ID:    resp.ID,
		Name:  resp.Name,
		Email: resp.Email,
	})
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, "list users", err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = UserResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
		}
	}

	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, "get user", err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:    resp.ID,
		Name:  resp.Name,
		Email: resp.Email,
	})
}

// UpdateUser handles PUT /users/:id. The body is validated before the id is
// looked at, so a bad body is a 400 even on a non-numeric id.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// id 0 never matches a row; the usecase answers not found after validating
		logger.WithContext(c.Request.Context(), h.log).Warn("non-numeric user id", zap.String("id", c.Param("id")))
		id = 0
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, "update user", err)
		return
	}

	msg := msgUpdated
	if !resp.Modified {
		msg = msgNotModified
	}

	c.JSON(http.StatusOK, UpdateUserResponse{
		Message:  msg,
		ID:       resp.ID,
		Name:     resp.Name,
		Email:    resp.Email,
		Modified: resp.Modified,
	})
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if _, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id}); err != nil {
		h.handleError(c, "delete user", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: msgDeleted})
}

// parseID reads the :id path parameter. Anything that is not an integer can
// never match a stored row, so it is answered with 404 directly.
func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("non-numeric user id", zap.String("id", idStr))
		c.JSON(http.StatusNotFound, ErrorResponse{Message: msgNotFound})
		return 0, false
	}
	return id, true
}

func (h *UserHandler) badBody(c *gin.Context, err error) {
	logger.WithContext(c.Request.Context(), h.log).Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgBadBody})
}

// handleError converts usecase errors to HTTP responses
func (h *UserHandler) handleError(c *gin.Context, op string, err error) {
	log := logger.WithContext(c.Request.Context(), h.log).With(zap.String("op", op))

	status := http.StatusInternalServerError
	var s apperrors.HTTPStatuser
	if errors.As(err, &s) {
		status = s.HTTPStatus()
	}

	if status < http.StatusInternalServerError {
		log.Warn("request rejected", zap.Int("status", status), zap.Error(err))
		c.JSON(status, ErrorResponse{Message: err.Error()})
		return
	}

	log.Error("request failed", zap.Int("status", status), zap.Error(err))

	var internal *apperrors.InternalError
	if errors.As(err, &internal) {
		c.JSON(status, ErrorResponse{Message: internal.Message, Error: internal.Detail()})
		return
	}
	if status == http.StatusServiceUnavailable {
		c.JSON(status, ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(status, ErrorResponse{Message: "internal server error", Error: err.Error()})
}
