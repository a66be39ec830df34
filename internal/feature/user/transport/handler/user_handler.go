// Package handler provides the HTTP handlers for the user feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"user_backend/internal/feature/user/domain/entity"
	"user_backend/internal/feature/user/transport/http/dto"
	"user_backend/internal/feature/user/usecase"
)

// Response messages exposed to clients.
const (
	MsgUserNotFound          = "User not found"
	MsgMissingRequiredFields = "Missing required fields"
	MsgNoDataProvided        = "No data provided"
	MsgImmutableID           = "Field _id cannot be modified"
	MsgInvalidFieldName      = "Field names cannot contain '.' or start with '$'"
	MsgUserUpdated           = "User updated successfully"
	MsgUserDeleted           = "User deleted successfully"
)

// UserUsecase defines the user operations used by the handler.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type UserUsecase interface {
	ListUsers(ctx context.Context) ([]entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	CreateUser(ctx context.Context, name, email, password string) (string, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) error
	DeleteUser(ctx context.Context, id string) error
}

// UserHandler handles HTTP requests for the users resource.
type UserHandler struct {
	uc UserUsecase
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List handles GET /users and returns every stored user document.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserDocuments(users))
}

// Get handles GET /users/:id.
// A malformed id and an absent user both answer 404.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.uc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserDocument(*user))
}

// Create handles POST /users.
// - name, email and password must be present, non-empty strings (400 otherwise)
// - on success returns 201 with the new id
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgMissingRequiredFields})
		return
	}

	id, err := h.uc.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(c, "create user", err)
		return
	}
	slog.Info("user created", "id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.CreateUserResponse{ID: id})
}

// Update handles PUT /users/:id with a JSON object of arbitrary fields.
// An absent, malformed or empty body answers 400 before the store is touched.
func (h *UserHandler) Update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		slog.Warn("update user body rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgNoDataProvided})
		return
	}

	if err := h.uc.UpdateUser(c.Request.Context(), c.Param("id"), fields); err != nil {
		h.writeError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: MsgUserUpdated})
}

// Delete handles DELETE /users/:id. Deleting twice answers 404 the second time.
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		h.writeError(c, "delete user", err)
		return
	}
	slog.Info("user deleted", "id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.MessageResponse{Message: MsgUserDeleted})
}

// writeError maps usecase errors to status codes.
// Unexpected failures answer 500 and echo the error text.
func (h *UserHandler) writeError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: MsgUserNotFound})
	case errors.Is(err, usecase.ErrMissingRequiredFields):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgMissingRequiredFields})
	case errors.Is(err, usecase.ErrNoDataProvided):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgNoDataProvided})
	case errors.Is(err, usecase.ErrImmutableField):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgImmutableID})
	case errors.Is(err, usecase.ErrInvalidFieldName):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgInvalidFieldName})
	default:
		slog.Error(action+" failed", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}
