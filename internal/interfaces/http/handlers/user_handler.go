package handlers

import (
	"io"
	"net/http"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/interfaces/http/response"
	"blood-donate.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

// UserHandler handles profile endpoints
type UserHandler struct {
	userUsecase *usecases.UserUsecase
}

// NewUserHandler creates a new user handler
func NewUserHandler(userUsecase *usecases.UserUsecase) *UserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

// Register stores the caller's profile if absent
// POST /api/v1/users
func (h *UserHandler) Register(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input entities.RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil && err != io.EOF {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.userUsecase.Register(c.Request.Context(), identity, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, result)
}

// GetMe returns the caller's profile
// GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	user, err := h.userUsecase.GetMe(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// UpdateMe upserts the caller's profile
// PUT /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input entities.UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.userUsecase.UpdateMe(c.Request.Context(), identity, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GetRole returns the caller's role, provisioning a default profile on first call
// GET /api/v1/users/role/:email
func (h *UserHandler) GetRole(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	user, err := h.userUsecase.GetRoleByEmail(c.Request.Context(), identity, c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email":  user.Email,
		"role":   user.Role,
		"status": user.Status,
		"user":   user,
	})
}
