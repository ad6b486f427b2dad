package handlers

import (
	"net/http"

	"blood-donate.backend/internal/domain/entities"
	"blood-donate.backend/internal/interfaces/http/middleware"
	"blood-donate.backend/internal/interfaces/http/response"
	"blood-donate.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles the moderation dashboard endpoints
type AdminHandler struct {
	userUsecase    *usecases.UserUsecase
	requestUsecase *usecases.DonationRequestUsecase
	adminUsecase   *usecases.AdminUsecase
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	userUsecase *usecases.UserUsecase,
	requestUsecase *usecases.DonationRequestUsecase,
	adminUsecase *usecases.AdminUsecase,
) *AdminHandler {
	return &AdminHandler{
		userUsecase:    userUsecase,
		requestUsecase: requestUsecase,
		adminUsecase:   adminUsecase,
	}
}

// ListUsers lists profiles, optionally by role and status
// GET /api/v1/admin/users?role=&status=&page=&size=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}

	filter := entities.UserFilter{
		Role:   entities.UserRole(c.Query("role")),
		Status: entities.UserStatus(c.Query("status")),
	}
	users, meta, err := h.userUsecase.ListUsers(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"users":      users,
		"pagination": meta,
	})
}

// UpdateRole changes a user's role
// PATCH /api/v1/admin/users/role
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	var input entities.UpdateRoleInput
	if !bindJSON(c, &input) {
		return
	}

	actor, _ := middleware.GetUser(c)
	result, err := h.userUsecase.UpdateRole(c.Request.Context(), actor, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// UpdateStatus blocks or unblocks a user
// PATCH /api/v1/admin/users/status
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var input entities.UpdateStatusInput
	if !bindJSON(c, &input) {
		return
	}

	actor, _ := middleware.GetUser(c)
	result, err := h.userUsecase.UpdateStatus(c.Request.Context(), actor, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListRequests lists every request
// GET /api/v1/admin/requests?status=&page=&size=
func (h *AdminHandler) ListRequests(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}

	items, meta, err := h.requestUsecase.ListAll(c.Request.Context(), entities.RequestStatus(c.Query("status")), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"request":      items,
		"totalRequest": meta.Total,
		"pagination":   meta,
	})
}

// Stats returns live dashboard counters
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminUsecase.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
