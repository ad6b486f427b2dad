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

// DonationRequestHandler handles donation request endpoints
type DonationRequestHandler struct {
	requestUsecase *usecases.DonationRequestUsecase
}

// NewDonationRequestHandler creates a new donation request handler
func NewDonationRequestHandler(requestUsecase *usecases.DonationRequestUsecase) *DonationRequestHandler {
	return &DonationRequestHandler{requestUsecase: requestUsecase}
}

// ListPublic lists the newest pending requests
// GET /api/v1/requests/public
func (h *DonationRequestHandler) ListPublic(c *gin.Context) {
	items, err := h.requestUsecase.ListPublic(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Search filters pending requests
// GET /api/v1/requests/search?bloodGroup=&district=&upazila=
func (h *DonationRequestHandler) Search(c *gin.Context) {
	items, err := h.requestUsecase.Search(c.Request.Context(), entities.DonationRequestFilter{
		BloodGroup: c.Query("bloodGroup"),
		District:   c.Query("district"),
		Upazila:    c.Query("upazila"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Create posts a new request for the caller
// POST /api/v1/requests
func (h *DonationRequestHandler) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input entities.CreateDonationRequestInput
	if !bindJSON(c, &input) {
		return
	}

	req, err := h.requestUsecase.Create(c.Request.Context(), identity, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, req)
}

// ListMine lists the caller's requests
// GET /api/v1/requests/mine?page=&size=&status=
func (h *DonationRequestHandler) ListMine(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}

	items, meta, err := h.requestUsecase.ListMine(c.Request.Context(), identity, entities.RequestStatus(c.Query("status")), page)
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

// Get returns one request
// GET /api/v1/requests/:id
func (h *DonationRequestHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	req, err := h.requestUsecase.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, req)
}

// Update edits a pending request
// PUT /api/v1/requests/:id
func (h *DonationRequestHandler) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input entities.UpdateDonationRequestInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.requestUsecase.UpdateDetails(c.Request.Context(), identity, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Delete removes a request
// DELETE /api/v1/requests/:id
func (h *DonationRequestHandler) Delete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.requestUsecase.Delete(c.Request.Context(), identity, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// UpdateStatus marks a request done or canceled
// PATCH /api/v1/requests/:id/status
func (h *DonationRequestHandler) UpdateStatus(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input entities.UpdateRequestStatusInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.requestUsecase.UpdateStatus(c.Request.Context(), identity, id, input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Claim assigns the caller as donor
// PATCH /api/v1/requests/:id/claim
func (h *DonationRequestHandler) Claim(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input entities.ClaimRequestInput
	if err := c.ShouldBindJSON(&input); err != nil && err != io.EOF {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	req, err := h.requestUsecase.Claim(c.Request.Context(), identity, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, req)
}
