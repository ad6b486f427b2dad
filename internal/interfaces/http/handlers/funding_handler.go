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

// FundingHandler handles checkout and ledger endpoints
type FundingHandler struct {
	fundingUsecase *usecases.FundingUsecase
}

// NewFundingHandler creates a new funding handler
func NewFundingHandler(fundingUsecase *usecases.FundingUsecase) *FundingHandler {
	return &FundingHandler{fundingUsecase: fundingUsecase}
}

// CreateCheckout opens a hosted checkout session
// POST /api/v1/fundings/checkout
func (h *FundingHandler) CreateCheckout(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input entities.CreateCheckoutInput
	if !bindJSON(c, &input) {
		return
	}

	session, err := h.fundingUsecase.CreateCheckout(c.Request.Context(), identity, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Confirm records a paid session. The id may come from ?session_id= or the JSON body.
// POST /api/v1/fundings/confirm
func (h *FundingHandler) Confirm(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input entities.ConfirmPaymentInput
	input.SessionID = c.Query("session_id")
	if input.SessionID == "" && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil && err != io.EOF {
			response.Error(c, domainerrors.BadRequest(err.Error()))
			return
		}
	}

	result, err := h.fundingUsecase.Confirm(c.Request.Context(), identity, input.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if result.Recorded {
		status = http.StatusCreated
	}
	response.Success(c, status, result)
}

// List returns the ledger, newest first
// GET /api/v1/fundings?page=&size=
func (h *FundingHandler) List(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}

	items, meta, err := h.fundingUsecase.ListFundings(c.Request.Context(), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"fundings":   items,
		"pagination": meta,
	})
}
