package handlers

import (
	"errors"
	"io"
	"net/http"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/interfaces/http/response"
	"blood-donate.backend/internal/usecases"
	"blood-donate.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// StripeSignatureHeader carries the webhook signature
	StripeSignatureHeader = "Stripe-Signature"

	maxWebhookBody = 1 << 20
)

// WebhookParser verifies a provider payload and extracts the completed session.
// ok is false for event types that do not record funding.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (session *entities.PaymentSession, ok bool, err error)
}

// WebhookHandler handles payment provider callbacks
type WebhookHandler struct {
	parser         WebhookParser
	fundingUsecase *usecases.FundingUsecase
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(parser WebhookParser, fundingUsecase *usecases.FundingUsecase) *WebhookHandler {
	return &WebhookHandler{parser: parser, fundingUsecase: fundingUsecase}
}

// HandleStripe records paid checkout sessions
// POST /api/v1/webhooks/stripe
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("unreadable body"))
		return
	}
	if len(payload) > maxWebhookBody {
		response.Error(c, domainerrors.NewAppError(http.StatusRequestEntityTooLarge, domainerrors.CodeBadRequest, "payload too large", domainerrors.ErrBadRequest))
		return
	}

	session, ok, err := h.parser.ParseWebhook(payload, c.GetHeader(StripeSignatureHeader))
	if err != nil {
		logger.Warn(c.Request.Context(), "Rejected webhook", zap.Error(err))
		response.Error(c, err)
		return
	}
	if !ok {
		response.Success(c, http.StatusOK, gin.H{"received": true, "recorded": false})
		return
	}

	result, err := h.fundingUsecase.RecordSession(c.Request.Context(), session.ID)
	if errors.Is(err, domainerrors.ErrPaymentNotCompleted) {
		// Delayed payment methods complete later through async_payment_succeeded.
		response.Success(c, http.StatusOK, gin.H{"received": true, "recorded": false})
		return
	}
	if err != nil {
		// Non-2xx makes the provider retry; duplicates are absorbed by the ledger.
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"received": true, "recorded": result.Recorded})
}
