package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"blood-donate.backend/internal/config"
	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/pkg/logger"
	"blood-donate.backend/pkg/metrics"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

const (
	ProductName = "Blood donation fund"

	eventCheckoutCompleted    = "checkout.session.completed"
	eventCheckoutAsyncSuccess = "checkout.session.async_payment_succeeded"
)

// StripeGateway creates and reads hosted checkout sessions.
type StripeGateway struct {
	sessions      *session.Client
	webhookSecret string
}

// NewStripeGateway builds a client with its own backend: bounded HTTP timeout
// and no automatic network retries.
func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger.GetLogger().Sugar(),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	return &StripeGateway{
		sessions: &session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		webhookSecret: cfg.WebhookSecret,
	}
}

// CreateCheckoutSession opens a one-off payment session for a single line item.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.DonorEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.AmountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(ProductName),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		Metadata: map[string]string{
			"donorName":  req.DonorName,
			"donorEmail": req.DonorEmail,
		},
	}
	params.Context = ctx

	start := time.Now()
	s, err := g.sessions.New(params)
	metrics.RecordExternalCall("stripe", "checkout_session_create", err, time.Since(start))
	if err != nil {
		logger.Error(ctx, "Stripe checkout session create failed", zap.Error(err))
		return nil, mapStripeError(err)
	}
	return &entities.CheckoutSession{URL: s.URL, SessionID: s.ID}, nil
}

// GetCheckoutSession re-reads a session so payment state is never taken from the client.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*entities.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	start := time.Now()
	s, err := g.sessions.Get(sessionID, params)
	metrics.RecordExternalCall("stripe", "checkout_session_get", err, time.Since(start))
	if err != nil {
		logger.Warn(ctx, "Stripe checkout session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, mapStripeError(err)
	}
	return toPaymentSession(s), nil
}

// ParseWebhook verifies the Stripe-Signature header and returns the session of
// a checkout.session.completed or checkout.session.async_payment_succeeded
// event. ok is false for every other event type.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*entities.PaymentSession, bool, error) {
	if g.webhookSecret == "" {
		return nil, false, domainerrors.Forbidden("webhook secret not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, false, domainerrors.BadRequest("invalid stripe signature")
	}
	switch string(event.Type) {
	case eventCheckoutCompleted, eventCheckoutAsyncSuccess:
	default:
		return nil, false, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, false, domainerrors.BadRequest("invalid checkout session payload")
	}
	return toPaymentSession(&s), true, nil
}

func toPaymentSession(s *stripe.CheckoutSession) *entities.PaymentSession {
	out := &entities.PaymentSession{
		ID:            s.ID,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	if s.Metadata != nil {
		out.DonorName = s.Metadata["donorName"]
		out.DonorEmail = s.Metadata["donorEmail"]
	}
	return out
}

// mapStripeError keeps provider outages retryable and client mistakes final.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == http.StatusNotFound:
			return domainerrors.NotFound("checkout session not found")
		case stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
			return domainerrors.Upstream("payment provider rate limited", err)
		case stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500:
			msg := stripeErr.Msg
			if msg == "" {
				msg = "payment provider rejected the request"
			}
			return domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeBadRequest, msg, domainerrors.ErrInvalidInput)
		}
	}
	return domainerrors.Upstream("payment provider unavailable", err)
}
