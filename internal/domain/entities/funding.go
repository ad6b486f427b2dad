package entities

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatusPaid is the provider status that allows a ledger entry.
const PaymentStatusPaid = "paid"

// FundingRecord is an immutable ledger entry, unique by TransactionID
type FundingRecord struct {
	ID            uuid.UUID `json:"id"`
	DonorName     string    `json:"donorName"`
	DonorEmail    string    `json:"donorEmail"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentStatus string    `json:"paymentStatus"`
	TransactionID string    `json:"transactionId"`
	SessionID     string    `json:"sessionId"`
	PaidAt        time.Time `json:"paidAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateCheckoutInput requests a hosted checkout page
type CreateCheckoutInput struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	DonorName string  `json:"donorName" binding:"max=100"`
}

// CheckoutSession is returned to the client for redirection
type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// CheckoutRequest is what the usecase asks the payment gateway to create.
type CheckoutRequest struct {
	AmountMinor int64
	Currency    string
	DonorName   string
	DonorEmail  string
	SuccessURL  string
	CancelURL   string
}

// PaymentSession is the gateway's view of a checkout session.
type PaymentSession struct {
	ID              string
	PaymentIntentID string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	CustomerEmail   string
	DonorName       string
	DonorEmail      string
}

// TransactionID prefers the payment intent id and falls back to the session id.
func (s *PaymentSession) TransactionID() string {
	if s.PaymentIntentID != "" {
		return s.PaymentIntentID
	}
	return s.ID
}

// ConfirmPaymentInput identifies the checkout session to confirm
type ConfirmPaymentInput struct {
	SessionID string `json:"sessionId" form:"session_id"`
}

// ConfirmPaymentResult reports whether this call created the ledger entry
type ConfirmPaymentResult struct {
	Recorded bool           `json:"recorded"`
	Funding  *FundingRecord `json:"funding,omitempty"`
}
