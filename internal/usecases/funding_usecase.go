package usecases

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/domain/repositories"
	"blood-donate.backend/pkg/logger"
	"blood-donate.backend/pkg/metrics"
	"blood-donate.backend/pkg/utils"
	"go.uber.org/zap"
)

// PaymentGateway is the hosted-checkout provider
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*entities.PaymentSession, error)
}

// FundingSettings are the checkout parameters taken from configuration
type FundingSettings struct {
	Currency   string
	SiteDomain string
}

// FundingUsecase handles checkout creation and ledger recording
type FundingUsecase struct {
	fundingRepo repositories.FundingRepository
	userRepo    repositories.UserRepository
	gateway     PaymentGateway
	settings    FundingSettings
	now         func() time.Time
}

// NewFundingUsecase creates a new funding usecase
func NewFundingUsecase(
	fundingRepo repositories.FundingRepository,
	userRepo repositories.UserRepository,
	gateway PaymentGateway,
	settings FundingSettings,
) *FundingUsecase {
	if settings.Currency == "" {
		settings.Currency = "usd"
	}
	settings.SiteDomain = strings.TrimRight(settings.SiteDomain, "/")
	return &FundingUsecase{
		fundingRepo: fundingRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		settings:    settings,
		now:         time.Now,
	}
}

// CreateCheckout opens a hosted checkout for amount in major currency units
func (u *FundingUsecase) CreateCheckout(ctx context.Context, identity *entities.Identity, input *entities.CreateCheckoutInput) (*entities.CheckoutSession, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if input == nil || math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount <= 0 {
		return nil, domainerrors.BadRequest("amount must be greater than zero")
	}
	if err := checkLengths(fieldLimit{"donorName", &input.DonorName, entities.MaxNameLength}); err != nil {
		return nil, err
	}
	amountMinor := int64(math.Round(input.Amount * 100))
	if amountMinor < 1 {
		return nil, domainerrors.BadRequest("amount is below the smallest currency unit")
	}

	payer, _, err := u.userRepo.CreateIfAbsent(ctx, shadowUser(identity))
	if err != nil {
		return nil, err
	}
	if payer.IsBlocked() {
		return nil, domainerrors.UserBlocked()
	}

	session, err := u.gateway.CreateCheckoutSession(ctx, entities.CheckoutRequest{
		AmountMinor: amountMinor,
		Currency:    u.settings.Currency,
		DonorName:   clip(firstNonEmpty(input.DonorName, payer.Name, identity.Name), entities.MaxNameLength),
		DonorEmail:  payer.Email,
		SuccessURL:  u.settings.SiteDomain + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   u.settings.SiteDomain + "/payment-cancelled",
	})
	if err != nil {
		metrics.RecordBusinessEvent("checkout_create", metrics.OutcomeError)
		return nil, err
	}
	metrics.RecordBusinessEvent("checkout_create", metrics.OutcomeSuccess)
	logger.Info(ctx, "Checkout session created",
		zap.String("session_id", session.SessionID),
		zap.Int64("amount_minor", amountMinor),
		zap.String("payer", payer.Email),
	)
	return session, nil
}

// Confirm records the payment of a checkout session for an authenticated caller
func (u *FundingUsecase) Confirm(ctx context.Context, identity *entities.Identity, sessionID string) (*entities.ConfirmPaymentResult, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	return u.RecordSession(ctx, sessionID)
}

// RecordSession re-reads the session from the provider and writes at most one
// ledger entry for its transaction. Repeats report Recorded=false.
func (u *FundingUsecase) RecordSession(ctx context.Context, sessionID string) (*entities.ConfirmPaymentResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domainerrors.BadRequest("session_id is required")
	}

	session, err := u.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	txID := session.TransactionID()

	existing, err := u.fundingRepo.GetByTransactionID(ctx, txID)
	if err == nil {
		return &entities.ConfirmPaymentResult{Recorded: false, Funding: existing}, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	if session.PaymentStatus != entities.PaymentStatusPaid {
		logger.Warn(ctx, "Payment confirmation before completion",
			zap.String("session_id", sessionID),
			zap.String("payment_status", session.PaymentStatus),
		)
		return nil, domainerrors.PaymentNotCompleted()
	}

	now := u.now().UTC()
	record := &entities.FundingRecord{
		DonorName:     clip(session.DonorName, entities.MaxNameLength),
		DonorEmail:    firstNonEmpty(session.DonorEmail, session.CustomerEmail),
		Amount:        float64(session.AmountTotal) / 100,
		Currency:      session.Currency,
		PaymentStatus: entities.PaymentStatusPaid,
		TransactionID: txID,
		SessionID:     session.ID,
		PaidAt:        now,
		CreatedAt:     now,
	}

	created, err := u.fundingRepo.CreateIfAbsent(ctx, record)
	if err != nil {
		metrics.RecordBusinessEvent("funding_record", metrics.OutcomeError)
		return nil, err
	}
	if !created {
		stored, err := u.fundingRepo.GetByTransactionID(ctx, txID)
		if err != nil {
			return nil, err
		}
		return &entities.ConfirmPaymentResult{Recorded: false, Funding: stored}, nil
	}

	metrics.RecordBusinessEvent("funding_record", metrics.OutcomeSuccess)
	logger.Info(ctx, "Funding recorded",
		zap.String("transaction_id", txID),
		zap.String("session_id", session.ID),
		zap.Float64("amount", record.Amount),
		zap.String("donor", record.DonorEmail),
	)
	return &entities.ConfirmPaymentResult{Recorded: true, Funding: record}, nil
}

// ListFundings returns the ledger newest first
func (u *FundingUsecase) ListFundings(ctx context.Context, page utils.PaginationParams) ([]*entities.FundingRecord, utils.PaginationMeta, error) {
	page = utils.GetPaginationParams(page.Page, page.Size)
	items, total, err := u.fundingRepo.List(ctx, page)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return items, utils.CalculateMeta(total, page.Page, page.Size), nil
}
