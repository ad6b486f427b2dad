package usecases_test

import (
	"context"

	"blood-donate.backend/internal/domain/entities"
	"blood-donate.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateIfAbsent(ctx context.Context, user *entities.User) (*entities.User, bool, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*entities.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, email string, input *entities.UpdateProfileInput) (*entities.User, error) {
	args := m.Called(ctx, email, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, email string, role entities.UserRole) (entities.UpdateResult, error) {
	args := m.Called(ctx, email, role)
	return args.Get(0).(entities.UpdateResult), args.Error(1)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, email string, status entities.UserStatus) (entities.UpdateResult, error) {
	args := m.Called(ctx, email, status)
	return args.Get(0).(entities.UpdateResult), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Count(ctx context.Context, filter entities.UserFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// Mock DonationRequestRepository
type MockDonationRequestRepository struct {
	mock.Mock
}

func (m *MockDonationRequestRepository) Create(ctx context.Context, req *entities.DonationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockDonationRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.DonationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DonationRequest), args.Error(1)
}

func (m *MockDonationRequestRepository) UpdateDetails(ctx context.Context, id uuid.UUID, ownerEmail string, input *entities.UpdateDonationRequestInput) (entities.UpdateResult, error) {
	args := m.Called(ctx, id, ownerEmail, input)
	return args.Get(0).(entities.UpdateResult), args.Error(1)
}

func (m *MockDonationRequestRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDonationRequestRepository) UpdateStatus(ctx context.Context, update entities.StatusUpdate) (entities.UpdateResult, error) {
	args := m.Called(ctx, update)
	return args.Get(0).(entities.UpdateResult), args.Error(1)
}

func (m *MockDonationRequestRepository) Claim(ctx context.Context, claim entities.ClaimUpdate) (entities.UpdateResult, error) {
	args := m.Called(ctx, claim)
	return args.Get(0).(entities.UpdateResult), args.Error(1)
}

func (m *MockDonationRequestRepository) List(ctx context.Context, filter entities.DonationRequestFilter, page utils.PaginationParams) ([]*entities.DonationRequest, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.DonationRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockDonationRequestRepository) ListPending(ctx context.Context, filter entities.DonationRequestFilter, limit int) ([]*entities.DonationRequest, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DonationRequest), args.Error(1)
}

func (m *MockDonationRequestRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDonationRequestRepository) CountByStatus(ctx context.Context) (map[entities.RequestStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.RequestStatus]int64), args.Error(1)
}

// Mock FundingRepository
type MockFundingRepository struct {
	mock.Mock
}

func (m *MockFundingRepository) CreateIfAbsent(ctx context.Context, record *entities.FundingRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

func (m *MockFundingRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entities.FundingRecord, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FundingRecord), args.Error(1)
}

func (m *MockFundingRepository) List(ctx context.Context, page utils.PaginationParams) ([]*entities.FundingRecord, int64, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.FundingRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockFundingRepository) SumAmount(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

// Mock PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*entities.PaymentSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentSession), args.Error(1)
}
