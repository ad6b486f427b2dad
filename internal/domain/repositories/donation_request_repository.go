package repositories

import (
	"context"

	"blood-donate.backend/internal/domain/entities"
	"blood-donate.backend/pkg/utils"
	"github.com/google/uuid"
)

// DonationRequestRepository defines donation request data operations
type DonationRequestRepository interface {
	Create(ctx context.Context, req *entities.DonationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.DonationRequest, error)
	// UpdateDetails applies a partial update to a pending request. An empty
	// ownerEmail skips the ownership filter.
	UpdateDetails(ctx context.Context, id uuid.UUID, ownerEmail string, input *entities.UpdateDonationRequestInput) (entities.UpdateResult, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	// UpdateStatus performs a single conditional write; see entities.StatusUpdate.
	UpdateStatus(ctx context.Context, update entities.StatusUpdate) (entities.UpdateResult, error)
	// Claim moves a pending request to inprogress and attaches the donor.
	Claim(ctx context.Context, claim entities.ClaimUpdate) (entities.UpdateResult, error)
	List(ctx context.Context, filter entities.DonationRequestFilter, page utils.PaginationParams) ([]*entities.DonationRequest, int64, error)
	// ListPending returns pending requests matching filter, newest first, at most limit rows.
	ListPending(ctx context.Context, filter entities.DonationRequestFilter, limit int) ([]*entities.DonationRequest, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[entities.RequestStatus]int64, error)
}
