package usecases

import (
	"context"

	"blood-donate.backend/internal/domain/entities"
	"blood-donate.backend/internal/domain/repositories"
)

// AdminUsecase computes dashboard aggregates
type AdminUsecase struct {
	userRepo    repositories.UserRepository
	requestRepo repositories.DonationRequestRepository
	fundingRepo repositories.FundingRepository
}

func NewAdminUsecase(
	userRepo repositories.UserRepository,
	requestRepo repositories.DonationRequestRepository,
	fundingRepo repositories.FundingRepository,
) *AdminUsecase {
	return &AdminUsecase{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		fundingRepo: fundingRepo,
	}
}

// Stats reads every aggregate live from the store.
func (u *AdminUsecase) Stats(ctx context.Context) (*entities.AdminStats, error) {
	totalUsers, err := u.userRepo.Count(ctx, entities.UserFilter{})
	if err != nil {
		return nil, err
	}
	totalDonors, err := u.userRepo.Count(ctx, entities.UserFilter{Role: entities.UserRoleDonor})
	if err != nil {
		return nil, err
	}
	totalRequests, err := u.requestRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := u.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totalFunding, err := u.fundingRepo.SumAmount(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[entities.RequestStatus]int64{
		entities.RequestStatusPending:    0,
		entities.RequestStatusInProgress: 0,
		entities.RequestStatusDone:       0,
		entities.RequestStatusCanceled:   0,
	}
	for status, n := range byStatus {
		counts[status] = n
	}

	return &entities.AdminStats{
		TotalUsers:       totalUsers,
		TotalDonors:      totalDonors,
		TotalRequests:    totalRequests,
		TotalFunding:     totalFunding,
		RequestsByStatus: counts,
	}, nil
}
