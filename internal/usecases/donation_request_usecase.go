package usecases

import (
	"context"
	"errors"
	"strings"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/domain/repositories"
	"blood-donate.backend/pkg/logger"
	"blood-donate.backend/pkg/metrics"
	"blood-donate.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PublicListLimit caps the unauthenticated pending list
	PublicListLimit = 20
	// SearchLimit is the hard safety limit on search results
	SearchLimit = 100
)

// DonationRequestUsecase handles the donation request lifecycle
type DonationRequestUsecase struct {
	requestRepo repositories.DonationRequestRepository
	userRepo    repositories.UserRepository
}

// NewDonationRequestUsecase creates a new donation request usecase
func NewDonationRequestUsecase(
	requestRepo repositories.DonationRequestRepository,
	userRepo repositories.UserRepository,
) *DonationRequestUsecase {
	return &DonationRequestUsecase{
		requestRepo: requestRepo,
		userRepo:    userRepo,
	}
}

// Create posts a new pending request on behalf of the caller
func (u *DonationRequestUsecase) Create(ctx context.Context, identity *entities.Identity, input *entities.CreateDonationRequestInput) (*entities.DonationRequest, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	bloodGroup := entities.NormalizeBloodGroup(input.BloodGroup)
	if !entities.ValidBloodGroup(bloodGroup) {
		return nil, domainerrors.BadRequest("invalid blood group")
	}

	requester, err := u.activeUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	req := &entities.DonationRequest{
		RequesterName:     clip(firstNonEmpty(input.RequesterName, requester.Name, identity.Name), entities.MaxNameLength),
		RequesterEmail:    requester.Email,
		RecipientName:     strings.TrimSpace(input.RecipientName),
		RecipientDistrict: strings.TrimSpace(input.RecipientDistrict),
		RecipientUpazila:  strings.TrimSpace(input.RecipientUpazila),
		FullAddress:       strings.TrimSpace(input.FullAddress),
		HospitalName:      strings.TrimSpace(input.HospitalName),
		BloodGroup:        bloodGroup,
		DonationDate:      strings.TrimSpace(input.DonationDate),
		DonationTime:      strings.TrimSpace(input.DonationTime),
		RequestMessage:    input.RequestMessage,
		Status:            entities.RequestStatusPending,
	}

	if err := u.requestRepo.Create(ctx, req); err != nil {
		metrics.RecordBusinessEvent("request_create", metrics.OutcomeError)
		return nil, err
	}
	metrics.RecordBusinessEvent("request_create", metrics.OutcomeSuccess)
	logger.Info(ctx, "Donation request created",
		zap.String("request_id", req.ID.String()),
		zap.String("requester", req.RequesterEmail),
		zap.String("blood_group", req.BloodGroup),
	)

	return req, nil
}

// GetByID returns a single request
func (u *DonationRequestUsecase) GetByID(ctx context.Context, id uuid.UUID) (*entities.DonationRequest, error) {
	return u.requestRepo.GetByID(ctx, id)
}

// UpdateDetails edits a pending request. Only the owner or an admin may edit.
func (u *DonationRequestUsecase) UpdateDetails(ctx context.Context, identity *entities.Identity, id uuid.UUID, input *entities.UpdateDonationRequestInput) (entities.UpdateResult, error) {
	if err := requireIdentity(identity); err != nil {
		return entities.UpdateResult{}, err
	}
	if input == nil || input.Empty() {
		return entities.UpdateResult{}, domainerrors.BadRequest("no fields to update")
	}
	if err := checkLengths(
		fieldLimit{"recipientName", input.RecipientName, entities.MaxNameLength},
		fieldLimit{"recipientDistrict", input.RecipientDistrict, entities.MaxPlaceLength},
		fieldLimit{"recipientUpazila", input.RecipientUpazila, entities.MaxPlaceLength},
		fieldLimit{"hospitalName", input.HospitalName, entities.MaxHospitalLength},
		fieldLimit{"donationDate", input.DonationDate, entities.MaxScheduleLength},
		fieldLimit{"donationTime", input.DonationTime, entities.MaxScheduleLength},
	); err != nil {
		return entities.UpdateResult{}, err
	}
	if input.BloodGroup != nil {
		bloodGroup := entities.NormalizeBloodGroup(*input.BloodGroup)
		if !entities.ValidBloodGroup(bloodGroup) {
			return entities.UpdateResult{}, domainerrors.BadRequest("invalid blood group")
		}
		input.BloodGroup = &bloodGroup
	}

	role, err := u.callerRole(ctx, identity)
	if err != nil {
		return entities.UpdateResult{}, err
	}
	owner := normalizeEmail(identity.Email)
	if role == entities.UserRoleAdmin {
		owner = ""
	}

	return u.requestRepo.UpdateDetails(ctx, id, owner, input)
}

// Delete removes a request. Deleting a missing id reports zero deletions.
func (u *DonationRequestUsecase) Delete(ctx context.Context, identity *entities.Identity, id uuid.UUID) (entities.DeleteResult, error) {
	if err := requireIdentity(identity); err != nil {
		return entities.DeleteResult{}, err
	}

	role, err := u.callerRole(ctx, identity)
	if err != nil {
		return entities.DeleteResult{}, err
	}
	if role != entities.UserRoleAdmin {
		existing, err := u.requestRepo.GetByID(ctx, id)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return entities.DeleteResult{}, nil
		}
		if err != nil {
			return entities.DeleteResult{}, err
		}
		if existing.RequesterEmail != normalizeEmail(identity.Email) {
			return entities.DeleteResult{}, domainerrors.Forbidden("only the requester or an admin can delete this request")
		}
	}

	deleted, err := u.requestRepo.Delete(ctx, id)
	if err != nil {
		return entities.DeleteResult{}, err
	}
	if deleted > 0 {
		logger.Info(ctx, "Donation request deleted", zap.String("request_id", id.String()))
	}
	return entities.DeleteResult{DeletedCount: deleted}, nil
}

// UpdateStatus moves a request to done or canceled in one conditional write.
// Admins and volunteers may act on any request; everyone else only on their own.
func (u *DonationRequestUsecase) UpdateStatus(ctx context.Context, identity *entities.Identity, id uuid.UUID, status entities.RequestStatus) (entities.UpdateResult, error) {
	if err := requireIdentity(identity); err != nil {
		return entities.UpdateResult{}, err
	}
	if status != entities.RequestStatusDone && status != entities.RequestStatusCanceled {
		return entities.UpdateResult{}, domainerrors.BadRequest("status must be done or canceled")
	}

	role, err := u.callerRole(ctx, identity)
	if err != nil {
		return entities.UpdateResult{}, err
	}
	update := entities.StatusUpdate{
		ID:   id,
		To:   status,
		From: entities.AllowedSources(status),
	}
	if !role.CanModerate() {
		update.OwnerEmail = normalizeEmail(identity.Email)
	}

	result, err := u.requestRepo.UpdateStatus(ctx, update)
	if err != nil {
		metrics.RecordBusinessEvent("request_status", metrics.OutcomeError)
		return entities.UpdateResult{}, err
	}
	metrics.RecordBusinessEvent("request_status", metrics.OutcomeSuccess)
	logger.Info(ctx, "Donation request status update",
		zap.String("request_id", id.String()),
		zap.String("to", string(status)),
		zap.Int64("matched", result.MatchedCount),
		zap.Int64("modified", result.ModifiedCount),
	)
	return result, nil
}

// Claim assigns the caller as donor of a pending request.
// Repeating a claim by the same donor succeeds without changes.
func (u *DonationRequestUsecase) Claim(ctx context.Context, identity *entities.Identity, id uuid.UUID, input *entities.ClaimRequestInput) (*entities.DonationRequest, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if input != nil {
		if err := checkLengths(fieldLimit{"donorName", &input.DonorName, entities.MaxNameLength}); err != nil {
			return nil, err
		}
	}
	donor, err := u.activeUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	existing, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.RequesterEmail == donor.Email {
		return nil, domainerrors.Conflict("requesters cannot claim their own request")
	}

	donorName := donor.Name
	if input != nil {
		donorName = firstNonEmpty(input.DonorName, donor.Name, identity.Name)
	}
	donorName = clip(donorName, entities.MaxNameLength)

	result, err := u.requestRepo.Claim(ctx, entities.ClaimUpdate{
		ID:         id,
		DonorName:  donorName,
		DonorEmail: donor.Email,
	})
	if err != nil {
		metrics.RecordBusinessEvent("request_claim", metrics.OutcomeError)
		return nil, err
	}

	current, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.ModifiedCount == 1 {
		metrics.RecordBusinessEvent("request_claim", metrics.OutcomeSuccess)
		logger.Info(ctx, "Donation request claimed",
			zap.String("request_id", id.String()),
			zap.String("donor", donor.Email),
		)
		return current, nil
	}

	if current.Status == entities.RequestStatusInProgress && current.DonorEmail.Valid && current.DonorEmail.String == donor.Email {
		return current, nil
	}
	metrics.RecordBusinessEvent("request_claim", "conflict")
	return nil, domainerrors.Conflict("request is no longer available")
}

// ListPublic returns the newest pending requests
func (u *DonationRequestUsecase) ListPublic(ctx context.Context) ([]*entities.DonationRequest, error) {
	return u.requestRepo.ListPending(ctx, entities.DonationRequestFilter{}, PublicListLimit)
}

// Search filters pending requests by exact blood group and location.
func (u *DonationRequestUsecase) Search(ctx context.Context, filter entities.DonationRequestFilter) ([]*entities.DonationRequest, error) {
	search := entities.DonationRequestFilter{
		District: strings.TrimSpace(filter.District),
		Upazila:  strings.TrimSpace(filter.Upazila),
	}
	if strings.TrimSpace(filter.BloodGroup) != "" {
		search.BloodGroup = entities.NormalizeBloodGroup(filter.BloodGroup)
	}
	return u.requestRepo.ListPending(ctx, search, SearchLimit)
}

// ListMine returns the caller's requests
func (u *DonationRequestUsecase) ListMine(ctx context.Context, identity *entities.Identity, status entities.RequestStatus, page utils.PaginationParams) ([]*entities.DonationRequest, utils.PaginationMeta, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return u.list(ctx, entities.DonationRequestFilter{
		RequesterEmail: normalizeEmail(identity.Email),
		Status:         status,
	}, page)
}

// ListAll returns every request; route access is limited to admins and volunteers.
func (u *DonationRequestUsecase) ListAll(ctx context.Context, status entities.RequestStatus, page utils.PaginationParams) ([]*entities.DonationRequest, utils.PaginationMeta, error) {
	return u.list(ctx, entities.DonationRequestFilter{Status: status}, page)
}

func (u *DonationRequestUsecase) list(ctx context.Context, filter entities.DonationRequestFilter, page utils.PaginationParams) ([]*entities.DonationRequest, utils.PaginationMeta, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.PaginationMeta{}, domainerrors.BadRequest("invalid status filter")
	}

	page = utils.GetPaginationParams(page.Page, page.Size)
	items, total, err := u.requestRepo.List(ctx, filter, page)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return items, utils.CalculateMeta(total, page.Page, page.Size), nil
}

// activeUser loads (or provisions) the caller and rejects blocked accounts.
func (u *DonationRequestUsecase) activeUser(ctx context.Context, identity *entities.Identity) (*entities.User, error) {
	user, _, err := u.userRepo.CreateIfAbsent(ctx, shadowUser(identity))
	if err != nil {
		return nil, err
	}
	if user.IsBlocked() {
		return nil, domainerrors.UserBlocked()
	}
	return user, nil
}

// callerRole treats callers without a stored profile as donors.
func (u *DonationRequestUsecase) callerRole(ctx context.Context, identity *entities.Identity) (entities.UserRole, error) {
	user, err := u.userRepo.GetByEmail(ctx, normalizeEmail(identity.Email))
	if errors.Is(err, domainerrors.ErrNotFound) {
		return entities.UserRoleDonor, nil
	}
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func validateCreateInput(input *entities.CreateDonationRequestInput) error {
	if input == nil {
		return domainerrors.BadRequest("request body is required")
	}
	required := map[string]string{
		"recipientName":     input.RecipientName,
		"recipientDistrict": input.RecipientDistrict,
		"recipientUpazila":  input.RecipientUpazila,
		"hospitalName":      input.HospitalName,
		"bloodGroup":        input.BloodGroup,
		"donationDate":      input.DonationDate,
		"donationTime":      input.DonationTime,
	}
	for _, field := range []string{"recipientName", "recipientDistrict", "recipientUpazila", "hospitalName", "bloodGroup", "donationDate", "donationTime"} {
		if strings.TrimSpace(required[field]) == "" {
			return domainerrors.BadRequest(field + " is required")
		}
	}
	trimmed := func(v string) *string {
		v = strings.TrimSpace(v)
		return &v
	}
	return checkLengths(
		fieldLimit{"requesterName", trimmed(input.RequesterName), entities.MaxNameLength},
		fieldLimit{"recipientName", trimmed(input.RecipientName), entities.MaxNameLength},
		fieldLimit{"recipientDistrict", trimmed(input.RecipientDistrict), entities.MaxPlaceLength},
		fieldLimit{"recipientUpazila", trimmed(input.RecipientUpazila), entities.MaxPlaceLength},
		fieldLimit{"hospitalName", trimmed(input.HospitalName), entities.MaxHospitalLength},
		fieldLimit{"donationDate", trimmed(input.DonationDate), entities.MaxScheduleLength},
		fieldLimit{"donationTime", trimmed(input.DonationTime), entities.MaxScheduleLength},
	)
}
