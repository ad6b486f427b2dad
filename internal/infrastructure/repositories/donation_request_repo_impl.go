package repositories

import (
	"context"
	"errors"
	"time"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/infrastructure/models"
	"blood-donate.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

var requestColumns = map[string]string{
	"recipientName":     "recipient_name",
	"recipientDistrict": "recipient_district",
	"recipientUpazila":  "recipient_upazila",
	"fullAddress":       "full_address",
	"hospitalName":      "hospital_name",
	"bloodGroup":        "blood_group",
	"donationDate":      "donation_date",
	"donationTime":      "donation_time",
	"requestMessage":    "request_message",
}

// DonationRequestRepository implements donation request data operations
type DonationRequestRepository struct {
	db *gorm.DB
}

func NewDonationRequestRepository(db *gorm.DB) *DonationRequestRepository {
	return &DonationRequestRepository{db: db}
}

// Create creates a new donation request
func (r *DonationRequestRepository) Create(ctx context.Context, req *entities.DonationRequest) error {
	if req.ID == uuid.Nil {
		req.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt

	if err := GetDB(ctx, r.db).Create(r.toModel(req)).Error; err != nil {
		return domainerrors.FromStore(err)
	}
	return nil
}

// GetByID gets a donation request by ID
func (r *DonationRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.DonationRequest, error) {
	var m models.DonationRequest
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, domainerrors.FromStore(err)
	}
	return r.toEntity(&m), nil
}

// UpdateDetails updates descriptive fields of a pending request
func (r *DonationRequestRepository) UpdateDetails(ctx context.Context, id uuid.UUID, ownerEmail string, input *entities.UpdateDonationRequestInput) (entities.UpdateResult, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	for field, value := range input.Fields() {
		updates[requestColumns[field]] = value
	}

	query := GetDB(ctx, r.db).Model(&models.DonationRequest{}).
		Where("id = ? AND status = ?", id, string(entities.RequestStatusPending))
	if ownerEmail != "" {
		query = query.Where("requester_email = ?", ownerEmail)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return entities.UpdateResult{}, domainerrors.FromStore(result.Error)
	}
	return entities.UpdateResult{MatchedCount: result.RowsAffected, ModifiedCount: result.RowsAffected}, nil
}

// Delete hard deletes a request and returns the number of removed rows
func (r *DonationRequestRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).Delete(&models.DonationRequest{}, "id = ?", id)
	if result.Error != nil {
		return 0, domainerrors.FromStore(result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateStatus applies a guarded transition in a single statement
func (r *DonationRequestRepository) UpdateStatus(ctx context.Context, update entities.StatusUpdate) (entities.UpdateResult, error) {
	from := make([]string, 0, len(update.From))
	for _, s := range update.From {
		from = append(from, string(s))
	}

	query := GetDB(ctx, r.db).Model(&models.DonationRequest{}).
		Where("id = ? AND status IN ?", update.ID, from)
	if update.OwnerEmail != "" {
		query = query.Where("requester_email = ?", update.OwnerEmail)
	}

	result := query.Updates(map[string]interface{}{
		"status":     string(update.To),
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return entities.UpdateResult{}, domainerrors.FromStore(result.Error)
	}
	return entities.UpdateResult{MatchedCount: result.RowsAffected, ModifiedCount: result.RowsAffected}, nil
}

// Claim moves pending -> inprogress and records the donor
func (r *DonationRequestRepository) Claim(ctx context.Context, claim entities.ClaimUpdate) (entities.UpdateResult, error) {
	result := GetDB(ctx, r.db).Model(&models.DonationRequest{}).
		Where("id = ? AND status = ?", claim.ID, string(entities.RequestStatusPending)).
		Updates(map[string]interface{}{
			"status":      string(entities.RequestStatusInProgress),
			"donor_name":  claim.DonorName,
			"donor_email": claim.DonorEmail,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return entities.UpdateResult{}, domainerrors.FromStore(result.Error)
	}
	return entities.UpdateResult{MatchedCount: result.RowsAffected, ModifiedCount: result.RowsAffected}, nil
}

// List returns a page of requests newest first together with the filtered total
func (r *DonationRequestRepository) List(ctx context.Context, filter entities.DonationRequestFilter, page utils.PaginationParams) ([]*entities.DonationRequest, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.FromStore(err)
	}

	var rows []models.DonationRequest
	if err := query.Order("created_at DESC").Order("id DESC").
		Offset(page.CalculateOffset()).Limit(page.Size).
		Find(&rows).Error; err != nil {
		return nil, 0, domainerrors.FromStore(err)
	}
	return r.toEntities(rows), total, nil
}

// ListPending returns pending requests newest first
func (r *DonationRequestRepository) ListPending(ctx context.Context, filter entities.DonationRequestFilter, limit int) ([]*entities.DonationRequest, error) {
	filter.Status = entities.RequestStatusPending

	var rows []models.DonationRequest
	if err := r.filtered(ctx, filter).Order("created_at DESC").Order("id DESC").
		Limit(limit).Find(&rows).Error; err != nil {
		return nil, domainerrors.FromStore(err)
	}
	return r.toEntities(rows), nil
}

func (r *DonationRequestRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.DonationRequest{}).Count(&total).Error; err != nil {
		return 0, domainerrors.FromStore(err)
	}
	return total, nil
}

// CountByStatus groups requests by lifecycle state
func (r *DonationRequestRepository) CountByStatus(ctx context.Context) (map[entities.RequestStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := GetDB(ctx, r.db).Model(&models.DonationRequest{}).
		Select("status, COUNT(*) AS count").Group("status").
		Scan(&rows).Error; err != nil {
		return nil, domainerrors.FromStore(err)
	}

	out := make(map[entities.RequestStatus]int64, len(rows))
	for _, row := range rows {
		out[entities.RequestStatus(row.Status)] = row.Count
	}
	return out, nil
}

func (r *DonationRequestRepository) filtered(ctx context.Context, filter entities.DonationRequestFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&models.DonationRequest{})
	if filter.RequesterEmail != "" {
		query = query.Where("requester_email = ?", filter.RequesterEmail)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.BloodGroup != "" {
		query = query.Where("blood_group = ?", filter.BloodGroup)
	}
	if filter.District != "" {
		query = query.Where("recipient_district = ?", filter.District)
	}
	if filter.Upazila != "" {
		query = query.Where("recipient_upazila = ?", filter.Upazila)
	}
	return query.Session(&gorm.Session{})
}

func (r *DonationRequestRepository) toModel(e *entities.DonationRequest) *models.DonationRequest {
	return &models.DonationRequest{
		ID:                e.ID,
		RequesterName:     e.RequesterName,
		RequesterEmail:    e.RequesterEmail,
		RecipientName:     e.RecipientName,
		RecipientDistrict: e.RecipientDistrict,
		RecipientUpazila:  e.RecipientUpazila,
		FullAddress:       e.FullAddress,
		HospitalName:      e.HospitalName,
		BloodGroup:        e.BloodGroup,
		DonationDate:      e.DonationDate,
		DonationTime:      e.DonationTime,
		RequestMessage:    e.RequestMessage,
		DonorName:         e.DonorName.Ptr(),
		DonorEmail:        e.DonorEmail.Ptr(),
		Status:            string(e.Status),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func (r *DonationRequestRepository) toEntity(m *models.DonationRequest) *entities.DonationRequest {
	return &entities.DonationRequest{
		ID:                m.ID,
		RequesterName:     m.RequesterName,
		RequesterEmail:    m.RequesterEmail,
		RecipientName:     m.RecipientName,
		RecipientDistrict: m.RecipientDistrict,
		RecipientUpazila:  m.RecipientUpazila,
		FullAddress:       m.FullAddress,
		HospitalName:      m.HospitalName,
		BloodGroup:        m.BloodGroup,
		DonationDate:      m.DonationDate,
		DonationTime:      m.DonationTime,
		RequestMessage:    m.RequestMessage,
		DonorName:         null.StringFromPtr(m.DonorName),
		DonorEmail:        null.StringFromPtr(m.DonorEmail),
		Status:            entities.RequestStatus(m.Status),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func (r *DonationRequestRepository) toEntities(rows []models.DonationRequest) []*entities.DonationRequest {
	out := make([]*entities.DonationRequest, 0, len(rows))
	for i := range rows {
		out = append(out, r.toEntity(&rows[i]))
	}
	return out
}
