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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FundingRepository implements the payment ledger
type FundingRepository struct {
	db *gorm.DB
}

func NewFundingRepository(db *gorm.DB) *FundingRepository {
	return &FundingRepository{db: db}
}

// CreateIfAbsent relies on the unique transaction_id index; a conflicting row is left untouched.
func (r *FundingRepository) CreateIfAbsent(ctx context.Context, record *entities.FundingRecord) (bool, error) {
	if record.ID == uuid.Nil {
		record.ID = utils.GenerateUUIDv7()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	m := &models.Funding{
		ID:            record.ID,
		DonorName:     record.DonorName,
		DonorEmail:    record.DonorEmail,
		Amount:        record.Amount,
		Currency:      record.Currency,
		PaymentStatus: record.PaymentStatus,
		TransactionID: record.TransactionID,
		SessionID:     record.SessionID,
		PaidAt:        record.PaidAt,
		CreatedAt:     record.CreatedAt,
	}

	result := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "transaction_id"}}, DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, domainerrors.FromStore(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *FundingRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entities.FundingRecord, error) {
	var m models.Funding
	if err := GetDB(ctx, r.db).Where("transaction_id = ?", transactionID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, domainerrors.FromStore(err)
	}
	return r.toEntity(&m), nil
}

// List returns ledger entries newest first
func (r *FundingRepository) List(ctx context.Context, page utils.PaginationParams) ([]*entities.FundingRecord, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Funding{}).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.FromStore(err)
	}

	var rows []models.Funding
	if err := query.Order("created_at DESC").Order("id DESC").
		Offset(page.CalculateOffset()).Limit(page.Size).
		Find(&rows).Error; err != nil {
		return nil, 0, domainerrors.FromStore(err)
	}

	out := make([]*entities.FundingRecord, 0, len(rows))
	for i := range rows {
		out = append(out, r.toEntity(&rows[i]))
	}
	return out, total, nil
}

// SumAmount totals every ledger entry
func (r *FundingRepository) SumAmount(ctx context.Context) (float64, error) {
	var total float64
	if err := GetDB(ctx, r.db).Model(&models.Funding{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, domainerrors.FromStore(err)
	}
	return total, nil
}

func (r *FundingRepository) toEntity(m *models.Funding) *entities.FundingRecord {
	return &entities.FundingRecord{
		ID:            m.ID,
		DonorName:     m.DonorName,
		DonorEmail:    m.DonorEmail,
		Amount:        m.Amount,
		Currency:      m.Currency,
		PaymentStatus: m.PaymentStatus,
		TransactionID: m.TransactionID,
		SessionID:     m.SessionID,
		PaidAt:        m.PaidAt,
		CreatedAt:     m.CreatedAt,
	}
}
