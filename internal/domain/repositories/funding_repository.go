package repositories

import (
	"context"

	"blood-donate.backend/internal/domain/entities"
	"blood-donate.backend/pkg/utils"
)

// FundingRepository defines ledger operations. Entries are never updated.
type FundingRepository interface {
	// CreateIfAbsent inserts record unless its transaction id is already recorded.
	CreateIfAbsent(ctx context.Context, record *entities.FundingRecord) (created bool, err error)
	GetByTransactionID(ctx context.Context, transactionID string) (*entities.FundingRecord, error)
	List(ctx context.Context, page utils.PaginationParams) ([]*entities.FundingRecord, int64, error)
	SumAmount(ctx context.Context) (float64, error)
}
