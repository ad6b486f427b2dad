package models

import (
	"time"

	"github.com/google/uuid"
)

type Funding struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	DonorName     string    `gorm:"type:varchar(100)"`
	DonorEmail    string    `gorm:"type:varchar(255);index"`
	Amount        float64   `gorm:"type:numeric(12,2);not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	PaymentStatus string    `gorm:"type:varchar(20);not null"`
	TransactionID string    `gorm:"column:transaction_id;type:varchar(255);uniqueIndex;not null"`
	SessionID     string    `gorm:"type:varchar(255);index"`
	PaidAt        time.Time
	CreatedAt     time.Time `gorm:"index"`
}

func (Funding) TableName() string {
	return "fundings"
}
