package models

import (
	"time"

	"github.com/google/uuid"
)

type DonationRequest struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequesterName     string    `gorm:"type:varchar(100);not null"`
	RequesterEmail    string    `gorm:"type:varchar(255);not null;index"`
	RecipientName     string    `gorm:"type:varchar(100);not null"`
	RecipientDistrict string    `gorm:"type:varchar(100);not null;index:idx_donation_requests_search"`
	RecipientUpazila  string    `gorm:"type:varchar(100);not null;index:idx_donation_requests_search"`
	FullAddress       string    `gorm:"type:text"`
	HospitalName      string    `gorm:"type:varchar(255);not null"`
	BloodGroup        string    `gorm:"type:varchar(3);not null;index:idx_donation_requests_search"`
	DonationDate      string    `gorm:"type:varchar(20);not null"`
	DonationTime      string    `gorm:"type:varchar(20);not null"`
	RequestMessage    string    `gorm:"type:text"`
	DonorName         *string   `gorm:"type:varchar(100)"`
	DonorEmail        *string   `gorm:"type:varchar(255);index"`
	Status            string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time
}
