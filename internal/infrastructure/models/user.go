package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name       string    `gorm:"type:varchar(100)"`
	PhotoURL   string    `gorm:"column:photo_url;type:text"`
	BloodGroup string    `gorm:"type:varchar(3)"`
	District   string    `gorm:"type:varchar(100)"`
	Upazila    string    `gorm:"type:varchar(100)"`
	Role       string    `gorm:"type:varchar(20);not null;default:'donar';index"`
	Status     string    `gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}
