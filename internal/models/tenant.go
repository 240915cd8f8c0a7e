package models

import "time"

// Tenant - Kiracı
type Tenant struct {
	ID         uint   `gorm:"primaryKey"`
	LandlordID uint   `gorm:"index;not null"`
	Landlord   User   `gorm:"foreignKey:LandlordID"`
	Name       string `gorm:"size:100;not null"`
	Email      string `gorm:"size:100"`
	Phone      string `gorm:"size:50"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
