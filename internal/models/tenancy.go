package models

import (
	"time"

	"gorm.io/gorm"
)

type TenancyStatus string

const (
	TenancyStatusPending TenancyStatus = "pending" // başlangıç tarihi gelmedi
	TenancyStatusActive  TenancyStatus = "active"  // devam ediyor
	TenancyStatusEnded   TenancyStatus = "ended"   // bitiş tarihi geçti
)

// Tenancy - Kira sözleşmesi (mülk + kiracılar + tarih aralığı)
type Tenancy struct {
	ID         uint     `gorm:"primaryKey"`
	LandlordID uint     `gorm:"index;not null"`
	Landlord   User     `gorm:"foreignKey:LandlordID"`
	PropertyID uint     `gorm:"index;not null"`
	Property   Property `gorm:"foreignKey:PropertyID"`

	StartDate  time.Time  `gorm:"index;not null"`
	EndDate    *time.Time `gorm:"index"` // null = süresiz sözleşme
	RentAmount float64    `gorm:"not null"`
	RentDueDay int        `gorm:"not null;default:1"` // kiranın vade günü (1-31)

	// Türetilmiş alan: (start_date, end_date, bugün) üzerinden hesaplanır,
	// her okuma öncesi tenancy.RecomputeStatuses ile senkronlanır.
	Status TenancyStatus `gorm:"size:20;not null;index;default:'pending'"`

	Notes string `gorm:"size:1000"`

	TenancyTenants []TenancyTenant `gorm:"foreignKey:TenancyID;constraint:OnDelete:CASCADE"`
	RentPayments   []RentPayment   `gorm:"foreignKey:TenancyID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"` // sonlandırmada işaretlenir, silinmez
}

// TenancyTenant - Sözleşme-kiracı bağlantısı
type TenancyTenant struct {
	ID        uint    `gorm:"primaryKey"`
	TenancyID uint    `gorm:"index;not null"`
	TenantID  uint    `gorm:"index;not null"`
	Tenant    Tenant  `gorm:"foreignKey:TenantID"`
	IsPrimary bool    `gorm:"default:false"` // asıl muhatap kiracı
	CreatedAt time.Time
	UpdatedAt time.Time
}
