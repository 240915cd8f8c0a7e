package models

import "time"

type RentPaymentStatus string

const (
	RentPaymentStatusPending RentPaymentStatus = "pending" // vade gelmedi
	RentPaymentStatusPaid    RentPaymentStatus = "paid"    // ödendi
	RentPaymentStatusLate    RentPaymentStatus = "late"    // vadesi geçti
	RentPaymentStatusMissed  RentPaymentStatus = "missed"  // ödenmedi (kapanan dönem)
)

// RentPayment - Bir sözleşmenin bir aya ait kira yükümlülüğü.
// Aynı sözleşme + takvim ayı için en fazla bir kayıt üretilir (rent.MaterializeMonth).
type RentPayment struct {
	ID         uint     `gorm:"primaryKey"`
	TenancyID  uint     `gorm:"index;not null"`
	Tenancy    Tenancy  `gorm:"foreignKey:TenancyID"`
	PropertyID uint     `gorm:"index;not null"` // denormalize (raporlama için)
	LandlordID uint     `gorm:"index;not null"` // denormalize

	DueDate       time.Time         `gorm:"index;not null"`
	AmountDue     float64           `gorm:"not null"`
	AmountPaid    float64           `gorm:"default:0"`
	Status        RentPaymentStatus `gorm:"size:20;not null;index;default:'pending'"`
	PaidDate      *time.Time
	PaymentMethod string `gorm:"size:50"`  // havale / nakit / diğer (opsiyonel)
	Notes         string `gorm:"size:500"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
