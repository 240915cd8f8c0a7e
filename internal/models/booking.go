package models

import "time"

type BookingPaymentStatus string

const (
	BookingPaymentPending   BookingPaymentStatus = "pending"
	BookingPaymentPaid      BookingPaymentStatus = "paid"
	BookingPaymentCancelled BookingPaymentStatus = "cancelled"
)

type PMPaymentStatus string

const (
	PMPaymentPending PMPaymentStatus = "pending" // yönetici kesintisi ödenmedi
	PMPaymentPaid    PMPaymentStatus = "paid"    // yönetici kesintisi ödendi
)

// Booking - SA (günlük kiralama) rezervasyonu.
// Finansal alanlar booking.CalculateFinancials ile türetilir:
// net = brüt - platform komisyonu, yönetici ücreti = (net - temizlik) * yüzde.
type Booking struct {
	ID         uint     `gorm:"primaryKey"`
	LandlordID uint     `gorm:"index;not null"`
	Landlord   User     `gorm:"foreignKey:LandlordID"`
	PropertyID uint     `gorm:"index;not null"`
	Property   Property `gorm:"foreignKey:PropertyID"`

	GuestName string    `gorm:"size:100"`
	Channel   string    `gorm:"size:50"` // airbnb / booking.com / direkt
	CheckIn   time.Time `gorm:"index;not null"`
	CheckOut  time.Time `gorm:"index;not null"`

	NightlyRate       float64 `gorm:"not null"`
	GrossBookingValue float64 `gorm:"default:0"` // boşsa gece sayısı * gecelik fiyattan hesaplanır
	PlatformFee       float64 `gorm:"default:0"`
	NetRevenue        float64 `gorm:"default:0"`
	CleaningFee       float64 `gorm:"default:0"`
	PMFeeAmount       float64 `gorm:"default:0"` // yönetici komisyonu
	TotalPMDeduction  float64 `gorm:"default:0"` // temizlik + komisyon

	PaymentStatus   BookingPaymentStatus `gorm:"size:20;not null;index;default:'pending'"`
	PMPaymentStatus PMPaymentStatus      `gorm:"size:20;not null;index;default:'pending'"`
	Notes           string               `gorm:"size:500"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
