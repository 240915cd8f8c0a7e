package models

import "time"

type PropertyCategory string

const (
	PropertyCategoryBTR        PropertyCategory = "btr"        // buy-to-rent
	PropertyCategoryHMO        PropertyCategory = "hmo"        // çoklu kiracı (house in multiple occupation)
	PropertyCategorySA         PropertyCategory = "sa"         // serviced accommodation (günlük kiralama)
	PropertyCategoryCommercial PropertyCategory = "commercial" // ticari
)

// Property - Kiralanan mülk
type Property struct {
	ID                   uint             `gorm:"primaryKey"`
	LandlordID           uint             `gorm:"index;not null"`
	Landlord             User             `gorm:"foreignKey:LandlordID"`
	Name                 string           `gorm:"size:200;not null"` // İsim (örn: "Daire 3, Çiçek Apt.")
	Address              string           `gorm:"size:255;not null"`
	City                 string           `gorm:"size:100"`
	Category             PropertyCategory `gorm:"size:20;not null;default:'btr'"`
	Bedrooms             int              `gorm:"default:0"`
	IsManaged            bool             `gorm:"default:false"` // profesyonel yönetimde mi? (SA için)
	ManagementFeePercent float64          `gorm:"default:0"`     // yönetim komisyonu yüzdesi
	FixedCleaningFee     float64          `gorm:"default:0"`     // sabit temizlik ücreti (rezervasyon başı)
	Notes                string           `gorm:"size:1000"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Tenancies []Tenancy `gorm:"foreignKey:PropertyID"`
}

// PaymentTerms - Mülk bazlı yönetici ödeme koşulları.
// Adres bazlı özel kurallar yerine konfigürasyon kaydı olarak tutulur.
type PaymentTerms struct {
	ID          uint      `gorm:"primaryKey"`
	PropertyID  uint      `gorm:"uniqueIndex;not null"`
	Property    *Property `gorm:"foreignKey:PropertyID"`
	PayoutDay   int       `gorm:"default:1"` // yönetici ödemesinin yapıldığı gün (ayın kaçı)
	Description string    `gorm:"size:500"`  // ödeme koşulu açıklaması (raporlarda gösterilir)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
