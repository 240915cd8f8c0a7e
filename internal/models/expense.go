package models

import "time"

type ExpenseFrequency string

const (
	ExpenseFrequencyOneOff    ExpenseFrequency = "one-off"   // tek seferlik
	ExpenseFrequencyMonthly   ExpenseFrequency = "monthly"   // aylık
	ExpenseFrequencyQuarterly ExpenseFrequency = "quarterly" // üç aylık
	ExpenseFrequencyYearly    ExpenseFrequency = "yearly"    // yıllık
)

// Expense - Mülk gideri. Tek seferlik giderler sadece kendi ayında,
// periyodik giderler end_date'e kadar (yoksa süresiz) her dönemde sayılır.
type Expense struct {
	ID         uint     `gorm:"primaryKey"`
	LandlordID uint     `gorm:"index;not null"`
	Landlord   User     `gorm:"foreignKey:LandlordID"`
	PropertyID uint     `gorm:"index;not null"`
	Property   Property `gorm:"foreignKey:PropertyID"`

	Category    string           `gorm:"size:100;not null;index"` // sigorta / aidat / bakım / vergi vs.
	Amount      float64          `gorm:"not null"`
	Frequency   ExpenseFrequency `gorm:"size:20;not null;default:'one-off'"`
	ExpenseDate time.Time        `gorm:"index;not null"` // tek seferlikte gider tarihi, periyodikte başlangıç
	EndDate     *time.Time       // periyodik giderin bitişi (opsiyonel)
	Description string           `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
