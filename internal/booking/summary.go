package booking

import (
	"fmt"
	"time"

	"kira-backend/internal/database"
	"kira-backend/internal/models"
)

type PMSummary struct {
	TotalNetRevenue  float64 `json:"total_net_revenue"`
	TotalCleaningFee float64 `json:"total_cleaning_fees"`
	TotalPMFees      float64 `json:"total_pm_fees"`
	TotalPMDeduction float64 `json:"total_pm_deduction"`
	AlreadyPaid      float64 `json:"already_paid"`
	RemainingToPay   float64 `json:"remaining_to_pay"`
}

// SummarizePMPayments - Bir mülkün hedef aydaki yönetici kesintisi özeti.
// İptal edilen rezervasyonlar sayılmaz; kalan borç = toplam kesinti - ödenen kesinti.
func SummarizePMPayments(propertyID uint, year int, month time.Month) (*PMSummary, error) {
	loc := time.Now().Location()
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var bookings []models.Booking
	if err := database.DB.
		Where("property_id = ? AND payment_status <> ? AND check_in >= ? AND check_in < ?",
			propertyID, models.BookingPaymentCancelled, monthStart, nextMonth).
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("rezervasyonlar listelenemedi: %w", err)
	}

	s := &PMSummary{}

	for _, b := range bookings {
		s.TotalNetRevenue += b.NetRevenue
		s.TotalCleaningFee += b.CleaningFee
		s.TotalPMFees += b.PMFeeAmount
		s.TotalPMDeduction += b.TotalPMDeduction

		if b.PMPaymentStatus == models.PMPaymentPaid {
			s.AlreadyPaid += b.TotalPMDeduction
		}
	}

	s.RemainingToPay = s.TotalPMDeduction - s.AlreadyPaid
	return s, nil
}
