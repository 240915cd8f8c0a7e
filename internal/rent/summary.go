package rent

import (
	"math"

	"kira-backend/internal/models"
)

type CollectionSummary struct {
	TotalReceived  float64 `json:"total_received"`
	TotalPending   float64 `json:"total_pending"`
	TotalLate      float64 `json:"total_late"`
	TotalMissed    float64 `json:"total_missed"`
	TotalExpected  float64 `json:"total_expected"`
	CollectionRate int     `json:"collection_rate"` // yüzde (0-100)
}

// SummarizeCollection - Kira kayıtlarını duruma göre topla.
// late için kalan borç (amount_due - amount_paid) sayılır, kısmi ödemeler düşülür.
// Beklenen tutar 0 ise tahsilat oranı 0 döner (sıfıra bölme yok).
func SummarizeCollection(payments []models.RentPayment) CollectionSummary {
	var s CollectionSummary

	for _, p := range payments {
		s.TotalExpected += p.AmountDue

		switch p.Status {
		case models.RentPaymentStatusPaid:
			s.TotalReceived += p.AmountPaid
		case models.RentPaymentStatusPending:
			s.TotalPending += p.AmountDue
		case models.RentPaymentStatusLate:
			s.TotalLate += p.AmountDue - p.AmountPaid
		case models.RentPaymentStatusMissed:
			s.TotalMissed += p.AmountDue
		}
	}

	if s.TotalExpected > 0 {
		s.CollectionRate = int(math.Round(s.TotalReceived / s.TotalExpected * 100))
	}

	return s
}
