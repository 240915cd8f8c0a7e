package rent

import (
	"testing"

	"kira-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeCollection(t *testing.T) {
	payments := []models.RentPayment{
		{Status: models.RentPaymentStatusPaid, AmountDue: 1000, AmountPaid: 1000},
		{Status: models.RentPaymentStatusPaid, AmountDue: 800, AmountPaid: 750}, // indirimli tahsilat
		{Status: models.RentPaymentStatusPending, AmountDue: 1200},
		{Status: models.RentPaymentStatusLate, AmountDue: 900, AmountPaid: 300}, // kısmi ödeme
		{Status: models.RentPaymentStatusMissed, AmountDue: 500},
	}

	s := SummarizeCollection(payments)

	assert.Equal(t, 1750.0, s.TotalReceived)
	assert.Equal(t, 1200.0, s.TotalPending)
	assert.Equal(t, 600.0, s.TotalLate) // kalan borç, ödenen düşülür
	assert.Equal(t, 500.0, s.TotalMissed)
	assert.Equal(t, 4400.0, s.TotalExpected)
	// 1750 / 4400 = %39.77 -> 40
	assert.Equal(t, 40, s.CollectionRate)
}

func TestSummarizeCollectionEmpty(t *testing.T) {
	s := SummarizeCollection(nil)

	assert.Equal(t, 0.0, s.TotalExpected)
	// beklenen 0 iken oran da 0, sıfıra bölme yok
	assert.Equal(t, 0, s.CollectionRate)
}

func TestSummarizeCollectionFullCollection(t *testing.T) {
	payments := []models.RentPayment{
		{Status: models.RentPaymentStatusPaid, AmountDue: 1000, AmountPaid: 1000},
		{Status: models.RentPaymentStatusPaid, AmountDue: 2000, AmountPaid: 2000},
	}

	s := SummarizeCollection(payments)
	assert.Equal(t, 100, s.CollectionRate)
}
