package booking

import (
	"testing"
	"time"

	"kira-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNights(t *testing.T) {
	checkIn := time.Date(2025, time.July, 10, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, time.July, 13, 11, 0, 0, 0, time.UTC)

	// 2 gün 20 saat -> 3 gece
	assert.Equal(t, 3, Nights(checkIn, checkOut))

	// tam gün farkı
	assert.Equal(t, 2, Nights(
		time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC),
	))

	// ters sıra da pozitif döner
	assert.Equal(t, 3, Nights(checkOut, checkIn))
}

func TestCalculateFinancialsManagedSA(t *testing.T) {
	p := &models.Property{
		Category:             models.PropertyCategorySA,
		IsManaged:            true,
		ManagementFeePercent: 18,
		FixedCleaningFee:     85,
	}
	b := &models.Booking{
		CheckIn:           time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:          time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC),
		NightlyRate:       200,
		GrossBookingValue: 1000,
		PlatformFee:       0,
		CleaningFee:       285,
	}

	CalculateFinancials(b, p)

	assert.Equal(t, 1000.0, b.NetRevenue)
	// komisyon temizlik düşüldükten sonra hesaplanır: (1000 - 285) * %18
	assert.Equal(t, 128.70, b.PMFeeAmount)
	assert.Equal(t, 413.70, b.TotalPMDeduction)
}

func TestCalculateFinancialsGrossFromNights(t *testing.T) {
	p := &models.Property{Category: models.PropertyCategoryBTR}
	b := &models.Booking{
		CheckIn:     time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC),
		NightlyRate: 150,
		PlatformFee: 45,
	}

	CalculateFinancials(b, p)

	// brüt boş: 4 gece * 150
	assert.Equal(t, 600.0, b.GrossBookingValue)
	assert.Equal(t, 555.0, b.NetRevenue)
	// yönetimde olmayan mülkte kesinti yok
	assert.Equal(t, 0.0, b.PMFeeAmount)
	assert.Equal(t, 0.0, b.TotalPMDeduction)
}

func TestCalculateFinancialsCleaningFeeDefault(t *testing.T) {
	p := &models.Property{
		Category:             models.PropertyCategorySA,
		IsManaged:            true,
		ManagementFeePercent: 15,
		FixedCleaningFee:     60,
	}
	b := &models.Booking{
		CheckIn:           time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:          time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC),
		GrossBookingValue: 460,
	}

	CalculateFinancials(b, p)

	// temizlik girilmediyse mülkün sabit ücreti kullanılır
	assert.Equal(t, 60.0, b.CleaningFee)
	// (460 - 60) * %15 = 60
	assert.Equal(t, 60.0, b.PMFeeAmount)
	assert.Equal(t, 120.0, b.TotalPMDeduction)
}

func TestCalculateFinancialsUnmanagedSA(t *testing.T) {
	p := &models.Property{
		Category:             models.PropertyCategorySA,
		IsManaged:            false,
		ManagementFeePercent: 18,
	}
	b := &models.Booking{
		CheckIn:           time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:          time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC),
		GrossBookingValue: 500,
		CleaningFee:       50,
	}

	CalculateFinancials(b, p)

	assert.Equal(t, 500.0, b.NetRevenue)
	assert.Equal(t, 0.0, b.PMFeeAmount)
	assert.Equal(t, 0.0, b.TotalPMDeduction)
}
