package booking

import (
	"testing"
	"time"

	"kira-backend/internal/database"
	"kira-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Booking{},
	))

	database.DB = db
	return db
}

func TestSummarizePMPayments(t *testing.T) {
	db := setupTestDB(t)
	loc := time.Now().Location()
	day := func(d int) time.Time { return time.Date(2025, time.June, d, 0, 0, 0, 0, loc) }

	bookings := []models.Booking{
		// kesintisi ödenmiş
		{LandlordID: 1, PropertyID: 1, CheckIn: day(3), CheckOut: day(7),
			NetRevenue: 1000, CleaningFee: 285, PMFeeAmount: 128.70, TotalPMDeduction: 413.70,
			PaymentStatus: models.BookingPaymentPaid, PMPaymentStatus: models.PMPaymentPaid},
		// kesintisi bekleyen
		{LandlordID: 1, PropertyID: 1, CheckIn: day(12), CheckOut: day(15),
			NetRevenue: 600, CleaningFee: 85, PMFeeAmount: 92.70, TotalPMDeduction: 177.70,
			PaymentStatus: models.BookingPaymentPending, PMPaymentStatus: models.PMPaymentPending},
		// iptal: hiçbir toplama girmemeli
		{LandlordID: 1, PropertyID: 1, CheckIn: day(20), CheckOut: day(23),
			NetRevenue: 900, CleaningFee: 85, PMFeeAmount: 146.70, TotalPMDeduction: 231.70,
			PaymentStatus: models.BookingPaymentCancelled, PMPaymentStatus: models.PMPaymentPending},
		// başka ay: pencere dışı
		{LandlordID: 1, PropertyID: 1, CheckIn: time.Date(2025, time.July, 2, 0, 0, 0, 0, loc),
			CheckOut: time.Date(2025, time.July, 5, 0, 0, 0, 0, loc),
			NetRevenue: 500, CleaningFee: 85, PMFeeAmount: 62.25, TotalPMDeduction: 147.25,
			PaymentStatus: models.BookingPaymentPaid, PMPaymentStatus: models.PMPaymentPaid},
		// başka mülk
		{LandlordID: 1, PropertyID: 2, CheckIn: day(5), CheckOut: day(8),
			NetRevenue: 700, CleaningFee: 60, PMFeeAmount: 96, TotalPMDeduction: 156,
			PaymentStatus: models.BookingPaymentPaid, PMPaymentStatus: models.PMPaymentPending},
	}
	for i := range bookings {
		require.NoError(t, db.Create(&bookings[i]).Error)
	}

	s, err := SummarizePMPayments(1, 2025, time.June)
	require.NoError(t, err)

	assert.Equal(t, 1600.0, s.TotalNetRevenue)
	assert.Equal(t, 370.0, s.TotalCleaningFee)
	assert.InDelta(t, 221.40, s.TotalPMFees, 0.001)
	assert.InDelta(t, 591.40, s.TotalPMDeduction, 0.001)
	// ödenen sadece pm_payment_status=paid olan rezervasyonun kesintisi
	assert.InDelta(t, 413.70, s.AlreadyPaid, 0.001)
	assert.InDelta(t, 177.70, s.RemainingToPay, 0.001)
}

func TestSummarizePMPaymentsEmptyMonth(t *testing.T) {
	setupTestDB(t)

	s, err := SummarizePMPayments(1, 2025, time.January)
	require.NoError(t, err)

	assert.Equal(t, 0.0, s.TotalPMDeduction)
	assert.Equal(t, 0.0, s.AlreadyPaid)
	assert.Equal(t, 0.0, s.RemainingToPay)
}
