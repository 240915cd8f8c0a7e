package rent

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
		&models.Tenant{},
		&models.Tenancy{},
		&models.TenancyTenant{},
		&models.RentPayment{},
	))

	database.DB = db
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDueDateInMonth(t *testing.T) {
	t.Run("normal gün", func(t *testing.T) {
		got := dueDateInMonth(2025, time.January, 15, time.UTC)
		assert.Equal(t, date(2025, time.January, 15), got)
	})

	t.Run("31 nisan yok, ayın son gününe sabitlenir", func(t *testing.T) {
		got := dueDateInMonth(2025, time.April, 31, time.UTC)
		assert.Equal(t, date(2025, time.April, 30), got)
	})

	t.Run("şubat artık yıl", func(t *testing.T) {
		got := dueDateInMonth(2024, time.February, 30, time.UTC)
		assert.Equal(t, date(2024, time.February, 29), got)
	})

	t.Run("şubat normal yıl", func(t *testing.T) {
		got := dueDateInMonth(2025, time.February, 31, time.UTC)
		assert.Equal(t, date(2025, time.February, 28), got)
	})
}

func TestMaterializeMonth(t *testing.T) {
	db := setupTestDB(t)
	today := date(2025, time.January, 20)

	tn := models.Tenancy{
		LandlordID: 1, PropertyID: 1,
		StartDate:  date(2025, time.January, 10),
		RentAmount: 1500, RentDueDay: 15,
		Status: models.TenancyStatusActive,
	}
	require.NoError(t, db.Create(&tn).Error)

	res, err := MaterializeMonth(1, 2025, time.January, today)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.AlreadyCovered)

	var payments []models.RentPayment
	require.NoError(t, db.Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, date(2025, time.January, 15), payments[0].DueDate)
	assert.Equal(t, 1500.0, payments[0].AmountDue)
	// vade bugünden önce, vadesi geçmiş sayılır
	assert.Equal(t, models.RentPaymentStatusLate, payments[0].Status)
}

func TestMaterializeMonthIdempotent(t *testing.T) {
	db := setupTestDB(t)
	today := date(2025, time.January, 5)

	tn := models.Tenancy{
		LandlordID: 1, PropertyID: 1,
		StartDate:  date(2024, time.June, 1),
		RentAmount: 1200, RentDueDay: 1,
		Status: models.TenancyStatusActive,
	}
	require.NoError(t, db.Create(&tn).Error)

	first, err := MaterializeMonth(1, 2025, time.January, today)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	// ikinci çağrı yeni kayıt üretmemeli
	second, err := MaterializeMonth(1, 2025, time.January, today)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.AlreadyCovered)

	var count int64
	db.Model(&models.RentPayment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMaterializeMonthSkipsInactive(t *testing.T) {
	db := setupTestDB(t)
	today := date(2025, time.January, 20)

	end := date(2024, time.December, 31)
	tenancies := []models.Tenancy{
		// henüz başlamamış
		{LandlordID: 1, PropertyID: 1, StartDate: date(2025, time.March, 1), RentAmount: 1000, RentDueDay: 1, Status: models.TenancyStatusPending},
		// bitmiş
		{LandlordID: 1, PropertyID: 1, StartDate: date(2024, time.January, 1), EndDate: &end, RentAmount: 1000, RentDueDay: 1, Status: models.TenancyStatusEnded},
	}
	for i := range tenancies {
		require.NoError(t, db.Create(&tenancies[i]).Error)
	}

	res, err := MaterializeMonth(1, 2025, time.January, today)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 0, res.TotalTenancies)
}

func TestMaterializeMonthStatusPendingWhenDueAhead(t *testing.T) {
	db := setupTestDB(t)
	today := date(2025, time.January, 5)

	tn := models.Tenancy{
		LandlordID: 1, PropertyID: 1,
		StartDate:  date(2024, time.June, 1),
		RentAmount: 1200, RentDueDay: 20,
		Status: models.TenancyStatusActive,
	}
	require.NoError(t, db.Create(&tn).Error)

	_, err := MaterializeMonth(1, 2025, time.January, today)
	require.NoError(t, err)

	var p models.RentPayment
	require.NoError(t, db.First(&p).Error)
	assert.Equal(t, models.RentPaymentStatusPending, p.Status)
}

func TestGenerateForTenancy(t *testing.T) {
	db := setupTestDB(t)
	today := date(2025, time.January, 20)

	tn := models.Tenancy{
		LandlordID: 1, PropertyID: 1,
		StartDate:  date(2025, time.January, 10),
		RentAmount: 1500, RentDueDay: 15,
		Status: models.TenancyStatusActive,
	}
	require.NoError(t, db.Create(&tn).Error)

	res, err := GenerateForTenancy(tn.ID, 1, today)
	require.NoError(t, err)
	// ocak + şubat + mart
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 0, res.Skipped)

	var payments []models.RentPayment
	require.NoError(t, db.Order("due_date asc").Find(&payments).Error)
	require.Len(t, payments, 3)
	assert.Equal(t, date(2025, time.January, 15), payments[0].DueDate)
	assert.Equal(t, date(2025, time.February, 15), payments[1].DueDate)
	assert.Equal(t, date(2025, time.March, 15), payments[2].DueDate)
	assert.Equal(t, models.RentPaymentStatusLate, payments[0].Status)
	assert.Equal(t, models.RentPaymentStatusPending, payments[1].Status)
}

func TestGenerateForTenancySkipsOutsideWindow(t *testing.T) {
	db := setupTestDB(t)
	today := date(2025, time.January, 5)

	// başlangıç ayın 20'si, ocak vadesi (15'i) pencere dışı
	end := date(2025, time.February, 28)
	tn := models.Tenancy{
		LandlordID: 1, PropertyID: 1,
		StartDate:  date(2025, time.January, 20),
		EndDate:    &end,
		RentAmount: 1500, RentDueDay: 15,
		Status: models.TenancyStatusPending,
	}
	require.NoError(t, db.Create(&tn).Error)

	res, err := GenerateForTenancy(tn.ID, 1, today)
	require.NoError(t, err)
	// ocak: vade başlangıçtan önce, atla; şubat: üret; mart: vade bitişten sonra, atla
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 2, res.Skipped)

	var p models.RentPayment
	require.NoError(t, db.First(&p).Error)
	assert.Equal(t, date(2025, time.February, 15), p.DueDate)
}

func TestGenerateForTenancyNotFound(t *testing.T) {
	setupTestDB(t)

	_, err := GenerateForTenancy(999, 1, date(2025, time.January, 5))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
