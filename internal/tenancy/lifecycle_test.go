package tenancy

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

func TestDeriveStatus(t *testing.T) {
	today := date(2025, time.June, 15)

	t.Run("başlangıç gelecekte ise pending", func(t *testing.T) {
		got := DeriveStatus(date(2025, time.June, 16), nil, today)
		assert.Equal(t, models.TenancyStatusPending, got)
	})

	t.Run("başlangıç bugünse aktif", func(t *testing.T) {
		got := DeriveStatus(date(2025, time.June, 15), nil, today)
		assert.Equal(t, models.TenancyStatusActive, got)
	})

	t.Run("bitiş bugünse hala aktif", func(t *testing.T) {
		end := date(2025, time.June, 15)
		got := DeriveStatus(date(2025, time.January, 1), &end, today)
		assert.Equal(t, models.TenancyStatusActive, got)
	})

	t.Run("bitiş dün ise ended", func(t *testing.T) {
		end := date(2025, time.June, 14)
		got := DeriveStatus(date(2025, time.January, 1), &end, today)
		assert.Equal(t, models.TenancyStatusEnded, got)
	})

	t.Run("bitişsiz sözleşme süresiz aktif", func(t *testing.T) {
		got := DeriveStatus(date(2020, time.January, 1), nil, today)
		assert.Equal(t, models.TenancyStatusActive, got)
	})

	t.Run("saat bileşeni sonucu değiştirmez", func(t *testing.T) {
		lateToday := time.Date(2025, time.June, 15, 23, 59, 0, 0, time.UTC)
		got := DeriveStatus(date(2025, time.June, 15), nil, lateToday)
		assert.Equal(t, models.TenancyStatusActive, got)
	})
}

func TestRecomputeStatuses(t *testing.T) {
	db := setupTestDB(t)
	today := date(2025, time.June, 15)

	end1 := date(2025, time.June, 14)
	end2 := date(2025, time.June, 15)

	tenancies := []models.Tenancy{
		// yanlış saklanmış durumlar, recompute düzeltmeli
		{LandlordID: 1, PropertyID: 1, StartDate: date(2025, time.July, 1), RentAmount: 1000, RentDueDay: 1, Status: models.TenancyStatusActive},
		{LandlordID: 1, PropertyID: 1, StartDate: date(2025, time.January, 1), EndDate: &end1, RentAmount: 1000, RentDueDay: 1, Status: models.TenancyStatusActive},
		{LandlordID: 1, PropertyID: 1, StartDate: date(2025, time.January, 1), EndDate: &end2, RentAmount: 1000, RentDueDay: 1, Status: models.TenancyStatusPending},
		// başka mülk sahibi, dokunulmamalı
		{LandlordID: 2, PropertyID: 2, StartDate: date(2025, time.July, 1), RentAmount: 900, RentDueDay: 1, Status: models.TenancyStatusActive},
	}
	for i := range tenancies {
		require.NoError(t, db.Create(&tenancies[i]).Error)
	}

	require.NoError(t, RecomputeStatuses(1, today))

	var got []models.Tenancy
	require.NoError(t, db.Where("landlord_id = ?", 1).Order("id asc").Find(&got).Error)
	require.Len(t, got, 3)
	assert.Equal(t, models.TenancyStatusPending, got[0].Status)
	assert.Equal(t, models.TenancyStatusEnded, got[1].Status)
	assert.Equal(t, models.TenancyStatusActive, got[2].Status) // bitiş bugün, dahil

	var other models.Tenancy
	require.NoError(t, db.Where("landlord_id = ?", 2).First(&other).Error)
	assert.Equal(t, models.TenancyStatusActive, other.Status)
}

func TestRecomputeStatusesIdempotent(t *testing.T) {
	db := setupTestDB(t)
	today := date(2025, time.June, 15)

	tn := models.Tenancy{
		LandlordID: 1, PropertyID: 1,
		StartDate:  date(2025, time.January, 1),
		RentAmount: 1000, RentDueDay: 1,
		Status: models.TenancyStatusPending,
	}
	require.NoError(t, db.Create(&tn).Error)

	require.NoError(t, RecomputeStatuses(1, today))

	var first models.Tenancy
	require.NoError(t, db.First(&first, tn.ID).Error)
	assert.Equal(t, models.TenancyStatusActive, first.Status)

	// durum zaten doğru; ikinci çağrı hiçbir satıra yazmamalı
	require.NoError(t, RecomputeStatuses(1, today))

	var second models.Tenancy
	require.NoError(t, db.First(&second, tn.ID).Error)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestRecomputeStatusesSkipsSoftDeleted(t *testing.T) {
	db := setupTestDB(t)
	today := date(2025, time.June, 15)

	tn := models.Tenancy{
		LandlordID: 1, PropertyID: 1,
		StartDate:  date(2025, time.January, 1),
		RentAmount: 1000, RentDueDay: 1,
		Status: models.TenancyStatusPending,
	}
	require.NoError(t, db.Create(&tn).Error)
	require.NoError(t, db.Delete(&tn).Error)

	require.NoError(t, RecomputeStatuses(1, today))

	var got models.Tenancy
	require.NoError(t, db.Unscoped().First(&got, tn.ID).Error)
	assert.Equal(t, models.TenancyStatusPending, got.Status)
}
