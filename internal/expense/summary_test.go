package expense

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
		&models.Expense{},
	))

	database.DB = db
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountsInMonth(t *testing.T) {
	t.Run("tek seferlik sadece kendi ayında", func(t *testing.T) {
		e := models.Expense{
			Frequency:   models.ExpenseFrequencyOneOff,
			ExpenseDate: date(2025, time.March, 10),
			Amount:      50,
		}
		assert.True(t, countsInMonth(e, 2025, time.March))
		assert.False(t, countsInMonth(e, 2025, time.February))
		assert.False(t, countsInMonth(e, 2025, time.April))
		assert.False(t, countsInMonth(e, 2024, time.March))
	})

	t.Run("bitişsiz periyodik her ay sayılır", func(t *testing.T) {
		e := models.Expense{
			Frequency:   models.ExpenseFrequencyMonthly,
			ExpenseDate: date(2025, time.January, 1),
			Amount:      100,
		}
		assert.True(t, countsInMonth(e, 2025, time.January))
		assert.True(t, countsInMonth(e, 2026, time.December))
	})

	t.Run("bitiş ayın 15'i ile karşılaştırılır", func(t *testing.T) {
		end := date(2025, time.June, 30)
		e := models.Expense{
			Frequency:   models.ExpenseFrequencyMonthly,
			ExpenseDate: date(2025, time.January, 1),
			EndDate:     &end,
			Amount:      100,
		}
		// haziran sonunda bitiyor: haziranın tamamı sayılır
		assert.True(t, countsInMonth(e, 2025, time.June))
		assert.False(t, countsInMonth(e, 2025, time.July))

		// bitiş ayın 15'inden önce kalırsa o ay sayılmaz
		earlyEnd := date(2025, time.June, 10)
		e.EndDate = &earlyEnd
		assert.False(t, countsInMonth(e, 2025, time.June))
		assert.True(t, countsInMonth(e, 2025, time.May))
	})
}

func TestSummarizeExpenses(t *testing.T) {
	db := setupTestDB(t)

	expenses := []models.Expense{
		{LandlordID: 1, PropertyID: 1, Category: "bakım", Amount: 50, Frequency: models.ExpenseFrequencyOneOff, ExpenseDate: date(2025, time.March, 10)},
		{LandlordID: 1, PropertyID: 1, Category: "sigorta", Amount: 100, Frequency: models.ExpenseFrequencyMonthly, ExpenseDate: date(2025, time.January, 1)},
		// başka mülk, sayılmamalı
		{LandlordID: 1, PropertyID: 2, Category: "aidat", Amount: 75, Frequency: models.ExpenseFrequencyMonthly, ExpenseDate: date(2025, time.January, 1)},
	}
	for i := range expenses {
		require.NoError(t, db.Create(&expenses[i]).Error)
	}

	s, err := SummarizeExpenses(1, 1, 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, 50.0, s.OneOff)
	assert.Equal(t, 100.0, s.MonthlyRecurring)
	assert.Equal(t, 150.0, s.TotalThisMonth)
	assert.Equal(t, 50.0, s.ByCategory["bakım"])
	assert.Equal(t, 100.0, s.ByCategory["sigorta"])

	// nisan: tek seferlik düşer
	s, err = SummarizeExpenses(1, 1, 2025, time.April)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.OneOff)
	assert.Equal(t, 100.0, s.TotalThisMonth)
}

func TestRollupIncludesQuarterly(t *testing.T) {
	loc := time.UTC
	e := models.Expense{
		Frequency:   models.ExpenseFrequencyQuarterly,
		ExpenseDate: date(2025, time.February, 1),
		Amount:      300,
	}

	// çeyrek döngüsü: şubat + mayıs + ağustos
	assert.True(t, rollupIncludes(e, 2025, time.February, loc))
	assert.True(t, rollupIncludes(e, 2025, time.May, loc))
	assert.True(t, rollupIncludes(e, 2025, time.August, loc))
	assert.False(t, rollupIncludes(e, 2025, time.November, loc))
	assert.False(t, rollupIncludes(e, 2025, time.March, loc))

	// yıl taşması: kasım başlangıçlı döngü şubata sarar
	e.ExpenseDate = date(2024, time.November, 1)
	assert.True(t, rollupIncludes(e, 2025, time.February, loc))
	assert.True(t, rollupIncludes(e, 2025, time.May, loc))
	assert.False(t, rollupIncludes(e, 2025, time.August, loc))
}

func TestRollupIncludesYearly(t *testing.T) {
	loc := time.UTC
	e := models.Expense{
		Frequency:   models.ExpenseFrequencyYearly,
		ExpenseDate: date(2024, time.September, 1),
		Amount:      1200,
	}

	assert.True(t, rollupIncludes(e, 2025, time.September, loc))
	assert.False(t, rollupIncludes(e, 2025, time.August, loc))
	// gider başlamadan önceki aylar sayılmaz
	assert.False(t, rollupIncludes(e, 2024, time.August, loc))
}

func TestRollupMonth(t *testing.T) {
	db := setupTestDB(t)

	end := date(2025, time.February, 28)
	expenses := []models.Expense{
		{LandlordID: 1, PropertyID: 1, Category: "sigorta", Amount: 100, Frequency: models.ExpenseFrequencyMonthly, ExpenseDate: date(2025, time.January, 1)},
		{LandlordID: 1, PropertyID: 2, Category: "sigorta", Amount: 150, Frequency: models.ExpenseFrequencyMonthly, ExpenseDate: date(2025, time.January, 1)},
		{LandlordID: 1, PropertyID: 1, Category: "bakım", Amount: 50, Frequency: models.ExpenseFrequencyOneOff, ExpenseDate: date(2025, time.March, 10)},
		// şubatta bitti, martta görünmemeli
		{LandlordID: 1, PropertyID: 1, Category: "aidat", Amount: 80, Frequency: models.ExpenseFrequencyMonthly, ExpenseDate: date(2025, time.January, 1), EndDate: &end},
		// başka mülk sahibi
		{LandlordID: 2, PropertyID: 3, Category: "sigorta", Amount: 999, Frequency: models.ExpenseFrequencyMonthly, ExpenseDate: date(2025, time.January, 1)},
	}
	for i := range expenses {
		require.NoError(t, db.Create(&expenses[i]).Error)
	}

	r, err := RollupMonth(1, 2025, time.March)
	require.NoError(t, err)

	require.Len(t, r.Items, 3)
	assert.Equal(t, 250.0, r.RecurringTotal)
	assert.Equal(t, 50.0, r.OneOffTotal)
	assert.Equal(t, 300.0, r.GrandTotal)

	// kategori artan, tutar azalan
	assert.Equal(t, "bakım", r.Items[0].Category)
	assert.Equal(t, "sigorta", r.Items[1].Category)
	assert.Equal(t, 150.0, r.Items[1].Amount)
	assert.Equal(t, 100.0, r.Items[2].Amount)
}
