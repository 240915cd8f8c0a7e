package financial

import (
	"fmt"
	"log"
	"time"

	"kira-backend/internal/auth"
	"kira-backend/internal/database"
	"kira-backend/internal/expense"
	"kira-backend/internal/models"
	"kira-backend/internal/tenancy"

	"github.com/gofiber/fiber/v2"
)

type RentIncomeBlock struct {
	Received float64 `json:"received"` // ay içinde tahsil edilen
	Expected float64 `json:"expected"` // ayın vadeli toplamı
	Pending  float64 `json:"pending"`
	Late     float64 `json:"late"`
	Missed   float64 `json:"missed"`
}

type BookingIncomeBlock struct {
	BookingCount int     `json:"booking_count"`
	GrossValue   float64 `json:"gross_value"`
	NetRevenue   float64 `json:"net_revenue"`
	PMDeductions float64 `json:"pm_deductions"`
}

type ExpenseOutBlock struct {
	RecurringTotal float64 `json:"recurring_total"`
	OneOffTotal    float64 `json:"one_off_total"`
	Total          float64 `json:"total"`
}

type MonthlyFinancialSummaryResponse struct {
	LandlordID  uint               `json:"landlord_id"`
	Year        int                `json:"year"`
	Month       int                `json:"month"`
	Rent        RentIncomeBlock    `json:"rent"`
	Bookings    BookingIncomeBlock `json:"bookings"`
	Expenses    ExpenseOutBlock    `json:"expenses"`
	TotalIncome float64            `json:"total_income"`
	NetPosition float64            `json:"net_position"`
}

// -----------------------------------
// Yardımcı: landlord_id'yi çöz
// -----------------------------------

func resolveLandlordIDFromQueryOrRole(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleLandlord {
		lVal := c.Locals(auth.CtxLandlordIDKey)
		lPtr, ok := lVal.(*uint)
		if !ok || lPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Mülk sahibi bilgisi bulunamadı")
		}
		return *lPtr, nil
	}

	// admin
	lidStr := c.Query("landlord_id")
	if lidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "landlord_id zorunlu")
	}
	var lid uint
	if _, err := fmt.Sscan(lidStr, &lid); err != nil || lid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "landlord_id geçersiz")
	}
	return lid, nil
}

// -----------------------------------
// GET /api/financial-summary/monthly
// ?year=2025&month=12[&landlord_id=1]
// -----------------------------------
func MonthlyFinancialSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr == "" || monthStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "year ve month zorunlu")
		}

		var year, month int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}
		if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
		}

		if err := tenancy.RecomputeStatuses(landlordID, time.Now()); err != nil {
			log.Printf("Sözleşme durumları tazelenemedi (landlord %d): %v", landlordID, err)
		}

		loc := time.Now().Location()
		monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		nextMonth := monthStart.AddDate(0, 1, 0)

		// ---------------------------
		// 1) Kira tahsilatı (rent_payments, vadesi bu ayda olanlar)
		// ---------------------------

		var payments []models.RentPayment
		if err := database.DB.
			Where("landlord_id = ? AND due_date >= ? AND due_date < ?", landlordID, monthStart, nextMonth).
			Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kira tahsilatı hesaplanamadı")
		}

		rentBlock := RentIncomeBlock{}
		for _, p := range payments {
			rentBlock.Expected += p.AmountDue
			switch p.Status {
			case models.RentPaymentStatusPaid:
				rentBlock.Received += p.AmountPaid
			case models.RentPaymentStatusPending:
				rentBlock.Pending += p.AmountDue
			case models.RentPaymentStatusLate:
				rentBlock.Late += p.AmountDue - p.AmountPaid
			case models.RentPaymentStatusMissed:
				rentBlock.Missed += p.AmountDue
			}
		}

		// ---------------------------
		// 2) Kısa dönem kiralama geliri
		//    (check-in bu ayda olan, iptal edilmemiş rezervasyonlar)
		// ---------------------------

		var bookings []models.Booking
		if err := database.DB.
			Where("landlord_id = ? AND check_in >= ? AND check_in < ? AND payment_status <> ?",
				landlordID, monthStart, nextMonth, models.BookingPaymentCancelled).
			Find(&bookings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon geliri hesaplanamadı")
		}

		bookingBlock := BookingIncomeBlock{BookingCount: len(bookings)}
		for _, b := range bookings {
			bookingBlock.GrossValue += b.GrossBookingValue
			bookingBlock.NetRevenue += b.NetRevenue
			bookingBlock.PMDeductions += b.TotalPMDeduction
		}

		// ---------------------------
		// 3) Giderler (periyodikler dahil aylık toplam)
		// ---------------------------

		rollup, err := expense.RollupMonth(landlordID, year, time.Month(month))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler hesaplanamadı")
		}

		expenseBlock := ExpenseOutBlock{
			RecurringTotal: rollup.RecurringTotal,
			OneOffTotal:    rollup.OneOffTotal,
			Total:          rollup.GrandTotal,
		}

		totalIncome := rentBlock.Received + bookingBlock.NetRevenue
		netPosition := totalIncome - expenseBlock.Total - bookingBlock.PMDeductions

		resp := MonthlyFinancialSummaryResponse{
			LandlordID:  landlordID,
			Year:        year,
			Month:       month,
			Rent:        rentBlock,
			Bookings:    bookingBlock,
			Expenses:    expenseBlock,
			TotalIncome: totalIncome,
			NetPosition: netPosition,
		}

		return c.JSON(resp)
	}
}
