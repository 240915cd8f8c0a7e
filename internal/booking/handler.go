package booking

import (
	"errors"
	"fmt"
	"time"

	"kira-backend/internal/audit"
	"kira-backend/internal/auth"
	"kira-backend/internal/database"
	"kira-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateBookingRequest struct {
	PropertyID        uint    `json:"property_id"`
	GuestName         string  `json:"guest_name"`
	Channel           string  `json:"channel"`
	CheckIn           string  `json:"check_in"`  // "2025-06-10"
	CheckOut          string  `json:"check_out"` // "2025-06-14"
	NightlyRate       float64 `json:"nightly_rate"`
	GrossBookingValue float64 `json:"gross_booking_value"` // boşsa hesaplanır
	PlatformFee       float64 `json:"platform_fee"`
	CleaningFee       float64 `json:"cleaning_fee"` // boşsa mülkün sabit ücreti
	Notes             string  `json:"notes"`
	LandlordID        *uint   `json:"landlord_id"` // admin için opsiyonel
}

type UpdateBookingRequest struct {
	GuestName         *string  `json:"guest_name"`
	Channel           *string  `json:"channel"`
	CheckIn           *string  `json:"check_in"`
	CheckOut          *string  `json:"check_out"`
	NightlyRate       *float64 `json:"nightly_rate"`
	GrossBookingValue *float64 `json:"gross_booking_value"`
	PlatformFee       *float64 `json:"platform_fee"`
	CleaningFee       *float64 `json:"cleaning_fee"`
	PaymentStatus     *string  `json:"payment_status"`
	Notes             *string  `json:"notes"`
}

type BookingResponse struct {
	ID                uint    `json:"id"`
	PropertyID        uint    `json:"property_id"`
	GuestName         string  `json:"guest_name"`
	Channel           string  `json:"channel"`
	CheckIn           string  `json:"check_in"`
	CheckOut          string  `json:"check_out"`
	Nights            int     `json:"nights"`
	NightlyRate       float64 `json:"nightly_rate"`
	GrossBookingValue float64 `json:"gross_booking_value"`
	PlatformFee       float64 `json:"platform_fee"`
	NetRevenue        float64 `json:"net_revenue"`
	CleaningFee       float64 `json:"cleaning_fee"`
	PMFeeAmount       float64 `json:"pm_fee_amount"`
	TotalPMDeduction  float64 `json:"total_pm_deduction"`
	PaymentStatus     string  `json:"payment_status"`
	PMPaymentStatus   string  `json:"pm_payment_status"`
	Notes             string  `json:"notes"`
}

func toResponse(b models.Booking) BookingResponse {
	return BookingResponse{
		ID:                b.ID,
		PropertyID:        b.PropertyID,
		GuestName:         b.GuestName,
		Channel:           b.Channel,
		CheckIn:           b.CheckIn.Format("2006-01-02"),
		CheckOut:          b.CheckOut.Format("2006-01-02"),
		Nights:            Nights(b.CheckIn, b.CheckOut),
		NightlyRate:       b.NightlyRate,
		GrossBookingValue: b.GrossBookingValue,
		PlatformFee:       b.PlatformFee,
		NetRevenue:        b.NetRevenue,
		CleaningFee:       b.CleaningFee,
		PMFeeAmount:       b.PMFeeAmount,
		TotalPMDeduction:  b.TotalPMDeduction,
		PaymentStatus:     string(b.PaymentStatus),
		PMPaymentStatus:   string(b.PMPaymentStatus),
		Notes:             b.Notes,
	}
}

// -------------------------
// Yardımcı: Kullanıcı bilgilerini al
// -------------------------
func getUserInfo(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	var landlordID *uint
	lVal := c.Locals(auth.CtxLandlordIDKey)
	if lPtr, ok := lVal.(*uint); ok && lPtr != nil {
		landlordID = lPtr
	}

	return userID, user.Name, landlordID, nil
}

// body'den gelen landlord_id + role
func resolveLandlordIDFromBodyOrRole(c *fiber.Ctx, bodyLandlordID *uint) (uint, error) {
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
	if bodyLandlordID == nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "landlord_id zorunlu")
	}
	return *bodyLandlordID, nil
}

// query'den gelen landlord_id + role
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

// -------------------------
// Booking CRUD
// -------------------------

// POST /api/bookings
func CreateBookingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBookingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.PropertyID == 0 || body.CheckIn == "" || body.CheckOut == "" || body.NightlyRate < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "property_id, check_in, check_out zorunlu")
		}

		landlordID, err := resolveLandlordIDFromBodyOrRole(c, body.LandlordID)
		if err != nil {
			return err
		}

		checkIn, err := time.Parse("2006-01-02", body.CheckIn)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "check_in formatı 'YYYY-MM-DD' olmalı")
		}
		checkOut, err := time.Parse("2006-01-02", body.CheckOut)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "check_out formatı 'YYYY-MM-DD' olmalı")
		}
		if !checkOut.After(checkIn) {
			return fiber.NewError(fiber.StatusBadRequest, "check_out check_in'den sonra olmalı")
		}

		var prop models.Property
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", body.PropertyID, landlordID).
			First(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mülk bulunamadı")
		}

		b := models.Booking{
			LandlordID:        landlordID,
			PropertyID:        body.PropertyID,
			GuestName:         body.GuestName,
			Channel:           body.Channel,
			CheckIn:           checkIn,
			CheckOut:          checkOut,
			NightlyRate:       body.NightlyRate,
			GrossBookingValue: body.GrossBookingValue,
			PlatformFee:       body.PlatformFee,
			CleaningFee:       body.CleaningFee,
			PaymentStatus:     models.BookingPaymentPending,
			PMPaymentStatus:   models.PMPaymentPending,
			Notes:             body.Notes,
		}

		CalculateFinancials(&b, &prop)

		if err := database.DB.Create(&b).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon kaydedilemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			landlordIDForLog := b.LandlordID
			if logErr := audit.WriteLog(audit.LogOptions{
				LandlordID:  &landlordIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "booking",
				EntityID:    b.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Rezervasyon eklendi: %s (%s - %s)", b.GuestName, body.CheckIn, body.CheckOut),
				After:       b,
			}); logErr != nil {
				fmt.Println("Audit log yazılamadı:", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(b))
	}
}

// GET /api/bookings?property_id=1[&year=2025&month=6]
func ListBookingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		q := database.DB.Where("landlord_id = ?", landlordID)

		if pidStr := c.Query("property_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "property_id geçersiz")
			}
			q = q.Where("property_id = ?", pid)
		}

		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr != "" && monthStr != "" {
			var year, month int
			if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
				return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
			}
			if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
				return fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
			}
			monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Now().Location())
			q = q.Where("check_in >= ? AND check_in < ?", monthStart, monthStart.AddDate(0, 1, 0))
		}

		var bookings []models.Booking
		if err := q.Order("check_in asc").Find(&bookings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyonlar listelenemedi")
		}

		res := make([]BookingResponse, 0, len(bookings))
		for _, b := range bookings {
			res = append(res, toResponse(b))
		}
		return c.JSON(res)
	}
}

// PUT /api/bookings/:id
// Finansal alanlar her güncellemede yeniden türetilir.
func UpdateBookingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var b models.Booking
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon okunamadı")
		}

		var body UpdateBookingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := b

		if body.GuestName != nil {
			b.GuestName = *body.GuestName
		}
		if body.Channel != nil {
			b.Channel = *body.Channel
		}
		if body.CheckIn != nil {
			d, err := time.Parse("2006-01-02", *body.CheckIn)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "check_in formatı 'YYYY-MM-DD' olmalı")
			}
			b.CheckIn = d
		}
		if body.CheckOut != nil {
			d, err := time.Parse("2006-01-02", *body.CheckOut)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "check_out formatı 'YYYY-MM-DD' olmalı")
			}
			b.CheckOut = d
		}
		if !b.CheckOut.After(b.CheckIn) {
			return fiber.NewError(fiber.StatusBadRequest, "check_out check_in'den sonra olmalı")
		}
		if body.NightlyRate != nil {
			b.NightlyRate = *body.NightlyRate
		}
		if body.GrossBookingValue != nil {
			b.GrossBookingValue = *body.GrossBookingValue
		}
		if body.PlatformFee != nil {
			b.PlatformFee = *body.PlatformFee
		}
		if body.CleaningFee != nil {
			b.CleaningFee = *body.CleaningFee
		}
		if body.PaymentStatus != nil {
			switch models.BookingPaymentStatus(*body.PaymentStatus) {
			case models.BookingPaymentPending, models.BookingPaymentPaid, models.BookingPaymentCancelled:
				b.PaymentStatus = models.BookingPaymentStatus(*body.PaymentStatus)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "payment_status pending/paid/cancelled olmalı")
			}
		}
		if body.Notes != nil {
			b.Notes = *body.Notes
		}

		var prop models.Property
		if err := database.DB.First(&prop, b.PropertyID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mülk okunamadı")
		}

		// tarih veya gecelik fiyat değiştiyse brüt yeniden hesaplansın
		if body.GrossBookingValue == nil && (body.CheckIn != nil || body.CheckOut != nil || body.NightlyRate != nil) {
			b.GrossBookingValue = 0
		}
		CalculateFinancials(&b, &prop)

		if err := database.DB.Save(&b).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon güncellenemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			landlordIDForLog := b.LandlordID
			if logErr := audit.WriteLog(audit.LogOptions{
				LandlordID:  &landlordIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "booking",
				EntityID:    b.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Rezervasyon güncellendi: %s", b.GuestName),
				Before:      before,
				After:       b,
			}); logErr != nil {
				fmt.Println("Audit log yazılamadı:", logErr)
			}
		}

		return c.JSON(toResponse(b))
	}
}

// PUT /api/bookings/:id/pm-paid
// Yönetici kesintisinin ödendiğini işaretle
func MarkPMPaidHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var b models.Booking
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon okunamadı")
		}

		b.PMPaymentStatus = models.PMPaymentPaid
		if err := database.DB.Save(&b).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon güncellenemedi")
		}

		return c.JSON(toResponse(b))
	}
}

// DELETE /api/bookings/:id
func DeleteBookingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var b models.Booking
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon okunamadı")
		}

		if err := database.DB.Delete(&b).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon silinemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			landlordIDForLog := b.LandlordID
			if logErr := audit.WriteLog(audit.LogOptions{
				LandlordID:  &landlordIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "booking",
				EntityID:    b.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Rezervasyon silindi: %s", b.GuestName),
				Before:      b,
			}); logErr != nil {
				fmt.Println("Audit log yazılamadı:", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// PM özeti
// -------------------------

// GET /api/bookings/pm-summary?property_id=1&year=2025&month=6
func PMSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var pid uint
		pidStr := c.Query("property_id")
		if pidStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "property_id zorunlu")
		}
		if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "property_id geçersiz")
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

		// mülk sahiplik kontrolü
		var prop models.Property
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", pid, landlordID).
			First(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mülk bulunamadı")
		}

		summary, err := SummarizePMPayments(pid, year, time.Month(month))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "PM özeti hesaplanamadı")
		}

		resp := fiber.Map{
			"property_id":         pid,
			"year":                year,
			"month":               month,
			"total_net_revenue":   summary.TotalNetRevenue,
			"total_cleaning_fees": summary.TotalCleaningFee,
			"total_pm_fees":       summary.TotalPMFees,
			"total_pm_deduction":  summary.TotalPMDeduction,
			"already_paid":        summary.AlreadyPaid,
			"remaining_to_pay":    summary.RemainingToPay,
		}

		// ödeme koşulu tanımlıysa açıklamasını ekle (adres bazlı kural yok,
		// mülk başına konfigürasyon kaydı)
		var terms models.PaymentTerms
		if err := database.DB.Where("property_id = ?", pid).First(&terms).Error; err == nil {
			resp["payment_terms"] = fiber.Map{
				"payout_day":  terms.PayoutDay,
				"description": terms.Description,
			}
		}

		return c.JSON(resp)
	}
}
