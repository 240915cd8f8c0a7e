package rent

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

type RentPaymentResponse struct {
	ID         uint    `json:"id"`
	TenancyID  uint    `json:"tenancy_id"`
	PropertyID uint    `json:"property_id"`
	DueDate    string  `json:"due_date"`
	AmountDue  float64 `json:"amount_due"`
	AmountPaid float64 `json:"amount_paid"`
	Status     string  `json:"status"`
	PaidDate   string  `json:"paid_date,omitempty"`
	Method     string  `json:"payment_method,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

type MaterializeRequest struct {
	Year       int   `json:"year"`
	Month      int   `json:"month"`
	LandlordID *uint `json:"landlord_id"` // admin için zorunlu
}

type RecordPaymentRequest struct {
	AmountPaid    float64 `json:"amount_paid"`
	PaidDate      string  `json:"paid_date"` // "2025-01-15", boşsa bugün
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

func toResponse(p models.RentPayment) RentPaymentResponse {
	res := RentPaymentResponse{
		ID:         p.ID,
		TenancyID:  p.TenancyID,
		PropertyID: p.PropertyID,
		DueDate:    p.DueDate.Format("2006-01-02"),
		AmountDue:  p.AmountDue,
		AmountPaid: p.AmountPaid,
		Status:     string(p.Status),
		Method:     p.PaymentMethod,
		Notes:      p.Notes,
	}
	if p.PaidDate != nil {
		res.PaidDate = p.PaidDate.Format("2006-01-02")
	}
	return res
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

// -------------------------
// Yardımcı: landlord ID çöz
// -------------------------

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
// Kira kayıtları
// -------------------------

// GET /api/rent-payments?year=2025&month=1[&tenancy_id=3][&property_id=2]
func ListRentPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		q := database.DB.Where("landlord_id = ?", landlordID)

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
			q = q.Where("due_date >= ? AND due_date < ?", monthStart, monthStart.AddDate(0, 1, 0))
		}

		if tidStr := c.Query("tenancy_id"); tidStr != "" {
			var tid uint
			if _, err := fmt.Sscan(tidStr, &tid); err != nil || tid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "tenancy_id geçersiz")
			}
			q = q.Where("tenancy_id = ?", tid)
		}
		if pidStr := c.Query("property_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "property_id geçersiz")
			}
			q = q.Where("property_id = ?", pid)
		}

		var payments []models.RentPayment
		if err := q.Order("due_date asc").Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kira kayıtları listelenemedi")
		}

		res := make([]RentPaymentResponse, 0, len(payments))
		for _, p := range payments {
			res = append(res, toResponse(p))
		}
		return c.JSON(res)
	}
}

// POST /api/rent-payments/generate
// Hedef ay için aktif sözleşmelerin kira kayıtlarını üretir. Tekrar çağırmak
// mevcut kayıtları çoğaltmaz.
func MaterializeRentPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MaterializeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		landlordID, err := resolveLandlordIDFromBodyOrRole(c, body.LandlordID)
		if err != nil {
			return err
		}

		now := time.Now()
		year := body.Year
		month := body.Month
		if year == 0 && month == 0 {
			// varsayılan: içinde bulunulan ay
			year = now.Year()
			month = int(now.Month())
		}
		if year < 2000 || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "year/month geçersiz")
		}

		result, err := MaterializeMonth(landlordID, year, time.Month(month), now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kira kayıtları üretilemedi")
		}

		res := make([]RentPaymentResponse, 0, len(result.Records))
		for _, p := range result.Records {
			res = append(res, toResponse(p))
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"created":         result.Created,
			"already_covered": result.AlreadyCovered,
			"total_tenancies": result.TotalTenancies,
			"records":         res,
		})
	}
}

// PUT /api/rent-payments/:id/record
// Ödeme kaydet: amount_paid + paid_date set edilir, status paid olur.
func RecordRentPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var payment models.RentPayment
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Kira kaydı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kira kaydı okunamadı")
		}

		var body RecordPaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.AmountPaid <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount_paid zorunlu, 0'dan büyük olmalı")
		}

		// paid_date gün bazlı tutulur; saat bileşeni gün sonu raporlarını kaydırır
		paidDate := dateOnly(time.Now())
		if body.PaidDate != "" {
			d, err := time.Parse("2006-01-02", body.PaidDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			paidDate = d
		}

		before := payment

		payment.AmountPaid = body.AmountPaid
		payment.PaidDate = &paidDate
		payment.Status = models.RentPaymentStatusPaid
		payment.PaymentMethod = body.PaymentMethod
		if body.Notes != "" {
			payment.Notes = body.Notes
		}

		if err := database.DB.Save(&payment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme kaydedilemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			landlordIDForLog := payment.LandlordID
			if logErr := audit.WriteLog(audit.LogOptions{
				LandlordID:  &landlordIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "rent_payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Kira ödemesi kaydedildi: %.2f", payment.AmountPaid),
				Before:      before,
				After:       payment,
			}); logErr != nil {
				fmt.Println("Audit log yazılamadı:", logErr)
			}
		}

		return c.JSON(toResponse(payment))
	}
}

// PUT /api/rent-payments/:id/missed
// Kapanan dönemde ödenmeyen kira missed olarak işaretlenir.
func MarkRentPaymentMissedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var payment models.RentPayment
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Kira kaydı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kira kaydı okunamadı")
		}

		if payment.Status == models.RentPaymentStatusPaid {
			return fiber.NewError(fiber.StatusBadRequest, "Ödenmiş kayıt missed yapılamaz")
		}

		payment.Status = models.RentPaymentStatusMissed
		if err := database.DB.Save(&payment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt güncellenemedi")
		}

		return c.JSON(toResponse(payment))
	}
}

// GET /api/rent-payments/summary?year=2025&month=1
// Ay bazlı tahsilat özeti (duruma göre toplamlar + tahsilat oranı)
func CollectionSummaryHandler() fiber.Handler {
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

		monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Now().Location())

		var payments []models.RentPayment
		if err := database.DB.
			Where("landlord_id = ? AND due_date >= ? AND due_date < ?",
				landlordID, monthStart, monthStart.AddDate(0, 1, 0)).
			Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kira kayıtları okunamadı")
		}

		summary := SummarizeCollection(payments)

		return c.JSON(fiber.Map{
			"landlord_id":     landlordID,
			"year":            year,
			"month":           month,
			"total_received":  summary.TotalReceived,
			"total_pending":   summary.TotalPending,
			"total_late":      summary.TotalLate,
			"total_missed":    summary.TotalMissed,
			"total_expected":  summary.TotalExpected,
			"collection_rate": summary.CollectionRate,
		})
	}
}
