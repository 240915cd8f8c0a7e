package expense

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kira-backend/internal/audit"
	"kira-backend/internal/auth"
	"kira-backend/internal/database"
	"kira-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateExpenseRequest struct {
	PropertyID  uint    `json:"property_id"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Frequency   string  `json:"frequency"` // one-off / monthly / quarterly / yearly
	ExpenseDate string  `json:"expense_date"` // "2025-12-09"
	EndDate     string  `json:"end_date"`     // periyodik için opsiyonel
	Description string  `json:"description"`
	LandlordID  *uint   `json:"landlord_id"` // admin için opsiyonel
}

type UpdateExpenseRequest struct {
	Category    *string  `json:"category"`
	Amount      *float64 `json:"amount"`
	Frequency   *string  `json:"frequency"`
	ExpenseDate *string  `json:"expense_date"`
	EndDate     *string  `json:"end_date"` // "" gönderilirse temizlenir
	Description *string  `json:"description"`
}

type ExpenseResponse struct {
	ID          uint    `json:"id"`
	LandlordID  uint    `json:"landlord_id"`
	PropertyID  uint    `json:"property_id"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Frequency   string  `json:"frequency"`
	ExpenseDate string  `json:"expense_date"`
	EndDate     string  `json:"end_date,omitempty"`
	Description string  `json:"description"`
}

func toResponse(e models.Expense) ExpenseResponse {
	res := ExpenseResponse{
		ID:          e.ID,
		LandlordID:  e.LandlordID,
		PropertyID:  e.PropertyID,
		Category:    e.Category,
		Amount:      e.Amount,
		Frequency:   string(e.Frequency),
		ExpenseDate: e.ExpenseDate.Format("2006-01-02"),
		Description: e.Description,
	}
	if e.EndDate != nil {
		res.EndDate = e.EndDate.Format("2006-01-02")
	}
	return res
}

func validFrequency(f string) bool {
	switch models.ExpenseFrequency(f) {
	case models.ExpenseFrequencyOneOff,
		models.ExpenseFrequencyMonthly,
		models.ExpenseFrequencyQuarterly,
		models.ExpenseFrequencyYearly:
		return true
	}
	return false
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
// Expense CRUD
// -------------------------

// POST /api/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Category = strings.TrimSpace(body.Category)

		if body.PropertyID == 0 || body.Category == "" || body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "property_id, category ve amount zorunlu, amount > 0 olmalı")
		}

		if body.Frequency == "" {
			body.Frequency = string(models.ExpenseFrequencyOneOff)
		}
		if !validFrequency(body.Frequency) {
			return fiber.NewError(fiber.StatusBadRequest, "frequency one-off/monthly/quarterly/yearly olmalı")
		}

		landlordID, err := resolveLandlordIDFromBodyOrRole(c, body.LandlordID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.ExpenseDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		var endDate *time.Time
		if body.EndDate != "" {
			e, err := time.Parse("2006-01-02", body.EndDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date formatı 'YYYY-MM-DD' olmalı")
			}
			if e.Before(d) {
				return fiber.NewError(fiber.StatusBadRequest, "end_date gider tarihinden önce olamaz")
			}
			endDate = &e
		}

		// Mülk bu mülk sahibine mi ait?
		var prop models.Property
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", body.PropertyID, landlordID).
			First(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mülk bulunamadı")
		}

		exp := models.Expense{
			LandlordID:  landlordID,
			PropertyID:  body.PropertyID,
			Category:    body.Category,
			Amount:      body.Amount,
			Frequency:   models.ExpenseFrequency(body.Frequency),
			ExpenseDate: d,
			EndDate:     endDate,
			Description: body.Description,
		}

		if err := database.DB.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider kaydedilemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			landlordIDForLog := exp.LandlordID
			if logErr := audit.WriteLog(audit.LogOptions{
				LandlordID:  &landlordIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Gider eklendi: %s %.2f", exp.Category, exp.Amount),
				After:       exp,
			}); logErr != nil {
				fmt.Println("Audit log yazılamadı:", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(exp))
	}
}

// GET /api/expenses?property_id=1[&category=sigorta]
func ListExpensesHandler() fiber.Handler {
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
		if cat := c.Query("category"); cat != "" {
			q = q.Where("category = ?", cat)
		}

		var expenses []models.Expense
		if err := q.Order("expense_date desc").Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		res := make([]ExpenseResponse, 0, len(expenses))
		for _, e := range expenses {
			res = append(res, toResponse(e))
		}
		return c.JSON(res)
	}
}

// PUT /api/expenses/:id
func UpdateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var exp models.Expense
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&exp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Gider okunamadı")
		}

		var body UpdateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := exp

		if body.Category != nil {
			cat := strings.TrimSpace(*body.Category)
			if cat == "" {
				return fiber.NewError(fiber.StatusBadRequest, "category boş olamaz")
			}
			exp.Category = cat
		}
		if body.Amount != nil {
			if *body.Amount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "amount > 0 olmalı")
			}
			exp.Amount = *body.Amount
		}
		if body.Frequency != nil {
			if !validFrequency(*body.Frequency) {
				return fiber.NewError(fiber.StatusBadRequest, "frequency one-off/monthly/quarterly/yearly olmalı")
			}
			exp.Frequency = models.ExpenseFrequency(*body.Frequency)
		}
		if body.ExpenseDate != nil {
			d, err := time.Parse("2006-01-02", *body.ExpenseDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			exp.ExpenseDate = d
		}
		if body.EndDate != nil {
			if *body.EndDate == "" {
				exp.EndDate = nil
			} else {
				e, err := time.Parse("2006-01-02", *body.EndDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "end_date formatı 'YYYY-MM-DD' olmalı")
				}
				exp.EndDate = &e
			}
		}
		if body.Description != nil {
			exp.Description = *body.Description
		}

		if err := database.DB.Save(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider güncellenemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			landlordIDForLog := exp.LandlordID
			if logErr := audit.WriteLog(audit.LogOptions{
				LandlordID:  &landlordIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Gider güncellendi: %s", exp.Category),
				Before:      before,
				After:       exp,
			}); logErr != nil {
				fmt.Println("Audit log yazılamadı:", logErr)
			}
		}

		return c.JSON(toResponse(exp))
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var exp models.Expense
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&exp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Gider okunamadı")
		}

		if err := database.DB.Delete(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider silinemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			landlordIDForLog := exp.LandlordID
			if logErr := audit.WriteLog(audit.LogOptions{
				LandlordID:  &landlordIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Gider silindi: %s %.2f", exp.Category, exp.Amount),
				Before:      exp,
				After:       exp,
			}); logErr != nil {
				fmt.Println("Audit log yazılamadı:", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Özetler
// -------------------------

// GET /api/expenses/summary?property_id=1&year=2025&month=3
func ExpenseSummaryHandler() fiber.Handler {
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

		now := time.Now()
		year := now.Year()
		month := int(now.Month())
		if yearStr := c.Query("year"); yearStr != "" {
			if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
				return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
			}
		}
		if monthStr := c.Query("month"); monthStr != "" {
			if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
				return fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
			}
		}

		summary, err := SummarizeExpenses(pid, landlordID, year, time.Month(month))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider özeti hesaplanamadı")
		}

		return c.JSON(fiber.Map{
			"property_id":       pid,
			"year":              year,
			"month":             month,
			"one_off":           summary.OneOff,
			"monthly_recurring": summary.MonthlyRecurring,
			"total_this_month":  summary.TotalThisMonth,
			"by_category":       summary.ByCategory,
		})
	}
}

// GET /api/expenses/rollup?year=2025&month=3
// Mülk sahibi genelinde aylık gider dökümü
func MonthlyRollupHandler() fiber.Handler {
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

		rollup, err := RollupMonth(landlordID, year, time.Month(month))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider dökümü hesaplanamadı")
		}

		return c.JSON(fiber.Map{
			"landlord_id":     landlordID,
			"year":            year,
			"month":           month,
			"items":           rollup.Items,
			"recurring_total": rollup.RecurringTotal,
			"one_off_total":   rollup.OneOffTotal,
			"grand_total":     rollup.GrandTotal,
		})
	}
}
