package tenancy

import (
	"fmt"
	"log"
	"strings"
	"time"

	"kira-backend/internal/audit"
	"kira-backend/internal/auth"
	"kira-backend/internal/database"
	"kira-backend/internal/models"
	"kira-backend/internal/rent"

	"github.com/gofiber/fiber/v2"
)

type TenantResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type CreateTenantRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	LandlordID *uint  `json:"landlord_id"` // admin için opsiyonel
}

type UpdateTenantRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type tenancyTenantResponse struct {
	TenantID  uint   `json:"tenant_id"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"is_primary"`
}

type TenancyResponse struct {
	ID         uint                    `json:"id"`
	PropertyID uint                    `json:"property_id"`
	Property   string                  `json:"property"`
	StartDate  string                  `json:"start_date"`
	EndDate    *string                 `json:"end_date"`
	RentAmount float64                 `json:"rent_amount"`
	RentDueDay int                     `json:"rent_due_day"`
	Status     string                  `json:"status"`
	Notes      string                  `json:"notes"`
	Tenants    []tenancyTenantResponse `json:"tenants"`
}

type tenantLink struct {
	TenantID  uint `json:"tenant_id"`
	IsPrimary bool `json:"is_primary"`
}

type CreateTenancyRequest struct {
	PropertyID uint         `json:"property_id"`
	StartDate  string       `json:"start_date"` // YYYY-MM-DD
	EndDate    *string      `json:"end_date"`
	RentAmount float64      `json:"rent_amount"`
	RentDueDay int          `json:"rent_due_day"`
	Notes      string       `json:"notes"`
	Tenants    []tenantLink `json:"tenants"`
	LandlordID *uint        `json:"landlord_id"` // admin için opsiyonel
}

type UpdateTenancyRequest struct {
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"` // "" gönderilirse süresiz yapılır
	RentAmount *float64 `json:"rent_amount"`
	RentDueDay *int     `json:"rent_due_day"`
	Notes      *string  `json:"notes"`
}

type EndTenancyRequest struct {
	EndDate string `json:"end_date"` // YYYY-MM-DD
}

func toTenantResponse(t models.Tenant) TenantResponse {
	return TenantResponse{ID: t.ID, Name: t.Name, Email: t.Email, Phone: t.Phone}
}

func toTenancyResponse(t models.Tenancy) TenancyResponse {
	res := TenancyResponse{
		ID:         t.ID,
		PropertyID: t.PropertyID,
		Property:   t.Property.Name,
		StartDate:  t.StartDate.Format("2006-01-02"),
		RentAmount: t.RentAmount,
		RentDueDay: t.RentDueDay,
		Status:     string(t.Status),
		Notes:      t.Notes,
		Tenants:    make([]tenancyTenantResponse, 0, len(t.TenancyTenants)),
	}
	if t.EndDate != nil {
		s := t.EndDate.Format("2006-01-02")
		res.EndDate = &s
	}
	for _, tt := range t.TenancyTenants {
		res.Tenants = append(res.Tenants, tenancyTenantResponse{
			TenantID:  tt.TenantID,
			Name:      tt.Tenant.Name,
			IsPrimary: tt.IsPrimary,
		})
	}
	return res
}

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

	return user.ID, user.Name, landlordID, nil
}

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

	if bodyLandlordID == nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "landlord_id zorunlu")
	}
	return *bodyLandlordID, nil
}

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

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// ----------------------------------------
// KİRACI CRUD
// ----------------------------------------

// POST /api/tenants
func CreateTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTenantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kiracı adı boş olamaz")
		}

		landlordID, err := resolveLandlordIDFromBodyOrRole(c, body.LandlordID)
		if err != nil {
			return err
		}

		tenant := models.Tenant{
			LandlordID: landlordID,
			Name:       body.Name,
			Email:      strings.TrimSpace(body.Email),
			Phone:      strings.TrimSpace(body.Phone),
		}
		if err := database.DB.Create(&tenant).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kiracı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toTenantResponse(tenant))
	}
}

// GET /api/tenants
func ListTenantsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var tenants []models.Tenant
		if err := database.DB.
			Where("landlord_id = ?", landlordID).
			Order("name asc").
			Find(&tenants).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kiracılar listelenemedi")
		}

		res := make([]TenantResponse, 0, len(tenants))
		for _, t := range tenants {
			res = append(res, toTenantResponse(t))
		}
		return c.JSON(res)
	}
}

// PUT /api/tenants/:id
func UpdateTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var tenant models.Tenant
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", c.Params("id"), landlordID).
			First(&tenant).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kiracı bulunamadı")
		}

		var body UpdateTenantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Kiracı adı boş olamaz")
			}
			tenant.Name = name
		}
		if body.Email != nil {
			tenant.Email = strings.TrimSpace(*body.Email)
		}
		if body.Phone != nil {
			tenant.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Save(&tenant).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kiracı güncellenemedi")
		}

		return c.JSON(toTenantResponse(tenant))
	}
}

// DELETE /api/tenants/:id
func DeleteTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var tenant models.Tenant
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", c.Params("id"), landlordID).
			First(&tenant).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kiracı bulunamadı")
		}

		var linkCount int64
		database.DB.Model(&models.TenancyTenant{}).
			Where("tenant_id = ?", tenant.ID).
			Count(&linkCount)
		if linkCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sözleşmesi olan kiracı silinemez")
		}

		if err := database.DB.Delete(&tenant).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kiracı silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// SÖZLEŞME CRUD
// ----------------------------------------

// POST /api/tenancies
// Oluşturma sırasında durum tarihlerden türetilir ve gelecek dönemlerin
// kira kayıtları otomatik açılır.
func CreateTenancyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTenancyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		landlordID, err := resolveLandlordIDFromBodyOrRole(c, body.LandlordID)
		if err != nil {
			return err
		}

		if body.PropertyID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "property_id zorunlu")
		}
		if body.RentAmount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "rent_amount pozitif olmalı")
		}
		if body.RentDueDay < 1 || body.RentDueDay > 31 {
			return fiber.NewError(fiber.StatusBadRequest, "rent_due_day 1-31 arası olmalı")
		}

		startDate, err := parseDate(body.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_date YYYY-MM-DD formatında olmalı")
		}

		var endDate *time.Time
		if body.EndDate != nil && *body.EndDate != "" {
			ed, err := parseDate(*body.EndDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date YYYY-MM-DD formatında olmalı")
			}
			if ed.Before(startDate) {
				return fiber.NewError(fiber.StatusBadRequest, "end_date start_date'den önce olamaz")
			}
			endDate = &ed
		}

		// Mülk bu mülk sahibine ait mi?
		var prop models.Property
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", body.PropertyID, landlordID).
			First(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mülk bulunamadı")
		}

		// Kiracılar kontrol edilir
		tenantIDs := make([]uint, 0, len(body.Tenants))
		for _, link := range body.Tenants {
			tenantIDs = append(tenantIDs, link.TenantID)
		}
		if len(tenantIDs) > 0 {
			var count int64
			database.DB.Model(&models.Tenant{}).
				Where("id IN ? AND landlord_id = ?", tenantIDs, landlordID).
				Count(&count)
			if count != int64(len(tenantIDs)) {
				return fiber.NewError(fiber.StatusBadRequest, "Kiracı listesi geçersiz")
			}
		}

		t := models.Tenancy{
			LandlordID: landlordID,
			PropertyID: prop.ID,
			StartDate:  startDate,
			EndDate:    endDate,
			RentAmount: body.RentAmount,
			RentDueDay: body.RentDueDay,
			Status:     DeriveStatus(startDate, endDate, time.Now()),
			Notes:      body.Notes,
		}

		if err := database.DB.Create(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sözleşme oluşturulamadı")
		}

		for _, link := range body.Tenants {
			tt := models.TenancyTenant{
				TenancyID: t.ID,
				TenantID:  link.TenantID,
				IsPrimary: link.IsPrimary,
			}
			if err := database.DB.Create(&tt).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Kiracı bağlantısı oluşturulamadı")
			}
		}

		// Gelecek dönemlerin kira kayıtları açılır; hata sözleşmeyi bloklamaz
		if _, err := rent.GenerateForTenancy(t.ID, landlordID, time.Now()); err != nil {
			log.Printf("Kira kayıtları oluşturulamadı (tenancy %d): %v", t.ID, err)
		}

		userID, userName, auditLandlord, err := getUserInfo(c)
		if err == nil {
			if auditLandlord == nil {
				auditLandlord = &landlordID
			}
			_ = audit.WriteLog(audit.LogOptions{
				LandlordID:  auditLandlord,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tenancy",
				EntityID:    t.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Sözleşme oluşturuldu: %s", prop.Name),
				After:       t,
			})
		}

		database.DB.
			Preload("Property").
			Preload("TenancyTenants.Tenant").
			First(&t, t.ID)

		return c.Status(fiber.StatusCreated).JSON(toTenancyResponse(t))
	}
}

// GET /api/tenancies
// Listeden önce durumlar tarihlere göre tazelenir.
func ListTenanciesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		if err := RecomputeStatuses(landlordID, time.Now()); err != nil {
			log.Printf("Sözleşme durumları tazelenemedi (landlord %d): %v", landlordID, err)
		}

		query := database.DB.
			Preload("Property").
			Preload("TenancyTenants.Tenant").
			Where("landlord_id = ?", landlordID)

		if propertyID := c.Query("property_id"); propertyID != "" {
			query = query.Where("property_id = ?", propertyID)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var tenancies []models.Tenancy
		if err := query.Order("start_date desc").Find(&tenancies).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sözleşmeler listelenemedi")
		}

		res := make([]TenancyResponse, 0, len(tenancies))
		for _, t := range tenancies {
			res = append(res, toTenancyResponse(t))
		}
		return c.JSON(res)
	}
}

// GET /api/tenancies/:id
func GetTenancyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		if err := RecomputeStatuses(landlordID, time.Now()); err != nil {
			log.Printf("Sözleşme durumları tazelenemedi (landlord %d): %v", landlordID, err)
		}

		var t models.Tenancy
		if err := database.DB.
			Preload("Property").
			Preload("TenancyTenants.Tenant").
			Where("id = ? AND landlord_id = ?", c.Params("id"), landlordID).
			First(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sözleşme bulunamadı")
		}

		var payments []models.RentPayment
		if err := database.DB.
			Where("tenancy_id = ?", t.ID).
			Order("due_date asc").
			Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kira kayıtları okunamadı")
		}

		paymentList := make([]fiber.Map, 0, len(payments))
		for _, p := range payments {
			item := fiber.Map{
				"id":          p.ID,
				"due_date":    p.DueDate.Format("2006-01-02"),
				"amount_due":  p.AmountDue,
				"amount_paid": p.AmountPaid,
				"status":      string(p.Status),
			}
			if p.PaidDate != nil {
				item["paid_date"] = p.PaidDate.Format("2006-01-02")
			}
			paymentList = append(paymentList, item)
		}

		return c.JSON(fiber.Map{
			"tenancy":       toTenancyResponse(t),
			"rent_payments": paymentList,
		})
	}
}

// PUT /api/tenancies/:id
func UpdateTenancyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var t models.Tenancy
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", c.Params("id"), landlordID).
			First(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sözleşme bulunamadı")
		}

		before := t

		var body UpdateTenancyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.StartDate != nil {
			sd, err := parseDate(*body.StartDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date YYYY-MM-DD formatında olmalı")
			}
			t.StartDate = sd
		}
		if body.EndDate != nil {
			if *body.EndDate == "" {
				t.EndDate = nil // süresiz sözleşme
			} else {
				ed, err := parseDate(*body.EndDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "end_date YYYY-MM-DD formatında olmalı")
				}
				t.EndDate = &ed
			}
		}
		if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
			return fiber.NewError(fiber.StatusBadRequest, "end_date start_date'den önce olamaz")
		}
		if body.RentAmount != nil {
			if *body.RentAmount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "rent_amount pozitif olmalı")
			}
			t.RentAmount = *body.RentAmount
		}
		if body.RentDueDay != nil {
			if *body.RentDueDay < 1 || *body.RentDueDay > 31 {
				return fiber.NewError(fiber.StatusBadRequest, "rent_due_day 1-31 arası olmalı")
			}
			t.RentDueDay = *body.RentDueDay
		}
		if body.Notes != nil {
			t.Notes = *body.Notes
		}

		// Tarihler değişmiş olabilir; durum yeniden türetilir
		t.Status = DeriveStatus(t.StartDate, t.EndDate, time.Now())

		if err := database.DB.Save(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sözleşme güncellenemedi")
		}

		userID, userName, auditLandlord, err := getUserInfo(c)
		if err == nil {
			if auditLandlord == nil {
				auditLandlord = &landlordID
			}
			_ = audit.WriteLog(audit.LogOptions{
				LandlordID:  auditLandlord,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tenancy",
				EntityID:    t.ID,
				Action:      models.AuditActionUpdate,
				Description: "Sözleşme güncellendi",
				Before:      before,
				After:       t,
			})
		}

		database.DB.
			Preload("Property").
			Preload("TenancyTenants.Tenant").
			First(&t, t.ID)

		return c.JSON(toTenancyResponse(t))
	}
}

// PUT /api/tenancies/:id/end
// Bitiş tarihi yazılır; tarih geçmişteyse durum hemen "ended" olur.
func EndTenancyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var t models.Tenancy
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", c.Params("id"), landlordID).
			First(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sözleşme bulunamadı")
		}

		var body EndTenancyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		endDate, err := parseDate(body.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date YYYY-MM-DD formatında olmalı")
		}
		if endDate.Before(t.StartDate) {
			return fiber.NewError(fiber.StatusBadRequest, "end_date start_date'den önce olamaz")
		}

		before := t

		t.EndDate = &endDate
		t.Status = DeriveStatus(t.StartDate, t.EndDate, time.Now())

		if err := database.DB.Save(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sözleşme sonlandırılamadı")
		}

		userID, userName, auditLandlord, err := getUserInfo(c)
		if err == nil {
			if auditLandlord == nil {
				auditLandlord = &landlordID
			}
			_ = audit.WriteLog(audit.LogOptions{
				LandlordID:  auditLandlord,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tenancy",
				EntityID:    t.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Sözleşme sonlandırıldı: %s", endDate.Format("2006-01-02")),
				Before:      before,
				After:       t,
			})
		}

		database.DB.
			Preload("Property").
			Preload("TenancyTenants.Tenant").
			First(&t, t.ID)

		return c.JSON(toTenancyResponse(t))
	}
}

// DELETE /api/tenancies/:id
// Kayıt tamamen silinmez, işaretlenir (soft delete).
func DeleteTenancyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var t models.Tenancy
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", c.Params("id"), landlordID).
			First(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sözleşme bulunamadı")
		}

		if err := database.DB.Delete(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sözleşme silinemedi")
		}

		userID, userName, auditLandlord, err := getUserInfo(c)
		if err == nil {
			if auditLandlord == nil {
				auditLandlord = &landlordID
			}
			_ = audit.WriteLog(audit.LogOptions{
				LandlordID:  auditLandlord,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "tenancy",
				EntityID:    t.ID,
				Action:      models.AuditActionDelete,
				Description: "Sözleşme silindi",
				Before:      t,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
