package property

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kira-backend/internal/auth"
	"kira-backend/internal/database"
	"kira-backend/internal/models"
	"kira-backend/internal/tenancy"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PropertyResponse struct {
	ID                   uint    `json:"id"`
	Name                 string  `json:"name"`
	Address              string  `json:"address"`
	City                 string  `json:"city"`
	Category             string  `json:"category"`
	Bedrooms             int     `json:"bedrooms"`
	IsManaged            bool    `json:"is_managed"`
	ManagementFeePercent float64 `json:"management_fee_percent"`
	FixedCleaningFee     float64 `json:"fixed_cleaning_fee"`
	Notes                string  `json:"notes"`
	CreatedAt            string  `json:"created_at"`
}

type CreatePropertyRequest struct {
	Name                 string  `json:"name"`
	Address              string  `json:"address"`
	City                 string  `json:"city"`
	Category             string  `json:"category"`
	Bedrooms             int     `json:"bedrooms"`
	IsManaged            bool    `json:"is_managed"`
	ManagementFeePercent float64 `json:"management_fee_percent"`
	FixedCleaningFee     float64 `json:"fixed_cleaning_fee"`
	Notes                string  `json:"notes"`
	LandlordID           *uint   `json:"landlord_id"` // admin için opsiyonel
}

type UpdatePropertyRequest struct {
	Name                 *string  `json:"name"`
	Address              *string  `json:"address"`
	City                 *string  `json:"city"`
	Category             *string  `json:"category"`
	Bedrooms             *int     `json:"bedrooms"`
	IsManaged            *bool    `json:"is_managed"`
	ManagementFeePercent *float64 `json:"management_fee_percent"`
	FixedCleaningFee     *float64 `json:"fixed_cleaning_fee"`
	Notes                *string  `json:"notes"`
}

type PaymentTermsRequest struct {
	PayoutDay   int    `json:"payout_day"`
	Description string `json:"description"`
}

func toResponse(p models.Property) PropertyResponse {
	return PropertyResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Address:              p.Address,
		City:                 p.City,
		Category:             string(p.Category),
		Bedrooms:             p.Bedrooms,
		IsManaged:            p.IsManaged,
		ManagementFeePercent: p.ManagementFeePercent,
		FixedCleaningFee:     p.FixedCleaningFee,
		Notes:                p.Notes,
		CreatedAt:            p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func validCategory(cat string) bool {
	switch models.PropertyCategory(cat) {
	case models.PropertyCategoryBTR,
		models.PropertyCategoryHMO,
		models.PropertyCategorySA,
		models.PropertyCategoryCommercial:
		return true
	}
	return false
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

// ----------------------------------------
// MÜLK CRUD
// ----------------------------------------

// POST /api/properties
func CreatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePropertyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Address = strings.TrimSpace(body.Address)
		if body.Name == "" || body.Address == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Mülk adı ve adres boş olamaz")
		}

		if body.Category == "" {
			body.Category = string(models.PropertyCategoryBTR)
		}
		if !validCategory(body.Category) {
			return fiber.NewError(fiber.StatusBadRequest, "category btr/hmo/sa/commercial olmalı")
		}
		if body.ManagementFeePercent < 0 || body.ManagementFeePercent > 100 {
			return fiber.NewError(fiber.StatusBadRequest, "management_fee_percent 0-100 arası olmalı")
		}

		landlordID, err := resolveLandlordIDFromBodyOrRole(c, body.LandlordID)
		if err != nil {
			return err
		}

		prop := models.Property{
			LandlordID:           landlordID,
			Name:                 body.Name,
			Address:              body.Address,
			City:                 body.City,
			Category:             models.PropertyCategory(body.Category),
			Bedrooms:             body.Bedrooms,
			IsManaged:            body.IsManaged,
			ManagementFeePercent: body.ManagementFeePercent,
			FixedCleaningFee:     body.FixedCleaningFee,
			Notes:                body.Notes,
		}

		if err := database.DB.Create(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mülk oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(prop))
	}
}

// GET /api/properties
// Listeden önce sözleşme durumları tazelenir; tazeleme hatası listeyi bloklamaz.
func ListPropertiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		if err := tenancy.RecomputeStatuses(landlordID, time.Now()); err != nil {
			log.Printf("Sözleşme durumları tazelenemedi (landlord %d): %v", landlordID, err)
		}

		var props []models.Property
		if err := database.DB.
			Where("landlord_id = ?", landlordID).
			Order("name asc").
			Find(&props).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mülkler listelenemedi")
		}

		res := make([]PropertyResponse, 0, len(props))
		for _, p := range props {
			res = append(res, toResponse(p))
		}
		return c.JSON(res)
	}
}

// GET /api/properties/:id
func GetPropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		if err := tenancy.RecomputeStatuses(landlordID, time.Now()); err != nil {
			log.Printf("Sözleşme durumları tazelenemedi (landlord %d): %v", landlordID, err)
		}

		id := c.Params("id")

		var prop models.Property
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mülk bulunamadı")
		}

		return c.JSON(toResponse(prop))
	}
}

// PUT /api/properties/:id
func UpdatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var prop models.Property
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mülk bulunamadı")
		}

		var body UpdatePropertyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Mülk adı boş olamaz")
			}
			prop.Name = name
		}
		if body.Address != nil {
			addr := strings.TrimSpace(*body.Address)
			if addr == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Adres boş olamaz")
			}
			prop.Address = addr
		}
		if body.City != nil {
			prop.City = *body.City
		}
		if body.Category != nil {
			if !validCategory(*body.Category) {
				return fiber.NewError(fiber.StatusBadRequest, "category btr/hmo/sa/commercial olmalı")
			}
			prop.Category = models.PropertyCategory(*body.Category)
		}
		if body.Bedrooms != nil {
			prop.Bedrooms = *body.Bedrooms
		}
		if body.IsManaged != nil {
			prop.IsManaged = *body.IsManaged
		}
		if body.ManagementFeePercent != nil {
			if *body.ManagementFeePercent < 0 || *body.ManagementFeePercent > 100 {
				return fiber.NewError(fiber.StatusBadRequest, "management_fee_percent 0-100 arası olmalı")
			}
			prop.ManagementFeePercent = *body.ManagementFeePercent
		}
		if body.FixedCleaningFee != nil {
			prop.FixedCleaningFee = *body.FixedCleaningFee
		}
		if body.Notes != nil {
			prop.Notes = *body.Notes
		}

		if err := database.DB.Save(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mülk güncellenemedi")
		}

		return c.JSON(toResponse(prop))
	}
}

// DELETE /api/properties/:id
func DeletePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var prop models.Property
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mülk bulunamadı")
		}

		// Aktif sözleşmesi olan mülk silinemez
		var activeCount int64
		database.DB.Model(&models.Tenancy{}).
			Where("property_id = ? AND status = ?", prop.ID, models.TenancyStatusActive).
			Count(&activeCount)
		if activeCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Aktif sözleşmesi olan mülk silinemez")
		}

		if err := database.DB.Delete(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mülk silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// ÖDEME KOŞULLARI
// ----------------------------------------

// GET /api/properties/:id/payment-terms
func GetPaymentTermsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var prop models.Property
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mülk bulunamadı")
		}

		var terms models.PaymentTerms
		if err := database.DB.Where("property_id = ?", prop.ID).First(&terms).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Ödeme koşulu tanımlı değil")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme koşulu okunamadı")
		}

		return c.JSON(fiber.Map{
			"property_id": terms.PropertyID,
			"payout_day":  terms.PayoutDay,
			"description": terms.Description,
		})
	}
}

// PUT /api/properties/:id/payment-terms
// Mülk başına tek kayıt; varsa güncellenir, yoksa oluşturulur.
func UpsertPaymentTermsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := resolveLandlordIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var prop models.Property
		if err := database.DB.
			Where("id = ? AND landlord_id = ?", id, landlordID).
			First(&prop).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mülk bulunamadı")
		}

		var body PaymentTermsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		if body.PayoutDay < 1 || body.PayoutDay > 31 {
			return fiber.NewError(fiber.StatusBadRequest, "payout_day 1-31 arası olmalı")
		}

		var terms models.PaymentTerms
		err = database.DB.Where("property_id = ?", prop.ID).First(&terms).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			terms = models.PaymentTerms{
				PropertyID:  prop.ID,
				PayoutDay:   body.PayoutDay,
				Description: body.Description,
			}
			if err := database.DB.Create(&terms).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Ödeme koşulu oluşturulamadı")
			}
		} else if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme koşulu okunamadı")
		} else {
			terms.PayoutDay = body.PayoutDay
			terms.Description = body.Description
			if err := database.DB.Save(&terms).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Ödeme koşulu güncellenemedi")
			}
		}

		return c.JSON(fiber.Map{
			"property_id": terms.PropertyID,
			"payout_day":  terms.PayoutDay,
			"description": terms.Description,
		})
	}
}
