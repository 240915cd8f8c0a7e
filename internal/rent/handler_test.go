package rent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"kira-backend/internal/auth"
	"kira-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(landlordID uint) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	// JWT middleware'in koyduğu locals'ları taklit et
	app.Use(func(c *fiber.Ctx) error {
		lid := landlordID
		c.Locals(auth.CtxUserIDKey, landlordID)
		c.Locals(auth.CtxUserRoleKey, models.RoleLandlord)
		c.Locals(auth.CtxLandlordIDKey, &lid)
		return c.Next()
	})

	app.Put("/rent-payments/:id/record", RecordRentPaymentHandler())
	return app
}

func TestRecordRentPaymentDefaultPaidDateIsMidnight(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(1)

	payment := models.RentPayment{
		TenancyID: 1, PropertyID: 1, LandlordID: 1,
		DueDate:   date(2025, time.June, 1),
		AmountDue: 1200,
		Status:    models.RentPaymentStatusLate,
	}
	require.NoError(t, db.Create(&payment).Error)

	body, _ := json.Marshal(fiber.Map{"amount_paid": 1200.0, "payment_method": "havale"})
	req := httptest.NewRequest("PUT", fmt.Sprintf("/rent-payments/%d/record", payment.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var saved models.RentPayment
	require.NoError(t, db.First(&saved, payment.ID).Error)
	require.NotNil(t, saved.PaidDate)
	assert.Equal(t, models.RentPaymentStatusPaid, saved.Status)
	assert.Equal(t, 1200.0, saved.AmountPaid)

	// paid_date gün bazlı saklanmalı: saat bileşeni kalırsa bugünün ödemesi
	// "bugün sonu" pencereli raporlardan düşer
	now := time.Now()
	wantDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	assert.True(t, saved.PaidDate.Equal(wantDay),
		"paid_date %v, gün başı %v olmalı", saved.PaidDate, wantDay)
}

func TestRecordRentPaymentExplicitPaidDate(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(1)

	payment := models.RentPayment{
		TenancyID: 1, PropertyID: 1, LandlordID: 1,
		DueDate:   date(2025, time.June, 1),
		AmountDue: 1200,
		Status:    models.RentPaymentStatusPending,
	}
	require.NoError(t, db.Create(&payment).Error)

	body, _ := json.Marshal(fiber.Map{"amount_paid": 1200.0, "paid_date": "2025-06-03"})
	req := httptest.NewRequest("PUT", fmt.Sprintf("/rent-payments/%d/record", payment.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var saved models.RentPayment
	require.NoError(t, db.First(&saved, payment.ID).Error)
	require.NotNil(t, saved.PaidDate)
	assert.Equal(t, "2025-06-03", saved.PaidDate.Format("2006-01-02"))
}
