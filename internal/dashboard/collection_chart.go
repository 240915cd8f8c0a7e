package dashboard

import (
	"fmt"
	"time"

	"kira-backend/internal/auth"
	"kira-backend/internal/database"
	"kira-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CollectionChartPoint struct {
	Label        string  `json:"label"` // tarih / hafta başlangıcı / ay başlangıcı
	BankTransfer float64 `json:"bank_transfer"`
	Cash         float64 `json:"cash"`
	Other        float64 `json:"other"`
	Total        float64 `json:"total"`
}

type CollectionChartGrandTotals struct {
	BankTransfer float64 `json:"bank_transfer"`
	Cash         float64 `json:"cash"`
	Other        float64 `json:"other"`
	Total        float64 `json:"total"`
}

type CollectionChartResponse struct {
	LandlordID  uint                       `json:"landlord_id"`
	Period      string                     `json:"period"` // daily | weekly | monthly
	From        string                     `json:"from"`
	To          string                     `json:"to"`
	Points      []CollectionChartPoint     `json:"points"`
	GrandTotals CollectionChartGrandTotals `json:"grand_totals"`
}

// context'ten landlord id çıkar (landlord için JWT, admin için query param)
// admin için ?landlord_id=1 zorunlu
func getLandlordIDFromContext(c *fiber.Ctx) (uint, error) {
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

// GET /api/dashboard/collection-chart?period=daily&count=7&landlord_id=1
// Tahsil edilen kiraları ödeme tarihine göre kova kova toplar.
func CollectionChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		landlordID, err := getLandlordIDFromContext(c)
		if err != nil {
			return err
		}

		period := c.Query("period", "daily") // daily | weekly | monthly
		countStr := c.Query("count", "")

		var count int
		if countStr == "" {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				period = "daily"
				count = 7
			}
		} else {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "count geçersiz")
			}
		}

		now := time.Now()
		loc := now.Location()
		// bugünün 00:00'ı
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		var start time.Time

		switch period {
		case "weekly":
			// count hafta geriye
			days := 7 * (count - 1)
			start = end.AddDate(0, 0, -days)
		case "monthly":
			// ilgili ayların başından itibaren
			end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			start = end.AddDate(0, -(count - 1), 0)
		default:
			// daily
			period = "daily"
			start = end.AddDate(0, 0, -(count - 1))
		}

		// aggregation sonucu satır yapısı
		type row struct {
			Bucket time.Time `gorm:"column:bucket"`
			Method string    `gorm:"column:method"`
			Total  float64   `gorm:"column:total"`
		}
		var rows []row

		var sql string
		switch period {
		case "weekly":
			sql = `
				SELECT date_trunc('week', paid_date)::date AS bucket,
					   payment_method AS method,
					   SUM(amount_paid) AS total
				FROM rent_payments
				WHERE landlord_id = ? AND status = 'paid' AND paid_date >= ? AND paid_date <= ?
				GROUP BY bucket, method
				ORDER BY bucket ASC;
			`
		case "monthly":
			sql = `
				SELECT date_trunc('month', paid_date)::date AS bucket,
					   payment_method AS method,
					   SUM(amount_paid) AS total
				FROM rent_payments
				WHERE landlord_id = ? AND status = 'paid' AND paid_date >= ? AND paid_date < ?
				GROUP BY bucket, method
				ORDER BY bucket ASC;
			`
			// monthly için end = start + count ay sonrası
			end = start.AddDate(0, count, 0).AddDate(0, 0, -1)
		default: // daily
			sql = `
				SELECT paid_date::date AS bucket,
					   payment_method AS method,
					   SUM(amount_paid) AS total
				FROM rent_payments
				WHERE landlord_id = ? AND status = 'paid' AND paid_date >= ? AND paid_date <= ?
				GROUP BY bucket, method
				ORDER BY bucket ASC;
			`
		}

		if err := database.DB.Raw(sql, landlordID, start, end).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		// bucket bazlı toplama
		type bucketAgg struct {
			Bucket       time.Time
			BankTransfer float64
			Cash         float64
			Other        float64
			Total        float64
		}

		buckets := make(map[time.Time]*bucketAgg)

		for _, r := range rows {
			agg, ok := buckets[r.Bucket]
			if !ok {
				agg = &bucketAgg{Bucket: r.Bucket}
				buckets[r.Bucket] = agg
			}

			switch r.Method {
			case "havale":
				agg.BankTransfer += r.Total
			case "nakit":
				agg.Cash += r.Total
			default:
				agg.Other += r.Total
			}
		}

		// map'ten slice'a taşı ve sıralı hale getir
		ordered := make([]bucketAgg, 0, len(buckets))
		for _, v := range buckets {
			v.Total = v.BankTransfer + v.Cash + v.Other
			ordered = append(ordered, *v)
		}

		// tarih sıralaması
		for i := 0; i < len(ordered); i++ {
			for j := i + 1; j < len(ordered); j++ {
				if ordered[j].Bucket.Before(ordered[i].Bucket) {
					ordered[i], ordered[j] = ordered[j], ordered[i]
				}
			}
		}

		points := make([]CollectionChartPoint, 0, len(ordered))
		grand := CollectionChartGrandTotals{}

		for _, b := range ordered {
			label := b.Bucket.Format("2006-01-02")
			points = append(points, CollectionChartPoint{
				Label:        label,
				BankTransfer: b.BankTransfer,
				Cash:         b.Cash,
				Other:        b.Other,
				Total:        b.Total,
			})

			grand.BankTransfer += b.BankTransfer
			grand.Cash += b.Cash
			grand.Other += b.Other
			grand.Total += b.Total
		}

		resp := CollectionChartResponse{
			LandlordID:  landlordID,
			Period:      period,
			From:        start.Format("2006-01-02"),
			To:          end.Format("2006-01-02"),
			Points:      points,
			GrandTotals: grand,
		}

		return c.JSON(resp)
	}
}
