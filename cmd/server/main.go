package main

import (
	"log"
	"strings"

	"kira-backend/internal/audit"
	"kira-backend/internal/auth"
	"kira-backend/internal/booking"
	"kira-backend/internal/config"
	"kira-backend/internal/dashboard"
	"kira-backend/internal/database"
	"kira-backend/internal/expense"
	"kira-backend/internal/financial"
	"kira-backend/internal/models"
	"kira-backend/internal/property"
	"kira-backend/internal/rent"
	"kira-backend/internal/tenancy"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/register", auth.RegisterLandlordHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Get("/landlords", auth.ListLandlordsHandler())

	// Mülk yönetimi
	protected.Post("/properties", property.CreatePropertyHandler())
	protected.Get("/properties", property.ListPropertiesHandler())
	protected.Get("/properties/:id", property.GetPropertyHandler())
	protected.Put("/properties/:id", property.UpdatePropertyHandler())
	protected.Delete("/properties/:id", property.DeletePropertyHandler())
	protected.Get("/properties/:id/payment-terms", property.GetPaymentTermsHandler())
	protected.Put("/properties/:id/payment-terms", property.UpsertPaymentTermsHandler())

	// Kiracılar
	protected.Post("/tenants", tenancy.CreateTenantHandler())
	protected.Get("/tenants", tenancy.ListTenantsHandler())
	protected.Put("/tenants/:id", tenancy.UpdateTenantHandler())
	protected.Delete("/tenants/:id", tenancy.DeleteTenantHandler())

	// Sözleşmeler
	protected.Post("/tenancies", tenancy.CreateTenancyHandler())
	protected.Get("/tenancies", tenancy.ListTenanciesHandler())
	protected.Get("/tenancies/:id", tenancy.GetTenancyHandler())
	protected.Put("/tenancies/:id", tenancy.UpdateTenancyHandler())
	protected.Put("/tenancies/:id/end", tenancy.EndTenancyHandler())
	protected.Delete("/tenancies/:id", tenancy.DeleteTenancyHandler())

	// Kira tahsilatı
	protected.Get("/rent-payments", rent.ListRentPaymentsHandler())
	protected.Post("/rent-payments/generate", rent.MaterializeRentPaymentsHandler())
	protected.Put("/rent-payments/:id/record", rent.RecordRentPaymentHandler())
	protected.Put("/rent-payments/:id/missed", rent.MarkRentPaymentMissedHandler())
	protected.Get("/rent-payments/summary", rent.CollectionSummaryHandler())

	// Giderler
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler())
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler())
	protected.Get("/expenses/summary", expense.ExpenseSummaryHandler())
	protected.Get("/expenses/rollup", expense.MonthlyRollupHandler())

	// SA rezervasyonları
	protected.Post("/bookings", booking.CreateBookingHandler())
	protected.Get("/bookings", booking.ListBookingsHandler())
	protected.Put("/bookings/:id", booking.UpdateBookingHandler())
	protected.Put("/bookings/:id/pm-paid", booking.MarkPMPaidHandler())
	protected.Delete("/bookings/:id", booking.DeleteBookingHandler())
	protected.Get("/bookings/pm-summary", booking.PMSummaryHandler())

	// Dashboard
	protected.Get("/dashboard/collection-chart", dashboard.CollectionChartHandler())

	// Genel finansal özet
	protected.Get("/financial-summary/monthly", financial.MonthlyFinancialSummaryHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
