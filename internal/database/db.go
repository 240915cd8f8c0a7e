package database

import (
	"log"

	"kira-backend/internal/config"
	"kira-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.PaymentTerms{},
		&models.Tenant{},
		&models.Tenancy{},
		&models.TenancyTenant{},
		&models.RentPayment{},
		&models.Expense{},
		&models.Booking{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// Booking PM komisyonu düzeltme migration'ı:
	// Eski kayıtlarda pm_fee_amount ham net üzerinden hesaplanmıştı,
	// doğrusu (net - temizlik) üzerinden. Farklı kalan kayıtları düzelt.
	if DB.Migrator().HasTable(&models.Booking{}) {
		var wrongCount int64
		DB.Raw(`
			SELECT COUNT(*)
			FROM bookings b
			JOIN properties p ON p.id = b.property_id
			WHERE p.is_managed = true
			  AND p.category = 'sa'
			  AND b.payment_status <> 'cancelled'
			  AND ABS(b.pm_fee_amount - ROUND(CAST((b.net_revenue - b.cleaning_fee) * p.management_fee_percent / 100 AS numeric), 2)) > 0.01
		`).Scan(&wrongCount)

		if wrongCount > 0 {
			log.Printf("PM komisyonu ham net üzerinden hesaplanmış %d rezervasyon bulundu, düzeltiliyor...", wrongCount)
			if fixErr := DB.Exec(`
				UPDATE bookings b
				SET pm_fee_amount = ROUND(CAST((b.net_revenue - b.cleaning_fee) * p.management_fee_percent / 100 AS numeric), 2),
				    total_pm_deduction = b.cleaning_fee + ROUND(CAST((b.net_revenue - b.cleaning_fee) * p.management_fee_percent / 100 AS numeric), 2)
				FROM properties p
				WHERE p.id = b.property_id
				  AND p.is_managed = true
				  AND p.category = 'sa'
				  AND b.payment_status <> 'cancelled'
				  AND ABS(b.pm_fee_amount - ROUND(CAST((b.net_revenue - b.cleaning_fee) * p.management_fee_percent / 100 AS numeric), 2)) > 0.01
			`).Error; fixErr != nil {
				log.Printf("PM komisyonu düzeltilirken hata: %v", fixErr)
			} else {
				log.Printf("%d rezervasyonun PM komisyonu düzeltildi", wrongCount)
			}
		}
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
