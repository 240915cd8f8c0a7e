package tenancy

import (
	"fmt"
	"time"

	"kira-backend/internal/database"
	"kira-backend/internal/models"
)

// dateOnly: saat bileşenini at, sadece takvim günü kalsın
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DeriveStatus - Sözleşme durumunu tarihlerden türet.
// start_date bugünse sözleşme aktiftir (dahil), end_date bugünse hala aktiftir (dahil);
// ended sadece end_date kesin olarak geçmişte kaldığında.
func DeriveStatus(startDate time.Time, endDate *time.Time, today time.Time) models.TenancyStatus {
	t := dateOnly(today)

	if dateOnly(startDate).After(t) {
		return models.TenancyStatusPending
	}
	if endDate != nil && dateOnly(*endDate).Before(t) {
		return models.TenancyStatusEnded
	}
	return models.TenancyStatusActive
}

// RecomputeStatuses - Bir mülk sahibinin tüm sözleşmelerinin status kolonunu
// tarihlerden yeniden hesapla. Sadece türetilen durum ile saklanan durum
// farklıysa yazar; art arda çalıştırmak ikinci seferde hiç yazmaz (idempotent).
// Listeleme/detay okumalarından önce çağrılır; hata durumunda okuma saklanan
// status ile devam eder, bloklamaz.
func RecomputeStatuses(landlordID uint, today time.Time) error {
	t := dateOnly(today)

	// pending: başlangıç tarihi gelecekte
	if err := database.DB.Model(&models.Tenancy{}).
		Where("landlord_id = ? AND start_date > ? AND status <> ?",
			landlordID, t, models.TenancyStatusPending).
		Update("status", models.TenancyStatusPending).Error; err != nil {
		return fmt.Errorf("pending güncellemesi başarısız: %w", err)
	}

	// ended: bitiş tarihi kesin olarak geçmişte
	if err := database.DB.Model(&models.Tenancy{}).
		Where("landlord_id = ? AND end_date IS NOT NULL AND end_date < ? AND status <> ?",
			landlordID, t, models.TenancyStatusEnded).
		Update("status", models.TenancyStatusEnded).Error; err != nil {
		return fmt.Errorf("ended güncellemesi başarısız: %w", err)
	}

	// active: başlamış ve (süresiz veya bitişi henüz geçmemiş)
	if err := database.DB.Model(&models.Tenancy{}).
		Where("landlord_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?) AND status <> ?",
			landlordID, t, t, models.TenancyStatusActive).
		Update("status", models.TenancyStatusActive).Error; err != nil {
		return fmt.Errorf("active güncellemesi başarısız: %w", err)
	}

	return nil
}
