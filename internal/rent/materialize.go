package rent

import (
	"fmt"
	"time"

	"kira-backend/internal/database"
	"kira-backend/internal/models"

	"gorm.io/gorm"
)

type MaterializeResult struct {
	Created        int                  `json:"created"`
	AlreadyCovered int                  `json:"already_covered"`
	TotalTenancies int                  `json:"total_tenancies"`
	Records        []models.RentPayment `json:"records"`
}

type GenerateResult struct {
	Created int                  `json:"created"`
	Skipped int                  `json:"skipped"`
	Records []models.RentPayment `json:"records"`
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dueDateInMonth - Ayın vade gününü hesapla. rent_due_day ayın gün sayısını
// aşıyorsa ayın son gününe sabitlenir, bir sonraki aya taşmaz (31 -> 30 Nisan).
func dueDateInMonth(year int, month time.Month, rentDueDay int, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1).Day()

	day := rentDueDay
	if day < 1 {
		day = 1
	}
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// hasPaymentInMonth - Sözleşmenin o takvim ayında kira kaydı var mı?
func hasPaymentInMonth(db *gorm.DB, tenancyID uint, monthStart time.Time) (bool, error) {
	nextMonth := monthStart.AddDate(0, 1, 0)

	var count int64
	err := db.Model(&models.RentPayment{}).
		Where("tenancy_id = ? AND due_date >= ? AND due_date < ?", tenancyID, monthStart, nextMonth).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MaterializeMonth - Hedef ay için aktif tüm sözleşmelerin kira kayıtlarını üret.
// Kaydı zaten olan sözleşmeler atlanır; tekrar çağırmak yeni kayıt üretmez.
// Sadece rent_payments'a ekleme yapar, sözleşmelere dokunmaz.
func MaterializeMonth(landlordID uint, year int, month time.Month, today time.Time) (*MaterializeResult, error) {
	loc := today.Location()
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	todayDate := dateOnly(today)

	// Aktiflik status kolonuna değil tarihlere bakılarak belirlenir;
	// kolon henüz senkronlanmamış olsa bile doğru küme seçilir.
	var tenancies []models.Tenancy
	if err := database.DB.
		Where("landlord_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)",
			landlordID, todayDate, todayDate).
		Find(&tenancies).Error; err != nil {
		return nil, fmt.Errorf("sözleşmeler listelenemedi: %w", err)
	}

	result := &MaterializeResult{
		TotalTenancies: len(tenancies),
		Records:        make([]models.RentPayment, 0, len(tenancies)),
	}

	for _, t := range tenancies {
		exists, err := hasPaymentInMonth(database.DB, t.ID, monthStart)
		if err != nil {
			return nil, fmt.Errorf("kira kaydı kontrolü başarısız: %w", err)
		}
		if exists {
			result.AlreadyCovered++
			continue
		}

		dueDate := dueDateInMonth(year, month, t.RentDueDay, loc)

		// sözleşme penceresinin dışındaki vadeler üretilmez
		if dueDate.Before(dateOnly(t.StartDate)) {
			continue
		}
		if t.EndDate != nil && dueDate.After(dateOnly(*t.EndDate)) {
			continue
		}

		status := models.RentPaymentStatusPending
		if dueDate.Before(todayDate) {
			status = models.RentPaymentStatusLate
		}

		payment := models.RentPayment{
			TenancyID:  t.ID,
			PropertyID: t.PropertyID,
			LandlordID: t.LandlordID,
			DueDate:    dueDate,
			AmountDue:  t.RentAmount,
			Status:     status,
		}

		if err := database.DB.Create(&payment).Error; err != nil {
			return nil, fmt.Errorf("kira kaydı oluşturulamadı: %w", err)
		}

		result.Created++
		result.Records = append(result.Records, payment)
	}

	return result, nil
}

// GenerateForTenancy - Tek sözleşme için içinde bulunulan ay + sonraki iki ayın
// kira kayıtlarını üret (sözleşme oluşturulurken çağrılır). Vade tarihi
// sözleşmenin başlangıcından önce veya bitişinden sonra kalıyorsa o ay atlanır.
func GenerateForTenancy(tenancyID, landlordID uint, today time.Time) (*GenerateResult, error) {
	var t models.Tenancy
	if err := database.DB.
		Where("id = ? AND landlord_id = ?", tenancyID, landlordID).
		First(&t).Error; err != nil {
		return nil, err // gorm.ErrRecordNotFound -> handler 404 döner
	}

	loc := today.Location()
	todayDate := dateOnly(today)

	result := &GenerateResult{Records: make([]models.RentPayment, 0, 3)}

	for i := 0; i < 3; i++ {
		target := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, i, 0)
		dueDate := dueDateInMonth(target.Year(), target.Month(), t.RentDueDay, loc)

		// sözleşme penceresinin dışındaki vadeler üretilmez
		if dueDate.Before(dateOnly(t.StartDate)) {
			result.Skipped++
			continue
		}
		if t.EndDate != nil && dueDate.After(dateOnly(*t.EndDate)) {
			result.Skipped++
			continue
		}

		exists, err := hasPaymentInMonth(database.DB, t.ID, target)
		if err != nil {
			return nil, fmt.Errorf("kira kaydı kontrolü başarısız: %w", err)
		}
		if exists {
			result.Skipped++
			continue
		}

		status := models.RentPaymentStatusPending
		if dueDate.Before(todayDate) {
			status = models.RentPaymentStatusLate
		}

		payment := models.RentPayment{
			TenancyID:  t.ID,
			PropertyID: t.PropertyID,
			LandlordID: t.LandlordID,
			DueDate:    dueDate,
			AmountDue:  t.RentAmount,
			Status:     status,
		}

		if err := database.DB.Create(&payment).Error; err != nil {
			return nil, fmt.Errorf("kira kaydı oluşturulamadı: %w", err)
		}

		result.Created++
		result.Records = append(result.Records, payment)
	}

	return result, nil
}
