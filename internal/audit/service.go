package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"kira-backend/internal/database"
	"kira-backend/internal/models"
)

type LogOptions struct {
	LandlordID  *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null" // Default: null JSON
	afterStr := "null"  // Default: null JSON

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		LandlordID:  opts.LandlordID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// UndoLog - Bir audit log'u undo et
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	// Zaten undo edilmiş mi?
	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}

	// Undo işlemini gerçekleştir
	switch log.Action {
	case models.AuditActionCreate:
		// Create ise entity'yi sil
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("entity silinemedi: %w", err)
		}

	case models.AuditActionUpdate:
		// Update ise önceki haline geri döndür
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri yüklenemedi: %w", err)
		}

	case models.AuditActionDelete:
		// Delete ise entity'yi geri oluştur (create)
		if err := recreateEntity(log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("entity geri oluşturulamadı: %w", err)
		}

	default:
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}

	// Log'u işaretle
	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	// Undo işlemi için yeni bir log oluştur
	undoLog := models.AuditLog{
		LandlordID:  log.LandlordID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}

// deleteEntity - Entity'yi sil
func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "expense":
		return database.DB.Delete(&models.Expense{}, "id = ?", entityID).Error
	case "booking":
		return database.DB.Delete(&models.Booking{}, "id = ?", entityID).Error
	case "rent_payment":
		return database.DB.Delete(&models.RentPayment{}, "id = ?", entityID).Error
	case "tenancy":
		return database.DB.Delete(&models.Tenancy{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// recreateEntity - Silinen entity'yi geri oluştur
func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		expense.ID = 0 // Yeni entity oluştur
		return database.DB.Create(&expense).Error

	case "booking":
		var booking models.Booking
		if err := json.Unmarshal([]byte(dataJSON), &booking); err != nil {
			return err
		}
		booking.ID = 0
		return database.DB.Create(&booking).Error

	case "rent_payment":
		var payment models.RentPayment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		payment.ID = 0
		return database.DB.Create(&payment).Error

	case "tenancy":
		var tenancy models.Tenancy
		if err := json.Unmarshal([]byte(dataJSON), &tenancy); err != nil {
			return err
		}
		// soft delete edilmişse işareti kaldırmak yeterli
		res := database.DB.Unscoped().Model(&models.Tenancy{}).
			Where("id = ?", tenancy.ID).
			Update("deleted_at", nil)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		tenancy.ID = 0
		return database.DB.Create(&tenancy).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// restoreEntity - Entity'yi geri yükle (update)
func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		return database.DB.Model(&models.Expense{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"landlord_id":  expense.LandlordID,
			"property_id":  expense.PropertyID,
			"category":     expense.Category,
			"amount":       expense.Amount,
			"frequency":    expense.Frequency,
			"expense_date": expense.ExpenseDate,
			"end_date":     expense.EndDate,
			"description":  expense.Description,
		}).Error

	case "booking":
		var booking models.Booking
		if err := json.Unmarshal([]byte(dataJSON), &booking); err != nil {
			return err
		}
		return database.DB.Model(&models.Booking{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"landlord_id":         booking.LandlordID,
			"property_id":         booking.PropertyID,
			"guest_name":          booking.GuestName,
			"channel":             booking.Channel,
			"check_in":            booking.CheckIn,
			"check_out":           booking.CheckOut,
			"nightly_rate":        booking.NightlyRate,
			"gross_booking_value": booking.GrossBookingValue,
			"platform_fee":        booking.PlatformFee,
			"net_revenue":         booking.NetRevenue,
			"cleaning_fee":        booking.CleaningFee,
			"pm_fee_amount":       booking.PMFeeAmount,
			"total_pm_deduction":  booking.TotalPMDeduction,
			"payment_status":      booking.PaymentStatus,
			"pm_payment_status":   booking.PMPaymentStatus,
			"notes":               booking.Notes,
		}).Error

	case "rent_payment":
		var payment models.RentPayment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		return database.DB.Model(&models.RentPayment{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tenancy_id":     payment.TenancyID,
			"property_id":    payment.PropertyID,
			"landlord_id":    payment.LandlordID,
			"due_date":       payment.DueDate,
			"amount_due":     payment.AmountDue,
			"amount_paid":    payment.AmountPaid,
			"status":         payment.Status,
			"paid_date":      payment.PaidDate,
			"payment_method": payment.PaymentMethod,
			"notes":          payment.Notes,
		}).Error

	case "tenancy":
		var tenancy models.Tenancy
		if err := json.Unmarshal([]byte(dataJSON), &tenancy); err != nil {
			return err
		}
		return database.DB.Model(&models.Tenancy{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"landlord_id":  tenancy.LandlordID,
			"property_id":  tenancy.PropertyID,
			"start_date":   tenancy.StartDate,
			"end_date":     tenancy.EndDate,
			"rent_amount":  tenancy.RentAmount,
			"rent_due_day": tenancy.RentDueDay,
			"status":       tenancy.Status,
			"notes":        tenancy.Notes,
		}).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}
