package booking

import (
	"math"
	"time"

	"kira-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Nights - Rezervasyonun gece sayısı (gün farkının yukarı yuvarlanmışı).
func Nights(checkIn, checkOut time.Time) int {
	hours := checkOut.Sub(checkIn).Hours()
	if hours < 0 {
		hours = -hours
	}
	return int(math.Ceil(hours / 24))
}

// CalculateFinancials - Rezervasyonun finansal alanlarını türet.
// brüt boş bırakıldıysa gece sayısı * gecelik fiyat; net = brüt - platform komisyonu.
// Yönetimdeki SA mülklerde komisyon her zaman (net - temizlik) üzerinden hesaplanır,
// ham net üzerinden ASLA; kesinti = temizlik + komisyon. Kuruş hassasiyeti için
// decimal ile hesaplanıp iki haneye yuvarlanır.
func CalculateFinancials(b *models.Booking, p *models.Property) {
	nights := Nights(b.CheckIn, b.CheckOut)

	if b.GrossBookingValue == 0 {
		gross := decimal.NewFromInt(int64(nights)).Mul(decimal.NewFromFloat(b.NightlyRate))
		b.GrossBookingValue = gross.Round(2).InexactFloat64()
	}

	net := decimal.NewFromFloat(b.GrossBookingValue).
		Sub(decimal.NewFromFloat(b.PlatformFee)).
		Round(2)
	b.NetRevenue = net.InexactFloat64()

	if p.IsManaged && p.Category == models.PropertyCategorySA {
		if b.CleaningFee == 0 && p.FixedCleaningFee > 0 {
			b.CleaningFee = p.FixedCleaningFee
		}

		pmFee := net.
			Sub(decimal.NewFromFloat(b.CleaningFee)).
			Mul(decimal.NewFromFloat(p.ManagementFeePercent)).
			Div(decimal.NewFromInt(100)).
			Round(2)
		b.PMFeeAmount = pmFee.InexactFloat64()
		b.TotalPMDeduction = decimal.NewFromFloat(b.CleaningFee).Add(pmFee).Round(2).InexactFloat64()
	} else {
		b.PMFeeAmount = 0
		b.TotalPMDeduction = 0
	}
}
