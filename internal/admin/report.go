package admin

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/config"
	"stokpos-backend/internal/database"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/realtime"

	"github.com/robfig/cron/v3"
	"github.com/xuri/excelize/v2"
)

// ProductLine: gün içinde satılan tek ürünün toplamı.
type ProductLine struct {
	ItemID   uint    `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DailyReport: gün sonu özeti. Her ödeme yolu tam bir Sale ürettiği için
// müşteri sayısı satış sayısına eşittir.
type DailyReport struct {
	Date       string             `json:"date"` // "2006-01-02"
	Revenue    float64            `json:"revenue"`
	SalesCount int                `json:"sales_count"`
	Customers  int                `json:"customers"`
	PaidCarts  int                `json:"paid_carts"`
	ByPayment  map[string]float64 `json:"by_payment"`
	Products   []ProductLine      `json:"products"`
}

// BuildDailyReport: verilen günün satışlarından raporu üretir.
func BuildDailyReport(day time.Time) (*DailyReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var sales []models.Sale
	if err := database.DB.Preload("Items").
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&sales).Error; err != nil {
		return nil, apperr.Internal("Günlük satışlar okunamadı", err)
	}

	report := &DailyReport{
		Date:      start.Format("2006-01-02"),
		ByPayment: make(map[string]float64),
	}

	productTotals := make(map[uint]*ProductLine)
	for _, s := range sales {
		report.Revenue += s.Total
		report.SalesCount++
		report.ByPayment[s.PaymentMethod] += s.Total

		for _, it := range s.Items {
			line, ok := productTotals[it.ItemID]
			if !ok {
				line = &ProductLine{ItemID: it.ItemID}
				productTotals[it.ItemID] = line
			}
			line.Quantity += it.Quantity
			line.Revenue += it.Price * float64(it.Quantity)
		}
	}
	report.Customers = report.SalesCount

	var paidCarts int64
	if err := database.DB.Model(&models.Cart{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?", models.CartPaid, start, end).
		Count(&paidCarts).Error; err != nil {
		return nil, apperr.Internal("Sepet sayısı okunamadı", err)
	}
	report.PaidCarts = int(paidCarts)

	// Ürün adlarını tek sorguda bağla
	if len(productTotals) > 0 {
		ids := make([]uint, 0, len(productTotals))
		for id := range productTotals {
			ids = append(ids, id)
		}
		var items []models.Item
		if err := database.DB.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return nil, apperr.Internal("Ürünler okunamadı", err)
		}
		names := make(map[uint]string, len(items))
		for _, it := range items {
			names[it.ID] = it.Name
		}
		for id, line := range productTotals {
			line.Name = names[id]
			report.Products = append(report.Products, *line)
		}
	}

	return report, nil
}

// ArchiveReport: raporu JSON olarak diske yazar. Arşiv best-effort'tur,
// yazılamazsa rapor yine döner.
func ArchiveReport(cfg *config.Config, report *DailyReport) error {
	if err := os.MkdirAll(cfg.ReportPath, 0o755); err != nil {
		return fmt.Errorf("rapor klasörü açılamadı: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("rapor serileştirilemedi: %w", err)
	}
	path := filepath.Join(cfg.ReportPath, fmt.Sprintf("daily-%s.json", report.Date))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("rapor dosyası yazılamadı: %w", err)
	}
	return nil
}

// ReportToExcel: raporu tek sayfalık .xlsx çalışma kitabına döker.
func ReportToExcel(report *DailyReport) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Gün Sonu"
	f.SetSheetName("Sheet1", sheet)

	rows := [][]any{
		{"Tarih", report.Date},
		{"Ciro", report.Revenue},
		{"Satış Sayısı", report.SalesCount},
		{"Müşteri", report.Customers},
		{"Ödenen Sepet", report.PaidCarts},
		{},
		{"Ödeme Yöntemi", "Tutar"},
	}
	for method, total := range report.ByPayment {
		rows = append(rows, []any{method, total})
	}
	rows = append(rows, []any{}, []any{"Ürün", "Adet", "Ciro"})
	for _, p := range report.Products {
		rows = append(rows, []any{p.Name, p.Quantity, p.Revenue})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// StartDailyReportJob: her gece 00:05'te bir önceki günün raporunu üretir,
// arşivler ve admin ekranlarına yayınlar. Döndürülen cron durdurulana
// kadar çalışır.
func StartDailyReportJob(cfg *config.Config) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("5 0 * * *", func() {
		day := time.Now().AddDate(0, 0, -1)
		report, rerr := BuildDailyReport(day)
		if rerr != nil {
			log.Printf("[ERROR] Günlük rapor üretilemedi: %v", rerr)
			return
		}
		if aerr := ArchiveReport(cfg, report); aerr != nil {
			log.Printf("[WARN] Günlük rapor arşivlenemedi: %v", aerr)
		}
		realtime.Default.Broadcast(realtime.EventDailyReport, report)
		log.Printf("Günlük rapor yayınlandı: %s ciro=%.2f satış=%d", report.Date, report.Revenue, report.SalesCount)
	})
	if err != nil {
		log.Printf("[ERROR] Rapor cron kaydı başarısız: %v", err)
		return c
	}
	c.Start()
	return c
}
