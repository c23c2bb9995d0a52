package admin

import (
	"fmt"
	"time"

	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/config"

	"github.com/gofiber/fiber/v2"
)

func parseReportDate(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Geçersiz tarih, beklenen format: 2006-01-02")
	}
	return day, nil
}

// GET /api/admin/reports/daily?date=2006-01-02
func DailyReportHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		day, err := parseReportDate(c)
		if err != nil {
			return err
		}
		report, rerr := BuildDailyReport(day)
		if rerr != nil {
			return apperr.ToFiber(rerr)
		}
		if aerr := ArchiveReport(cfg, report); aerr != nil {
			// Arşiv hatası cevabı engellemez
			c.Set("X-Report-Archive", "failed")
		}
		return c.JSON(report)
	}
}

// GET /api/admin/reports/daily/xlsx?date=2006-01-02
func DailyReportExcelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		day, err := parseReportDate(c)
		if err != nil {
			return err
		}
		report, rerr := BuildDailyReport(day)
		if rerr != nil {
			return apperr.ToFiber(rerr)
		}

		f, xerr := ReportToExcel(report)
		if xerr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}
		defer f.Close()

		buf, werr := f.WriteToBuffer()
		if werr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası yazılamadı")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="gun-sonu-%s.xlsx"`, report.Date))
		return c.Send(buf.Bytes())
	}
}
