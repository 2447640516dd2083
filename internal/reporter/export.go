package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"campaign-reconciliation-service/internal/models"
)

// rawReportHeaders mirrors the dashboard's Trendyol export columns.
var rawReportHeaders = []string{
	"Session",
	"Marka ID",
	"Marka Adı",
	"Reklam ID",
	"Başlangıç Tarihi",
	"Bitiş Tarihi",
	"Komisyon Oranı (%)",
	"Reklam Türü",
	"Durum",
	"Paylaşım Linki",
	"Badge ID",
	"Promosyon Başlığı",
	"Promosyon Türü",
	"Direkt Gelir",
	"Dolaylı Gelir",
	"Harici Link Geliri",
	"İptal Gelir",
	"Kesinti Gelir",
	"Net Gelir",
	"Satıcı Bonusu",
	"Direkt Ciro",
	"Dolaylı Ciro",
	"Harici Link Ciro",
	"İptal Ciro",
	"Kesinti Ciro",
	"Net Ciro",
	"Net Sipariş Sayısı",
	"Dahili Link Sipariş Sayısı",
	"Toplu İşlem Sayısı",
	"Para Birimi",
}

// formatReportDate renders an epoch-second advert date in the Turkish
// dashboard format.
func formatReportDate(epochSeconds int64) string {
	if epochSeconds == 0 {
		return ""
	}
	return time.Unix(epochSeconds, 0).UTC().Format("02.01.2006 15:04")
}

// ExportRawReports writes the fetched commerce reports as CSV using the
// configured delimiter and the dashboard's Turkish headers.
func (rg *ReportGenerator) ExportRawReports(reports []models.CommerceReport, writer io.Writer) error {
	if rg.config.CSVWriteBOM {
		if _, err := io.WriteString(writer, utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(rawReportHeaders); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, report := range reports {
		promotionTitle := ""
		promotionKind := ""
		if report.Advert.Promotion != nil {
			promotionTitle = report.Advert.Promotion.Title
			promotionKind = report.Advert.Promotion.Kind
		}

		row := []string{
			strconv.FormatInt(report.Session, 10),
			strconv.FormatInt(report.Owner.ID, 10),
			report.Owner.Name,
			report.Advert.AdvertID,
			formatReportDate(report.Advert.StartDate),
			formatReportDate(report.Advert.EndDate),
			fmt.Sprintf("%.2f", report.Advert.RateAmount),
			report.Advert.AdvertKind,
			report.Advert.Status,
			report.Advert.LinkToShare,
			strconv.FormatInt(report.Advert.BadgeID, 10),
			promotionTitle,
			promotionKind,
			report.Income.InternalLinkDirectIncome.StringFixed(2),
			report.Income.InternalLinkIndirectIncome.StringFixed(2),
			report.Income.ExternalLinkIncome.StringFixed(2),
			report.Income.CancelledIncome.StringFixed(2),
			report.Income.CutOffIncome.StringFixed(2),
			report.Income.NetIncome.StringFixed(2),
			report.Income.NetSellerBonus.StringFixed(2),
			report.Revenue.InternalLinkDirectRevenue.StringFixed(2),
			report.Revenue.InternalLinkIndirectRevenue.StringFixed(2),
			report.Revenue.ExternalLinkRevenue.StringFixed(2),
			report.Revenue.CancelledRevenue.StringFixed(2),
			report.Revenue.CutOffRevenue.StringFixed(2),
			report.Revenue.NetRevenue.StringFixed(2),
			strconv.FormatInt(report.OrderItem.NetOrderItemCount, 10),
			strconv.FormatInt(report.OrderItem.NetInternalLinkOrderItemCount, 10),
			strconv.FormatInt(report.Trx.BulkTrxCount, 10),
			report.Currency,
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	return nil
}
