// Package reporter renders reconciliation output in multiple formats.
//
// Supported output formats:
//   - Console: human-readable summary and per-campaign breakdown
//   - JSON: structured data for programmatic consumption
//   - CSV: spreadsheet export
//
// CSV output follows the dashboard's export conventions: semicolon
// delimiter and a UTF-8 byte order mark so Turkish characters open
// correctly in Excel. The raw report export carries the original
// Turkish column headers.
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(nil)
//	err = generator.GenerateReport(records, os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"campaign-reconciliation-service/internal/models"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// utf8BOM precedes CSV output so Excel detects the encoding.
const utf8BOM = "\ufeff"

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeUnmatched bool `json:"include_unmatched"`
	SortBySpend      bool `json:"sort_by_spend"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
	CSVWriteBOM  bool `json:"csv_write_bom"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatConsole,
		IncludeUnmatched: true,
		SortBySpend:      false,
		CSVDelimiter:     ';',
		CSVHeaders:       true,
		CSVWriteBOM:      true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.CSVDelimiter == 0 {
		return fmt.Errorf("csv delimiter cannot be empty")
	}
	return nil
}

// ReportGenerator renders combined campaign records in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders the combined records to the writer in the
// configured format.
func (rg *ReportGenerator) GenerateReport(records []models.CombinedRecord, writer io.Writer) error {
	records = rg.prepare(records)

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(records, writer)
	case FormatJSON:
		return rg.generateJSONReport(records, writer)
	case FormatCSV:
		return rg.generateCSVReport(records, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// prepare applies the configured filtering and ordering without touching
// the caller's slice.
func (rg *ReportGenerator) prepare(records []models.CombinedRecord) []models.CombinedRecord {
	out := make([]models.CombinedRecord, 0, len(records))
	for _, record := range records {
		if !rg.config.IncludeUnmatched && record.Mapping.MatchType == models.MatchNone {
			continue
		}
		out = append(out, record)
	}

	if rg.config.SortBySpend {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Metrics.MetaSpend.GreaterThan(out[j].Metrics.MetaSpend)
		})
	}

	return out
}

// summary aggregates fleet-wide figures for the console header.
type summary struct {
	total      int
	manual     int
	naming     int
	unmatched  int
	spend      string
	netRevenue string
	netIncome  string
}

func summarize(records []models.CombinedRecord) summary {
	s := summary{total: len(records)}

	spend := decimal.Zero
	revenue := decimal.Zero
	income := decimal.Zero
	for _, record := range records {
		switch record.Mapping.MatchType {
		case models.MatchManual:
			s.manual++
		case models.MatchNaming, models.MatchLink:
			s.naming++
		default:
			s.unmatched++
		}
		spend = spend.Add(record.Metrics.MetaSpend)
		revenue = revenue.Add(record.Metrics.TrendyolNetRevenue)
		income = income.Add(record.Metrics.TrendyolNetIncome)
	}

	s.spend = spend.StringFixed(2)
	s.netRevenue = revenue.StringFixed(2)
	s.netIncome = income.StringFixed(2)
	return s
}

func (rg *ReportGenerator) generateConsoleReport(records []models.CombinedRecord, writer io.Writer) error {
	fmt.Fprintf(writer, "CAMPAIGN RECONCILIATION REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n\n", time.Now().Format(time.RFC3339))

	s := summarize(records)
	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Campaigns:\n")
	fmt.Fprintf(writer, "  Total:          %d\n", s.total)
	fmt.Fprintf(writer, "  Manual matches: %d (%.1f%%)\n", s.manual, percentage(s.manual, s.total))
	fmt.Fprintf(writer, "  Name matches:   %d (%.1f%%)\n", s.naming, percentage(s.naming, s.total))
	fmt.Fprintf(writer, "  Unmatched:      %d (%.1f%%)\n", s.unmatched, percentage(s.unmatched, s.total))
	fmt.Fprintf(writer, "\n=== FINANCIAL SUMMARY ===\n")
	fmt.Fprintf(writer, "Total Ad Spend:    %s\n", s.spend)
	fmt.Fprintf(writer, "Total Net Revenue: %s\n", s.netRevenue)
	fmt.Fprintf(writer, "Total Net Income:  %s\n", s.netIncome)

	fmt.Fprintf(writer, "\n=== CAMPAIGNS ===\n")
	for i, record := range records {
		m := record.Mapping
		metrics := record.Metrics

		fmt.Fprintf(writer, "%d. %s [%s]\n", i+1, m.MetaCampaignName, m.MatchType)
		if m.MatchType != models.MatchNone {
			fmt.Fprintf(writer, "   Owner: %s (id %d), confidence %.1f\n",
				m.TrendyolOwnerName, m.TrendyolOwnerID, m.MatchConfidence)
		}
		fmt.Fprintf(writer, "   Spend: %s, Impressions: %d, Clicks: %d, CTR: %.2f%%\n",
			metrics.MetaSpend.StringFixed(2), metrics.MetaImpressions, metrics.MetaClicks, metrics.MetaCTR)
		fmt.Fprintf(writer, "   Revenue: %s, Orders: %d, ROAS: %.2f, ROI: %.1f%%\n",
			metrics.TrendyolNetRevenue.StringFixed(2), metrics.TrendyolOrders, metrics.ROAS, metrics.ROI)
	}

	return nil
}

func (rg *ReportGenerator) generateJSONReport(records []models.CombinedRecord, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]interface{}{
		"generatedAt": time.Now().Format(time.RFC3339),
		"totalCount":  len(records),
		"records":     records,
	})
}

// combinedCSVHeaders are the columns of the combined export.
var combinedCSVHeaders = []string{
	"Campaign ID",
	"Campaign Name",
	"Match Type",
	"Confidence",
	"Owner ID",
	"Owner Name",
	"Spend",
	"Impressions",
	"Clicks",
	"CTR (%)",
	"CPC",
	"Net Income",
	"Net Revenue",
	"Orders",
	"Commission Rate (%)",
	"ROAS",
	"ROI (%)",
	"Cost Per Order",
	"Profit Margin (%)",
}

func (rg *ReportGenerator) generateCSVReport(records []models.CombinedRecord, writer io.Writer) error {
	if rg.config.CSVWriteBOM {
		if _, err := io.WriteString(writer, utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(combinedCSVHeaders); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, record := range records {
		m := record.Mapping
		metrics := record.Metrics

		ownerID := ""
		if m.MatchType != models.MatchNone {
			ownerID = strconv.FormatInt(m.TrendyolOwnerID, 10)
		}

		row := []string{
			m.MetaCampaignID,
			m.MetaCampaignName,
			m.MatchType.String(),
			fmt.Sprintf("%.1f", m.MatchConfidence),
			ownerID,
			m.TrendyolOwnerName,
			metrics.MetaSpend.StringFixed(2),
			strconv.FormatInt(metrics.MetaImpressions, 10),
			strconv.FormatInt(metrics.MetaClicks, 10),
			fmt.Sprintf("%.2f", metrics.MetaCTR),
			metrics.MetaCPC.StringFixed(2),
			metrics.TrendyolNetIncome.StringFixed(2),
			metrics.TrendyolNetRevenue.StringFixed(2),
			strconv.FormatInt(metrics.TrendyolOrders, 10),
			fmt.Sprintf("%.2f", metrics.TrendyolCommissionRate),
			fmt.Sprintf("%.2f", metrics.ROAS),
			fmt.Sprintf("%.1f", metrics.ROI),
			metrics.CostPerOrder.StringFixed(2),
			fmt.Sprintf("%.1f", metrics.ProfitMargin),
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write campaign row: %w", err)
		}
	}

	return nil
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}
