package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"campaign-reconciliation-service/cmd/campaignrec/config"
	"campaign-reconciliation-service/internal/clients/meta"
	"campaign-reconciliation-service/internal/clients/trendyol"
	"campaign-reconciliation-service/internal/models"
	"campaign-reconciliation-service/internal/reconciler"
	"campaign-reconciliation-service/internal/reporter"
	apperrors "campaign-reconciliation-service/pkg/errors"
	"campaign-reconciliation-service/pkg/logger"
)

// Flags for the reconcile command
var (
	campaignsFile string
	insightsFile  string
	reportsFile   string
	mappingsFile  string

	metaToken     string
	trendyolToken string
	startDate     string
	endDate       string

	outputFormat     string
	outputFile       string
	exportRawFile    string
	includeUnmatched bool
	sortBySpend      bool

	candidateFloor  float64
	acceptThreshold float64
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile campaign spend with commerce revenue",
	Long: `Reconcile combines Meta Ads campaigns and insights with Trendyol
brand-offer reports into one performance record per campaign.

Inputs come from either JSON fixture files or the live platform APIs:

  # Offline, from previously exported JSON
  campaignrec reconcile --campaigns-file campaigns.json \
    --insights-file insights.json --reports-file reports.json

  # Live fetch for a date range
  campaignrec reconcile --meta-token $META_TOKEN --trendyol-token $TY_TOKEN \
    --start-date 2024-12-01 --end-date 2024-12-31

  # Manual owner overrides and CSV output
  campaignrec reconcile --campaigns-file c.json --insights-file i.json \
    --reports-file r.json --mappings-file mappings.json \
    --output-format csv --output-file combined.csv`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Offline input flags
	reconcileCmd.Flags().StringVar(&campaignsFile, "campaigns-file", "", "path to campaigns JSON file")
	reconcileCmd.Flags().StringVar(&insightsFile, "insights-file", "", "path to insights JSON file")
	reconcileCmd.Flags().StringVar(&reportsFile, "reports-file", "", "path to Trendyol reports JSON file")
	reconcileCmd.Flags().StringVar(&mappingsFile, "mappings-file", "", "path to manual mappings JSON file (optional)")

	// Live fetch flags
	reconcileCmd.Flags().StringVar(&metaToken, "meta-token", "", "Meta Graph API access token")
	reconcileCmd.Flags().StringVar(&trendyolToken, "trendyol-token", "", "Trendyol session bearer token")
	reconcileCmd.Flags().StringVar(&startDate, "start-date", "", "range start date (YYYY-MM-DD)")
	reconcileCmd.Flags().StringVar(&endDate, "end-date", "", "range end date (YYYY-MM-DD)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	reconcileCmd.Flags().StringVar(&exportRawFile, "export-raw", "", "also write the raw Trendyol reports as CSV to this path")
	reconcileCmd.Flags().BoolVar(&includeUnmatched, "include-unmatched", true, "include unmatched campaigns in the report")
	reconcileCmd.Flags().BoolVar(&sortBySpend, "sort-by-spend", false, "order campaigns by descending spend")

	// Matching configuration flags
	reconcileCmd.Flags().Float64Var(&candidateFloor, "candidate-floor", 30, "minimum similarity for a match candidate (0-100)")
	reconcileCmd.Flags().Float64Var(&acceptThreshold, "accept-threshold", 50, "minimum confidence to accept a name match (0-100)")

	viper.BindPFlag("meta-token", reconcileCmd.Flags().Lookup("meta-token"))
	viper.BindPFlag("trendyol-token", reconcileCmd.Flags().Lookup("trendyol-token"))
	viper.BindPFlag("candidate-floor", reconcileCmd.Flags().Lookup("candidate-floor"))
	viper.BindPFlag("accept-threshold", reconcileCmd.Flags().Lookup("accept-threshold"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	metaToken = viper.GetString("meta-token")
	trendyolToken = viper.GetString("trendyol-token")
	candidateFloor = viper.GetFloat64("candidate-floor")
	acceptThreshold = viper.GetFloat64("accept-threshold")

	offline := campaignsFile != "" || insightsFile != "" || reportsFile != ""
	live := metaToken != "" || trendyolToken != ""

	if offline && live {
		return fmt.Errorf("choose either fixture files or API tokens, not both")
	}

	if offline {
		if campaignsFile == "" || insightsFile == "" || reportsFile == "" {
			return fmt.Errorf("offline mode requires --campaigns-file, --insights-file and --reports-file")
		}
		for _, path := range []string{campaignsFile, insightsFile, reportsFile} {
			if err := validateFileExists(path); err != nil {
				return err
			}
		}
	} else {
		if metaToken == "" || trendyolToken == "" {
			return fmt.Errorf("live mode requires --meta-token and --trendyol-token (or fixture files)")
		}
		if startDate == "" || endDate == "" {
			return fmt.Errorf("live mode requires --start-date and --end-date")
		}
	}

	if mappingsFile != "" {
		if err := validateFileExists(mappingsFile); err != nil {
			return err
		}
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if startDate != "" {
		if _, err := time.Parse("2006-01-02", startDate); err != nil {
			return fmt.Errorf("invalid start date format. Use YYYY-MM-DD: %w", err)
		}
	}
	if endDate != "" {
		if _, err := time.Parse("2006-01-02", endDate); err != nil {
			return fmt.Errorf("invalid end date format. Use YYYY-MM-DD: %w", err)
		}
	}
	if startDate != "" && endDate != "" {
		start, _ := time.Parse("2006-01-02", startDate)
		end, _ := time.Parse("2006-01-02", endDate)
		if start.After(end) {
			return fmt.Errorf("start date cannot be after end date")
		}
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("expected a file, got a directory: %s", path)
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	matchingConfig := config.CreateMatchingConfig(candidateFloor, acceptThreshold)
	if err := matchingConfig.Validate(); err != nil {
		return err
	}

	campaigns, insights, reports, err := loadInputs(ctx)
	if err != nil {
		return err
	}

	var mappings []models.ManualMapping
	if mappingsFile != "" {
		if err := loadJSONFile(mappingsFile, &mappings); err != nil {
			return err
		}
		for _, m := range mappings {
			if err := m.Validate(); err != nil {
				return err
			}
		}
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Reconciling %d campaigns, %d insights, %d reports, %d manual mappings\n",
			len(campaigns), len(insights), len(reports), len(mappings))
	}

	engine := reconciler.NewEngine(matchingConfig)
	records := engine.Reconcile(campaigns, insights, reports, mappings)

	reportConfig := config.CreateReportConfig(outputFormat, includeUnmatched, sortBySpend)
	generator, err := reporter.NewSafeReportGenerator(reportConfig, nil)
	if err != nil {
		return err
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	if err := generator.GenerateReportSafely(records, output); err != nil {
		return err
	}

	if exportRawFile != "" {
		rawOutput, err := os.Create(exportRawFile)
		if err != nil {
			return fmt.Errorf("failed to create raw export file: %w", err)
		}
		defer rawOutput.Close()

		rawGenerator, err := reporter.NewReportGenerator(config.CreateReportConfig("csv", true, false))
		if err != nil {
			return fmt.Errorf("failed to create raw export generator: %w", err)
		}
		if err := rawGenerator.ExportRawReports(reports, rawOutput); err != nil {
			return fmt.Errorf("failed to export raw reports: %w", err)
		}
	}

	if viper.GetBool("verbose") {
		matched := 0
		for _, record := range records {
			if record.Mapping.MatchType != models.MatchNone {
				matched++
			}
		}
		fmt.Fprintf(os.Stderr, "\nReconciliation completed: %d campaigns, %d matched, %d unmatched.\n",
			len(records), matched, len(records)-matched)
	}

	return nil
}

// loadInputs resolves the input mode. Raw file and parse failures are
// wrapped so they carry a category and exit code; client errors already do.
func loadInputs(ctx context.Context) ([]models.Campaign, []models.Insight, []models.CommerceReport, error) {
	var (
		campaigns []models.Campaign
		insights  []models.Insight
		reports   []models.CommerceReport
		err       error
	)

	if campaignsFile != "" {
		campaigns, insights, reports, err = loadFixtures()
	} else {
		campaigns, insights, reports, err = fetchLive(ctx)
	}
	if err != nil {
		return nil, nil, nil, apperrors.WrapIfNeeded(err,
			apperrors.CategoryValidation, apperrors.CodeInvalidFormat, "loading input data failed")
	}

	return campaigns, insights, reports, nil
}

func loadFixtures() ([]models.Campaign, []models.Insight, []models.CommerceReport, error) {
	var campaigns []models.Campaign
	if err := loadJSONFile(campaignsFile, &campaigns); err != nil {
		return nil, nil, nil, err
	}

	seen := make(map[string]struct{}, len(campaigns))
	for _, campaign := range campaigns {
		if _, dup := seen[campaign.ID]; dup {
			return nil, nil, nil, apperrors.ReconciliationError(
				apperrors.CodeDataInconsistent, "fixture validation", nil).
				WithContext("campaign_id", campaign.ID)
		}
		seen[campaign.ID] = struct{}{}
	}

	var insights []models.Insight
	if err := loadJSONFile(insightsFile, &insights); err != nil {
		return nil, nil, nil, err
	}

	var reports []models.CommerceReport
	if err := loadJSONFile(reportsFile, &reports); err != nil {
		return nil, nil, nil, err
	}

	return campaigns, insights, reports, nil
}

func fetchLive(ctx context.Context) ([]models.Campaign, []models.Insight, []models.CommerceReport, error) {
	op := logger.NewOperationLogger("live fetch", nil).
		WithFields(logger.Fields{"start_date": startDate, "end_date": endDate})

	op.Step("meta")
	metaClient := meta.NewClient(nil)
	data, err := metaClient.GetAll(ctx, metaToken, startDate, endDate)
	if err != nil {
		op.Error(err, "Meta fetch failed")
		return nil, nil, nil, err
	}

	startMillis, endMillis, err := rangeMillis(startDate, endDate)
	if err != nil {
		return nil, nil, nil, err
	}

	op.Step("trendyol")
	trendyolClient := trendyol.NewClient(nil)
	reports, err := trendyolClient.GetReports(ctx, trendyolToken, startMillis, endMillis)
	if err != nil {
		op.Error(err, "Trendyol fetch failed")
		return nil, nil, nil, err
	}

	op.WithFields(logger.Fields{
		"campaigns": len(data.Campaigns),
		"insights":  len(data.Insights),
		"reports":   len(reports),
	}).Success("Live fetch completed")
	return data.Campaigns, data.Insights, reports, nil
}

// rangeMillis converts the inclusive YYYY-MM-DD range to the epoch
// millisecond window the report API expects.
func rangeMillis(startDate, endDate string) (int64, int64, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 0, 0, err
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return 0, 0, err
	}
	return start.UnixMilli(), end.AddDate(0, 0, 1).Add(-time.Millisecond).UnixMilli(), nil
}

func loadJSONFile(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
