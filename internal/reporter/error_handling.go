package reporter

import (
	"fmt"
	"io"

	"campaign-reconciliation-service/internal/models"
	"campaign-reconciliation-service/pkg/errors"
	"campaign-reconciliation-service/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with error handling and a
// console fallback so a rendering failure never loses the results.
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		).WithSuggestion("Check the report configuration values")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// GenerateReportSafely generates a report, falling back to the console
// format when the requested format fails to render.
func (srg *SafeReportGenerator) GenerateReportSafely(records []models.CombinedRecord, writer io.Writer) error {
	if writer == nil {
		return errors.ValidationError(
			errors.CodeMissingField,
			"writer",
			nil,
			nil,
		).WithSuggestion("Provide a valid output writer")
	}

	srg.logger.WithFields(logger.Fields{
		"format":  srg.config.Format,
		"records": len(records),
	}).Info("Starting report generation")

	err := srg.GenerateReport(records, writer)
	if err == nil {
		srg.logger.Info("Report generation completed successfully")
		return nil
	}

	if srg.config.Format == FormatConsole {
		srg.logger.WithError(err).Error("Report generation failed")
		return errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError, "report generation failed")
	}

	srg.logger.WithError(err).Warn("Primary report generation failed, attempting console fallback")

	fallbackConfig := *srg.config
	fallbackConfig.Format = FormatConsole
	fallbackGenerator, genErr := NewReportGenerator(&fallbackConfig)
	if genErr != nil {
		return errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError, "report generation failed")
	}

	fmt.Fprintf(writer, "NOTE: Report generated in fallback format due to error with requested format\n")
	fmt.Fprintf(writer, "Original error: %v\n\n", err)

	if fbErr := fallbackGenerator.GenerateReport(records, writer); fbErr != nil {
		return errors.InternalError(
			"report_fallback",
			fmt.Errorf("both primary and fallback generation failed: primary=%v, fallback=%v", err, fbErr),
		)
	}

	srg.logger.Info("Report generated successfully using format fallback")
	return nil
}
