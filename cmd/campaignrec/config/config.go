// Package config builds the runtime configurations the CLI hands to the
// matcher, reporter and server, layering flag values over the defaults.
package config

import (
	"time"

	"github.com/spf13/viper"

	"campaign-reconciliation-service/internal/matcher"
	"campaign-reconciliation-service/internal/reporter"
	"campaign-reconciliation-service/internal/server"
)

// CreateMatchingConfig creates a matching configuration with the
// specified thresholds applied over the defaults.
func CreateMatchingConfig(candidateFloor, acceptThreshold float64) *matcher.MatchingConfig {
	config := matcher.DefaultMatchingConfig()
	config.CandidateFloor = candidateFloor
	config.AcceptThreshold = acceptThreshold
	return config
}

// CreateReportConfig creates a report configuration for the specified
// output format.
func CreateReportConfig(format string, includeUnmatched, sortBySpend bool) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.IncludeUnmatched = includeUnmatched
	config.SortBySpend = sortBySpend

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVDelimiter = ';'
		config.CSVHeaders = true
		config.CSVWriteBOM = true
	}

	return config
}

// CreateServerConfig assembles the HTTP server configuration from viper,
// which has flags, environment (CAMPAIGNREC_*) and config file merged.
func CreateServerConfig() server.Config {
	ttl := viper.GetDuration("token-ttl")
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	return server.Config{
		Addr:          viper.GetString("addr"),
		JWTSecret:     viper.GetString("jwt-secret"),
		AdminUsername: viper.GetString("admin-username"),
		AdminPassword: viper.GetString("admin-password"),
		TokenTTL:      ttl,
	}
}
