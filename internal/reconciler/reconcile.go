// Package reconciler combines ad-platform campaigns with commerce-platform
// revenue reports into one performance record per campaign.
//
// A reconciliation pass takes four pre-fetched collections (campaigns,
// insights, commerce reports, manual mappings) and produces exactly one
// CombinedRecord per campaign, in input order. Owner resolution runs in
// strict precedence: a manual mapping always wins, then a naming match at
// or above the acceptance threshold, then none. Metrics are aggregated
// from the matched subsets only.
//
// A pass never fails: dirty numeric data degrades to zero, unmatched
// campaigns degrade to MatchNone, and an owner with no reports degrades to
// the "Unknown" display name. The engine holds no state between calls and
// never mutates its inputs, so it is safe to re-run whenever the manual
// mappings change and to invoke concurrently.
//
// Example usage:
//
//	engine := reconciler.NewEngine(nil)
//	records := engine.Reconcile(campaigns, insights, reports, manualMappings)
package reconciler

import (
	"campaign-reconciliation-service/internal/matcher"
	"campaign-reconciliation-service/internal/models"
	"campaign-reconciliation-service/pkg/logger"
)

// UnknownOwnerName is the display name used when a manual mapping points
// at an owner that has no reports in the current date range. Kept as a
// literal sentinel to match expected display behavior.
const UnknownOwnerName = "Unknown"

// Engine drives matching and aggregation across all campaigns.
type Engine struct {
	matching *matcher.MatchingEngine
	log      logger.Logger
}

// NewEngine creates a reconciliation engine. A nil config selects the
// default matching thresholds.
func NewEngine(config *matcher.MatchingConfig) *Engine {
	return &Engine{
		matching: matcher.NewMatchingEngine(config),
		log:      logger.GetGlobalLogger().WithComponent("reconciler"),
	}
}

// Reconcile produces one CombinedRecord per input campaign, preserving
// campaign order. All working state is allocated fresh per call.
func (e *Engine) Reconcile(
	campaigns []models.Campaign,
	insights []models.Insight,
	reports []models.CommerceReport,
	manualMappings []models.ManualMapping,
) []models.CombinedRecord {

	manualByCampaign := indexManualMappings(manualMappings)
	insightsByCampaign := groupInsightsByCampaign(insights)
	reportsByOwner := groupReportsByOwner(reports)

	records := make([]models.CombinedRecord, 0, len(campaigns))
	for _, campaign := range campaigns {
		var mapping models.CampaignMapping
		var matchedReports []models.CommerceReport

		if ownerID, ok := manualByCampaign[campaign.ID]; ok {
			ownerReports := reportsByOwner[ownerID]
			ownerName := UnknownOwnerName
			if len(ownerReports) > 0 {
				ownerName = ownerReports[0].Owner.Name
			}

			mapping = models.CampaignMapping{
				MetaCampaignID:    campaign.ID,
				MetaCampaignName:  campaign.Name,
				TrendyolOwnerID:   ownerID,
				TrendyolOwnerName: ownerName,
				MatchType:         models.MatchManual,
				MatchConfidence:   100,
			}
			matchedReports = ownerReports
		} else if candidate := e.matching.MatchByNaming(campaign, reports); candidate != nil && candidate.Confidence >= e.matching.Config.AcceptThreshold {
			mapping = models.CampaignMapping{
				MetaCampaignID:    campaign.ID,
				MetaCampaignName:  campaign.Name,
				TrendyolOwnerID:   candidate.OwnerID,
				TrendyolOwnerName: candidate.OwnerName,
				MatchType:         models.MatchNaming,
				MatchConfidence:   candidate.Confidence,
			}
			matchedReports = reportsByOwner[candidate.OwnerID]
		} else {
			mapping = models.CampaignMapping{
				MetaCampaignID:   campaign.ID,
				MetaCampaignName: campaign.Name,
				MatchType:        models.MatchNone,
				MatchConfidence:  0,
			}
		}

		campaignInsights := insightsByCampaign[campaign.ID]
		metrics := Aggregate(campaignInsights, matchedReports)

		e.log.WithFields(logger.Fields{
			"campaign_id": campaign.ID,
			"match_type":  mapping.MatchType,
			"confidence":  mapping.MatchConfidence,
		}).Debug("Reconciled campaign")

		records = append(records, models.CombinedRecord{
			Mapping:  mapping,
			Campaign: campaign,
			Insights: campaignInsights,
			Reports:  matchedReports,
			Metrics:  metrics,
		})
	}

	return records
}

// indexManualMappings builds the campaign -> owner override index.
// A later mapping for the same campaign ID replaces the earlier one.
func indexManualMappings(mappings []models.ManualMapping) map[string]int64 {
	index := make(map[string]int64, len(mappings))
	for _, m := range mappings {
		index[m.MetaCampaignID] = m.TrendyolOwnerID
	}
	return index
}

// groupInsightsByCampaign groups insights by campaign ID. Rows without a
// campaign ID cannot be attributed and are excluded from every group.
func groupInsightsByCampaign(insights []models.Insight) map[string][]models.Insight {
	grouped := make(map[string][]models.Insight)
	for _, insight := range insights {
		if insight.CampaignID == "" {
			continue
		}
		grouped[insight.CampaignID] = append(grouped[insight.CampaignID], insight)
	}
	return grouped
}

// groupReportsByOwner groups commerce reports by owner ID.
func groupReportsByOwner(reports []models.CommerceReport) map[int64][]models.CommerceReport {
	grouped := make(map[int64][]models.CommerceReport)
	for _, report := range reports {
		grouped[report.Owner.ID] = append(grouped[report.Owner.ID], report)
	}
	return grouped
}
