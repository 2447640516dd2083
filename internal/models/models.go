// Package models defines the data structures exchanged between the two
// upstream platforms and the reconciliation engine.
//
// The Meta Ads side mirrors the Graph API wire format, where every numeric
// metric arrives as a string. The Trendyol side mirrors the brand-offer
// report payload, where monetary values arrive as JSON numbers. Both shapes
// are kept as-is so client responses decode directly into these types; the
// lenient parse helpers at the bottom of this file are the only place the
// string-encoded metrics are interpreted.
package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// AdAccount represents a Meta advertising account.
type AdAccount struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AccountStatus int    `json:"account_status"`
	Currency      string `json:"currency"`
	AmountSpent   string `json:"amount_spent"`
}

// Campaign represents a Meta ad campaign. Campaigns are immutable once
// fetched; the reconciliation engine only reads them.
type Campaign struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	Objective      string `json:"objective"`
	CreatedTime    string `json:"created_time"`
	StartTime      string `json:"start_time,omitempty"`
	StopTime       string `json:"stop_time,omitempty"`
	DailyBudget    string `json:"daily_budget,omitempty"`
	LifetimeBudget string `json:"lifetime_budget,omitempty"`
}

// Validate performs basic validation on the Campaign
func (c *Campaign) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("campaign ID cannot be empty")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("campaign name cannot be empty")
	}
	return nil
}

// String returns a string representation of the Campaign
func (c *Campaign) String() string {
	return fmt.Sprintf("Campaign{ID: %s, Name: %s, Status: %s}", c.ID, c.Name, c.Status)
}

// AdSet represents a Meta ad set belonging to a campaign.
type AdSet struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	CampaignID     string `json:"campaign_id"`
	DailyBudget    string `json:"daily_budget,omitempty"`
	LifetimeBudget string `json:"lifetime_budget,omitempty"`
}

// Ad represents a single Meta ad.
type Ad struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	AdSetID     string `json:"adset_id"`
	CampaignID  string `json:"campaign_id"`
	CreatedTime string `json:"created_time"`
}

// InsightAction is an action breakdown entry attached to an insight row.
type InsightAction struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// Insight is a Meta performance metrics record. CampaignID may be empty
// when the row cannot be attributed to a campaign; such rows are dropped
// during grouping. All metric fields are string-encoded as delivered by
// the Graph API, with spend expressed in minor currency units.
type Insight struct {
	CampaignID   string          `json:"campaign_id,omitempty"`
	CampaignName string          `json:"campaign_name,omitempty"`
	AdSetID      string          `json:"adset_id,omitempty"`
	AdSetName    string          `json:"adset_name,omitempty"`
	AdID         string          `json:"ad_id,omitempty"`
	AdName       string          `json:"ad_name,omitempty"`
	Impressions  string          `json:"impressions"`
	Clicks       string          `json:"clicks"`
	Spend        string          `json:"spend"`
	Reach        string          `json:"reach"`
	CPC          string          `json:"cpc,omitempty"`
	CPM          string          `json:"cpm,omitempty"`
	CTR          string          `json:"ctr,omitempty"`
	DateStart    string          `json:"date_start,omitempty"`
	DateStop     string          `json:"date_stop,omitempty"`
	Actions      []InsightAction `json:"actions,omitempty"`
}

// Owner is the commerce-platform entity (brand) a report belongs to.
type Owner struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Advert describes the commerce-side advert a report was generated for.
type Advert struct {
	AdvertID    string           `json:"advertId"`
	StartDate   int64            `json:"startDate"`
	EndDate     int64            `json:"endDate"`
	RateAmount  float64          `json:"rateAmount"`
	AdvertKind  string           `json:"advertKind"`
	Status      string           `json:"status"`
	LinkToShare string           `json:"linkToShare"`
	BadgeID     int64            `json:"badgeId"`
	Promotion   *AdvertPromotion `json:"promotion,omitempty"`
}

// AdvertPromotion is the optional promotion attached to an advert.
type AdvertPromotion struct {
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

// Income holds the income breakdown of a commerce report.
type Income struct {
	InternalLinkDirectIncome   decimal.Decimal `json:"internalLinkDirectIncome"`
	InternalLinkIndirectIncome decimal.Decimal `json:"internalLinkIndirectIncome"`
	ExternalLinkIncome         decimal.Decimal `json:"externalLinkIncome"`
	CancelledIncome            decimal.Decimal `json:"cancelledIncome"`
	CutOffIncome               decimal.Decimal `json:"cutOffIncome"`
	NetIncome                  decimal.Decimal `json:"netIncome"`
	NetSellerBonus             decimal.Decimal `json:"netSellerBonus"`
}

// Revenue holds the revenue breakdown of a commerce report.
type Revenue struct {
	InternalLinkDirectRevenue   decimal.Decimal `json:"internalLinkDirectRevenue"`
	InternalLinkIndirectRevenue decimal.Decimal `json:"internalLinkIndirectRevenue"`
	ExternalLinkRevenue         decimal.Decimal `json:"externalLinkRevenue"`
	CancelledRevenue            decimal.Decimal `json:"cancelledRevenue"`
	CutOffRevenue               decimal.Decimal `json:"cutOffRevenue"`
	NetRevenue                  decimal.Decimal `json:"netRevenue"`
}

// OrderItem holds order counts of a commerce report.
type OrderItem struct {
	NetOrderItemCount             int64 `json:"netOrderItemCount"`
	NetInternalLinkOrderItemCount int64 `json:"netInternalLinkOrderItemCount"`
}

// Trx holds transaction counters of a commerce report.
type Trx struct {
	BulkTrxCount int64 `json:"bulkTrxCount"`
}

// CommerceReport is one revenue/income record attributable to a named
// owner on the commerce platform. A report belongs to exactly one owner;
// an owner may appear on many reports.
type CommerceReport struct {
	Session   int64     `json:"session"`
	Advert    Advert    `json:"advert"`
	Income    Income    `json:"income"`
	Revenue   Revenue   `json:"revenue"`
	OrderItem OrderItem `json:"orderItem"`
	Trx       Trx       `json:"trx"`
	Owner     Owner     `json:"owner"`
	Currency  string    `json:"currency"`
}

// Validate performs basic validation on the CommerceReport
func (r *CommerceReport) Validate() error {
	if r.Owner.ID == 0 {
		return fmt.Errorf("commerce report owner ID cannot be zero")
	}
	if strings.TrimSpace(r.Owner.Name) == "" {
		return fmt.Errorf("commerce report owner name cannot be empty")
	}
	return nil
}

// String returns a string representation of the CommerceReport
func (r *CommerceReport) String() string {
	return fmt.Sprintf("CommerceReport{Owner: %d/%s, NetRevenue: %s}",
		r.Owner.ID, r.Owner.Name, r.Revenue.NetRevenue.String())
}

// ManualMapping is a user-supplied override pinning a campaign to an
// owner. When several mappings exist for the same campaign ID, the
// last one wins.
type ManualMapping struct {
	MetaCampaignID  string `json:"metaCampaignId"`
	TrendyolOwnerID int64  `json:"trendyolOwnerId"`
}

// Validate performs basic validation on the ManualMapping
func (m *ManualMapping) Validate() error {
	if strings.TrimSpace(m.MetaCampaignID) == "" {
		return fmt.Errorf("manual mapping campaign ID cannot be empty")
	}
	if m.TrendyolOwnerID == 0 {
		return fmt.Errorf("manual mapping owner ID cannot be zero")
	}
	return nil
}

// MatchType describes how a campaign/owner association was established.
type MatchType string

const (
	// MatchManual is a user-supplied mapping; always wins over automatic matching.
	MatchManual MatchType = "manual"
	// MatchNaming is an automatic match based on name similarity.
	MatchNaming MatchType = "naming"
	// MatchLink is reserved for ad-creative URL cross-referencing.
	// It is never produced by the current engine.
	MatchLink MatchType = "link"
	// MatchNone means no owner could be associated with the campaign.
	MatchNone MatchType = "none"
)

// String returns the string representation of MatchType
func (t MatchType) String() string {
	return string(t)
}

// IsValid checks if the match type is one of the known variants
func (t MatchType) IsValid() bool {
	switch t {
	case MatchManual, MatchNaming, MatchLink, MatchNone:
		return true
	default:
		return false
	}
}

// CampaignMapping is the derived association between one campaign and at
// most one owner, together with how it was established and how strongly
// it should be trusted. Owner fields are absent when MatchType is none.
type CampaignMapping struct {
	MetaCampaignID    string    `json:"metaCampaignId"`
	MetaCampaignName  string    `json:"metaCampaignName"`
	TrendyolOwnerID   int64     `json:"trendyolOwnerId,omitempty"`
	TrendyolOwnerName string    `json:"trendyolOwnerName,omitempty"`
	MatchType         MatchType `json:"matchType"`
	MatchConfidence   float64   `json:"matchConfidence"`
}

// CombinedMetrics bundles the summed and derived financial metrics of one
// campaign: the ad side, the commerce side, and the ratios combining them.
// Monetary amounts are decimals; rates and percentages are floats.
type CombinedMetrics struct {
	MetaSpend       decimal.Decimal `json:"metaSpend"`
	MetaImpressions int64           `json:"metaImpressions"`
	MetaClicks      int64           `json:"metaClicks"`
	MetaReach       int64           `json:"metaReach"`
	MetaCTR         float64         `json:"metaCTR"`
	MetaCPC         decimal.Decimal `json:"metaCPC"`

	TrendyolNetIncome      decimal.Decimal `json:"trendyolNetIncome"`
	TrendyolNetRevenue     decimal.Decimal `json:"trendyolNetRevenue"`
	TrendyolOrders         int64           `json:"trendyolOrders"`
	TrendyolCommissionRate float64         `json:"trendyolCommissionRate"`

	ROAS         float64         `json:"roas"`
	ROI          float64         `json:"roi"`
	CostPerOrder decimal.Decimal `json:"costPerOrder"`
	ProfitMargin float64         `json:"profitMargin"`
}

// CombinedRecord is the output unit of a reconciliation pass: one per
// input campaign, regardless of match outcome. Unmatched campaigns carry
// MatchNone, an empty report subset and zero commerce metrics.
type CombinedRecord struct {
	Mapping  CampaignMapping  `json:"mapping"`
	Campaign Campaign         `json:"metaCampaign"`
	Insights []Insight        `json:"metaInsights"`
	Reports  []CommerceReport `json:"trendyolReports"`
	Metrics  CombinedMetrics  `json:"metrics"`
}

// Lenient parse helpers for the string-encoded Meta metrics. Upstream data
// is routinely dirty; a malformed value degrades to zero instead of
// failing the reconciliation pass.

// ParseMetricInt parses a string-encoded integer metric, returning 0 for
// empty or malformed input.
func ParseMetricInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseMetricDecimal parses a string-encoded decimal metric, returning
// zero for empty or malformed input.
func ParseMetricDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
