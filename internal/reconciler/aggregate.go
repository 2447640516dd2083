package reconciler

import (
	"campaign-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Aggregate reduces a campaign's insight subset and its matched commerce
// report subset into combined financial metrics.
//
// The reduction is pure and total: empty inputs yield all-zero metrics and
// every ratio is guarded so a zero denominator produces zero rather than an
// error. Insight metrics arrive string-encoded with spend in minor currency
// units; malformed values count as zero.
func Aggregate(insights []models.Insight, reports []models.CommerceReport) models.CombinedMetrics {
	var (
		spendMinor  = decimal.Zero
		impressions int64
		clicks      int64
		reach       int64
	)

	for _, i := range insights {
		spendMinor = spendMinor.Add(models.ParseMetricDecimal(i.Spend))
		impressions += models.ParseMetricInt(i.Impressions)
		clicks += models.ParseMetricInt(i.Clicks)
		reach += models.ParseMetricInt(i.Reach)
	}

	// Upstream reports spend in minor units.
	spend := spendMinor.Div(oneHundred)

	ctr := 0.0
	if impressions > 0 {
		ctr = float64(clicks) / float64(impressions) * 100
	}

	cpc := decimal.Zero
	if clicks > 0 {
		cpc = spend.Div(decimal.NewFromInt(clicks))
	}

	var (
		netIncome  = decimal.Zero
		netRevenue = decimal.Zero
		orders     int64
		rateSum    float64
	)

	for _, r := range reports {
		netIncome = netIncome.Add(r.Income.NetIncome)
		netRevenue = netRevenue.Add(r.Revenue.NetRevenue)
		orders += r.OrderItem.NetOrderItemCount
		rateSum += r.Advert.RateAmount
	}

	commissionRate := 0.0
	if len(reports) > 0 {
		commissionRate = rateSum / float64(len(reports))
	}

	roas := 0.0
	roi := 0.0
	costPerOrder := decimal.Zero
	profitMargin := 0.0

	if spend.IsPositive() {
		roas = netRevenue.Div(spend).InexactFloat64()
		roi = netIncome.Sub(spend).Div(spend).Mul(oneHundred).InexactFloat64()
	}
	if orders > 0 {
		costPerOrder = spend.Div(decimal.NewFromInt(orders))
	}
	if netRevenue.IsPositive() {
		profitMargin = netIncome.Div(netRevenue).Mul(oneHundred).InexactFloat64()
	}

	return models.CombinedMetrics{
		MetaSpend:       spend,
		MetaImpressions: impressions,
		MetaClicks:      clicks,
		MetaReach:       reach,
		MetaCTR:         ctr,
		MetaCPC:         cpc,

		TrendyolNetIncome:      netIncome,
		TrendyolNetRevenue:     netRevenue,
		TrendyolOrders:         orders,
		TrendyolCommissionRate: commissionRate,

		ROAS:         roas,
		ROI:          roi,
		CostPerOrder: costPerOrder,
		ProfitMargin: profitMargin,
	}
}
