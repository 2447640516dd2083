package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCampaign_Validate(t *testing.T) {
	tests := []struct {
		name      string
		campaign  Campaign
		expectErr bool
	}{
		{
			name:     "valid campaign",
			campaign: Campaign{ID: "123", Name: "Karaca Home Promo"},
		},
		{
			name:      "missing ID",
			campaign:  Campaign{Name: "Karaca Home Promo"},
			expectErr: true,
		},
		{
			name:      "whitespace-only name",
			campaign:  Campaign{ID: "123", Name: "   "},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.campaign.Validate()
			if tt.expectErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestCommerceReport_Validate(t *testing.T) {
	valid := CommerceReport{Owner: Owner{ID: 101, Name: "Karaca Home"}}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid report, got %v", err)
	}

	missingID := CommerceReport{Owner: Owner{Name: "Karaca Home"}}
	if err := missingID.Validate(); err == nil {
		t.Error("Expected error for zero owner ID")
	}

	missingName := CommerceReport{Owner: Owner{ID: 101}}
	if err := missingName.Validate(); err == nil {
		t.Error("Expected error for empty owner name")
	}
}

func TestManualMapping_Validate(t *testing.T) {
	valid := ManualMapping{MetaCampaignID: "c1", TrendyolOwnerID: 101}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid mapping, got %v", err)
	}

	if err := (&ManualMapping{TrendyolOwnerID: 101}).Validate(); err == nil {
		t.Error("Expected error for empty campaign ID")
	}
	if err := (&ManualMapping{MetaCampaignID: "c1"}).Validate(); err == nil {
		t.Error("Expected error for zero owner ID")
	}
}

func TestMatchType_IsValid(t *testing.T) {
	for _, mt := range []MatchType{MatchManual, MatchNaming, MatchLink, MatchNone} {
		if !mt.IsValid() {
			t.Errorf("Expected %s to be valid", mt)
		}
	}
	if MatchType("fuzzy").IsValid() {
		t.Error("Expected unknown match type to be invalid")
	}
}

func TestParseMetricInt(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"1234", 1234},
		{" 42 ", 42},
		{"-7", -7},
		{"", 0},
		{"abc", 0},
		{"12.5", 0},
	}

	for _, tt := range tests {
		if got := ParseMetricInt(tt.input); got != tt.expected {
			t.Errorf("ParseMetricInt(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestParseMetricDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected decimal.Decimal
	}{
		{"1234.56", decimal.NewFromFloat(1234.56)},
		{" 10 ", decimal.NewFromInt(10)},
		{"", decimal.Zero},
		{"garbage", decimal.Zero},
	}

	for _, tt := range tests {
		got := ParseMetricDecimal(tt.input)
		if !got.Equal(tt.expected) {
			t.Errorf("ParseMetricDecimal(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

func TestCommerceReport_DecodesPlatformPayload(t *testing.T) {
	payload := `{
		"session": 5,
		"advert": {
			"advertId": "adv-1",
			"startDate": 1704067200,
			"endDate": 1706745600,
			"rateAmount": 9.5,
			"advertKind": "COLLECTION",
			"status": "FINISHED",
			"promotion": {"title": "Yaz İndirimi", "kind": "DISCOUNT"}
		},
		"income": {"netIncome": 150.75},
		"revenue": {"netRevenue": 1890.25},
		"orderItem": {"netOrderItemCount": 12},
		"trx": {"bulkTrxCount": 3},
		"owner": {"id": 101, "name": "Karaca Home"},
		"currency": "TRY"
	}`

	var r CommerceReport
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}

	if r.Owner.ID != 101 || r.Owner.Name != "Karaca Home" {
		t.Errorf("Unexpected owner: %+v", r.Owner)
	}
	if !r.Income.NetIncome.Equal(decimal.NewFromFloat(150.75)) {
		t.Errorf("Expected net income 150.75, got %s", r.Income.NetIncome)
	}
	if r.Advert.Promotion == nil || r.Advert.Promotion.Title != "Yaz İndirimi" {
		t.Errorf("Expected promotion to decode, got %+v", r.Advert.Promotion)
	}
	if r.Advert.StartDate != 1704067200 {
		t.Errorf("Expected epoch-second start date, got %d", r.Advert.StartDate)
	}
}

func TestInsight_DecodesStringMetrics(t *testing.T) {
	payload := `{
		"campaign_id": "c1",
		"campaign_name": "Karaca Home Promo",
		"impressions": "1500",
		"clicks": "42",
		"spend": "10350",
		"reach": "1200",
		"actions": [{"action_type": "purchase", "value": "7"}]
	}`

	var i Insight
	if err := json.Unmarshal([]byte(payload), &i); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}

	if i.CampaignID != "c1" || i.Spend != "10350" {
		t.Errorf("Unexpected insight: %+v", i)
	}
	if len(i.Actions) != 1 || i.Actions[0].ActionType != "purchase" {
		t.Errorf("Expected one purchase action, got %+v", i.Actions)
	}
}
