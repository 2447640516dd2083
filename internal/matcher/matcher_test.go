package matcher

import (
	"testing"

	"campaign-reconciliation-service/internal/models"
)

func testReports() []models.CommerceReport {
	return []models.CommerceReport{
		{Owner: models.Owner{ID: 101, Name: "Karaca Home"}},
		{Owner: models.Owner{ID: 102, Name: "English Home"}},
		{Owner: models.Owner{ID: 101, Name: "Karaca Home"}},
		{Owner: models.Owner{ID: 103, Name: "MAC Cosmetics"}},
	}
}

func TestNewMatchingEngine(t *testing.T) {
	engine := NewMatchingEngine(nil)
	if engine == nil {
		t.Fatal("Expected matching engine to be created")
	}
	if engine.Config == nil {
		t.Fatal("Expected default config to be set")
	}
	if engine.Config.CandidateFloor != 30 || engine.Config.AcceptThreshold != 50 {
		t.Errorf("Expected default thresholds 30/50, got %v/%v",
			engine.Config.CandidateFloor, engine.Config.AcceptThreshold)
	}

	custom := &MatchingConfig{CandidateFloor: 10, AcceptThreshold: 80}
	engine = NewMatchingEngine(custom)
	if engine.Config != custom {
		t.Error("Expected custom config to be set")
	}
}

func TestUniqueOwners(t *testing.T) {
	owners := UniqueOwners(testReports())

	if len(owners) != 3 {
		t.Fatalf("Expected 3 unique owners, got %d", len(owners))
	}

	expected := []OwnerRef{
		{ID: 101, Name: "Karaca Home"},
		{ID: 102, Name: "English Home"},
		{ID: 103, Name: "MAC Cosmetics"},
	}
	for i, want := range expected {
		if owners[i] != want {
			t.Errorf("Owner %d: got %+v, expected %+v", i, owners[i], want)
		}
	}
}

func TestUniqueOwners_Empty(t *testing.T) {
	owners := UniqueOwners(nil)
	if len(owners) != 0 {
		t.Errorf("Expected no owners for empty input, got %d", len(owners))
	}
}

func TestMatchingEngine_MatchByNaming(t *testing.T) {
	engine := NewMatchingEngine(nil)

	tests := []struct {
		name          string
		campaignName  string
		expectedOwner int64
		expectNil     bool
	}{
		{
			name:          "brand embedded in campaign name",
			campaignName:  "Karaca Home Yaz Kampanyası",
			expectedOwner: 101,
		},
		{
			name:         "no owner resembles the campaign",
			campaignName: "Generic Retargeting Q4",
			expectNil:    true,
		},
		{
			name:          "exact brand name",
			campaignName:  "English Home",
			expectedOwner: 102,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			campaign := models.Campaign{ID: "c1", Name: tt.campaignName}
			candidate := engine.MatchByNaming(campaign, testReports())

			if tt.expectNil {
				if candidate != nil {
					t.Fatalf("Expected no candidate, got %+v", candidate)
				}
				return
			}

			if candidate == nil {
				t.Fatal("Expected a candidate, got nil")
			}
			if candidate.OwnerID != tt.expectedOwner {
				t.Errorf("Expected owner %d, got %d", tt.expectedOwner, candidate.OwnerID)
			}
			if candidate.Confidence <= engine.Config.CandidateFloor {
				t.Errorf("Candidate confidence %v should exceed the floor %v",
					candidate.Confidence, engine.Config.CandidateFloor)
			}
		})
	}
}

func TestMatchingEngine_MatchByNaming_FloorIsExclusive(t *testing.T) {
	// "abc" inside "abcdefghij" scores exactly 30, which must not clear
	// the strict floor.
	engine := NewMatchingEngine(&MatchingConfig{CandidateFloor: 30, AcceptThreshold: 50})
	reports := []models.CommerceReport{
		{Owner: models.Owner{ID: 1, Name: "abc"}},
	}

	candidate := engine.MatchByNaming(models.Campaign{ID: "c1", Name: "abcdefghij"}, reports)
	if candidate != nil {
		t.Errorf("Expected a score of exactly the floor to be rejected, got %+v", candidate)
	}
}

func TestMatchingEngine_MatchByNaming_ShortBrandInLongName(t *testing.T) {
	// A three-letter brand buried in a long campaign name scores well
	// below the candidate floor, so the campaign stays unmatched.
	engine := NewMatchingEngine(nil)
	reports := []models.CommerceReport{
		{Owner: models.Owner{ID: 201, Name: "Mac"}},
	}

	candidate := engine.MatchByNaming(models.Campaign{ID: "c1", Name: "MAC_Traffic_Dec2024"}, reports)
	if candidate != nil {
		t.Errorf("Expected no match for a short brand in a long name, got %+v", candidate)
	}
}

func TestMatchingEngine_MatchByNaming_TiesKeepFirstOwner(t *testing.T) {
	engine := NewMatchingEngine(nil)
	reports := []models.CommerceReport{
		{Owner: models.Owner{ID: 1, Name: "Brandx"}},
		{Owner: models.Owner{ID: 2, Name: "Brandy"}},
	}

	// Both owners score 6/12 = 50 against the campaign.
	candidate := engine.MatchByNaming(models.Campaign{ID: "c1", Name: "BrandxBrandy"}, reports)
	if candidate == nil {
		t.Fatal("Expected a candidate, got nil")
	}
	if candidate.OwnerID != 1 {
		t.Errorf("Expected the first-seen owner to win the tie, got owner %d", candidate.OwnerID)
	}
}

func TestMatchingConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		config    MatchingConfig
		expectErr bool
	}{
		{
			name:   "default is valid",
			config: *DefaultMatchingConfig(),
		},
		{
			name:      "negative floor",
			config:    MatchingConfig{CandidateFloor: -1, AcceptThreshold: 50},
			expectErr: true,
		},
		{
			name:      "threshold above 100",
			config:    MatchingConfig{CandidateFloor: 30, AcceptThreshold: 101},
			expectErr: true,
		},
		{
			name:      "threshold below floor",
			config:    MatchingConfig{CandidateFloor: 60, AcceptThreshold: 50},
			expectErr: true,
		},
		{
			name:   "threshold equal to floor",
			config: MatchingConfig{CandidateFloor: 50, AcceptThreshold: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestMatchingConfig_Clone(t *testing.T) {
	original := DefaultMatchingConfig()
	clone := original.Clone()

	if clone == original {
		t.Fatal("Expected a distinct copy")
	}
	clone.AcceptThreshold = 90
	if original.AcceptThreshold == 90 {
		t.Error("Mutating the clone must not affect the original")
	}
}
