package matcher

import (
	"campaign-reconciliation-service/internal/models"
)

// MatchingEngine scores commerce owners against ad campaigns by name.
type MatchingEngine struct {
	Config *MatchingConfig
}

// MatchCandidate is the best-scoring owner found for a campaign, before
// the caller's acceptance threshold has been applied.
type MatchCandidate struct {
	OwnerID    int64   `json:"ownerId"`
	OwnerName  string  `json:"ownerName"`
	Confidence float64 `json:"confidence"`
}

// OwnerRef is one entry of the unique-owner set extracted from a report
// collection, in first-seen order.
type OwnerRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewMatchingEngine creates a new matching engine with the specified configuration
func NewMatchingEngine(config *MatchingConfig) *MatchingEngine {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	return &MatchingEngine{
		Config: config,
	}
}

// UniqueOwners extracts the distinct owners appearing across a report
// collection, preserving first-seen order. The first name observed for a
// given owner ID wins; later occurrences are assumed consistent.
func UniqueOwners(reports []models.CommerceReport) []OwnerRef {
	seen := make(map[int64]bool, len(reports))
	owners := make([]OwnerRef, 0, len(reports))

	for _, r := range reports {
		if seen[r.Owner.ID] {
			continue
		}
		seen[r.Owner.ID] = true
		owners = append(owners, OwnerRef{ID: r.Owner.ID, Name: r.Owner.Name})
	}

	return owners
}

// MatchByNaming selects the best-scoring commerce owner for a campaign.
//
// Every unique owner across the reports is scored against the campaign
// name after both sides pass through Normalize. The single highest score
// strictly above the candidate floor wins; ties keep the owner seen first.
// Returns nil when no owner clears the floor.
//
// The engine deliberately does not apply the acceptance threshold: a
// candidate in the floor-to-threshold band is reported so the caller can
// surface it as unmatched instead of silently applying a weak guess.
func (me *MatchingEngine) MatchByNaming(campaign models.Campaign, reports []models.CommerceReport) *MatchCandidate {
	normalizedCampaign := Normalize(campaign.Name)

	var best *MatchCandidate
	for _, owner := range UniqueOwners(reports) {
		conf := Similarity(normalizedCampaign, Normalize(owner.Name))

		if conf > me.Config.CandidateFloor && (best == nil || conf > best.Confidence) {
			best = &MatchCandidate{
				OwnerID:    owner.ID,
				OwnerName:  owner.Name,
				Confidence: conf,
			}
		}
	}

	return best
}

// GetConfiguration returns a copy of the current configuration
func (me *MatchingEngine) GetConfiguration() *MatchingConfig {
	return me.Config.Clone()
}
