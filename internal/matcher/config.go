// Package matcher implements fuzzy name matching between ad campaigns and
// commerce-platform owners.
//
// Matching is name-based: both sides are canonicalized by Normalize and
// scored by Similarity, the dominant signal being a brand name embedded in
// a campaign name. The engine applies only a low candidate floor so weak
// guesses are still reported to callers; the stricter acceptance threshold
// belongs to the reconciliation layer, which decides whether a candidate
// actually becomes a match.
//
// Example usage:
//
//	engine := matcher.NewMatchingEngine(nil)
//	candidate := engine.MatchByNaming(campaign, reports)
//	if candidate != nil && candidate.Confidence >= engine.Config.AcceptThreshold {
//		// treat as a naming match
//	}
package matcher

import "fmt"

// MatchingConfig holds the thresholds controlling name matching.
//
// Two distinct floors exist on purpose: CandidateFloor is the minimum score
// for the engine to consider an owner a candidate at all, while
// AcceptThreshold is the minimum the caller should require before applying
// a candidate automatically. An owner can clear the floor yet stay below
// the threshold, in which case it surfaces as unmatched rather than being
// silently applied.
type MatchingConfig struct {
	// CandidateFloor is the exclusive minimum similarity score for an
	// owner to be tracked as a candidate.
	CandidateFloor float64 `json:"candidate_floor"`

	// AcceptThreshold is the inclusive minimum score at which callers
	// should accept a candidate as an automatic match.
	AcceptThreshold float64 `json:"accept_threshold"`
}

// DefaultMatchingConfig returns the thresholds used in production: owners
// scoring above 30 are candidates, candidates scoring at least 50 are
// accepted automatically.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		CandidateFloor:  30,
		AcceptThreshold: 50,
	}
}

// Validate validates the matching configuration
func (c *MatchingConfig) Validate() error {
	if c.CandidateFloor < 0 || c.CandidateFloor > 100 {
		return fmt.Errorf("candidate floor must be between 0 and 100, got %v", c.CandidateFloor)
	}

	if c.AcceptThreshold < 0 || c.AcceptThreshold > 100 {
		return fmt.Errorf("accept threshold must be between 0 and 100, got %v", c.AcceptThreshold)
	}

	if c.AcceptThreshold < c.CandidateFloor {
		return fmt.Errorf("accept threshold (%v) cannot be below candidate floor (%v)",
			c.AcceptThreshold, c.CandidateFloor)
	}

	return nil
}

// Clone returns a copy of the configuration
func (c *MatchingConfig) Clone() *MatchingConfig {
	clone := *c
	return &clone
}
