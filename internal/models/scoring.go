package models

import "time"

// TraitScore is a child's running total for one trait
type TraitScore struct {
	TraitID   int       `json:"trait_id"`
	TraitCode string    `json:"trait_code"`
	TraitName string    `json:"trait_name"`
	PillarID  *int      `json:"pillar_id"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TraitScoreHistoryEntry is one immutable scoring event
type TraitScoreHistoryEntry struct {
	ID          string
	ChildID     string
	TraitID     int
	ChallengeID string
	ScoreDelta  float64
	Feeling     int
	Reflection  *string
	CompletedAt time.Time
}

// TraitXP is the experience one trait gained from a single completion
type TraitXP struct {
	TraitID   int     `json:"trait_id"`
	TraitName string  `json:"trait_name"`
	XPGained  float64 `json:"xp_gained"`
	NewTotal  float64 `json:"new_total"`
}

// CompletionSummary is the experience gained from the most recent completion of a challenge
type CompletionSummary struct {
	Traits  []TraitXP `json:"traits"`
	TotalXP float64   `json:"total_xp"`
}
