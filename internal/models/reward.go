package models

import "time"

// RewardType groups catalog rewards by what they measure
type RewardType string

const (
	RewardMilestone RewardType = "milestone"
	RewardStreak    RewardType = "streak"
	RewardPillar    RewardType = "pillar"
)

// Reward is a catalog achievement
type Reward struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Icon          string     `json:"icon"`
	Type          RewardType `json:"type"`
	CriteriaValue int        `json:"criteria_value"`
	PillarID      *int       `json:"pillar_id"`
}

// GrantedReward is a catalog reward together with when a child earned it
type GrantedReward struct {
	Reward
	GrantedAt time.Time `json:"granted_at"`
}
